package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

var _ repository.LotRepository = (*LotRepo)(nil)

// LotRepo implementación de LotRepository sobre PostgreSQL (usable con pool o tx).
type LotRepo struct {
	q Querier
}

// NewLotRepository construye el adaptador de lotes. Pasar pool o tx (Querier).
func NewLotRepository(q Querier) *LotRepo {
	return &LotRepo{q: q}
}

const lotColumns = `
	id, lot_code, product_id, warehouse_id, supplier_id, production_date, exp_date,
	boxes, units_per_box, unit, quantity, qty_on_hand, damaged, incoming_qty, status,
	created_at, updated_at`

func scanLot(row pgx.Row) (*entity.Lot, error) {
	var l entity.Lot
	err := row.Scan(
		&l.ID, &l.LotCode, &l.ProductID, &l.WarehouseID, &l.SupplierID, &l.ProductionDate, &l.ExpDate,
		&l.Packing.Boxes, &l.Packing.UnitsPerBox, &l.Packing.Unit, &l.Quantity, &l.QtyOnHand, &l.Damaged,
		&l.IncomingQty, &l.Status, &l.CreatedAt, &l.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *LotRepo) getOne(ctx context.Context, op, query string, args ...any) (*entity.Lot, error) {
	l, err := scanLot(r.q.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return l, nil
}

// GetByID obtiene un lote por ID (nil si no existe).
func (r *LotRepo) GetByID(ctx context.Context, id string) (*entity.Lot, error) {
	return r.getOne(ctx, "get lot", `SELECT `+lotColumns+` FROM lots WHERE id = $1`, id)
}

// GetForUpdate obtiene el lote y bloquea la fila (SELECT FOR UPDATE).
func (r *LotRepo) GetForUpdate(ctx context.Context, id string) (*entity.Lot, error) {
	return r.getOne(ctx, "get lot for update", `SELECT `+lotColumns+` FROM lots WHERE id = $1 FOR UPDATE`, id)
}

// FindByCodeForUpdate busca el lote por (código, bodega) y lo bloquea.
func (r *LotRepo) FindByCodeForUpdate(ctx context.Context, lotCode, warehouseID string) (*entity.Lot, error) {
	return r.getOne(ctx, "find lot by code",
		`SELECT `+lotColumns+` FROM lots WHERE lot_code = $1 AND warehouse_id = $2 FOR UPDATE`,
		lotCode, warehouseID)
}

// ListForAllocation lotes candidatos FEFO, bloqueados en el orden de asignación.
func (r *LotRepo) ListForAllocation(ctx context.Context, f repository.LotFilter) ([]*entity.Lot, error) {
	query := `SELECT ` + lotColumns + ` FROM lots
		WHERE product_id = $1 AND warehouse_id = $2 AND qty_on_hand > 0 AND status = 'active'
		ORDER BY exp_date ASC, created_seq ASC
		FOR UPDATE`
	args := []any{f.ProductID, f.WarehouseID}
	if f.ExpiredBefore != nil {
		query = `SELECT ` + lotColumns + ` FROM lots
			WHERE product_id = $1 AND warehouse_id = $2 AND qty_on_hand > 0
			  AND status <> 'pending' AND exp_date < $3
			ORDER BY exp_date ASC, created_seq ASC
			FOR UPDATE`
		args = append(args, *f.ExpiredBefore)
	}
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list lots for allocation: %w", err)
	}
	defer rows.Close()
	var list []*entity.Lot
	for rows.Next() {
		l, err := scanLot(rows)
		if err != nil {
			return nil, fmt.Errorf("scan lot: %w", err)
		}
		list = append(list, l)
	}
	return list, rows.Err()
}

// Create inserta un lote nuevo. (lot_code, warehouse_id) es único.
func (r *LotRepo) Create(ctx context.Context, lot *entity.Lot) error {
	query := `
		INSERT INTO lots (` + lotColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`
	_, err := r.q.Exec(ctx, query,
		lot.ID, lot.LotCode, lot.ProductID, lot.WarehouseID, lot.SupplierID, lot.ProductionDate, lot.ExpDate,
		lot.Packing.Boxes, lot.Packing.UnitsPerBox, lot.Packing.Unit, lot.Quantity, lot.QtyOnHand, lot.Damaged,
		lot.IncomingQty, lot.Status, lot.CreatedAt, lot.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: código de lote %s repetido en la bodega", domain.ErrConflict, lot.LotCode)
		}
		return fmt.Errorf("insert lot: %w", err)
	}
	return nil
}

// AdjustQuantity suma delta con un UPDATE condicionado (nunca deja qty_on_hand negativo)
// e inserta la entrada de historial con el antes/después devuelto por la misma sentencia.
func (r *LotRepo) AdjustQuantity(ctx context.Context, id string, delta decimal.Decimal, entry *entity.LotHistoryEntry) (decimal.Decimal, error) {
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now().UTC()
	}
	query := `
		UPDATE lots SET qty_on_hand = qty_on_hand + $2, updated_at = $3
		WHERE id = $1 AND qty_on_hand + $2 >= 0
		RETURNING qty_on_hand`
	var after decimal.Decimal
	err := r.q.QueryRow(ctx, query, id, delta, entry.Timestamp).Scan(&after)
	if err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			return decimal.Zero, fmt.Errorf("adjust lot quantity: %w", err)
		}
		lot, gerr := r.GetByID(ctx, id)
		if gerr != nil {
			return decimal.Zero, gerr
		}
		if lot == nil {
			return decimal.Zero, fmt.Errorf("%w: %s", domain.ErrLotNotFound, id)
		}
		return decimal.Zero, domain.InsufficientStock(lot.ID, lot.LotCode, delta.Neg(), lot.QtyOnHand)
	}

	entry.LotID = id
	entry.AfterQty = after
	entry.BeforeQty = after.Sub(delta)
	entry.QuantityAdjusted = delta
	if err := r.AppendHistory(ctx, entry); err != nil {
		return decimal.Zero, err
	}
	return after, nil
}

// Save persiste los campos no contables; qty_on_hand solo cambia vía AdjustQuantity.
func (r *LotRepo) Save(ctx context.Context, lot *entity.Lot) error {
	query := `
		UPDATE lots SET supplier_id = $2, production_date = $3, exp_date = $4, boxes = $5,
			units_per_box = $6, unit = $7, quantity = $8, damaged = $9, incoming_qty = $10,
			status = $11, updated_at = $12
		WHERE id = $1`
	cmd, err := r.q.Exec(ctx, query,
		lot.ID, lot.SupplierID, lot.ProductionDate, lot.ExpDate, lot.Packing.Boxes,
		lot.Packing.UnitsPerBox, lot.Packing.Unit, lot.Quantity, lot.Damaged, lot.IncomingQty,
		lot.Status, lot.UpdatedAt,
	)
	if err != nil {
		if isCheckViolation(err) {
			return fmt.Errorf("%w: cantidades negativas en el lote %s", domain.ErrConflict, lot.LotCode)
		}
		return fmt.Errorf("update lot: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", domain.ErrLotNotFound, lot.ID)
	}
	return nil
}

// AppendHistory inserta una entrada en lot_history.
func (r *LotRepo) AppendHistory(ctx context.Context, e *entity.LotHistoryEntry) error {
	query := `
		INSERT INTO lot_history (id, lot_id, ts, user_id, reason, quantity_adjusted, before_qty, after_qty,
			transaction_type, warehouse_id, destination_warehouse_id, reference, pending_quantity)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`
	_, err := r.q.Exec(ctx, query,
		e.ID, e.LotID, e.Timestamp, e.UserID, e.Reason, e.QuantityAdjusted, e.BeforeQty, e.AfterQty,
		e.TransactionType, e.WarehouseID, e.DestinationWarehouseID, e.Reference, e.PendingQuantity,
	)
	if err != nil {
		return fmt.Errorf("insert lot history: %w", err)
	}
	return nil
}

// History entradas del lote en orden de inserción.
func (r *LotRepo) History(ctx context.Context, lotID string) ([]entity.LotHistoryEntry, error) {
	query := `
		SELECT id, lot_id, ts, user_id, reason, quantity_adjusted, before_qty, after_qty,
			transaction_type, warehouse_id, destination_warehouse_id, reference, pending_quantity
		FROM lot_history WHERE lot_id = $1 ORDER BY seq ASC`
	rows, err := r.q.Query(ctx, query, lotID)
	if err != nil {
		return nil, fmt.Errorf("list lot history: %w", err)
	}
	defer rows.Close()
	var list []entity.LotHistoryEntry
	for rows.Next() {
		var e entity.LotHistoryEntry
		if err := rows.Scan(&e.ID, &e.LotID, &e.Timestamp, &e.UserID, &e.Reason, &e.QuantityAdjusted,
			&e.BeforeQty, &e.AfterQty, &e.TransactionType, &e.WarehouseID, &e.DestinationWarehouseID,
			&e.Reference, &e.PendingQuantity); err != nil {
			return nil, fmt.Errorf("scan lot history: %w", err)
		}
		list = append(list, e)
	}
	return list, rows.Err()
}

// Delete elimina el lote (el historial se borra en cascada).
func (r *LotRepo) Delete(ctx context.Context, id string) error {
	cmd, err := r.q.Exec(ctx, `DELETE FROM lots WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete lot: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", domain.ErrLotNotFound, id)
	}
	return nil
}

// SumAvailable disponible en lotes activos de un producto en una bodega.
func (r *LotRepo) SumAvailable(ctx context.Context, productID, warehouseID string) (decimal.Decimal, error) {
	query := `
		SELECT COALESCE(SUM(qty_on_hand), 0) FROM lots
		WHERE product_id = $1 AND warehouse_id = $2 AND status = 'active'`
	var total decimal.Decimal
	if err := r.q.QueryRow(ctx, query, productID, warehouseID).Scan(&total); err != nil {
		return decimal.Zero, fmt.Errorf("sum available: %w", err)
	}
	return total, nil
}

// MarkExpired pasa a expired los lotes activos con exp_date anterior a now.
func (r *LotRepo) MarkExpired(ctx context.Context, now time.Time) (int, error) {
	cmd, err := r.q.Exec(ctx,
		`UPDATE lots SET status = 'expired', updated_at = $1 WHERE status = 'active' AND exp_date < $1`, now)
	if err != nil {
		return 0, fmt.Errorf("mark expired lots: %w", err)
	}
	return int(cmd.RowsAffected()), nil
}
