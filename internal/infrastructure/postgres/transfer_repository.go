package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

var _ repository.TransferRepository = (*TransferRepo)(nil)

// TransferRepo traslados y sus líneas sobre PostgreSQL.
type TransferRepo struct {
	q Querier
}

// NewTransferRepository construye el adaptador de traslados.
func NewTransferRepository(q Querier) *TransferRepo {
	return &TransferRepo{q: q}
}

const transferColumns = `
	id, transfer_number, tracking_number, source_warehouse_id, destination_warehouse_id,
	status, reason, created_by, completed_by, created_at, completed_at`

func scanTransfer(row pgx.Row) (*entity.TransferTransaction, error) {
	var t entity.TransferTransaction
	err := row.Scan(
		&t.ID, &t.TransferNumber, &t.TrackingNumber, &t.SourceWarehouseID, &t.DestinationWarehouseID,
		&t.Status, &t.Reason, &t.CreatedBy, &t.CompletedBy, &t.CreatedAt, &t.CompletedAt,
	)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// Create inserta la cabecera y sus líneas.
func (r *TransferRepo) Create(ctx context.Context, t *entity.TransferTransaction) error {
	query := `
		INSERT INTO transfer_transactions (` + transferColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := r.q.Exec(ctx, query,
		t.ID, t.TransferNumber, t.TrackingNumber, t.SourceWarehouseID, t.DestinationWarehouseID,
		t.Status, t.Reason, t.CreatedBy, t.CompletedBy, t.CreatedAt, t.CompletedAt,
	)
	if err != nil {
		return duplicateNumber("insert transfer", t.TransferNumber, err)
	}
	for i, l := range t.Lines {
		_, err := r.q.Exec(ctx, `
			INSERT INTO transfer_lines (transfer_id, line_no, source_lot_id, destination_lot_id, lot_code, quantity)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			t.ID, i+1, l.SourceLotID, l.DestinationLotID, l.LotCode, l.Quantity)
		if err != nil {
			return fmt.Errorf("insert transfer line: %w", err)
		}
	}
	return nil
}

func (r *TransferRepo) get(ctx context.Context, query, id string) (*entity.TransferTransaction, error) {
	t, err := scanTransfer(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get transfer: %w", err)
	}
	if err := r.loadLines(ctx, []*entity.TransferTransaction{t}); err != nil {
		return nil, err
	}
	return t, nil
}

// loadLines carga las líneas de varios traslados en una sola consulta.
func (r *TransferRepo) loadLines(ctx context.Context, list []*entity.TransferTransaction) error {
	if len(list) == 0 {
		return nil
	}
	byID := make(map[string]*entity.TransferTransaction, len(list))
	ids := make([]string, 0, len(list))
	for _, t := range list {
		byID[t.ID] = t
		ids = append(ids, t.ID)
	}
	rows, err := r.q.Query(ctx, `
		SELECT transfer_id, source_lot_id, destination_lot_id, lot_code, quantity
		FROM transfer_lines WHERE transfer_id = ANY($1) ORDER BY transfer_id, line_no`, ids)
	if err != nil {
		return fmt.Errorf("list transfer lines: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var transferID string
		var l entity.TransferLine
		if err := rows.Scan(&transferID, &l.SourceLotID, &l.DestinationLotID, &l.LotCode, &l.Quantity); err != nil {
			return fmt.Errorf("scan transfer line: %w", err)
		}
		if t := byID[transferID]; t != nil {
			t.Lines = append(t.Lines, l)
		}
	}
	return rows.Err()
}

// GetByID obtiene el traslado con sus líneas.
func (r *TransferRepo) GetByID(ctx context.Context, id string) (*entity.TransferTransaction, error) {
	return r.get(ctx, `SELECT `+transferColumns+` FROM transfer_transactions WHERE id = $1`, id)
}

// GetForUpdate obtiene el traslado y bloquea la cabecera (serializa Confirm/Reject concurrentes).
func (r *TransferRepo) GetForUpdate(ctx context.Context, id string) (*entity.TransferTransaction, error) {
	return r.get(ctx, `SELECT `+transferColumns+` FROM transfer_transactions WHERE id = $1 FOR UPDATE`, id)
}

// UpdateStatus cambia estado, motivo y datos de cierre.
func (r *TransferRepo) UpdateStatus(ctx context.Context, t *entity.TransferTransaction) error {
	_, err := r.q.Exec(ctx, `
		UPDATE transfer_transactions SET status = $2, reason = $3, completed_by = $4, completed_at = $5
		WHERE id = $1`,
		t.ID, t.Status, t.Reason, t.CompletedBy, t.CompletedAt)
	if err != nil {
		return fmt.Errorf("update transfer: %w", err)
	}
	return nil
}

// ListPendingByDestination traslados Pending hacia la bodega, más antiguos primero.
func (r *TransferRepo) ListPendingByDestination(ctx context.Context, warehouseID string, limit, offset int) ([]*entity.TransferTransaction, error) {
	query := `SELECT ` + transferColumns + ` FROM transfer_transactions
		WHERE destination_warehouse_id = $1 AND status = $2
		ORDER BY created_at ASC, transfer_number ASC LIMIT $3 OFFSET $4`
	rows, err := r.q.Query(ctx, query, warehouseID, entity.TransferPending, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list pending transfers: %w", err)
	}
	var list []*entity.TransferTransaction
	for rows.Next() {
		t, err := scanTransfer(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan transfer: %w", err)
		}
		list = append(list, t)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if err := r.loadLines(ctx, list); err != nil {
		return nil, err
	}
	return list, nil
}
