package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

var (
	_ repository.StockTransactionRepository = (*StockTransactionRepo)(nil)
	_ repository.IssueTransactionRepository = (*IssueTransactionRepo)(nil)
	_ repository.DamageReportRepository     = (*DamageReportRepo)(nil)
)

// StockTransactionRepo recepciones sobre PostgreSQL.
type StockTransactionRepo struct {
	q Querier
}

// NewStockTransactionRepository construye el adaptador de recepciones.
func NewStockTransactionRepository(q Querier) *StockTransactionRepo {
	return &StockTransactionRepo{q: q}
}

// Create inserta la recepción; un número repetido se reporta como ErrDuplicateTransactionNumber.
func (r *StockTransactionRepo) Create(ctx context.Context, tx *entity.StockTransaction) error {
	query := `
		INSERT INTO stock_transactions (id, transaction_number, lot_id, product_id, supplier_id,
			warehouse_id, user_id, quantity, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.q.Exec(ctx, query,
		tx.ID, tx.TransactionNumber, tx.LotID, tx.ProductID, tx.SupplierID,
		tx.WarehouseID, tx.UserID, tx.Quantity, tx.Status, tx.CreatedAt,
	)
	if err != nil {
		return duplicateNumber("insert stock transaction", tx.TransactionNumber, err)
	}
	return nil
}

// GetForUpdate obtiene la recepción y bloquea la fila.
func (r *StockTransactionRepo) GetForUpdate(ctx context.Context, id string) (*entity.StockTransaction, error) {
	query := `
		SELECT id, transaction_number, lot_id, product_id, supplier_id, warehouse_id, user_id,
			quantity, status, created_at, cancelled_by, cancelled_at
		FROM stock_transactions WHERE id = $1 FOR UPDATE`
	var t entity.StockTransaction
	err := r.q.QueryRow(ctx, query, id).Scan(
		&t.ID, &t.TransactionNumber, &t.LotID, &t.ProductID, &t.SupplierID, &t.WarehouseID, &t.UserID,
		&t.Quantity, &t.Status, &t.CreatedAt, &t.CancelledBy, &t.CancelledAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get stock transaction: %w", err)
	}
	return &t, nil
}

// UpdateStatus cambia estado y datos de anulación.
func (r *StockTransactionRepo) UpdateStatus(ctx context.Context, tx *entity.StockTransaction) error {
	_, err := r.q.Exec(ctx,
		`UPDATE stock_transactions SET status = $2, cancelled_by = $3, cancelled_at = $4 WHERE id = $1`,
		tx.ID, tx.Status, tx.CancelledBy, tx.CancelledAt)
	if err != nil {
		return fmt.Errorf("update stock transaction: %w", err)
	}
	return nil
}

// IssueTransactionRepo salidas y sus líneas sobre PostgreSQL.
type IssueTransactionRepo struct {
	q Querier
}

// NewIssueTransactionRepository construye el adaptador de salidas.
func NewIssueTransactionRepository(q Querier) *IssueTransactionRepo {
	return &IssueTransactionRepo{q: q}
}

// Create inserta la cabecera y sus líneas.
func (r *IssueTransactionRepo) Create(ctx context.Context, tx *entity.IssueTransaction) error {
	query := `
		INSERT INTO issue_transactions (id, transaction_number, type, product_id, warehouse_id,
			destination_warehouse_id, reason, user_id, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.q.Exec(ctx, query,
		tx.ID, tx.TransactionNumber, tx.Type, tx.ProductID, tx.WarehouseID,
		tx.DestinationWarehouseID, tx.Reason, tx.UserID, tx.Status, tx.CreatedAt,
	)
	if err != nil {
		return duplicateNumber("insert issue transaction", tx.TransactionNumber, err)
	}
	for i, l := range tx.Lines {
		_, err := r.q.Exec(ctx, `
			INSERT INTO issue_lines (issue_id, line_no, lot_id, lot_code, quantity, from_damaged)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			tx.ID, i+1, l.LotID, l.LotCode, l.Quantity, l.FromDamaged)
		if err != nil {
			return fmt.Errorf("insert issue line: %w", err)
		}
	}
	return nil
}

const issueColumns = `
	id, transaction_number, type, product_id, warehouse_id, destination_warehouse_id, reason,
	user_id, status, created_at, cancelled_by, cancelled_at`

func (r *IssueTransactionRepo) get(ctx context.Context, query, id string) (*entity.IssueTransaction, error) {
	var t entity.IssueTransaction
	err := r.q.QueryRow(ctx, query, id).Scan(
		&t.ID, &t.TransactionNumber, &t.Type, &t.ProductID, &t.WarehouseID, &t.DestinationWarehouseID,
		&t.Reason, &t.UserID, &t.Status, &t.CreatedAt, &t.CancelledBy, &t.CancelledAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get issue transaction: %w", err)
	}

	rows, err := r.q.Query(ctx, `
		SELECT lot_id, lot_code, quantity, from_damaged
		FROM issue_lines WHERE issue_id = $1 ORDER BY line_no`, id)
	if err != nil {
		return nil, fmt.Errorf("list issue lines: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var l entity.IssueLine
		if err := rows.Scan(&l.LotID, &l.LotCode, &l.Quantity, &l.FromDamaged); err != nil {
			return nil, fmt.Errorf("scan issue line: %w", err)
		}
		t.Lines = append(t.Lines, l)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &t, nil
}

// GetByID obtiene la salida con sus líneas.
func (r *IssueTransactionRepo) GetByID(ctx context.Context, id string) (*entity.IssueTransaction, error) {
	return r.get(ctx, `SELECT `+issueColumns+` FROM issue_transactions WHERE id = $1`, id)
}

// GetForUpdate obtiene la salida y bloquea la cabecera.
func (r *IssueTransactionRepo) GetForUpdate(ctx context.Context, id string) (*entity.IssueTransaction, error) {
	return r.get(ctx, `SELECT `+issueColumns+` FROM issue_transactions WHERE id = $1 FOR UPDATE`, id)
}

// UpdateStatus cambia estado y datos de anulación.
func (r *IssueTransactionRepo) UpdateStatus(ctx context.Context, tx *entity.IssueTransaction) error {
	_, err := r.q.Exec(ctx,
		`UPDATE issue_transactions SET status = $2, cancelled_by = $3, cancelled_at = $4 WHERE id = $1`,
		tx.ID, tx.Status, tx.CancelledBy, tx.CancelledAt)
	if err != nil {
		return fmt.Errorf("update issue transaction: %w", err)
	}
	return nil
}

// DamageReportRepo constancias de daño sobre PostgreSQL.
type DamageReportRepo struct {
	q Querier
}

// NewDamageReportRepository construye el adaptador de constancias de daño.
func NewDamageReportRepository(q Querier) *DamageReportRepo {
	return &DamageReportRepo{q: q}
}

// Create inserta la constancia.
func (r *DamageReportRepo) Create(ctx context.Context, d *entity.DamageReport) error {
	query := `
		INSERT INTO damage_reports (id, report_number, lot_id, warehouse_id, quantity, reason,
			reported_by, role, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.q.Exec(ctx, query,
		d.ID, d.ReportNumber, d.LotID, d.WarehouseID, d.Quantity, d.Reason, d.ReportedBy, d.Role, d.CreatedAt)
	if err != nil {
		return duplicateNumber("insert damage report", d.ReportNumber, err)
	}
	return nil
}
