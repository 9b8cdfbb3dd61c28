package memory

import (
	"context"
	"fmt"
	"slices"
	"sort"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// reserveNumber registra un número de transacción; los números son únicos entre todos los tipos.
func (s *state) reserveNumber(number string) error {
	if _, ok := s.numbers[number]; ok {
		return fmt.Errorf("%w: %s", domain.ErrDuplicateTransactionNumber, number)
	}
	s.numbers[number] = struct{}{}
	return nil
}

type receiptRepo struct {
	st *state
}

func (r *receiptRepo) Create(_ context.Context, tx *entity.StockTransaction) error {
	if err := r.st.reserveNumber(tx.TransactionNumber); err != nil {
		return err
	}
	r.st.receipts[tx.ID] = *tx
	return nil
}

func (r *receiptRepo) GetForUpdate(_ context.Context, id string) (*entity.StockTransaction, error) {
	tx, ok := r.st.receipts[id]
	if !ok {
		return nil, nil
	}
	return &tx, nil
}

func (r *receiptRepo) UpdateStatus(_ context.Context, tx *entity.StockTransaction) error {
	cur, ok := r.st.receipts[tx.ID]
	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrTransactionNotFound, tx.ID)
	}
	cur.Status = tx.Status
	cur.CancelledBy = tx.CancelledBy
	cur.CancelledAt = tx.CancelledAt
	r.st.receipts[tx.ID] = cur
	return nil
}

type issueRepo struct {
	st *state
}

func copyIssue(t entity.IssueTransaction) *entity.IssueTransaction {
	t.Lines = slices.Clone(t.Lines)
	return &t
}

func (r *issueRepo) Create(_ context.Context, tx *entity.IssueTransaction) error {
	if err := r.st.reserveNumber(tx.TransactionNumber); err != nil {
		return err
	}
	r.st.issues[tx.ID] = *copyIssue(*tx)
	return nil
}

func (r *issueRepo) GetByID(_ context.Context, id string) (*entity.IssueTransaction, error) {
	t, ok := r.st.issues[id]
	if !ok {
		return nil, nil
	}
	return copyIssue(t), nil
}

func (r *issueRepo) GetForUpdate(ctx context.Context, id string) (*entity.IssueTransaction, error) {
	return r.GetByID(ctx, id)
}

func (r *issueRepo) UpdateStatus(_ context.Context, tx *entity.IssueTransaction) error {
	cur, ok := r.st.issues[tx.ID]
	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrTransactionNotFound, tx.ID)
	}
	cur.Status = tx.Status
	cur.CancelledBy = tx.CancelledBy
	cur.CancelledAt = tx.CancelledAt
	r.st.issues[tx.ID] = cur
	return nil
}

type transferRepo struct {
	st *state
}

func copyTransfer(t entity.TransferTransaction) *entity.TransferTransaction {
	t.Lines = slices.Clone(t.Lines)
	return &t
}

func (r *transferRepo) Create(_ context.Context, t *entity.TransferTransaction) error {
	if err := r.st.reserveNumber(t.TransferNumber); err != nil {
		return err
	}
	r.st.transfers[t.ID] = *copyTransfer(*t)
	return nil
}

func (r *transferRepo) GetByID(_ context.Context, id string) (*entity.TransferTransaction, error) {
	t, ok := r.st.transfers[id]
	if !ok {
		return nil, nil
	}
	return copyTransfer(t), nil
}

func (r *transferRepo) GetForUpdate(ctx context.Context, id string) (*entity.TransferTransaction, error) {
	return r.GetByID(ctx, id)
}

func (r *transferRepo) UpdateStatus(_ context.Context, t *entity.TransferTransaction) error {
	cur, ok := r.st.transfers[t.ID]
	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrTransferNotFound, t.ID)
	}
	cur.Status = t.Status
	cur.Reason = t.Reason
	cur.CompletedBy = t.CompletedBy
	cur.CompletedAt = t.CompletedAt
	r.st.transfers[t.ID] = cur
	return nil
}

func (r *transferRepo) ListPendingByDestination(_ context.Context, warehouseID string, limit, offset int) ([]*entity.TransferTransaction, error) {
	var out []*entity.TransferTransaction
	for _, t := range r.st.transfers {
		if t.DestinationWarehouseID == warehouseID && t.IsPending() {
			out = append(out, copyTransfer(t))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].TransferNumber < out[j].TransferNumber
	})
	if offset >= len(out) {
		return []*entity.TransferTransaction{}, nil
	}
	out = out[offset:]
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type damageRepo struct {
	st *state
}

func (r *damageRepo) Create(_ context.Context, report *entity.DamageReport) error {
	if err := r.st.reserveNumber(report.ReportNumber); err != nil {
		return err
	}
	r.st.damages[report.ID] = *report
	return nil
}

type sequenceRepo struct {
	st *state
}

func (r *sequenceRepo) Next(_ context.Context, scopeKey string) (int64, error) {
	if scopeKey == "" {
		return 0, domain.ErrInvalidInput
	}
	r.st.counters[scopeKey]++
	return r.st.counters[scopeKey], nil
}
