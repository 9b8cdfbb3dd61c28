package memory

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

type lotRepo struct {
	st *state
}

func copyLot(l entity.Lot) *entity.Lot {
	c := l
	c.History = nil
	if l.ProductionDate != nil {
		d := *l.ProductionDate
		c.ProductionDate = &d
	}
	return &c
}

func (r *lotRepo) GetByID(_ context.Context, id string) (*entity.Lot, error) {
	l, ok := r.st.lots[id]
	if !ok {
		return nil, nil
	}
	return copyLot(l), nil
}

func (r *lotRepo) GetForUpdate(ctx context.Context, id string) (*entity.Lot, error) {
	return r.GetByID(ctx, id)
}

func (r *lotRepo) FindByCodeForUpdate(_ context.Context, lotCode, warehouseID string) (*entity.Lot, error) {
	for _, l := range r.st.lots {
		if l.LotCode == lotCode && l.WarehouseID == warehouseID {
			return copyLot(l), nil
		}
	}
	return nil, nil
}

func (r *lotRepo) ListForAllocation(_ context.Context, f repository.LotFilter) ([]*entity.Lot, error) {
	var out []*entity.Lot
	for _, l := range r.st.lots {
		if l.ProductID != f.ProductID || l.WarehouseID != f.WarehouseID || !l.QtyOnHand.IsPositive() {
			continue
		}
		if f.ExpiredBefore != nil {
			if l.Status == entity.LotStatusPending || !l.ExpDate.Before(*f.ExpiredBefore) {
				continue
			}
		} else if l.Status != entity.LotStatusActive {
			continue
		}
		out = append(out, copyLot(l))
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].ExpDate.Equal(out[j].ExpDate) {
			return out[i].ExpDate.Before(out[j].ExpDate)
		}
		return r.st.lotSeq[out[i].ID] < r.st.lotSeq[out[j].ID]
	})
	return out, nil
}

func (r *lotRepo) Create(_ context.Context, lot *entity.Lot) error {
	if _, ok := r.st.lots[lot.ID]; ok {
		return fmt.Errorf("%w: lote %s ya existe", domain.ErrConflict, lot.ID)
	}
	for _, l := range r.st.lots {
		if l.LotCode == lot.LotCode && l.WarehouseID == lot.WarehouseID {
			return fmt.Errorf("%w: código de lote %s repetido en la bodega", domain.ErrConflict, lot.LotCode)
		}
	}
	r.st.created++
	r.st.lotSeq[lot.ID] = r.st.created
	r.st.lots[lot.ID] = *copyLot(*lot)
	return nil
}

func (r *lotRepo) AdjustQuantity(_ context.Context, id string, delta decimal.Decimal, entry *entity.LotHistoryEntry) (decimal.Decimal, error) {
	l, ok := r.st.lots[id]
	if !ok {
		return decimal.Zero, fmt.Errorf("%w: %s", domain.ErrLotNotFound, id)
	}
	after := l.QtyOnHand.Add(delta)
	if after.IsNegative() {
		return decimal.Zero, domain.InsufficientStock(l.ID, l.LotCode, delta.Neg(), l.QtyOnHand)
	}
	entry.LotID = id
	entry.BeforeQty = l.QtyOnHand
	entry.AfterQty = after
	entry.QuantityAdjusted = delta
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now().UTC()
	}
	l.QtyOnHand = after
	l.UpdatedAt = entry.Timestamp
	r.st.lots[id] = l
	r.st.history[id] = append(r.st.history[id], *entry)
	return after, nil
}

func (r *lotRepo) Save(_ context.Context, lot *entity.Lot) error {
	cur, ok := r.st.lots[lot.ID]
	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrLotNotFound, lot.ID)
	}
	if lot.Damaged.IsNegative() || lot.IncomingQty.IsNegative() || lot.Quantity.IsNegative() {
		return fmt.Errorf("%w: cantidades negativas en el lote %s", domain.ErrConflict, lot.LotCode)
	}
	next := *copyLot(*lot)
	next.QtyOnHand = cur.QtyOnHand
	next.CreatedAt = cur.CreatedAt
	r.st.lots[lot.ID] = next
	return nil
}

func (r *lotRepo) AppendHistory(_ context.Context, entry *entity.LotHistoryEntry) error {
	if _, ok := r.st.lots[entry.LotID]; !ok {
		return fmt.Errorf("%w: %s", domain.ErrLotNotFound, entry.LotID)
	}
	r.st.history[entry.LotID] = append(r.st.history[entry.LotID], *entry)
	return nil
}

func (r *lotRepo) History(_ context.Context, lotID string) ([]entity.LotHistoryEntry, error) {
	return slices.Clone(r.st.history[lotID]), nil
}

func (r *lotRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.st.lots[id]; !ok {
		return fmt.Errorf("%w: %s", domain.ErrLotNotFound, id)
	}
	delete(r.st.lots, id)
	delete(r.st.lotSeq, id)
	delete(r.st.history, id)
	return nil
}

func (r *lotRepo) SumAvailable(_ context.Context, productID, warehouseID string) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, l := range r.st.lots {
		if l.ProductID == productID && l.WarehouseID == warehouseID && l.Status == entity.LotStatusActive {
			total = total.Add(l.QtyOnHand)
		}
	}
	return total, nil
}

func (r *lotRepo) MarkExpired(_ context.Context, now time.Time) (int, error) {
	n := 0
	for id, l := range r.st.lots {
		if l.Status == entity.LotStatusActive && l.ExpDate.Before(now) {
			l.Status = entity.LotStatusExpired
			l.UpdatedAt = now
			r.st.lots[id] = l
			n++
		}
	}
	return n, nil
}
