package inventory

import (
	"context"
	"sort"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
	"github.com/shopspring/decimal"
)

// Allocation cantidad a tomar de un lote.
type Allocation struct {
	Lot      *entity.Lot
	Quantity decimal.Decimal
}

// PlanFEFO arma el plan First-Expired-First-Out sobre los lotes recibidos.
// Ordena por vencimiento ascendente; los empates conservan el orden de entrada
// (el repositorio entrega los lotes por orden de creación). Toma min(restante, QtyOnHand)
// de cada lote hasta cubrir quantity.
// Si la suma disponible no alcanza devuelve un StockError con el total disponible
// y ningún plan: el llamador no debe mutar nada.
func PlanFEFO(lots []*entity.Lot, quantity decimal.Decimal) ([]Allocation, error) {
	if !quantity.IsPositive() {
		return nil, domain.ErrInvalidInput
	}

	candidates := make([]*entity.Lot, 0, len(lots))
	available := decimal.Zero
	for _, l := range lots {
		if l == nil || !l.QtyOnHand.IsPositive() {
			continue
		}
		candidates = append(candidates, l)
		available = available.Add(l.QtyOnHand)
	}
	if available.LessThan(quantity) {
		return nil, domain.InsufficientStock("", "", quantity, available)
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].ExpDate.Before(candidates[j].ExpDate)
	})

	plan := make([]Allocation, 0, len(candidates))
	remaining := quantity
	for _, l := range candidates {
		if !remaining.IsPositive() {
			break
		}
		take := decimal.Min(remaining, l.QtyOnHand)
		plan = append(plan, Allocation{Lot: l, Quantity: take})
		remaining = remaining.Sub(take)
	}
	return plan, nil
}

// FEFOAllocator lee los lotes candidatos y propone el plan. Es de solo lectura:
// debe usarse con el LotRepository de la misma unidad de trabajo que aplicará el plan,
// para que las filas queden bloqueadas entre la lectura y la mutación.
type FEFOAllocator struct {
	lots repository.LotRepository
}

// NewFEFOAllocator construye el asignador sobre un repositorio de lotes.
func NewFEFOAllocator(lots repository.LotRepository) *FEFOAllocator {
	return &FEFOAllocator{lots: lots}
}

// Pick devuelve qué lotes usar y cuánto de cada uno.
func (a *FEFOAllocator) Pick(ctx context.Context, filter repository.LotFilter, quantity decimal.Decimal) ([]Allocation, error) {
	lots, err := a.lots.ListForAllocation(ctx, filter)
	if err != nil {
		return nil, err
	}
	return PlanFEFO(lots, quantity)
}
