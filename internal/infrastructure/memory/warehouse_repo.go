package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

type warehouseRepo struct {
	st *state
}

func (r *warehouseRepo) Create(_ context.Context, w *entity.Warehouse) error {
	if _, ok := r.st.warehouses[w.ID]; ok {
		return fmt.Errorf("%w: bodega %s ya existe", domain.ErrConflict, w.ID)
	}
	for _, cur := range r.st.warehouses {
		if cur.Code == w.Code {
			return fmt.Errorf("%w: código de bodega %s en uso", domain.ErrConflict, w.Code)
		}
	}
	r.st.warehouses[w.ID] = *w
	return nil
}

func (r *warehouseRepo) GetByID(_ context.Context, id string) (*entity.Warehouse, error) {
	w, ok := r.st.warehouses[id]
	if !ok {
		return nil, nil
	}
	return &w, nil
}

func (r *warehouseRepo) List(_ context.Context, limit, offset int) ([]*entity.Warehouse, error) {
	out := make([]*entity.Warehouse, 0, len(r.st.warehouses))
	for _, w := range r.st.warehouses {
		w := w
		out = append(out, &w)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	if offset >= len(out) {
		return []*entity.Warehouse{}, nil
	}
	out = out[offset:]
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// warehouseView expone el registro de bodegas fuera de una unidad de trabajo explícita.
type warehouseView struct {
	s *Store
}

// Warehouses repositorio de bodegas respaldado por el Store.
func (s *Store) Warehouses() repository.WarehouseRepository {
	return &warehouseView{s: s}
}

func (v *warehouseView) Create(ctx context.Context, w *entity.Warehouse) error {
	return v.s.Run(ctx, func(r inventory.Repos) error {
		return r.Warehouses.Create(ctx, w)
	})
}

func (v *warehouseView) GetByID(ctx context.Context, id string) (*entity.Warehouse, error) {
	var w *entity.Warehouse
	err := v.s.Run(ctx, func(r inventory.Repos) error {
		var err error
		w, err = r.Warehouses.GetByID(ctx, id)
		return err
	})
	return w, err
}

func (v *warehouseView) List(ctx context.Context, limit, offset int) ([]*entity.Warehouse, error) {
	var list []*entity.Warehouse
	err := v.s.Run(ctx, func(r inventory.Repos) error {
		var err error
		list, err = r.Warehouses.List(ctx, limit, offset)
		return err
	})
	return list, err
}
