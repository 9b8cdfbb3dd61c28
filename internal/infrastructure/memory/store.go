// Package memory implementa el almacén de inventario en memoria. Cada unidad de trabajo
// trabaja sobre una copia del estado bajo el mutex del Store y solo la publica si termina sin
// error y el contexto sigue vivo; cualquier falla equivale a un rollback.
package memory

import (
	"context"
	"maps"
	"slices"
	"sync"

	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

type state struct {
	warehouses map[string]entity.Warehouse
	lots       map[string]entity.Lot
	lotSeq     map[string]int64 // orden de creación, desempate FEFO
	created    int64
	history    map[string][]entity.LotHistoryEntry
	receipts   map[string]entity.StockTransaction
	issues     map[string]entity.IssueTransaction
	transfers  map[string]entity.TransferTransaction
	damages    map[string]entity.DamageReport
	counters   map[string]int64
	numbers    map[string]struct{}
}

func newState() *state {
	return &state{
		warehouses: map[string]entity.Warehouse{},
		lots:       map[string]entity.Lot{},
		lotSeq:     map[string]int64{},
		history:    map[string][]entity.LotHistoryEntry{},
		receipts:   map[string]entity.StockTransaction{},
		issues:     map[string]entity.IssueTransaction{},
		transfers:  map[string]entity.TransferTransaction{},
		damages:    map[string]entity.DamageReport{},
		counters:   map[string]int64{},
		numbers:    map[string]struct{}{},
	}
}

func (s *state) clone() *state {
	c := &state{
		warehouses: maps.Clone(s.warehouses),
		lots:       maps.Clone(s.lots),
		lotSeq:     maps.Clone(s.lotSeq),
		created:    s.created,
		history:    make(map[string][]entity.LotHistoryEntry, len(s.history)),
		receipts:   maps.Clone(s.receipts),
		issues:     make(map[string]entity.IssueTransaction, len(s.issues)),
		transfers:  make(map[string]entity.TransferTransaction, len(s.transfers)),
		damages:    maps.Clone(s.damages),
		counters:   maps.Clone(s.counters),
		numbers:    maps.Clone(s.numbers),
	}
	for k, h := range s.history {
		c.history[k] = slices.Clone(h)
	}
	for k, t := range s.issues {
		t.Lines = slices.Clone(t.Lines)
		c.issues[k] = t
	}
	for k, t := range s.transfers {
		t.Lines = slices.Clone(t.Lines)
		c.transfers[k] = t
	}
	return c
}

// Store almacén en memoria para desarrollo y pruebas (STORE_DRIVER=memory).
type Store struct {
	mu sync.Mutex
	st *state

	auditMu sync.Mutex
	audit   []entity.AuditLog
}

// New crea un almacén vacío.
func New() *Store {
	return &Store{st: newState()}
}

// Run ejecuta fn como una unidad de trabajo serializada. Los cambios se publican solo si fn
// retorna nil y ctx no fue cancelado.
func (s *Store) Run(ctx context.Context, fn func(r inventory.Repos) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	work := s.st.clone()
	if err := fn(reposFor(work)); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	s.st = work
	return nil
}

func reposFor(st *state) inventory.Repos {
	return inventory.Repos{
		Lots:       &lotRepo{st: st},
		Receipts:   &receiptRepo{st: st},
		Issues:     &issueRepo{st: st},
		Transfers:  &transferRepo{st: st},
		Damages:    &damageRepo{st: st},
		Warehouses: &warehouseRepo{st: st},
		Sequences:  &sequenceRepo{st: st},
	}
}

var _ inventory.TxRunner = (*Store)(nil)
