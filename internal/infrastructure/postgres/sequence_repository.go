package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

var _ repository.SequenceRepository = (*SequenceRepo)(nil)

// SequenceRepo contadores de transaction_counters. Next es un upsert atómico: dos llamadas
// concurrentes sobre la misma clave se serializan en la fila y nunca devuelven el mismo valor.
// Dentro de una tx el consecutivo se libera (hueco) si la tx se revierte.
type SequenceRepo struct {
	q Querier
}

// NewSequenceRepository construye el generador de consecutivos.
func NewSequenceRepository(q Querier) *SequenceRepo {
	return &SequenceRepo{q: q}
}

// Next incrementa y devuelve el consecutivo de scopeKey (empieza en 1).
func (r *SequenceRepo) Next(ctx context.Context, scopeKey string) (int64, error) {
	if scopeKey == "" {
		return 0, domain.ErrInvalidInput
	}
	query := `
		INSERT INTO transaction_counters (scope_key, sequence)
		VALUES ($1, 1)
		ON CONFLICT (scope_key) DO UPDATE SET sequence = transaction_counters.sequence + 1
		RETURNING sequence`
	var seq int64
	if err := r.q.QueryRow(ctx, query, scopeKey).Scan(&seq); err != nil {
		return 0, fmt.Errorf("next sequence: %w", err)
	}
	return seq, nil
}
