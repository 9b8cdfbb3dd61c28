package repository

import "context"

// SequenceRepository contador monotónico por clave de bodega.
// Next incrementa y devuelve el nuevo valor de forma atómica; crea el contador
// en 1 si no existe. Sin caché en proceso: varias instancias comparten la secuencia.
type SequenceRepository interface {
	Next(ctx context.Context, scopeKey string) (int64, error)
}
