package inventory

import (
	"context"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

// Repos repositorios atados a una misma transacción de BD.
type Repos struct {
	Lots       repository.LotRepository
	Receipts   repository.StockTransactionRepository
	Issues     repository.IssueTransactionRepository
	Transfers  repository.TransferRepository
	Damages    repository.DamageReportRepository
	Warehouses repository.WarehouseRepository
	Sequences  repository.SequenceRepository
}

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios atados a esa tx.
// Commit si fn retorna nil; Rollback en cualquier otro caso. Garantiza atomicidad para el motor de inventario.
type TxRunner interface {
	Run(ctx context.Context, fn func(r Repos) error) error
}

// Notifier entrega avisos a usuarios (log, Redis, Kafka...). Sus fallas nunca revierten una operación.
type Notifier interface {
	Notify(ctx context.Context, n entity.Notification) error
}
