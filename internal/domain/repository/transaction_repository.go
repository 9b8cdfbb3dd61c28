package repository

import (
	"context"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// StockTransactionRepository puerto de persistencia de recepciones.
type StockTransactionRepository interface {
	Create(ctx context.Context, tx *entity.StockTransaction) error
	GetForUpdate(ctx context.Context, id string) (*entity.StockTransaction, error)
	UpdateStatus(ctx context.Context, tx *entity.StockTransaction) error
}

// IssueTransactionRepository puerto de persistencia de salidas con sus líneas.
type IssueTransactionRepository interface {
	Create(ctx context.Context, tx *entity.IssueTransaction) error
	GetByID(ctx context.Context, id string) (*entity.IssueTransaction, error)
	GetForUpdate(ctx context.Context, id string) (*entity.IssueTransaction, error)
	UpdateStatus(ctx context.Context, tx *entity.IssueTransaction) error
}

// DamageReportRepository puerto de persistencia de constancias de daño.
type DamageReportRepository interface {
	Create(ctx context.Context, report *entity.DamageReport) error
}
