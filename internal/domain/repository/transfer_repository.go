package repository

import (
	"context"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// TransferRepository puerto de persistencia de traslados entre bodegas.
type TransferRepository interface {
	Create(ctx context.Context, t *entity.TransferTransaction) error
	GetByID(ctx context.Context, id string) (*entity.TransferTransaction, error)
	GetForUpdate(ctx context.Context, id string) (*entity.TransferTransaction, error)
	UpdateStatus(ctx context.Context, t *entity.TransferTransaction) error
	ListPendingByDestination(ctx context.Context, warehouseID string, limit, offset int) ([]*entity.TransferTransaction, error)
}
