package inventory

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// GetLot devuelve el lote con su historial ordenado por fecha.
func (uc *LedgerUseCase) GetLot(ctx context.Context, id string) (*entity.Lot, error) {
	var lot *entity.Lot
	err := uc.txRunner.Run(ctx, func(r Repos) error {
		var err error
		lot, err = r.Lots.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if lot == nil {
			return fmt.Errorf("%w: %s", domain.ErrLotNotFound, id)
		}
		lot.History, err = r.Lots.History(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return lot, nil
}

// GetIssue devuelve una salida con sus líneas.
func (uc *LedgerUseCase) GetIssue(ctx context.Context, id string) (*entity.IssueTransaction, error) {
	var tx *entity.IssueTransaction
	err := uc.txRunner.Run(ctx, func(r Repos) error {
		var err error
		tx, err = r.Issues.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if tx == nil {
			return fmt.Errorf("%w: %s", domain.ErrTransactionNotFound, id)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return tx, nil
}

// GetTransfer devuelve un traslado con sus líneas.
func (uc *LedgerUseCase) GetTransfer(ctx context.Context, id string) (*entity.TransferTransaction, error) {
	var t *entity.TransferTransaction
	err := uc.txRunner.Run(ctx, func(r Repos) error {
		var err error
		t, err = r.Transfers.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if t == nil {
			return fmt.Errorf("%w: %s", domain.ErrTransferNotFound, id)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return t, nil
}

// ListPendingTransfers traslados que esperan confirmación en la bodega destino.
func (uc *LedgerUseCase) ListPendingTransfers(ctx context.Context, warehouseID string, limit, offset int) ([]*entity.TransferTransaction, error) {
	if warehouseID == "" {
		return nil, domain.ErrInvalidInput
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	var list []*entity.TransferTransaction
	err := uc.txRunner.Run(ctx, func(r Repos) error {
		var err error
		list, err = r.Transfers.ListPendingByDestination(ctx, warehouseID, limit, offset)
		return err
	})
	if err != nil {
		return nil, err
	}
	return list, nil
}

// Availability suma del disponible en lotes activos de un producto en una bodega.
func (uc *LedgerUseCase) Availability(ctx context.Context, productID, warehouseID string) (decimal.Decimal, error) {
	if productID == "" || warehouseID == "" {
		return decimal.Zero, domain.ErrInvalidInput
	}
	var total decimal.Decimal
	err := uc.txRunner.Run(ctx, func(r Repos) error {
		if _, err := requireWarehouse(ctx, r, warehouseID); err != nil {
			return err
		}
		var err error
		total, err = r.Lots.SumAvailable(ctx, productID, warehouseID)
		return err
	})
	return total, err
}
