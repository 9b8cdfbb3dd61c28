package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/inventory"
)

// IssueInput entrada para una salida de inventario.
// Type = waste con LotID descuenta directo de ese lote (dañado primero); en otro caso
// se asigna por FEFO sobre ProductID en WarehouseID.
type IssueInput struct {
	Type                   string
	ProductID              string
	LotID                  string
	WarehouseID            string
	DestinationWarehouseID string
	Quantity               decimal.Decimal
	Reason                 string
}

// IssueResult número generado, líneas aplicadas y saldo restante.
type IssueResult struct {
	Transaction    *entity.IssueTransaction
	RemainingStock decimal.Decimal
}

func (in IssueInput) validate() error {
	if !entity.IsValidIssueType(in.Type) {
		return fmt.Errorf("%w: tipo de salida %q", domain.ErrInvalidInput, in.Type)
	}
	if !in.Quantity.IsPositive() {
		return fmt.Errorf("%w: la cantidad debe ser positiva", domain.ErrInvalidInput)
	}
	if in.WarehouseID == "" {
		return fmt.Errorf("%w: bodega requerida", domain.ErrInvalidInput)
	}
	if !in.directWaste() && in.ProductID == "" {
		return fmt.Errorf("%w: producto requerido", domain.ErrInvalidInput)
	}
	return nil
}

func (in IssueInput) directWaste() bool {
	return in.Type == entity.IssueTypeWaste && in.LotID != ""
}

// Issue saca mercancía. Verifica disponibilidad sobre filas bloqueadas antes de mutar: si no
// alcanza retorna StockError con el total disponible y no toca ningún lote.
func (uc *LedgerUseCase) Issue(ctx context.Context, actor Actor, in IssueInput) (*IssueResult, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	now := uc.clock()
	var res *IssueResult
	err := uc.txRunner.Run(ctx, func(r Repos) error {
		wh, err := requireWarehouse(ctx, r, in.WarehouseID)
		if err != nil {
			return err
		}
		if in.DestinationWarehouseID != "" {
			if _, err := requireWarehouse(ctx, r, in.DestinationWarehouseID); err != nil {
				return err
			}
		}

		seq, err := nextNumber(ctx, r, inventory.ScopeKey(inventory.IssuePrefix(in.Type), wh.Code))
		if err != nil {
			return err
		}
		tx := &entity.IssueTransaction{
			ID:                     uuid.New().String(),
			TransactionNumber:      inventory.FormatNumber(inventory.IssuePrefix(in.Type), wh.Code, seq),
			Type:                   in.Type,
			ProductID:              in.ProductID,
			WarehouseID:            wh.ID,
			DestinationWarehouseID: in.DestinationWarehouseID,
			Reason:                 in.Reason,
			UserID:                 actor.UserID,
			Status:                 entity.IssueStatusActive,
			CreatedAt:              now,
		}

		var remaining decimal.Decimal
		if in.directWaste() {
			remaining, err = uc.wasteLot(ctx, r, actor, in, tx, now)
		} else {
			remaining, err = uc.issueFEFO(ctx, r, actor, in, tx, now)
		}
		if err != nil {
			return err
		}
		if err := r.Issues.Create(ctx, tx); err != nil {
			return err
		}
		res = &IssueResult{Transaction: tx, RemainingStock: remaining}
		return nil
	})
	if err != nil {
		return nil, err
	}

	tx := res.Transaction
	uc.log.Info().
		Str("number", tx.TransactionNumber).
		Str("type", tx.Type).
		Int("lines", len(tx.Lines)).
		Str("remaining", res.RemainingStock.String()).
		Msg("salida registrada")
	uc.publish(ctx, actor, entity.Notification{
		Event:       entity.EventStockIssued,
		Title:       "Salida de inventario",
		Message:     fmt.Sprintf("Salida %s (%s) por %s unidades", tx.TransactionNumber, tx.Type, tx.Total()),
		WarehouseID: tx.WarehouseID,
		Reference:   tx.TransactionNumber,
	})
	return res, nil
}

func (uc *LedgerUseCase) issueFEFO(ctx context.Context, r Repos, actor Actor, in IssueInput, tx *entity.IssueTransaction, now time.Time) (decimal.Decimal, error) {
	plan, err := inventory.NewFEFOAllocator(r.Lots).Pick(ctx, lotFilterFor(in.Type, in.ProductID, tx.WarehouseID, now), in.Quantity)
	if err != nil {
		return decimal.Zero, err
	}
	histType := entity.HistoryTypeForIssue(in.Type)
	for _, a := range plan {
		entry := newEntry(histType, actor, in.Reason, tx.TransactionNumber, tx.WarehouseID, now)
		entry.DestinationWarehouseID = in.DestinationWarehouseID
		if err := movement(ctx, r, a.Lot, a.Quantity.Neg(), entry); err != nil {
			return decimal.Zero, err
		}
		tx.Lines = append(tx.Lines, entity.IssueLine{
			LotID:       a.Lot.ID,
			LotCode:     a.Lot.LotCode,
			Quantity:    a.Quantity,
			FromDamaged: decimal.Zero,
		})
	}
	if in.Type == entity.IssueTypeExpired {
		left := decimal.Zero
		lots, err := r.Lots.ListForAllocation(ctx, lotFilterFor(in.Type, in.ProductID, tx.WarehouseID, now))
		if err != nil {
			return decimal.Zero, err
		}
		for _, l := range lots {
			left = left.Add(l.QtyOnHand)
		}
		return left, nil
	}
	return r.Lots.SumAvailable(ctx, in.ProductID, tx.WarehouseID)
}

// wasteLot descuenta de un lote puntual: primero lo dañado, el resto del disponible.
func (uc *LedgerUseCase) wasteLot(ctx context.Context, r Repos, actor Actor, in IssueInput, tx *entity.IssueTransaction, now time.Time) (decimal.Decimal, error) {
	lot, err := lockLot(ctx, r, in.LotID)
	if err != nil {
		return decimal.Zero, err
	}
	if lot.WarehouseID != tx.WarehouseID {
		return decimal.Zero, fmt.Errorf("%w: el lote %s no pertenece a la bodega", domain.ErrLotNotFound, lot.LotCode)
	}
	if in.ProductID != "" && in.ProductID != lot.ProductID {
		return decimal.Zero, fmt.Errorf("%w: el lote %s es de otro producto", domain.ErrInvalidInput, lot.LotCode)
	}
	if usable := lot.Usable(); in.Quantity.GreaterThan(usable) {
		return decimal.Zero, domain.InsufficientStock(lot.ID, lot.LotCode, in.Quantity, usable)
	}

	fromDamaged := decimal.Min(in.Quantity, lot.Damaged)
	fromOnHand := in.Quantity.Sub(fromDamaged)
	if fromDamaged.IsPositive() {
		lot.Damaged = lot.Damaged.Sub(fromDamaged)
		lot.UpdatedAt = now
		if err := r.Lots.Save(ctx, lot); err != nil {
			return decimal.Zero, err
		}
	}
	entry := newEntry(entity.HistoryWaste, actor, in.Reason, tx.TransactionNumber, tx.WarehouseID, now)
	if err := movement(ctx, r, lot, fromOnHand.Neg(), entry); err != nil {
		return decimal.Zero, err
	}

	tx.ProductID = lot.ProductID
	tx.Lines = append(tx.Lines, entity.IssueLine{
		LotID:       lot.ID,
		LotCode:     lot.LotCode,
		Quantity:    in.Quantity,
		FromDamaged: fromDamaged,
	})
	return lot.QtyOnHand, nil
}

// CancelIssue revierte una salida activa: devuelve a cada lote lo que salió (a dañado y a
// disponible según la línea) y la marca Cancelled. Una segunda anulación falla con ErrAlreadyCancelled.
func (uc *LedgerUseCase) CancelIssue(ctx context.Context, actor Actor, issueID, reason string) (*entity.IssueTransaction, error) {
	if issueID == "" {
		return nil, domain.ErrInvalidInput
	}
	now := uc.clock()
	var tx *entity.IssueTransaction
	err := uc.txRunner.Run(ctx, func(r Repos) error {
		var err error
		tx, err = r.Issues.GetForUpdate(ctx, issueID)
		if err != nil {
			return err
		}
		if tx == nil {
			return fmt.Errorf("%w: %s", domain.ErrTransactionNotFound, issueID)
		}
		if tx.Status != entity.IssueStatusActive {
			return fmt.Errorf("%w: %s", domain.ErrAlreadyCancelled, tx.TransactionNumber)
		}
		for _, line := range tx.Lines {
			lot, err := lockLot(ctx, r, line.LotID)
			if err != nil {
				return err
			}
			if line.FromDamaged.IsPositive() {
				lot.Damaged = lot.Damaged.Add(line.FromDamaged)
				lot.UpdatedAt = now
				if err := r.Lots.Save(ctx, lot); err != nil {
					return err
				}
			}
			entry := newEntry(entity.HistoryCancel, actor, reason, tx.TransactionNumber, lot.WarehouseID, now)
			if err := movement(ctx, r, lot, line.FromOnHand(), entry); err != nil {
				return err
			}
		}
		tx.Status = entity.IssueStatusCancelled
		tx.CancelledBy = actor.UserID
		tx.CancelledAt = &now
		return r.Issues.UpdateStatus(ctx, tx)
	})
	if err != nil {
		return nil, err
	}

	uc.log.Info().Str("number", tx.TransactionNumber).Msg("salida anulada")
	uc.publish(ctx, actor, entity.Notification{
		Event:       entity.EventIssueCancelled,
		Title:       "Salida anulada",
		Message:     fmt.Sprintf("Salida %s anulada, %s unidades devueltas", tx.TransactionNumber, tx.Total()),
		WarehouseID: tx.WarehouseID,
		Reference:   tx.TransactionNumber,
	})
	return tx, nil
}
