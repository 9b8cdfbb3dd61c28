package inventory

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/inventory"
)

// ReceiveLine una línea de recepción: lote, bodega y cantidad recibida.
type ReceiveLine struct {
	LotCode        string
	ProductID      string
	WarehouseID    string
	SupplierID     string
	ProductionDate *time.Time
	ExpDate        time.Time
	Packing        entity.Packing
	Quantity       decimal.Decimal
}

// ReceiveResult resultado por línea recibida.
type ReceiveResult struct {
	TransactionID     string
	TransactionNumber string
	LotID             string
	LotCode           string
	WarehouseID       string
	QtyOnHand         decimal.Decimal
	NewLot            bool
}

func (l ReceiveLine) validate() error {
	switch {
	case strings.TrimSpace(l.LotCode) == "", l.ProductID == "", l.WarehouseID == "":
		return fmt.Errorf("%w: lote, producto y bodega son obligatorios", domain.ErrInvalidInput)
	case !l.Quantity.IsPositive():
		return fmt.Errorf("%w: la cantidad recibida debe ser positiva", domain.ErrInvalidInput)
	case l.ExpDate.IsZero():
		return fmt.Errorf("%w: fecha de vencimiento requerida", domain.ErrInvalidInput)
	}
	return nil
}

// Receive ingresa mercancía. Todo el lote de líneas comparte una transacción: si una bodega
// no existe o falla cualquier línea, no queda nada aplicado. Cada línea crea su StockTransaction
// numerada, sume sobre un lote existente (lotCode, bodega) o cree uno nuevo.
func (uc *LedgerUseCase) Receive(ctx context.Context, actor Actor, lines []ReceiveLine, reason string) ([]ReceiveResult, error) {
	if len(lines) == 0 {
		return nil, fmt.Errorf("%w: sin líneas para recibir", domain.ErrInvalidInput)
	}
	for _, l := range lines {
		if err := l.validate(); err != nil {
			return nil, err
		}
	}

	now := uc.clock()
	results := make([]ReceiveResult, 0, len(lines))
	err := uc.txRunner.Run(ctx, func(r Repos) error {
		results = results[:0]
		for _, line := range lines {
			res, err := uc.receiveLine(ctx, r, actor, line, reason, now)
			if err != nil {
				return err
			}
			results = append(results, res)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	numbers := make([]string, 0, len(results))
	for _, res := range results {
		numbers = append(numbers, res.TransactionNumber)
		uc.log.Info().
			Str("number", res.TransactionNumber).
			Str("lot_id", res.LotID).
			Str("qty_on_hand", res.QtyOnHand.String()).
			Msg("recepción registrada")
	}
	uc.publish(ctx, actor, entity.Notification{
		Event:       entity.EventStockReceived,
		Title:       "Mercancía recibida",
		Message:     fmt.Sprintf("Se recibieron %d línea(s): %s", len(results), strings.Join(numbers, ", ")),
		WarehouseID: results[0].WarehouseID,
		Reference:   numbers[0],
	})
	return results, nil
}

func (uc *LedgerUseCase) receiveLine(ctx context.Context, r Repos, actor Actor, line ReceiveLine, reason string, now time.Time) (ReceiveResult, error) {
	wh, err := requireWarehouse(ctx, r, line.WarehouseID)
	if err != nil {
		return ReceiveResult{}, err
	}
	seq, err := nextNumber(ctx, r, inventory.ScopeKey(inventory.PrefixReceive, wh.Code))
	if err != nil {
		return ReceiveResult{}, err
	}
	number := inventory.FormatReceiveNumber(wh.Code, now, seq)

	lot, err := r.Lots.FindByCodeForUpdate(ctx, line.LotCode, wh.ID)
	if err != nil {
		return ReceiveResult{}, err
	}
	created := lot == nil
	if created {
		lot = &entity.Lot{
			ID:             uuid.New().String(),
			LotCode:        line.LotCode,
			ProductID:      line.ProductID,
			WarehouseID:    wh.ID,
			SupplierID:     line.SupplierID,
			ProductionDate: line.ProductionDate,
			ExpDate:        line.ExpDate,
			Packing:        line.Packing,
			Quantity:       line.Quantity,
			QtyOnHand:      decimal.Zero,
			Damaged:        decimal.Zero,
			IncomingQty:    decimal.Zero,
			Status:         entity.LotStatusActive,
			CreatedAt:      now,
			UpdatedAt:      now,
		}
		if err := r.Lots.Create(ctx, lot); err != nil {
			return ReceiveResult{}, err
		}
	} else {
		if lot.ProductID != line.ProductID {
			return ReceiveResult{}, fmt.Errorf("%w: el lote %s ya existe en la bodega %s con otro producto",
				domain.ErrConflict, line.LotCode, wh.Code)
		}
		lot.Quantity = lot.Quantity.Add(line.Quantity)
		if lot.Status == entity.LotStatusPending {
			lot.Status = entity.LotStatusActive
		}
		lot.UpdatedAt = now
		if err := r.Lots.Save(ctx, lot); err != nil {
			return ReceiveResult{}, err
		}
	}

	entry := newEntry(entity.HistoryReceive, actor, reason, number, wh.ID, now)
	if err := movement(ctx, r, lot, line.Quantity, entry); err != nil {
		return ReceiveResult{}, err
	}

	rcv := &entity.StockTransaction{
		ID:                uuid.New().String(),
		TransactionNumber: number,
		LotID:             lot.ID,
		ProductID:         lot.ProductID,
		SupplierID:        line.SupplierID,
		WarehouseID:       wh.ID,
		UserID:            actor.UserID,
		Quantity:          line.Quantity,
		Status:            entity.StockTxCompleted,
		CreatedAt:         now,
	}
	if err := r.Receipts.Create(ctx, rcv); err != nil {
		return ReceiveResult{}, err
	}

	return ReceiveResult{
		TransactionID:     rcv.ID,
		TransactionNumber: number,
		LotID:             lot.ID,
		LotCode:           lot.LotCode,
		WarehouseID:       wh.ID,
		QtyOnHand:         lot.QtyOnHand,
		NewLot:            created,
	}, nil
}

// CancelReceipt anula una recepción completada: descuenta lo recibido del lote (falla si ya
// se consumió) y pasa la recepción a cancelled.
func (uc *LedgerUseCase) CancelReceipt(ctx context.Context, actor Actor, receiptID, reason string) (*entity.StockTransaction, error) {
	if receiptID == "" {
		return nil, domain.ErrInvalidInput
	}
	now := uc.clock()
	var rcv *entity.StockTransaction
	err := uc.txRunner.Run(ctx, func(r Repos) error {
		var err error
		rcv, err = r.Receipts.GetForUpdate(ctx, receiptID)
		if err != nil {
			return err
		}
		if rcv == nil {
			return fmt.Errorf("%w: %s", domain.ErrTransactionNotFound, receiptID)
		}
		if rcv.Status != entity.StockTxCompleted {
			return fmt.Errorf("%w: %s", domain.ErrAlreadyCancelled, rcv.TransactionNumber)
		}
		lot, err := lockLot(ctx, r, rcv.LotID)
		if err != nil {
			return err
		}
		if lot.QtyOnHand.LessThan(rcv.Quantity) {
			return domain.InsufficientStock(lot.ID, lot.LotCode, rcv.Quantity, lot.QtyOnHand)
		}
		entry := newEntry(entity.HistoryCancel, actor, reason, rcv.TransactionNumber, lot.WarehouseID, now)
		if err := movement(ctx, r, lot, rcv.Quantity.Neg(), entry); err != nil {
			return err
		}
		lot.Quantity = lot.Quantity.Sub(rcv.Quantity)
		lot.UpdatedAt = now
		if err := r.Lots.Save(ctx, lot); err != nil {
			return err
		}
		rcv.Status = entity.StockTxCancelled
		rcv.CancelledBy = actor.UserID
		rcv.CancelledAt = &now
		return r.Receipts.UpdateStatus(ctx, rcv)
	})
	if err != nil {
		return nil, err
	}

	uc.log.Info().Str("number", rcv.TransactionNumber).Msg("recepción anulada")
	uc.publish(ctx, actor, entity.Notification{
		Event:       entity.EventReceiptCancelled,
		Title:       "Recepción anulada",
		Message:     fmt.Sprintf("Recepción %s anulada (%s unidades)", rcv.TransactionNumber, rcv.Quantity),
		WarehouseID: rcv.WarehouseID,
		Reference:   rcv.TransactionNumber,
	})
	return rcv, nil
}
