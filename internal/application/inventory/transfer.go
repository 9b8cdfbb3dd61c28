package inventory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/inventory"
)

// TransferLineInput lote origen y cantidad a trasladar.
type TransferLineInput struct {
	LotID    string
	Quantity decimal.Decimal
}

// TransferInput entrada para iniciar un traslado.
type TransferInput struct {
	SourceWarehouseID      string
	DestinationWarehouseID string
	Reason                 string
	Lines                  []TransferLineInput
}

func (in TransferInput) validate() error {
	if in.SourceWarehouseID == "" || in.DestinationWarehouseID == "" {
		return fmt.Errorf("%w: bodegas origen y destino son obligatorias", domain.ErrInvalidInput)
	}
	if in.SourceWarehouseID == in.DestinationWarehouseID {
		return fmt.Errorf("%w: origen y destino deben ser distintos", domain.ErrInvalidInput)
	}
	if len(in.Lines) == 0 {
		return fmt.Errorf("%w: el traslado no tiene líneas", domain.ErrInvalidInput)
	}
	for _, l := range in.Lines {
		if l.LotID == "" || !l.Quantity.IsPositive() {
			return fmt.Errorf("%w: cada línea requiere lote y cantidad positiva", domain.ErrInvalidInput)
		}
	}
	return nil
}

// InitiateTransfer descuenta de inmediato los lotes origen (TransferOut) y deja la cantidad
// en camino sobre el lote gemelo del destino (IncomingQty), creándolo en pending si no existe.
// El destino no cuenta la mercancía hasta ConfirmTransfer.
func (uc *LedgerUseCase) InitiateTransfer(ctx context.Context, actor Actor, in TransferInput) (*entity.TransferTransaction, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	now := uc.clock()
	var t *entity.TransferTransaction
	err := uc.txRunner.Run(ctx, func(r Repos) error {
		src, err := requireWarehouse(ctx, r, in.SourceWarehouseID)
		if err != nil {
			return err
		}
		dst, err := requireWarehouse(ctx, r, in.DestinationWarehouseID)
		if err != nil {
			return err
		}

		sources, err := lockSourceLots(ctx, r, in.Lines)
		if err != nil {
			return err
		}
		requested := make(map[string]decimal.Decimal, len(sources))
		for _, l := range in.Lines {
			requested[l.LotID] = requested[l.LotID].Add(l.Quantity)
		}
		for id, qty := range requested {
			lot := sources[id]
			if lot.WarehouseID != src.ID {
				return fmt.Errorf("%w: el lote %s no pertenece a la bodega %s", domain.ErrLotNotFound, lot.LotCode, src.Code)
			}
			if qty.GreaterThan(lot.QtyOnHand) {
				return domain.InsufficientStock(lot.ID, lot.LotCode, qty, lot.QtyOnHand)
			}
		}

		seq, err := nextNumber(ctx, r, inventory.ScopeKey(inventory.PrefixTransfer, src.Code))
		if err != nil {
			return err
		}
		t = &entity.TransferTransaction{
			ID:                     uuid.New().String(),
			TransferNumber:         inventory.FormatNumber(inventory.PrefixTransfer, src.Code, seq),
			TrackingNumber:         uuid.New().String(),
			SourceWarehouseID:      src.ID,
			DestinationWarehouseID: dst.ID,
			Status:                 entity.TransferPending,
			Reason:                 in.Reason,
			CreatedBy:              actor.UserID,
			CreatedAt:              now,
		}

		for _, l := range in.Lines {
			source := sources[l.LotID]
			out := newEntry(entity.HistoryTransferOut, actor, in.Reason, t.TransferNumber, src.ID, now)
			out.DestinationWarehouseID = dst.ID
			if err := movement(ctx, r, source, l.Quantity.Neg(), out); err != nil {
				return err
			}

			dest, err := destinationTwin(ctx, r, source, dst.ID, now)
			if err != nil {
				return err
			}
			dest.IncomingQty = dest.IncomingQty.Add(l.Quantity)
			dest.UpdatedAt = now
			if err := r.Lots.Save(ctx, dest); err != nil {
				return err
			}
			pending := newEntry(entity.HistoryTransferInPending, actor, in.Reason, t.TransferNumber, dst.ID, now)
			pending.LotID = dest.ID
			pending.BeforeQty = dest.QtyOnHand
			pending.AfterQty = dest.QtyOnHand
			pending.QuantityAdjusted = decimal.Zero
			pending.PendingQuantity = l.Quantity
			if err := r.Lots.AppendHistory(ctx, &pending); err != nil {
				return err
			}

			t.Lines = append(t.Lines, entity.TransferLine{
				SourceLotID:      source.ID,
				DestinationLotID: dest.ID,
				LotCode:          source.LotCode,
				Quantity:         l.Quantity,
			})
		}
		return r.Transfers.Create(ctx, t)
	})
	if err != nil {
		return nil, err
	}

	uc.log.Info().
		Str("number", t.TransferNumber).
		Str("tracking", t.TrackingNumber).
		Str("from", t.SourceWarehouseID).
		Str("to", t.DestinationWarehouseID).
		Msg("traslado iniciado")
	uc.publish(ctx, actor, entity.Notification{
		Event:       entity.EventTransferInitiated,
		Title:       "Traslado en camino",
		Message:     fmt.Sprintf("Traslado %s pendiente de confirmación (%d línea(s))", t.TransferNumber, len(t.Lines)),
		WarehouseID: t.DestinationWarehouseID,
		Reference:   t.TransferNumber,
	})
	return t, nil
}

// lockSourceLots bloquea los lotes origen en orden ascendente de id para que dos traslados
// concurrentes sobre los mismos lotes no se bloqueen mutuamente.
func lockSourceLots(ctx context.Context, r Repos, lines []TransferLineInput) (map[string]*entity.Lot, error) {
	ids := make([]string, 0, len(lines))
	seen := make(map[string]bool, len(lines))
	for _, l := range lines {
		if !seen[l.LotID] {
			seen[l.LotID] = true
			ids = append(ids, l.LotID)
		}
	}
	sort.Strings(ids)

	lots := make(map[string]*entity.Lot, len(ids))
	for _, id := range ids {
		lot, err := lockLot(ctx, r, id)
		if err != nil {
			return nil, err
		}
		lots[id] = lot
	}
	return lots, nil
}

// destinationTwin busca el lote (lotCode, bodega destino) o crea el placeholder pending
// copiando los atributos estáticos del origen.
func destinationTwin(ctx context.Context, r Repos, source *entity.Lot, warehouseID string, now time.Time) (*entity.Lot, error) {
	dest, err := r.Lots.FindByCodeForUpdate(ctx, source.LotCode, warehouseID)
	if err != nil {
		return nil, err
	}
	if dest != nil {
		if dest.ProductID != source.ProductID {
			return nil, fmt.Errorf("%w: el lote %s ya existe en destino con otro producto", domain.ErrConflict, source.LotCode)
		}
		return dest, nil
	}
	dest = &entity.Lot{
		ID:             uuid.New().String(),
		LotCode:        source.LotCode,
		ProductID:      source.ProductID,
		WarehouseID:    warehouseID,
		SupplierID:     source.SupplierID,
		ProductionDate: source.ProductionDate,
		ExpDate:        source.ExpDate,
		Packing:        source.Packing,
		Quantity:       decimal.Zero,
		QtyOnHand:      decimal.Zero,
		Damaged:        decimal.Zero,
		IncomingQty:    decimal.Zero,
		Status:         entity.LotStatusPending,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := r.Lots.Create(ctx, dest); err != nil {
		return nil, err
	}
	return dest, nil
}

// lockPendingTransfer bloquea el traslado y verifica bodega del usuario y estado Pending.
func lockPendingTransfer(ctx context.Context, r Repos, actor Actor, transferID string) (*entity.TransferTransaction, error) {
	t, err := r.Transfers.GetForUpdate(ctx, transferID)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrTransferNotFound, transferID)
	}
	if actor.WarehouseID != t.DestinationWarehouseID {
		return nil, fmt.Errorf("%w: solo la bodega destino puede resolver el traslado %s", domain.ErrUnauthorized, t.TransferNumber)
	}
	if !t.IsPending() {
		return nil, fmt.Errorf("%w: %s está %s", domain.ErrInvalidTransferState, t.TransferNumber, t.Status)
	}
	return t, nil
}

// ConfirmTransfer la bodega destino recibe: cada lote destino suma la cantidad en camino a su
// disponible y queda activo.
func (uc *LedgerUseCase) ConfirmTransfer(ctx context.Context, actor Actor, transferID string) (*entity.TransferTransaction, error) {
	if transferID == "" {
		return nil, domain.ErrInvalidInput
	}
	now := uc.clock()
	var t *entity.TransferTransaction
	err := uc.txRunner.Run(ctx, func(r Repos) error {
		var err error
		t, err = lockPendingTransfer(ctx, r, actor, transferID)
		if err != nil {
			return err
		}
		for _, line := range t.Lines {
			dest, err := lockLot(ctx, r, line.DestinationLotID)
			if err != nil {
				return err
			}
			if dest.IncomingQty.LessThan(line.Quantity) {
				return fmt.Errorf("%w: el lote %s no tiene %s unidades en camino", domain.ErrConflict, dest.LotCode, line.Quantity)
			}
			dest.IncomingQty = dest.IncomingQty.Sub(line.Quantity)
			dest.Quantity = dest.Quantity.Add(line.Quantity)
			dest.Status = entity.LotStatusActive
			dest.UpdatedAt = now
			if err := r.Lots.Save(ctx, dest); err != nil {
				return err
			}
			in := newEntry(entity.HistoryTransferIn, actor, t.Reason, t.TransferNumber, t.DestinationWarehouseID, now)
			in.PendingQuantity = line.Quantity.Neg()
			if err := movement(ctx, r, dest, line.Quantity, in); err != nil {
				return err
			}
		}
		t.Status = entity.TransferConfirmed
		t.CompletedBy = actor.UserID
		t.CompletedAt = &now
		return r.Transfers.UpdateStatus(ctx, t)
	})
	if err != nil {
		return nil, err
	}

	uc.log.Info().Str("number", t.TransferNumber).Msg("traslado confirmado")
	uc.publish(ctx, actor, entity.Notification{
		Event:       entity.EventTransferConfirmed,
		Title:       "Traslado confirmado",
		Message:     fmt.Sprintf("Traslado %s recibido en destino", t.TransferNumber),
		WarehouseID: t.SourceWarehouseID,
		Reference:   t.TransferNumber,
	})
	return t, nil
}

// RejectTransfer devuelve la cantidad a los lotes origen (TransferInRejected) y descarta los
// placeholders del destino que quedan vacíos.
func (uc *LedgerUseCase) RejectTransfer(ctx context.Context, actor Actor, transferID, reason string) (*entity.TransferTransaction, error) {
	if transferID == "" {
		return nil, domain.ErrInvalidInput
	}
	now := uc.clock()
	var t *entity.TransferTransaction
	err := uc.txRunner.Run(ctx, func(r Repos) error {
		var err error
		t, err = lockPendingTransfer(ctx, r, actor, transferID)
		if err != nil {
			return err
		}
		for _, line := range t.Lines {
			source, err := lockLot(ctx, r, line.SourceLotID)
			if err != nil {
				return err
			}
			back := newEntry(entity.HistoryTransferInRejected, actor, reason, t.TransferNumber, t.SourceWarehouseID, now)
			back.DestinationWarehouseID = t.DestinationWarehouseID
			if err := movement(ctx, r, source, line.Quantity, back); err != nil {
				return err
			}

			dest, err := r.Lots.GetForUpdate(ctx, line.DestinationLotID)
			if err != nil {
				return err
			}
			if dest == nil {
				continue
			}
			dest.IncomingQty = decimal.Max(decimal.Zero, dest.IncomingQty.Sub(line.Quantity))
			if isDiscardablePlaceholder(dest) {
				if err := r.Lots.Delete(ctx, dest.ID); err != nil {
					return err
				}
				continue
			}
			dest.UpdatedAt = now
			if err := r.Lots.Save(ctx, dest); err != nil {
				return err
			}
			rejected := newEntry(entity.HistoryTransferInRejected, actor, reason, t.TransferNumber, t.DestinationWarehouseID, now)
			rejected.LotID = dest.ID
			rejected.BeforeQty = dest.QtyOnHand
			rejected.AfterQty = dest.QtyOnHand
			rejected.QuantityAdjusted = decimal.Zero
			rejected.PendingQuantity = line.Quantity.Neg()
			if err := r.Lots.AppendHistory(ctx, &rejected); err != nil {
				return err
			}
		}
		t.Status = entity.TransferRejected
		t.CompletedBy = actor.UserID
		t.CompletedAt = &now
		if reason != "" {
			t.Reason = reason
		}
		return r.Transfers.UpdateStatus(ctx, t)
	})
	if err != nil {
		return nil, err
	}

	uc.log.Info().Str("number", t.TransferNumber).Msg("traslado rechazado")
	uc.publish(ctx, actor, entity.Notification{
		Event:       entity.EventTransferRejected,
		Title:       "Traslado rechazado",
		Message:     fmt.Sprintf("Traslado %s rechazado; la mercancía vuelve a origen", t.TransferNumber),
		WarehouseID: t.SourceWarehouseID,
		Reference:   t.TransferNumber,
	})
	return t, nil
}

// isDiscardablePlaceholder lote destino creado solo para un traslado y que quedó sin saldo.
func isDiscardablePlaceholder(l *entity.Lot) bool {
	return l.Status == entity.LotStatusPending &&
		l.QtyOnHand.IsZero() &&
		l.Damaged.IsZero() &&
		l.IncomingQty.IsZero()
}
