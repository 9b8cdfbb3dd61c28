package inventory

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/inventory"
	"github.com/jhoicas/stock-ledger/pkg/jwt"
)

// Adjust suma un delta con signo al disponible de un lote. Solo administradores.
func (uc *LedgerUseCase) Adjust(ctx context.Context, actor Actor, lotID string, delta decimal.Decimal, reason string) (*entity.Lot, error) {
	if actor.Role != jwt.RoleAdmin {
		return nil, fmt.Errorf("%w: el ajuste requiere rol %s", domain.ErrUnauthorized, jwt.RoleAdmin)
	}
	if lotID == "" || delta.IsZero() {
		return nil, fmt.Errorf("%w: lote y delta distinto de cero son obligatorios", domain.ErrInvalidInput)
	}
	if strings.TrimSpace(reason) == "" {
		return nil, fmt.Errorf("%w: el ajuste requiere motivo", domain.ErrInvalidInput)
	}

	now := uc.clock()
	var lot *entity.Lot
	err := uc.txRunner.Run(ctx, func(r Repos) error {
		var err error
		lot, err = lockLot(ctx, r, lotID)
		if err != nil {
			return err
		}
		if lot.QtyOnHand.Add(delta).IsNegative() {
			return domain.InsufficientStock(lot.ID, lot.LotCode, delta.Neg(), lot.QtyOnHand)
		}
		entry := newEntry(entity.HistoryAdjust, actor, reason, "", lot.WarehouseID, now)
		return movement(ctx, r, lot, delta, entry)
	})
	if err != nil {
		return nil, err
	}

	uc.log.Info().Str("lot_id", lot.ID).Str("delta", delta.String()).Str("qty_on_hand", lot.QtyOnHand.String()).Msg("ajuste aplicado")
	uc.publish(ctx, actor, entity.Notification{
		Event:       entity.EventStockAdjusted,
		Title:       "Ajuste de inventario",
		Message:     fmt.Sprintf("Lote %s ajustado en %s (nuevo saldo %s): %s", lot.LotCode, delta, lot.QtyOnHand, reason),
		WarehouseID: lot.WarehouseID,
		Reference:   lot.LotCode,
	})
	return lot, nil
}

// DamageResult constancia generada y estado final del lote.
type DamageResult struct {
	Report *entity.DamageReport
	Lot    *entity.Lot
}

// Damage pasa cantidad del disponible a dañado y emite una constancia numerada por bodega y rol.
func (uc *LedgerUseCase) Damage(ctx context.Context, actor Actor, lotID string, quantity decimal.Decimal, reason string) (*DamageResult, error) {
	if lotID == "" || !quantity.IsPositive() {
		return nil, fmt.Errorf("%w: lote y cantidad positiva son obligatorios", domain.ErrInvalidInput)
	}
	role := actor.Role
	if role == "" {
		role = "user"
	}

	now := uc.clock()
	var res *DamageResult
	err := uc.txRunner.Run(ctx, func(r Repos) error {
		lot, err := lockLot(ctx, r, lotID)
		if err != nil {
			return err
		}
		usable := decimal.Max(lot.QtyOnHand.Sub(lot.Damaged), decimal.Zero)
		if quantity.GreaterThan(usable) {
			return domain.InsufficientStock(lot.ID, lot.LotCode, quantity, usable)
		}
		wh, err := requireWarehouse(ctx, r, lot.WarehouseID)
		if err != nil {
			return err
		}
		seq, err := nextNumber(ctx, r, inventory.ScopeKey(inventory.PrefixDamage, wh.Code, strings.ToUpper(role)))
		if err != nil {
			return err
		}
		number := inventory.FormatDamageNumber(role, wh.Code, seq)

		lot.Damaged = lot.Damaged.Add(quantity)
		if lot.QtyOnHand.Equal(quantity) {
			lot.Status = entity.LotStatusDamaged
		}
		lot.UpdatedAt = now
		if err := r.Lots.Save(ctx, lot); err != nil {
			return err
		}
		entry := newEntry(entity.HistoryDamage, actor, reason, number, wh.ID, now)
		if err := movement(ctx, r, lot, quantity.Neg(), entry); err != nil {
			return err
		}

		report := &entity.DamageReport{
			ID:           uuid.New().String(),
			ReportNumber: number,
			LotID:        lot.ID,
			WarehouseID:  wh.ID,
			Quantity:     quantity,
			Reason:       reason,
			ReportedBy:   actor.UserID,
			Role:         role,
			CreatedAt:    now,
		}
		if err := r.Damages.Create(ctx, report); err != nil {
			return err
		}
		res = &DamageResult{Report: report, Lot: lot}
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.log.Info().Str("number", res.Report.ReportNumber).Str("lot_id", res.Lot.ID).Msg("daño registrado")
	uc.publish(ctx, actor, entity.Notification{
		Event:       entity.EventStockDamaged,
		Title:       "Mercancía dañada",
		Message:     fmt.Sprintf("Lote %s: %s unidades marcadas como dañadas (%s)", res.Lot.LotCode, quantity, res.Report.ReportNumber),
		WarehouseID: res.Lot.WarehouseID,
		Reference:   res.Report.ReportNumber,
	})
	return res, nil
}
