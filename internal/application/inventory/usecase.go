package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
	"github.com/jhoicas/stock-ledger/pkg/logger"
)

// Actor quién ejecuta la operación (viene del JWT en la capa HTTP).
type Actor struct {
	UserID      string
	WarehouseID string
	Role        string
}

// LedgerUseCase motor de inventario por lotes: recepciones, salidas FEFO, anulaciones,
// ajustes, daños y traslados. Cada operación corre en una única transacción (TxRunner);
// auditoría y notificaciones se despachan después del commit y nunca la revierten.
type LedgerUseCase struct {
	txRunner    TxRunner
	auditRepo   repository.AuditLogRepository
	notifier    Notifier
	log         *logger.Logger
	sinkTimeout time.Duration
	now         func() time.Time
}

// NewLedgerUseCase construye el caso de uso. auditRepo y notifier pueden ser nil.
func NewLedgerUseCase(
	txRunner TxRunner,
	auditRepo repository.AuditLogRepository,
	notifier Notifier,
	log *logger.Logger,
	sinkTimeout time.Duration,
) *LedgerUseCase {
	if log == nil {
		log = logger.Nop()
	}
	if sinkTimeout <= 0 {
		sinkTimeout = 2 * time.Second
	}
	return &LedgerUseCase{
		txRunner:    txRunner,
		auditRepo:   auditRepo,
		notifier:    notifier,
		log:         log.Named("ledger"),
		sinkTimeout: sinkTimeout,
		now:         time.Now,
	}
}

// SetClock reemplaza el reloj (pruebas).
func (uc *LedgerUseCase) SetClock(now func() time.Time) {
	uc.now = now
}

func (uc *LedgerUseCase) clock() time.Time {
	return uc.now().UTC()
}

func requireWarehouse(ctx context.Context, r Repos, id string) (*entity.Warehouse, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: bodega requerida", domain.ErrInvalidInput)
	}
	wh, err := r.Warehouses.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if wh == nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrWarehouseNotFound, id)
	}
	return wh, nil
}

// lockLot bloquea el lote (SELECT FOR UPDATE) o retorna ErrLotNotFound.
func lockLot(ctx context.Context, r Repos, id string) (*entity.Lot, error) {
	lot, err := r.Lots.GetForUpdate(ctx, id)
	if err != nil {
		return nil, err
	}
	if lot == nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrLotNotFound, id)
	}
	return lot, nil
}

func nextNumber(ctx context.Context, r Repos, scope string) (int64, error) {
	seq, err := r.Sequences.Next(ctx, scope)
	if err != nil {
		return 0, fmt.Errorf("secuencia %s: %w", scope, err)
	}
	return seq, nil
}

// movement aplica delta sobre QtyOnHand y registra la entrada de historial en la misma tx.
func movement(ctx context.Context, r Repos, lot *entity.Lot, delta decimal.Decimal, entry entity.LotHistoryEntry) error {
	entry.LotID = lot.ID
	after, err := r.Lots.AdjustQuantity(ctx, lot.ID, delta, &entry)
	if err != nil {
		return err
	}
	lot.QtyOnHand = after
	// Un lote agotado por daño vuelve a asignarse cuando recupera disponible.
	if lot.Status == entity.LotStatusDamaged && after.IsPositive() {
		lot.Status = entity.LotStatusActive
		lot.UpdatedAt = entry.Timestamp
		return r.Lots.Save(ctx, lot)
	}
	return nil
}

func newEntry(txType string, actor Actor, reason, reference, warehouseID string, at time.Time) entity.LotHistoryEntry {
	return entity.LotHistoryEntry{
		ID:              uuid.New().String(),
		Timestamp:       at,
		UserID:          actor.UserID,
		Reason:          reason,
		TransactionType: txType,
		WarehouseID:     warehouseID,
		Reference:       reference,
	}
}

// lotFilterFor arma el filtro de asignación FEFO según el tipo de salida.
func lotFilterFor(issueType, productID, warehouseID string, now time.Time) repository.LotFilter {
	f := repository.LotFilter{ProductID: productID, WarehouseID: warehouseID}
	if issueType == entity.IssueTypeExpired {
		f.ExpiredBefore = &now
	}
	return f
}

// publish registra auditoría y notifica después del commit. Usa un contexto desacoplado del
// request con tope sinkTimeout; los errores solo se registran en log.
func (uc *LedgerUseCase) publish(ctx context.Context, actor Actor, n entity.Notification) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), uc.sinkTimeout)
	defer cancel()

	n.UserID = actor.UserID
	n.At = uc.clock()

	if uc.auditRepo != nil {
		entry := &entity.AuditLog{
			ID:          uuid.New().String(),
			UserID:      actor.UserID,
			Action:      n.Event,
			Reference:   n.Reference,
			WarehouseID: n.WarehouseID,
			CreatedAt:   n.At,
		}
		if err := uc.auditRepo.Create(ctx, entry); err != nil {
			uc.log.Warn().Err(err).Str("event", n.Event).Str("reference", n.Reference).Msg("no se pudo registrar auditoría")
		}
	}
	if uc.notifier != nil {
		if err := uc.notifier.Notify(ctx, n); err != nil {
			uc.log.Warn().Err(err).Str("event", n.Event).Str("reference", n.Reference).Msg("no se pudo notificar")
		}
	}
}
