package repository

import (
	"context"
	"time"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// LotFilter restringe los lotes candidatos para FEFO.
// Con ExpiredBefore definido se toman lotes vencidos (cualquier estado salvo pending);
// si no, solo lotes con Status = active.
type LotFilter struct {
	ProductID     string
	WarehouseID   string
	ExpiredBefore *time.Time
}

// LotRepository puerto del almacén de lotes. Las lecturas *ForUpdate bloquean
// la fila hasta el fin de la unidad de trabajo.
type LotRepository interface {
	GetByID(ctx context.Context, id string) (*entity.Lot, error)
	GetForUpdate(ctx context.Context, id string) (*entity.Lot, error)
	FindByCodeForUpdate(ctx context.Context, lotCode, warehouseID string) (*entity.Lot, error)
	// ListForAllocation devuelve los lotes con QtyOnHand > 0 ordenados por vencimiento
	// ascendente y orden de creación, bloqueados.
	ListForAllocation(ctx context.Context, f LotFilter) ([]*entity.Lot, error)
	Create(ctx context.Context, lot *entity.Lot) error
	// AdjustQuantity suma delta a QtyOnHand y agrega la entrada de historial en la misma
	// unidad de trabajo; completa BeforeQty/AfterQty/QuantityAdjusted de entry.
	// Devuelve ErrInsufficientStock si el resultado sería negativo.
	AdjustQuantity(ctx context.Context, id string, delta decimal.Decimal, entry *entity.LotHistoryEntry) (decimal.Decimal, error)
	// Save persiste los campos no contables del lote (Damaged, IncomingQty, Status, fechas).
	Save(ctx context.Context, lot *entity.Lot) error
	AppendHistory(ctx context.Context, entry *entity.LotHistoryEntry) error
	History(ctx context.Context, lotID string) ([]entity.LotHistoryEntry, error)
	Delete(ctx context.Context, id string) error
	SumAvailable(ctx context.Context, productID, warehouseID string) (decimal.Decimal, error)
	// MarkExpired pasa a expired los lotes activos vencidos antes de now; devuelve cuántos.
	MarkExpired(ctx context.Context, now time.Time) (int, error)
}
