package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de un lote.
const (
	LotStatusActive  = "active"
	LotStatusDamaged = "damaged"
	LotStatusExpired = "expired"
	LotStatusPending = "pending" // placeholder en bodega destino de un traslado en curso
)

// Tipos de transacción registrados en el historial de un lote.
const (
	HistoryReceive            = "Receive"
	HistoryIssue              = "Issue"
	HistoryTransferOut        = "TransferOut"
	HistoryTransferIn         = "TransferIn"
	HistoryTransferInPending  = "TransferInPending"
	HistoryTransferInRejected = "TransferInRejected"
	HistoryAdjust             = "Adjust"
	HistoryCancel             = "Cancel"
	HistoryWaste              = "Waste"
	HistorySale               = "Sale"
	HistoryWelfares           = "Welfares"
	HistoryActivities         = "Activities"
	HistoryDamage             = "Damage"
)

// Packing metadatos de empaque del lote.
type Packing struct {
	Boxes       int             `json:"boxes"`
	UnitsPerBox decimal.Decimal `json:"units_per_box"`
	Unit        string          `json:"unit"`
}

// Lot representa un lote físico de un producto en una bodega.
// QtyOnHand es lo disponible; Damaged lo marcado como no apto pero aún no descartado;
// IncomingQty lo que viene en camino desde traslados pendientes (aún no disponible).
type Lot struct {
	ID             string
	LotCode        string // único por bodega
	ProductID      string
	WarehouseID    string
	SupplierID     string
	ProductionDate *time.Time
	ExpDate        time.Time
	Packing        Packing
	Quantity       decimal.Decimal // total recibido
	QtyOnHand      decimal.Decimal
	Damaged        decimal.Decimal
	IncomingQty    decimal.Decimal
	Status         string
	CreatedAt      time.Time
	UpdatedAt      time.Time
	History        []LotHistoryEntry
}

// IsExpired indica si el lote venció respecto de now.
func (l *Lot) IsExpired(now time.Time) bool {
	return l.ExpDate.Before(now)
}

// Usable cantidad que se puede descartar directamente del lote (dañado + disponible).
func (l *Lot) Usable() decimal.Decimal {
	return l.QtyOnHand.Add(l.Damaged)
}

// LotHistoryEntry registro inmutable de un cambio de cantidad en un lote.
// QuantityAdjusted siempre es AfterQty - BeforeQty (sobre QtyOnHand).
type LotHistoryEntry struct {
	ID                     string
	LotID                  string
	Timestamp              time.Time
	UserID                 string
	Reason                 string
	QuantityAdjusted       decimal.Decimal
	BeforeQty              decimal.Decimal
	AfterQty               decimal.Decimal
	TransactionType        string
	WarehouseID            string
	DestinationWarehouseID string
	Reference              string          // número de transacción/traslado relacionado
	PendingQuantity        decimal.Decimal // variación de IncomingQty; no afecta QtyOnHand
}
