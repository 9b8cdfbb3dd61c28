package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de salida.
const (
	IssueTypeGeneral  = "general"
	IssueTypeSale     = "sale"
	IssueTypeWelfare  = "welfare"
	IssueTypeActivity = "activity"
	IssueTypeWaste    = "waste"
	IssueTypeExpired  = "expired"
)

// Estados de una salida.
const (
	IssueStatusActive    = "Active"
	IssueStatusCancelled = "Cancelled"
)

// IsValidIssueType valida el tipo de salida.
func IsValidIssueType(t string) bool {
	switch t {
	case IssueTypeGeneral, IssueTypeSale, IssueTypeWelfare, IssueTypeActivity, IssueTypeWaste, IssueTypeExpired:
		return true
	}
	return false
}

// HistoryTypeForIssue traduce el tipo de salida al tipo de movimiento del historial.
func HistoryTypeForIssue(t string) string {
	switch t {
	case IssueTypeSale:
		return HistorySale
	case IssueTypeWelfare:
		return HistoryWelfares
	case IssueTypeActivity:
		return HistoryActivities
	case IssueTypeWaste, IssueTypeExpired:
		return HistoryWaste
	default:
		return HistoryIssue
	}
}

// IssueLine cantidad tomada de un lote. FromDamaged es la parte que salió del
// saldo dañado (solo descartes directos); el resto salió de QtyOnHand.
type IssueLine struct {
	LotID       string
	LotCode     string
	Quantity    decimal.Decimal
	FromDamaged decimal.Decimal
}

// FromOnHand parte de la línea que salió del disponible.
func (l IssueLine) FromOnHand() decimal.Decimal {
	return l.Quantity.Sub(l.FromDamaged)
}

// IssueTransaction salida de inventario (venta, consumo, descarte...) con sus líneas por lote.
type IssueTransaction struct {
	ID                     string
	TransactionNumber      string
	Type                   string
	ProductID              string
	WarehouseID            string
	DestinationWarehouseID string
	Reason                 string
	UserID                 string
	Lines                  []IssueLine
	Status                 string
	CreatedAt              time.Time
	CancelledBy            string
	CancelledAt            *time.Time
}

// Total cantidad total de la salida.
func (t *IssueTransaction) Total() decimal.Decimal {
	total := decimal.Zero
	for _, l := range t.Lines {
		total = total.Add(l.Quantity)
	}
	return total
}
