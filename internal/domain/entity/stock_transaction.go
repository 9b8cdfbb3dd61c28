package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de una recepción.
const (
	StockTxPending   = "pending"
	StockTxCompleted = "completed"
	StockTxCancelled = "cancelled"
)

// StockTransaction registro de una recepción de mercancía en un lote.
// Se crea siempre, aunque el lote ya existiera; anular es un cambio de estado.
type StockTransaction struct {
	ID                string
	TransactionNumber string
	LotID             string
	ProductID         string
	SupplierID        string
	WarehouseID       string
	UserID            string
	Quantity          decimal.Decimal
	Status            string
	CreatedAt         time.Time
	CancelledBy       string
	CancelledAt       *time.Time
}
