package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// PackingDTO empaque declarado al recibir.
type PackingDTO struct {
	Boxes       int             `json:"boxes"`
	UnitsPerBox decimal.Decimal `json:"units_per_box"`
	Unit        string          `json:"unit"`
}

// ReceiveLineRequest una línea de recepción (un lote).
type ReceiveLineRequest struct {
	LotCode        string          `json:"lot_code"`
	ProductID      string          `json:"product_id"`
	WarehouseID    string          `json:"warehouse_id"`
	SupplierID     string          `json:"supplier_id,omitempty"`
	ProductionDate *time.Time      `json:"production_date,omitempty"`
	ExpDate        time.Time       `json:"exp_date"`
	Packing        PackingDTO      `json:"packing"`
	Quantity       decimal.Decimal `json:"quantity"`
}

// ReceiveRequest body para POST /api/inventory/receipts. Todas las líneas se aplican o ninguna.
type ReceiveRequest struct {
	Reason string               `json:"reason"`
	Lines  []ReceiveLineRequest `json:"lines"`
}

// ReceiptResponse resultado por línea recibida.
type ReceiptResponse struct {
	TransactionID     string          `json:"transaction_id"`
	TransactionNumber string          `json:"transaction_number"`
	LotID             string          `json:"lot_id"`
	LotCode           string          `json:"lot_code"`
	WarehouseID       string          `json:"warehouse_id"`
	QtyOnHand         decimal.Decimal `json:"qty_on_hand"`
	NewLot            bool            `json:"new_lot"`
}

// CancelRequest body de las anulaciones y rechazos.
type CancelRequest struct {
	Reason string `json:"reason"`
}

// StockTransactionResponse recepción registrada.
type StockTransactionResponse struct {
	ID                string          `json:"id"`
	TransactionNumber string          `json:"transaction_number"`
	LotID             string          `json:"lot_id"`
	ProductID         string          `json:"product_id"`
	WarehouseID       string          `json:"warehouse_id"`
	Quantity          decimal.Decimal `json:"quantity"`
	Status            string          `json:"status"`
	CreatedAt         time.Time       `json:"created_at"`
	CancelledAt       *time.Time      `json:"cancelled_at,omitempty"`
}

// IssueRequest body para POST /api/inventory/issues.
// LotID solo aplica a descartes (type=waste) sobre un lote puntual.
type IssueRequest struct {
	Type                   string          `json:"type"`
	ProductID              string          `json:"product_id"`
	LotID                  string          `json:"lot_id,omitempty"`
	WarehouseID            string          `json:"warehouse_id"`
	DestinationWarehouseID string          `json:"destination_warehouse_id,omitempty"`
	Quantity               decimal.Decimal `json:"quantity"`
	Reason                 string          `json:"reason"`
}

// IssueLineResponse cantidad tomada de un lote.
type IssueLineResponse struct {
	LotID       string          `json:"lot_id"`
	LotCode     string          `json:"lot_code"`
	Quantity    decimal.Decimal `json:"quantity"`
	FromDamaged decimal.Decimal `json:"from_damaged"`
}

// IssueResponse salida registrada con su plan FEFO.
type IssueResponse struct {
	ID                string              `json:"id"`
	TransactionNumber string              `json:"transaction_number"`
	Type              string              `json:"type"`
	ProductID         string              `json:"product_id"`
	WarehouseID       string              `json:"warehouse_id"`
	Status            string              `json:"status"`
	Lines             []IssueLineResponse `json:"lines"`
	RemainingStock    *decimal.Decimal    `json:"remaining_stock,omitempty"`
	CreatedAt         time.Time           `json:"created_at"`
	CancelledAt       *time.Time          `json:"cancelled_at,omitempty"`
}

// AdjustRequest body para POST /api/inventory/lots/:id/adjust. Delta con signo.
type AdjustRequest struct {
	Delta  decimal.Decimal `json:"delta"`
	Reason string          `json:"reason"`
}

// DamageRequest body para POST /api/inventory/lots/:id/damage.
type DamageRequest struct {
	Quantity decimal.Decimal `json:"quantity"`
	Reason   string          `json:"reason"`
}

// DamageResponse constancia de daño y saldo del lote.
type DamageResponse struct {
	ReportNumber string          `json:"report_number"`
	LotID        string          `json:"lot_id"`
	Quantity     decimal.Decimal `json:"quantity"`
	QtyOnHand    decimal.Decimal `json:"qty_on_hand"`
	Damaged      decimal.Decimal `json:"damaged"`
	Status       string          `json:"status"`
}

// LotHistoryResponse una entrada del historial.
type LotHistoryResponse struct {
	Timestamp        time.Time       `json:"timestamp"`
	TransactionType  string          `json:"transaction_type"`
	QuantityAdjusted decimal.Decimal `json:"quantity_adjusted"`
	BeforeQty        decimal.Decimal `json:"before_qty"`
	AfterQty         decimal.Decimal `json:"after_qty"`
	PendingQuantity  decimal.Decimal `json:"pending_quantity"`
	Reference        string          `json:"reference,omitempty"`
	Reason           string          `json:"reason,omitempty"`
	UserID           string          `json:"user_id"`
}

// LotResponse lote con saldos e historial.
type LotResponse struct {
	ID          string               `json:"id"`
	LotCode     string               `json:"lot_code"`
	ProductID   string               `json:"product_id"`
	WarehouseID string               `json:"warehouse_id"`
	ExpDate     time.Time            `json:"exp_date"`
	Packing     PackingDTO           `json:"packing"`
	Quantity    decimal.Decimal      `json:"quantity"`
	QtyOnHand   decimal.Decimal      `json:"qty_on_hand"`
	Damaged     decimal.Decimal      `json:"damaged"`
	IncomingQty decimal.Decimal      `json:"incoming_qty"`
	Status      string               `json:"status"`
	History     []LotHistoryResponse `json:"history,omitempty"`
}

// AvailabilityResponse disponible de un producto en una bodega.
type AvailabilityResponse struct {
	ProductID   string          `json:"product_id"`
	WarehouseID string          `json:"warehouse_id"`
	Available   decimal.Decimal `json:"available"`
}
