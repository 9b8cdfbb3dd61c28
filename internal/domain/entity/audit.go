package entity

import "time"

// AuditLog quién hizo qué, independiente del historial de lotes.
type AuditLog struct {
	ID          string
	UserID      string
	Action      string
	Reference   string
	WarehouseID string
	CreatedAt   time.Time
}

// Eventos de notificación emitidos después de cada commit.
const (
	EventStockReceived     = "stock.received"
	EventReceiptCancelled  = "stock.receipt_cancelled"
	EventStockIssued       = "stock.issued"
	EventIssueCancelled    = "stock.issue_cancelled"
	EventStockAdjusted     = "stock.adjusted"
	EventStockDamaged      = "stock.damaged"
	EventLotsExpired       = "stock.lots_expired"
	EventTransferInitiated = "transfer.initiated"
	EventTransferConfirmed = "transfer.confirmed"
	EventTransferRejected  = "transfer.rejected"
)

// Notification aviso para usuarios; consumidor puro, no afecta el núcleo.
type Notification struct {
	Event       string    `json:"event"`
	Title       string    `json:"title"`
	Message     string    `json:"message"`
	WarehouseID string    `json:"warehouse_id,omitempty"`
	Reference   string    `json:"reference,omitempty"`
	UserID      string    `json:"user_id,omitempty"`
	At          time.Time `json:"at"`
}
