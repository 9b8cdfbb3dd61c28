package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados del traslado. Pending → Confirmed | Rejected; ambos terminales.
const (
	TransferPending   = "Pending"
	TransferConfirmed = "Confirmed"
	TransferRejected  = "Rejected"
)

// TransferLine lote origen, lote destino y cantidad en tránsito.
type TransferLine struct {
	SourceLotID      string
	DestinationLotID string
	LotCode          string
	Quantity         decimal.Decimal
}

// TransferTransaction traslado entre bodegas.
type TransferTransaction struct {
	ID                     string
	TransferNumber         string
	TrackingNumber         string
	SourceWarehouseID      string
	DestinationWarehouseID string
	Lines                  []TransferLine
	Status                 string
	Reason                 string
	CreatedBy              string
	CompletedBy            string
	CreatedAt              time.Time
	CompletedAt            *time.Time
}

// IsPending indica si el traslado aún admite confirmar o rechazar.
func (t *TransferTransaction) IsPending() bool {
	return t.Status == TransferPending
}
