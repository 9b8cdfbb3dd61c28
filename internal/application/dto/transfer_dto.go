package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransferLineRequest lote origen y cantidad a trasladar.
type TransferLineRequest struct {
	LotID    string          `json:"lot_id"`
	Quantity decimal.Decimal `json:"quantity"`
}

// InitiateTransferRequest body para POST /api/transfers.
type InitiateTransferRequest struct {
	SourceWarehouseID      string                `json:"source_warehouse_id"`
	DestinationWarehouseID string                `json:"destination_warehouse_id"`
	Reason                 string                `json:"reason"`
	Lines                  []TransferLineRequest `json:"lines"`
}

// TransferLineResponse línea del traslado.
type TransferLineResponse struct {
	SourceLotID      string          `json:"source_lot_id"`
	DestinationLotID string          `json:"destination_lot_id"`
	LotCode          string          `json:"lot_code"`
	Quantity         decimal.Decimal `json:"quantity"`
}

// TransferResponse traslado con sus líneas.
type TransferResponse struct {
	ID                     string                 `json:"id"`
	TransferNumber         string                 `json:"transfer_number"`
	TrackingNumber         string                 `json:"tracking_number"`
	SourceWarehouseID      string                 `json:"source_warehouse_id"`
	DestinationWarehouseID string                 `json:"destination_warehouse_id"`
	Status                 string                 `json:"status"`
	Reason                 string                 `json:"reason,omitempty"`
	Lines                  []TransferLineResponse `json:"lines"`
	CreatedBy              string                 `json:"created_by"`
	CompletedBy            string                 `json:"completed_by,omitempty"`
	CreatedAt              time.Time              `json:"created_at"`
	CompletedAt            *time.Time             `json:"completed_at,omitempty"`
}

// TransferListResponse lista paginada de traslados.
type TransferListResponse struct {
	Items []TransferResponse `json:"items"`
	Page  PageResponse       `json:"page"`
}
