package http

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

func toReceiptResponses(list []inventory.ReceiveResult) []dto.ReceiptResponse {
	out := make([]dto.ReceiptResponse, 0, len(list))
	for _, r := range list {
		out = append(out, dto.ReceiptResponse{
			TransactionID:     r.TransactionID,
			TransactionNumber: r.TransactionNumber,
			LotID:             r.LotID,
			LotCode:           r.LotCode,
			WarehouseID:       r.WarehouseID,
			QtyOnHand:         r.QtyOnHand,
			NewLot:            r.NewLot,
		})
	}
	return out
}

func toStockTransactionResponse(t *entity.StockTransaction) dto.StockTransactionResponse {
	return dto.StockTransactionResponse{
		ID:                t.ID,
		TransactionNumber: t.TransactionNumber,
		LotID:             t.LotID,
		ProductID:         t.ProductID,
		WarehouseID:       t.WarehouseID,
		Quantity:          t.Quantity,
		Status:            t.Status,
		CreatedAt:         t.CreatedAt,
		CancelledAt:       t.CancelledAt,
	}
}

func toIssueResponse(t *entity.IssueTransaction, remaining *decimal.Decimal) dto.IssueResponse {
	lines := make([]dto.IssueLineResponse, 0, len(t.Lines))
	for _, l := range t.Lines {
		lines = append(lines, dto.IssueLineResponse{
			LotID:       l.LotID,
			LotCode:     l.LotCode,
			Quantity:    l.Quantity,
			FromDamaged: l.FromDamaged,
		})
	}
	return dto.IssueResponse{
		ID:                t.ID,
		TransactionNumber: t.TransactionNumber,
		Type:              t.Type,
		ProductID:         t.ProductID,
		WarehouseID:       t.WarehouseID,
		Status:            t.Status,
		Lines:             lines,
		RemainingStock:    remaining,
		CreatedAt:         t.CreatedAt,
		CancelledAt:       t.CancelledAt,
	}
}

func toPackingDTO(p entity.Packing) dto.PackingDTO {
	return dto.PackingDTO{Boxes: p.Boxes, UnitsPerBox: p.UnitsPerBox, Unit: p.Unit}
}

func toLotResponse(l *entity.Lot) dto.LotResponse {
	out := dto.LotResponse{
		ID:          l.ID,
		LotCode:     l.LotCode,
		ProductID:   l.ProductID,
		WarehouseID: l.WarehouseID,
		ExpDate:     l.ExpDate,
		Packing:     toPackingDTO(l.Packing),
		Quantity:    l.Quantity,
		QtyOnHand:   l.QtyOnHand,
		Damaged:     l.Damaged,
		IncomingQty: l.IncomingQty,
		Status:      l.Status,
	}
	for _, h := range l.History {
		out.History = append(out.History, dto.LotHistoryResponse{
			Timestamp:        h.Timestamp,
			TransactionType:  h.TransactionType,
			QuantityAdjusted: h.QuantityAdjusted,
			BeforeQty:        h.BeforeQty,
			AfterQty:         h.AfterQty,
			PendingQuantity:  h.PendingQuantity,
			Reference:        h.Reference,
			Reason:           h.Reason,
			UserID:           h.UserID,
		})
	}
	return out
}

func toTransferResponse(t *entity.TransferTransaction) dto.TransferResponse {
	lines := make([]dto.TransferLineResponse, 0, len(t.Lines))
	for _, l := range t.Lines {
		lines = append(lines, dto.TransferLineResponse{
			SourceLotID:      l.SourceLotID,
			DestinationLotID: l.DestinationLotID,
			LotCode:          l.LotCode,
			Quantity:         l.Quantity,
		})
	}
	return dto.TransferResponse{
		ID:                     t.ID,
		TransferNumber:         t.TransferNumber,
		TrackingNumber:         t.TrackingNumber,
		SourceWarehouseID:      t.SourceWarehouseID,
		DestinationWarehouseID: t.DestinationWarehouseID,
		Status:                 t.Status,
		Reason:                 t.Reason,
		Lines:                  lines,
		CreatedBy:              t.CreatedBy,
		CompletedBy:            t.CompletedBy,
		CreatedAt:              t.CreatedAt,
		CompletedAt:            t.CompletedAt,
	}
}
