package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/pkg/logger"
)

// LedgerHandler recepciones, salidas, ajustes y daños sobre lotes (protegido).
type LedgerHandler struct {
	uc  *inventory.LedgerUseCase
	log *logger.Logger
}

// NewLedgerHandler construye el handler.
func NewLedgerHandler(uc *inventory.LedgerUseCase, log *logger.Logger) *LedgerHandler {
	return &LedgerHandler{uc: uc, log: log}
}

// Receive godoc
// @Summary      Registrar recepción de lotes
// @Description  Todas las líneas se aplican en una sola transacción; si una falla no se aplica ninguna.
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ReceiveRequest  true  "Líneas de recepción"
// @Success      201   {array}   dto.ReceiptResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/inventory/receipts [post]
func (h *LedgerHandler) Receive(c *fiber.Ctx) error {
	var in dto.ReceiveRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	lines := make([]inventory.ReceiveLine, 0, len(in.Lines))
	for _, l := range in.Lines {
		if !canOperate(c, l.WarehouseID) {
			return forbidden(c, "solo puede recibir en su bodega")
		}
		lines = append(lines, inventory.ReceiveLine{
			LotCode:        l.LotCode,
			ProductID:      l.ProductID,
			WarehouseID:    l.WarehouseID,
			SupplierID:     l.SupplierID,
			ProductionDate: l.ProductionDate,
			ExpDate:        l.ExpDate,
			Packing: entity.Packing{
				Boxes:       l.Packing.Boxes,
				UnitsPerBox: l.Packing.UnitsPerBox,
				Unit:        l.Packing.Unit,
			},
			Quantity: l.Quantity,
		})
	}
	out, err := h.uc.Receive(c.UserContext(), actorFrom(c), lines, in.Reason)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toReceiptResponses(out))
}

// CancelReceipt anula una recepción y descuenta lo recibido del lote.
func (h *LedgerHandler) CancelReceipt(c *fiber.Ctx) error {
	var in dto.CancelRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&in); err != nil {
			return badBody(c)
		}
	}
	out, err := h.uc.CancelReceipt(c.UserContext(), actorFrom(c), c.Params("id"), in.Reason)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(toStockTransactionResponse(out))
}

// Issue godoc
// @Summary      Registrar salida (FEFO)
// @Description  type: general, sale, welfare, activity, waste, expired. lot_id solo para waste sobre un lote puntual.
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.IssueRequest  true  "Salida"
// @Success      201   {object}  dto.IssueResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/inventory/issues [post]
func (h *LedgerHandler) Issue(c *fiber.Ctx) error {
	var in dto.IssueRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	if !canOperate(c, in.WarehouseID) {
		return forbidden(c, "solo puede despachar desde su bodega")
	}
	res, err := h.uc.Issue(c.UserContext(), actorFrom(c), inventory.IssueInput{
		Type:                   in.Type,
		ProductID:              in.ProductID,
		LotID:                  in.LotID,
		WarehouseID:            in.WarehouseID,
		DestinationWarehouseID: in.DestinationWarehouseID,
		Quantity:               in.Quantity,
		Reason:                 in.Reason,
	})
	if err != nil {
		return writeError(c, h.log, err)
	}
	remaining := res.RemainingStock
	return c.Status(fiber.StatusCreated).JSON(toIssueResponse(res.Transaction, &remaining))
}

// GetIssue devuelve la salida con sus líneas.
func (h *LedgerHandler) GetIssue(c *fiber.Ctx) error {
	out, err := h.uc.GetIssue(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(toIssueResponse(out, nil))
}

// CancelIssue anula una salida Active y restituye cada lote.
func (h *LedgerHandler) CancelIssue(c *fiber.Ctx) error {
	var in dto.CancelRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&in); err != nil {
			return badBody(c)
		}
	}
	issue, err := h.uc.GetIssue(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	if !canOperate(c, issue.WarehouseID) {
		return forbidden(c, "la salida pertenece a otra bodega")
	}
	out, err := h.uc.CancelIssue(c.UserContext(), actorFrom(c), issue.ID, in.Reason)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(toIssueResponse(out, nil))
}

// Adjust godoc
// @Summary      Ajuste manual de un lote (solo admin)
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string             true  "ID del lote"
// @Param        body  body  dto.AdjustRequest  true  "delta con signo y motivo"
// @Success      200   {object}  dto.LotResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/inventory/lots/{id}/adjust [post]
func (h *LedgerHandler) Adjust(c *fiber.Ctx) error {
	var in dto.AdjustRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	lot, err := h.uc.Adjust(c.UserContext(), actorFrom(c), c.Params("id"), in.Delta, in.Reason)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(toLotResponse(lot))
}

// Damage marca cantidad del lote como dañada y devuelve la constancia.
func (h *LedgerHandler) Damage(c *fiber.Ctx) error {
	var in dto.DamageRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	lot, err := h.uc.GetLot(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	if !canOperate(c, lot.WarehouseID) {
		return forbidden(c, "el lote pertenece a otra bodega")
	}
	res, err := h.uc.Damage(c.UserContext(), actorFrom(c), lot.ID, in.Quantity, in.Reason)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.DamageResponse{
		ReportNumber: res.Report.ReportNumber,
		LotID:        res.Lot.ID,
		Quantity:     res.Report.Quantity,
		QtyOnHand:    res.Lot.QtyOnHand,
		Damaged:      res.Lot.Damaged,
		Status:       res.Lot.Status,
	})
}

// GetLot devuelve el lote con su historial.
func (h *LedgerHandler) GetLot(c *fiber.Ctx) error {
	lot, err := h.uc.GetLot(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(toLotResponse(lot))
}

// Availability disponible (lotes activos) de un producto en una bodega.
func (h *LedgerHandler) Availability(c *fiber.Ctx) error {
	productID := c.Query("product_id")
	warehouseID := c.Query("warehouse_id")
	if productID == "" || warehouseID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "product_id y warehouse_id son requeridos"})
	}
	total, err := h.uc.Availability(c.UserContext(), productID, warehouseID)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.AvailabilityResponse{ProductID: productID, WarehouseID: warehouseID, Available: total})
}
