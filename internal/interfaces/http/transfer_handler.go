package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/pkg/jwt"
	"github.com/jhoicas/stock-ledger/pkg/logger"
)

// TransferHandler traslados entre bodegas (protegido).
type TransferHandler struct {
	uc  *inventory.LedgerUseCase
	log *logger.Logger
}

// NewTransferHandler construye el handler.
func NewTransferHandler(uc *inventory.LedgerUseCase, log *logger.Logger) *TransferHandler {
	return &TransferHandler{uc: uc, log: log}
}

// Initiate godoc
// @Summary      Iniciar traslado
// @Description  Descuenta el origen de inmediato; el destino recibe al confirmar.
// @Tags         transfers
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.InitiateTransferRequest  true  "Origen, destino y líneas"
// @Success      201   {object}  dto.TransferResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/transfers [post]
func (h *TransferHandler) Initiate(c *fiber.Ctx) error {
	var in dto.InitiateTransferRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	if !canOperate(c, in.SourceWarehouseID) {
		return forbidden(c, "solo puede trasladar desde su bodega")
	}
	lines := make([]inventory.TransferLineInput, 0, len(in.Lines))
	for _, l := range in.Lines {
		lines = append(lines, inventory.TransferLineInput{LotID: l.LotID, Quantity: l.Quantity})
	}
	t, err := h.uc.InitiateTransfer(c.UserContext(), actorFrom(c), inventory.TransferInput{
		SourceWarehouseID:      in.SourceWarehouseID,
		DestinationWarehouseID: in.DestinationWarehouseID,
		Reason:                 in.Reason,
		Lines:                  lines,
	})
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toTransferResponse(t))
}

// GetByID devuelve el traslado con sus líneas.
func (h *TransferHandler) GetByID(c *fiber.Ctx) error {
	t, err := h.uc.GetTransfer(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(toTransferResponse(t))
}

// Pending godoc
// @Summary      Traslados pendientes hacia una bodega
// @Description  Sin warehouse_id se usa la bodega del token. Solo admin consulta bodegas ajenas.
// @Tags         transfers
// @Security     Bearer
// @Produce      json
// @Param        warehouse_id  query  string  false  "Bodega destino"
// @Param        limit         query  int     false  "Límite"  default(20)
// @Param        offset        query  int     false  "Offset"  default(0)
// @Success      200  {object}  dto.TransferListResponse
// @Router       /api/transfers/pending [get]
func (h *TransferHandler) Pending(c *fiber.Ctx) error {
	warehouseID := c.Query("warehouse_id", GetWarehouseID(c))
	if warehouseID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "warehouse_id es requerido"})
	}
	if GetRole(c) != jwt.RoleAdmin && warehouseID != GetWarehouseID(c) {
		return forbidden(c, "solo puede consultar su bodega")
	}
	page := dto.PageRequest{Limit: c.QueryInt("limit", 20), Offset: c.QueryInt("offset", 0)}
	page.DefaultPage()
	list, err := h.uc.ListPendingTransfers(c.UserContext(), warehouseID, page.Limit, page.Offset)
	if err != nil {
		return writeError(c, h.log, err)
	}
	items := make([]dto.TransferResponse, 0, len(list))
	for _, t := range list {
		items = append(items, toTransferResponse(t))
	}
	return c.JSON(dto.TransferListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	})
}

// Confirm acredita el traslado en la bodega destino del llamador.
func (h *TransferHandler) Confirm(c *fiber.Ctx) error {
	t, err := h.uc.ConfirmTransfer(c.UserContext(), actorFrom(c), c.Params("id"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(toTransferResponse(t))
}

// Reject devuelve el stock al origen y descarta el placeholder del destino si quedó vacío.
func (h *TransferHandler) Reject(c *fiber.Ctx) error {
	var in dto.CancelRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&in); err != nil {
			return badBody(c)
		}
	}
	t, err := h.uc.RejectTransfer(c.UserContext(), actorFrom(c), c.Params("id"), in.Reason)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(toTransferResponse(t))
}
