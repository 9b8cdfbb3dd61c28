package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/application/usecase"
	"github.com/jhoicas/stock-ledger/pkg/jwt"
	"github.com/jhoicas/stock-ledger/pkg/logger"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	WarehouseUC *usecase.WarehouseUseCase
	Ledger      *inventory.LedgerUseCase
	JWTSecret   string
	Logger      *logger.Logger
}

// Router registra las rutas de la API. Todas requieren Bearer Token.
func Router(app *fiber.App, deps RouterDeps) {
	log := deps.Logger
	if log == nil {
		log = logger.Nop()
	}
	log = log.Named("http")

	api := app.Group("/api", AuthMiddleware(deps.JWTSecret))
	adminOnly := RequireRole(jwt.RoleAdmin)
	operators := RequireRole(jwt.RoleAdmin, jwt.RoleBodeguero)

	warehouseHandler := NewWarehouseHandler(deps.WarehouseUC, log)
	warehouses := api.Group("/warehouses")
	warehouses.Post("/", adminOnly, warehouseHandler.Create)
	warehouses.Get("/", warehouseHandler.List)
	warehouses.Get("/:id", warehouseHandler.GetByID)

	ledgerHandler := NewLedgerHandler(deps.Ledger, log)
	inv := api.Group("/inventory")
	inv.Post("/receipts", operators, ledgerHandler.Receive)
	inv.Post("/receipts/:id/cancel", operators, ledgerHandler.CancelReceipt)
	inv.Post("/issues", ledgerHandler.Issue)
	inv.Get("/issues/:id", ledgerHandler.GetIssue)
	inv.Post("/issues/:id/cancel", operators, ledgerHandler.CancelIssue)
	inv.Get("/lots/:id", ledgerHandler.GetLot)
	inv.Post("/lots/:id/adjust", adminOnly, ledgerHandler.Adjust)
	inv.Post("/lots/:id/damage", operators, ledgerHandler.Damage)
	inv.Get("/availability", ledgerHandler.Availability)

	transferHandler := NewTransferHandler(deps.Ledger, log)
	transfers := api.Group("/transfers")
	transfers.Post("/", operators, transferHandler.Initiate)
	transfers.Get("/pending", transferHandler.Pending)
	transfers.Get("/:id", transferHandler.GetByID)
	transfers.Post("/:id/confirm", operators, transferHandler.Confirm)
	transfers.Post("/:id/reject", operators, transferHandler.Reject)
}
