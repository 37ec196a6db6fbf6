package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Custodia-api/internal/application/importer"
	"github.com/jhoicas/Custodia-api/internal/application/ledger"
	"github.com/jhoicas/Custodia-api/internal/application/transfer"
	"github.com/jhoicas/Custodia-api/pkg/jwt"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Ledger      *ledger.Service
	Transfers   *transfer.Service
	Importer    *importer.Service
	SheetReader SheetReader
	JWTSecret   string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	// Rutas protegidas (requieren Bearer Token); el usuario del token es el actor de cada evento.
	api := app.Group("/api", AuthMiddleware(deps.JWTSecret))
	warehouseStaff := RequireRole(jwt.RoleAdmin, jwt.RoleBodeguero)
	branchStaff := RequireRole(jwt.RoleAdmin, jwt.RoleVendedor)
	anyRole := RequireRole(jwt.RoleAdmin, jwt.RoleBodeguero, jwt.RoleVendedor)

	eventHandler := NewEventHandler(deps.Ledger)
	api.Get("/locations", eventHandler.Locations)
	api.Get("/events", eventHandler.List)

	units := api.Group("/units")
	unitHandler := NewUnitHandler(deps.Ledger)
	units.Get("/", unitHandler.List)
	units.Post("/", warehouseStaff, unitHandler.Create)
	units.Get("/summary", unitHandler.Summary)
	units.Get("/:id", unitHandler.GetByID)
	units.Get("/:id/events", unitHandler.Events)
	units.Post("/:id/identify", warehouseStaff, unitHandler.Identify)
	units.Post("/:id/sell", branchStaff, unitHandler.Sell)
	units.Get("/:id/sale", unitHandler.Sale)

	transfers := api.Group("/transfers")
	transferHandler := NewTransferHandler(deps.Transfers)
	transfers.Get("/", transferHandler.List)
	transfers.Post("/", warehouseStaff, transferHandler.Create)
	transfers.Get("/:id", transferHandler.GetByID)
	transfers.Post("/:id/dispatch", warehouseStaff, transferHandler.Dispatch)
	transfers.Post("/:id/receive", anyRole, transferHandler.Receive)
	transfers.Post("/:id/cancel", warehouseStaff, transferHandler.Cancel)

	imports := api.Group("/imports", warehouseStaff)
	importHandler := NewImportHandler(deps.Importer, deps.SheetReader)
	imports.Post("/preview", importHandler.Preview)
	imports.Post("/commit", importHandler.Commit)
}
