package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/invorya/inventory-ledger/internal/application/inventory"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Lifecycle *inventory.LifecycleService
	Kardex    *inventory.KardexService
	Catalog   *inventory.CatalogService
	PDF       inventory.ReportPDFGenerator
	JWTSecret string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	// Catálogo: items y bodegas
	catalogHandler := NewCatalogHandler(deps.Catalog)
	items := protected.Group("/items")
	items.Post("/", catalogHandler.CreateItem)
	items.Get("/", catalogHandler.ListItems)
	items.Get("/:id", catalogHandler.GetItem)

	warehouses := protected.Group("/warehouses")
	warehouses.Post("/", catalogHandler.CreateWarehouse)
	warehouses.Get("/", catalogHandler.ListWarehouses)
	warehouses.Get("/:id", catalogHandler.GetWarehouse)

	protected.Get("/stock", catalogHandler.GetStock)

	// Movimientos de inventario: borrador, confirmación, anulación,
	// transferencias y consultas de kardex/valoración
	movementHandler := NewMovementHandler(deps.Lifecycle)
	reportHandler := NewReportHandler(deps.Kardex, deps.PDF)
	inv := protected.Group("/inventory")

	movements := inv.Group("/movements")
	movements.Post("/", movementHandler.Create)
	movements.Get("/:id", movementHandler.GetByID)
	movements.Post("/:id/confirm", movementHandler.Confirm)
	movements.Post("/:id/void", RequireRole("admin", "bodeguero"), movementHandler.Void)

	inv.Post("/transfers", movementHandler.Transfer)
	inv.Get("/kardex", reportHandler.Kardex)
	inv.Get("/valuation", reportHandler.Valuation)
}
