package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/pos-api/internal/application/catalog"
	"github.com/jhoicas/pos-api/internal/application/inventory"
	"github.com/jhoicas/pos-api/internal/application/reports"
	"github.com/jhoicas/pos-api/internal/application/sales"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	ProductUC   *catalog.ProductUseCase
	PromotionUC *catalog.PromotionUseCase
	LedgerUC    *inventory.LedgerUseCase
	SaleUC      *sales.SaleProcessor
	ReturnUC    *sales.ReturnProcessor
	ReportUC    *reports.Aggregator
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Catálogo
	products := api.Group("/products")
	productHandler := NewProductHandler(deps.ProductUC)
	products.Post("/", productHandler.Create)
	products.Get("/", productHandler.List)
	products.Get("/barcode/:code", productHandler.GetByBarcode)
	products.Get("/:id", productHandler.GetByID)
	products.Put("/:id", productHandler.Update)
	products.Get("/:id/batches", productHandler.Batches)
	api.Delete("/batches/:id", productHandler.DeleteBatch)

	// Promociones
	promotions := api.Group("/promotions")
	promotionHandler := NewPromotionHandler(deps.PromotionUC)
	promotions.Post("/", promotionHandler.Create)
	promotions.Get("/", promotionHandler.List)
	promotions.Put("/:id", promotionHandler.Update)

	// Inventario (ledger)
	invGroup := api.Group("/inventory")
	inventoryHandler := NewInventoryHandler(deps.LedgerUC)
	invGroup.Post("/stock", inventoryHandler.AddStock)
	invGroup.Post("/adjustments", inventoryHandler.Adjust)
	invGroup.Get("/movements", inventoryHandler.Movements)

	// Ventas y devoluciones
	salesGroup := api.Group("/sales")
	saleHandler := NewSaleHandler(deps.SaleUC, deps.ReturnUC)
	salesGroup.Post("/", saleHandler.Create)
	salesGroup.Get("/:id", saleHandler.GetByID)
	salesGroup.Post("/:id/returns", saleHandler.Return)

	// Reportes
	reportsGroup := api.Group("/reports")
	reportHandler := NewReportHandler(deps.ReportUC)
	reportsGroup.Get("/profit", reportHandler.Profit)
	reportsGroup.Get("/cashflow", reportHandler.CashFlow)
	reportsGroup.Get("/low-stock", reportHandler.LowStock)
}
