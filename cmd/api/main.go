package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/jhoicas/pos-api/internal/application/catalog"
	"github.com/jhoicas/pos-api/internal/application/inventory"
	"github.com/jhoicas/pos-api/internal/application/reports"
	"github.com/jhoicas/pos-api/internal/application/sales"
	infracache "github.com/jhoicas/pos-api/internal/infrastructure/cache"
	"github.com/jhoicas/pos-api/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/pos-api/internal/interfaces/http"
	"github.com/jhoicas/pos-api/pkg/config"
	"github.com/jhoicas/pos-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Service: cfg.App.Name,
		Env:     cfg.App.Env,
		Level:   "info",
	})
	log.Info().
		Str("env", cfg.App.Env).
		Msg("iniciando aplicación")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	productRepo := postgres.NewProductRepository(pool)
	batchRepo := postgres.NewBatchRepository(pool)
	movementRepo := postgres.NewStockMovementRepository(pool)
	saleRepo := postgres.NewSaleRepository(pool)
	promotionRepo := postgres.NewPromotionRepository(pool)
	reportRepo := postgres.NewReportRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	// Promociones: con Redis habilitado el motor de precios lee del cache y
	// las escrituras de campañas invalidan; sin Redis, lectura directa.
	var promoSource sales.PromotionSource
	var invalidator catalog.PromotionInvalidator
	if cfg.Redis.Enabled {
		promoCache := infracache.NewRedisPromotionCache(
			cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB,
			time.Duration(cfg.Redis.TTLSeconds)*time.Second,
			promotionRepo,
		)
		if err := promoCache.Ping(ctx); err != nil {
			log.Fatal().Err(err).Msg("conexión a Redis")
		}
		defer promoCache.Close()
		promoSource = promoCache
		invalidator = promoCache
	} else {
		promoSource = infracache.NewRepoPromotionSource(promotionRepo)
		invalidator = infracache.NoopInvalidator{}
	}

	ledgerUC := inventory.NewLedgerUseCase(txRunner, productRepo, movementRepo)
	saleCfg := sales.Config{
		ExtraDiscountEnabled: cfg.Sale.ExtraDiscountEnabled,
		RoundOffEnabled:      cfg.Sale.RoundOffEnabled,
		RoundingMode:         cfg.Sale.RoundingMode,
	}
	saleUC := sales.NewSaleProcessor(txRunner, ledgerUC, promoSource, saleRepo, saleCfg)
	returnUC := sales.NewReturnProcessor(txRunner, ledgerUC, saleRepo)
	productUC := catalog.NewProductUseCase(productRepo, batchRepo, saleRepo)
	promotionUC := catalog.NewPromotionUseCase(promotionRepo, invalidator)
	reportUC := reports.NewAggregator(saleRepo, reportRepo)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "POS API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		ProductUC:   productUC,
		PromotionUC: promotionUC,
		LedgerUC:    ledgerUC,
		SaleUC:      saleUC,
		ReturnUC:    returnUC,
		ReportUC:    reportUC,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("apagando servidor")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}
}
