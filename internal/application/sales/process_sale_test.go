package sales_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/pos-api/internal/application/dto"
	"github.com/jhoicas/pos-api/internal/application/inventory"
	"github.com/jhoicas/pos-api/internal/application/sales"
	"github.com/jhoicas/pos-api/internal/domain"
	"github.com/jhoicas/pos-api/internal/domain/entity"
	"github.com/jhoicas/pos-api/internal/domain/pricing"
	"github.com/jhoicas/pos-api/internal/infrastructure/cache"
	"github.com/jhoicas/pos-api/internal/infrastructure/memory"
)

func dec(s string) decimal.Decimal {
	d, _ := decimal.NewFromString(s)
	return d
}

// env entorno de pruebas completo sobre el store en memoria.
type env struct {
	store     *memory.Store
	ledger    *inventory.LedgerUseCase
	processor *sales.SaleProcessor
	returns   *sales.ReturnProcessor
	batchRepo *memory.BatchRepo
	promoRepo *memory.PromotionRepo
	saleRepo  *memory.SaleRepo
}

func newEnv(t *testing.T, cfg sales.Config) *env {
	t.Helper()
	store := memory.NewStore()
	productRepo := memory.NewProductRepository(store)
	movRepo := memory.NewMovementRepository(store)
	saleRepo := memory.NewSaleRepository(store)
	promoRepo := memory.NewPromotionRepository(store)

	ledger := inventory.NewLedgerUseCase(store, productRepo, movRepo)
	promoSource := cache.NewRepoPromotionSource(promoRepo)

	return &env{
		store:     store,
		ledger:    ledger,
		processor: sales.NewSaleProcessor(store, ledger, promoSource, saleRepo, cfg),
		returns:   sales.NewReturnProcessor(store, ledger, saleRepo),
		batchRepo: memory.NewBatchRepository(store),
		promoRepo: promoRepo,
		saleRepo:  saleRepo,
	}
}

// seedBatch crea producto y lote con stock y precios dados.
func (e *env) seedBatch(t *testing.T, qty int64, selling, cost, mrp string) *entity.Batch {
	t.Helper()
	productRepo := memory.NewProductRepository(e.store)
	product := &entity.Product{
		ID:           uuid.New().String(),
		Name:         "Producto " + uuid.New().String()[:8],
		TrackingMode: entity.TrackingTRACKED,
		CreatedAt:    time.Now(),
	}
	require.NoError(t, productRepo.Create(product))

	batch, err := e.ledger.AddStock(context.Background(), dto.AddStockRequest{
		ProductID:    product.ID,
		Quantity:     qty,
		MRP:          dec(mrp),
		CostPrice:    dec(cost),
		SellingPrice: dec(selling),
	})
	require.NoError(t, err)
	return batch
}

func (e *env) seedPromo(t *testing.T, productID, price string) {
	t.Helper()
	now := time.Now()
	require.NoError(t, e.promoRepo.Create(&entity.Promotion{
		ID:        uuid.New().String(),
		Name:      "oferta",
		StartDate: now.Add(-time.Hour),
		EndDate:   now.Add(time.Hour),
		IsActive:  true,
		Entries:   []entity.PromotionEntry{{ProductID: productID, PromoPrice: dec(price)}},
	}))
}

func TestProcessSale_VentaSimpleCongelaSnapshots(t *testing.T) {
	e := newEnv(t, sales.DefaultConfig())
	batch := e.seedBatch(t, 10, "12", "8", "15")

	resp, err := e.processor.ProcessSale(context.Background(), dto.CreateSaleRequest{
		Lines: []dto.SaleLineRequest{{BatchID: batch.ID, Quantity: 3}},
	})
	require.NoError(t, err)

	require.Len(t, resp.Items, 1)
	item := resp.Items[0]
	assert.Equal(t, pricing.TierRegular, item.PriceTier)
	assert.True(t, item.UnitPrice.Equal(dec("12")))
	assert.True(t, item.SellingPrice.Equal(dec("12")), "precio de lista congelado en el ítem")
	assert.True(t, item.MRP.Equal(dec("15")))
	assert.True(t, resp.Subtotal.Equal(dec("36")))
	assert.True(t, resp.TotalAmount.Equal(dec("36")))

	actual, err := e.batchRepo.GetByID(batch.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(7), actual.Quantity)
}

func TestProcessSale_SnapshotInmuneACambiosPosteriores(t *testing.T) {
	e := newEnv(t, sales.DefaultConfig())
	batch := e.seedBatch(t, 10, "12", "8", "15")

	resp, err := e.processor.ProcessSale(context.Background(), dto.CreateSaleRequest{
		Lines: []dto.SaleLineRequest{{BatchID: batch.ID, Quantity: 2}},
	})
	require.NoError(t, err)

	// El precio del lote sube después de la venta; el snapshot no se mueve.
	actual, err := e.batchRepo.GetByID(batch.ID)
	require.NoError(t, err)
	actual.SellingPrice = dec("20")
	actual.CostPrice = dec("10")
	require.NoError(t, e.batchRepo.Update(actual))

	reread, err := e.processor.GetSale(context.Background(), resp.SaleID)
	require.NoError(t, err)
	assert.True(t, reread.Items[0].UnitPrice.Equal(dec("12")))
	assert.True(t, reread.Items[0].SellingPrice.Equal(dec("12")))
}

func TestProcessSale_TodoONada(t *testing.T) {
	// Dos líneas: la primera tiene stock, la segunda no. Nada se cobra y el
	// stock de la primera queda intacto.
	e := newEnv(t, sales.DefaultConfig())
	conStock := e.seedBatch(t, 10, "12", "8", "15")
	sinStock := e.seedBatch(t, 1, "30", "20", "35")

	_, err := e.processor.ProcessSale(context.Background(), dto.CreateSaleRequest{
		Lines: []dto.SaleLineRequest{
			{BatchID: conStock.ID, Quantity: 5},
			{BatchID: sinStock.ID, Quantity: 2},
		},
	})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	primero, repoErr := e.batchRepo.GetByID(conStock.ID)
	require.NoError(t, repoErr)
	assert.Equal(t, int64(10), primero.Quantity, "la línea válida se revirtió con la fallida")

	segundo, repoErr := e.batchRepo.GetByID(sinStock.ID)
	require.NoError(t, repoErr)
	assert.Equal(t, int64(1), segundo.Quantity)
}

func TestProcessSale_AplicaPromocionVigente(t *testing.T) {
	e := newEnv(t, sales.DefaultConfig())
	batch := e.seedBatch(t, 10, "12", "8", "15")
	e.seedPromo(t, batch.ProductID, "10")

	resp, err := e.processor.ProcessSale(context.Background(), dto.CreateSaleRequest{
		Lines: []dto.SaleLineRequest{{BatchID: batch.ID, Quantity: 2}},
	})
	require.NoError(t, err)

	assert.Equal(t, pricing.TierPromotional, resp.Items[0].PriceTier)
	assert.True(t, resp.Items[0].UnitPrice.Equal(dec("10")))
	assert.True(t, resp.Subtotal.Equal(dec("20")))
}

func TestProcessSale_TotalNuncaNegativo(t *testing.T) {
	e := newEnv(t, sales.DefaultConfig())
	batch := e.seedBatch(t, 10, "12", "8", "15")

	resp, err := e.processor.ProcessSale(context.Background(), dto.CreateSaleRequest{
		Lines:    []dto.SaleLineRequest{{BatchID: batch.ID, Quantity: 1}},
		Discount: dec("50"),
	})
	require.NoError(t, err)

	assert.True(t, resp.TotalAmount.Equal(decimal.Zero), "descuentos mayores al subtotal clampean a cero")
	assert.True(t, resp.Subtotal.Equal(dec("12")), "el subtotal conserva el valor real")
}

func TestProcessSale_DescuentoExtraDeshabilitado(t *testing.T) {
	cfg := sales.DefaultConfig()
	cfg.ExtraDiscountEnabled = false
	e := newEnv(t, cfg)
	batch := e.seedBatch(t, 10, "12", "8", "15")

	_, err := e.processor.ProcessSale(context.Background(), dto.CreateSaleRequest{
		Lines:         []dto.SaleLineRequest{{BatchID: batch.ID, Quantity: 1}},
		ExtraDiscount: dec("2"),
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestProcessSale_RedondeoDelTotal(t *testing.T) {
	t.Run("half_up", func(t *testing.T) {
		cfg := sales.DefaultConfig()
		cfg.RoundOffEnabled = true
		e := newEnv(t, cfg)
		batch := e.seedBatch(t, 10, "12.50", "8", "15")

		resp, err := e.processor.ProcessSale(context.Background(), dto.CreateSaleRequest{
			Lines: []dto.SaleLineRequest{{BatchID: batch.ID, Quantity: 1}},
		})
		require.NoError(t, err)
		assert.True(t, resp.TotalAmount.Equal(dec("13")), "12.50 redondea hacia arriba")
		assert.True(t, resp.RoundOff.Equal(dec("0.5")))
	})

	t.Run("half_even", func(t *testing.T) {
		cfg := sales.DefaultConfig()
		cfg.RoundOffEnabled = true
		cfg.RoundingMode = sales.RoundHalfEven
		e := newEnv(t, cfg)
		batch := e.seedBatch(t, 10, "12.50", "8", "15")

		resp, err := e.processor.ProcessSale(context.Background(), dto.CreateSaleRequest{
			Lines: []dto.SaleLineRequest{{BatchID: batch.ID, Quantity: 1}},
		})
		require.NoError(t, err)
		assert.True(t, resp.TotalAmount.Equal(dec("12")), "12.50 redondea al par")
		assert.True(t, resp.RoundOff.Equal(dec("-0.5")))
	})

	t.Run("deshabilitado no toca el total", func(t *testing.T) {
		e := newEnv(t, sales.DefaultConfig())
		batch := e.seedBatch(t, 10, "12.50", "8", "15")

		resp, err := e.processor.ProcessSale(context.Background(), dto.CreateSaleRequest{
			Lines: []dto.SaleLineRequest{{BatchID: batch.ID, Quantity: 1}},
		})
		require.NoError(t, err)
		assert.True(t, resp.TotalAmount.Equal(dec("12.50")))
		assert.True(t, resp.RoundOff.Equal(decimal.Zero))
	})
}

func TestProcessSale_VentasConcurrentesPorLaUltimaUnidad(t *testing.T) {
	// Dos ventas compiten por la última unidad: exactamente una gana y la otra
	// ve stock insuficiente.
	e := newEnv(t, sales.DefaultConfig())
	batch := e.seedBatch(t, 1, "12", "8", "15")

	resultados := make(chan error, 2)
	for i := 0; i < 2; i++ {
		go func() {
			_, err := e.processor.ProcessSale(context.Background(), dto.CreateSaleRequest{
				Lines: []dto.SaleLineRequest{{BatchID: batch.ID, Quantity: 1}},
			})
			resultados <- err
		}()
	}

	var exitos, insuficientes int
	for i := 0; i < 2; i++ {
		err := <-resultados
		if err == nil {
			exitos++
		} else {
			require.ErrorIs(t, err, domain.ErrInsufficientStock)
			insuficientes++
		}
	}
	assert.Equal(t, 1, exitos)
	assert.Equal(t, 1, insuficientes)

	actual, err := e.batchRepo.GetByID(batch.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), actual.Quantity)
}

func TestProcessSale_ValidaEntrada(t *testing.T) {
	e := newEnv(t, sales.DefaultConfig())

	casos := []dto.CreateSaleRequest{
		{},
		{Lines: []dto.SaleLineRequest{{BatchID: "", Quantity: 1}}},
		{Lines: []dto.SaleLineRequest{{BatchID: "b", Quantity: 0}}},
		{Lines: []dto.SaleLineRequest{{BatchID: "b", Quantity: 1}}, Discount: dec("-1")},
	}
	for _, in := range casos {
		_, err := e.processor.ProcessSale(context.Background(), in)
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	}
}

func TestGetSale_NoExiste(t *testing.T) {
	e := newEnv(t, sales.DefaultConfig())

	_, err := e.processor.GetSale(context.Background(), uuid.New().String())
	assert.ErrorIs(t, err, domain.ErrSaleNotFound)
}
