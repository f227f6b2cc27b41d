package reports_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/pos-api/internal/application/dto"
	"github.com/jhoicas/pos-api/internal/application/reports"
	"github.com/jhoicas/pos-api/internal/domain"
	"github.com/jhoicas/pos-api/internal/domain/entity"
	"github.com/jhoicas/pos-api/internal/infrastructure/memory"
)

func dec(s string) decimal.Decimal {
	d, _ := decimal.NewFromString(s)
	return d
}

// seedSale persiste una venta con un ítem y los snapshots dados.
func seedSale(t *testing.T, saleRepo *memory.SaleRepo, qty, returned int64, unit, selling, cost, total string) *entity.Sale {
	t.Helper()
	saleID := uuid.New().String()
	sale := &entity.Sale{
		ID:          saleID,
		Subtotal:    dec(total),
		TotalAmount: dec(total),
		CreatedAt:   time.Now(),
		Items: []*entity.SaleItem{{
			ID:               uuid.New().String(),
			SaleID:           saleID,
			ProductID:        uuid.New().String(),
			BatchID:          uuid.New().String(),
			Quantity:         qty,
			ReturnedQuantity: returned,
			UnitPrice:        dec(unit),
			PriceTier:        "regular",
			SellingPrice:     dec(selling),
			CostPrice:        dec(cost),
			MRP:              dec(selling),
		}},
	}
	require.NoError(t, saleRepo.Create(sale))
	return sale
}

func TestProfitReport_UtilidadDesdeSnapshots(t *testing.T) {
	store := memory.NewStore()
	saleRepo := memory.NewSaleRepository(store)
	uc := reports.NewAggregator(saleRepo, memory.NewReportRepository(store))

	// 5 vendidas a 12 con costo 8: utilidad 20 sobre venta de 60.
	seedSale(t, saleRepo, 5, 0, "12", "12", "8", "60")

	out, err := uc.ProfitReport(context.Background(), dto.ProfitReportRequest{})
	require.NoError(t, err)

	assert.Equal(t, 1, out.SalesCount)
	assert.True(t, out.GrossSales.Equal(dec("60")))
	assert.True(t, out.TotalProfit.Equal(dec("20")))
	assert.True(t, out.MarginPct.Equal(dec("33.33")))
	require.Len(t, out.Items, 1)
	assert.Equal(t, int64(5), out.Items[0].QuantityKept)
}

func TestProfitReport_DescuentaLoDevuelto(t *testing.T) {
	store := memory.NewStore()
	saleRepo := memory.NewSaleRepository(store)
	uc := reports.NewAggregator(saleRepo, memory.NewReportRepository(store))

	// 5 vendidas, 2 devueltas: la utilidad cuenta solo las 3 que se quedaron.
	seedSale(t, saleRepo, 5, 2, "12", "12", "8", "60")

	out, err := uc.ProfitReport(context.Background(), dto.ProfitReportRequest{})
	require.NoError(t, err)

	assert.True(t, out.TotalProfit.Equal(dec("12")), "(12-8)*3")
	assert.Equal(t, int64(3), out.Items[0].QuantityKept)
}

func TestProfitReport_FueraDeVentanaNoCuenta(t *testing.T) {
	store := memory.NewStore()
	saleRepo := memory.NewSaleRepository(store)
	uc := reports.NewAggregator(saleRepo, memory.NewReportRepository(store))
	seedSale(t, saleRepo, 1, 0, "12", "12", "8", "12")

	ayer := time.Now().AddDate(0, 0, -2).Format("2006-01-02")
	anteayer := time.Now().AddDate(0, 0, -3).Format("2006-01-02")
	out, err := uc.ProfitReport(context.Background(), dto.ProfitReportRequest{
		StartDate: anteayer,
		EndDate:   ayer,
	})
	require.NoError(t, err)
	assert.Equal(t, 0, out.SalesCount)
	assert.True(t, out.GrossSales.Equal(decimal.Zero))
}

func TestProfitReport_FechaInvalida(t *testing.T) {
	store := memory.NewStore()
	uc := reports.NewAggregator(memory.NewSaleRepository(store), memory.NewReportRepository(store))

	_, err := uc.ProfitReport(context.Background(), dto.ProfitReportRequest{StartDate: "31-12-2025"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestCashFlowReport_VentasMenosGastosYCompras(t *testing.T) {
	store := memory.NewStore()
	saleRepo := memory.NewSaleRepository(store)
	reportRepo := memory.NewReportRepository(store)
	uc := reports.NewAggregator(saleRepo, reportRepo)

	seedSale(t, saleRepo, 5, 0, "20", "20", "10", "100")
	reportRepo.AddExpense(&entity.Expense{ID: uuid.New().String(), Concept: "arriendo", Amount: dec("30"), Date: time.Now()})
	reportRepo.AddPurchase(&entity.Purchase{ID: uuid.New().String(), Supplier: "distribuidora", Amount: dec("25"), Date: time.Now()})

	// Dos lotes en bodega: 4×2.50 + 10×1.20 = 22 de inventario a costo.
	batchRepo := memory.NewBatchRepository(store)
	require.NoError(t, batchRepo.Create(&entity.Batch{ID: uuid.New().String(), ProductID: uuid.New().String(), Quantity: 4, CostPrice: dec("2.50")}))
	require.NoError(t, batchRepo.Create(&entity.Batch{ID: uuid.New().String(), ProductID: uuid.New().String(), Quantity: 10, CostPrice: dec("1.20")}))

	out, err := uc.CashFlowReport(context.Background(), dto.ProfitReportRequest{})
	require.NoError(t, err)

	assert.True(t, out.GrossSales.Equal(dec("100")))
	assert.True(t, out.Expenses.Equal(dec("30")))
	assert.True(t, out.Purchases.Equal(dec("25")))
	assert.True(t, out.NetFlow.Equal(dec("45")))
	assert.True(t, out.StockValue.Equal(dec("22")))
}

func TestLowStock_SoloProductosBajoSuUmbral(t *testing.T) {
	store := memory.NewStore()
	productRepo := memory.NewProductRepository(store)
	batchRepo := memory.NewBatchRepository(store)
	uc := reports.NewAggregator(memory.NewSaleRepository(store), memory.NewReportRepository(store))

	umbral := int64(5)
	bajo := &entity.Product{ID: uuid.New().String(), Name: "Azúcar", TrackingMode: entity.TrackingUNTRACKED, LowStockThreshold: &umbral}
	ok := &entity.Product{ID: uuid.New().String(), Name: "Sal", TrackingMode: entity.TrackingUNTRACKED, LowStockThreshold: &umbral}
	sinUmbral := &entity.Product{ID: uuid.New().String(), Name: "Café", TrackingMode: entity.TrackingUNTRACKED}
	for _, p := range []*entity.Product{bajo, ok, sinUmbral} {
		require.NoError(t, productRepo.Create(p))
	}
	require.NoError(t, batchRepo.Create(&entity.Batch{ID: uuid.New().String(), ProductID: bajo.ID, Quantity: 2}))
	require.NoError(t, batchRepo.Create(&entity.Batch{ID: uuid.New().String(), ProductID: ok.ID, Quantity: 9}))

	out, err := uc.LowStock(context.Background())
	require.NoError(t, err)

	require.Len(t, out, 1)
	assert.Equal(t, bajo.ID, out[0].ProductID)
	assert.Equal(t, int64(2), out[0].CurrentStock)
	assert.Equal(t, umbral, out[0].Threshold)
}
