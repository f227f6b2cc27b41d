package inventory_test

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
	"github.com/jhoicas/pos-api/internal/domain"
	"github.com/jhoicas/pos-api/internal/domain/entity"
	"github.com/jhoicas/pos-api/internal/infrastructure/memory"
)

func dec(s string) decimal.Decimal {
	d, _ := decimal.NewFromString(s)
	return d
}

// fixture construye el caso de uso sobre el store en memoria con un producto ya creado.
func fixture(t *testing.T, trackingMode string) (*inventory.LedgerUseCase, *memory.Store, *entity.Product) {
	t.Helper()
	store := memory.NewStore()
	productRepo := memory.NewProductRepository(store)
	movRepo := memory.NewMovementRepository(store)

	product := &entity.Product{
		ID:           uuid.New().String(),
		Name:         "Arroz 1kg",
		TrackingMode: trackingMode,
		CreatedAt:    time.Now(),
	}
	require.NoError(t, productRepo.Create(product))

	uc := inventory.NewLedgerUseCase(store, productRepo, movRepo)
	return uc, store, product
}

func addStock(t *testing.T, uc *inventory.LedgerUseCase, productID string, qty int64) *entity.Batch {
	t.Helper()
	batch, err := uc.AddStock(context.Background(), dto.AddStockRequest{
		ProductID:    productID,
		Quantity:     qty,
		MRP:          dec("15"),
		CostPrice:    dec("8"),
		SellingPrice: dec("12"),
	})
	require.NoError(t, err)
	return batch
}

func TestAddStock_TrackedCreaLoteNuevoConCodigo(t *testing.T) {
	uc, _, product := fixture(t, entity.TrackingTRACKED)

	primero := addStock(t, uc, product.ID, 10)
	segundo := addStock(t, uc, product.ID, 5)

	assert.NotEqual(t, primero.ID, segundo.ID, "cada entrada TRACKED crea su propio lote")
	assert.NotEmpty(t, primero.Code, "el código se autogenera si no se indica")
	assert.Equal(t, int64(10), primero.Quantity)
	assert.Equal(t, int64(5), segundo.Quantity)
}

func TestAddStock_UntrackedAcumulaEnLoteUnico(t *testing.T) {
	uc, _, product := fixture(t, entity.TrackingUNTRACKED)

	primero := addStock(t, uc, product.ID, 10)
	segundo := addStock(t, uc, product.ID, 5)

	assert.Equal(t, primero.ID, segundo.ID, "UNTRACKED reutiliza el lote único")
	assert.Equal(t, int64(15), segundo.Quantity)
}

func TestAddStock_RegistraMovimientoAdded(t *testing.T) {
	uc, _, product := fixture(t, entity.TrackingTRACKED)
	batch := addStock(t, uc, product.ID, 10)

	movs, err := uc.Movements(context.Background(), product.ID, nil, nil, dto.PageRequest{})
	require.NoError(t, err)
	require.Len(t, movs, 1)
	assert.Equal(t, entity.MovementAdded, movs[0].Type)
	assert.Equal(t, batch.ID, movs[0].BatchID)
	assert.Equal(t, int64(10), movs[0].Quantity)
}

func TestAddStock_ValidaPreciosAntesDeTocarStock(t *testing.T) {
	uc, _, product := fixture(t, entity.TrackingTRACKED)

	// costo > venta viola costo <= venta <= MRP
	_, err := uc.AddStock(context.Background(), dto.AddStockRequest{
		ProductID:    product.ID,
		Quantity:     10,
		MRP:          dec("15"),
		CostPrice:    dec("14"),
		SellingPrice: dec("12"),
	})
	assert.ErrorIs(t, err, domain.ErrInvalidPricing)

	movs, err := uc.Movements(context.Background(), product.ID, nil, nil, dto.PageRequest{})
	require.NoError(t, err)
	assert.Empty(t, movs, "una entrada rechazada no deja rastro en el ledger")
}

func TestAddStock_ProductoInexistente(t *testing.T) {
	uc, _, _ := fixture(t, entity.TrackingTRACKED)

	_, err := uc.AddStock(context.Background(), dto.AddStockRequest{
		ProductID:    uuid.New().String(),
		Quantity:     10,
		MRP:          dec("15"),
		CostPrice:    dec("8"),
		SellingPrice: dec("12"),
	})
	assert.ErrorIs(t, err, domain.ErrProductNotFound)
}

func TestDecrement_DescuentaYRegistraSold(t *testing.T) {
	uc, store, product := fixture(t, entity.TrackingTRACKED)
	batch := addStock(t, uc, product.ID, 10)

	require.NoError(t, uc.Decrement(context.Background(), batch.ID, 4, ""))

	actual, err := memory.NewBatchRepository(store).GetByID(batch.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(6), actual.Quantity)

	movs, err := uc.Movements(context.Background(), product.ID, nil, nil, dto.PageRequest{})
	require.NoError(t, err)
	require.Len(t, movs, 2)
	assert.Equal(t, entity.MovementSold, movs[0].Type, "el movimiento más reciente es la salida")
}

func TestDecrement_StockInsuficiente(t *testing.T) {
	uc, store, product := fixture(t, entity.TrackingTRACKED)
	batch := addStock(t, uc, product.ID, 3)

	err := uc.Decrement(context.Background(), batch.ID, 5, "")
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	actual, repoErr := memory.NewBatchRepository(store).GetByID(batch.ID)
	require.NoError(t, repoErr)
	assert.Equal(t, int64(3), actual.Quantity, "el stock no cambia si el descuento falla")
}

func TestAdjust_DeltaPositivoYNegativo(t *testing.T) {
	uc, store, product := fixture(t, entity.TrackingTRACKED)
	batch := addStock(t, uc, product.ID, 10)
	ctx := context.Background()

	require.NoError(t, uc.Adjust(ctx, batch.ID, 5, "conteo físico"))
	require.NoError(t, uc.Adjust(ctx, batch.ID, -3, "merma"))

	actual, err := memory.NewBatchRepository(store).GetByID(batch.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(12), actual.Quantity)

	movs, err := uc.Movements(ctx, product.ID, nil, nil, dto.PageRequest{})
	require.NoError(t, err)
	require.Len(t, movs, 3)
	assert.Equal(t, entity.MovementAdjustmentOut, movs[0].Type)
	assert.Equal(t, int64(3), movs[0].Quantity, "los movimientos guardan cantidad positiva; el signo lo da el tipo")
	assert.Equal(t, entity.MovementAdjustmentIn, movs[1].Type)
}

func TestAdjust_NegativoNoPuedeDejarStockBajoCero(t *testing.T) {
	uc, _, product := fixture(t, entity.TrackingTRACKED)
	batch := addStock(t, uc, product.ID, 2)

	err := uc.Adjust(context.Background(), batch.ID, -5, "merma")
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
}

func TestMovements_FiltraPorVentanaDeFechas(t *testing.T) {
	uc, _, product := fixture(t, entity.TrackingTRACKED)
	addStock(t, uc, product.ID, 10)

	futuro := time.Now().Add(time.Hour)
	movs, err := uc.Movements(context.Background(), product.ID, &futuro, nil, dto.PageRequest{})
	require.NoError(t, err)
	assert.Empty(t, movs, "movimientos anteriores a from quedan fuera")
}
