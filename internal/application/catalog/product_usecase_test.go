package catalog_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/pos-api/internal/application/catalog"
	"github.com/jhoicas/pos-api/internal/application/dto"
	"github.com/jhoicas/pos-api/internal/domain"
	"github.com/jhoicas/pos-api/internal/domain/entity"
	"github.com/jhoicas/pos-api/internal/infrastructure/memory"
)

func dec(s string) decimal.Decimal {
	d, _ := decimal.NewFromString(s)
	return d
}

func newProductUC(t *testing.T) (*catalog.ProductUseCase, *memory.Store) {
	t.Helper()
	store := memory.NewStore()
	return catalog.NewProductUseCase(
		memory.NewProductRepository(store),
		memory.NewBatchRepository(store),
		memory.NewSaleRepository(store),
	), store
}

func TestProductCreate_NormalizaCodigosYCategoría(t *testing.T) {
	uc, _ := newProductUC(t)

	out, err := uc.Create(context.Background(), dto.CreateProductRequest{
		Name:         "  Leche entera 1L ",
		CategoryPath: "/lacteos/leche/",
		Barcodes:     []string{" 7701234567890 ", "7701234567890", "", "7700000000001"},
		TrackingMode: entity.TrackingTRACKED,
	})
	require.NoError(t, err)

	assert.Equal(t, "Leche entera 1L", out.Name)
	assert.Equal(t, "lacteos/leche", out.CategoryPath)
	assert.Equal(t, []string{"7701234567890", "7700000000001"}, out.Barcodes, "espacios y duplicados fuera")
}

func TestProductCreate_TrackingPorDefectoYValidacion(t *testing.T) {
	uc, _ := newProductUC(t)
	ctx := context.Background()

	out, err := uc.Create(ctx, dto.CreateProductRequest{Name: "Pan"})
	require.NoError(t, err)
	assert.Equal(t, entity.TrackingUNTRACKED, out.TrackingMode)

	_, err = uc.Create(ctx, dto.CreateProductRequest{Name: "Queso", TrackingMode: "LOTES"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = uc.Create(ctx, dto.CreateProductRequest{Name: "   "})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestProductCreate_CodigoDeBarrasEnConflicto(t *testing.T) {
	uc, _ := newProductUC(t)
	ctx := context.Background()

	_, err := uc.Create(ctx, dto.CreateProductRequest{
		Name:     "Gaseosa",
		Barcodes: []string{"7701111111111"},
	})
	require.NoError(t, err)

	_, err = uc.Create(ctx, dto.CreateProductRequest{
		Name:     "Jugo",
		Barcodes: []string{"7701111111111"},
	})
	assert.ErrorIs(t, err, domain.ErrBarcodeConflict)
}

func TestProductUpdate_PuedeConservarSusPropiosCodigos(t *testing.T) {
	uc, _ := newProductUC(t)
	ctx := context.Background()

	creado, err := uc.Create(ctx, dto.CreateProductRequest{
		Name:     "Gaseosa",
		Barcodes: []string{"7701111111111"},
	})
	require.NoError(t, err)

	// Reenviar el mismo código del propio producto no es conflicto.
	out, err := uc.Update(ctx, creado.ID, dto.UpdateProductRequest{
		Name:     "Gaseosa 350ml",
		Barcodes: []string{"7701111111111", "7702222222222"},
	})
	require.NoError(t, err)
	assert.Len(t, out.Barcodes, 2)
}

func TestProductGetByBarcode(t *testing.T) {
	uc, _ := newProductUC(t)
	ctx := context.Background()

	creado, err := uc.Create(ctx, dto.CreateProductRequest{
		Name:     "Galletas",
		Barcodes: []string{"7703333333333", "7704444444444"},
	})
	require.NoError(t, err)

	// Cualquiera de los códigos resuelve al mismo producto.
	for _, code := range []string{"7703333333333", "7704444444444"} {
		out, err := uc.GetByBarcode(ctx, code)
		require.NoError(t, err)
		assert.Equal(t, creado.ID, out.ID)
	}

	_, err = uc.GetByBarcode(ctx, "0000000000000")
	assert.ErrorIs(t, err, domain.ErrProductNotFound)
}

func TestDeleteBatch_BloqueadoSiHayVentas(t *testing.T) {
	uc, store := newProductUC(t)
	batchRepo := memory.NewBatchRepository(store)
	saleRepo := memory.NewSaleRepository(store)
	ctx := context.Background()

	batch := &entity.Batch{ID: uuid.New().String(), ProductID: uuid.New().String(), Quantity: 5}
	require.NoError(t, batchRepo.Create(batch))

	saleID := uuid.New().String()
	require.NoError(t, saleRepo.Create(&entity.Sale{
		ID:          saleID,
		TotalAmount: dec("12"),
		CreatedAt:   time.Now(),
		Items: []*entity.SaleItem{{
			ID:       uuid.New().String(),
			SaleID:   saleID,
			BatchID:  batch.ID,
			Quantity: 1,
		}},
	}))

	err := uc.DeleteBatch(ctx, batch.ID)
	assert.ErrorIs(t, err, domain.ErrConflict)

	// Sin referencias sí se elimina.
	libre := &entity.Batch{ID: uuid.New().String(), ProductID: uuid.New().String(), Quantity: 5}
	require.NoError(t, batchRepo.Create(libre))
	require.NoError(t, uc.DeleteBatch(ctx, libre.ID))

	gone, err := batchRepo.GetByID(libre.ID)
	require.NoError(t, err)
	assert.Nil(t, gone)
}
