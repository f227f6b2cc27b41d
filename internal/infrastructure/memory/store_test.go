package memory_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/pos-api/internal/domain/entity"
	"github.com/jhoicas/pos-api/internal/domain/repository"
	"github.com/jhoicas/pos-api/internal/infrastructure/memory"
)

// El procesador de ventas resuelve precios con la transacción abierta, así que
// las lecturas de promociones no pueden contender con el lock de la tx.
func TestStore_LeerPromocionesConVentaAbierta(t *testing.T) {
	store := memory.NewStore()
	promoRepo := memory.NewPromotionRepository(store)

	now := time.Now()
	productID := uuid.New().String()
	precio, _ := decimal.NewFromString("8.50")
	require.NoError(t, promoRepo.Create(&entity.Promotion{
		ID:        uuid.New().String(),
		Name:      "Oferta de agosto",
		StartDate: now.Add(-time.Hour),
		EndDate:   now.Add(time.Hour),
		IsActive:  true,
		Entries:   []entity.PromotionEntry{{ProductID: productID, PromoPrice: precio}},
	}))

	err := store.RunSale(context.Background(), func(
		_ repository.BatchRepository,
		_ repository.StockMovementRepository,
		_ repository.SaleRepository,
	) error {
		promos, err := promoRepo.ActiveForProduct(productID, now)
		if err != nil {
			return err
		}
		require.Len(t, promos, 1)
		assert.True(t, promos[0].Entries[0].PromoPrice.Equal(precio))
		return nil
	})
	require.NoError(t, err)
}
