package sales

import (
	"context"
	"time"

	"github.com/jhoicas/pos-api/internal/domain/entity"
	"github.com/jhoicas/pos-api/internal/domain/repository"
)

// SaleTxRunner inicia una transacción con los repositorios que necesita una
// venta o devolución completa: lotes, ledger y ventas. O se confirma todo el
// efecto de la llamada o no se confirma nada.
type SaleTxRunner interface {
	RunSale(ctx context.Context, fn func(
		batchRepo repository.BatchRepository,
		movRepo repository.StockMovementRepository,
		saleRepo repository.SaleRepository,
	) error) error
}

// PromotionSource entrega las promociones vigentes para un producto en un
// instante dado. Lectura consistente al momento de resolver el precio; detrás
// puede haber cache (Redis) o el repositorio directo.
type PromotionSource interface {
	ActiveForProduct(ctx context.Context, productID string, now time.Time) ([]*entity.Promotion, error)
}
