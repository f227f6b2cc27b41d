package repository

import (
	"time"

	"github.com/jhoicas/pos-api/internal/domain/entity"
)

// StockMovementRepository define el puerto de persistencia del ledger de
// inventario. Es append-only: no hay Update ni Delete.
type StockMovementRepository interface {
	Create(movement *entity.StockMovement) error
	ListByBatch(batchID string, limit, offset int) ([]*entity.StockMovement, error)
	ListByProduct(productID string, from, to *time.Time, limit, offset int) ([]*entity.StockMovement, error)
	ListByDateRange(from, to time.Time, limit, offset int) ([]*entity.StockMovement, error)
}
