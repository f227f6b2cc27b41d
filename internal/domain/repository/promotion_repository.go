package repository

import (
	"time"

	"github.com/jhoicas/pos-api/internal/domain/entity"
)

// PromotionRepository define el puerto de persistencia para promociones.
// Son solo lectura para el motor de precios; la escritura proviene de la
// administración de campañas.
type PromotionRepository interface {
	Create(promotion *entity.Promotion) error
	GetByID(id string) (*entity.Promotion, error)
	Update(promotion *entity.Promotion) error
	List(limit, offset int) ([]*entity.Promotion, error)
	// ActiveForProduct devuelve las promociones vigentes en now que incluyen
	// al producto (startDate <= now <= endDate, isActive).
	ActiveForProduct(productID string, now time.Time) ([]*entity.Promotion, error)
}
