package entity

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/pos-api/internal/domain"
)

// Batch representa un lote de un producto con su propia cantidad, costo y precios.
// Invariante: Quantity >= 0 siempre; CostPrice <= SellingPrice <= MRP cuando los
// tres están definidos. No existe campo de estado: "activo" vs "agotado" se
// deriva de Quantity > 0.
type Batch struct {
	ID           string
	ProductID    string
	Code         string // autogenerado si el producto es TRACKED y no se indica
	Quantity     int64
	MRP          decimal.Decimal
	CostPrice    decimal.Decimal
	SellingPrice decimal.Decimal

	// Tarifa mayorista opcional: precio menor a partir de una cantidad mínima.
	WholesaleEnabled bool
	WholesaleMinQty  int64
	WholesalePrice   decimal.Decimal

	ExpiresAt *time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ValidatePricing verifica CostPrice <= SellingPrice <= MRP. Se aplica antes de
// cualquier mutación de stock; los precios en cero se consideran no definidos.
func (b *Batch) ValidatePricing() error {
	if b.SellingPrice.LessThan(decimal.Zero) || b.CostPrice.LessThan(decimal.Zero) || b.MRP.LessThan(decimal.Zero) {
		return domain.ErrInvalidPricing
	}
	if b.CostPrice.IsPositive() && b.SellingPrice.IsPositive() && b.MRP.IsPositive() {
		if b.CostPrice.GreaterThan(b.SellingPrice) || b.SellingPrice.GreaterThan(b.MRP) {
			return domain.ErrInvalidPricing
		}
	}
	if b.WholesaleEnabled {
		if b.WholesaleMinQty <= 0 || b.WholesalePrice.LessThanOrEqual(decimal.Zero) {
			return domain.ErrInvalidPricing
		}
	}
	return nil
}

// IsActive deriva el estado del lote a partir de la cantidad.
func (b *Batch) IsActive() bool {
	return b.Quantity > 0
}

// IsExpired indica si el lote venció respecto al instante dado.
func (b *Batch) IsExpired(now time.Time) bool {
	return b.ExpiresAt != nil && b.ExpiresAt.Before(now)
}
