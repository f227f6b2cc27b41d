package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Promotion es una campaña con ventana de vigencia y precios de oferta por
// producto. Es solo un insumo de lectura para la resolución de precios; no
// forma parte del ledger.
type Promotion struct {
	ID        string
	Name      string
	StartDate time.Time
	EndDate   time.Time
	IsActive  bool
	Entries   []PromotionEntry
	CreatedAt time.Time
	UpdatedAt time.Time
}

// PromotionEntry asocia un producto con su precio promocional dentro de la campaña.
type PromotionEntry struct {
	ProductID  string
	PromoPrice decimal.Decimal
}

// ActiveAt indica si la promoción está vigente en el instante dado
// (startDate <= now <= endDate e isActive).
func (p *Promotion) ActiveAt(now time.Time) bool {
	if !p.IsActive {
		return false
	}
	return !now.Before(p.StartDate) && !now.After(p.EndDate)
}

// PriceFor devuelve el precio promocional del producto si la campaña lo incluye.
func (p *Promotion) PriceFor(productID string) (decimal.Decimal, bool) {
	for _, e := range p.Entries {
		if e.ProductID == productID {
			return e.PromoPrice, true
		}
	}
	return decimal.Zero, false
}
