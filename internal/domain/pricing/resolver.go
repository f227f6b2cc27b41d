package pricing

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/pos-api/internal/domain/entity"
)

// Niveles de precio (variante cerrada producida una vez por línea).
const (
	TierRegular     = "regular"
	TierPromotional = "promotional"
	TierWholesale   = "wholesale"
)

// PriceTier es el resultado de resolver el precio de una línea: qué tarifa
// aplica y a qué precio unitario. MinQty solo es significativo en wholesale.
type PriceTier struct {
	Kind      string
	UnitPrice decimal.Decimal
	MinQty    int64
}

// Resolve determina el precio unitario de una línea (servicio de dominio puro,
// sin efectos y determinista para entradas iguales). Precedencia:
//
//  1. Mayorista: si el lote tiene tarifa mayorista habilitada y la cantidad
//     alcanza el mínimo, gana sin compararse contra promociones.
//  2. Promoción: el MENOR precio promocional vigente en now que sea inferior
//     al precio de lista (regla de desempate entre campañas solapadas:
//     el más favorable al cliente).
//  3. Precio de lista del lote.
//
// Debe reinvocarse en cada cambio de cantidad: una línea mayorista vuelve a
// promo/regular al bajar del mínimo, y viceversa.
func Resolve(batch *entity.Batch, quantity int64, promos []*entity.Promotion, now time.Time) PriceTier {
	if batch.WholesaleEnabled && quantity >= batch.WholesaleMinQty {
		return PriceTier{Kind: TierWholesale, UnitPrice: batch.WholesalePrice, MinQty: batch.WholesaleMinQty}
	}

	if best, ok := lowestPromoPrice(batch.ProductID, batch.SellingPrice, promos, now); ok {
		return PriceTier{Kind: TierPromotional, UnitPrice: best}
	}

	return PriceTier{Kind: TierRegular, UnitPrice: batch.SellingPrice}
}

// lowestPromoPrice aplica la regla de desempate entre campañas solapadas:
// el menor precio promocional vigente, solo si mejora el precio de lista.
func lowestPromoPrice(productID string, sellingPrice decimal.Decimal, promos []*entity.Promotion, now time.Time) (decimal.Decimal, bool) {
	var best decimal.Decimal
	found := false
	for _, promo := range promos {
		if !promo.ActiveAt(now) {
			continue
		}
		price, ok := promo.PriceFor(productID)
		if !ok || price.GreaterThanOrEqual(sellingPrice) {
			continue
		}
		if !found || price.LessThan(best) {
			best = price
			found = true
		}
	}
	return best, found
}
