package pricing_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/pos-api/internal/domain/entity"
	"github.com/jhoicas/pos-api/internal/domain/pricing"
)

func dec(s string) decimal.Decimal {
	d, _ := decimal.NewFromString(s)
	return d
}

// batchConMayorista lote con precio de lista 100 y tarifa mayorista 80 desde 10 unidades.
func batchConMayorista() *entity.Batch {
	return &entity.Batch{
		ID:               "b1",
		ProductID:        "p1",
		Quantity:         100,
		MRP:              dec("120"),
		CostPrice:        dec("60"),
		SellingPrice:     dec("100"),
		WholesaleEnabled: true,
		WholesaleMinQty:  10,
		WholesalePrice:   dec("80"),
	}
}

func promoDe(productID, price string, from, to time.Time) *entity.Promotion {
	return &entity.Promotion{
		ID:        "promo-" + price,
		Name:      "oferta",
		StartDate: from,
		EndDate:   to,
		IsActive:  true,
		Entries:   []entity.PromotionEntry{{ProductID: productID, PromoPrice: dec(price)}},
	}
}

func TestResolve_PrecioRegular(t *testing.T) {
	now := time.Now()
	batch := &entity.Batch{ID: "b1", ProductID: "p1", SellingPrice: dec("100")}

	tier := pricing.Resolve(batch, 1, nil, now)

	assert.Equal(t, pricing.TierRegular, tier.Kind)
	assert.True(t, tier.UnitPrice.Equal(dec("100")))
}

func TestResolve_MayoristaGanaAlAlcanzarElMinimo(t *testing.T) {
	now := time.Now()
	batch := batchConMayorista()

	t.Run("por debajo del mínimo aplica regular", func(t *testing.T) {
		tier := pricing.Resolve(batch, 9, nil, now)
		assert.Equal(t, pricing.TierRegular, tier.Kind)
		assert.True(t, tier.UnitPrice.Equal(dec("100")))
	})

	t.Run("exactamente el mínimo aplica mayorista", func(t *testing.T) {
		tier := pricing.Resolve(batch, 10, nil, now)
		assert.Equal(t, pricing.TierWholesale, tier.Kind)
		assert.True(t, tier.UnitPrice.Equal(dec("80")))
		assert.Equal(t, int64(10), tier.MinQty)
	})
}

func TestResolve_MayoristaGanaSobrePromoMasBarata(t *testing.T) {
	// La tarifa mayorista no se compara contra promociones: con la cantidad
	// mínima alcanzada gana aunque exista una promo más barata.
	now := time.Now()
	batch := batchConMayorista()
	promo := promoDe("p1", "70", now.Add(-time.Hour), now.Add(time.Hour))

	tier := pricing.Resolve(batch, 10, []*entity.Promotion{promo}, now)

	assert.Equal(t, pricing.TierWholesale, tier.Kind)
	assert.True(t, tier.UnitPrice.Equal(dec("80")))
}

func TestResolve_PromocionSoloSiMejoraElPrecioDeLista(t *testing.T) {
	now := time.Now()
	batch := &entity.Batch{ID: "b1", ProductID: "p1", SellingPrice: dec("100")}

	t.Run("promo por debajo de lista aplica", func(t *testing.T) {
		promo := promoDe("p1", "90", now.Add(-time.Hour), now.Add(time.Hour))
		tier := pricing.Resolve(batch, 1, []*entity.Promotion{promo}, now)
		assert.Equal(t, pricing.TierPromotional, tier.Kind)
		assert.True(t, tier.UnitPrice.Equal(dec("90")))
	})

	t.Run("promo igual o mayor a lista se ignora", func(t *testing.T) {
		promo := promoDe("p1", "100", now.Add(-time.Hour), now.Add(time.Hour))
		tier := pricing.Resolve(batch, 1, []*entity.Promotion{promo}, now)
		assert.Equal(t, pricing.TierRegular, tier.Kind)
	})
}

func TestResolve_CampanasSolapadasGanaLaMasBarata(t *testing.T) {
	now := time.Now()
	batch := &entity.Batch{ID: "b1", ProductID: "p1", SellingPrice: dec("100")}
	promos := []*entity.Promotion{
		promoDe("p1", "95", now.Add(-time.Hour), now.Add(time.Hour)),
		promoDe("p1", "85", now.Add(-time.Hour), now.Add(time.Hour)),
		promoDe("p1", "90", now.Add(-time.Hour), now.Add(time.Hour)),
	}

	tier := pricing.Resolve(batch, 1, promos, now)

	assert.Equal(t, pricing.TierPromotional, tier.Kind)
	assert.True(t, tier.UnitPrice.Equal(dec("85")))
}

func TestResolve_PromocionFueraDeVentanaNoAplica(t *testing.T) {
	now := time.Now()
	batch := &entity.Batch{ID: "b1", ProductID: "p1", SellingPrice: dec("100")}

	t.Run("promo vencida", func(t *testing.T) {
		promo := promoDe("p1", "80", now.Add(-48*time.Hour), now.Add(-24*time.Hour))
		tier := pricing.Resolve(batch, 1, []*entity.Promotion{promo}, now)
		assert.Equal(t, pricing.TierRegular, tier.Kind)
	})

	t.Run("promo futura", func(t *testing.T) {
		promo := promoDe("p1", "80", now.Add(24*time.Hour), now.Add(48*time.Hour))
		tier := pricing.Resolve(batch, 1, []*entity.Promotion{promo}, now)
		assert.Equal(t, pricing.TierRegular, tier.Kind)
	})

	t.Run("promo desactivada", func(t *testing.T) {
		promo := promoDe("p1", "80", now.Add(-time.Hour), now.Add(time.Hour))
		promo.IsActive = false
		tier := pricing.Resolve(batch, 1, []*entity.Promotion{promo}, now)
		assert.Equal(t, pricing.TierRegular, tier.Kind)
	})
}

func TestResolve_CambioDeCantidadCambiaDeTarifa(t *testing.T) {
	// Al bajar del mínimo mayorista la línea vuelve a la promo vigente.
	now := time.Now()
	batch := batchConMayorista()
	promo := promoDe("p1", "90", now.Add(-time.Hour), now.Add(time.Hour))

	alta := pricing.Resolve(batch, 12, []*entity.Promotion{promo}, now)
	baja := pricing.Resolve(batch, 3, []*entity.Promotion{promo}, now)

	assert.Equal(t, pricing.TierWholesale, alta.Kind)
	assert.Equal(t, pricing.TierPromotional, baja.Kind)
	assert.True(t, baja.UnitPrice.Equal(dec("90")))
}

func TestResolve_EsDeterminista(t *testing.T) {
	now := time.Now()
	batch := batchConMayorista()
	promos := []*entity.Promotion{promoDe("p1", "85", now.Add(-time.Hour), now.Add(time.Hour))}

	primera := pricing.Resolve(batch, 5, promos, now)
	segunda := pricing.Resolve(batch, 5, promos, now)

	assert.Equal(t, primera.Kind, segunda.Kind)
	assert.True(t, primera.UnitPrice.Equal(segunda.UnitPrice))
}
