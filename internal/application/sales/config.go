package sales

import "github.com/shopspring/decimal"

// Modos de redondeo del total (se aplica una sola vez, al final).
const (
	RoundHalfUp   = "half_up"   // .5 sube (comportamiento por defecto)
	RoundHalfEven = "half_even" // redondeo bancario
)

// Config reglas configurables del procesador de ventas. Se inyecta explícita
// en lugar de leerse de estado ambiente: el core no conoce settings globales.
type Config struct {
	ExtraDiscountEnabled bool
	RoundOffEnabled      bool
	RoundingMode         string // half_up o half_even
}

// DefaultConfig valores usados si no se configura nada.
func DefaultConfig() Config {
	return Config{
		ExtraDiscountEnabled: true,
		RoundOffEnabled:      false,
		RoundingMode:         RoundHalfUp,
	}
}

// roundTotal aplica la política de redondeo al total ya clampeado. Con el
// redondeo deshabilitado devuelve el total intacto y ajuste cero.
func (c Config) roundTotal(total decimal.Decimal) (rounded, roundOff decimal.Decimal) {
	if !c.RoundOffEnabled {
		return total, decimal.Zero
	}
	switch c.RoundingMode {
	case RoundHalfEven:
		rounded = total.RoundBank(0)
	default:
		rounded = total.Round(0)
	}
	return rounded, rounded.Sub(total)
}
