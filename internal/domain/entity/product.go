package entity

import (
	"strings"
	"time"
)

// Modos de seguimiento de inventario por producto.
const (
	TrackingTRACKED   = "TRACKED"   // lotes diferenciados por compra
	TrackingUNTRACKED = "UNTRACKED" // un único lote implícito
)

// Product representa un artículo del catálogo. Puede tener uno o más códigos
// de barras propios (la búsqueda por cualquiera de ellos resuelve al producto).
// El stock vive en Batch; el producto solo define cómo se agrupa (TrackingMode).
type Product struct {
	ID                string
	Name              string
	CategoryPath      string // jerárquico: "abarrotes/bebidas/gaseosas"
	Barcodes          []string
	TrackingMode      string // TRACKED o UNTRACKED
	LowStockThreshold *int64 // opcional: alerta de stock bajo
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// IsTracked indica si el producto maneja lotes diferenciados.
func (p *Product) IsTracked() bool {
	return p.TrackingMode == TrackingTRACKED
}

// HasBarcode verifica si el producto posee el código de barras dado.
func (p *Product) HasBarcode(code string) bool {
	code = strings.TrimSpace(code)
	for _, b := range p.Barcodes {
		if b == code {
			return true
		}
	}
	return false
}
