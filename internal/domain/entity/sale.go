package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Sale agrupa los ítems vendidos en una transacción más el descuento a nivel
// de venta. Subtotal, descuentos y total quedan congelados al confirmar.
type Sale struct {
	ID            string
	Subtotal      decimal.Decimal
	Discount      decimal.Decimal
	ExtraDiscount decimal.Decimal
	RoundOff      decimal.Decimal // ajuste por redondeo aplicado al total final
	TotalAmount   decimal.Decimal
	CreatedAt     time.Time
	Items         []*SaleItem
}

// SaleItem congela, al momento de la venta, el precio cobrado y los precios de
// referencia del lote (venta, costo, MRP). Estos campos son inmutables después
// del commit: cambios posteriores en el lote no alteran una venta liquidada.
// Solo ReturnedQuantity puede crecer, vía devoluciones, hasta Quantity.
type SaleItem struct {
	ID               string
	SaleID           string
	ProductID        string
	BatchID          string
	Quantity         int64
	ReturnedQuantity int64
	UnitPrice        decimal.Decimal // precio efectivamente cobrado por unidad
	PriceTier        string          // regular, promotional o wholesale
	SellingPrice     decimal.Decimal // snapshot del precio de lista del lote
	CostPrice        decimal.Decimal // snapshot del costo del lote
	MRP              decimal.Decimal // snapshot del MRP del lote
}

// RemainingReturnable devuelve la cantidad aún devolvible del ítem.
func (i *SaleItem) RemainingReturnable() int64 {
	return i.Quantity - i.ReturnedQuantity
}

// LineTotal devuelve el importe cobrado por la línea.
func (i *SaleItem) LineTotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(i.Quantity))
}

// Profit calcula la utilidad del ítem sobre las unidades no devueltas,
// usando únicamente los snapshots congelados.
func (i *SaleItem) Profit() decimal.Decimal {
	kept := decimal.NewFromInt(i.Quantity - i.ReturnedQuantity)
	return i.SellingPrice.Sub(i.CostPrice).Mul(kept)
}
