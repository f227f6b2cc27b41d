package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// SaleLineRequest una línea de venta: lote y cantidad solicitada.
type SaleLineRequest struct {
	BatchID  string `json:"batch_id"`
	Quantity int64  `json:"quantity"`
}

// CreateSaleRequest body para POST /api/sales.
type CreateSaleRequest struct {
	Lines         []SaleLineRequest `json:"lines"`
	Discount      decimal.Decimal   `json:"discount"`
	ExtraDiscount decimal.Decimal   `json:"extra_discount"`
}

// SaleItemDTO ítem de venta con los snapshots cobrados.
type SaleItemDTO struct {
	ID               string          `json:"id"`
	ProductID        string          `json:"product_id"`
	BatchID          string          `json:"batch_id"`
	Quantity         int64           `json:"quantity"`
	ReturnedQuantity int64           `json:"returned_quantity"`
	UnitPrice        decimal.Decimal `json:"unit_price"`
	PriceTier        string          `json:"price_tier"`
	SellingPrice     decimal.Decimal `json:"selling_price"`
	MRP              decimal.Decimal `json:"mrp"`
	LineTotal        decimal.Decimal `json:"line_total"`
}

// SaleResponse respuesta de creación/lectura de venta.
type SaleResponse struct {
	SaleID        string          `json:"sale_id"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	Discount      decimal.Decimal `json:"discount"`
	ExtraDiscount decimal.Decimal `json:"extra_discount"`
	RoundOff      decimal.Decimal `json:"round_off"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	CreatedAt     time.Time       `json:"created_at"`
	Items         []SaleItemDTO   `json:"items"`
}

// ReturnLineRequest una línea de devolución sobre un ítem vendido.
type ReturnLineRequest struct {
	SaleItemID string `json:"sale_item_id"`
	Quantity   int64  `json:"quantity"`
}

// ReturnSaleRequest body para POST /api/sales/:id/returns.
type ReturnSaleRequest struct {
	Lines []ReturnLineRequest `json:"lines"`
}

// ReturnLineResult resultado por línea devuelta.
type ReturnLineResult struct {
	SaleItemID       string `json:"sale_item_id"`
	Returned         int64  `json:"returned"`
	ReturnedQuantity int64  `json:"returned_quantity"` // acumulado del ítem
	Remaining        int64  `json:"remaining"`
}

// ReturnResponse respuesta de una devolución.
type ReturnResponse struct {
	SaleID string             `json:"sale_id"`
	Lines  []ReturnLineResult `json:"lines"`
}
