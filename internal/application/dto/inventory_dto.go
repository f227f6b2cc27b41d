package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// AddStockRequest body para POST /api/inventory/stock.
// Para productos UNTRACKED la cantidad se suma al lote único existente;
// para TRACKED se crea un lote nuevo (BatchCode autogenerado si falta).
type AddStockRequest struct {
	ProductID        string           `json:"product_id"`
	BatchCode        string           `json:"batch_code,omitempty"`
	Quantity         int64            `json:"quantity"`
	MRP              decimal.Decimal  `json:"mrp"`
	CostPrice        decimal.Decimal  `json:"cost_price"`
	SellingPrice     decimal.Decimal  `json:"selling_price"`
	WholesaleEnabled bool             `json:"wholesale_enabled,omitempty"`
	WholesaleMinQty  int64            `json:"wholesale_min_qty,omitempty"`
	WholesalePrice   *decimal.Decimal `json:"wholesale_price,omitempty"`
	ExpiresAt        *time.Time       `json:"expires_at,omitempty"`
	Note             string           `json:"note,omitempty"`
}

// AdjustStockRequest body para POST /api/inventory/adjustments.
// Delta con signo: positivo registra adjustment_in, negativo adjustment_out.
type AdjustStockRequest struct {
	BatchID string `json:"batch_id"`
	Delta   int64  `json:"delta"`
	Note    string `json:"note"`
}

// StockMovementDTO fila del ledger en respuestas de listado.
type StockMovementDTO struct {
	ID        string    `json:"id"`
	ProductID string    `json:"product_id"`
	BatchID   string    `json:"batch_id"`
	Type      string    `json:"type"`
	Quantity  int64     `json:"quantity"`
	Note      string    `json:"note,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// BatchDTO respuesta con el estado de un lote.
type BatchDTO struct {
	ID           string          `json:"id"`
	ProductID    string          `json:"product_id"`
	Code         string          `json:"code,omitempty"`
	Quantity     int64           `json:"quantity"`
	MRP          decimal.Decimal `json:"mrp"`
	CostPrice    decimal.Decimal `json:"cost_price"`
	SellingPrice decimal.Decimal `json:"selling_price"`
	Active       bool            `json:"active"`
	ExpiresAt    *time.Time      `json:"expires_at,omitempty"`
}

// LowStockDTO producto por debajo de su umbral de alerta.
type LowStockDTO struct {
	ProductID    string `json:"product_id"`
	Name         string `json:"name"`
	CurrentStock int64  `json:"current_stock"`
	Threshold    int64  `json:"threshold"`
}
