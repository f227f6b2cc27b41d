package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateProductRequest body para POST /api/products.
type CreateProductRequest struct {
	Name              string   `json:"name"`
	CategoryPath      string   `json:"category_path,omitempty"`
	Barcodes          []string `json:"barcodes,omitempty"`
	TrackingMode      string   `json:"tracking_mode"` // TRACKED o UNTRACKED
	LowStockThreshold *int64   `json:"low_stock_threshold,omitempty"`
}

// UpdateProductRequest body para PUT /api/products/:id.
type UpdateProductRequest struct {
	Name              string   `json:"name"`
	CategoryPath      string   `json:"category_path,omitempty"`
	Barcodes          []string `json:"barcodes,omitempty"`
	LowStockThreshold *int64   `json:"low_stock_threshold,omitempty"`
}

// ProductDTO respuesta de producto.
type ProductDTO struct {
	ID                string    `json:"id"`
	Name              string    `json:"name"`
	CategoryPath      string    `json:"category_path,omitempty"`
	Barcodes          []string  `json:"barcodes,omitempty"`
	TrackingMode      string    `json:"tracking_mode"`
	LowStockThreshold *int64    `json:"low_stock_threshold,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
}

// PromotionEntryDTO producto y precio de oferta dentro de una campaña.
type PromotionEntryDTO struct {
	ProductID  string          `json:"product_id"`
	PromoPrice decimal.Decimal `json:"promo_price"`
}

// CreatePromotionRequest body para POST /api/promotions.
type CreatePromotionRequest struct {
	Name      string              `json:"name"`
	StartDate time.Time           `json:"start_date"`
	EndDate   time.Time           `json:"end_date"`
	IsActive  bool                `json:"is_active"`
	Entries   []PromotionEntryDTO `json:"entries"`
}

// PromotionDTO respuesta de promoción.
type PromotionDTO struct {
	ID        string              `json:"id"`
	Name      string              `json:"name"`
	StartDate time.Time           `json:"start_date"`
	EndDate   time.Time           `json:"end_date"`
	IsActive  bool                `json:"is_active"`
	Entries   []PromotionEntryDTO `json:"entries"`
}
