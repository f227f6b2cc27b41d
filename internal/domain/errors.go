package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound          = errors.New("recurso no encontrado")
	ErrProductNotFound   = errors.New("producto no encontrado")
	ErrBatchNotFound     = errors.New("lote no encontrado")
	ErrSaleNotFound      = errors.New("venta no encontrada")
	ErrSaleItemNotFound  = errors.New("ítem de venta no encontrado")
	ErrInvalidInput      = errors.New("entrada inválida")
	ErrDuplicate         = errors.New("recurso duplicado")
	ErrConflict          = errors.New("conflicto con el estado actual")
	ErrInsufficientStock = errors.New("stock insuficiente")
	ErrOverReturn        = errors.New("la devolución excede la cantidad pendiente")
	ErrInvalidPricing    = errors.New("precios inválidos: se requiere costo <= venta <= MRP")
	ErrBarcodeConflict   = errors.New("código de barras ya registrado en otro producto")
)
