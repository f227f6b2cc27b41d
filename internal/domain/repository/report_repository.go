package repository

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/pos-api/internal/domain/entity"
)

// LowStockRow es una fila del listado de productos bajo su umbral de alerta.
type LowStockRow struct {
	ProductID    string
	Name         string
	CurrentStock int64
	Threshold    int64
}

// ReportRepository define el puerto de solo lectura para reportes: gastos y
// compras registrados externamente y consultas agregadas sobre stock.
// Nunca escribe; el agregador reproduce snapshots, no recalcula precios.
type ReportRepository interface {
	ListExpenses(from, to time.Time) ([]*entity.Expense, error)
	ListPurchases(from, to time.Time) ([]*entity.Purchase, error)
	// TotalStockValue valora el inventario actual al costo de cada lote.
	TotalStockValue() (decimal.Decimal, error)
	// ListLowStock devuelve productos cuyo stock total está por debajo de su umbral.
	ListLowStock() ([]LowStockRow, error)
}
