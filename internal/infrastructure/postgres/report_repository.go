package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/pos-api/internal/domain/entity"
	"github.com/jhoicas/pos-api/internal/domain/repository"
)

var _ repository.ReportRepository = (*ReportRepo)(nil)

// ReportRepo consultas de solo lectura para reportes: gastos, compras y
// agregados de stock. Corre siempre sobre el pool (nunca dentro de una tx de venta).
type ReportRepo struct {
	q Querier
}

// NewReportRepository construye el adaptador de reportes.
func NewReportRepository(q Querier) *ReportRepo {
	return &ReportRepo{q: q}
}

// ListExpenses lista gastos del período.
func (r *ReportRepo) ListExpenses(from, to time.Time) ([]*entity.Expense, error) {
	query := `
		SELECT id, concept, amount, date, created_at
		FROM expenses WHERE date >= $1 AND date <= $2 ORDER BY date`
	rows, err := r.q.Query(context.Background(), query, from, to)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	defer rows.Close()
	var list []*entity.Expense
	for rows.Next() {
		var e entity.Expense
		if err := rows.Scan(&e.ID, &e.Concept, &e.Amount, &e.Date, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan expense: %w", err)
		}
		list = append(list, &e)
	}
	return list, rows.Err()
}

// ListPurchases lista compras del período.
func (r *ReportRepo) ListPurchases(from, to time.Time) ([]*entity.Purchase, error) {
	query := `
		SELECT id, supplier, amount, date, created_at
		FROM purchases WHERE date >= $1 AND date <= $2 ORDER BY date`
	rows, err := r.q.Query(context.Background(), query, from, to)
	if err != nil {
		return nil, fmt.Errorf("list purchases: %w", err)
	}
	defer rows.Close()
	var list []*entity.Purchase
	for rows.Next() {
		var p entity.Purchase
		if err := rows.Scan(&p.ID, &p.Supplier, &p.Amount, &p.Date, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan purchase: %w", err)
		}
		list = append(list, &p)
	}
	return list, rows.Err()
}

// TotalStockValue valora el inventario actual al costo de cada lote.
func (r *ReportRepo) TotalStockValue() (decimal.Decimal, error) {
	var total decimal.Decimal
	err := r.q.QueryRow(context.Background(),
		`SELECT COALESCE(SUM(quantity * cost_price), 0) FROM batches`).Scan(&total)
	if err != nil {
		return decimal.Zero, fmt.Errorf("total stock value: %w", err)
	}
	return total, nil
}

// ListLowStock devuelve productos cuyo stock total está por debajo de su umbral.
func (r *ReportRepo) ListLowStock() ([]repository.LowStockRow, error) {
	query := `
		SELECT p.id, p.name, COALESCE(SUM(b.quantity), 0) AS stock, p.low_stock_threshold
		FROM products p
		LEFT JOIN batches b ON b.product_id = p.id
		WHERE p.low_stock_threshold IS NOT NULL
		GROUP BY p.id, p.name, p.low_stock_threshold
		HAVING COALESCE(SUM(b.quantity), 0) < p.low_stock_threshold
		ORDER BY p.name`
	rows, err := r.q.Query(context.Background(), query)
	if err != nil {
		return nil, fmt.Errorf("list low stock: %w", err)
	}
	defer rows.Close()
	var list []repository.LowStockRow
	for rows.Next() {
		var row repository.LowStockRow
		if err := rows.Scan(&row.ProductID, &row.Name, &row.CurrentStock, &row.Threshold); err != nil {
			return nil, fmt.Errorf("scan low stock: %w", err)
		}
		list = append(list, row)
	}
	return list, rows.Err()
}
