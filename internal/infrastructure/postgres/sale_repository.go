package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/pos-api/internal/domain"
	"github.com/jhoicas/pos-api/internal/domain/entity"
	"github.com/jhoicas/pos-api/internal/domain/repository"
)

var _ repository.SaleRepository = (*SaleRepo)(nil)

const saleItemColumns = `id, sale_id, product_id, batch_id, quantity, returned_quantity,
	unit_price, price_tier, selling_price, cost_price, mrp`

// SaleRepo implementación de SaleRepository sobre PostgreSQL (usable con pool o tx).
// Los snapshots del ítem nunca se actualizan; el único UPDATE permitido toca
// returned_quantity y está acotado por CHECK (returned_quantity <= quantity).
type SaleRepo struct {
	q Querier
}

// NewSaleRepository construye el adaptador de ventas. Pasar pool o tx (Querier).
func NewSaleRepository(q Querier) *SaleRepo {
	return &SaleRepo{q: q}
}

// Create persiste cabecera e ítems. Debe invocarse dentro de una tx para que
// la venta y los efectos del ledger sean un solo commit.
func (r *SaleRepo) Create(sale *entity.Sale) error {
	ctx := context.Background()
	query := `
		INSERT INTO sales (id, subtotal, discount, extra_discount, round_off, total_amount, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.q.Exec(ctx, query,
		sale.ID, sale.Subtotal, sale.Discount, sale.ExtraDiscount, sale.RoundOff, sale.TotalAmount, sale.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert sale: %w", err)
	}
	itemQuery := `
		INSERT INTO sale_items (id, sale_id, product_id, batch_id, quantity, returned_quantity,
			unit_price, price_tier, selling_price, cost_price, mrp)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	for _, item := range sale.Items {
		_, err := r.q.Exec(ctx, itemQuery,
			item.ID, item.SaleID, item.ProductID, item.BatchID, item.Quantity, item.ReturnedQuantity,
			item.UnitPrice, item.PriceTier, item.SellingPrice, item.CostPrice, item.MRP,
		)
		if err != nil {
			return fmt.Errorf("insert sale item: %w", err)
		}
	}
	return nil
}

// GetByID obtiene la venta con todos sus ítems.
func (r *SaleRepo) GetByID(id string) (*entity.Sale, error) {
	ctx := context.Background()
	query := `
		SELECT id, subtotal, discount, extra_discount, round_off, total_amount, created_at
		FROM sales WHERE id = $1`
	var s entity.Sale
	err := r.q.QueryRow(ctx, query, id).Scan(
		&s.ID, &s.Subtotal, &s.Discount, &s.ExtraDiscount, &s.RoundOff, &s.TotalAmount, &s.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get sale: %w", err)
	}
	items, err := r.itemsBySale(ctx, s.ID)
	if err != nil {
		return nil, err
	}
	s.Items = items
	return &s, nil
}

// GetItemByID obtiene un ítem de venta.
func (r *SaleRepo) GetItemByID(itemID string) (*entity.SaleItem, error) {
	query := `SELECT ` + saleItemColumns + ` FROM sale_items WHERE id = $1`
	return r.scanItem(r.q.QueryRow(context.Background(), query, itemID))
}

// GetItemForUpdate obtiene un ítem de venta y bloquea la fila (SELECT FOR UPDATE):
// dos devoluciones concurrentes sobre el mismo ítem se serializan aquí.
func (r *SaleRepo) GetItemForUpdate(itemID string) (*entity.SaleItem, error) {
	query := `SELECT ` + saleItemColumns + ` FROM sale_items WHERE id = $1 FOR UPDATE`
	return r.scanItem(r.q.QueryRow(context.Background(), query, itemID))
}

// UpdateItemReturned fija la cantidad devuelta acumulada del ítem.
func (r *SaleRepo) UpdateItemReturned(itemID string, returnedQuantity int64) error {
	tag, err := r.q.Exec(context.Background(),
		`UPDATE sale_items SET returned_quantity = $2 WHERE id = $1`, itemID, returnedQuantity)
	if err != nil {
		return fmt.Errorf("update returned quantity: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrSaleItemNotFound
	}
	return nil
}

// CountItemsByBatch cuenta ítems de venta que referencian un lote.
func (r *SaleRepo) CountItemsByBatch(batchID string) (int64, error) {
	var count int64
	err := r.q.QueryRow(context.Background(),
		`SELECT COUNT(*) FROM sale_items WHERE batch_id = $1`, batchID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count sale items by batch: %w", err)
	}
	return count, nil
}

// ListByDateRange lista ventas (con ítems) en una ventana de fechas.
func (r *SaleRepo) ListByDateRange(from, to time.Time, limit, offset int) ([]*entity.Sale, error) {
	ctx := context.Background()
	query := `
		SELECT id, subtotal, discount, extra_discount, round_off, total_amount, created_at
		FROM sales WHERE created_at >= $1 AND created_at <= $2
		ORDER BY created_at DESC LIMIT $3 OFFSET $4`
	rows, err := r.q.Query(ctx, query, from, to, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list sales: %w", err)
	}
	defer rows.Close()
	var list []*entity.Sale
	for rows.Next() {
		var s entity.Sale
		if err := rows.Scan(&s.ID, &s.Subtotal, &s.Discount, &s.ExtraDiscount, &s.RoundOff, &s.TotalAmount, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan sale: %w", err)
		}
		list = append(list, &s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for _, s := range list {
		items, err := r.itemsBySale(ctx, s.ID)
		if err != nil {
			return nil, err
		}
		s.Items = items
	}
	return list, nil
}

func (r *SaleRepo) itemsBySale(ctx context.Context, saleID string) ([]*entity.SaleItem, error) {
	query := `SELECT ` + saleItemColumns + ` FROM sale_items WHERE sale_id = $1 ORDER BY id`
	rows, err := r.q.Query(ctx, query, saleID)
	if err != nil {
		return nil, fmt.Errorf("list sale items: %w", err)
	}
	defer rows.Close()
	var items []*entity.SaleItem
	for rows.Next() {
		var i entity.SaleItem
		if err := rows.Scan(&i.ID, &i.SaleID, &i.ProductID, &i.BatchID, &i.Quantity, &i.ReturnedQuantity,
			&i.UnitPrice, &i.PriceTier, &i.SellingPrice, &i.CostPrice, &i.MRP); err != nil {
			return nil, fmt.Errorf("scan sale item: %w", err)
		}
		items = append(items, &i)
	}
	return items, rows.Err()
}

func (r *SaleRepo) scanItem(row pgx.Row) (*entity.SaleItem, error) {
	var i entity.SaleItem
	err := row.Scan(&i.ID, &i.SaleID, &i.ProductID, &i.BatchID, &i.Quantity, &i.ReturnedQuantity,
		&i.UnitPrice, &i.PriceTier, &i.SellingPrice, &i.CostPrice, &i.MRP)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan sale item: %w", err)
	}
	return &i, nil
}
