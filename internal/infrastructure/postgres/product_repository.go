package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/pos-api/internal/domain"
	"github.com/jhoicas/pos-api/internal/domain/entity"
	"github.com/jhoicas/pos-api/internal/domain/repository"
)

var _ repository.ProductRepository = (*ProductRepo)(nil)

// ProductRepo implementación del puerto ProductRepository sobre PostgreSQL
// (usable con pool o tx). Los códigos de barras viven en product_barcodes con
// constraint único global: la colisión se mapea a ErrBarcodeConflict.
type ProductRepo struct {
	q Querier
}

// NewProductRepository construye el adaptador de persistencia para productos. Pasar pool o tx (Querier).
func NewProductRepository(q Querier) *ProductRepo {
	return &ProductRepo{q: q}
}

// Create persiste un producto nuevo con sus códigos de barras.
func (r *ProductRepo) Create(product *entity.Product) error {
	query := `
		INSERT INTO products (id, name, category_path, tracking_mode, low_stock_threshold, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.q.Exec(context.Background(), query,
		product.ID, product.Name, product.CategoryPath, product.TrackingMode,
		product.LowStockThreshold, product.CreatedAt, product.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert product: %w", err)
	}
	return r.replaceBarcodes(product.ID, product.Barcodes)
}

// GetByID obtiene un producto por ID, con sus códigos de barras.
func (r *ProductRepo) GetByID(id string) (*entity.Product, error) {
	query := `
		SELECT id, name, category_path, tracking_mode, low_stock_threshold, created_at, updated_at
		FROM products WHERE id = $1`
	var p entity.Product
	err := r.q.QueryRow(context.Background(), query, id).Scan(
		&p.ID, &p.Name, &p.CategoryPath, &p.TrackingMode, &p.LowStockThreshold, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	if err := r.loadBarcodes(&p); err != nil {
		return nil, err
	}
	return &p, nil
}

// GetByBarcode resuelve el producto dueño de un código de barras.
func (r *ProductRepo) GetByBarcode(code string) (*entity.Product, error) {
	query := `
		SELECT p.id, p.name, p.category_path, p.tracking_mode, p.low_stock_threshold, p.created_at, p.updated_at
		FROM products p
		JOIN product_barcodes b ON b.product_id = p.id
		WHERE b.code = $1`
	var p entity.Product
	err := r.q.QueryRow(context.Background(), query, code).Scan(
		&p.ID, &p.Name, &p.CategoryPath, &p.TrackingMode, &p.LowStockThreshold, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get product by barcode: %w", err)
	}
	if err := r.loadBarcodes(&p); err != nil {
		return nil, err
	}
	return &p, nil
}

// Update actualiza el producto y reemplaza sus códigos de barras.
func (r *ProductRepo) Update(product *entity.Product) error {
	query := `
		UPDATE products
		SET name = $2, category_path = $3, low_stock_threshold = $4, updated_at = $5
		WHERE id = $1`
	tag, err := r.q.Exec(context.Background(), query,
		product.ID, product.Name, product.CategoryPath, product.LowStockThreshold, product.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrProductNotFound
	}
	return r.replaceBarcodes(product.ID, product.Barcodes)
}

// List lista productos paginados por nombre.
func (r *ProductRepo) List(limit, offset int) ([]*entity.Product, error) {
	query := `
		SELECT id, name, category_path, tracking_mode, low_stock_threshold, created_at, updated_at
		FROM products ORDER BY name LIMIT $1 OFFSET $2`
	rows, err := r.q.Query(context.Background(), query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()
	var list []*entity.Product
	for rows.Next() {
		var p entity.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.CategoryPath, &p.TrackingMode, &p.LowStockThreshold, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		list = append(list, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for _, p := range list {
		if err := r.loadBarcodes(p); err != nil {
			return nil, err
		}
	}
	return list, nil
}

// Delete elimina un producto; falla con ErrConflict si tiene lotes o ventas.
func (r *ProductRepo) Delete(id string) error {
	_, err := r.q.Exec(context.Background(), `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrConflict
		}
		return fmt.Errorf("delete product: %w", err)
	}
	return nil
}

func (r *ProductRepo) loadBarcodes(p *entity.Product) error {
	rows, err := r.q.Query(context.Background(),
		`SELECT code FROM product_barcodes WHERE product_id = $1 ORDER BY code`, p.ID)
	if err != nil {
		return fmt.Errorf("load barcodes: %w", err)
	}
	defer rows.Close()
	p.Barcodes = nil
	for rows.Next() {
		var code string
		if err := rows.Scan(&code); err != nil {
			return fmt.Errorf("scan barcode: %w", err)
		}
		p.Barcodes = append(p.Barcodes, code)
	}
	return rows.Err()
}

func (r *ProductRepo) replaceBarcodes(productID string, codes []string) error {
	ctx := context.Background()
	if _, err := r.q.Exec(ctx, `DELETE FROM product_barcodes WHERE product_id = $1`, productID); err != nil {
		return fmt.Errorf("clear barcodes: %w", err)
	}
	for _, code := range codes {
		_, err := r.q.Exec(ctx,
			`INSERT INTO product_barcodes (product_id, code) VALUES ($1, $2)`, productID, code)
		if err != nil {
			if isUniqueViolation(err) {
				return domain.ErrBarcodeConflict
			}
			return fmt.Errorf("insert barcode: %w", err)
		}
	}
	return nil
}
