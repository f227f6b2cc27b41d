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

var _ repository.BatchRepository = (*BatchRepo)(nil)

const batchColumns = `id, product_id, code, quantity, mrp, cost_price, selling_price,
	wholesale_enabled, wholesale_min_qty, wholesale_price, expires_at, created_at, updated_at`

// BatchRepo implementación de BatchRepository sobre PostgreSQL (usable con pool o tx).
// La cantidad tiene CHECK (quantity >= 0) en la tabla como última línea de defensa.
type BatchRepo struct {
	q Querier
}

// NewBatchRepository construye el adaptador de lotes. Pasar pool o tx (Querier).
func NewBatchRepository(q Querier) *BatchRepo {
	return &BatchRepo{q: q}
}

// Create persiste un lote nuevo.
func (r *BatchRepo) Create(batch *entity.Batch) error {
	query := `
		INSERT INTO batches (id, product_id, code, quantity, mrp, cost_price, selling_price,
			wholesale_enabled, wholesale_min_qty, wholesale_price, expires_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`
	_, err := r.q.Exec(context.Background(), query,
		batch.ID, batch.ProductID, nullIfEmpty(batch.Code), batch.Quantity,
		batch.MRP, batch.CostPrice, batch.SellingPrice,
		batch.WholesaleEnabled, batch.WholesaleMinQty, batch.WholesalePrice,
		batch.ExpiresAt, batch.CreatedAt, batch.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert batch: %w", err)
	}
	return nil
}

// GetByID obtiene un lote por ID.
func (r *BatchRepo) GetByID(id string) (*entity.Batch, error) {
	query := `SELECT ` + batchColumns + ` FROM batches WHERE id = $1`
	return r.scanOne(r.q.QueryRow(context.Background(), query, id))
}

// GetForUpdate obtiene el lote y bloquea la fila (SELECT FOR UPDATE).
// El bloqueo se mantiene hasta el commit/rollback de la tx del Querier.
func (r *BatchRepo) GetForUpdate(id string) (*entity.Batch, error) {
	query := `SELECT ` + batchColumns + ` FROM batches WHERE id = $1 FOR UPDATE`
	return r.scanOne(r.q.QueryRow(context.Background(), query, id))
}

// GetSingleForUpdate obtiene con bloqueo el lote único de un producto UNTRACKED;
// nil si el producto aún no tiene lote.
func (r *BatchRepo) GetSingleForUpdate(productID string) (*entity.Batch, error) {
	query := `SELECT ` + batchColumns + ` FROM batches WHERE product_id = $1 ORDER BY created_at LIMIT 1 FOR UPDATE`
	return r.scanOne(r.q.QueryRow(context.Background(), query, productID))
}

// Update persiste cantidad y precios del lote.
func (r *BatchRepo) Update(batch *entity.Batch) error {
	query := `
		UPDATE batches
		SET quantity = $2, mrp = $3, cost_price = $4, selling_price = $5,
			wholesale_enabled = $6, wholesale_min_qty = $7, wholesale_price = $8,
			expires_at = $9, updated_at = $10
		WHERE id = $1`
	tag, err := r.q.Exec(context.Background(), query,
		batch.ID, batch.Quantity, batch.MRP, batch.CostPrice, batch.SellingPrice,
		batch.WholesaleEnabled, batch.WholesaleMinQty, batch.WholesalePrice,
		batch.ExpiresAt, batch.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update batch: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrBatchNotFound
	}
	return nil
}

// ListByProduct lista los lotes de un producto, más recientes primero.
func (r *BatchRepo) ListByProduct(productID string) ([]*entity.Batch, error) {
	query := `SELECT ` + batchColumns + ` FROM batches WHERE product_id = $1 ORDER BY created_at DESC`
	rows, err := r.q.Query(context.Background(), query, productID)
	if err != nil {
		return nil, fmt.Errorf("list batches: %w", err)
	}
	defer rows.Close()
	var list []*entity.Batch
	for rows.Next() {
		b, err := scanBatch(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, b)
	}
	return list, rows.Err()
}

// Delete elimina un lote. La FK desde sale_items (RESTRICT) bloquea el borrado
// de lotes referenciados por ventas; se mapea a ErrConflict.
func (r *BatchRepo) Delete(id string) error {
	tag, err := r.q.Exec(context.Background(), `DELETE FROM batches WHERE id = $1`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrConflict
		}
		return fmt.Errorf("delete batch: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrBatchNotFound
	}
	return nil
}

func (r *BatchRepo) scanOne(row pgx.Row) (*entity.Batch, error) {
	b, err := scanBatch(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return b, nil
}

func scanBatch(row pgx.Row) (*entity.Batch, error) {
	var b entity.Batch
	var code *string
	err := row.Scan(
		&b.ID, &b.ProductID, &code, &b.Quantity, &b.MRP, &b.CostPrice, &b.SellingPrice,
		&b.WholesaleEnabled, &b.WholesaleMinQty, &b.WholesalePrice,
		&b.ExpiresAt, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, pgx.ErrNoRows
		}
		return nil, fmt.Errorf("scan batch: %w", err)
	}
	if code != nil {
		b.Code = *code
	}
	return &b, nil
}

func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
