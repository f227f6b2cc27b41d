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

var _ repository.PromotionRepository = (*PromotionRepo)(nil)

// PromotionRepo implementación de PromotionRepository sobre PostgreSQL
// (usable con pool o tx).
type PromotionRepo struct {
	q Querier
}

// NewPromotionRepository construye el adaptador de promociones. Pasar pool o tx (Querier).
func NewPromotionRepository(q Querier) *PromotionRepo {
	return &PromotionRepo{q: q}
}

// Create persiste una promoción con sus entradas.
func (r *PromotionRepo) Create(promotion *entity.Promotion) error {
	ctx := context.Background()
	query := `
		INSERT INTO promotions (id, name, start_date, end_date, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.q.Exec(ctx, query,
		promotion.ID, promotion.Name, promotion.StartDate, promotion.EndDate,
		promotion.IsActive, promotion.CreatedAt, promotion.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert promotion: %w", err)
	}
	return r.replaceEntries(ctx, promotion)
}

// GetByID obtiene una promoción con sus entradas.
func (r *PromotionRepo) GetByID(id string) (*entity.Promotion, error) {
	ctx := context.Background()
	query := `
		SELECT id, name, start_date, end_date, is_active, created_at, updated_at
		FROM promotions WHERE id = $1`
	var p entity.Promotion
	err := r.q.QueryRow(ctx, query, id).Scan(
		&p.ID, &p.Name, &p.StartDate, &p.EndDate, &p.IsActive, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get promotion: %w", err)
	}
	if err := r.loadEntries(ctx, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// Update reemplaza cabecera y entradas de la promoción.
func (r *PromotionRepo) Update(promotion *entity.Promotion) error {
	ctx := context.Background()
	query := `
		UPDATE promotions
		SET name = $2, start_date = $3, end_date = $4, is_active = $5, updated_at = $6
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, query,
		promotion.ID, promotion.Name, promotion.StartDate, promotion.EndDate,
		promotion.IsActive, promotion.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update promotion: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return r.replaceEntries(ctx, promotion)
}

// List lista promociones, más recientes primero.
func (r *PromotionRepo) List(limit, offset int) ([]*entity.Promotion, error) {
	ctx := context.Background()
	query := `
		SELECT id, name, start_date, end_date, is_active, created_at, updated_at
		FROM promotions ORDER BY start_date DESC LIMIT $1 OFFSET $2`
	rows, err := r.q.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list promotions: %w", err)
	}
	defer rows.Close()
	var list []*entity.Promotion
	for rows.Next() {
		var p entity.Promotion
		if err := rows.Scan(&p.ID, &p.Name, &p.StartDate, &p.EndDate, &p.IsActive, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan promotion: %w", err)
		}
		list = append(list, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for _, p := range list {
		if err := r.loadEntries(ctx, p); err != nil {
			return nil, err
		}
	}
	return list, nil
}

// ActiveForProduct devuelve las promociones vigentes en now que incluyen al producto.
func (r *PromotionRepo) ActiveForProduct(productID string, now time.Time) ([]*entity.Promotion, error) {
	ctx := context.Background()
	query := `
		SELECT p.id, p.name, p.start_date, p.end_date, p.is_active, p.created_at, p.updated_at
		FROM promotions p
		JOIN promotion_entries e ON e.promotion_id = p.id
		WHERE e.product_id = $1 AND p.is_active AND p.start_date <= $2 AND p.end_date >= $2`
	rows, err := r.q.Query(ctx, query, productID, now)
	if err != nil {
		return nil, fmt.Errorf("active promotions: %w", err)
	}
	defer rows.Close()
	var list []*entity.Promotion
	for rows.Next() {
		var p entity.Promotion
		if err := rows.Scan(&p.ID, &p.Name, &p.StartDate, &p.EndDate, &p.IsActive, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan promotion: %w", err)
		}
		list = append(list, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for _, p := range list {
		if err := r.loadEntries(ctx, p); err != nil {
			return nil, err
		}
	}
	return list, nil
}

func (r *PromotionRepo) loadEntries(ctx context.Context, p *entity.Promotion) error {
	rows, err := r.q.Query(ctx,
		`SELECT product_id, promo_price FROM promotion_entries WHERE promotion_id = $1`, p.ID)
	if err != nil {
		return fmt.Errorf("load promotion entries: %w", err)
	}
	defer rows.Close()
	p.Entries = nil
	for rows.Next() {
		var e entity.PromotionEntry
		if err := rows.Scan(&e.ProductID, &e.PromoPrice); err != nil {
			return fmt.Errorf("scan promotion entry: %w", err)
		}
		p.Entries = append(p.Entries, e)
	}
	return rows.Err()
}

func (r *PromotionRepo) replaceEntries(ctx context.Context, p *entity.Promotion) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM promotion_entries WHERE promotion_id = $1`, p.ID); err != nil {
		return fmt.Errorf("clear promotion entries: %w", err)
	}
	for _, e := range p.Entries {
		_, err := r.q.Exec(ctx,
			`INSERT INTO promotion_entries (promotion_id, product_id, promo_price) VALUES ($1, $2, $3)`,
			p.ID, e.ProductID, e.PromoPrice)
		if err != nil {
			return fmt.Errorf("insert promotion entry: %w", err)
		}
	}
	return nil
}
