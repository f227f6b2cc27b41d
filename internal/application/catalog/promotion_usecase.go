package catalog

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/pos-api/internal/application/dto"
	"github.com/jhoicas/pos-api/internal/domain"
	"github.com/jhoicas/pos-api/internal/domain/entity"
	"github.com/jhoicas/pos-api/internal/domain/repository"
)

// PromotionInvalidator permite invalidar entradas cacheadas de promociones
// tras una escritura (implementado por el cache Redis; Noop en tests).
type PromotionInvalidator interface {
	Invalidate(ctx context.Context, productIDs []string) error
}

// PromotionUseCase administra campañas promocionales. Las promociones son solo
// insumo de lectura del motor de precios; aquí vive su ciclo de escritura.
type PromotionUseCase struct {
	promoRepo   repository.PromotionRepository
	invalidator PromotionInvalidator
}

// NewPromotionUseCase construye el caso de uso.
func NewPromotionUseCase(promoRepo repository.PromotionRepository, invalidator PromotionInvalidator) *PromotionUseCase {
	return &PromotionUseCase{promoRepo: promoRepo, invalidator: invalidator}
}

// Create valida y persiste una campaña nueva.
func (uc *PromotionUseCase) Create(ctx context.Context, in dto.CreatePromotionRequest) (*entity.Promotion, error) {
	if err := validatePromotion(in.Name, in.StartDate, in.EndDate, in.Entries); err != nil {
		return nil, err
	}
	now := time.Now()
	promo := &entity.Promotion{
		ID:        uuid.New().String(),
		Name:      strings.TrimSpace(in.Name),
		StartDate: in.StartDate,
		EndDate:   in.EndDate,
		IsActive:  in.IsActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
	for _, e := range in.Entries {
		promo.Entries = append(promo.Entries, entity.PromotionEntry{ProductID: e.ProductID, PromoPrice: e.PromoPrice})
	}
	if err := uc.promoRepo.Create(promo); err != nil {
		return nil, err
	}
	uc.invalidateEntries(ctx, promo)
	return promo, nil
}

// Update reemplaza la definición de una campaña existente.
func (uc *PromotionUseCase) Update(ctx context.Context, id string, in dto.CreatePromotionRequest) (*entity.Promotion, error) {
	promo, err := uc.promoRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if promo == nil {
		return nil, domain.ErrNotFound
	}
	if err := validatePromotion(in.Name, in.StartDate, in.EndDate, in.Entries); err != nil {
		return nil, err
	}
	// Invalida también los productos que salen de la campaña
	uc.invalidateEntries(ctx, promo)

	promo.Name = strings.TrimSpace(in.Name)
	promo.StartDate = in.StartDate
	promo.EndDate = in.EndDate
	promo.IsActive = in.IsActive
	promo.Entries = promo.Entries[:0]
	for _, e := range in.Entries {
		promo.Entries = append(promo.Entries, entity.PromotionEntry{ProductID: e.ProductID, PromoPrice: e.PromoPrice})
	}
	promo.UpdatedAt = time.Now()
	if err := uc.promoRepo.Update(promo); err != nil {
		return nil, err
	}
	uc.invalidateEntries(ctx, promo)
	return promo, nil
}

// List lista campañas paginadas.
func (uc *PromotionUseCase) List(ctx context.Context, page dto.PageRequest) ([]*entity.Promotion, error) {
	page.DefaultPage()
	return uc.promoRepo.List(page.Limit, page.Offset)
}

func (uc *PromotionUseCase) invalidateEntries(ctx context.Context, promo *entity.Promotion) {
	if uc.invalidator == nil {
		return
	}
	ids := make([]string, 0, len(promo.Entries))
	for _, e := range promo.Entries {
		ids = append(ids, e.ProductID)
	}
	// La invalidación fallida no aborta la escritura: el TTL del cache acota la ventana
	_ = uc.invalidator.Invalidate(ctx, ids)
}

func validatePromotion(name string, start, end time.Time, entries []dto.PromotionEntryDTO) error {
	if strings.TrimSpace(name) == "" || len(entries) == 0 {
		return domain.ErrInvalidInput
	}
	if end.Before(start) {
		return domain.ErrInvalidInput
	}
	for _, e := range entries {
		if e.ProductID == "" || e.PromoPrice.LessThanOrEqual(decimal.Zero) {
			return domain.ErrInvalidInput
		}
	}
	return nil
}
