package catalog

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/pos-api/internal/application/dto"
	"github.com/jhoicas/pos-api/internal/domain"
	"github.com/jhoicas/pos-api/internal/domain/entity"
	"github.com/jhoicas/pos-api/internal/domain/repository"
)

// ProductUseCase administra el catálogo: alta y edición de productos con
// verificación de colisión de códigos de barras, y borrado de lotes bloqueado
// mientras exista algún ítem de venta que los referencie.
type ProductUseCase struct {
	productRepo repository.ProductRepository
	batchRepo   repository.BatchRepository
	saleRepo    repository.SaleRepository
}

// NewProductUseCase construye el caso de uso.
func NewProductUseCase(
	productRepo repository.ProductRepository,
	batchRepo repository.BatchRepository,
	saleRepo repository.SaleRepository,
) *ProductUseCase {
	return &ProductUseCase{productRepo: productRepo, batchRepo: batchRepo, saleRepo: saleRepo}
}

// Create valida y persiste un producto nuevo. Los códigos de barras se
// verifican contra el resto del catálogo antes de cualquier escritura.
func (uc *ProductUseCase) Create(ctx context.Context, in dto.CreateProductRequest) (*entity.Product, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, domain.ErrInvalidInput
	}
	mode := in.TrackingMode
	if mode == "" {
		mode = entity.TrackingUNTRACKED
	}
	if mode != entity.TrackingTRACKED && mode != entity.TrackingUNTRACKED {
		return nil, domain.ErrInvalidInput
	}
	barcodes, err := uc.normalizeBarcodes(in.Barcodes, "")
	if err != nil {
		return nil, err
	}

	now := time.Now()
	product := &entity.Product{
		ID:                uuid.New().String(),
		Name:              strings.TrimSpace(in.Name),
		CategoryPath:      strings.Trim(in.CategoryPath, "/"),
		Barcodes:          barcodes,
		TrackingMode:      mode,
		LowStockThreshold: in.LowStockThreshold,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if err := uc.productRepo.Create(product); err != nil {
		return nil, err
	}
	return product, nil
}

// Update edita nombre, categoría, códigos y umbral. El TrackingMode no se
// cambia después de creado: el ledger depende de él para decidir si el stock
// cae en un lote único o en lotes nuevos.
func (uc *ProductUseCase) Update(ctx context.Context, id string, in dto.UpdateProductRequest) (*entity.Product, error) {
	product, err := uc.productRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrProductNotFound
	}
	if strings.TrimSpace(in.Name) == "" {
		return nil, domain.ErrInvalidInput
	}
	barcodes, err := uc.normalizeBarcodes(in.Barcodes, product.ID)
	if err != nil {
		return nil, err
	}
	product.Name = strings.TrimSpace(in.Name)
	product.CategoryPath = strings.Trim(in.CategoryPath, "/")
	product.Barcodes = barcodes
	product.LowStockThreshold = in.LowStockThreshold
	product.UpdatedAt = time.Now()
	if err := uc.productRepo.Update(product); err != nil {
		return nil, err
	}
	return product, nil
}

// GetByID obtiene un producto.
func (uc *ProductUseCase) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	product, err := uc.productRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrProductNotFound
	}
	return product, nil
}

// GetByBarcode resuelve un producto por cualquiera de sus códigos de barras.
func (uc *ProductUseCase) GetByBarcode(ctx context.Context, code string) (*entity.Product, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, domain.ErrInvalidInput
	}
	product, err := uc.productRepo.GetByBarcode(code)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrProductNotFound
	}
	return product, nil
}

// List lista el catálogo paginado.
func (uc *ProductUseCase) List(ctx context.Context, page dto.PageRequest) ([]*entity.Product, error) {
	page.DefaultPage()
	return uc.productRepo.List(page.Limit, page.Offset)
}

// Batches lista los lotes de un producto.
func (uc *ProductUseCase) Batches(ctx context.Context, productID string) ([]*entity.Batch, error) {
	if productID == "" {
		return nil, domain.ErrInvalidInput
	}
	return uc.batchRepo.ListByProduct(productID)
}

// DeleteBatch elimina un lote solo si ninguna venta lo referencia; si hay
// ítems apuntando al lote falla con ErrConflict (nunca borrado silencioso).
func (uc *ProductUseCase) DeleteBatch(ctx context.Context, batchID string) error {
	if batchID == "" {
		return domain.ErrInvalidInput
	}
	refs, err := uc.saleRepo.CountItemsByBatch(batchID)
	if err != nil {
		return err
	}
	if refs > 0 {
		return domain.ErrConflict
	}
	return uc.batchRepo.Delete(batchID)
}

// normalizeBarcodes limpia duplicados y verifica que ningún código pertenezca
// ya a otro producto (ErrBarcodeConflict antes de cualquier mutación).
func (uc *ProductUseCase) normalizeBarcodes(codes []string, ownerID string) ([]string, error) {
	seen := make(map[string]bool, len(codes))
	out := make([]string, 0, len(codes))
	for _, raw := range codes {
		code := strings.TrimSpace(raw)
		if code == "" || seen[code] {
			continue
		}
		seen[code] = true
		owner, err := uc.productRepo.GetByBarcode(code)
		if err != nil {
			return nil, err
		}
		if owner != nil && owner.ID != ownerID {
			return nil, domain.ErrBarcodeConflict
		}
		out = append(out, code)
	}
	return out, nil
}
