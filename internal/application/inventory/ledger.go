package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/pos-api/internal/application/dto"
	"github.com/jhoicas/pos-api/internal/domain"
	"github.com/jhoicas/pos-api/internal/domain/entity"
	"github.com/jhoicas/pos-api/internal/domain/repository"
)

// LedgerUseCase es el único escritor de Batch.Quantity. Toda mutación se
// ejecuta con bloqueo de fila (SELECT FOR UPDATE) dentro de una transacción y
// queda emparejada con exactamente una fila en stock_movements.
type LedgerUseCase struct {
	txRunner    TxRunner
	productRepo repository.ProductRepository
	movRepo     repository.StockMovementRepository
}

// NewLedgerUseCase construye el caso de uso.
func NewLedgerUseCase(
	txRunner TxRunner,
	productRepo repository.ProductRepository,
	movRepo repository.StockMovementRepository,
) *LedgerUseCase {
	return &LedgerUseCase{
		txRunner:    txRunner,
		productRepo: productRepo,
		movRepo:     movRepo,
	}
}

// AddStock registra una entrada de mercancía. Si el producto es UNTRACKED y ya
// tiene lote, suma la cantidad a ese lote único; en caso contrario crea un lote
// nuevo (código autogenerado si el producto es TRACKED y no se indicó).
// Valida costo <= venta <= MRP antes de tocar stock. Registra `added`.
func (uc *LedgerUseCase) AddStock(ctx context.Context, in dto.AddStockRequest) (*entity.Batch, error) {
	if in.ProductID == "" || in.Quantity <= 0 {
		return nil, domain.ErrInvalidInput
	}
	product, err := uc.productRepo.GetByID(in.ProductID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrProductNotFound
	}

	now := time.Now()
	candidate := &entity.Batch{
		ID:           uuid.New().String(),
		ProductID:    product.ID,
		Code:         in.BatchCode,
		Quantity:     in.Quantity,
		MRP:          in.MRP,
		CostPrice:    in.CostPrice,
		SellingPrice: in.SellingPrice,
		ExpiresAt:    in.ExpiresAt,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if in.WholesaleEnabled {
		if in.WholesalePrice == nil {
			return nil, domain.ErrInvalidPricing
		}
		candidate.WholesaleEnabled = true
		candidate.WholesaleMinQty = in.WholesaleMinQty
		candidate.WholesalePrice = *in.WholesalePrice
	}
	if candidate.Code == "" && product.IsTracked() {
		candidate.Code = generateBatchCode(now)
	}
	if err := candidate.ValidatePricing(); err != nil {
		return nil, err
	}

	var result *entity.Batch
	err = uc.txRunner.Run(ctx, func(
		batchRepo repository.BatchRepository,
		movRepo repository.StockMovementRepository,
	) error {
		var batch *entity.Batch
		if !product.IsTracked() {
			// UNTRACKED: todo el stock cae en el lote único existente
			existing, err := batchRepo.GetSingleForUpdate(product.ID)
			if err != nil {
				return err
			}
			if existing != nil {
				existing.Quantity += in.Quantity
				existing.MRP = in.MRP
				existing.CostPrice = in.CostPrice
				existing.SellingPrice = in.SellingPrice
				existing.UpdatedAt = now
				if err := existing.ValidatePricing(); err != nil {
					return err
				}
				if err := batchRepo.Update(existing); err != nil {
					return err
				}
				batch = existing
			}
		}
		if batch == nil {
			if err := batchRepo.Create(candidate); err != nil {
				return err
			}
			batch = candidate
		}
		result = batch
		return movRepo.Create(&entity.StockMovement{
			ID:        uuid.New().String(),
			ProductID: product.ID,
			BatchID:   batch.ID,
			Type:      entity.MovementAdded,
			Quantity:  in.Quantity,
			Note:      in.Note,
			CreatedAt: now,
		})
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Decrement descuenta stock de un lote en su propia transacción. La
// verificación y la resta son indivisibles: la fila queda bloqueada desde el
// SELECT FOR UPDATE hasta el commit. Registra `sold`.
func (uc *LedgerUseCase) Decrement(ctx context.Context, batchID string, qty int64, note string) error {
	if batchID == "" || qty <= 0 {
		return domain.ErrInvalidInput
	}
	return uc.txRunner.Run(ctx, func(
		batchRepo repository.BatchRepository,
		movRepo repository.StockMovementRepository,
	) error {
		_, err := uc.DecrementInTx(batchRepo, movRepo, batchID, qty, note, time.Now())
		return err
	})
}

// DecrementInTx ejecuta el descuento usando los repositorios del caller (misma
// transacción) y devuelve el lote ya descontado. Lo usa el procesador de
// ventas para que todas las líneas y la venta compartan una sola tx. Falla con
// ErrInsufficientStock si qty excede el stock del lote al momento del bloqueo.
func (uc *LedgerUseCase) DecrementInTx(
	batchRepo repository.BatchRepository,
	movRepo repository.StockMovementRepository,
	batchID string, qty int64, note string, now time.Time,
) (*entity.Batch, error) {
	batch, err := batchRepo.GetForUpdate(batchID)
	if err != nil {
		return nil, err
	}
	if batch == nil {
		return nil, domain.ErrBatchNotFound
	}
	if qty > batch.Quantity {
		return nil, domain.ErrInsufficientStock
	}
	batch.Quantity -= qty
	batch.UpdatedAt = now
	if err := batchRepo.Update(batch); err != nil {
		return nil, err
	}
	if err := movRepo.Create(&entity.StockMovement{
		ID:        uuid.New().String(),
		ProductID: batch.ProductID,
		BatchID:   batch.ID,
		Type:      entity.MovementSold,
		Quantity:  qty,
		Note:      note,
		CreatedAt: now,
	}); err != nil {
		return nil, err
	}
	return batch, nil
}

// Increment repone stock a un lote (devolución o ajuste positivo) en su propia
// transacción. reason debe ser `returned` o `adjustment_in`.
func (uc *LedgerUseCase) Increment(ctx context.Context, batchID string, qty int64, reason, note string) error {
	if batchID == "" || qty <= 0 {
		return domain.ErrInvalidInput
	}
	if reason != entity.MovementReturned && reason != entity.MovementAdjustmentIn {
		return domain.ErrInvalidInput
	}
	return uc.txRunner.Run(ctx, func(
		batchRepo repository.BatchRepository,
		movRepo repository.StockMovementRepository,
	) error {
		return uc.IncrementInTx(batchRepo, movRepo, batchID, qty, reason, note, time.Now())
	})
}

// IncrementInTx repone stock usando los repositorios del caller (misma
// transacción). Lo usa el procesador de devoluciones.
func (uc *LedgerUseCase) IncrementInTx(
	batchRepo repository.BatchRepository,
	movRepo repository.StockMovementRepository,
	batchID string, qty int64, reason, note string, now time.Time,
) error {
	batch, err := batchRepo.GetForUpdate(batchID)
	if err != nil {
		return err
	}
	if batch == nil {
		return domain.ErrBatchNotFound
	}
	batch.Quantity += qty
	batch.UpdatedAt = now
	if err := batchRepo.Update(batch); err != nil {
		return err
	}
	return movRepo.Create(&entity.StockMovement{
		ID:        uuid.New().String(),
		ProductID: batch.ProductID,
		BatchID:   batch.ID,
		Type:      reason,
		Quantity:  qty,
		Note:      note,
		CreatedAt: now,
	})
}

// Adjust aplica una corrección manual con signo: delta positivo registra
// `adjustment_in`, negativo `adjustment_out`. Un ajuste negativo nunca puede
// dejar el lote por debajo de cero.
func (uc *LedgerUseCase) Adjust(ctx context.Context, batchID string, delta int64, note string) error {
	if batchID == "" || delta == 0 {
		return domain.ErrInvalidInput
	}
	return uc.txRunner.Run(ctx, func(
		batchRepo repository.BatchRepository,
		movRepo repository.StockMovementRepository,
	) error {
		now := time.Now()
		batch, err := batchRepo.GetForUpdate(batchID)
		if err != nil {
			return err
		}
		if batch == nil {
			return domain.ErrBatchNotFound
		}
		movType := entity.MovementAdjustmentIn
		qty := delta
		if delta < 0 {
			movType = entity.MovementAdjustmentOut
			qty = -delta
			if qty > batch.Quantity {
				return domain.ErrInsufficientStock
			}
		}
		batch.Quantity += delta
		batch.UpdatedAt = now
		if err := batchRepo.Update(batch); err != nil {
			return err
		}
		return movRepo.Create(&entity.StockMovement{
			ID:        uuid.New().String(),
			ProductID: batch.ProductID,
			BatchID:   batch.ID,
			Type:      movType,
			Quantity:  qty,
			Note:      note,
			CreatedAt: now,
		})
	})
}

// Movements lista el ledger de un producto en una ventana de fechas.
func (uc *LedgerUseCase) Movements(ctx context.Context, productID string, from, to *time.Time, page dto.PageRequest) ([]dto.StockMovementDTO, error) {
	page.DefaultPage()
	var (
		rows []*entity.StockMovement
		err  error
	)
	if productID != "" {
		rows, err = uc.movRepo.ListByProduct(productID, from, to, page.Limit, page.Offset)
	} else {
		start, end := time.Time{}, time.Now()
		if from != nil {
			start = *from
		}
		if to != nil {
			end = *to
		}
		rows, err = uc.movRepo.ListByDateRange(start, end, page.Limit, page.Offset)
	}
	if err != nil {
		return nil, fmt.Errorf("listar movimientos: %w", err)
	}
	out := make([]dto.StockMovementDTO, 0, len(rows))
	for _, m := range rows {
		out = append(out, dto.StockMovementDTO{
			ID:        m.ID,
			ProductID: m.ProductID,
			BatchID:   m.BatchID,
			Type:      m.Type,
			Quantity:  m.Quantity,
			Note:      m.Note,
			CreatedAt: m.CreatedAt,
		})
	}
	return out, nil
}

// generateBatchCode produce un código legible para lotes TRACKED sin código.
func generateBatchCode(now time.Time) string {
	return "B-" + now.Format("20060102-150405")
}
