package sales

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/pos-api/internal/application/dto"
	"github.com/jhoicas/pos-api/internal/application/inventory"
	"github.com/jhoicas/pos-api/internal/domain"
	"github.com/jhoicas/pos-api/internal/domain/entity"
	"github.com/jhoicas/pos-api/internal/domain/pricing"
	"github.com/jhoicas/pos-api/internal/domain/repository"
)

// SaleProcessor confirma una venta multi-línea como unidad atómica: descuenta
// cada lote vía el ledger, resuelve el precio de cada línea y congela los
// snapshots en los ítems. Si cualquier línea falla no queda efecto visible
// alguno (ni descuento, ni venta, ni movimiento).
type SaleProcessor struct {
	txRunner SaleTxRunner
	ledger   *inventory.LedgerUseCase
	promos   PromotionSource
	saleRepo repository.SaleRepository
	cfg      Config
}

// NewSaleProcessor construye el procesador.
func NewSaleProcessor(
	txRunner SaleTxRunner,
	ledger *inventory.LedgerUseCase,
	promos PromotionSource,
	saleRepo repository.SaleRepository,
	cfg Config,
) *SaleProcessor {
	if cfg.RoundingMode == "" {
		cfg.RoundingMode = RoundHalfUp
	}
	return &SaleProcessor{
		txRunner: txRunner,
		ledger:   ledger,
		promos:   promos,
		saleRepo: saleRepo,
		cfg:      cfg,
	}
}

// ProcessSale ejecuta la venta en una sola transacción serializable:
//
//  1. Bloquea y descuenta cada lote (ErrInsufficientStock o ErrBatchNotFound
//     abortan toda la operación; dos ventas compitiendo por la última unidad
//     se serializan por el bloqueo de fila y la perdedora ve stock insuficiente).
//  2. Resuelve el precio unitario de cada línea con la cantidad comprada
//     (los umbrales mayorista/promo reflejan lo que realmente se lleva).
//  3. Congela sellingPrice/costPrice/MRP en el ítem.
//  4. subtotal = Σ(precio × cantidad); total = max(0, subtotal − descuentos),
//     clampeado antes del redondeo opcional.
//  5. Persiste cabecera e ítems junto con los efectos del ledger.
//
// No hay reintentos automáticos: el caller decide con qué entrada reintentar.
func (uc *SaleProcessor) ProcessSale(ctx context.Context, in dto.CreateSaleRequest) (*dto.SaleResponse, error) {
	if len(in.Lines) == 0 {
		return nil, domain.ErrInvalidInput
	}
	for _, line := range in.Lines {
		if line.BatchID == "" || line.Quantity <= 0 {
			return nil, domain.ErrInvalidInput
		}
	}
	if in.Discount.LessThan(decimal.Zero) || in.ExtraDiscount.LessThan(decimal.Zero) {
		return nil, domain.ErrInvalidInput
	}
	if in.ExtraDiscount.IsPositive() && !uc.cfg.ExtraDiscountEnabled {
		return nil, domain.ErrInvalidInput
	}

	now := time.Now()
	saleID := uuid.New().String()
	var sale *entity.Sale

	err := uc.txRunner.RunSale(ctx, func(
		batchRepo repository.BatchRepository,
		movRepo repository.StockMovementRepository,
		saleRepo repository.SaleRepository,
	) error {
		subtotal := decimal.Zero
		items := make([]*entity.SaleItem, 0, len(in.Lines))

		for _, line := range in.Lines {
			// Descuento atómico: bloquea la fila, verifica y resta. Cualquier
			// error aquí revierte las líneas ya procesadas en esta misma tx.
			batch, err := uc.ledger.DecrementInTx(batchRepo, movRepo, line.BatchID, line.Quantity, "venta "+saleID, now)
			if err != nil {
				return err
			}

			promos, err := uc.promos.ActiveForProduct(ctx, batch.ProductID, now)
			if err != nil {
				return err
			}
			tier := pricing.Resolve(batch, line.Quantity, promos, now)

			item := &entity.SaleItem{
				ID:           uuid.New().String(),
				SaleID:       saleID,
				ProductID:    batch.ProductID,
				BatchID:      batch.ID,
				Quantity:     line.Quantity,
				UnitPrice:    tier.UnitPrice,
				PriceTier:    tier.Kind,
				SellingPrice: batch.SellingPrice,
				CostPrice:    batch.CostPrice,
				MRP:          batch.MRP,
			}
			items = append(items, item)
			subtotal = subtotal.Add(item.LineTotal())
		}

		// Clamp antes de cualquier política de redondeo: nunca negativo.
		total := subtotal.Sub(in.Discount).Sub(in.ExtraDiscount)
		if total.LessThan(decimal.Zero) {
			total = decimal.Zero
		}
		total, roundOff := uc.cfg.roundTotal(total)

		sale = &entity.Sale{
			ID:            saleID,
			Subtotal:      subtotal,
			Discount:      in.Discount,
			ExtraDiscount: in.ExtraDiscount,
			RoundOff:      roundOff,
			TotalAmount:   total,
			CreatedAt:     now,
			Items:         items,
		}
		return saleRepo.Create(sale)
	})
	if err != nil {
		return nil, err
	}
	return saleToResponse(sale), nil
}

// GetSale lee una venta confirmada (recibos, reportes).
func (uc *SaleProcessor) GetSale(ctx context.Context, saleID string) (*dto.SaleResponse, error) {
	if saleID == "" {
		return nil, domain.ErrInvalidInput
	}
	sale, err := uc.saleRepo.GetByID(saleID)
	if err != nil {
		return nil, err
	}
	if sale == nil {
		return nil, domain.ErrSaleNotFound
	}
	return saleToResponse(sale), nil
}

func saleToResponse(sale *entity.Sale) *dto.SaleResponse {
	resp := &dto.SaleResponse{
		SaleID:        sale.ID,
		Subtotal:      sale.Subtotal,
		Discount:      sale.Discount,
		ExtraDiscount: sale.ExtraDiscount,
		RoundOff:      sale.RoundOff,
		TotalAmount:   sale.TotalAmount,
		CreatedAt:     sale.CreatedAt,
	}
	for _, item := range sale.Items {
		resp.Items = append(resp.Items, dto.SaleItemDTO{
			ID:               item.ID,
			ProductID:        item.ProductID,
			BatchID:          item.BatchID,
			Quantity:         item.Quantity,
			ReturnedQuantity: item.ReturnedQuantity,
			UnitPrice:        item.UnitPrice,
			PriceTier:        item.PriceTier,
			SellingPrice:     item.SellingPrice,
			MRP:              item.MRP,
			LineTotal:        item.LineTotal(),
		})
	}
	return resp
}
