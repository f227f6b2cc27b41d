package sales

import (
	"context"
	"time"

	"github.com/jhoicas/pos-api/internal/application/dto"
	"github.com/jhoicas/pos-api/internal/application/inventory"
	"github.com/jhoicas/pos-api/internal/domain"
	"github.com/jhoicas/pos-api/internal/domain/entity"
	"github.com/jhoicas/pos-api/internal/domain/repository"
)

// ReturnProcessor revierte cantidades de ítems ya vendidos contra el ledger,
// acotado por lo pendiente de devolver de cada ítem. Refleja el contrato del
// procesador de ventas: todas las líneas solicitadas o ninguna.
type ReturnProcessor struct {
	txRunner SaleTxRunner
	ledger   *inventory.LedgerUseCase
	saleRepo repository.SaleRepository
}

// NewReturnProcessor construye el procesador.
func NewReturnProcessor(txRunner SaleTxRunner, ledger *inventory.LedgerUseCase, saleRepo repository.SaleRepository) *ReturnProcessor {
	return &ReturnProcessor{txRunner: txRunner, ledger: ledger, saleRepo: saleRepo}
}

// ProcessReturn procesa las líneas de devolución en una sola transacción.
// Por línea: remaining = quantity − returnedQuantity; pedir más que remaining
// falla con ErrOverReturn y revierte todo lo hecho en la llamada. En éxito,
// returnedQuantity crece monotónicamente (no hay des-devolución), el lote de
// origen recupera la cantidad y queda un movimiento `returned` por línea.
// Se puede devolver en partes hasta agotar la cantidad vendida.
func (uc *ReturnProcessor) ProcessReturn(ctx context.Context, saleID string, in dto.ReturnSaleRequest) (*dto.ReturnResponse, error) {
	if saleID == "" || len(in.Lines) == 0 {
		return nil, domain.ErrInvalidInput
	}
	for _, line := range in.Lines {
		if line.SaleItemID == "" || line.Quantity <= 0 {
			return nil, domain.ErrInvalidInput
		}
	}

	sale, err := uc.saleRepo.GetByID(saleID)
	if err != nil {
		return nil, err
	}
	if sale == nil {
		return nil, domain.ErrSaleNotFound
	}

	now := time.Now()
	result := &dto.ReturnResponse{SaleID: saleID}

	err = uc.txRunner.RunSale(ctx, func(
		batchRepo repository.BatchRepository,
		movRepo repository.StockMovementRepository,
		saleRepo repository.SaleRepository,
	) error {
		for _, line := range in.Lines {
			item, err := saleRepo.GetItemForUpdate(line.SaleItemID)
			if err != nil {
				return err
			}
			if item == nil || item.SaleID != saleID {
				return domain.ErrSaleItemNotFound
			}
			remaining := item.RemainingReturnable()
			if line.Quantity > remaining {
				return domain.ErrOverReturn
			}
			newReturned := item.ReturnedQuantity + line.Quantity
			if err := saleRepo.UpdateItemReturned(item.ID, newReturned); err != nil {
				return err
			}
			// El lote de origen recupera exactamente la cantidad devuelta.
			if err := uc.ledger.IncrementInTx(
				batchRepo, movRepo,
				item.BatchID, line.Quantity,
				entity.MovementReturned, "devolución venta "+saleID, now,
			); err != nil {
				return err
			}
			result.Lines = append(result.Lines, dto.ReturnLineResult{
				SaleItemID:       item.ID,
				Returned:         line.Quantity,
				ReturnedQuantity: newReturned,
				Remaining:        item.Quantity - newReturned,
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
