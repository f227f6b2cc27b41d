package repository

import "github.com/jhoicas/pos-api/internal/domain/entity"

// BatchRepository define el puerto para consultar/actualizar lotes.
// Usado dentro de transacciones para garantizar consistencia: toda mutación de
// cantidad pasa por GetForUpdate + Update en la misma tx.
type BatchRepository interface {
	Create(batch *entity.Batch) error
	GetByID(id string) (*entity.Batch, error)
	// GetForUpdate bloquea la fila del lote (SELECT FOR UPDATE).
	GetForUpdate(id string) (*entity.Batch, error)
	// GetSingleForUpdate devuelve el único lote de un producto UNTRACKED con
	// bloqueo de fila; nil si el producto aún no tiene lote.
	GetSingleForUpdate(productID string) (*entity.Batch, error)
	Update(batch *entity.Batch) error
	ListByProduct(productID string) ([]*entity.Batch, error)
	// Delete elimina el lote; retorna domain.ErrConflict si algún SaleItem lo
	// referencia (nunca se borra en silencio).
	Delete(id string) error
}
