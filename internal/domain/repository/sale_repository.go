package repository

import (
	"time"

	"github.com/jhoicas/pos-api/internal/domain/entity"
)

// SaleRepository define el puerto de persistencia para ventas y sus ítems.
// Los snapshots del ítem son inmutables: el único campo mutable después del
// commit es ReturnedQuantity, vía UpdateItemReturned.
type SaleRepository interface {
	// Create persiste la cabecera y todos los ítems (misma transacción).
	Create(sale *entity.Sale) error
	GetByID(id string) (*entity.Sale, error)
	GetItemByID(itemID string) (*entity.SaleItem, error)
	// GetItemForUpdate bloquea la fila del ítem (SELECT FOR UPDATE).
	GetItemForUpdate(itemID string) (*entity.SaleItem, error)
	// UpdateItemReturned fija la cantidad devuelta acumulada del ítem.
	UpdateItemReturned(itemID string, returnedQuantity int64) error
	// CountItemsByBatch cuenta ítems de venta que referencian un lote
	// (bloqueo de borrado de lotes).
	CountItemsByBatch(batchID string) (int64, error)
	ListByDateRange(from, to time.Time, limit, offset int) ([]*entity.Sale, error)
}
