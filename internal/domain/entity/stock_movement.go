package entity

import "time"

// Tipos de movimiento de stock (ledger append-only).
const (
	MovementAdded         = "added"
	MovementSold          = "sold"
	MovementReturned      = "returned"
	MovementAdjustmentIn  = "adjustment_in"
	MovementAdjustmentOut = "adjustment_out"
)

// StockMovement es una fila del ledger de inventario: registra todo cambio de
// cantidad de un lote y su motivo. Nunca se actualiza ni se borra, solo se
// agrega. La suma con signo de los movimientos de un lote reconstruye su
// cantidad actual.
type StockMovement struct {
	ID        string
	ProductID string
	BatchID   string
	Type      string
	Quantity  int64 // siempre positiva; el signo lo da el tipo
	Note      string
	CreatedAt time.Time
}

// Sign devuelve +1 para movimientos que suman stock y -1 para los que restan.
func (m *StockMovement) Sign() int64 {
	switch m.Type {
	case MovementSold, MovementAdjustmentOut:
		return -1
	default:
		return 1
	}
}

// IsValidMovementType valida el tipo contra el conjunto cerrado del ledger.
func IsValidMovementType(t string) bool {
	switch t {
	case MovementAdded, MovementSold, MovementReturned, MovementAdjustmentIn, MovementAdjustmentOut:
		return true
	}
	return false
}
