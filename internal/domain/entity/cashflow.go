package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Expense es un gasto operativo registrado externamente; el agregador de
// reportes solo lo lee para la vista de flujo de caja.
type Expense struct {
	ID        string
	Concept   string
	Amount    decimal.Decimal
	Date      time.Time
	CreatedAt time.Time
}

// Purchase es una compra de mercancía registrada externamente (entrada de caja
// negativa). Igual que Expense, es solo lectura para reportes.
type Purchase struct {
	ID        string
	Supplier  string
	Amount    decimal.Decimal
	Date      time.Time
	CreatedAt time.Time
}
