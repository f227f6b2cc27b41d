package dto

import "github.com/shopspring/decimal"

// ProfitReportRequest parámetros para GET /api/reports/profit.
type ProfitReportRequest struct {
	StartDate string `query:"start_date"` // YYYY-MM-DD
	EndDate   string `query:"end_date"`
}

// ItemProfitDTO utilidad por ítem vendido, calculada solo con los snapshots
// congelados de la venta (nunca con precios vivos del lote).
type ItemProfitDTO struct {
	SaleID       string          `json:"sale_id"`
	ProductID    string          `json:"product_id"`
	QuantityKept int64           `json:"quantity_kept"` // vendida menos devuelta
	UnitPrice    decimal.Decimal `json:"unit_price"`
	CostPrice    decimal.Decimal `json:"cost_price"`
	Profit       decimal.Decimal `json:"profit"`
}

// ProfitReportDTO reporte de ventas y márgenes en una ventana de fechas.
type ProfitReportDTO struct {
	Period      PeriodDTO       `json:"period"`
	GrossSales  decimal.Decimal `json:"gross_sales"`
	TotalProfit decimal.Decimal `json:"total_profit"`
	MarginPct   decimal.Decimal `json:"margin_pct"`
	SalesCount  int             `json:"sales_count"`
	Items       []ItemProfitDTO `json:"items"`
}

// CashFlowReportDTO vista de flujo de caja: ventas menos gastos y compras.
// StockValue es la valoración del inventario actual a costo; es informativo
// y no entra en NetFlow.
type CashFlowReportDTO struct {
	Period     PeriodDTO       `json:"period"`
	GrossSales decimal.Decimal `json:"gross_sales"`
	Expenses   decimal.Decimal `json:"expenses"`
	Purchases  decimal.Decimal `json:"purchases"`
	NetFlow    decimal.Decimal `json:"net_flow"`
	StockValue decimal.Decimal `json:"stock_value"`
}

// PeriodDTO ventana de fechas del reporte.
type PeriodDTO struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}
