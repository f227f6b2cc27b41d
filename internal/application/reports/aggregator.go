package reports

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/pos-api/internal/application/dto"
	"github.com/jhoicas/pos-api/internal/domain"
	"github.com/jhoicas/pos-api/internal/domain/repository"
)

var hundred = decimal.NewFromInt(100)

// Aggregator es el consumidor externo del núcleo: lee ventas, ítems y
// movimientos confirmados en una ventana de fechas y calcula ventas brutas,
// utilidad y margen. Solo reproduce los snapshots congelados de los ítems;
// jamás consulta precios vivos de lotes, de modo que los reportes históricos
// no se mueven cuando cambia el catálogo.
type Aggregator struct {
	saleRepo   repository.SaleRepository
	reportRepo repository.ReportRepository
}

// NewAggregator construye el agregador.
func NewAggregator(saleRepo repository.SaleRepository, reportRepo repository.ReportRepository) *Aggregator {
	return &Aggregator{saleRepo: saleRepo, reportRepo: reportRepo}
}

// ProfitReport calcula ventas brutas, utilidad por ítem
// (sellingPrice − costPrice) × (quantity − returnedQuantity) y margen del período.
func (uc *Aggregator) ProfitReport(ctx context.Context, in dto.ProfitReportRequest) (*dto.ProfitReportDTO, error) {
	start, end, err := parsePeriod(in.StartDate, in.EndDate)
	if err != nil {
		return nil, err
	}
	sales, err := uc.saleRepo.ListByDateRange(start, end, 10000, 0)
	if err != nil {
		return nil, fmt.Errorf("reportes: ventas del período: %w", err)
	}

	report := &dto.ProfitReportDTO{
		Period: dto.PeriodDTO{
			StartDate: start.Format("2006-01-02"),
			EndDate:   end.Format("2006-01-02"),
		},
		GrossSales:  decimal.Zero,
		TotalProfit: decimal.Zero,
		SalesCount:  len(sales),
	}
	for _, sale := range sales {
		report.GrossSales = report.GrossSales.Add(sale.TotalAmount)
		for _, item := range sale.Items {
			kept := item.Quantity - item.ReturnedQuantity
			profit := item.Profit()
			report.TotalProfit = report.TotalProfit.Add(profit)
			report.Items = append(report.Items, dto.ItemProfitDTO{
				SaleID:       sale.ID,
				ProductID:    item.ProductID,
				QuantityKept: kept,
				UnitPrice:    item.UnitPrice,
				CostPrice:    item.CostPrice,
				Profit:       profit,
			})
		}
	}
	if report.GrossSales.IsPositive() {
		report.MarginPct = report.TotalProfit.Div(report.GrossSales).Mul(hundred).Round(2)
	}
	return report, nil
}

// CashFlowReport concilia las ventas del período contra gastos y compras
// registrados externamente, y anexa la valoración del inventario actual a costo.
func (uc *Aggregator) CashFlowReport(ctx context.Context, in dto.ProfitReportRequest) (*dto.CashFlowReportDTO, error) {
	start, end, err := parsePeriod(in.StartDate, in.EndDate)
	if err != nil {
		return nil, err
	}
	sales, err := uc.saleRepo.ListByDateRange(start, end, 10000, 0)
	if err != nil {
		return nil, fmt.Errorf("reportes: ventas del período: %w", err)
	}
	expenses, err := uc.reportRepo.ListExpenses(start, end)
	if err != nil {
		return nil, fmt.Errorf("reportes: gastos: %w", err)
	}
	purchases, err := uc.reportRepo.ListPurchases(start, end)
	if err != nil {
		return nil, fmt.Errorf("reportes: compras: %w", err)
	}
	stockValue, err := uc.reportRepo.TotalStockValue()
	if err != nil {
		return nil, fmt.Errorf("reportes: valor de inventario: %w", err)
	}

	report := &dto.CashFlowReportDTO{
		Period: dto.PeriodDTO{
			StartDate: start.Format("2006-01-02"),
			EndDate:   end.Format("2006-01-02"),
		},
		GrossSales: decimal.Zero,
		Expenses:   decimal.Zero,
		Purchases:  decimal.Zero,
	}
	for _, sale := range sales {
		report.GrossSales = report.GrossSales.Add(sale.TotalAmount)
	}
	for _, e := range expenses {
		report.Expenses = report.Expenses.Add(e.Amount)
	}
	for _, p := range purchases {
		report.Purchases = report.Purchases.Add(p.Amount)
	}
	report.NetFlow = report.GrossSales.Sub(report.Expenses).Sub(report.Purchases)
	report.StockValue = stockValue
	return report, nil
}

// LowStock lista los productos por debajo de su umbral de alerta.
func (uc *Aggregator) LowStock(ctx context.Context) ([]dto.LowStockDTO, error) {
	rows, err := uc.reportRepo.ListLowStock()
	if err != nil {
		return nil, fmt.Errorf("reportes: stock bajo: %w", err)
	}
	out := make([]dto.LowStockDTO, 0, len(rows))
	for _, r := range rows {
		out = append(out, dto.LowStockDTO{
			ProductID:    r.ProductID,
			Name:         r.Name,
			CurrentStock: r.CurrentStock,
			Threshold:    r.Threshold,
		})
	}
	return out, nil
}

// parsePeriod interpreta fechas YYYY-MM-DD; vacías = últimos 30 días.
func parsePeriod(startStr, endStr string) (time.Time, time.Time, error) {
	end := time.Now()
	start := end.AddDate(0, 0, -30)
	if startStr != "" {
		parsed, err := time.Parse("2006-01-02", startStr)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("start_date inválida: %w", domain.ErrInvalidInput)
		}
		start = parsed
	}
	if endStr != "" {
		parsed, err := time.Parse("2006-01-02", endStr)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("end_date inválida: %w", domain.ErrInvalidInput)
		}
		// fin de día inclusivo
		end = parsed.Add(24*time.Hour - time.Nanosecond)
	}
	return start, end, nil
}
