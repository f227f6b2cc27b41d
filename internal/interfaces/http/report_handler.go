package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/pos-api/internal/application/dto"
	"github.com/jhoicas/pos-api/internal/application/reports"
	"github.com/jhoicas/pos-api/internal/domain"
)

// ReportHandler maneja las peticiones HTTP de reportes.
type ReportHandler struct {
	uc *reports.Aggregator
}

// NewReportHandler construye el handler.
func NewReportHandler(uc *reports.Aggregator) *ReportHandler {
	return &ReportHandler{uc: uc}
}

// Profit godoc
// @Summary      Reporte de utilidad
// @Description  Ventas brutas y utilidad por ítem en la ventana de fechas,
//
//	calculado solo con los snapshots congelados de cada venta.
//
// @Tags         reports
// @Produce      json
// @Param        start_date  query  string  false  "YYYY-MM-DD (default: hace 30 días)"
// @Param        end_date    query  string  false  "YYYY-MM-DD (default: hoy)"
// @Success      200  {object}  dto.ProfitReportDTO
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/reports/profit [get]
func (h *ReportHandler) Profit(c *fiber.Ctx) error {
	var in dto.ProfitReportRequest
	if err := c.QueryParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "parámetros inválidos"})
	}
	out, err := h.uc.ProfitReport(c.Context(), in)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(out)
}

// CashFlow godoc
// @Summary      Reporte de flujo de caja
// @Description  Ventas menos gastos y compras registrados en la ventana.
// @Tags         reports
// @Produce      json
// @Param        start_date  query  string  false  "YYYY-MM-DD (default: hace 30 días)"
// @Param        end_date    query  string  false  "YYYY-MM-DD (default: hoy)"
// @Success      200  {object}  dto.CashFlowReportDTO
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/reports/cashflow [get]
func (h *ReportHandler) CashFlow(c *fiber.Ctx) error {
	var in dto.ProfitReportRequest
	if err := c.QueryParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "parámetros inválidos"})
	}
	out, err := h.uc.CashFlowReport(c.Context(), in)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(out)
}

// LowStock godoc
// @Summary      Productos con stock bajo
// @Description  Productos cuyo stock total está por debajo de su umbral de alerta.
// @Tags         reports
// @Produce      json
// @Success      200  {array}  dto.LowStockDTO
// @Router       /api/reports/low-stock [get]
func (h *ReportHandler) LowStock(c *fiber.Ctx) error {
	list, err := h.uc.LowStock(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(fiber.Map{"total": len(list), "products": list})
}
