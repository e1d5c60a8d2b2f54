package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/invorya/inventory-ledger/internal/application/dto"
	"github.com/invorya/inventory-ledger/internal/application/inventory"
)

// ReportHandler consultas de kardex y valoración (JSON o PDF).
type ReportHandler struct {
	kardex *inventory.KardexService
	pdf    inventory.ReportPDFGenerator
}

// NewReportHandler construye el handler.
func NewReportHandler(kardex *inventory.KardexService, pdf inventory.ReportPDFGenerator) *ReportHandler {
	return &ReportHandler{kardex: kardex, pdf: pdf}
}

// parseDate interpreta YYYY-MM-DD; vacío devuelve nil.
func parseDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// Kardex godoc
// @Summary      Kardex de un item en una bodega
// @Tags         reports
// @Security     Bearer
// @Produce      json
// @Param        item_id       query  string  true   "UUID del item"
// @Param        warehouse_id  query  string  true   "UUID de la bodega"
// @Param        from          query  string  false  "YYYY-MM-DD (saldo de apertura por replay)"
// @Param        to            query  string  false  "YYYY-MM-DD"
// @Param        format        query  string  false  "json (default) | pdf"
// @Success      200  {object}  inventory.KardexReport
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/inventory/kardex [get]
func (h *ReportHandler) Kardex(c *fiber.Ctx) error {
	from, err := parseDate(c.Query("from"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "from: formato esperado YYYY-MM-DD"})
	}
	to, err := parseDate(c.Query("to"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "to: formato esperado YYYY-MM-DD"})
	}

	report, err := h.kardex.Kardex(c.Context(), inventory.KardexFilter{
		ItemID:      c.Query("item_id"),
		WarehouseID: c.Query("warehouse_id"),
		From:        from,
		To:          to,
	})
	if err != nil {
		return respondError(c, err)
	}

	if c.Query("format") == "pdf" {
		bytes, err := h.pdf.KardexPDF(c.Context(), report)
		if err != nil {
			return respondError(c, err)
		}
		c.Set(fiber.HeaderContentType, "application/pdf")
		c.Set(fiber.HeaderContentDisposition, `attachment; filename="kardex.pdf"`)
		return c.Send(bytes)
	}
	return c.JSON(report)
}

// Valuation godoc
// @Summary      Valoración del inventario a costo promedio
// @Tags         reports
// @Security     Bearer
// @Produce      json
// @Param        format  query  string  false  "json (default) | pdf"
// @Success      200  {object}  inventory.ValuationReport
// @Router       /api/inventory/valuation [get]
func (h *ReportHandler) Valuation(c *fiber.Ctx) error {
	report, err := h.kardex.Valuation(c.Context())
	if err != nil {
		return respondError(c, err)
	}

	if c.Query("format") == "pdf" {
		bytes, err := h.pdf.ValuationPDF(c.Context(), report)
		if err != nil {
			return respondError(c, err)
		}
		c.Set(fiber.HeaderContentType, "application/pdf")
		c.Set(fiber.HeaderContentDisposition, `attachment; filename="valoracion.pdf"`)
		return c.Send(bytes)
	}
	return c.JSON(report)
}
