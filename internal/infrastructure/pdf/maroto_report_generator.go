// Package pdf implementa la representación imprimible de los reportes de
// inventario (kardex y valoración) usando Maroto v2.
//
// Layout de la página A4 (kardex):
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Kardex item/bodega  │  Rango de fechas             │
//	│  ─────────────────────────────────────────────────────────  │
//	│  Saldo de apertura                                          │
//	│  TABLA: Fecha | Tipo | Ref | Entrada | Salida | Saldo | ... │
//	│  ─────────────────────────────────────────────────────────  │
//	│  FOOTER: saldo final                                        │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/core/entity"
	"github.com/johnfercher/maroto/v2/pkg/props"

	"github.com/invorya/inventory-ledger/internal/application/inventory"
)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
)

// ── Generator ─────────────────────────────────────────────────────────────────

// MarotoReportGenerator implementa inventory.ReportPDFGenerator usando Maroto v2.
type MarotoReportGenerator struct{}

// NewMarotoReportGenerator construye el generador.
func NewMarotoReportGenerator() *MarotoReportGenerator { return &MarotoReportGenerator{} }

var _ inventory.ReportPDFGenerator = (*MarotoReportGenerator)(nil)

// KardexPDF genera el PDF del kardex y devuelve sus bytes.
func (g *MarotoReportGenerator) KardexPDF(_ context.Context, report *inventory.KardexReport) ([]byte, error) {
	m := maroto.New(reportConfig("Kardex de inventario"))

	m.AddRows(kardexHeaderRow(report))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(openingRow(report))
	m.AddRows(kardexTableHeaderRow())
	for _, r := range kardexDetailRows(report) {
		m.AddRows(r)
	}
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(kardexFooterRow(report))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar kardex: %w", err)
	}
	return doc.GetBytes(), nil
}

// ValuationPDF genera el PDF de la valoración del inventario.
func (g *MarotoReportGenerator) ValuationPDF(_ context.Context, report *inventory.ValuationReport) ([]byte, error) {
	m := maroto.New(reportConfig("Valoración de inventario"))

	m.AddRows(row.New(12).Add(col.New(12).Add(
		text.New("VALORACIÓN DE INVENTARIO A COSTO PROMEDIO", props.Text{
			Style: fontstyle.Bold, Size: 12, Color: colorPrimary, Top: 2,
		}),
	)))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))

	for _, wv := range report.Warehouses {
		m.AddRows(row.New(8).Add(col.New(12).Add(
			text.New("Bodega: "+wv.WarehouseID, props.Text{
				Style: fontstyle.Bold, Size: 9, Color: colorPrimary, Top: 2,
			}),
		)))
		m.AddRows(valuationTableHeaderRow())
		for _, e := range wv.Entries {
			m.AddRows(row.New(6).Add(
				col.New(5).Add(text.New(e.ItemID, props.Text{Size: 8, Top: 1, Left: 1})),
				col.New(2).Add(text.New(e.QuantityOnHand.StringFixed(4), props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
				col.New(2).Add(text.New(e.MovingAvgCost.StringFixed(4), props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
				col.New(3).Add(text.New(e.Value.StringFixed(4), props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
			))
		}
		m.AddRows(row.New(7).Add(
			col.New(9).Add(text.New("Total bodega:", props.Text{
				Style: fontstyle.Bold, Size: 9, Align: align.Right, Top: 1, Right: 2,
			})),
			col.New(3).Add(text.New(wv.Total.StringFixed(4), props.Text{
				Style: fontstyle.Bold, Size: 9, Align: align.Right, Top: 1, Right: 1,
			})),
		))
	}

	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(row.New(9).Add(
		col.New(9).Add(text.New("TOTAL INVENTARIO:", props.Text{
			Style: fontstyle.Bold, Size: 11, Align: align.Right,
			Color: colorPrimary, Top: 2, Right: 2,
		})),
		col.New(3).Add(text.New(report.Total.StringFixed(4), props.Text{
			Style: fontstyle.Bold, Size: 11, Align: align.Right,
			Color: colorPrimary, Top: 2, Right: 1,
		})),
	))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar valoración: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

func reportConfig(title string) *entity.Config {
	return config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle(title, true).
		Build()
}

// kardexHeaderRow: identificación del par (izq) y rango de fechas (der).
func kardexHeaderRow(report *inventory.KardexReport) core.Row {
	rango := "Histórico completo"
	if report.From != nil || report.To != nil {
		from, to := "inicio", "hoy"
		if report.From != nil {
			from = report.From.Format("02/01/2006")
		}
		if report.To != nil {
			to = report.To.Format("02/01/2006")
		}
		rango = from + " — " + to
	}

	return row.New(16).Add(
		col.New(7).Add(
			text.New("KARDEX DE INVENTARIO", props.Text{
				Style: fontstyle.Bold, Size: 12, Color: colorPrimary, Top: 1,
			}),
			text.New(fmt.Sprintf("Item: %s   |   Bodega: %s", report.ItemID, report.WarehouseID), props.Text{
				Size: 8, Top: 9, Color: colorGray,
			}),
		),
		col.New(5).Add(
			text.New("Rango: "+rango, props.Text{
				Size: 8, Align: align.Right, Top: 2, Color: colorGray,
			}),
		),
	)
}

// openingRow: saldo de apertura (replay de líneas anteriores al rango).
func openingRow(report *inventory.KardexReport) core.Row {
	return row.New(7).Add(col.New(12).Add(
		text.New("Saldo de apertura: "+report.OpeningBalance.StringFixed(4), props.Text{
			Style: fontstyle.Bold, Size: 9, Top: 1,
		}),
	))
}

func kardexTableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a,
			Color: colorPrimary, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("Fecha", 2, align.Left),
		h("Tipo", 1, align.Center),
		h("Referencia", 3, align.Left),
		h("Entrada", 1, align.Right),
		h("Salida", 1, align.Right),
		h("Saldo", 1, align.Right),
		h("Costo", 1, align.Right),
		h("Valor", 2, align.Right),
	)
}

// valuationTableHeaderRow: cabecera de la tabla de valoración por bodega.
func valuationTableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a,
			Color: colorPrimary, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("Item", 5, align.Left),
		h("Cantidad", 2, align.Right),
		h("Costo prom.", 2, align.Right),
		h("Valor", 3, align.Right),
	)
}

// kardexDetailRows: una fila por línea confirmada, con saldo corrido.
func kardexDetailRows(report *inventory.KardexReport) []core.Row {
	result := make([]core.Row, 0, len(report.Rows))
	for _, r := range report.Rows {
		entrada, salida := "", ""
		if !r.QtyIn.IsZero() {
			entrada = r.QtyIn.StringFixed(4)
		}
		if !r.QtyOut.IsZero() {
			salida = r.QtyOut.StringFixed(4)
		}
		cell := func(s string, size int, a align.Type) core.Col {
			return col.New(size).Add(text.New(s, props.Text{
				Size: 7.5, Align: a, Top: 1, Left: 1, Right: 1,
			}))
		}
		result = append(result, row.New(6).Add(
			cell(r.Date.Format("02/01/2006"), 2, align.Left),
			cell(string(r.Type), 1, align.Center),
			cell(r.Reference, 3, align.Left),
			cell(entrada, 1, align.Right),
			cell(salida, 1, align.Right),
			cell(r.Balance.StringFixed(4), 1, align.Right),
			cell(r.UnitCost.StringFixed(4), 1, align.Right),
			cell(r.Value.StringFixed(4), 2, align.Right),
		))
	}
	return result
}

// kardexFooterRow: saldo final del rango consultado.
func kardexFooterRow(report *inventory.KardexReport) core.Row {
	final := report.OpeningBalance
	if n := len(report.Rows); n > 0 {
		final = report.Rows[n-1].Balance
	}
	return row.New(9).Add(
		col.New(9).Add(text.New("SALDO FINAL:", props.Text{
			Style: fontstyle.Bold, Size: 10, Align: align.Right,
			Color: colorPrimary, Top: 2, Right: 2,
		})),
		col.New(3).Add(text.New(final.StringFixed(4), props.Text{
			Style: fontstyle.Bold, Size: 10, Align: align.Right,
			Color: colorPrimary, Top: 2, Right: 1,
		})),
	)
}
