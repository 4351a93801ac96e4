package infra

// pdf.go — closure report generation using go-pdf/fpdf.
// Renders an A4 end-of-day report with:
//   - Register / store header and closure timestamp
//   - Reconciliation block (opening, income, expense, expected vs counted)
//   - Per-method breakdown table
//   - Merged movement listing
//
// The output file is saved to storagePath/cierre_{id}.pdf.

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/shopspring/decimal"
)

// CierreReporte carries everything the PDF needs; the worker assembles it so
// this file stays free of repository and DTO imports.
type CierreReporte struct {
	CierreID      string
	Caja          string
	TiendaID      string
	Fecha         time.Time
	Empleado      string
	Moneda        string
	MontoApertura decimal.Decimal
	TotalIngresos decimal.Decimal
	TotalEgresos  decimal.Decimal
	Esperado      decimal.Decimal
	Contado       decimal.Decimal
	Descuadre     decimal.Decimal
	Clasificacion string
	Observaciones string
	PorMetodo     []MetodoMonto
	Movimientos   []LineaMovimiento
}

type MetodoMonto struct {
	Metodo string
	Monto  decimal.Decimal
}

type LineaMovimiento struct {
	Hora        string
	Tipo        string
	Descripcion string
	Empleado    string
	Monto       decimal.Decimal
}

// GenerateCierrePDF writes the closure report and returns its absolute path.
func GenerateCierrePDF(rep *CierreReporte, storagePath string) (string, error) {
	if err := os.MkdirAll(storagePath, 0755); err != nil {
		return "", fmt.Errorf("pdf: create storage dir: %w", err)
	}
	filePath := filepath.Join(storagePath, fmt.Sprintf("cierre_%s.pdf", rep.CierreID))

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.AddPage()

	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 30

	// ── Header ───────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 15)
	pdf.CellFormat(contentW, 8, "Cierre de Caja", "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(contentW, 5, rep.Caja, "", 1, "C", false, 0, "")
	pdf.CellFormat(contentW, 5, rep.Fecha.Format("02/01/2006 15:04"), "", 1, "C", false, 0, "")
	pdf.CellFormat(contentW, 5, "Responsable: "+rep.Empleado, "", 1, "C", false, 0, "")
	pdf.Ln(4)

	// ── Reconciliation ───────────────────────────────────────────────────────
	labelW := contentW * 0.6
	valueW := contentW * 0.4
	row := func(label string, value decimal.Decimal, bold bool) {
		style := ""
		if bold {
			style = "B"
		}
		pdf.SetFont("Helvetica", style, 10)
		pdf.CellFormat(labelW, 6, label, "", 0, "L", false, 0, "")
		pdf.CellFormat(valueW, 6, rep.Moneda+" "+value.StringFixed(2), "", 1, "R", false, 0, "")
	}
	row("Monto de apertura", rep.MontoApertura, false)
	row("Ingresos del periodo", rep.TotalIngresos, false)
	row("Egresos del periodo", rep.TotalEgresos, false)
	row("Efectivo esperado", rep.Esperado, false)
	row("Efectivo contado", rep.Contado, true)
	row("Descuadre ("+rep.Clasificacion+")", rep.Descuadre, true)
	pdf.Ln(4)

	// ── Per-method breakdown ─────────────────────────────────────────────────
	if len(rep.PorMetodo) > 0 {
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(contentW, 6, "Totales por medio de pago", "B", 1, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 9)
		for _, m := range rep.PorMetodo {
			pdf.CellFormat(labelW, 5, m.Metodo, "", 0, "L", false, 0, "")
			pdf.CellFormat(valueW, 5, rep.Moneda+" "+m.Monto.StringFixed(2), "", 1, "R", false, 0, "")
		}
		pdf.Ln(4)
	}

	// ── Movement listing ─────────────────────────────────────────────────────
	if len(rep.Movimientos) > 0 {
		colHora := contentW * 0.12
		colTipo := contentW * 0.14
		colDesc := contentW * 0.42
		colEmp := contentW * 0.16
		colMonto := contentW * 0.16

		pdf.SetFont("Helvetica", "B", 8)
		pdf.CellFormat(colHora, 6, "Hora", "B", 0, "L", false, 0, "")
		pdf.CellFormat(colTipo, 6, "Tipo", "B", 0, "L", false, 0, "")
		pdf.CellFormat(colDesc, 6, "Descripción", "B", 0, "L", false, 0, "")
		pdf.CellFormat(colEmp, 6, "Empleado", "B", 0, "L", false, 0, "")
		pdf.CellFormat(colMonto, 6, "Monto", "B", 1, "R", false, 0, "")

		pdf.SetFont("Helvetica", "", 8)
		for _, mov := range rep.Movimientos {
			desc := mov.Descripcion
			if len(desc) > 58 {
				desc = desc[:57] + "…"
			}
			pdf.CellFormat(colHora, 5, mov.Hora, "", 0, "L", false, 0, "")
			pdf.CellFormat(colTipo, 5, mov.Tipo, "", 0, "L", false, 0, "")
			pdf.CellFormat(colDesc, 5, desc, "", 0, "L", false, 0, "")
			pdf.CellFormat(colEmp, 5, mov.Empleado, "", 0, "L", false, 0, "")
			pdf.CellFormat(colMonto, 5, rep.Moneda+" "+mov.Monto.StringFixed(2), "", 1, "R", false, 0, "")
		}
	}

	if rep.Observaciones != "" {
		pdf.Ln(4)
		pdf.SetFont("Helvetica", "I", 9)
		pdf.MultiCell(contentW, 5, "Observaciones: "+rep.Observaciones, "", "L", false)
	}

	if err := pdf.OutputFileAndClose(filePath); err != nil {
		return "", fmt.Errorf("pdf: write file: %w", err)
	}
	return filePath, nil
}
