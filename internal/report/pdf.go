package report

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
)

var (
	waterHeaderFill = [3]int{0, 102, 204}
	gasHeaderFill   = [3]int{204, 82, 0}
	unitHeaderFill  = [3]int{128, 46, 83}
	stripeFill      = [3]int{240, 240, 240}
)

// RenderMonthlyPDF renders the monthly tables as a portrait A4 document.
// Empty tables are omitted entirely; with both tables empty no document
// is produced and ErrNoRecords is returned.
func RenderMonthlyPDF(rep Monthly) ([]byte, error) {
	if len(rep.Water.Rows) == 0 && len(rep.Gas.Rows) == 0 {
		return nil, ErrNoRecords
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetAutoPageBreak(true, 15)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(0, 10, tr(headerText(rep.CondoName, rep.Month)), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	if len(rep.Water.Rows) > 0 {
		writeMonthlyTable(pdf, tr, "Consumo de Água (m³)", waterHeaderFill, rep.Water.Rows)
	}
	if len(rep.Gas.Rows) > 0 {
		if len(rep.Water.Rows) > 0 {
			pdf.Ln(8)
		}
		writeMonthlyTable(pdf, tr, "Consumo de Gás (m³)", gasHeaderFill, rep.Gas.Rows)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render monthly pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func writeMonthlyTable(pdf *gofpdf.Fpdf, tr func(string) string, title string, fill [3]int, rows []Row) {
	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(0, 8, tr(title), "", 1, "L", false, 0, "")

	widths := []float64{30, 60, 33, 33, 34}
	writeHeaderRow(pdf, tr, monthlyColumns, widths, fill)

	pdf.SetFont("Helvetica", "", 10)
	pdf.SetTextColor(0, 0, 0)
	for i, row := range rows {
		striped := i%2 == 1
		if striped {
			pdf.SetFillColor(stripeFill[0], stripeFill[1], stripeFill[2])
		}
		cells := []string{row.Unit, row.Resident, row.Previous, row.Current, row.Consumption}
		for j, cell := range cells {
			align := "R"
			if j < 2 {
				align = "L"
			}
			pdf.CellFormat(widths[j], 7, tr(cell), "1", 0, align, striped, 0, "")
		}
		pdf.Ln(-1)
	}
}

// RenderIndividualPDF renders the reading history of a single unit.
func RenderIndividualPDF(rep Individual) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetAutoPageBreak(true, 15)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(0, 10, tr("Condomínio "+rep.CondoName), "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(0, 8, tr("Relatório Individual - Unidade "+rep.Unit.DisplayLabel()), "", 1, "C", false, 0, "")
	if rep.Period != "" {
		pdf.SetFont("Helvetica", "", 10)
		pdf.CellFormat(0, 6, tr("Período: "+rep.Period), "", 1, "C", false, 0, "")
	}
	pdf.Ln(4)

	widths := []float64{36, 36, 39, 39, 40}
	writeHeaderRow(pdf, tr, individualColumns, widths, unitHeaderFill)

	pdf.SetFont("Helvetica", "", 10)
	pdf.SetTextColor(0, 0, 0)
	for i, row := range rep.Rows {
		striped := i%2 == 1
		if striped {
			pdf.SetFillColor(stripeFill[0], stripeFill[1], stripeFill[2])
		}
		cells := []string{row.Date, row.Type, row.Previous, row.Current, row.Consumption}
		for j, cell := range cells {
			align := "R"
			if j < 2 {
				align = "L"
			}
			pdf.CellFormat(widths[j], 7, tr(cell), "1", 0, align, striped, 0, "")
		}
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render individual pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func writeHeaderRow(pdf *gofpdf.Fpdf, tr func(string) string, columns []string, widths []float64, fill [3]int) {
	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetFillColor(fill[0], fill[1], fill[2])
	pdf.SetTextColor(255, 255, 255)
	for i, col := range columns {
		pdf.CellFormat(widths[i], 8, tr(col), "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)
}
