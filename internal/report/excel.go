package report

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

const (
	waterSheet = "Consumo Água"
	gasSheet   = "Consumo Gás"
)

// RenderMonthlyXLSX renders the monthly dataset as a workbook with one
// sheet per utility type. Both sheets are always present, even when a
// type has no rows for the month.
func RenderMonthlyXLSX(rep Monthly) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := writeSheet(f, waterSheet, rep.CondoName, rep.Month.Label(), rep.Water.Rows); err != nil {
		return nil, err
	}
	if err := writeSheet(f, gasSheet, rep.CondoName, rep.Month.Label(), rep.Gas.Rows); err != nil {
		return nil, err
	}

	// The workbook opens on the water sheet; the default sheet from
	// excelize.NewFile is dropped.
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("drop default sheet: %w", err)
	}
	idx, err := f.GetSheetIndex(waterSheet)
	if err != nil {
		return nil, fmt.Errorf("locate water sheet: %w", err)
	}
	f.SetActiveSheet(idx)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("render monthly xlsx: %w", err)
	}
	return buf.Bytes(), nil
}

func writeSheet(f *excelize.File, name, condoName, monthLabel string, rows []Row) error {
	if _, err := f.NewSheet(name); err != nil {
		return fmt.Errorf("create sheet %s: %w", name, err)
	}

	title := "Condomínio " + condoName + " referente ao mês " + monthLabel
	if err := f.SetCellValue(name, "A1", title); err != nil {
		return fmt.Errorf("write title: %w", err)
	}
	if err := f.MergeCell(name, "A1", "E1"); err != nil {
		return fmt.Errorf("merge title: %w", err)
	}

	titleStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 13},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err == nil {
		_ = f.SetCellStyle(name, "A1", "E1", titleStyle)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return fmt.Errorf("header style: %w", err)
	}

	for i, col := range monthlyColumns {
		cell, err := excelize.CoordinatesToCellName(i+1, 3)
		if err != nil {
			return fmt.Errorf("header cell: %w", err)
		}
		if err := f.SetCellValue(name, cell, col); err != nil {
			return fmt.Errorf("write header: %w", err)
		}
		if err := f.SetCellStyle(name, cell, cell, headerStyle); err != nil {
			return fmt.Errorf("style header: %w", err)
		}
	}

	for i, row := range rows {
		values := []string{row.Unit, row.Resident, row.Previous, row.Current, row.Consumption}
		for j, v := range values {
			cell, err := excelize.CoordinatesToCellName(j+1, i+4)
			if err != nil {
				return fmt.Errorf("data cell: %w", err)
			}
			if err := f.SetCellValue(name, cell, v); err != nil {
				return fmt.Errorf("write row: %w", err)
			}
		}
	}

	_ = f.SetColWidth(name, "A", "A", 14)
	_ = f.SetColWidth(name, "B", "B", 32)
	_ = f.SetColWidth(name, "C", "E", 14)
	return nil
}
