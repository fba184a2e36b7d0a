package tablereport

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

const (
	TableSheet  = "Table"
	LegendSheet = "Legend"
)

// NewWorkbook writes the recovered table and legend into a fresh workbook.
// Callers must Close the returned file.
func NewWorkbook(p *PageObject) (*excelize.File, error) {
	f := excelize.NewFile()

	if err := f.SetSheetName(f.GetSheetName(0), TableSheet); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to rename sheet: %w", err)
	}
	for r := range p.Table.Cells {
		for c := range p.Table.Cells[r] {
			if p.Table.Cells[r][c] == nil {
				continue
			}
			if err := setCell(f, TableSheet, c+1, r+1, p.Table.CellText(r, c)); err != nil {
				f.Close()
				return nil, err
			}
		}
	}

	if _, err := f.NewSheet(LegendSheet); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create legend sheet: %w", err)
	}
	row := 1
	if p.Legend.Title != nil {
		if err := setCell(f, LegendSheet, 1, row, p.Legend.Title.TrimmedText()); err != nil {
			f.Close()
			return nil, err
		}
		row++
	}
	for _, field := range p.Legend.Fields {
		if err := setCell(f, LegendSheet, 1, row, field.Label.TrimmedText()); err != nil {
			f.Close()
			return nil, err
		}
		if field.Value != nil {
			if err := setCell(f, LegendSheet, 2, row, field.Value.TrimmedText()); err != nil {
				f.Close()
				return nil, err
			}
		}
		row++
	}
	return f, nil
}

// WriteXLSX streams the workbook for p to w.
func WriteXLSX(w io.Writer, p *PageObject) error {
	f, err := NewWorkbook(p)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

// ExportXLSX saves the workbook for p at path.
func ExportXLSX(path string, p *PageObject) error {
	f, err := NewWorkbook(p)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook %s: %w", path, err)
	}
	return nil
}

func setCell(f *excelize.File, sheet string, col, row int, value string) error {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return fmt.Errorf("invalid cell %d,%d: %w", col, row, err)
	}
	if err := f.SetCellValue(sheet, cell, value); err != nil {
		return fmt.Errorf("failed to set %s!%s: %w", sheet, cell, err)
	}
	return nil
}
