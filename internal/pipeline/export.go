package pipeline

import (
	"encoding/csv"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"cinsignal/internal/util"
)

// ExportRowToXLSX writes the header and a single row to the first sheet.
func ExportRowToXLSX(row FlatRow, outputPath string) error {
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)

	for i, h := range row.Header() {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	values := row.Values()
	set := func(col int, value any) {
		cell, _ := excelize.CoordinatesToCellName(col, 2)
		_ = f.SetCellValue(sheet, cell, value)
	}
	for i, v := range values {
		set(i+1, v)
	}

	if err := ensureDir(outputPath); err != nil {
		return err
	}
	return f.SaveAs(outputPath)
}

// ExportRowToCSV writes the header and a single row as CSV.
func ExportRowToCSV(row FlatRow, outputPath string) error {
	if err := ensureDir(outputPath); err != nil {
		return err
	}
	file, err := os.Create(outputPath)
	if err != nil {
		return err
	}
	defer file.Close()

	w := csv.NewWriter(file)
	if err := w.Write(row.Header()); err != nil {
		return err
	}
	if err := w.Write(row.Values()); err != nil {
		return err
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}
	return file.Close()
}

// WriteJSON writes v as indented JSON without HTML escaping.
func WriteJSON(v any, outputPath string) error {
	blob, err := util.MarshalJSON(v, "  ")
	if err != nil {
		return err
	}
	if err := ensureDir(outputPath); err != nil {
		return err
	}
	return os.WriteFile(outputPath, blob, 0o644)
}

func ensureDir(outputPath string) error {
	return os.MkdirAll(filepath.Dir(outputPath), 0o755)
}
