package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rebeliceyang/lazydash/internal/models"
	"github.com/rebeliceyang/lazydash/internal/refine"
	"github.com/rebeliceyang/lazydash/internal/template"
	"github.com/xuri/excelize/v2"
)

// Format is an export file format
type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
	FormatXLSX Format = "xlsx"
)

// ParseFormat maps a flag value to a Format
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatCSV, FormatJSON, FormatXLSX:
		return Format(s), nil
	default:
		return "", fmt.Errorf("unknown export format %q (want csv, json or xlsx)", s)
	}
}

// Write writes rows in the given format
func Write(w io.Writer, format Format, columns []string, rows []models.Row) error {
	switch format {
	case FormatCSV:
		return WriteCSV(w, columns, rows)
	case FormatJSON:
		return WriteJSON(w, columns, rows)
	case FormatXLSX:
		return WriteXLSX(w, columns, rows)
	default:
		return fmt.Errorf("unknown export format %q", format)
	}
}

// WriteCSV writes a header of column keys followed by one record per row.
// NULL cells are written as empty fields.
func WriteCSV(w io.Writer, columns []string, rows []models.Row) error {
	writer := csv.NewWriter(w)

	// Write header
	if err := writer.Write(columns); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	record := make([]string, len(columns))
	for _, row := range rows {
		for i, col := range columns {
			record[i] = cellText(row[col])
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// WriteJSON writes rows as a JSON array of objects restricted to columns
func WriteJSON(w io.Writer, columns []string, rows []models.Row) error {
	out := make([]map[string]any, len(rows))
	for i, row := range rows {
		obj := make(map[string]any, len(columns))
		for _, col := range columns {
			obj[col] = row[col]
		}
		out[i] = obj
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("failed to marshal rows to JSON: %w", err)
	}
	return nil
}

// WriteXLSX writes a workbook whose first sheet holds a header of column keys
// followed by one row per record. Numbers keep their type; other cells are
// written as text.
func WriteXLSX(w io.Writer, columns []string, rows []models.Row) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	sheet := f.GetSheetName(0)
	header := make([]any, len(columns))
	for i, col := range columns {
		header[i] = col
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write XLSX header: %w", err)
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		values := make([]any, len(columns))
		for j, col := range columns {
			values[j] = xlsxValue(row[col])
		}
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return fmt.Errorf("failed to write XLSX row: %w", err)
		}
	}

	if err := f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return fmt.Errorf("failed to freeze XLSX header: %w", err)
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write XLSX workbook: %w", err)
	}
	return nil
}

func xlsxValue(v any) any {
	switch v.(type) {
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		return v
	default:
		return cellText(v)
	}
}

// ExportToFile writes rows to path in the given format
func ExportToFile(path string, format Format, columns []string, rows []models.Row) error {
	// Create the file
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create export file: %w", err)
	}
	defer func() { _ = file.Close() }()

	if err := Write(file, format, columns, rows); err != nil {
		return err
	}
	return file.Close()
}

func cellText(v any) string {
	if t, ok := v.(time.Time); ok {
		return t.Format(time.RFC3339)
	}
	return template.Stringify(v)
}

// PageToCSV writes the rows of one displayed page as CSV
func PageToCSV(w io.Writer, columns []models.Column, page refine.Page) error {
	return WriteCSV(w, columnKeys(columns), page.Rows)
}

// PageToJSON writes the rows of one displayed page as JSON
func PageToJSON(w io.Writer, columns []models.Column, page refine.Page) error {
	return WriteJSON(w, columnKeys(columns), page.Rows)
}

func columnKeys(columns []models.Column) []string {
	keys := make([]string, len(columns))
	for i, c := range columns {
		keys[i] = c.Key
	}
	return keys
}
