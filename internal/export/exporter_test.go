package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rebeliceyang/lazydash/internal/models"
	"github.com/rebeliceyang/lazydash/internal/refine"
	"github.com/xuri/excelize/v2"
)

func testRows() []models.Row {
	return []models.Row{
		{"id": 1, "name": "North, \"main\"", "created": time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC), "extra": "hidden"},
		{"id": 2, "name": nil, "created": nil},
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, []string{"id", "name", "created"}, testRows()); err != nil {
		t.Fatalf("WriteCSV failed: %v", err)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("Failed to parse CSV: %v", err)
	}

	if len(records) != 3 {
		t.Fatalf("Expected 3 records (header + 2 rows), got %d", len(records))
	}

	expectedHeader := []string{"id", "name", "created"}
	for i, h := range expectedHeader {
		if records[0][i] != h {
			t.Errorf("Header[%d]: expected %q, got %q", i, h, records[0][i])
		}
	}

	if records[1][1] != "North, \"main\"" {
		t.Errorf("Special characters not round-tripped: got %q", records[1][1])
	}
	if records[1][2] != "2024-01-01T12:00:00Z" {
		t.Errorf("Expected RFC3339 timestamp, got %q", records[1][2])
	}
	if records[2][1] != "" || records[2][2] != "" {
		t.Errorf("Expected NULL cells to be empty, got %q", records[2])
	}
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteJSON(&buf, []string{"id", "name"}, testRows()); err != nil {
		t.Fatalf("WriteJSON failed: %v", err)
	}

	var decoded []map[string]any
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("Failed to parse JSON: %v", err)
	}

	if len(decoded) != 2 {
		t.Fatalf("Expected 2 rows, got %d", len(decoded))
	}
	if _, ok := decoded[0]["extra"]; ok {
		t.Error("Columns outside the selection should not be exported")
	}
	if decoded[0]["id"] != float64(1) {
		t.Errorf("Expected id 1, got %v", decoded[0]["id"])
	}
	if v, ok := decoded[1]["name"]; !ok || v != nil {
		t.Errorf("Expected null name, got %v (present=%v)", v, ok)
	}
}

func TestWriteXLSX(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteXLSX(&buf, []string{"id", "name", "created"}, testRows()); err != nil {
		t.Fatalf("WriteXLSX failed: %v", err)
	}

	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("Failed to open workbook: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		t.Fatalf("Failed to read sheet: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("Expected 3 rows (header + 2 records), got %d", len(rows))
	}
	if strings.Join(rows[0], ",") != "id,name,created" {
		t.Errorf("Unexpected header: %v", rows[0])
	}
	if rows[1][0] != "1" || rows[1][1] != "North, \"main\"" || rows[1][2] != "2024-01-01T12:00:00Z" {
		t.Errorf("Unexpected first record: %v", rows[1])
	}
	if rows[2][0] != "2" {
		t.Errorf("Unexpected second record: %v", rows[2])
	}

	cellType, err := f.GetCellType(f.GetSheetName(0), "A2")
	if err != nil {
		t.Fatalf("GetCellType failed: %v", err)
	}
	if cellType == excelize.CellTypeSharedString || cellType == excelize.CellTypeInlineString {
		t.Errorf("Expected numeric id cell, got type %v", cellType)
	}
}

func TestExportToFile_XLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rows.xlsx")
	if err := ExportToFile(path, FormatXLSX, []string{"id"}, testRows()); err != nil {
		t.Fatalf("ExportToFile failed: %v", err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("Failed to open workbook: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		t.Fatalf("Failed to read sheet: %v", err)
	}
	if len(rows) != 3 || rows[2][0] != "2" {
		t.Errorf("Unexpected rows: %v", rows)
	}
}

func TestExportToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rows.csv")
	if err := ExportToFile(path, FormatCSV, []string{"id"}, testRows()); err != nil {
		t.Fatalf("ExportToFile failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file: %v", err)
	}
	if got := strings.TrimSpace(string(data)); got != "id\n1\n2" {
		t.Errorf("Unexpected file content: %q", got)
	}
}

func TestParseFormat(t *testing.T) {
	for _, in := range []string{"csv", "json", "xlsx"} {
		if _, err := ParseFormat(in); err != nil {
			t.Errorf("ParseFormat(%q) failed: %v", in, err)
		}
	}
	if _, err := ParseFormat("parquet"); err == nil {
		t.Error("Expected error for unknown format")
	}
}

func TestPageExports(t *testing.T) {
	columns := []models.Column{{Key: "id"}, {Key: "name"}}
	page := refine.Paginate(testRows(), 2, 1)

	var csvBuf bytes.Buffer
	if err := PageToCSV(&csvBuf, columns, page); err != nil {
		t.Fatalf("PageToCSV failed: %v", err)
	}
	if got := strings.TrimSpace(csvBuf.String()); got != "id,name\n2," {
		t.Errorf("Unexpected CSV page: %q", got)
	}

	var jsonBuf bytes.Buffer
	if err := PageToJSON(&jsonBuf, columns, page); err != nil {
		t.Fatalf("PageToJSON failed: %v", err)
	}
	var decoded []map[string]any
	if err := json.Unmarshal(jsonBuf.Bytes(), &decoded); err != nil {
		t.Fatalf("Failed to parse JSON: %v", err)
	}
	if len(decoded) != 1 || decoded[0]["id"] != float64(2) {
		t.Errorf("Unexpected JSON page: %v", decoded)
	}
}
