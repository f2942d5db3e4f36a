package sheet

import (
	"bytes"
	"errors"
	"testing"

	"github.com/xuri/excelize/v2"
)

func buildWorkbook(t *testing.T, cells map[string]interface{}) *bytes.Buffer {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	for axis, v := range cells {
		if err := f.SetCellValue(sheet, axis, v); err != nil {
			t.Fatalf("set cell %s: %v", axis, err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("write workbook: %v", err)
	}
	return buf
}

func TestParse(t *testing.T) {
	buf := buildWorkbook(t, map[string]interface{}{
		"A1": "Организация",
		"B1": "ООО Ромашка",
		"A2": "Проект",
		"B2": "Объект-7",
	})

	g, err := Parse(buf)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if g.RowCount() != 2 {
		t.Fatalf("expected 2 rows, got %d", g.RowCount())
	}
	if g.Cell(0, 1) != "ООО Ромашка" {
		t.Errorf("cell B1 = %q", g.Cell(0, 1))
	}
	// out of range access is safe
	if g.Cell(5, 5) != "" {
		t.Error("expected empty string for out-of-range cell")
	}
}

func TestParseRejectsGarbage(t *testing.T) {
	_, err := Parse(bytes.NewReader([]byte("not a spreadsheet")))
	if !errors.Is(err, ErrParse) {
		t.Fatalf("expected ErrParse, got %v", err)
	}
}

func TestParseRejectsTooShort(t *testing.T) {
	buf := buildWorkbook(t, map[string]interface{}{"A1": "only one row"})
	_, err := Parse(buf)
	if !errors.Is(err, ErrParse) {
		t.Fatalf("expected ErrParse for short document, got %v", err)
	}
}
