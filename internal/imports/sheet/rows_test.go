package sheet

import "testing"

func TestParseDateSerial(t *testing.T) {
	if got := ParseDate("44927"); got != "2023-01-01" {
		t.Errorf("serial 44927 = %q, want 2023-01-01", got)
	}
	if got := ParseDate("1"); got != "1899-12-31" {
		t.Errorf("serial 1 = %q, want 1899-12-31", got)
	}
	// a serial carrying a time of day truncates to the day
	if got := ParseDate("44927.5"); got != "2023-01-01" {
		t.Errorf("serial 44927.5 = %q, want 2023-01-01", got)
	}
}

func TestParseDateString(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"01.02.23", "2023-02-01"},
		{"01.02.2023", "2023-02-01"},
		{"5.3.24", "2024-03-05"},
		{"15/06/2024", "2024-06-15"},
		{"15-06-24", "2024-06-15"},
		{"not a date", ""},
		{"12/13", ""},
		{"", ""},
	}
	for _, tt := range tests {
		if got := ParseDate(tt.in); got != tt.want {
			t.Errorf("ParseDate(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestParseNumber(t *testing.T) {
	if v := ParseNumber("12,5"); v == nil || *v != 12.5 {
		t.Errorf("ParseNumber(12,5) = %v", v)
	}
	if v := ParseNumber(" 100 "); v == nil || *v != 100 {
		t.Errorf("ParseNumber(100) = %v", v)
	}
	if v := ParseNumber("abc"); v != nil {
		t.Errorf("expected nil for garbage, got %v", *v)
	}
	if v := ParseNumber(""); v != nil {
		t.Errorf("expected nil for empty, got %v", *v)
	}
}

func TestExtractRows(t *testing.T) {
	g := NewGrid([][]string{
		{"Организация:", "ООО Ромашка"},
		{"Проект:", "Объект-7", "Склад:", "Основной"},
		{"№", "Наименование материала, услуги по заявке", "Кол-во", "Ед. изм.", "Поставить к дате"},
		{"1", "Кирпич М150", "100", "шт", "01.02.23"},
		{"2", "", "50", "шт", ""}, // no material name, skipped
		{"3", "Цемент М500", "bad", "кг", "junk"},
	})

	headerRow, err := LocateHeaderRow(g)
	if err != nil {
		t.Fatalf("LocateHeaderRow: %v", err)
	}
	meta := LocateMetadata(g)
	mapping := ResolveColumns(g.Row(headerRow), nil)

	items := ExtractRows(g, headerRow, mapping, meta)
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}

	first := items[0]
	if first.SupplierMaterialName != "Кирпич М150" {
		t.Errorf("name = %q", first.SupplierMaterialName)
	}
	if first.Quantity == nil || *first.Quantity != 100 {
		t.Errorf("quantity = %v", first.Quantity)
	}
	if first.Unit != "шт" {
		t.Errorf("unit = %q", first.Unit)
	}
	if first.DeliveryDate != "2023-02-01" {
		t.Errorf("delivery date = %q", first.DeliveryDate)
	}
	if first.OrganizationName != "ООО Ромашка" || first.ProjectName != "Объект-7" {
		t.Errorf("metadata not inherited: %q / %q", first.OrganizationName, first.ProjectName)
	}
	if !first.IsImported {
		t.Error("IsImported not set")
	}

	// bad number and date degrade to empty, row survives
	second := items[1]
	if second.Quantity != nil {
		t.Errorf("expected nil quantity for bad cell, got %v", *second.Quantity)
	}
	if second.DeliveryDate != "" {
		t.Errorf("expected empty delivery date, got %q", second.DeliveryDate)
	}
	if second.RowNumber != 6 {
		t.Errorf("row number = %d, want 6", second.RowNumber)
	}
}
