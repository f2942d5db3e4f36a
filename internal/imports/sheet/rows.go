package sheet

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/altustroy/snab/internal/imports/entity"
)

// excelEpoch is serial day zero in the spreadsheet date convention.
var excelEpoch = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)

var digitsOnly = regexp.MustCompile(`^\d+$`)

// ExtractRows converts every data row below the header into a RawLineItem.
// Rows without a request material name are skipped. Bad numbers and dates
// degrade to empty values; a malformed cell never fails the row.
func ExtractRows(g *Grid, headerRow int, mapping entity.ColumnMapping, meta entity.HeaderMetadata) []entity.RawLineItem {
	var items []entity.RawLineItem

	cell := func(row []string, f entity.Field) string {
		col := Column(mapping, f)
		if col < 0 || col >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[col])
	}

	for r := headerRow + 1; r < g.RowCount(); r++ {
		row := g.Row(r)
		name := cell(row, entity.FieldSupplierMaterialName)
		if name == "" {
			continue
		}

		items = append(items, entity.RawLineItem{
			RowNumber:            r + 1, // 1-based, as shown in the editor
			SupplierMaterialName: name,
			MaterialName:         cell(row, entity.FieldMaterialName),
			Quantity:             ParseNumber(cell(row, entity.FieldQuantity)),
			EstimateQuantity:     ParseNumber(cell(row, entity.FieldEstimateQuantity)),
			Unit:                 cell(row, entity.FieldUnit),
			EstimateUnit:         cell(row, entity.FieldEstimateUnit),
			WorkType:             cell(row, entity.FieldWorkType),
			Characteristic:       cell(row, entity.FieldCharacteristic),
			Size:                 cell(row, entity.FieldSize),
			DeliveryDate:         ParseDate(cell(row, entity.FieldDeliveryDate)),
			Price:                ParseNumber(cell(row, entity.FieldPrice)),
			Note:                 cell(row, entity.FieldNote),
			OrganizationName:     meta.OrganizationName,
			ProjectName:          meta.ProjectName,
			WarehouseName:        meta.WarehouseName,
			Applicant:            meta.Applicant,
			IsImported:           true,
		})
	}

	return items
}

// ParseNumber reads a numeric cell; nil when empty or unparseable. Comma
// decimal separators are accepted.
func ParseNumber(s string) *float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, ",", ".")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}

// ParseDate normalizes a date cell to YYYY-MM-DD. Numeric cells are treated
// as spreadsheet serial days (day 0 = Dec 30, 1899, truncated to day
// resolution); text cells as day.month.year with 2- or 4-digit years.
// Unparseable values yield "".
func ParseDate(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}

	// a numeric cell is a serial day count; a fractional part is the
	// time of day and is truncated away
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		if f < 0 {
			return ""
		}
		return excelEpoch.AddDate(0, 0, int(f)).Format("2006-01-02")
	}

	parts := strings.FieldsFunc(s, func(r rune) bool {
		return r == '.' || r == '-' || r == '/'
	})
	if len(parts) != 3 {
		return ""
	}

	day, month, year := parts[0], parts[1], parts[2]
	if !digitsOnly.MatchString(day) || !digitsOnly.MatchString(month) || !digitsOnly.MatchString(year) {
		return ""
	}
	if len(day) == 1 {
		day = "0" + day
	}
	if len(month) == 1 {
		month = "0" + month
	}
	if len(year) == 2 {
		year = "20" + year
	}
	if len(day) != 2 || len(month) != 2 || len(year) != 4 {
		return ""
	}

	return fmt.Sprintf("%s-%s-%s", year, month, day)
}
