package sheet

import (
	"errors"
	"strings"

	"github.com/altustroy/snab/internal/imports/entity"
	"github.com/altustroy/snab/internal/imports/normalize"
)

// ErrHeaderNotFound marks a document without a recognizable line item
// header row.
var ErrHeaderNotFound = errors.New("line item header row not found")

const (
	// headerScanRows is the window searched for the line item header row.
	headerScanRows = 20
	// metadataScanRows is the window searched for the metadata block.
	metadataScanRows = 2
)

// LocateMetadata extracts the document-level block: for each known label
// found in rows 0-1, the value is the next cell in the same row. The
// applicant label is only recognized on row 0; documents in circulation
// place it there and nowhere else.
func LocateMetadata(g *Grid) entity.HeaderMetadata {
	var meta entity.HeaderMetadata

	for r := 0; r < metadataScanRows && r < g.RowCount(); r++ {
		row := g.Row(r)
		for c, cell := range row {
			text := normalize.Generic(cell)
			if text == "" {
				continue
			}
			value := strings.TrimSpace(g.Cell(r, c+1))

			switch {
			case strings.Contains(text, "организация"):
				if meta.OrganizationName == "" {
					meta.OrganizationName = value
				}
			case strings.Contains(text, "проект"):
				if meta.ProjectName == "" {
					meta.ProjectName = value
				}
			case strings.Contains(text, "склад"):
				if meta.WarehouseName == "" {
					meta.WarehouseName = value
				}
			case strings.Contains(text, "заявитель"):
				if r == 0 && meta.Applicant == "" {
					meta.Applicant = value
				}
			case strings.Contains(text, "дата"):
				if meta.DocumentDate == "" {
					meta.DocumentDate = value
				}
			case strings.Contains(text, "заявка"):
				if meta.DocumentNumber == "" {
					meta.DocumentNumber = value
				}
			}
		}
	}

	return meta
}

// LocateHeaderRow finds the row that begins the line item table: the first
// row within the scan window containing both the request material name
// column and a quantity column.
func LocateHeaderRow(g *Grid) (int, error) {
	for r := 0; r < headerScanRows && r < g.RowCount(); r++ {
		var hasName, hasQty bool
		for _, cell := range g.Row(r) {
			text := normalize.Generic(cell)
			if strings.Contains(text, "наименование материала, услуги по заявке") {
				hasName = true
			}
			if strings.Contains(text, "кол-во") {
				hasQty = true
			}
		}
		if hasName && hasQty {
			return r, nil
		}
	}
	return 0, ErrHeaderNotFound
}
