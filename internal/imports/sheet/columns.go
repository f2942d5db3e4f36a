package sheet

import (
	"strings"

	"github.com/altustroy/snab/internal/imports/entity"
	"github.com/altustroy/snab/internal/imports/normalize"
)

// headerPredicates decide, per canonical field, whether a header cell is
// that field's column. Keyed off the wording seen in circulating request
// documents; a persisted user mapping always wins over these.
var headerPredicates = map[entity.Field]func(text string) bool{
	entity.FieldSupplierMaterialName: func(t string) bool {
		return containsAll(t, "наименование", "материал", "заявк")
	},
	entity.FieldMaterialName: func(t string) bool {
		return containsAll(t, "наименование", "материал", "смет")
	},
	entity.FieldQuantity: func(t string) bool {
		return strings.Contains(t, "кол-во") && !strings.Contains(t, "смет")
	},
	entity.FieldEstimateQuantity: func(t string) bool {
		return containsAll(t, "кол-во", "смет")
	},
	entity.FieldUnit: func(t string) bool {
		return isUnitHeader(t) && !strings.Contains(t, "смет")
	},
	entity.FieldEstimateUnit: func(t string) bool {
		return isUnitHeader(t) && strings.Contains(t, "смет")
	},
	entity.FieldWorkType: func(t string) bool {
		return strings.Contains(t, "вид работ")
	},
	entity.FieldCharacteristic: func(t string) bool {
		return strings.Contains(t, "характеристик")
	},
	entity.FieldSize: func(t string) bool {
		return strings.Contains(t, "размер") || strings.Contains(t, "габарит")
	},
	// FieldDeliveryDate is resolved in two tiers, see ResolveColumns.
	entity.FieldPrice: func(t string) bool {
		return strings.Contains(t, "цена")
	},
	entity.FieldNote: func(t string) bool {
		return strings.Contains(t, "примечан")
	},
}

// ResolveColumns computes the effective mapping for one import. Per field:
// the persisted override is taken first (including an explicit "do not
// import"); otherwise the first header cell satisfying the field predicate;
// otherwise the field stays unmapped, never an error.
func ResolveColumns(headerRow []string, persisted entity.ColumnMapping) entity.ColumnMapping {
	normalized := make([]string, len(headerRow))
	for i, cell := range headerRow {
		normalized[i] = normalize.Generic(cell)
	}

	effective := entity.ColumnMapping{}
	for _, field := range entity.AllFields {
		if persisted != nil {
			if col, ok := persisted[field]; ok {
				effective[field] = col
				continue
			}
		}
		if field == entity.FieldDeliveryDate {
			if col, ok := resolveDeliveryDate(normalized); ok {
				effective[field] = col
			}
			continue
		}
		pred := headerPredicates[field]
		for i, text := range normalized {
			if text != "" && pred(text) {
				effective[field] = i
				break
			}
		}
	}
	return effective
}

// resolveDeliveryDate prefers the explicit "поставить к дате" column and only
// then falls back to anything mentioning delivery or a date.
func resolveDeliveryDate(normalized []string) (int, bool) {
	for i, t := range normalized {
		if strings.Contains(t, "поставить к дате") {
			return i, true
		}
	}
	for i, t := range normalized {
		if t != "" && (strings.Contains(t, "поставк") || strings.Contains(t, "дата")) {
			return i, true
		}
	}
	return 0, false
}

// Column returns the mapped column for a field, or -1 when the field is
// unmapped or explicitly skipped.
func Column(m entity.ColumnMapping, f entity.Field) int {
	col, ok := m[f]
	if !ok || col == entity.ColumnSkip {
		return -1
	}
	return col
}

func containsAll(t string, subs ...string) bool {
	for _, s := range subs {
		if !strings.Contains(t, s) {
			return false
		}
	}
	return true
}

// isUnitHeader tolerates the spacing variants of "ед. изм.".
func isUnitHeader(t string) bool {
	return strings.Contains(t, "ед. изм") || strings.Contains(t, "ед.изм")
}
