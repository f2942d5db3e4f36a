package service

import (
	"testing"

	catentity "github.com/altustroy/snab/internal/catalog/entity"
	catservice "github.com/altustroy/snab/internal/catalog/service"
	"github.com/altustroy/snab/internal/imports/entity"
)

func TestMatchOrganization(t *testing.T) {
	orgs := []catentity.Organization{
		{ID: "o1", Name: "ООО «Ромашка»", ShortName: "Ромашка", LegalName: "Общество с ограниченной ответственностью \"Ромашка\""},
		{ID: "o2", Name: "СП СтройМонтаж"},
	}

	tests := []struct {
		in   string
		want string
	}{
		{"ООО Ромашка", "o1"},
		{"Общество с ограниченной ответственностью «Ромашка»", "o1"},
		{"ооо \"ромашка\"", "o1"},
		{"Строительное предприятие СтройМонтаж", "o2"},
		{"СП Строй-Монтаж", "o2"},
		{"ЗАО Неизвестная", ""},
		{"", ""},
	}
	for _, tt := range tests {
		got := MatchOrganization(tt.in, orgs)
		switch {
		case tt.want == "" && got != nil:
			t.Errorf("MatchOrganization(%q) = %s, want no match", tt.in, got.ID)
		case tt.want != "" && (got == nil || got.ID != tt.want):
			t.Errorf("MatchOrganization(%q) = %v, want %s", tt.in, got, tt.want)
		}
	}
}

func TestMatchOrganizationSubstring(t *testing.T) {
	orgs := []catentity.Organization{{ID: "o1", Name: "Ромашка"}}

	// document name contains the catalog name
	if got := MatchOrganization("ООО Ромашка Плюс", orgs); got == nil || got.ID != "o1" {
		t.Errorf("containment match failed: %v", got)
	}
	// catalog name contains the document name
	orgs = []catentity.Organization{{ID: "o2", Name: "ООО СтройРесурс Северо-Запад"}}
	if got := MatchOrganization("СтройРесурс", orgs); got == nil || got.ID != "o2" {
		t.Errorf("reverse containment match failed: %v", got)
	}
}

func TestBuildDiff(t *testing.T) {
	snap := &catservice.Snapshot{
		Projects:   []catentity.Project{{ID: "p1", Name: "Объект-7"}},
		Warehouses: []catentity.Warehouse{{ID: "w1", Name: "Основной", ProjectID: "p1"}},
		Units:      []catentity.Unit{{ID: "u1", Name: "шт"}},
		Materials:  []catentity.Material{{ID: "m1", Name: "Кирпич М150"}},
	}
	meta := entity.HeaderMetadata{ProjectName: "Объект-7", WarehouseName: "Склад №2"}
	items := []entity.RawLineItem{
		{SupplierMaterialName: "Кирпич М150", Unit: "шт", WorkType: "Кладка"},
		{SupplierMaterialName: "Цемент М500", Unit: "кг", EstimateUnit: "КГ", WorkType: "кладка"},
		{SupplierMaterialName: "цемент м500", Unit: "кг"}, // duplicate spelling
	}

	diff := BuildDiff(items, meta, snap)

	if diff.MissingProject != "" {
		t.Errorf("project should match, got missing %q", diff.MissingProject)
	}
	if diff.MissingWarehouse != "Склад №2" {
		t.Errorf("missing warehouse = %q", diff.MissingWarehouse)
	}
	if len(diff.MissingWorkTypes) != 1 || diff.MissingWorkTypes[0] != "Кладка" {
		t.Errorf("missing work types = %v", diff.MissingWorkTypes)
	}
	if len(diff.MissingUnits) != 1 || diff.MissingUnits[0] != "кг" {
		t.Errorf("missing units = %v", diff.MissingUnits)
	}
	// "КГ" normalizes to the same unit pending in MissingUnits, but the
	// estimate bucket is deduplicated at creation time, not here
	if len(diff.MissingEstimateUnits) != 1 || diff.MissingEstimateUnits[0] != "КГ" {
		t.Errorf("missing estimate units = %v", diff.MissingEstimateUnits)
	}
	if len(diff.MissingMaterials) != 1 || diff.MissingMaterials[0] != "Цемент М500" {
		t.Errorf("missing materials = %v", diff.MissingMaterials)
	}
	if unit := diff.MaterialUnits["цемент м500"]; unit != "кг" {
		t.Errorf("material unit association = %q, want кг", unit)
	}
}

func TestBuildDiffSkipsResolvedAndPlaceholderRows(t *testing.T) {
	snap := &catservice.Snapshot{
		Materials: []catentity.Material{{ID: "m1", Name: "Цемент М500"}},
	}
	items := []entity.RawLineItem{
		// resolved through the bridge; its text still reads as a placeholder
		{SupplierMaterialName: "Создать \"Грунтовка\"", MaterialRef: &entity.EntityRef{ID: "m9", Name: "Грунтовка"}},
		// unresolved placeholder whose target already exists in the catalog
		{SupplierMaterialName: "Создать \"Цемент М500\""},
		// unresolved placeholder for a genuinely new material
		{SupplierMaterialName: "Создать \"Шпатлёвка\"", Unit: "кг"},
	}

	diff := BuildDiff(items, entity.HeaderMetadata{}, snap)

	if len(diff.MissingMaterials) != 1 || diff.MissingMaterials[0] != "Шпатлёвка" {
		t.Errorf("missing materials = %v", diff.MissingMaterials)
	}
	if unit := diff.MaterialUnits["шпатлёвка"]; unit != "кг" {
		t.Errorf("material unit association = %q, want кг", unit)
	}
}

func TestBindItems(t *testing.T) {
	snap := &catservice.Snapshot{
		Projects:  []catentity.Project{{ID: "p1", Name: "Объект-7"}},
		Units:     []catentity.Unit{{ID: "u1", Name: "шт"}},
		Materials: []catentity.Material{{ID: "m1", Name: "Кирпич М150"}},
	}
	ix := indexSnapshot(snap)
	org := &entity.EntityRef{ID: "o1", Name: "ООО Ромашка"}
	items := []entity.RawLineItem{
		{SupplierMaterialName: "кирпич м150", Unit: "ШТ", ProjectName: "Объект-7"},
		{SupplierMaterialName: "Неизвестный", Unit: "м2"},
	}

	bound := BindItems(items, org, ix)

	if items[0].MaterialRef != nil {
		t.Error("input slice was mutated")
	}
	if bound[0].MaterialRef == nil || bound[0].MaterialRef.ID != "m1" {
		t.Errorf("material ref = %v", bound[0].MaterialRef)
	}
	if bound[0].UnitRef == nil || bound[0].UnitRef.ID != "u1" {
		t.Errorf("unit ref = %v", bound[0].UnitRef)
	}
	if bound[0].ProjectRef == nil || bound[0].ProjectRef.ID != "p1" {
		t.Errorf("project ref = %v", bound[0].ProjectRef)
	}
	if bound[0].OrganizationRef == nil || bound[0].OrganizationRef.ID != "o1" {
		t.Errorf("organization ref = %v", bound[0].OrganizationRef)
	}
	if bound[1].MaterialRef != nil || bound[1].UnitRef != nil {
		t.Errorf("unknown references should stay nil: %v %v", bound[1].MaterialRef, bound[1].UnitRef)
	}
}
