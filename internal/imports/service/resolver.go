package service

import (
	"strings"

	catentity "github.com/altustroy/snab/internal/catalog/entity"
	catservice "github.com/altustroy/snab/internal/catalog/service"
	"github.com/altustroy/snab/internal/imports/entity"
	"github.com/altustroy/snab/internal/imports/normalize"
)

// MatchOrganization finds the catalog organization for a document name:
// exact normalized equality across any of the entity's name forms first,
// then substring containment in either direction.
func MatchOrganization(name string, orgs []catentity.Organization) *catentity.Organization {
	norm := normalize.OrgName(name)
	if norm == "" {
		return nil
	}

	for i := range orgs {
		for _, candidate := range orgNames(&orgs[i]) {
			if normalize.OrgName(candidate) == norm {
				return &orgs[i]
			}
		}
	}

	for i := range orgs {
		for _, candidate := range orgNames(&orgs[i]) {
			cn := normalize.OrgName(candidate)
			if cn == "" {
				continue
			}
			if strings.Contains(cn, norm) || strings.Contains(norm, cn) {
				return &orgs[i]
			}
		}
	}

	return nil
}

func orgNames(org *catentity.Organization) []string {
	return []string{org.Name, org.ShortName, org.LegalName}
}

// nameIndex maps normalized catalog names to refs.
type nameIndex map[string]entity.EntityRef

func (ix nameIndex) add(id, name string) {
	key := normalize.Generic(name)
	if key == "" {
		return
	}
	if _, exists := ix[key]; !exists {
		ix[key] = entity.EntityRef{ID: id, Name: name}
	}
}

func (ix nameIndex) find(name string) *entity.EntityRef {
	if ref, ok := ix[normalize.Generic(name)]; ok {
		return &ref
	}
	return nil
}

// catalogIndex holds per-type name indexes over one snapshot, optionally
// extended with freshly created entities.
type catalogIndex struct {
	projects        nameIndex
	warehouses      nameIndex
	workTypes       nameIndex
	characteristics nameIndex
	units           nameIndex
	materials       nameIndex
}

func indexSnapshot(snap *catservice.Snapshot) *catalogIndex {
	ix := &catalogIndex{
		projects:        nameIndex{},
		warehouses:      nameIndex{},
		workTypes:       nameIndex{},
		characteristics: nameIndex{},
		units:           nameIndex{},
		materials:       nameIndex{},
	}
	for _, p := range snap.Projects {
		ix.projects.add(p.ID, p.Name)
	}
	for _, w := range snap.Warehouses {
		// matched by name only, whichever project owns it
		ix.warehouses.add(w.ID, w.Name)
	}
	for _, wt := range snap.WorkTypes {
		ix.workTypes.add(wt.ID, wt.Name)
	}
	for _, ch := range snap.Characteristics {
		ix.characteristics.add(ch.ID, ch.Name)
	}
	for _, u := range snap.Units {
		ix.units.add(u.ID, u.Name)
	}
	for _, m := range snap.Materials {
		ix.materials.add(m.ID, m.Name)
	}
	return ix
}

// BuildDiff computes the set of referenced names with no catalog match. Each
// bucket is deduplicated by normalized value; the first-seen spelling is
// kept for display.
func BuildDiff(items []entity.RawLineItem, meta entity.HeaderMetadata, snap *catservice.Snapshot) *entity.ReconciliationDiff {
	ix := indexSnapshot(snap)

	diff := &entity.ReconciliationDiff{
		MissingWorkTypes:       []string{},
		MissingCharacteristics: []string{},
		MissingUnits:           []string{},
		MissingEstimateUnits:   []string{},
		MissingMaterials:       []string{},
	}

	if meta.ProjectName != "" && ix.projects.find(meta.ProjectName) == nil {
		diff.MissingProject = strings.TrimSpace(meta.ProjectName)
	}
	if meta.WarehouseName != "" && ix.warehouses.find(meta.WarehouseName) == nil {
		diff.MissingWarehouse = strings.TrimSpace(meta.WarehouseName)
	}

	collect := func(get func(*entity.RawLineItem) string, ix nameIndex, bucket *[]string) {
		seen := map[string]bool{}
		for i := range items {
			raw := strings.TrimSpace(get(&items[i]))
			if raw == "" {
				continue
			}
			key := normalize.Generic(raw)
			if seen[key] || ix.find(raw) != nil {
				continue
			}
			seen[key] = true
			*bucket = append(*bucket, raw)
		}
	}

	collect(func(it *entity.RawLineItem) string { return it.WorkType }, ix.workTypes, &diff.MissingWorkTypes)
	collect(func(it *entity.RawLineItem) string { return it.Characteristic }, ix.characteristics, &diff.MissingCharacteristics)
	collect(func(it *entity.RawLineItem) string { return it.Unit }, ix.units, &diff.MissingUnits)
	collect(func(it *entity.RawLineItem) string { return it.EstimateUnit }, ix.units, &diff.MissingEstimateUnits)

	// Materials are collected with the creation placeholder stripped, and
	// rows the bridge already resolved are not re-created.
	diff.MaterialUnits = map[string]string{}
	seenMaterials := map[string]bool{}
	for i := range items {
		if items[i].MaterialRef != nil {
			continue
		}
		name := targetName(items[i].SupplierMaterialName)
		if name == "" || ix.materials.find(name) != nil {
			continue
		}
		key := normalize.Generic(name)
		if !seenMaterials[key] {
			seenMaterials[key] = true
			diff.MissingMaterials = append(diff.MissingMaterials, name)
		}
		if unit := strings.TrimSpace(items[i].Unit); unit != "" {
			if _, exists := diff.MaterialUnits[key]; !exists {
				diff.MaterialUnits[key] = unit
			}
		}
	}

	return diff
}

// BindItems rewrites every line item's text references to resolved catalog
// refs, using the snapshot extended with whatever the saga just created.
// Returns a new slice; the input is not mutated.
func BindItems(items []entity.RawLineItem, orgRef *entity.EntityRef, ix *catalogIndex) []entity.RawLineItem {
	out := make([]entity.RawLineItem, len(items))
	copy(out, items)

	for i := range out {
		it := &out[i]
		it.OrganizationRef = orgRef
		it.ProjectRef = ix.projects.find(it.ProjectName)
		it.WarehouseRef = ix.warehouses.find(it.WarehouseName)
		it.WorkTypeRef = ix.workTypes.find(it.WorkType)
		it.CharacteristicRef = ix.characteristics.find(it.Characteristic)
		it.UnitRef = ix.units.find(it.Unit)
		it.EstimateUnitRef = ix.units.find(it.EstimateUnit)
		// a resolution the bridge already delivered is kept when the
		// index has nothing better
		if ref := ix.materials.find(targetName(it.SupplierMaterialName)); ref != nil {
			it.MaterialRef = ref
		}
	}

	return out
}
