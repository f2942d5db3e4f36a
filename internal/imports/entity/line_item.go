package entity

// EntityRef points a line item at a concrete catalog record.
type EntityRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// RawLineItem is one imported spreadsheet row. Text reference fields carry
// whatever the document said; the matching Ref fields are filled during
// reconciliation (or by the creation bridge) and stay nil until then.
type RawLineItem struct {
	RowNumber int `json:"row_number"`

	SupplierMaterialName string   `json:"supplier_material_name"`
	MaterialName         string   `json:"material_name"`
	Quantity             *float64 `json:"quantity"`
	EstimateQuantity     *float64 `json:"estimate_quantity"`
	Unit                 string   `json:"unit"`
	EstimateUnit         string   `json:"estimate_unit"`
	WorkType             string   `json:"work_type"`
	Characteristic       string   `json:"characteristic"`
	Size                 string   `json:"size"`
	DeliveryDate         string   `json:"delivery_date"` // YYYY-MM-DD or empty
	Price                *float64 `json:"price"`
	Note                 string   `json:"note"`

	// Scoped to the whole document, inherited from the metadata block.
	OrganizationName string `json:"organization_name"`
	ProjectName      string `json:"project_name"`
	WarehouseName    string `json:"warehouse_name"`
	Applicant        string `json:"applicant"`

	IsImported bool `json:"is_imported"`

	OrganizationRef   *EntityRef `json:"organization_ref,omitempty"`
	ProjectRef        *EntityRef `json:"project_ref,omitempty"`
	WarehouseRef      *EntityRef `json:"warehouse_ref,omitempty"`
	WorkTypeRef       *EntityRef `json:"work_type_ref,omitempty"`
	CharacteristicRef *EntityRef `json:"characteristic_ref,omitempty"`
	UnitRef           *EntityRef `json:"unit_ref,omitempty"`
	EstimateUnitRef   *EntityRef `json:"estimate_unit_ref,omitempty"`
	MaterialRef       *EntityRef `json:"material_ref,omitempty"`
}

// HeaderMetadata is the document-level block above the line item table.
type HeaderMetadata struct {
	OrganizationName string `json:"organization_name"`
	ProjectName      string `json:"project_name"`
	WarehouseName    string `json:"warehouse_name"`
	Applicant        string `json:"applicant"`
	DocumentDate     string `json:"document_date"`
	DocumentNumber   string `json:"document_number"`
}

// ReconciliationDiff lists every referenced name that has no catalog match,
// one bucket per catalog type, deduplicated by normalized value.
type ReconciliationDiff struct {
	MissingOrganization    string   `json:"missing_organization,omitempty"`
	MissingProject         string   `json:"missing_project,omitempty"`
	MissingWarehouse       string   `json:"missing_warehouse,omitempty"`
	MissingWorkTypes       []string `json:"missing_work_types"`
	MissingCharacteristics []string `json:"missing_characteristics"`
	MissingUnits           []string `json:"missing_units"`
	MissingEstimateUnits   []string `json:"missing_estimate_units"`
	MissingMaterials       []string `json:"missing_materials"`

	// MaterialUnits keeps, per normalized missing material name, the unit
	// spelling its rows use, so the created material can be linked to it.
	MaterialUnits map[string]string `json:"-"`
}

// Empty reports whether confirming the import would create nothing.
func (d *ReconciliationDiff) Empty() bool {
	return d.MissingProject == "" &&
		d.MissingWarehouse == "" &&
		len(d.MissingWorkTypes) == 0 &&
		len(d.MissingCharacteristics) == 0 &&
		len(d.MissingUnits) == 0 &&
		len(d.MissingEstimateUnits) == 0 &&
		len(d.MissingMaterials) == 0
}
