package entity

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// Field is one of the twelve canonical line item attributes the importer
// populates from a spreadsheet column.
type Field string

const (
	FieldSupplierMaterialName Field = "supplierMaterialName"
	FieldMaterialName         Field = "materialName"
	FieldQuantity             Field = "quantity"
	FieldEstimateQuantity     Field = "estimateQuantity"
	FieldUnit                 Field = "unit"
	FieldEstimateUnit         Field = "estimateUnit"
	FieldWorkType             Field = "workType"
	FieldCharacteristic       Field = "characteristic"
	FieldSize                 Field = "size"
	FieldDeliveryDate         Field = "deliveryDate"
	FieldPrice                Field = "price"
	FieldNote                 Field = "note"
)

// AllFields in stable order, for mapping editors and the CLI.
var AllFields = []Field{
	FieldSupplierMaterialName,
	FieldMaterialName,
	FieldQuantity,
	FieldEstimateQuantity,
	FieldUnit,
	FieldEstimateUnit,
	FieldWorkType,
	FieldCharacteristic,
	FieldSize,
	FieldDeliveryDate,
	FieldPrice,
	FieldNote,
}

// ColumnSkip marks a field the user chose not to import. An absent key means
// "no override, use the header heuristics".
const ColumnSkip = -1

// ColumnMapping maps canonical fields to zero-based column indexes.
type ColumnMapping map[Field]int

func (m ColumnMapping) Value() (driver.Value, error) {
	if m == nil {
		return nil, nil
	}
	return json.Marshal(m)
}

func (m *ColumnMapping) Scan(value interface{}) error {
	if value == nil {
		*m = nil
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return fmt.Errorf("failed to scan ColumnMapping: %v", value)
	}
	return json.Unmarshal(bytes, m)
}

// ColumnMappingRecord is the persisted per-user mapping override. Saving is
// always a full replacement of the blob, never a merge.
type ColumnMappingRecord struct {
	ID        string        `json:"id" gorm:"primaryKey;size:32"`
	UserID    string        `json:"user_id" gorm:"size:32;not null;uniqueIndex:idx_mapping_user_tenant"`
	TenantID  string        `json:"tenant_id" gorm:"size:32;not null;uniqueIndex:idx_mapping_user_tenant"`
	Mapping   ColumnMapping `json:"mapping" gorm:"type:jsonb"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

func (ColumnMappingRecord) TableName() string {
	return "import_column_mappings"
}
