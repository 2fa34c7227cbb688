// Package crm provides the REST client for the remote CRM item store.
// This package has no pipeline dependencies and can be used by any caller.
package crm

// FieldType is the declared type of a CRM field, as reported by
// crm.item.fields. Values the importer does not recognize fall through
// to string handling.
type FieldType string

const (
	FieldString      FieldType = "string"
	FieldInteger     FieldType = "integer"
	FieldDouble      FieldType = "double"
	FieldDate        FieldType = "date"
	FieldDateTime    FieldType = "datetime"
	FieldBoolean     FieldType = "boolean"
	FieldEnumeration FieldType = "enumeration"
	FieldFile        FieldType = "file"
)

// EnumOption is one allowed value of an enumeration field.
// ID is the canonical identifier the CRM expects in payloads;
// Value is the human-readable label shown to operators.
type EnumOption struct {
	ID    string `json:"id"`
	Value string `json:"value"`
}

// FieldDefinition is the remote-declared schema for one attribute of an
// entity type. Immutable for the duration of an import run.
type FieldDefinition struct {
	ID          string       `json:"id"`
	Title       string       `json:"title"`
	Type        FieldType    `json:"type"`
	Required    bool         `json:"isRequired"`
	EnumOptions []EnumOption `json:"enumOptions,omitempty"`
}

// EntityType identifies one configurable record kind in the CRM.
type EntityType struct {
	EntityTypeID int    `json:"entityTypeId"`
	Title        string `json:"title"`
}
