package core

import (
	"errors"
	"fmt"
	"strings"

	"github.com/VortexWeb-Dev/mondus-spa-importer/internal/crm"
)

// ErrNoMapping is returned when the operator mapped no field to any column.
var ErrNoMapping = errors.New("no fields mapped to source columns")

// MissingRequiredFieldsError reports every required field the operator's
// mapping left uncovered. A run is rejected before any row is processed.
type MissingRequiredFieldsError struct {
	FieldIDs []string
}

func (e *MissingRequiredFieldsError) Error() string {
	return fmt.Sprintf("missing required fields: %s", strings.Join(e.FieldIDs, ", "))
}

// MappingPair is one operator choice: this CRM field reads from that
// source column.
type MappingPair struct {
	FieldID string `json:"fieldId"`
	Column  string `json:"column"`
}

// FieldMapping is a validated mapping from CRM field ID to the source
// column feeding it.
type FieldMapping map[string]string

// ResolveMapping validates the operator-supplied pairs against the active
// field definitions. Pairs with an empty column are discarded; when a
// field appears twice the last pair wins. Fails if nothing remains mapped
// or if any required field is left uncovered.
func ResolveMapping(pairs []MappingPair, fields []crm.FieldDefinition) (FieldMapping, error) {
	m := make(FieldMapping, len(pairs))
	for _, p := range pairs {
		if p.FieldID == "" || strings.TrimSpace(p.Column) == "" {
			continue
		}
		m[p.FieldID] = p.Column
	}
	if len(m) == 0 {
		return nil, ErrNoMapping
	}

	var missing []string
	for _, f := range fields {
		if f.Required && m[f.ID] == "" {
			missing = append(missing, f.ID)
		}
	}
	if len(missing) > 0 {
		return nil, &MissingRequiredFieldsError{FieldIDs: missing}
	}

	return m, nil
}

// SuggestMapping proposes pairs for columns whose header equals a field
// title, case-insensitively. Operators can amend the result before
// resolving it.
func SuggestMapping(fields []crm.FieldDefinition, columns []string) []MappingPair {
	var pairs []MappingPair
	for _, f := range fields {
		for _, col := range columns {
			if strings.EqualFold(col, f.Title) {
				pairs = append(pairs, MappingPair{FieldID: f.ID, Column: col})
				break
			}
		}
	}
	return pairs
}
