package core

import (
	"context"
	"fmt"
	"strings"

	"github.com/VortexWeb-Dev/mondus-spa-importer/internal/crm"
	"github.com/VortexWeb-Dev/mondus-spa-importer/internal/source"
)

// Converter turns one source record into a create-request payload, using
// the validated mapping and the active field definitions. Fields are
// visited in definition order so problem messages are deterministic.
type Converter struct {
	fields  []crm.FieldDefinition
	mapping FieldMapping
	files   *FileIngestor
}

// NewConverter creates a Converter. files may be nil when no field can
// carry URLs (tests); ingestion is then skipped and values pass through
// as strings.
func NewConverter(fields []crm.FieldDefinition, mapping FieldMapping, files *FileIngestor) *Converter {
	return &Converter{fields: fields, mapping: mapping, files: files}
}

// Convert builds the payload for one record. Every field problem in the
// row is collected; a row with any problem is not submitted. The returned
// payload is keyed by CRM field ID.
//
// Per-field rules, in order:
//   - missing/empty cell: problem if required, otherwise skip the field
//   - uncoercible value: problem if required, otherwise skip the field
//   - enumeration: resolve the display value to its option ID, problem on
//     no match
//   - string carrying URLs: ingest into inline file payloads; all
//     candidates failing is a problem only when the field is required
//   - anything else: assign the coerced value directly
func (c *Converter) Convert(ctx context.Context, rec source.Record) (map[string]any, []string) {
	payload := make(map[string]any)
	var problems []string

	for _, f := range c.fields {
		col, mapped := c.mapping[f.ID]
		if !mapped {
			continue
		}

		raw := rec[col]
		v := Sanitize(raw, f.Type)
		if !v.Valid {
			if f.Required {
				if strings.TrimSpace(raw) == "" {
					problems = append(problems, fmt.Sprintf("required field %q is empty", col))
				} else {
					problems = append(problems, fmt.Sprintf("invalid value for required field %q", f.Title))
				}
			}
			continue
		}

		if f.Type == crm.FieldEnumeration {
			id, ok := ResolveEnum(v.Str, f.EnumOptions)
			if !ok {
				problems = append(problems, fmt.Sprintf("no matching enum option for %q: %s", col, v.Str))
				continue
			}
			payload[f.ID] = id
			continue
		}

		if v.Kind == KindString && ContainsLinks(v.Str) && c.files != nil {
			files := c.files.Ingest(ctx, v.Str)
			if len(files) == 0 {
				if f.Required {
					problems = append(problems, fmt.Sprintf("no valid files for required field %q", col))
				}
				continue
			}
			payload[f.ID] = files
			continue
		}

		payload[f.ID] = v.Payload()
	}

	return payload, problems
}

// recordItem exposes the original record as the attempted item for
// outcomes produced before any payload existed.
func recordItem(rec source.Record) map[string]any {
	item := make(map[string]any, len(rec))
	for k, v := range rec {
		item[k] = v
	}
	return item
}
