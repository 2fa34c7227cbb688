package core

import (
	"testing"
	"time"

	"github.com/VortexWeb-Dev/mondus-spa-importer/internal/crm"
)

// ----------------------------------------------------------------------------
// Numeric coercion
// ----------------------------------------------------------------------------

func TestToFloat(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantValid bool
		want      float64
	}{
		{name: "plain integer", input: "123", wantValid: true, want: 123},
		{name: "decimal", input: "123.45", wantValid: true, want: 123.45},
		{name: "negative", input: "-456", wantValid: true, want: -456},
		{name: "currency with separators", input: "$1,200.50", wantValid: true, want: 1200.5},
		{name: "currency suffix", input: "1200.50 USD", wantValid: true, want: 1200.5},
		{name: "letters only", input: "abc", wantValid: false},
		{name: "only punctuation", input: "$,", wantValid: false},
		{name: "multiple dots", input: "1.2.3", wantValid: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ToFloat(tt.input)
			if got.Valid != tt.wantValid {
				t.Fatalf("ToFloat(%q).Valid = %v, want %v", tt.input, got.Valid, tt.wantValid)
			}
			if got.Valid && got.Float != tt.want {
				t.Errorf("ToFloat(%q) = %v, want %v", tt.input, got.Float, tt.want)
			}
		})
	}
}

func TestToIntTruncatesTowardZero(t *testing.T) {
	tests := []struct {
		input string
		want  int64
	}{
		{"7.9", 7},
		{"-7.9", -7},
		{"$1,200.50", 1200},
		{"42", 42},
	}
	for _, tt := range tests {
		got := ToInt(tt.input)
		if !got.Valid {
			t.Fatalf("ToInt(%q) invalid, want %d", tt.input, tt.want)
		}
		if got.Int != tt.want {
			t.Errorf("ToInt(%q) = %d, want %d", tt.input, got.Int, tt.want)
		}
	}

	if ToInt("n/a").Valid {
		t.Error("ToInt(n/a) should be invalid")
	}
}

// ----------------------------------------------------------------------------
// Boolean coercion
// ----------------------------------------------------------------------------

func TestToBool(t *testing.T) {
	truthy := []string{"true", "True", "YES", "1", "ON", "on"}
	for _, in := range truthy {
		got := ToBool(in)
		if !got.Valid || !got.Bool {
			t.Errorf("ToBool(%q) = %+v, want true", in, got)
		}
	}

	falsy := []string{"false", "No", "0", "off", "OFF"}
	for _, in := range falsy {
		got := ToBool(in)
		if !got.Valid || got.Bool {
			t.Errorf("ToBool(%q) = %+v, want false", in, got)
		}
	}

	invalid := []string{"maybe", "2", "enabled", ""}
	for _, in := range invalid {
		if ToBool(in).Valid {
			t.Errorf("ToBool(%q) should be invalid", in)
		}
	}
}

// ----------------------------------------------------------------------------
// Date coercion
// ----------------------------------------------------------------------------

func TestToTime(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string // RFC3339 in UTC
	}{
		{name: "iso date", input: "2024-03-15", want: "2024-03-15T00:00:00Z"},
		{name: "iso datetime", input: "2024-03-15T10:30:00Z", want: "2024-03-15T10:30:00Z"},
		{name: "space separated", input: "2024-03-15 10:30:00", want: "2024-03-15T10:30:00Z"},
		{name: "us slashes", input: "03/15/2024", want: "2024-03-15T00:00:00Z"},
		{name: "month name", input: "Mar 15, 2024", want: "2024-03-15T00:00:00Z"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ToTime(tt.input)
			if !got.Valid {
				t.Fatalf("ToTime(%q) invalid", tt.input)
			}
			if s := got.Time.UTC().Format(time.RFC3339); s != tt.want {
				t.Errorf("ToTime(%q) = %s, want %s", tt.input, s, tt.want)
			}
		})
	}

	for _, in := range []string{"not a date", "2024-13-45", "15th of March"} {
		if ToTime(in).Valid {
			t.Errorf("ToTime(%q) should be invalid", in)
		}
	}
}

// ----------------------------------------------------------------------------
// Sanitize dispatch
// ----------------------------------------------------------------------------

func TestSanitize(t *testing.T) {
	tests := []struct {
		name      string
		raw       string
		fieldType crm.FieldType
		wantValid bool
		want      any
	}{
		{name: "budget with currency", raw: "$1,200.50", fieldType: crm.FieldDouble, wantValid: true, want: 1200.5},
		{name: "integer truncation", raw: "9.7", fieldType: crm.FieldInteger, wantValid: true, want: int64(9)},
		{name: "boolean yes", raw: "Yes", fieldType: crm.FieldBoolean, wantValid: true, want: true},
		{name: "datetime iso", raw: "2024-03-15T10:30:00Z", fieldType: crm.FieldDateTime, wantValid: true, want: "2024-03-15T10:30:00Z"},
		{name: "string trims", raw: "  Acme  ", fieldType: crm.FieldString, wantValid: true, want: "Acme"},
		{name: "unknown type stringifies", raw: " x ", fieldType: crm.FieldType("money"), wantValid: true, want: "x"},
		{name: "empty is null", raw: "", fieldType: crm.FieldString, wantValid: false, want: nil},
		{name: "whitespace is null", raw: "   ", fieldType: crm.FieldDouble, wantValid: false, want: nil},
		{name: "bad number is null", raw: "n/a", fieldType: crm.FieldDouble, wantValid: false, want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Sanitize(tt.raw, tt.fieldType)
			if got.Valid != tt.wantValid {
				t.Fatalf("Sanitize(%q, %s).Valid = %v, want %v", tt.raw, tt.fieldType, got.Valid, tt.wantValid)
			}
			if got.Valid && got.Payload() != tt.want {
				t.Errorf("Sanitize(%q, %s).Payload() = %v, want %v", tt.raw, tt.fieldType, got.Payload(), tt.want)
			}
		})
	}
}

// ----------------------------------------------------------------------------
// Enum resolution
// ----------------------------------------------------------------------------

func TestResolveEnum(t *testing.T) {
	options := []crm.EnumOption{
		{ID: "1", Value: "Open"},
		{ID: "2", Value: "In Progress"},
		{ID: "3", Value: "open"}, // first match wins over this one
	}

	tests := []struct {
		input  string
		wantID string
		wantOK bool
	}{
		{"Open", "1", true},
		{"open", "1", true},
		{"OPEN", "1", true},
		{"in progress", "2", true},
		{"Closed", "", false},
		{"1", "", false}, // identifiers never match, only display values
	}

	for _, tt := range tests {
		id, ok := ResolveEnum(tt.input, options)
		if ok != tt.wantOK || id != tt.wantID {
			t.Errorf("ResolveEnum(%q) = (%q, %v), want (%q, %v)", tt.input, id, ok, tt.wantID, tt.wantOK)
		}
	}
}
