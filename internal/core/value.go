package core

// value.go coerces raw cell strings into the CRM field's declared type.
//
// These functions handle the messy reality of user-provided spreadsheet
// data: currency symbols and thousand separators in numbers, many date
// formats, and assorted boolean spellings. All To* functions return a
// Value with Valid=false for empty or uncoercible input; the caller
// decides whether that is fatal for the row (required field) or merely
// omits the field from the payload.

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/VortexWeb-Dev/mondus-spa-importer/internal/crm"
)

// Kind tags the variants a sanitized value can take.
type Kind int

const (
	KindString Kind = iota
	KindInt
	KindFloat
	KindBool
	KindTime
)

// Value is a sanitized cell value. Exactly one of the typed fields is
// meaningful, selected by Kind. Valid=false signals "no usable value".
type Value struct {
	Kind  Kind
	Str   string
	Int   int64
	Float float64
	Bool  bool
	Time  time.Time
	Valid bool
}

// Payload returns the JSON-ready representation of the value.
// Timestamps render as ISO-8601 in UTC, matching what the CRM accepts.
func (v Value) Payload() any {
	switch v.Kind {
	case KindInt:
		return v.Int
	case KindFloat:
		return v.Float
	case KindBool:
		return v.Bool
	case KindTime:
		return v.Time.UTC().Format(time.RFC3339)
	default:
		return v.Str
	}
}

// nonNumericRegex matches every character stripped before number parsing.
var nonNumericRegex = regexp.MustCompile(`[^0-9.\-]+`)

// Layouts tried when parsing dates and datetimes. Datetime layouts come
// first so a time component is never silently discarded.
var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"01/02/2006 15:04:05",
	"01/02/2006 15:04",
	"2006-01-02",
	"2006/01/02",
	"2006.01.02",
	"01/02/2006",
	"1/2/2006",
	"01-02-2006",
	"02.01.2006",
	"Jan 2, 2006",
	"2 Jan 2006",
	"20060102",
}

// Sanitize coerces a raw cell string according to the field's declared
// type. It never returns an error; Valid=false means "unusable".
func Sanitize(raw string, ft crm.FieldType) Value {
	if strings.TrimSpace(raw) == "" {
		return Value{}
	}

	switch ft {
	case crm.FieldInteger:
		return ToInt(raw)
	case crm.FieldDouble:
		return ToFloat(raw)
	case crm.FieldDate, crm.FieldDateTime:
		return ToTime(raw)
	case crm.FieldBoolean:
		return ToBool(raw)
	default:
		return ToString(raw)
	}
}

// ToString trims surrounding whitespace. Never invalid unless empty.
func ToString(s string) Value {
	s = strings.TrimSpace(s)
	if s == "" {
		return Value{Kind: KindString}
	}
	return Value{Kind: KindString, Str: s, Valid: true}
}

// ToFloat strips everything that is not a digit, '.', or '-' (currency
// symbols, thousand separators) and parses the remainder as a float.
func ToFloat(s string) Value {
	cleaned := nonNumericRegex.ReplaceAllString(s, "")
	f, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return Value{Kind: KindFloat}
	}
	return Value{Kind: KindFloat, Float: f, Valid: true}
}

// ToInt parses like ToFloat, then truncates toward zero.
func ToInt(s string) Value {
	f := ToFloat(s)
	if !f.Valid {
		return Value{Kind: KindInt}
	}
	return Value{Kind: KindInt, Int: int64(math.Trunc(f.Float)), Valid: true}
}

// ToBool matches the accepted truthy and falsy spellings, case-insensitively.
// Anything outside both sets is invalid, not false.
func ToBool(s string) Value {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "yes", "1", "on":
		return Value{Kind: KindBool, Bool: true, Valid: true}
	case "false", "no", "0", "off":
		return Value{Kind: KindBool, Bool: false, Valid: true}
	default:
		return Value{Kind: KindBool}
	}
}

// ToTime parses a calendar date or date-time in any supported layout.
func ToTime(s string) Value {
	s = strings.TrimSpace(s)
	for _, layout := range timeLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return Value{Kind: KindTime, Time: t, Valid: true}
		}
	}
	return Value{Kind: KindTime}
}

// ResolveEnum matches a sanitized string against an enumeration field's
// option display values, case-insensitively, first match wins. Returns
// the option's canonical identifier.
func ResolveEnum(s string, options []crm.EnumOption) (string, bool) {
	for _, opt := range options {
		if strings.EqualFold(s, opt.Value) {
			return opt.ID, true
		}
	}
	return "", false
}
