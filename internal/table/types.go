// Package table implements the single-table operations Rowbench exposes:
// schema lookup, filtered search, surrogate key allocation, and one-row
// insert/update with per-column type coercion.
package table

import "strings"

// FieldType is the normalized column type used for value coercion.
type FieldType string

const (
	TypeString  FieldType = "STRING"
	TypeInt64   FieldType = "INT64"
	TypeFloat64 FieldType = "FLOAT64"
	TypeBool    FieldType = "BOOL"
)

// ColumnSchema describes one column of the fronted table.
type ColumnSchema struct {
	// Name is the column name.
	Name string

	// Type is the normalized field type.
	Type FieldType

	// DeclaredType is the type name as reported by the warehouse driver.
	DeclaredType string
}

// Row is one result row, keyed by column name.
type Row map[string]any

// NormalizeType maps a driver-reported type name onto a FieldType.
// Unknown types fall back to TypeString.
func NormalizeType(declared string) FieldType {
	t := strings.ToUpper(declared)
	switch {
	case strings.Contains(t, "BOOL"):
		return TypeBool
	case strings.Contains(t, "INT"):
		return TypeInt64
	case strings.Contains(t, "DOUBLE"),
		strings.Contains(t, "FLOAT"),
		strings.Contains(t, "REAL"),
		strings.Contains(t, "NUMERIC"),
		strings.Contains(t, "DECIMAL"):
		return TypeFloat64
	default:
		return TypeString
	}
}
