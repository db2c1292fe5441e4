package table

import (
	"strconv"
	"strings"
)

// boolTruthy is the set of raw strings (lowercased) that coerce to true.
var boolTruthy = map[string]bool{
	"true": true, "1": true, "t": true, "y": true, "yes": true,
}

// Coerce converts a user-typed raw string into the typed value bound for a
// column of type t.
//
// Blank input always becomes NULL, and so do numeric parse failures. Booleans
// are true only for {true,1,t,y,yes}; everything else, including garbage,
// is false. Any other type passes the string through unchanged.
func Coerce(raw string, t FieldType) any {
	if strings.TrimSpace(raw) == "" {
		return nil
	}

	switch t {
	case TypeInt64:
		// Parse as float first so "3.9" lands as 3, matching how the
		// input widgets hand back numbers.
		f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			return nil
		}
		return int64(f)

	case TypeFloat64:
		f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			return nil
		}
		return f

	case TypeBool:
		return boolTruthy[strings.ToLower(strings.TrimSpace(raw))]

	default:
		return raw
	}
}
