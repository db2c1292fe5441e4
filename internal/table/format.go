package table

import (
	"fmt"
	"strconv"
)

// FormatValue renders a stored scalar back into form-input text.
// NULL becomes the empty string, mirroring the blank-to-NULL coercion.
func FormatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case []byte:
		return string(val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32)
	default:
		return fmt.Sprintf("%v", v)
	}
}

// AsInt64 converts the scalar shapes drivers hand back for integer columns.
func AsInt64(v any) (int64, bool) {
	switch val := v.(type) {
	case int64:
		return val, true
	case int32:
		return int64(val), true
	case int:
		return int64(val), true
	case uint64:
		return int64(val), true
	case float64:
		return int64(val), true
	default:
		return 0, false
	}
}
