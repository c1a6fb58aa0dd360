package domain

import (
	"fmt"
	"math"
	"sort"
	"strconv"
)

// NormalizeValue coerces a property value to the canonical Go type of the
// given datatype. nil always means "unset". An empty datatype accepts any of
// the canonical types.
func NormalizeValue(datatype string, v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	switch datatype {
	case "string":
		switch val := v.(type) {
		case string:
			return val, nil
		case fmt.Stringer:
			return val.String(), nil
		}
	case "integer":
		switch val := v.(type) {
		case int:
			return int64(val), nil
		case int32:
			return int64(val), nil
		case int64:
			return val, nil
		case uint32:
			return int64(val), nil
		case float64:
			if val == math.Trunc(val) {
				return int64(val), nil
			}
		case string:
			n, err := strconv.ParseInt(val, 10, 64)
			if err == nil {
				return n, nil
			}
		}
	case "boolean":
		switch val := v.(type) {
		case bool:
			return val, nil
		case string:
			b, err := strconv.ParseBool(val)
			if err == nil {
				return b, nil
			}
		}
	case "":
		switch val := v.(type) {
		case string, int64, bool:
			return val, nil
		case int:
			return int64(val), nil
		case int32:
			return int64(val), nil
		case float64:
			if val == math.Trunc(val) {
				return int64(val), nil
			}
		}
	}
	return nil, fmt.Errorf("value %v (%T) is not a valid %s", v, v, datatypeName(datatype))
}

// ValuesEqual compares two normalized property values
func ValuesEqual(a, b any) bool {
	return a == b
}

// FormatValue renders a property value for logs and journal rows
func FormatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return "<unset>"
	case string:
		return strconv.Quote(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case bool:
		return strconv.FormatBool(val)
	default:
		return fmt.Sprintf("%v", val)
	}
}

func datatypeName(datatype string) string {
	if datatype == "" {
		return "property value"
	}
	return datatype
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
