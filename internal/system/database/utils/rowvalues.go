package utils

import "strconv"

// ParseInt64Column converts a generic row value to int64. The MySQL text
// protocol returns numeric columns as strings, the binary protocol and
// sqlmock return int64.
func ParseInt64Column(v interface{}) (int64, bool) {
	switch value := v.(type) {
	case int64:
		return value, true
	case int:
		return int64(value), true
	case string:
		parsed, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return 0, false
		}
		return parsed, true
	default:
		return 0, false
	}
}

// ParseBoolColumn converts a generic row value to bool. MySQL stores
// booleans as TINYINT(1).
func ParseBoolColumn(v interface{}) (bool, bool) {
	switch value := v.(type) {
	case bool:
		return value, true
	case int64:
		return value != 0, true
	case string:
		parsed, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return false, false
		}
		return parsed != 0, true
	default:
		return false, false
	}
}
