package preprocess

import (
	"strconv"
	"strings"
)

// GetStringParam safely extracts a string parameter from the params map
func GetStringParam(params map[string]any, key string, defaultValue string) string {
	if val, ok := params[key]; ok {
		if strVal, ok := val.(string); ok {
			return strVal
		}
	}
	return defaultValue
}

// GetIntParam safely extracts an int parameter from the params map.
// YAML numbers arrive as int, form values as strings; both are accepted.
func GetIntParam(params map[string]any, key string, defaultValue int) int {
	if val, ok := params[key]; ok {
		switch v := val.(type) {
		case int:
			return v
		case int64:
			return int(v)
		case float64:
			return int(v)
		case string:
			if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
				return n
			}
		}
	}
	return defaultValue
}

// GetBoolParam safely extracts a bool parameter from the params map.
// Accepts native bools and the strings true/false, 1/0, yes/no, on/off (case-insensitive).
func GetBoolParam(params map[string]any, key string, defaultValue bool) bool {
	val, ok := params[key]
	if !ok {
		return defaultValue
	}
	switch v := val.(type) {
	case bool:
		return v
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "true", "1", "yes", "on":
			return true
		case "false", "0", "no", "off":
			return false
		}
	}
	return defaultValue
}
