package mapsafe

// Get retrieves a typed value from a map[string]any. If the key is missing
// or the value cannot be converted, it returns the default value.
//
// Numeric lookups accept any machine integer or float width: decoders that
// populate map[string]any (msgpack in particular) pick the narrowest wire
// type, so a value written as int may come back as int8 or uint16.
func Get[T any](m map[string]any, key string, defaultValue T) T {
	val, ok := m[key]
	if !ok {
		return defaultValue
	}

	switch any(defaultValue).(type) {
	case int:
		if n, ok := asInt64(val); ok {
			return any(int(n)).(T)
		}
	case int64:
		if n, ok := asInt64(val); ok {
			return any(n).(T)
		}
	case float64:
		if f, ok := asFloat64(val); ok {
			return any(f).(T)
		}
	case string:
		if s, ok := val.(string); ok {
			return any(s).(T)
		}
	case bool:
		if b, ok := val.(bool); ok {
			return any(b).(T)
		}
	default:
		if v, ok := val.(T); ok {
			return v
		}
	}
	return defaultValue
}

func asInt64(val any) (int64, bool) {
	switch x := val.(type) {
	case int:
		return int64(x), true
	case int8:
		return int64(x), true
	case int16:
		return int64(x), true
	case int32:
		return int64(x), true
	case int64:
		return x, true
	case uint:
		return int64(x), true
	case uint8:
		return int64(x), true
	case uint16:
		return int64(x), true
	case uint32:
		return int64(x), true
	case uint64:
		return int64(x), true
	case float32:
		return int64(x), true
	case float64:
		return int64(x), true
	}
	return 0, false
}

func asFloat64(val any) (float64, bool) {
	switch x := val.(type) {
	case float32:
		return float64(x), true
	case float64:
		return x, true
	default:
		if n, ok := asInt64(val); ok {
			return float64(n), true
		}
	}
	return 0, false
}
