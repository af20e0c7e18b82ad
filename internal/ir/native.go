package ir

import (
	"encoding/json"
	"fmt"
	"time"
)

// FromNative converts a Go value, as produced by database drivers, YAML and
// JSON decoders, or parquet readers, into a Value.
//
// Conversion rules:
//   - nil → Null
//   - signed and unsigned integers → Int
//   - float32, float64 → Double
//   - string, []byte → String
//   - bool → Boolean
//   - time.Time → String (RFC 3339)
//   - map[string]any → Object, []any → Array
func FromNative(v any) (Value, error) {
	switch val := v.(type) {
	case nil:
		return Null{}, nil
	case Value:
		return val, nil
	case int:
		return Int(val), nil
	case int8:
		return Int(val), nil
	case int16:
		return Int(val), nil
	case int32:
		return Int(val), nil
	case int64:
		return Int(val), nil
	case uint8:
		return Int(val), nil
	case uint16:
		return Int(val), nil
	case uint32:
		return Int(val), nil
	case uint64:
		if val > 1<<63-1 {
			return Double(float64(val)), nil
		}
		return Int(val), nil
	case uint:
		return FromNative(uint64(val))
	case float32:
		return Double(val), nil
	case float64:
		return Double(val), nil
	case json.Number:
		return numberValue(val)
	case string:
		return String(val), nil
	case []byte:
		return String(val), nil
	case bool:
		return Boolean(val), nil
	case time.Time:
		return String(val.UTC().Format(time.RFC3339Nano)), nil
	case []any:
		arr := make(Array, len(val))
		for i, elem := range val {
			conv, err := FromNative(elem)
			if err != nil {
				return nil, fmt.Errorf("array[%d]: %w", i, err)
			}
			arr[i] = conv
		}
		return arr, nil
	case map[string]any:
		obj := make(Object, len(val))
		for k, elem := range val {
			conv, err := FromNative(elem)
			if err != nil {
				return nil, fmt.Errorf("object[%q]: %w", k, err)
			}
			obj[k] = conv
		}
		return obj, nil
	default:
		return nil, fmt.Errorf("unsupported type: %T", v)
	}
}

// ToNative converts a Value into plain Go values suitable for database
// parameters and encoders. Objects and Arrays convert recursively.
func ToNative(v Value) any {
	switch val := v.(type) {
	case nil, Null:
		return nil
	case Int:
		return int64(val)
	case Double:
		return float64(val)
	case String:
		return string(val)
	case Boolean:
		return bool(val)
	case Object:
		out := make(map[string]any, len(val))
		for k, elem := range val {
			out[k] = ToNative(elem)
		}
		return out
	case Array:
		out := make([]any, len(val))
		for i, elem := range val {
			out[i] = ToNative(elem)
		}
		return out
	default:
		return nil
	}
}
