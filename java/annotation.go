package java

import "fmt"

// Annotation is an annotation use: the annotation type and its element
// values in declaration order.
type Annotation struct {
	Type              string             `json:"type" yaml:"type"`
	ElementValuePairs []ElementValuePair `json:"values,omitempty" yaml:"values,omitempty"`
}

// ElementValuePair is one name = value pair of an annotation use. Value is
// one of string, bool, int64, float64, EnumConstant, ClassLiteral,
// Annotation or []any holding any of these.
type ElementValuePair struct {
	Name  string `json:"name" yaml:"name"`
	Value any    `json:"value" yaml:"value"`
}

// EnumConstant is an enum constant used as an annotation value.
type EnumConstant struct {
	Type     string `json:"enum" yaml:"enum"`
	Constant string `json:"constant" yaml:"constant"`
}

// ClassLiteral is a class literal such as String.class used as an
// annotation value.
type ClassLiteral struct {
	Type string `json:"class" yaml:"class"`
}

// NormalizeValue converts a Go value produced by a host adapter into the
// annotation value representation: integers widen to int64, floats to
// float64, and slices to []any. Unsupported values become their string form.
func NormalizeValue(v any) any {
	switch val := v.(type) {
	case nil:
		return nil
	case string, bool, int64, float64, EnumConstant, ClassLiteral:
		return val
	case Annotation:
		return normalizeAnnotation(val)
	case *Annotation:
		return normalizeAnnotation(*val)
	case int:
		return int64(val)
	case int8:
		return int64(val)
	case int16:
		return int64(val)
	case int32:
		return int64(val)
	case uint:
		return int64(val)
	case uint8:
		return int64(val)
	case uint16:
		return int64(val)
	case uint32:
		return int64(val)
	case uint64:
		return int64(val)
	case float32:
		return float64(val)
	case []any:
		result := make([]any, len(val))
		for i, item := range val {
			result[i] = NormalizeValue(item)
		}
		return result
	case []string:
		result := make([]any, len(val))
		for i, item := range val {
			result[i] = item
		}
		return result
	default:
		return fmt.Sprint(val)
	}
}

func normalizeAnnotation(a Annotation) Annotation {
	result := Annotation{Type: a.Type}
	if a.ElementValuePairs != nil {
		result.ElementValuePairs = make([]ElementValuePair, len(a.ElementValuePairs))
		for i, pair := range a.ElementValuePairs {
			result.ElementValuePairs[i] = ElementValuePair{Name: pair.Name, Value: NormalizeValue(pair.Value)}
		}
	}
	return result
}
