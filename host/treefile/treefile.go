// Package treefile reads and writes host element trees as YAML or JSON
// documents of the form
//
//	packages:
//	  - kind: package
//	    name: com.example
//	    members: [...]
//
// Annotation values are scalars, lists, or mappings: {enum, constant} for an
// enum constant, {class} for a class literal and {type, values} for a nested
// annotation.
package treefile

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/mongodb-university/yokedox/java"
)

// File is the document layout.
type File struct {
	Packages []*java.Element `json:"packages" yaml:"packages"`
}

// Load reads a tree from path, or from stdin when path is "-".
func Load(path string) ([]*java.Element, error) {
	if path == "-" {
		return Decode(os.Stdin)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	roots, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return roots, nil
}

// Decode reads a YAML or JSON tree. Unknown keys are errors.
func Decode(r io.Reader) ([]*java.Element, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var file File
	if err := dec.Decode(&file); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("decode tree: %w", err)
	}
	for _, pkg := range file.Packages {
		if err := normalize(pkg); err != nil {
			return nil, err
		}
	}
	return file.Packages, nil
}

// Encode writes roots in format "yaml" or "json".
func Encode(w io.Writer, roots []*java.Element, format string) error {
	file := File{Packages: roots}
	if file.Packages == nil {
		file.Packages = []*java.Element{}
	}
	switch format {
	case "yaml", "":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(file); err != nil {
			return fmt.Errorf("encode tree: %w", err)
		}
		return enc.Close()
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(file)
	default:
		return fmt.Errorf("unknown tree format %q", format)
	}
}

func normalize(e *java.Element) error {
	if e == nil {
		return nil
	}
	for i := range e.Annotations {
		a, err := annotation(e.Annotations[i])
		if err != nil {
			return fmt.Errorf("%s: %w", e.Name, err)
		}
		e.Annotations[i] = a
	}
	if e.Default != nil {
		v, err := value(e.Default)
		if err != nil {
			return fmt.Errorf("%s: default: %w", e.Name, err)
		}
		e.Default = v
	}
	for _, member := range e.Members {
		if err := normalize(member); err != nil {
			return err
		}
	}
	return nil
}

func annotation(a java.Annotation) (java.Annotation, error) {
	for i, pair := range a.ElementValuePairs {
		v, err := value(pair.Value)
		if err != nil {
			return a, fmt.Errorf("@%s(%s): %w", a.Type, pair.Name, err)
		}
		a.ElementValuePairs[i].Value = v
	}
	return a, nil
}

// value converts a decoded YAML value into an annotation value.
func value(v any) (any, error) {
	switch val := v.(type) {
	case []any:
		result := make([]any, len(val))
		for i, item := range val {
			converted, err := value(item)
			if err != nil {
				return nil, err
			}
			result[i] = converted
		}
		return result, nil
	case map[string]any:
		return mapping(val)
	default:
		return java.NormalizeValue(val), nil
	}
}

func mapping(m map[string]any) (any, error) {
	str := func(key string) (string, error) {
		s, ok := m[key].(string)
		if !ok {
			return "", fmt.Errorf("%q must be a string", key)
		}
		return s, nil
	}

	switch {
	case m["enum"] != nil:
		typ, err := str("enum")
		if err != nil {
			return nil, err
		}
		constant, err := str("constant")
		if err != nil {
			return nil, err
		}
		return java.EnumConstant{Type: typ, Constant: constant}, nil
	case m["class"] != nil:
		typ, err := str("class")
		if err != nil {
			return nil, err
		}
		return java.ClassLiteral{Type: typ}, nil
	case m["type"] != nil:
		typ, err := str("type")
		if err != nil {
			return nil, err
		}
		a := java.Annotation{Type: typ}
		pairs, _ := m["values"].([]any)
		for _, item := range pairs {
			pm, ok := item.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("@%s: values must be name/value mappings", typ)
			}
			name, _ := pm["name"].(string)
			v, err := value(pm["value"])
			if err != nil {
				return nil, err
			}
			a.ElementValuePairs = append(a.ElementValuePairs, java.ElementValuePair{Name: name, Value: v})
		}
		return a, nil
	}
	return nil, fmt.Errorf("unrecognized annotation value %v", m)
}
