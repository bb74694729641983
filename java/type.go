package java

import (
	"strings"
)

// Type is a type reference as written in a declaration, reduced to its
// erasure: generic arguments are dropped, array dimensions are counted.
type Type struct {
	Name       string
	ArrayDepth int
}

// ParseType parses a type as written, such as "java.util.List<String>[]" or
// "T...". Varargs count as one array dimension.
func ParseType(s string) Type {
	s = strings.TrimSpace(s)
	depth := 0
	if strings.HasSuffix(s, "...") {
		s = strings.TrimSpace(strings.TrimSuffix(s, "..."))
		depth++
	}
	for strings.HasSuffix(s, "[]") {
		s = strings.TrimSpace(strings.TrimSuffix(s, "[]"))
		depth++
	}
	return Type{Name: stripTypeArguments(s), ArrayDepth: depth}
}

func (t Type) String() string {
	var sb strings.Builder
	sb.WriteString(t.Name)
	for i := 0; i < t.ArrayDepth; i++ {
		sb.WriteString("[]")
	}
	return sb.String()
}

// SimpleName returns the last segment of the type name.
func (t Type) SimpleName() string {
	return SimpleName(t.Name)
}

func (t Type) IsVoid() bool {
	return t.Name == "void" && t.ArrayDepth == 0
}

// SimpleName returns the part of a dotted name after the last dot, ignoring
// any generic arguments.
func SimpleName(name string) string {
	name = stripTypeArguments(name)
	if i := strings.LastIndex(name, "."); i >= 0 {
		return name[i+1:]
	}
	return name
}

// TypeVariable returns the name declared by a type parameter such as
// "T extends Comparable<T>".
func TypeVariable(param string) string {
	param = strings.TrimSpace(param)
	if i := strings.IndexAny(param, " \t<"); i >= 0 {
		return param[:i]
	}
	return param
}

func stripTypeArguments(s string) string {
	if !strings.Contains(s, "<") {
		return strings.TrimSpace(s)
	}
	var sb strings.Builder
	depth := 0
	for _, ch := range s {
		switch {
		case ch == '<':
			depth++
		case ch == '>':
			depth--
		case depth == 0:
			sb.WriteRune(ch)
		}
	}
	return strings.TrimSpace(sb.String())
}
