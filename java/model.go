// Package java models the program element tree handed over by a host
// toolchain and indexes it for the documentation stages.
package java

import "strings"

type ElementKind string

const (
	KindPackage          ElementKind = "package"
	KindClass            ElementKind = "class"
	KindInterface        ElementKind = "interface"
	KindAnnotationType   ElementKind = "annotation-type"
	KindEnum             ElementKind = "enum"
	KindRecord           ElementKind = "record"
	KindMethod           ElementKind = "method"
	KindConstructor      ElementKind = "constructor"
	KindField            ElementKind = "field"
	KindEnumConstant     ElementKind = "enum-constant"
	KindAnnotationMember ElementKind = "annotation-member"
)

// IsType reports whether elements of this kind declare a type.
func (k ElementKind) IsType() bool {
	switch k {
	case KindClass, KindInterface, KindAnnotationType, KindEnum, KindRecord:
		return true
	}
	return false
}

// IsMember reports whether elements of this kind are type members other
// than nested types.
func (k ElementKind) IsMember() bool {
	switch k {
	case KindMethod, KindConstructor, KindField, KindEnumConstant, KindAnnotationMember:
		return true
	}
	return false
}

// IsExecutable reports whether elements of this kind have a signature.
func (k ElementKind) IsExecutable() bool {
	return k == KindMethod || k == KindConstructor || k == KindAnnotationMember
}

func (k ElementKind) Valid() bool {
	return k == KindPackage || k.IsType() || k.IsMember()
}

// Element is a node of the host element tree: a package, a type or a member.
// The core treats elements as read-only.
type Element struct {
	Kind          ElementKind `json:"kind" yaml:"kind"`
	Name          string      `json:"name" yaml:"name"`
	QualifiedName string      `json:"qualifiedName,omitempty" yaml:"qualifiedName,omitempty"`

	Modifiers      []string    `json:"modifiers,omitempty" yaml:"modifiers,omitempty"`
	TypeParameters []string    `json:"typeParameters,omitempty" yaml:"typeParameters,omitempty"`
	SuperType      string      `json:"superType,omitempty" yaml:"superType,omitempty"`
	Interfaces     []string    `json:"interfaces,omitempty" yaml:"interfaces,omitempty"`
	Parameters     []Parameter `json:"parameters,omitempty" yaml:"parameters,omitempty"`
	ReturnType     string      `json:"returnType,omitempty" yaml:"returnType,omitempty"`
	Throws         []string    `json:"throws,omitempty" yaml:"throws,omitempty"`

	// Default is the default value of an annotation member, in the same
	// representation as annotation values.
	Default any `json:"default,omitempty" yaml:"default,omitempty"`
	// Constant is the constant expression of a field, as written.
	Constant string `json:"constant,omitempty" yaml:"constant,omitempty"`
	Source   string `json:"source,omitempty" yaml:"source,omitempty"`

	// Comment is the raw documentation comment; nil when the element has none.
	Comment     *string      `json:"comment,omitempty" yaml:"comment,omitempty"`
	Annotations []Annotation `json:"annotations,omitempty" yaml:"annotations,omitempty"`
	Members     []*Element   `json:"members,omitempty" yaml:"members,omitempty"`
}

func (e *Element) HasModifier(modifier string) bool {
	for _, m := range e.Modifiers {
		if m == modifier {
			return true
		}
	}
	return false
}

func (e *Element) IsStatic() bool  { return e.HasModifier("static") }
func (e *Element) IsPrivate() bool { return e.HasModifier("private") }

// ReturnsVoid reports whether a method returns nothing. Constructors count
// as void.
func (e *Element) ReturnsVoid() bool {
	if e.Kind == KindConstructor {
		return true
	}
	return e.ReturnType == "" || ParseType(e.ReturnType).IsVoid()
}

// Signature returns the member part of a member id: "name(T1,T2)" for
// executables, "name" otherwise. Parameter types are erased.
func (e *Element) Signature() string {
	if !e.Kind.IsExecutable() {
		return e.Name
	}
	types := make([]string, len(e.Parameters))
	for i, p := range e.Parameters {
		types[i] = ParseType(p.Type).String()
	}
	return e.Name + "(" + strings.Join(types, ",") + ")"
}

// CommentText returns the raw comment and whether the element has one.
func (e *Element) CommentText() (string, bool) {
	if e.Comment == nil {
		return "", false
	}
	return *e.Comment, true
}

// Doc returns a pointer to s, for building elements with comments.
func Doc(s string) *string {
	return &s
}
