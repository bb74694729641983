// Package javasrc builds a host element tree from Java source files with
// tree-sitter.
package javasrc

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_java "github.com/tree-sitter/tree-sitter-java/bindings/go"

	"github.com/mongodb-university/yokedox/java"
)

var language = sitter.NewLanguage(tree_sitter_java.Language())

// File is the declarations of one compilation unit.
type File struct {
	Path           string
	Package        string
	PackageComment *string // from package-info.java
	Types          []*java.Element
	SyntaxErrors   bool // the tree contains error nodes; declarations are best effort
}

// ParseFile extracts the type declarations of a compilation unit. path only
// labels the Source of each element.
func ParseFile(path string, src []byte) (*File, error) {
	parser := sitter.NewParser()
	defer parser.Close()
	if err := parser.SetLanguage(language); err != nil {
		return nil, fmt.Errorf("set language: %w", err)
	}

	tree := parser.Parse(src, nil)
	if tree == nil {
		return nil, errors.New("parse failed")
	}
	defer tree.Close()

	root := tree.RootNode()
	x := &extractor{path: path, src: src}
	file := &File{Path: path, SyntaxErrors: root.HasError()}

	var pending *string
	for i := uint(0); i < root.NamedChildCount(); i++ {
		child := root.NamedChild(i)
		if child == nil {
			continue
		}
		switch child.Kind() {
		case "block_comment":
			if text := x.text(child); strings.HasPrefix(text, "/**") {
				pending = &text
			}
			continue
		case "line_comment":
			continue
		case "package_declaration":
			file.Package = x.name(child)
			file.PackageComment = pending
		default:
			if t := x.declaration(child, pending); t != nil && t.Kind.IsType() {
				file.Types = append(file.Types, t)
			}
		}
		pending = nil
	}
	return file, nil
}

type extractor struct {
	path string
	src  []byte
}

func (x *extractor) text(n *sitter.Node) string {
	if n == nil {
		return ""
	}
	return n.Utf8Text(x.src)
}

func (x *extractor) source(n *sitter.Node) string {
	return fmt.Sprintf("%s:%d", x.path, n.StartPosition().Row+1)
}

// name returns the dotted name of a package declaration or annotation.
func (x *extractor) name(n *sitter.Node) string {
	for i := uint(0); i < n.NamedChildCount(); i++ {
		child := n.NamedChild(i)
		if child != nil && (child.Kind() == "identifier" || child.Kind() == "scoped_identifier") {
			return x.text(child)
		}
	}
	return ""
}

// members walks a declaration body. A doc comment belongs to the declaration
// that immediately follows it.
func (x *extractor) members(body *sitter.Node) []*java.Element {
	if body == nil {
		return nil
	}
	var result []*java.Element
	var pending *string
	for i := uint(0); i < body.NamedChildCount(); i++ {
		child := body.NamedChild(i)
		if child == nil {
			continue
		}
		switch child.Kind() {
		case "block_comment":
			if text := x.text(child); strings.HasPrefix(text, "/**") {
				pending = &text
			}
			continue
		case "line_comment":
			continue
		case "enum_body_declarations":
			result = append(result, x.members(child)...)
		case "field_declaration", "constant_declaration":
			result = append(result, x.fields(child, pending)...)
		default:
			if e := x.declaration(child, pending); e != nil {
				result = append(result, e)
			}
		}
		pending = nil
	}
	return result
}

// declaration converts a type, method, constructor, enum constant or
// annotation member. Other nodes yield nil.
func (x *extractor) declaration(n *sitter.Node, comment *string) *java.Element {
	e := &java.Element{
		Name:    x.text(n.ChildByFieldName("name")),
		Comment: comment,
		Source:  x.source(n),
	}
	x.modifiers(n, e)

	switch n.Kind() {
	case "class_declaration":
		e.Kind = java.KindClass
		if sup := n.ChildByFieldName("superclass"); sup != nil {
			e.SuperType = x.text(firstNamed(sup))
		}
		e.Interfaces = x.typeList(n.ChildByFieldName("interfaces"))
	case "interface_declaration":
		e.Kind = java.KindInterface
		e.Interfaces = x.typeList(childOfKind(n, "extends_interfaces"))
	case "enum_declaration":
		e.Kind = java.KindEnum
		e.Interfaces = x.typeList(n.ChildByFieldName("interfaces"))
	case "record_declaration":
		e.Kind = java.KindRecord
		e.Parameters = x.parameters(n.ChildByFieldName("parameters"))
		e.Interfaces = x.typeList(n.ChildByFieldName("interfaces"))
	case "annotation_type_declaration":
		e.Kind = java.KindAnnotationType
	case "method_declaration":
		e.Kind = java.KindMethod
		e.ReturnType = x.text(n.ChildByFieldName("type")) + x.text(n.ChildByFieldName("dimensions"))
		e.Parameters = x.parameters(n.ChildByFieldName("parameters"))
		e.Throws = x.throws(n)
	case "constructor_declaration":
		e.Kind = java.KindConstructor
		e.Parameters = x.parameters(n.ChildByFieldName("parameters"))
		e.Throws = x.throws(n)
	case "enum_constant":
		e.Kind = java.KindEnumConstant
	case "annotation_type_element_declaration":
		e.Kind = java.KindAnnotationMember
		e.ReturnType = x.text(n.ChildByFieldName("type")) + x.text(n.ChildByFieldName("dimensions"))
		if v := n.ChildByFieldName("value"); v != nil {
			e.Default = x.value(v)
		}
	default:
		return nil
	}

	if tp := n.ChildByFieldName("type_parameters"); tp != nil {
		for i := uint(0); i < tp.NamedChildCount(); i++ {
			if p := tp.NamedChild(i); p != nil && p.Kind() == "type_parameter" {
				e.TypeParameters = append(e.TypeParameters, x.text(p))
			}
		}
	}
	if e.Kind.IsType() {
		e.Members = x.members(n.ChildByFieldName("body"))
	}
	return e
}

// fields splits a field declaration into one element per declarator.
func (x *extractor) fields(n *sitter.Node, comment *string) []*java.Element {
	var proto java.Element
	x.modifiers(n, &proto)
	typ := x.text(n.ChildByFieldName("type"))
	constant := proto.HasModifier("static") && proto.HasModifier("final")
	if n.Kind() == "constant_declaration" {
		constant = true
	}

	var result []*java.Element
	for i := uint(0); i < n.NamedChildCount(); i++ {
		d := n.NamedChild(i)
		if d == nil || d.Kind() != "variable_declarator" {
			continue
		}
		e := &java.Element{
			Kind:        java.KindField,
			Name:        x.text(d.ChildByFieldName("name")),
			Modifiers:   proto.Modifiers,
			Annotations: proto.Annotations,
			ReturnType:  typ + x.text(d.ChildByFieldName("dimensions")),
			Comment:     comment,
			Source:      x.source(d),
		}
		if v := d.ChildByFieldName("value"); v != nil && constant {
			e.Constant = x.text(v)
		}
		result = append(result, e)
	}
	return result
}

func (x *extractor) modifiers(n *sitter.Node, e *java.Element) {
	mods := childOfKind(n, "modifiers")
	if mods == nil {
		return
	}
	for i := uint(0); i < mods.ChildCount(); i++ {
		child := mods.Child(i)
		if child == nil {
			continue
		}
		switch child.Kind() {
		case "marker_annotation", "annotation":
			e.Annotations = append(e.Annotations, x.annotation(child))
		case "line_comment", "block_comment":
		default:
			if !child.IsNamed() {
				e.Modifiers = append(e.Modifiers, child.Kind())
			}
		}
	}
}

func (x *extractor) annotation(n *sitter.Node) java.Annotation {
	a := java.Annotation{Type: x.text(n.ChildByFieldName("name"))}
	args := n.ChildByFieldName("arguments")
	if args == nil {
		return a
	}
	for i := uint(0); i < args.NamedChildCount(); i++ {
		arg := args.NamedChild(i)
		if arg == nil || isComment(arg) {
			continue
		}
		if arg.Kind() == "element_value_pair" {
			a.ElementValuePairs = append(a.ElementValuePairs, java.ElementValuePair{
				Name:  x.text(arg.ChildByFieldName("key")),
				Value: x.value(arg.ChildByFieldName("value")),
			})
			continue
		}
		a.ElementValuePairs = append(a.ElementValuePairs, java.ElementValuePair{Name: "value", Value: x.value(arg)})
	}
	return a
}

// value converts an element value. Expressions other than literals, class
// literals, constant references, arrays and annotations keep their source
// text.
func (x *extractor) value(n *sitter.Node) any {
	if n == nil {
		return nil
	}
	text := x.text(n)
	switch n.Kind() {
	case "string_literal":
		if s, err := strconv.Unquote(text); err == nil {
			return s
		}
		return strings.Trim(text, `"`)
	case "character_literal":
		return strings.Trim(text, "'")
	case "true":
		return true
	case "false":
		return false
	case "decimal_integer_literal", "hex_integer_literal", "octal_integer_literal", "binary_integer_literal":
		digits := strings.TrimRight(strings.ReplaceAll(text, "_", ""), "lL")
		if n.Kind() == "octal_integer_literal" {
			digits = "0o" + strings.TrimPrefix(digits, "0")
		}
		if v, err := strconv.ParseInt(digits, 0, 64); err == nil {
			return v
		}
		return text
	case "decimal_floating_point_literal":
		digits := strings.TrimRight(strings.ReplaceAll(text, "_", ""), "fFdD")
		if v, err := strconv.ParseFloat(digits, 64); err == nil {
			return v
		}
		return text
	case "class_literal":
		return java.ClassLiteral{Type: strings.TrimSpace(strings.TrimSuffix(text, ".class"))}
	case "field_access":
		return java.EnumConstant{
			Type:     x.text(n.ChildByFieldName("object")),
			Constant: x.text(n.ChildByFieldName("field")),
		}
	case "identifier":
		return java.EnumConstant{Constant: text}
	case "element_value_array_initializer":
		values := []any{}
		for i := uint(0); i < n.NamedChildCount(); i++ {
			if child := n.NamedChild(i); child != nil && !isComment(child) {
				values = append(values, x.value(child))
			}
		}
		return values
	case "annotation", "marker_annotation":
		return x.annotation(n)
	case "parenthesized_expression":
		return x.value(firstNamed(n))
	}
	return text
}

func (x *extractor) parameters(n *sitter.Node) []java.Parameter {
	if n == nil {
		return nil
	}
	var result []java.Parameter
	for i := uint(0); i < n.NamedChildCount(); i++ {
		p := n.NamedChild(i)
		if p == nil {
			continue
		}
		switch p.Kind() {
		case "formal_parameter":
			result = append(result, java.Parameter{
				Name: x.text(p.ChildByFieldName("name")),
				Type: x.text(p.ChildByFieldName("type")) + x.text(p.ChildByFieldName("dimensions")),
			})
		case "spread_parameter":
			var param java.Parameter
			for j := uint(0); j < p.NamedChildCount(); j++ {
				c := p.NamedChild(j)
				switch {
				case c == nil || c.Kind() == "modifiers" || isComment(c):
				case c.Kind() == "variable_declarator":
					param.Name = x.text(c.ChildByFieldName("name"))
				case param.Type == "":
					param.Type = x.text(c) + "..."
				}
			}
			result = append(result, param)
		}
	}
	return result
}

func (x *extractor) throws(n *sitter.Node) []string {
	t := childOfKind(n, "throws")
	if t == nil {
		return nil
	}
	var result []string
	for i := uint(0); i < t.NamedChildCount(); i++ {
		if c := t.NamedChild(i); c != nil && !isComment(c) {
			result = append(result, x.text(c))
		}
	}
	return result
}

// typeList returns the types of a super_interfaces or extends_interfaces
// node.
func (x *extractor) typeList(n *sitter.Node) []string {
	list := childOfKind(n, "type_list")
	if list == nil {
		return nil
	}
	var result []string
	for i := uint(0); i < list.NamedChildCount(); i++ {
		if c := list.NamedChild(i); c != nil && !isComment(c) {
			result = append(result, x.text(c))
		}
	}
	return result
}

func childOfKind(n *sitter.Node, kind string) *sitter.Node {
	if n == nil {
		return nil
	}
	for i := uint(0); i < n.NamedChildCount(); i++ {
		if c := n.NamedChild(i); c != nil && c.Kind() == kind {
			return c
		}
	}
	return nil
}

func firstNamed(n *sitter.Node) *sitter.Node {
	for i := uint(0); i < n.NamedChildCount(); i++ {
		if c := n.NamedChild(i); c != nil && !isComment(c) {
			return c
		}
	}
	return nil
}

func isComment(n *sitter.Node) bool {
	return n.Kind() == "line_comment" || n.Kind() == "block_comment"
}
