package format

import (
	"encoding/json"
	"io"

	"github.com/mongodb-university/yokedox/java"
	"github.com/mongodb-university/yokedox/java/javadoc"
)

// SchemaVersion identifies the layout of the JSON document. It changes
// whenever a key is added, removed or changes meaning.
const SchemaVersion = "1.0"

// Document is the resolved model: the frozen element index and the final
// comment of every documented element.
type Document struct {
	Generator string
	Index     *java.Index
	Comments  map[*java.Element]*javadoc.DocComment

	// Select picks the packages and top-level types to serialize by
	// qualified name. A selected package is written whole; otherwise it is
	// written with its selected types only, and left out when it has none.
	// nil selects everything.
	Select func(qualifiedName string) bool
}

// DocumentEncoder writes a Document as JSON. Keys come from struct fields,
// so identical input produces identical bytes.
type DocumentEncoder struct {
	w      io.Writer
	indent string
	doc    *Document
}

func NewDocumentEncoder(w io.Writer) *DocumentEncoder {
	return &DocumentEncoder{w: w, indent: "  "}
}

// SetIndent sets the indentation of nested values. An empty indent writes
// compact JSON.
func (e *DocumentEncoder) SetIndent(indent string) {
	e.indent = indent
}

func (e *DocumentEncoder) Encode(doc *Document) error {
	e.doc = doc
	text, err := e.MarshalText()
	if err != nil {
		return err
	}
	_, err = e.w.Write(append(text, '\n'))
	return err
}

func (e *DocumentEncoder) MarshalText() ([]byte, error) {
	data := e.buildDocument()
	if e.indent == "" {
		return json.Marshal(data)
	}
	return json.MarshalIndent(data, "", e.indent)
}

type jsonDocument struct {
	SchemaVersion string         `json:"schemaVersion"`
	Generator     string         `json:"generator"`
	Packages      []*jsonElement `json:"packages"`
}

type jsonElement struct {
	Kind           string           `json:"kind"`
	Name           string           `json:"name"`
	QualifiedName  string           `json:"qualifiedName"`
	ID             string           `json:"id"`
	Modifiers      []string         `json:"modifiers"`
	TypeParameters []string         `json:"typeParameters"`
	Superclass     *string          `json:"superclass"`
	Interfaces     []string         `json:"interfaces"`
	Parameters     []jsonParameter  `json:"parameters"`
	ReturnType     *string          `json:"returnType"`
	Throws         []string         `json:"throws"`
	DefaultValue   any              `json:"defaultValue"`
	ConstantValue  *string          `json:"constantValue"`
	Source         *string          `json:"source"`
	Annotations    []jsonAnnotation `json:"annotations"`
	Comment        *jsonComment     `json:"comment"`
	Members        []*jsonElement   `json:"members"`
}

type jsonParameter struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

func (e *DocumentEncoder) buildDocument() jsonDocument {
	data := jsonDocument{
		SchemaVersion: SchemaVersion,
		Generator:     e.doc.Generator,
		Packages:      []*jsonElement{},
	}
	if e.doc.Index == nil {
		return data
	}
	for _, pkg := range e.doc.Index.Roots {
		if el := e.buildPackage(pkg); el != nil {
			data.Packages = append(data.Packages, el)
		}
	}
	return data
}

func (e *DocumentEncoder) buildPackage(pkg *java.Element) *jsonElement {
	ix := e.doc.Index
	sel := e.doc.Select
	if sel == nil {
		return e.buildElement(pkg)
	}
	if v, _ := ix.Lookup(pkg); sel(v.QualifiedName) {
		return e.buildElement(pkg)
	}

	var types []*jsonElement
	for _, member := range ix.Members(pkg) {
		if v, _ := ix.Lookup(member); sel(v.QualifiedName) {
			types = append(types, e.buildElement(member))
		}
	}
	if len(types) == 0 {
		return nil
	}
	data := e.element(pkg)
	data.Members = types
	return data
}

func (e *DocumentEncoder) buildElement(el *java.Element) *jsonElement {
	data := e.element(el)
	for _, member := range e.doc.Index.Members(el) {
		data.Members = append(data.Members, e.buildElement(member))
	}
	return data
}

// element converts el without its members.
func (e *DocumentEncoder) element(el *java.Element) *jsonElement {
	v, _ := e.doc.Index.Lookup(el)

	data := &jsonElement{
		Kind:           string(el.Kind),
		Name:           el.Name,
		QualifiedName:  v.QualifiedName,
		ID:             v.ID,
		Modifiers:      orEmpty(el.Modifiers),
		TypeParameters: orEmpty(el.TypeParameters),
		Superclass:     optional(el.SuperType),
		Interfaces:     orEmpty(el.Interfaces),
		Parameters:     []jsonParameter{},
		Throws:         orEmpty(el.Throws),
		ConstantValue:  optional(el.Constant),
		Source:         optional(el.Source),
		Annotations:    buildAnnotations(el.Annotations),
		Comment:        buildComment(e.doc.Comments[el]),
		Members:        []*jsonElement{},
	}
	if el.Kind == java.KindMethod || el.Kind == java.KindAnnotationMember || el.Kind == java.KindField {
		data.ReturnType = optional(el.ReturnType)
	}
	for _, p := range el.Parameters {
		data.Parameters = append(data.Parameters, jsonParameter{Name: p.Name, Type: p.Type})
	}
	if el.Default != nil {
		data.DefaultValue = buildValue(el.Default)
	}
	return data
}

func orEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
