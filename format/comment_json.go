package format

import (
	"encoding/json"
	"math"
	"strconv"

	"github.com/mongodb-university/yokedox/java"
	"github.com/mongodb-university/yokedox/java/javadoc"
)

type jsonComment struct {
	Summary     []any  `json:"summary"`
	SummaryText string `json:"summaryText"`
	Body        []any  `json:"body"`
	Tags        []any  `json:"tags"`
	Hidden      bool   `json:"hidden"`
}

type jsonText struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type jsonInlineTag struct {
	Type      string         `json:"type"`
	Kind      string         `json:"kind"`
	Name      string         `json:"name"`
	Text      string         `json:"text"`
	Content   []any          `json:"content"`
	Reference *jsonReference `json:"reference"`
	Value     *string        `json:"value"`
}

type jsonUnknownInlineTag struct {
	Type string `json:"type"`
	Kind string `json:"kind"`
	Name string `json:"name"`
	Text string `json:"text"`
}

type jsonBlockTag struct {
	Kind      string         `json:"kind"`
	Name      string         `json:"name"`
	Text      string         `json:"text"`
	Content   []any          `json:"content"`
	Parameter *jsonParamName `json:"parameter"`
	Exception *string        `json:"exception"`
	Reference *jsonReference `json:"reference"`
	Inherited *jsonInherited `json:"inherited"`
}

type jsonUnknownBlockTag struct {
	Kind string `json:"kind"`
	Name string `json:"name"`
	Text string `json:"text"`
}

type jsonParamName struct {
	Name          string `json:"name"`
	TypeParameter bool   `json:"typeParameter"`
}

type jsonInherited struct {
	From string `json:"from"`
}

type jsonReference struct {
	Kind       string   `json:"kind"`
	Signature  string   `json:"signature"`
	Module     *string  `json:"module"`
	Type       *string  `json:"type"`
	Member     *string  `json:"member"`
	Parameters []string `json:"parameters"`
	Label      *string  `json:"label"`
	URL        *string  `json:"url"`
	Href       *string  `json:"href"`
}

func buildComment(doc *javadoc.DocComment) *jsonComment {
	if doc == nil {
		return nil
	}
	data := &jsonComment{
		Summary:     buildNodes(doc.Summary),
		SummaryText: javadoc.PlainText(doc.Summary),
		Body:        buildNodes(doc.Body),
		Tags:        make([]any, 0, len(doc.BlockTags)),
		Hidden:      doc.Hidden,
	}
	for _, tag := range doc.BlockTags {
		data.Tags = append(data.Tags, buildBlockTag(tag))
	}
	return data
}

func buildNodes(nodes []javadoc.Node) []any {
	result := make([]any, 0, len(nodes))
	for _, node := range nodes {
		switch n := node.(type) {
		case javadoc.Text:
			result = append(result, jsonText{Type: "text", Text: n.Content})
		case javadoc.InlineTag:
			result = append(result, buildInlineTag(n))
		}
	}
	return result
}

func buildInlineTag(tag javadoc.InlineTag) any {
	if tag.Kind == javadoc.KindUnknown {
		return jsonUnknownInlineTag{Type: "tag", Kind: string(tag.Kind), Name: tag.Name, Text: tag.Text}
	}
	data := jsonInlineTag{
		Type:      "tag",
		Kind:      string(tag.Kind),
		Name:      tag.Name,
		Text:      tag.Text,
		Content:   buildNodes(tag.Label),
		Reference: buildReference(tag.Reference),
	}
	if tag.Value != "" {
		data.Value = &tag.Value
	}
	return data
}

func buildBlockTag(tag javadoc.BlockTag) any {
	if tag.Kind == javadoc.KindUnknown {
		return jsonUnknownBlockTag{Kind: string(tag.Kind), Name: tag.Name, Text: tag.Text}
	}
	data := jsonBlockTag{
		Kind:      string(tag.Kind),
		Name:      tag.Name,
		Text:      tag.Text,
		Content:   buildNodes(tag.Description),
		Exception: optional(tag.Exception),
		Reference: buildReference(tag.Reference),
	}
	if tag.Param != nil {
		data.Parameter = &jsonParamName{Name: tag.Param.Name, TypeParameter: tag.Param.TypeParameter}
	}
	if tag.Inherited != nil {
		data.Inherited = &jsonInherited{From: tag.Inherited.From}
	}
	return data
}

func buildReference(ref *javadoc.Reference) *jsonReference {
	if ref == nil {
		return nil
	}
	return &jsonReference{
		Kind:       string(ref.Kind),
		Signature:  ref.Signature,
		Module:     optional(ref.Module),
		Type:       optional(ref.Type),
		Member:     optional(ref.Member),
		Parameters: ref.Parameters,
		Label:      optional(ref.Label),
		URL:        optional(ref.URL),
		Href:       optional(ref.Href),
	}
}

type jsonAnnotation struct {
	Type   string          `json:"type"`
	Values []jsonValuePair `json:"values"`
}

type jsonValuePair struct {
	Name  string `json:"name"`
	Value any    `json:"value"`
}

type jsonEnumConstant struct {
	Enum     string `json:"enum"`
	Constant string `json:"constant"`
}

type jsonClassLiteral struct {
	Class string `json:"class"`
}

func buildAnnotations(annotations []java.Annotation) []jsonAnnotation {
	result := make([]jsonAnnotation, 0, len(annotations))
	for _, a := range annotations {
		result = append(result, buildAnnotation(a))
	}
	return result
}

func buildAnnotation(a java.Annotation) jsonAnnotation {
	data := jsonAnnotation{Type: a.Type, Values: make([]jsonValuePair, 0, len(a.ElementValuePairs))}
	for _, pair := range a.ElementValuePairs {
		data.Values = append(data.Values, jsonValuePair{Name: pair.Name, Value: buildValue(pair.Value)})
	}
	return data
}

// buildValue converts an annotation value. Arrays always serialize as
// arrays, and floats JSON cannot express become strings.
func buildValue(v any) any {
	switch val := java.NormalizeValue(v).(type) {
	case nil:
		return nil
	case java.EnumConstant:
		return jsonEnumConstant{Enum: val.Type, Constant: val.Constant}
	case java.ClassLiteral:
		return jsonClassLiteral{Class: val.Type}
	case java.Annotation:
		return buildAnnotation(val)
	case float64:
		if math.IsNaN(val) || math.IsInf(val, 0) {
			return strconv.FormatFloat(val, 'g', -1, 64)
		}
		return val
	case []any:
		result := make([]any, 0, len(val))
		for _, item := range val {
			result = append(result, buildValue(item))
		}
		return result
	default:
		return val
	}
}

// MarshalComment encodes a single comment in the same shape as the comment
// field of the documentation model.
func MarshalComment(doc *javadoc.DocComment, indent string) ([]byte, error) {
	if indent == "" {
		return json.Marshal(buildComment(doc))
	}
	return json.MarshalIndent(buildComment(doc), "", indent)
}
