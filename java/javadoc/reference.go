package javadoc

import (
	"strings"

	"golang.org/x/net/html"
)

// ReferenceKind tells a parsed reference from one kept verbatim.
type ReferenceKind string

const (
	// ReferenceStructured is a program element reference: Type#member(params).
	ReferenceStructured ReferenceKind = "structured"
	// ReferencePassthrough is anything else, kept as written.
	ReferencePassthrough ReferenceKind = "passthrough"
)

// Reference is the normalized target of {@link}, {@linkplain}, {@value} and
// @see.
type Reference struct {
	Kind      ReferenceKind
	Signature string // The argument as written, label excluded

	Module     string   // java.base in java.base/java.lang.String
	Type       string   // Type as written; the enclosing type for #member
	Member     string   // Field or method name, empty for type references
	Parameters []string // nil: no parameter list written; empty: "()"
	Label      string   // Text after the signature

	URL  string // Set from external entity patterns
	Href string // href of a pass-through <a> anchor
}

func (r *Reference) clone() *Reference {
	c := *r
	if r.Parameters != nil {
		c.Parameters = append([]string{}, r.Parameters...)
	}
	return &c
}

// ParseReference parses a reference argument such as
// "java.util.List#add(int, Object) the add method". Text that is not a
// program element reference, such as an HTML anchor, a quoted string or
// unbalanced input, becomes a pass-through reference holding the text
// unchanged. ParseReference never fails.
func ParseReference(text string) *Reference {
	text = strings.TrimSpace(text)
	passthrough := &Reference{Kind: ReferencePassthrough, Signature: text}

	if text == "" || text[0] == '"' {
		return passthrough
	}
	if text[0] == '<' {
		passthrough.Href = anchorHref(text)
		return passthrough
	}

	sig, label := splitReference(text)
	ref := &Reference{Kind: ReferenceStructured, Signature: sig, Label: label}

	rest := sig
	if slash := strings.IndexByte(rest, '/'); slash >= 0 {
		ref.Module = rest[:slash]
		rest = rest[slash+1:]
		if !isQualifiedName(ref.Module) {
			return passthrough
		}
	}

	typePart, memberPart, hasMember := strings.Cut(rest, "#")
	if typePart != "" && !isQualifiedName(typePart) {
		return passthrough
	}
	ref.Type = typePart

	if hasMember {
		name, params, ok := parseMember(memberPart)
		if !ok {
			return passthrough
		}
		ref.Member = name
		ref.Parameters = params
	}

	if ref.Type == "" && ref.Member == "" && ref.Module == "" {
		return passthrough
	}
	return ref
}

// splitReference splits an argument into the reference signature and the
// label. Whitespace inside a parameter list does not end the signature.
func splitReference(text string) (sig, label string) {
	text = strings.TrimSpace(text)
	depth := 0
	for i := 0; i < len(text); i++ {
		switch ch := text[i]; {
		case ch == '(':
			depth++
		case ch == ')':
			depth--
		case isWhitespace(rune(ch)) && depth <= 0:
			return text[:i], strings.TrimSpace(text[i:])
		}
	}
	return text, ""
}

// parseMember parses "name" or "name(T1, T2)".
func parseMember(s string) (name string, params []string, ok bool) {
	open := strings.IndexByte(s, '(')
	if open < 0 {
		return s, nil, isIdentifier(s)
	}
	name = s[:open]
	if !isIdentifier(name) || !strings.HasSuffix(s, ")") {
		return "", nil, false
	}
	inner := s[open+1 : len(s)-1]
	if strings.ContainsAny(inner, "()") {
		return "", nil, false
	}

	params = []string{}
	if strings.TrimSpace(inner) == "" {
		return name, params, true
	}
	for _, param := range splitTopLevel(inner, ',') {
		param = strings.TrimSpace(param)
		if param == "" {
			return "", nil, false
		}
		// A parameter may be written with its name: "int count".
		if fields := splitTopLevel(param, ' '); len(fields) > 1 {
			param = strings.TrimSpace(fields[0])
		}
		params = append(params, param)
	}
	return name, params, true
}

// splitTopLevel splits s at sep outside of angle brackets.
func splitTopLevel(s string, sep byte) []string {
	var parts []string
	depth, start := 0, 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '<':
			depth++
		case '>':
			depth--
		case sep:
			if depth == 0 {
				if part := s[start:i]; sep != ' ' || part != "" {
					parts = append(parts, part)
				}
				start = i + 1
			}
		}
	}
	return append(parts, s[start:])
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, ch := range s {
		if i == 0 && !isJavaIdentifierStart(ch) {
			return false
		}
		if !isJavaIdentifierPart(ch) {
			return false
		}
	}
	return true
}

func isQualifiedName(s string) bool {
	for _, part := range strings.Split(s, ".") {
		if !isIdentifier(part) {
			return false
		}
	}
	return true
}

// anchorHref returns the href of the first <a> element in s.
func anchorHref(s string) string {
	z := html.NewTokenizer(strings.NewReader(s))
	for {
		switch z.Next() {
		case html.ErrorToken:
			return ""
		case html.StartTagToken, html.SelfClosingTagToken:
			name, hasAttr := z.TagName()
			if string(name) != "a" {
				continue
			}
			for hasAttr {
				var key, val []byte
				key, val, hasAttr = z.TagAttr()
				if string(key) == "href" {
					return string(val)
				}
			}
		}
	}
}
