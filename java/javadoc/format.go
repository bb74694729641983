package javadoc

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Format formats a DocComment into readable text: HTML is mapped to
// lightweight markup and block tags are listed after the body.
func Format(doc *DocComment) string {
	if doc == nil {
		return ""
	}

	var sb strings.Builder

	body := formatNodes(doc.Body)
	body = normalizeWhitespace(body)
	sb.WriteString(body)

	if len(doc.BlockTags) > 0 && sb.Len() > 0 {
		sb.WriteString("\n")
	}

	for _, tag := range doc.BlockTags {
		sb.WriteString("\n")
		sb.WriteString(formatBlockTag(tag))
	}

	return strings.TrimSpace(sb.String())
}

// PlainText renders segments as plain text: markup is dropped, entities are
// decoded and whitespace is collapsed.
func PlainText(nodes []Node) string {
	var sb strings.Builder
	for _, node := range nodes {
		switch n := node.(type) {
		case Text:
			sb.WriteString(stripMarkup(n.Content))
		case InlineTag:
			sb.WriteString(inlineText(n, PlainText))
		}
	}
	return strings.Join(strings.Fields(sb.String()), " ")
}

func formatNodes(nodes []Node) string {
	var sb strings.Builder
	for i, node := range nodes {
		switch n := node.(type) {
		case Text:
			content := n.Content
			// A <pre> wrapping a multi-line {@code} becomes a single fence.
			if hasMultilineCodeNext(nodes, i) {
				content = trimSuffixFold(content, "<pre>")
			}
			if hasMultilineCodeBefore(nodes, i) {
				content = trimPrefixFold(content, "</pre>")
			}
			sb.WriteString(formatMarkup(content))
		case InlineTag:
			if n.Name == "code" {
				sb.WriteString(formatCode(n.Text))
				continue
			}
			sb.WriteString(inlineText(n, formatNodes))
		}
	}
	return sb.String()
}

func formatCode(content string) string {
	content = strings.TrimSpace(content)
	if strings.Contains(content, "\n") {
		return "\n```\n" + content + "\n```\n"
	}
	return "`" + content + "`"
}

// inlineText renders an inline tag, using render for nested segments.
func inlineText(tag InlineTag, render func([]Node) string) string {
	switch tag.Name {
	case "code", "literal":
		return tag.Text
	case "link", "linkplain":
		if len(tag.Label) > 0 {
			return render(tag.Label)
		}
		if tag.Reference != nil && tag.Reference.Kind == ReferenceStructured {
			return formatReference(tag.Reference.Signature)
		}
		sig, _ := splitReference(tag.Text)
		return formatReference(sig)
	case "value":
		return formatReference(tag.Text)
	case "docRoot":
		return tag.Value
	case "inheritDoc":
		return ""
	case "index":
		return tag.Value
	case "systemProperty":
		return tag.Value
	case "summary":
		return render(tag.Label)
	default:
		return tag.Text
	}
}

func hasMultilineCodeNext(nodes []Node, idx int) bool {
	text, ok := nodes[idx].(Text)
	if !ok || !hasSuffixFold(strings.TrimSpace(text.Content), "<pre>") || idx+1 >= len(nodes) {
		return false
	}
	code, ok := nodes[idx+1].(InlineTag)
	return ok && code.Name == "code" && strings.Contains(code.Text, "\n")
}

func hasMultilineCodeBefore(nodes []Node, idx int) bool {
	text, ok := nodes[idx].(Text)
	if !ok || !hasPrefixFold(strings.TrimSpace(text.Content), "</pre>") || idx == 0 {
		return false
	}
	code, ok := nodes[idx-1].(InlineTag)
	return ok && code.Name == "code" && strings.Contains(code.Text, "\n")
}

// formatMarkup maps HTML in a text segment to readable text.
func formatMarkup(s string) string {
	var sb strings.Builder
	z := html.NewTokenizer(strings.NewReader(s))
	for {
		switch z.Next() {
		case html.ErrorToken:
			return sb.String()
		case html.TextToken:
			sb.Write(z.Text())
		case html.StartTagToken, html.SelfClosingTagToken:
			name, _ := z.TagName()
			sb.WriteString(formatStartElement(string(name)))
		case html.EndTagToken:
			name, _ := z.TagName()
			sb.WriteString(formatEndElement(string(name)))
		}
	}
}

// stripMarkup drops HTML tags, comments and doctypes and decodes entities.
// Tags that break the line become a space; inline tags vanish.
func stripMarkup(s string) string {
	var sb strings.Builder
	z := html.NewTokenizer(strings.NewReader(s))
	for {
		switch z.Next() {
		case html.ErrorToken:
			return sb.String()
		case html.TextToken:
			sb.Write(z.Text())
		case html.StartTagToken, html.EndTagToken, html.SelfClosingTagToken:
			name, _ := z.TagName()
			if breaksLine(atom.Lookup(name)) {
				sb.WriteByte(' ')
			}
		}
	}
}

func breaksLine(tag atom.Atom) bool {
	switch tag {
	case atom.P, atom.Br, atom.Hr, atom.Div, atom.Pre, atom.Blockquote,
		atom.Ul, atom.Ol, atom.Li, atom.Dl, atom.Dt, atom.Dd,
		atom.Table, atom.Tr, atom.Td, atom.Th, atom.Caption,
		atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6:
		return true
	}
	return false
}

func formatReference(ref string) string {
	// Extract simple name from reference like java.util.List#add(E)
	if idx := strings.LastIndex(ref, "#"); idx >= 0 {
		member := ref[idx+1:]
		// Remove parameters from method reference
		if paren := strings.Index(member, "("); paren >= 0 {
			member = member[:paren]
		}
		return member
	}
	// Extract class simple name from fully qualified name
	if idx := strings.LastIndex(ref, "."); idx >= 0 {
		return ref[idx+1:]
	}
	return ref
}

func formatStartElement(tag string) string {
	switch strings.ToLower(tag) {
	case "p":
		return "\n\n"
	case "br":
		return "\n"
	case "pre":
		return "\n```\n"
	case "code":
		return "`"
	case "ul", "ol":
		return "\n"
	case "li":
		return "\n- "
	case "blockquote":
		return "\n> "
	case "h1", "h2", "h3", "h4", "h5", "h6":
		return "\n\n"
	case "table", "thead", "tbody", "tr", "dl", "dt":
		return "\n"
	case "td", "th":
		return " "
	case "dd":
		return "\n  "
	default:
		return ""
	}
}

func formatEndElement(tag string) string {
	switch strings.ToLower(tag) {
	case "pre":
		return "\n```\n"
	case "code":
		return "`"
	case "ul", "ol":
		return "\n"
	case "h1", "h2", "h3", "h4", "h5", "h6":
		return "\n"
	default:
		return ""
	}
}

func formatBlockTag(tag BlockTag) string {
	if tag.Kind == KindUnknown {
		return strings.TrimSpace("@" + tag.Name + " " + tag.Text)
	}

	desc := strings.TrimSpace(formatNodes(tag.Description))
	parts := []string{"@" + tag.Name}
	switch {
	case tag.Param != nil && tag.Param.TypeParameter:
		parts = append(parts, "<"+tag.Param.Name+">")
	case tag.Param != nil:
		parts = append(parts, tag.Param.Name)
	case tag.Exception != "":
		parts = append(parts, tag.Exception)
	}
	if desc != "" {
		parts = append(parts, desc)
	}
	return strings.Join(parts, " ")
}

func normalizeWhitespace(s string) string {
	// Replace multiple consecutive newlines with at most two
	lines := strings.Split(s, "\n")
	var result []string
	prevEmpty := false

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			if !prevEmpty {
				result = append(result, "")
				prevEmpty = true
			}
		} else {
			result = append(result, line)
			prevEmpty = false
		}
	}

	return strings.Join(result, "\n")
}

func hasPrefixFold(s, prefix string) bool {
	return len(s) >= len(prefix) && strings.EqualFold(s[:len(prefix)], prefix)
}

func hasSuffixFold(s, suffix string) bool {
	return len(s) >= len(suffix) && strings.EqualFold(s[len(s)-len(suffix):], suffix)
}

func trimSuffixFold(s, suffix string) string {
	t := strings.TrimRight(s, " \t\n\r")
	if hasSuffixFold(t, suffix) {
		return t[:len(t)-len(suffix)]
	}
	return s
}

func trimPrefixFold(s, prefix string) string {
	t := strings.TrimLeft(s, " \t\n\r")
	if hasPrefixFold(t, prefix) {
		return t[len(prefix):]
	}
	return s
}
