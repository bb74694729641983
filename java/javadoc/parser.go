package javadoc

import (
	"strings"
	"unicode"
)

// knownInlineTags lists the inline tags whose arguments get a parsed form.
var knownInlineTags = map[string]bool{
	"link":           true,
	"linkplain":      true,
	"value":          true,
	"docRoot":        true,
	"literal":        true,
	"code":           true,
	"index":          true,
	"systemProperty": true,
	"summary":        true,
	"inheritDoc":     true,
}

var structuredBlockTags = map[string]bool{
	"param":     true,
	"return":    true,
	"throws":    true,
	"exception": true,
	"see":       true,
}

var textBlockTags = map[string]bool{
	"author":      true,
	"deprecated":  true,
	"since":       true,
	"version":     true,
	"serial":      true,
	"serialData":  true,
	"serialField": true,
	"hidden":      true,
	"provides":    true,
	"uses":        true,
	"spec":        true,
	"category":    true,
}

// Parser is a recursive-descent parser for Javadoc comments. It works on
// comment text with the /** */ decoration and line prefixes already removed.
type Parser struct {
	input string
	pos   int
	len   int
}

// Parse parses a Javadoc comment string and returns a DocComment AST. The
// input may be a full /** ... */ comment or its bare content. Parse never
// fails: malformed input degrades to text or unknown tags.
func Parse(javadoc string) *DocComment {
	p := newParser(StripDecoration(javadoc))
	return p.parseDocComment()
}

func newParser(input string) *Parser {
	return &Parser{input: input, len: len(input)}
}

func (p *Parser) parseDocComment() *DocComment {
	doc := &DocComment{}

	bodyEnd := p.scanToBlockTag()
	doc.Body = parseSegments(strings.TrimSpace(p.input[:bodyEnd]))
	doc.BlockTags = p.parseBlockTags()
	doc.Summary = firstSentence(doc.Body)

	for _, tag := range doc.BlockTags {
		if tag.Name == "hidden" {
			doc.Hidden = true
		}
	}
	return doc
}

// StripDecoration removes the comment delimiters and the leading whitespace
// and asterisks Javadoc allows at the start of each line. Lines without an
// asterisk prefix keep their indentation.
func StripDecoration(comment string) string {
	s := strings.TrimSpace(comment)
	if strings.HasPrefix(s, "/**") {
		s = s[3:]
		s = strings.TrimSuffix(s, "*/")
	}
	s = strings.ReplaceAll(s, "\r\n", "\n")

	lines := strings.Split(s, "\n")
	for i, line := range lines {
		trimmed := strings.TrimLeft(line, " \t")
		if !strings.HasPrefix(trimmed, "*") {
			continue
		}
		trimmed = strings.TrimLeft(trimmed, "*")
		if strings.HasPrefix(trimmed, " ") {
			trimmed = trimmed[1:]
		}
		lines[i] = trimmed
	}
	return strings.Join(lines, "\n")
}

// scanToBlockTag advances to the '@' of the next block tag and returns its
// offset, or the end of input. Inline tags and HTML comments are skipped
// whole, so an '@' at the start of a line inside them is not a block tag.
func (p *Parser) scanToBlockTag() int {
	lineStart := p.pos == 0 || p.input[p.pos-1] == '\n'
	for p.pos < p.len {
		if lineStart {
			lineStart = false
			p.skipHorizontalWhitespace()
			if p.isAtBlockTag() {
				return p.pos
			}
			continue
		}

		switch {
		case p.match("<!--"):
			if end := strings.Index(p.input[p.pos+4:], "-->"); end >= 0 {
				p.advance(4 + end + 3)
			} else {
				p.advance(4)
			}
		case p.match("{@"):
			if end := p.findClose(p.pos + 1); end >= 0 {
				p.pos = end + 1
			} else {
				p.advance(2)
			}
		case p.peek() == '\n':
			lineStart = true
			p.advance(1)
		default:
			p.advance(1)
		}
	}
	return p.len
}

// isAtBlockTag checks if we're at '@' followed by the first character of a tag
// name. "@@" and "@ " are text.
func (p *Parser) isAtBlockTag() bool {
	if p.peek() != '@' {
		return false
	}
	next := p.peekAt(1)
	return next != 0 && !isWhitespace(rune(next)) && next != '@' && next != '{' && next != '}'
}

// parseBlockTags parses block tags until end of comment. Each tag's argument
// runs up to the next block tag.
func (p *Parser) parseBlockTags() []BlockTag {
	var tags []BlockTag

	for p.pos < p.len {
		if !p.isAtBlockTag() {
			p.scanToBlockTag()
			continue
		}
		p.advance(1)
		name := p.readTagName()
		p.skipHorizontalWhitespace()

		start := p.pos
		end := p.scanToBlockTag()
		tags = append(tags, newBlockTag(name, strings.TrimSpace(p.input[start:end])))
	}

	return tags
}

func newBlockTag(name, text string) BlockTag {
	tag := BlockTag{Name: name, Text: text}

	switch {
	case structuredBlockTags[name]:
		tag.Kind = KindKnownStructured
		switch name {
		case "param":
			word, rest := splitFirstWord(text)
			param := &ParamName{Name: word}
			if len(word) > 2 && word[0] == '<' && word[len(word)-1] == '>' {
				param.Name = word[1 : len(word)-1]
				param.TypeParameter = true
			}
			tag.Param = param
			tag.Description = parseSegments(rest)
		case "throws", "exception":
			word, rest := splitFirstWord(text)
			tag.Exception = word
			tag.Description = parseSegments(rest)
		default:
			tag.Description = parseSegments(text)
		}
	case textBlockTags[name]:
		tag.Kind = KindKnownText
		tag.Description = parseSegments(text)
	default:
		tag.Kind = KindUnknown
	}

	return tag
}

// parseSegments parses rich text content (text and inline tags) with no
// block tag detection.
func parseSegments(s string) []Node {
	p := newParser(s)
	return p.parseContent()
}

func (p *Parser) parseContent() []Node {
	var nodes []Node
	var textBuf strings.Builder

	flushText := func() {
		if textBuf.Len() > 0 {
			nodes = append(nodes, Text{Content: textBuf.String()})
			textBuf.Reset()
		}
	}

	for p.pos < p.len {
		switch {
		case p.match("<!--"):
			textBuf.WriteString(p.readHTMLComment())

		case p.matchFold("<!doctype"):
			textBuf.WriteString(p.readThrough('>'))

		case p.match("{@"):
			p.advance(2)
			name := p.readTagName()
			if name == "" {
				textBuf.WriteString("{@")
				continue
			}
			flushText()
			nodes = append(nodes, p.parseInlineTag(name))

		default:
			textBuf.WriteByte(p.input[p.pos])
			p.advance(1)
		}
	}

	flushText()
	return nodes
}

// parseInlineTag parses the argument of an inline tag whose name was just
// read. An unterminated tag takes the rest of the input.
func (p *Parser) parseInlineTag(name string) Node {
	var raw string
	if end := p.findClose(p.pos); end >= 0 {
		raw = p.input[p.pos:end]
		p.pos = end + 1
	} else {
		raw = p.input[p.pos:]
		p.pos = p.len
	}
	return newInlineTag(name, raw)
}

func newInlineTag(name, raw string) InlineTag {
	if name == "code" || name == "literal" {
		// Only the single separator after the name is dropped.
		if raw != "" && isWhitespace(rune(raw[0])) {
			raw = raw[1:]
		}
	} else {
		raw = strings.TrimSpace(raw)
	}

	tag := InlineTag{Name: name, Kind: KindUnknown, Text: raw}
	if !knownInlineTags[name] {
		return tag
	}
	tag.Kind = KindKnown

	switch name {
	case "link", "linkplain":
		_, label := splitReference(raw)
		tag.Label = parseSegments(label)
	case "index":
		term, desc := splitIndexTerm(raw)
		tag.Value = term
		tag.Label = parseSegments(desc)
	case "systemProperty":
		tag.Value, _ = splitFirstWord(raw)
	case "summary":
		tag.Label = parseSegments(raw)
	}
	return tag
}

func splitFirstWord(s string) (word, rest string) {
	s = strings.TrimLeft(s, " \t\n\r")
	i := strings.IndexFunc(s, isWhitespace)
	if i < 0 {
		return s, ""
	}
	return s[:i], strings.TrimLeft(s[i:], " \t\n\r")
}

func splitIndexTerm(s string) (term, rest string) {
	if strings.HasPrefix(s, "\"") {
		if end := strings.IndexByte(s[1:], '"'); end >= 0 {
			return s[1 : end+1], strings.TrimSpace(s[end+2:])
		}
	}
	return splitFirstWord(s)
}

// readHTMLComment reads an HTML comment <!-- ... --> verbatim.
func (p *Parser) readHTMLComment() string {
	start := p.pos
	if end := strings.Index(p.input[p.pos+4:], "-->"); end >= 0 {
		p.advance(4 + end + 3)
	} else {
		p.pos = p.len
	}
	return p.input[start:p.pos]
}

func (p *Parser) readThrough(ch byte) string {
	start := p.pos
	if end := strings.IndexByte(p.input[p.pos:], ch); end >= 0 {
		p.advance(end + 1)
	} else {
		p.pos = p.len
	}
	return p.input[start:p.pos]
}

// findClose returns the offset of the '}' that closes the brace level open at
// from, handling nested braces, or -1.
func (p *Parser) findClose(from int) int {
	depth := 0
	for i := from; i < p.len; i++ {
		switch p.input[i] {
		case '{':
			depth++
		case '}':
			if depth == 0 {
				return i
			}
			depth--
		}
	}
	return -1
}

// Helper methods for reading tokens

func (p *Parser) peek() byte {
	if p.pos >= p.len {
		return 0
	}
	return p.input[p.pos]
}

func (p *Parser) peekAt(offset int) byte {
	pos := p.pos + offset
	if pos >= p.len || pos < 0 {
		return 0
	}
	return p.input[pos]
}

func (p *Parser) advance(n int) {
	p.pos += n
	if p.pos > p.len {
		p.pos = p.len
	}
}

func (p *Parser) match(s string) bool {
	return strings.HasPrefix(p.input[p.pos:], s)
}

func (p *Parser) matchFold(s string) bool {
	return p.pos+len(s) <= p.len && strings.EqualFold(p.input[p.pos:p.pos+len(s)], s)
}

func (p *Parser) skipHorizontalWhitespace() {
	for p.pos < p.len && (p.peek() == ' ' || p.peek() == '\t') {
		p.advance(1)
	}
}

// readTagName reads a tag name: everything up to whitespace or a brace.
func (p *Parser) readTagName() string {
	start := p.pos
	for p.pos < p.len {
		ch := p.peek()
		if isWhitespace(rune(ch)) || ch == '{' || ch == '}' {
			break
		}
		p.advance(1)
	}
	return p.input[start:p.pos]
}

// Character classification helpers

func isWhitespace(ch rune) bool {
	return ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r' || ch == '\f'
}

func isJavaIdentifierStart(ch rune) bool {
	return unicode.IsLetter(ch) || ch == '_' || ch == '$'
}

func isJavaIdentifierPart(ch rune) bool {
	return unicode.IsLetter(ch) || unicode.IsDigit(ch) || ch == '_' || ch == '$'
}
