package javadoc

import "strings"

// blockHTMLTags end the first sentence when they start after some content.
var blockHTMLTags = map[string]bool{
	"p": true, "pre": true, "ul": true, "ol": true, "dl": true,
	"table": true, "hr": true, "blockquote": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
}

// firstSentence computes the summary of a body: the content of the first
// {@summary} tag, or everything up to the first sentence break.
func firstSentence(body []Node) []Node {
	for _, node := range body {
		if tag, ok := node.(InlineTag); ok && tag.Name == "summary" {
			return trimNodes(CloneNodes(tag.Label))
		}
	}

	var summary []Node
	seen := false
	for i, node := range body {
		text, ok := node.(Text)
		if !ok {
			summary = append(summary, node)
			seen = true
			continue
		}
		if cut, found := sentenceBreak(text.Content, seen, i == len(body)-1); found {
			if cut > 0 {
				summary = append(summary, Text{Content: text.Content[:cut]})
			}
			return trimNodes(summary)
		}
		summary = append(summary, text)
		if !isBlankString(text.Content) {
			seen = true
		}
	}
	return trimNodes(summary)
}

// Summary recomputes the summary of a body. It is used after the body of a
// comment was rewritten, for example by inheritance.
func Summary(body []Node) []Node {
	return firstSentence(body)
}

// sentenceBreak finds where the first sentence ends inside s. seen reports
// whether content precedes s; last whether s ends the body.
func sentenceBreak(s string, seen, last bool) (int, bool) {
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '.':
			if i+1 == len(s) && last {
				return i + 1, true
			}
			if i+1 < len(s) && isWhitespace(rune(s[i+1])) {
				return i + 1, true
			}
		case '\n':
			j := i + 1
			for j < len(s) && (s[j] == ' ' || s[j] == '\t' || s[j] == '\r') {
				j++
			}
			if j < len(s) && s[j] == '\n' && (seen || !isBlankString(s[:i])) {
				return i, true
			}
		case '<':
			if strings.HasPrefix(s[i:], "<!--") {
				end := strings.Index(s[i+4:], "-->")
				if end < 0 {
					return 0, false
				}
				i += 4 + end + 2
				continue
			}
			if isBlockHTMLStart(s[i:]) && (seen || !isBlankString(s[:i])) {
				return i, true
			}
		}
	}
	return 0, false
}

func isBlockHTMLStart(s string) bool {
	i := 1
	for i < len(s) && (isASCIILetter(s[i]) || (s[i] >= '0' && s[i] <= '9')) {
		i++
	}
	if i == 1 || !blockHTMLTags[strings.ToLower(s[1:i])] {
		return false
	}
	return i == len(s) || s[i] == '>' || s[i] == '/' || isWhitespace(rune(s[i]))
}

func isASCIILetter(ch byte) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

// trimNodes trims surrounding whitespace from the first and last text
// segments and drops segments left empty.
func trimNodes(nodes []Node) []Node {
	var result []Node
	for i, node := range nodes {
		if text, ok := node.(Text); ok {
			content := text.Content
			if len(result) == 0 {
				content = strings.TrimLeft(content, " \t\n\r\f")
			}
			if i == len(nodes)-1 {
				content = strings.TrimRight(content, " \t\n\r\f")
			}
			if content == "" {
				continue
			}
			node = Text{Content: content}
		}
		result = append(result, node)
	}
	return result
}
