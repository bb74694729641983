package javadoc

import (
	"strings"
	"testing"
)

func TestParseSimpleText(t *testing.T) {
	doc := Parse("/** Simple text. */")

	if len(doc.Body) != 1 {
		t.Fatalf("expected 1 body node, got %d", len(doc.Body))
	}

	text, ok := doc.Body[0].(Text)
	if !ok {
		t.Fatalf("expected Text node, got %T", doc.Body[0])
	}

	if text.Content != "Simple text." {
		t.Errorf("expected 'Simple text.', got %q", text.Content)
	}
	if len(doc.BlockTags) != 0 {
		t.Errorf("expected no block tags, got %d", len(doc.BlockTags))
	}
}

func TestParseBareContent(t *testing.T) {
	doc := Parse("Bare text without delimiters.\n@since 1.2")

	if got := PlainText(doc.Body); got != "Bare text without delimiters." {
		t.Errorf("unexpected body %q", got)
	}
	if len(doc.BlockTags) != 1 || doc.BlockTags[0].Text != "1.2" {
		t.Fatalf("expected @since 1.2, got %+v", doc.BlockTags)
	}
}

func TestParseEmptyComment(t *testing.T) {
	doc := Parse("/** */")

	if doc == nil {
		t.Fatal("expected a DocComment for an empty comment")
	}
	if len(doc.Body) != 0 || len(doc.Summary) != 0 || len(doc.BlockTags) != 0 {
		t.Errorf("expected empty comment, got %+v", doc)
	}
}

func TestParseCodeTag(t *testing.T) {
	doc := Parse("/** Use {@code Map<String, List<Integer>>} for this. */")

	// Should have: Text, InlineTag, Text
	if len(doc.Body) != 3 {
		t.Fatalf("expected 3 body nodes, got %d: %+v", len(doc.Body), doc.Body)
	}

	code, ok := doc.Body[1].(InlineTag)
	if !ok {
		t.Fatalf("expected InlineTag node, got %T", doc.Body[1])
	}

	if code.Name != "code" || code.Kind != KindKnown {
		t.Errorf("expected known code tag, got %q (%s)", code.Name, code.Kind)
	}
	expected := "Map<String, List<Integer>>"
	if code.Text != expected {
		t.Errorf("expected %q, got %q", expected, code.Text)
	}
}

func TestParseCodeTagWithBraces(t *testing.T) {
	doc := Parse("/** Use {@code class Foo { int x; }} for this. */")

	if len(doc.Body) != 3 {
		t.Fatalf("expected 3 body nodes, got %d: %+v", len(doc.Body), doc.Body)
	}

	code := doc.Body[1].(InlineTag)
	expected := "class Foo { int x; }"
	if code.Text != expected {
		t.Errorf("expected %q, got %q", expected, code.Text)
	}

	rest := doc.Body[2].(Text)
	if rest.Content != " for this." {
		t.Errorf("expected text after the tag, got %q", rest.Content)
	}
}

func TestParseLinkTag(t *testing.T) {
	doc := Parse("/** See {@link java.util.List} for more. */")

	if len(doc.Body) != 3 {
		t.Fatalf("expected 3 body nodes, got %d", len(doc.Body))
	}

	link, ok := doc.Body[1].(InlineTag)
	if !ok {
		t.Fatalf("expected InlineTag node, got %T", doc.Body[1])
	}

	if link.Name != "link" {
		t.Errorf("expected link, got %q", link.Name)
	}
	if link.Text != "java.util.List" {
		t.Errorf("expected 'java.util.List', got %q", link.Text)
	}
	if len(link.Label) != 0 {
		t.Errorf("expected no label, got %+v", link.Label)
	}
	if link.Reference != nil {
		t.Errorf("expected reference to be unresolved after parsing")
	}
}

func TestParseLinkTagWithLabel(t *testing.T) {
	doc := Parse("/** See {@linkplain java.util.List#add(int, Object) the {@code add} method}. */")

	link := doc.Body[1].(InlineTag)
	if link.Name != "linkplain" {
		t.Fatalf("expected linkplain, got %q", link.Name)
	}
	if link.Text != "java.util.List#add(int, Object) the {@code add} method" {
		t.Errorf("unexpected raw text %q", link.Text)
	}
	if len(link.Label) != 3 {
		t.Fatalf("expected 3 label nodes, got %d: %+v", len(link.Label), link.Label)
	}
	if code := link.Label[1].(InlineTag); code.Name != "code" || code.Text != "add" {
		t.Errorf("expected nested code tag, got %+v", code)
	}
}

func TestParseParamTag(t *testing.T) {
	doc := Parse(`/**
	 * Does something.
	 *
	 * @param key the key
	 *        to look up
	 */`)

	if len(doc.BlockTags) != 1 {
		t.Fatalf("expected 1 block tag, got %d", len(doc.BlockTags))
	}

	param := doc.BlockTags[0]
	if param.Name != "param" || param.Kind != KindKnownStructured {
		t.Fatalf("expected structured param tag, got %q (%s)", param.Name, param.Kind)
	}
	if param.Param == nil || param.Param.Name != "key" || param.Param.TypeParameter {
		t.Errorf("unexpected parameter %+v", param.Param)
	}
	if param.Text != "key the key\n       to look up" {
		t.Errorf("unexpected raw text %q", param.Text)
	}
	if got := PlainText(param.Description); got != "the key to look up" {
		t.Errorf("unexpected description %q", got)
	}
}

func TestParseTypeParamTag(t *testing.T) {
	doc := Parse("/**\n * @param <T> the element type\n */")

	param := doc.BlockTags[0]
	if param.Param == nil || param.Param.Name != "T" || !param.Param.TypeParameter {
		t.Errorf("expected type parameter T, got %+v", param.Param)
	}
}

func TestParseReturnTag(t *testing.T) {
	doc := Parse("/**\n * @return the {@code value}\n */")

	ret := doc.BlockTags[0]
	if ret.Name != "return" || ret.Kind != KindKnownStructured {
		t.Fatalf("expected return tag, got %+v", ret)
	}
	if len(ret.Description) != 2 {
		t.Fatalf("expected 2 description nodes, got %d", len(ret.Description))
	}
}

func TestParseThrowsTag(t *testing.T) {
	doc := Parse("/**\n * @throws IllegalStateException if closed\n * @exception java.io.IOException on I/O\n */")

	if len(doc.BlockTags) != 2 {
		t.Fatalf("expected 2 block tags, got %d", len(doc.BlockTags))
	}
	if doc.BlockTags[0].Exception != "IllegalStateException" {
		t.Errorf("unexpected exception %q", doc.BlockTags[0].Exception)
	}
	if doc.BlockTags[1].Name != "exception" || doc.BlockTags[1].Exception != "java.io.IOException" {
		t.Errorf("unexpected exception tag %+v", doc.BlockTags[1])
	}
	if got := PlainText(doc.BlockTags[1].Description); got != "on I/O" {
		t.Errorf("unexpected description %q", got)
	}
}

func TestParseHTMLEntity(t *testing.T) {
	doc := Parse("/** a &amp; b &lt;T&gt; &bogus */")

	text := doc.Body[0].(Text)
	if text.Content != "a &amp; b &lt;T&gt; &bogus" {
		t.Errorf("expected entities to be kept verbatim, got %q", text.Content)
	}
	if got := PlainText(doc.Body); got != "a & b <T> &bogus" {
		t.Errorf("unexpected plain text %q", got)
	}
}

func TestParseHTMLComment(t *testing.T) {
	doc := Parse(`/**
	 * Before <!-- {@link Foo}
	 * @param hidden
	 * --> after.
	 */`)

	if len(doc.Body) != 1 {
		t.Fatalf("expected comment to stay inside one text node, got %+v", doc.Body)
	}
	if len(doc.BlockTags) != 0 {
		t.Errorf("expected no block tags inside an HTML comment, got %+v", doc.BlockTags)
	}
	if !strings.Contains(doc.Body[0].(Text).Content, "<!-- {@link Foo}\n@param hidden\n-->") {
		t.Errorf("unexpected body %q", doc.Body[0].(Text).Content)
	}
}

func TestParseDoctype(t *testing.T) {
	doc := Parse("/** <!DOCTYPE html>{@code x} */")

	if text := doc.Body[0].(Text); text.Content != "<!DOCTYPE html>" {
		t.Errorf("expected doctype copied through, got %q", text.Content)
	}
}

func TestParseHTMLTags(t *testing.T) {
	doc := Parse("/** This is <b>bold</b> and <i>italic</i>. */")

	if len(doc.Body) != 1 {
		t.Fatalf("expected HTML to stay in text, got %d nodes", len(doc.Body))
	}
	if got := PlainText(doc.Body); got != "This is bold and italic." {
		t.Errorf("unexpected plain text %q", got)
	}
}

func TestPlainTextBlockTags(t *testing.T) {
	doc := Parse("/** First.<p>Second<br>third.<ul><li>one</li><li>two</li></ul> */")

	if got := PlainText(doc.Body); got != "First. Second third. one two" {
		t.Errorf("unexpected plain text %q", got)
	}
}

func TestParseMultipleBlockTags(t *testing.T) {
	input := `/**
	 * Description.
	 *
	 * @param a first param
	 * @param b second param
	 * @return the result
	 * @throws Exception if error
	 * @see java.util.Map#get(Object)
	 * @since 1.0
	 */`

	doc := Parse(input)

	if len(doc.BlockTags) != 6 {
		t.Fatalf("expected 6 block tags, got %d", len(doc.BlockTags))
	}

	names := []string{"param", "param", "return", "throws", "see", "since"}
	for i, name := range names {
		if doc.BlockTags[i].Name != name {
			t.Errorf("tag %d: expected %q, got %q", i, name, doc.BlockTags[i].Name)
		}
	}
	if doc.BlockTags[1].Param.Name != "b" {
		t.Errorf("expected repeated tags in source order")
	}
	if doc.BlockTags[4].Text != "java.util.Map#get(Object)" {
		t.Errorf("unexpected see text %q", doc.BlockTags[4].Text)
	}
	if doc.BlockTags[5].Kind != KindKnownText {
		t.Errorf("expected since to be known-text, got %s", doc.BlockTags[5].Kind)
	}
}

func TestParseUnknownTags(t *testing.T) {
	doc := Parse(`/**
	 * Uses {@totallyMadeUp xyz} here.
	 *
	 * @notARealTag something
	 * @custom line one
	 *   line two {@code x}
	 */`)

	inline := doc.Body[1].(InlineTag)
	if inline.Name != "totallyMadeUp" || inline.Kind != KindUnknown || inline.Text != "xyz" {
		t.Errorf("unexpected unknown inline tag %+v", inline)
	}

	if len(doc.BlockTags) != 2 {
		t.Fatalf("expected 2 block tags, got %d", len(doc.BlockTags))
	}
	first := doc.BlockTags[0]
	if first.Name != "notARealTag" || first.Kind != KindUnknown || first.Text != "something" {
		t.Errorf("unexpected unknown block tag %+v", first)
	}
	if first.Description != nil {
		t.Errorf("expected unknown tags to keep only raw text")
	}
	if got := doc.BlockTags[1].Text; got != "line one\n  line two {@code x}" {
		t.Errorf("expected raw text byte for byte, got %q", got)
	}
}

func TestParseHiddenTag(t *testing.T) {
	doc := Parse("/**\n * Internal.\n * @hidden\n */")

	if !doc.Hidden {
		t.Error("expected Hidden to be set")
	}
	if len(doc.BlockTags) != 1 || doc.BlockTags[0].Text != "" {
		t.Errorf("expected @hidden with empty argument, got %+v", doc.BlockTags)
	}
}

func TestParseInlineTagDoesNotStartBlockTag(t *testing.T) {
	doc := Parse(`/**
	 * Example {@code
	 * @Override
	 * public String toString()}
	 * @since 2
	 */`)

	if len(doc.BlockTags) != 1 || doc.BlockTags[0].Name != "since" {
		t.Fatalf("expected only @since, got %+v", doc.BlockTags)
	}
	code := doc.Body[1].(InlineTag)
	if !strings.Contains(code.Text, "@Override") {
		t.Errorf("expected annotation inside code, got %q", code.Text)
	}
}

func TestParseUnterminatedInlineTag(t *testing.T) {
	doc := Parse("/**\n * Start {@code unterminated\n * text\n * @param x desc\n */")

	if len(doc.Body) != 2 {
		t.Fatalf("expected 2 body nodes, got %+v", doc.Body)
	}
	code := doc.Body[1].(InlineTag)
	if code.Text != "unterminated\ntext" {
		t.Errorf("expected rest of body as argument, got %q", code.Text)
	}
	if len(doc.BlockTags) != 1 || doc.BlockTags[0].Param.Name != "x" {
		t.Errorf("expected @param to survive, got %+v", doc.BlockTags)
	}
}

func TestParseEmptyTagName(t *testing.T) {
	doc := Parse("/** a {@ b} c */")

	if len(doc.Body) != 1 {
		t.Fatalf("expected a single text node, got %+v", doc.Body)
	}
	if text := doc.Body[0].(Text); text.Content != "a {@ b} c" {
		t.Errorf("expected text to be kept, got %q", text.Content)
	}
}

func TestParseInlineTagWithoutArgument(t *testing.T) {
	doc := Parse("/** {@inheritDoc} and {@docRoot}/x.html */")

	inherit := doc.Body[0].(InlineTag)
	if inherit.Name != "inheritDoc" || inherit.Text != "" || inherit.Kind != KindKnown {
		t.Errorf("unexpected marker %+v", inherit)
	}
	if !HasInheritDoc(doc.Body) {
		t.Error("expected HasInheritDoc to find the marker")
	}
}

func TestParseIndexAndSystemProperty(t *testing.T) {
	doc := Parse(`/** {@index "search term" the description} and {@systemProperty user.home}. */`)

	index := doc.Body[0].(InlineTag)
	if index.Value != "search term" || PlainText(index.Label) != "the description" {
		t.Errorf("unexpected index tag %+v", index)
	}
	prop := doc.Body[2].(InlineTag)
	if prop.Value != "user.home" {
		t.Errorf("unexpected systemProperty value %q", prop.Value)
	}
}

func TestParseNestedBraces(t *testing.T) {
	doc := Parse("/** {@code {a {b} c}} and {@weird {x} y} */")

	code := doc.Body[0].(InlineTag)
	if code.Text != "{a {b} c}" {
		t.Errorf("expected nested braces preserved, got %q", code.Text)
	}
	weird := doc.Body[2].(InlineTag)
	if weird.Text != "{x} y" {
		t.Errorf("expected nested braces in unknown tag, got %q", weird.Text)
	}
}

func TestParseSeeTag(t *testing.T) {
	doc := Parse(`/**
	 * @see "The Java Language Specification"
	 * @see <a href="https://example.com">Example</a>
	 * @see Foo#bar(int, String) the bar method
	 */`)

	if len(doc.BlockTags) != 3 {
		t.Fatalf("expected 3 see tags, got %d", len(doc.BlockTags))
	}
	if doc.BlockTags[0].Text != `"The Java Language Specification"` {
		t.Errorf("unexpected text %q", doc.BlockTags[0].Text)
	}
	if doc.BlockTags[2].Text != "Foo#bar(int, String) the bar method" {
		t.Errorf("unexpected text %q", doc.BlockTags[2].Text)
	}
}

func TestFormat(t *testing.T) {
	input := `/**
	 * This is a description with {@code some code} in it.
	 * And a {@link java.util.List} reference.
	 *
	 * @param name the name to use
	 * @return the result
	 * @customTag kept as is
	 */`

	doc := Parse(input)
	formatted := Format(doc)

	// Check that code is formatted with backticks
	if !contains(formatted, "`some code`") {
		t.Errorf("expected backtick-wrapped code in output: %s", formatted)
	}
	if !contains(formatted, "And a List reference.") {
		t.Errorf("expected link to render its simple name: %s", formatted)
	}

	// Check that block tags are present
	if !contains(formatted, "@param name the name to use") {
		t.Errorf("expected @param in output: %s", formatted)
	}
	if !contains(formatted, "@return the result") {
		t.Errorf("expected @return in output: %s", formatted)
	}
	if !contains(formatted, "@customTag kept as is") {
		t.Errorf("expected unknown tag in output: %s", formatted)
	}
}

func TestParsePreBlock(t *testing.T) {
	input := `/**
	 * Example:
	 * <pre>{@code
	 * public class Foo {
	 *     private int x;
	 * }
	 * }</pre>
	 */`

	doc := Parse(input)
	formatted := Format(doc)

	// The formatted output should contain the code
	if !contains(formatted, "public class Foo") {
		t.Errorf("expected class declaration in output: %s", formatted)
	}
	if !contains(formatted, "    private int x") {
		t.Errorf("expected indented field declaration in output: %s", formatted)
	}
	if strings.Count(formatted, "```") != 2 {
		t.Errorf("expected a single fenced block: %s", formatted)
	}
}

func TestParseNeverPanics(t *testing.T) {
	inputs := []string{
		"",
		"/**",
		"*/",
		"/***/",
		"{@",
		"{@link",
		"{@link Foo#bar(",
		"@",
		"@@",
		"@{",
		"{{{{",
		"}}}}",
		"<!--",
		"<!-- {@code",
		"<",
		"/** @ */",
		"/** {@summary",
		"/** <p",
		"/** x.\n *\n * @param",
		"/** @see <a href=",
		"\x00\xff{@\xfe}",
	}

	for _, input := range inputs {
		doc := Parse(input)
		if doc == nil {
			t.Fatalf("Parse(%q) returned nil", input)
		}
		_ = Format(doc)
		_ = PlainText(doc.Summary)
		_ = ResolveReferences(doc, ReferenceContext{EnclosingType: "a.B"})
	}
}

func FuzzParse(f *testing.F) {
	f.Add("/** Summary. {@link a.B#c(int) label} <!-- x -->\n * @param x y\n * @foo bar */")
	f.Add("{@code {nested}} @return")
	f.Fuzz(func(t *testing.T, input string) {
		doc := Parse(input)
		_ = Format(doc)
		_ = ResolveReferences(doc, ReferenceContext{})
	})
}

func contains(s, substr string) bool {
	return len(s) >= len(substr) && (s == substr || len(s) > 0 && containsHelper(s, substr))
}

func containsHelper(s, substr string) bool {
	for i := 0; i <= len(s)-len(substr); i++ {
		if s[i:i+len(substr)] == substr {
			return true
		}
	}
	return false
}
