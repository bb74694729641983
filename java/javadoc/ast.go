// Package javadoc parses Javadoc comments into a tag model and resolves the
// cross references they contain.
package javadoc

// Node is the interface implemented by all body segments: Text and InlineTag.
type Node interface {
	node()
}

// TagKind classifies a tag by how much of it the parser understands.
type TagKind string

const (
	// KindKnown marks an inline tag from the known inline tag table.
	KindKnown TagKind = "known"
	// KindKnownStructured marks a block tag with parsed sub-fields.
	KindKnownStructured TagKind = "known-structured"
	// KindKnownText marks a recognized block tag whose argument is prose.
	KindKnownText TagKind = "known-text"
	// KindUnknown marks any tag name the parser does not recognize.
	KindUnknown TagKind = "unknown"
)

// DocComment represents a complete, parsed Javadoc comment.
type DocComment struct {
	Summary   []Node     // First sentence, or the content of {@summary ...}
	Body      []Node     // Main description content
	BlockTags []BlockTag // Block tags in source order
	Hidden    bool       // true if @hidden is among the block tags
}

// Text represents plain text content. HTML markup, HTML comments and entities
// are kept verbatim inside text.
type Text struct {
	Content string
}

func (Text) node() {}

// InlineTag represents an inline tag like {@link ...} or {@code ...}.
type InlineTag struct {
	Name string
	Kind TagKind
	Text string // Raw argument text

	// Label holds parsed content for tags that carry prose: the label of
	// {@link} and {@linkplain}, the description of {@index} and the content
	// of {@summary}.
	Label []Node

	// Reference is the resolved target of {@link}, {@linkplain} and {@value}.
	// It is nil until ResolveReferences runs, and stays nil for {@value}
	// without an argument.
	Reference *Reference

	// Value is the resolved form of {@docRoot} (the configured root),
	// {@index} (the search term) and {@systemProperty} (the property name).
	Value string
}

func (InlineTag) node() {}

// BlockTag represents a block tag like @param or @see.
type BlockTag struct {
	Name string
	Kind TagKind
	Text string // Raw argument text, verbatim

	// Description holds the parsed argument of known tags. For @param and
	// @throws it excludes the parameter or exception name. Unknown tags keep
	// only Text.
	Description []Node

	Param     *ParamName // @param
	Exception string     // @throws and @exception
	Reference *Reference // @see, set by ResolveReferences

	// Inherited is set when the tag was copied from an ancestor member.
	Inherited *Inheritance
}

// ParamName is the parsed name of a @param tag.
type ParamName struct {
	Name          string
	TypeParameter bool // true if <T>, false if regular parameter
}

// Inheritance records where an inherited tag came from.
type Inheritance struct {
	From string // Member id of the ancestor, e.g. "com.example.Base#run(int)"
}

// Tags returns the block tags with the given name, in source order.
func (d *DocComment) Tags(name string) []BlockTag {
	if d == nil {
		return nil
	}
	var tags []BlockTag
	for _, tag := range d.BlockTags {
		if tag.Name == name {
			tags = append(tags, tag)
		}
	}
	return tags
}

// Clone returns a deep copy of the comment so later stages can rewrite it
// without touching the input.
func (d *DocComment) Clone() *DocComment {
	if d == nil {
		return nil
	}
	c := &DocComment{
		Summary: CloneNodes(d.Summary),
		Body:    CloneNodes(d.Body),
		Hidden:  d.Hidden,
	}
	if d.BlockTags != nil {
		c.BlockTags = make([]BlockTag, len(d.BlockTags))
		for i, tag := range d.BlockTags {
			c.BlockTags[i] = tag.clone()
		}
	}
	return c
}

func (t BlockTag) clone() BlockTag {
	c := t
	c.Description = CloneNodes(t.Description)
	if t.Param != nil {
		p := *t.Param
		c.Param = &p
	}
	if t.Reference != nil {
		c.Reference = t.Reference.clone()
	}
	if t.Inherited != nil {
		i := *t.Inherited
		c.Inherited = &i
	}
	return c
}

// CloneNodes returns a deep copy of a segment list.
func CloneNodes(nodes []Node) []Node {
	if nodes == nil {
		return nil
	}
	result := make([]Node, len(nodes))
	for i, node := range nodes {
		if tag, ok := node.(InlineTag); ok {
			tag.Label = CloneNodes(tag.Label)
			if tag.Reference != nil {
				tag.Reference = tag.Reference.clone()
			}
			node = tag
		}
		result[i] = node
	}
	return result
}

// IsInheritDoc reports whether the node is an {@inheritDoc} marker.
func IsInheritDoc(node Node) bool {
	tag, ok := node.(InlineTag)
	return ok && tag.Name == "inheritDoc"
}

// HasInheritDoc reports whether any node, including link labels, is an
// {@inheritDoc} marker.
func HasInheritDoc(nodes []Node) bool {
	for _, node := range nodes {
		if IsInheritDoc(node) {
			return true
		}
		if tag, ok := node.(InlineTag); ok && HasInheritDoc(tag.Label) {
			return true
		}
	}
	return false
}

// IsBlank reports whether the nodes carry no content besides whitespace.
func IsBlank(nodes []Node) bool {
	for _, node := range nodes {
		switch n := node.(type) {
		case Text:
			if !isBlankString(n.Content) {
				return false
			}
		default:
			return false
		}
	}
	return true
}

func isBlankString(s string) bool {
	for _, ch := range s {
		if !isWhitespace(ch) {
			return false
		}
	}
	return true
}
