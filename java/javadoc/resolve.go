package javadoc

import (
	"fmt"
	"regexp"
	"strings"
)

// ExternalEntityPattern links types whose name matches From to an external
// documentation site: ToPrefix + the name with dots as slashes + ToSuffix.
type ExternalEntityPattern struct {
	From     *regexp.Regexp
	ToPrefix string
	ToSuffix string
}

// NewExternalEntityPattern compiles an external entity pattern.
func NewExternalEntityPattern(from, toPrefix, toSuffix string) (ExternalEntityPattern, error) {
	re, err := regexp.Compile(from)
	if err != nil {
		return ExternalEntityPattern{}, fmt.Errorf("compile external entity pattern %q: %w", from, err)
	}
	return ExternalEntityPattern{From: re, ToPrefix: toPrefix, ToSuffix: toSuffix}, nil
}

// URL returns the external URL for the qualified name, if it matches.
func (e ExternalEntityPattern) URL(qualifiedName string) (string, bool) {
	if e.From == nil || !e.From.MatchString(qualifiedName) {
		return "", false
	}
	return e.ToPrefix + strings.ReplaceAll(qualifiedName, ".", "/") + e.ToSuffix, true
}

// ReferenceContext is what references are resolved against.
type ReferenceContext struct {
	EnclosingType string // Qualified name used for #member references
	DocRoot       string // Value of {@docRoot}
	Patterns      []ExternalEntityPattern

	// Qualify maps a type name as written to the qualified name of a known
	// type. A nil Qualify, or a false result, keeps the name as written.
	Qualify func(name string) (string, bool)
}

// ResolveReferences returns a copy of doc with every {@link}, {@linkplain},
// {@value} and @see reference parsed, and {@docRoot} set. The input is not
// modified.
func ResolveReferences(doc *DocComment, ctx ReferenceContext) *DocComment {
	if doc == nil {
		return nil
	}
	c := doc.Clone()
	c.Summary = ctx.resolveNodes(c.Summary)
	c.Body = ctx.resolveNodes(c.Body)
	for i := range c.BlockTags {
		tag := &c.BlockTags[i]
		tag.Description = ctx.resolveNodes(tag.Description)
		if tag.Name == "see" {
			tag.Reference = ctx.resolve(tag.Text)
		}
	}
	return c
}

// resolveNodes rewrites nodes in place; callers pass cloned slices.
func (ctx ReferenceContext) resolveNodes(nodes []Node) []Node {
	for i, node := range nodes {
		tag, ok := node.(InlineTag)
		if !ok {
			continue
		}
		tag.Label = ctx.resolveNodes(tag.Label)
		switch tag.Name {
		case "link", "linkplain":
			tag.Reference = ctx.resolve(tag.Text)
		case "value":
			if tag.Text != "" {
				tag.Reference = ctx.resolve(tag.Text)
			}
		case "docRoot":
			tag.Value = ctx.DocRoot
		}
		nodes[i] = tag
	}
	return nodes
}

func (ctx ReferenceContext) resolve(text string) *Reference {
	ref := ParseReference(text)
	if ref.Kind != ReferenceStructured {
		return ref
	}
	if ref.Type == "" {
		ref.Type = ctx.EnclosingType
	} else if ctx.Qualify != nil {
		if name, ok := ctx.Qualify(ref.Type); ok {
			ref.Type = name
		}
	}
	for _, pattern := range ctx.Patterns {
		if url, ok := pattern.URL(ref.Type); ok {
			ref.URL = url
			break
		}
	}
	return ref
}
