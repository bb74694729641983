// Package inherit fills missing documentation of overriding methods from the
// members they override.
package inherit

import (
	"strings"

	"github.com/mongodb-university/yokedox/java"
	"github.com/mongodb-university/yokedox/java/javadoc"
)

// Resolver resolves inherited documentation over a frozen index and the
// parsed comments of its elements. Resolve is a pure function of these
// inputs and may be called from several goroutines.
type Resolver struct {
	index *java.Index
	docs  map[*java.Element]*javadoc.DocComment
}

func New(index *java.Index, docs map[*java.Element]*javadoc.DocComment) *Resolver {
	return &Resolver{index: index, docs: docs}
}

// resolution holds the state of one Resolve call.
type resolution struct {
	*Resolver
	memo   map[*java.Element]*javadoc.DocComment
	active map[*java.Element]bool
}

// Resolve returns the comment of member with its missing fields filled in:
// the main description, the @param of each declared parameter, @return and
// the @throws of each declared exception. A field is missing when absent,
// blank or containing {@inheritDoc}; the first ancestor that documents it
// wins. A comment with nothing missing is returned as is. The stored
// comments are never modified.
func (r *Resolver) Resolve(member *java.Element) *javadoc.DocComment {
	if member.Kind != java.KindMethod {
		return r.docs[member]
	}
	res := &resolution{
		Resolver: r,
		memo:     make(map[*java.Element]*javadoc.DocComment),
		active:   make(map[*java.Element]bool),
	}
	return res.resolve(member)
}

// missing lists the fields of a comment that need a value.
type missing struct {
	body   bool
	params []int    // indexes into the member's parameters
	ret    bool
	throws []string // declared exceptions
}

func (m missing) none() bool {
	return !m.body && len(m.params) == 0 && !m.ret && len(m.throws) == 0
}

func (res *resolution) resolve(member *java.Element) *javadoc.DocComment {
	if doc, ok := res.memo[member]; ok {
		return doc
	}
	own := res.docs[member]
	if res.active[member] {
		return own
	}
	res.active[member] = true
	defer delete(res.active, member)

	need := missingFields(member, own)
	if need.none() {
		res.memo[member] = own
		return own
	}

	ancestors := res.index.Ancestors(member)
	ancestorDocs := make([]*javadoc.DocComment, len(ancestors))
	for i, ancestor := range ancestors {
		ancestorDocs[i] = res.resolve(ancestor)
	}

	doc := res.fill(member, own, need, ancestors, ancestorDocs)
	res.memo[member] = doc
	return doc
}

func missingFields(member *java.Element, own *javadoc.DocComment) missing {
	var need missing
	if own == nil {
		own = &javadoc.DocComment{}
	}

	need.body = javadoc.IsBlank(own.Body) || javadoc.HasInheritDoc(own.Body)
	for i, p := range member.Parameters {
		if tag := findParam(own, p.Name); !usable(tag) {
			need.params = append(need.params, i)
		}
	}
	if !member.ReturnsVoid() {
		if tag := findTag(own, "return"); !usable(tag) {
			need.ret = true
		}
	}
	for _, exception := range member.Throws {
		if tag := findThrows(own, exception); !usable(tag) {
			need.throws = append(need.throws, exception)
		}
	}
	return need
}

func (res *resolution) fill(member *java.Element, own *javadoc.DocComment, need missing, ancestors []*java.Element, docs []*javadoc.DocComment) *javadoc.DocComment {
	inheritedAny := false
	var doc *javadoc.DocComment
	if own != nil {
		doc = own.Clone()
	} else {
		doc = &javadoc.DocComment{}
	}

	if need.body {
		body := inheritBody(docs)
		if body != nil {
			inheritedAny = true
		}
		if javadoc.HasInheritDoc(doc.Body) {
			doc.Body = splice(doc.Body, body)
		} else {
			doc.Body = javadoc.CloneNodes(body)
		}
		doc.Summary = javadoc.Summary(doc.Body)
	}

	var appended []javadoc.BlockTag

	for _, i := range need.params {
		name := member.Parameters[i].Name
		var supplied *javadoc.BlockTag
		var from *java.Element
		for j, ancestor := range ancestors {
			if i < len(ancestor.Parameters) {
				if tag := findParam(docs[j], ancestor.Parameters[i].Name); documented(tag) {
					supplied, from = tag, ancestor
					break
				}
			}
		}
		if supplied != nil {
			inheritedAny = true
		}
		if tag := findParam(doc, name); tag != nil {
			res.fillTag(tag, supplied, from)
			continue
		}
		if supplied != nil {
			tag := res.inherited(*supplied, from)
			rest := strings.TrimSpace(strings.TrimPrefix(supplied.Text, supplied.Param.Name))
			tag.Param.Name = name
			tag.Text = strings.TrimSpace(name + " " + rest)
			appended = append(appended, tag)
		}
	}

	if need.ret {
		var supplied *javadoc.BlockTag
		var from *java.Element
		for j, ancestor := range ancestors {
			if tag := findTag(docs[j], "return"); documented(tag) {
				supplied, from = tag, ancestor
				break
			}
		}
		if supplied != nil {
			inheritedAny = true
		}
		if tag := findTag(doc, "return"); tag != nil {
			res.fillTag(tag, supplied, from)
		} else if supplied != nil {
			appended = append(appended, res.inherited(*supplied, from))
		}
	}

	for _, exception := range need.throws {
		var supplied *javadoc.BlockTag
		var from *java.Element
		for j, ancestor := range ancestors {
			if tag := findThrows(docs[j], exception); documented(tag) {
				supplied, from = tag, ancestor
				break
			}
		}
		if supplied != nil {
			inheritedAny = true
		}
		if tag := findThrows(doc, exception); tag != nil {
			res.fillTag(tag, supplied, from)
		} else if supplied != nil {
			appended = append(appended, res.inherited(*supplied, from))
		}
	}

	if own == nil && !inheritedAny {
		return nil
	}
	doc.BlockTags = append(doc.BlockTags, appended...)
	return doc
}

// inherited copies an ancestor's tag and records where it came from.
func (res *resolution) inherited(tag javadoc.BlockTag, from *java.Element) javadoc.BlockTag {
	c := (&javadoc.DocComment{BlockTags: []javadoc.BlockTag{tag}}).Clone().BlockTags[0]
	if c.Inherited == nil {
		c.Inherited = &javadoc.Inheritance{From: res.id(from)}
	}
	return c
}

// fillTag completes an own tag: {@inheritDoc} markers are spliced, a blank
// description is replaced by the supplied one.
func (res *resolution) fillTag(tag, supplied *javadoc.BlockTag, from *java.Element) {
	if javadoc.HasInheritDoc(tag.Description) {
		tag.Description = splice(tag.Description, description(supplied))
		return
	}
	if supplied == nil {
		return
	}
	tag.Description = javadoc.CloneNodes(supplied.Description)
	tag.Inherited = supplied.Inherited
	if tag.Inherited == nil {
		tag.Inherited = &javadoc.Inheritance{From: res.id(from)}
	}
}

func (res *resolution) id(e *java.Element) string {
	if v, ok := res.index.Lookup(e); ok {
		return v.ID
	}
	return e.Name
}

func inheritBody(docs []*javadoc.DocComment) []javadoc.Node {
	for _, doc := range docs {
		if doc != nil && !javadoc.IsBlank(doc.Body) {
			return doc.Body
		}
	}
	return nil
}

func documented(tag *javadoc.BlockTag) bool {
	return tag != nil && !javadoc.IsBlank(tag.Description)
}

// usable reports whether an own tag supplies its field: it has a
// description and does not ask to inherit it.
func usable(tag *javadoc.BlockTag) bool {
	return documented(tag) && !javadoc.HasInheritDoc(tag.Description)
}

func description(tag *javadoc.BlockTag) []javadoc.Node {
	if tag == nil {
		return nil
	}
	return tag.Description
}

func findTag(doc *javadoc.DocComment, name string) *javadoc.BlockTag {
	if doc == nil {
		return nil
	}
	for i := range doc.BlockTags {
		if doc.BlockTags[i].Name == name {
			return &doc.BlockTags[i]
		}
	}
	return nil
}

func findParam(doc *javadoc.DocComment, name string) *javadoc.BlockTag {
	if doc == nil || name == "" {
		return nil
	}
	for i := range doc.BlockTags {
		tag := &doc.BlockTags[i]
		if tag.Name == "param" && tag.Param != nil && !tag.Param.TypeParameter && tag.Param.Name == name {
			return tag
		}
	}
	return nil
}

// findThrows finds the @throws or @exception tag of an exception, comparing
// simple names.
func findThrows(doc *javadoc.DocComment, exception string) *javadoc.BlockTag {
	if doc == nil {
		return nil
	}
	want := java.SimpleName(exception)
	for i := range doc.BlockTags {
		tag := &doc.BlockTags[i]
		if (tag.Name == "throws" || tag.Name == "exception") && java.SimpleName(tag.Exception) == want {
			return tag
		}
	}
	return nil
}

// splice replaces each {@inheritDoc} marker with the inherited segments and
// keeps the surrounding text. With nothing inherited the markers are removed.
func splice(nodes, inherited []javadoc.Node) []javadoc.Node {
	var result []javadoc.Node
	for _, node := range nodes {
		if javadoc.IsInheritDoc(node) {
			result = append(result, javadoc.CloneNodes(inherited)...)
			continue
		}
		if tag, ok := node.(javadoc.InlineTag); ok && javadoc.HasInheritDoc(tag.Label) {
			tag.Label = splice(tag.Label, inherited)
			node = tag
		}
		result = append(result, node)
	}
	return mergeText(result)
}

func mergeText(nodes []javadoc.Node) []javadoc.Node {
	var result []javadoc.Node
	for _, node := range nodes {
		text, ok := node.(javadoc.Text)
		if !ok {
			result = append(result, node)
			continue
		}
		if n := len(result); n > 0 {
			if prev, ok := result[n-1].(javadoc.Text); ok {
				result[n-1] = javadoc.Text{Content: prev.Content + text.Content}
				continue
			}
		}
		result = append(result, text)
	}
	return result
}
