package java

import (
	"errors"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Visit is one element of the flattened tree, with the names derived from
// its position.
type Visit struct {
	Element       *Element
	Parent        *Element // nil for packages
	Depth         int      // 0 for packages, 1 for top-level types
	QualifiedName string
	ID            string // Qualified name for types, "pkg.Type#name(T1,T2)" for members
	Package       string
}

// Index is the frozen result of Walk. It is safe for concurrent reads.
type Index struct {
	Roots  []*Element // Packages that were not excluded, in input order
	Visits []Visit    // Included elements in declaration order

	visits     map[*Element]int
	types      map[string]*Element
	supertypes map[*Element][]*Element
	ancestors  map[*Element][]*Element
	excluded   map[*Element]bool
}

type walker struct {
	records  []Visit
	tops     []*Element
	types    map[string]int
	packages map[string]bool
	excluded map[*Element]bool
	errs     []error
}

// Walk traverses packages, types and members in declaration order and builds
// the index the later stages read from. Structural problems do not stop the
// walk: each one is reported as a *StructuralError, the affected top-level
// subtree is left out of the index and the remaining elements are indexed.
func Walk(roots []*Element) (*Index, error) {
	w := &walker{
		types:    make(map[string]int),
		packages: make(map[string]bool),
		excluded: make(map[*Element]bool),
	}

	for _, root := range roots {
		if root == nil {
			continue
		}
		w.visit(root, nil, root, 0, "", "")
	}
	w.checkSupertypes()

	ix := w.freeze(roots)
	return ix, errors.Join(w.errs...)
}

func (w *walker) fail(top *Element, qualifiedName, reason string) {
	w.errs = append(w.errs, &StructuralError{QualifiedName: qualifiedName, Reason: reason})
	w.excluded[top] = true
}

func (w *walker) visit(e, parent, top *Element, depth int, parentName, pkg string) {
	qualifiedName := e.QualifiedName
	if qualifiedName == "" {
		qualifiedName = joinName(parentName, e.Name)
	}
	if depth == 1 {
		top = e
	}

	if reason := nestingError(e, parent); reason != "" {
		w.fail(top, qualifiedName, reason)
		return
	}

	id := qualifiedName
	switch {
	case e.Kind == KindPackage:
		pkg = qualifiedName
		w.packages[pkg] = true
	case e.Kind.IsMember():
		id = parentName + "#" + e.Signature()
	case e.Kind.IsType():
		if _, dup := w.types[qualifiedName]; dup {
			w.fail(top, qualifiedName, "duplicate type name")
			return
		}
		w.types[qualifiedName] = len(w.records)
	}

	w.records = append(w.records, Visit{
		Element:       e,
		Parent:        parent,
		Depth:         depth,
		QualifiedName: qualifiedName,
		ID:            id,
		Package:       pkg,
	})
	w.tops = append(w.tops, top)

	for _, member := range e.Members {
		if member == nil {
			continue
		}
		w.visit(member, e, top, depth+1, qualifiedName, pkg)
	}
}

func nestingError(e, parent *Element) string {
	switch {
	case !e.Kind.Valid():
		return "unknown element kind " + string(e.Kind)
	case e.Name == "" && e.Kind != KindPackage:
		return "element has no name"
	case parent == nil && e.Kind != KindPackage:
		return "top-level element must be a package"
	case parent == nil:
		return ""
	case e.Kind == KindPackage && parent.Kind == KindPackage:
		return "package nested inside a package"
	case e.Kind == KindPackage:
		return "package nested inside a type"
	case parent.Kind == KindPackage && e.Kind.IsMember():
		return string(e.Kind) + " directly inside a package"
	case parent.Kind.IsMember():
		return string(e.Kind) + " nested inside a " + string(parent.Kind)
	}
	return ""
}

// checkSupertypes reports supertype references that name a type inside one
// of the supplied packages that does not exist. Other unresolved names are
// external types.
func (w *walker) checkSupertypes() {
	for i, rec := range w.records {
		if !rec.Element.Kind.IsType() || w.excluded[w.tops[i]] {
			continue
		}
		refs := rec.Element.Interfaces
		if rec.Element.SuperType != "" {
			refs = append([]string{rec.Element.SuperType}, refs...)
		}
		for _, ref := range refs {
			if _, ok := w.resolve(ref, rec.QualifiedName); ok {
				continue
			}
			if w.inSuppliedPackage(stripTypeArguments(ref)) {
				w.fail(w.tops[i], rec.QualifiedName, "supertype "+ref+" does not exist")
			}
		}
	}
}

// resolve looks a type name up from the scope of the referencing type: the
// name as written, then relative to each enclosing scope, innermost first.
func (w *walker) resolve(ref, scope string) (int, bool) {
	name := stripTypeArguments(ref)
	if name == "" {
		return 0, false
	}
	for {
		if i, ok := w.types[joinName(scope, name)]; ok {
			return i, true
		}
		if scope == "" {
			return 0, false
		}
		if dot := strings.LastIndex(scope, "."); dot >= 0 {
			scope = scope[:dot]
		} else {
			scope = ""
		}
	}
}

// inSuppliedPackage reports whether a dotted name points into a supplied
// package: the longest supplied package prefix is followed by a type name.
func (w *walker) inSuppliedPackage(name string) bool {
	best := -1
	for pkg := range w.packages {
		if pkg != "" && strings.HasPrefix(name, pkg+".") && len(pkg) > best {
			best = len(pkg)
		}
	}
	if best < 0 {
		return false
	}
	first, _ := utf8.DecodeRuneInString(name[best+1:])
	return unicode.IsUpper(first)
}

func (w *walker) freeze(roots []*Element) *Index {
	ix := &Index{
		visits:     make(map[*Element]int),
		types:      make(map[string]*Element),
		supertypes: make(map[*Element][]*Element),
		ancestors:  make(map[*Element][]*Element),
		excluded:   w.excluded,
	}

	for i, rec := range w.records {
		if w.excluded[w.tops[i]] {
			continue
		}
		ix.visits[rec.Element] = len(ix.Visits)
		ix.Visits = append(ix.Visits, rec)
		if rec.Element.Kind.IsType() {
			ix.types[rec.QualifiedName] = rec.Element
		}
	}
	for _, root := range roots {
		if _, ok := ix.visits[root]; ok {
			ix.Roots = append(ix.Roots, root)
		}
	}

	for _, rec := range ix.Visits {
		if !rec.Element.Kind.IsType() {
			continue
		}
		ix.supertypes[rec.Element] = ix.directSupertypes(rec.Element, rec.QualifiedName, w)
	}
	for _, rec := range ix.Visits {
		if rec.Element.Kind == KindMethod && rec.Parent != nil {
			if ancestors := ix.findAncestors(rec.Element, rec.Parent); len(ancestors) > 0 {
				ix.ancestors[rec.Element] = ancestors
			}
		}
	}
	return ix
}

func (ix *Index) directSupertypes(t *Element, scope string, w *walker) []*Element {
	var result []*Element
	add := func(ref string) {
		i, ok := w.resolve(ref, scope)
		if !ok {
			return
		}
		if sup, ok := ix.types[w.records[i].QualifiedName]; ok && sup != t {
			result = append(result, sup)
		}
	}
	if t.SuperType != "" {
		add(t.SuperType)
	}
	for _, ref := range t.Interfaces {
		add(ref)
	}
	return result
}

// findAncestors lists the members a method overrides: the supertype's
// matching member first, then each interface's in declaration order,
// depth first. Each type is searched once.
func (ix *Index) findAncestors(member, owner *Element) []*Element {
	if member.IsStatic() || member.IsPrivate() {
		return nil
	}

	var result []*Element
	visited := map[*Element]bool{owner: true}
	var search func(t *Element)
	search = func(t *Element) {
		for _, sup := range ix.supertypes[t] {
			if visited[sup] {
				continue
			}
			visited[sup] = true
			if m := overridden(sup, member, owner); m != nil {
				result = append(result, m)
			}
			search(sup)
		}
	}
	search(owner)
	return result
}

func overridden(sup, member, owner *Element) *Element {
	for _, candidate := range sup.Members {
		if candidate == nil || candidate.Kind != KindMethod || candidate.Name != member.Name {
			continue
		}
		if candidate.IsStatic() || candidate.IsPrivate() {
			continue
		}
		if sameParameters(candidate, sup, member, owner) {
			return candidate
		}
	}
	return nil
}

// sameParameters compares parameter lists by erased simple type name. A type
// variable of either side matches any type.
func sameParameters(a, aOwner, b, bOwner *Element) bool {
	if len(a.Parameters) != len(b.Parameters) {
		return false
	}
	vars := make(map[string]bool)
	for _, e := range []*Element{a, aOwner, b, bOwner} {
		for _, param := range e.TypeParameters {
			vars[TypeVariable(param)] = true
		}
	}
	for i := range a.Parameters {
		ta, tb := ParseType(a.Parameters[i].Type), ParseType(b.Parameters[i].Type)
		if ta.ArrayDepth != tb.ArrayDepth {
			return false
		}
		if vars[ta.Name] || vars[tb.Name] {
			continue
		}
		if ta.SimpleName() != tb.SimpleName() {
			return false
		}
	}
	return true
}

// Lookup returns the visit record of an included element.
func (ix *Index) Lookup(e *Element) (Visit, bool) {
	i, ok := ix.visits[e]
	if !ok {
		return Visit{}, false
	}
	return ix.Visits[i], true
}

// Type returns the included type with the given qualified name.
func (ix *Index) Type(qualifiedName string) (*Element, bool) {
	t, ok := ix.types[qualifiedName]
	return t, ok
}

// Supertypes returns the in-tree direct supertypes of a type: the supertype
// first, then interfaces in declaration order.
func (ix *Index) Supertypes(t *Element) []*Element {
	return ix.supertypes[t]
}

// Ancestors returns the members the given method overrides, nearest first.
// The slice must not be modified.
func (ix *Index) Ancestors(member *Element) []*Element {
	return ix.ancestors[member]
}

// Members returns the included members of an element in declaration order.
func (ix *Index) Members(e *Element) []*Element {
	var result []*Element
	for _, member := range e.Members {
		if _, ok := ix.visits[member]; ok {
			result = append(result, member)
		}
	}
	return result
}

// Excluded reports whether a top-level element was left out because of a
// structural error.
func (ix *Index) Excluded(e *Element) bool {
	return ix.excluded[e]
}

func joinName(parent, name string) string {
	if parent == "" {
		return name
	}
	if name == "" {
		return parent
	}
	return parent + "." + name
}
