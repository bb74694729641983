package java

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func method(name string, params ...Parameter) *Element {
	return &Element{Kind: KindMethod, Name: name, Parameters: params, ReturnType: "void"}
}

func param(typ string) Parameter {
	return Parameter{Name: "arg", Type: typ}
}

func TestWalkOrderAndNames(t *testing.T) {
	anno := &Element{
		Kind: KindAnnotationType,
		Name: "Marker",
		Members: []*Element{
			{Kind: KindAnnotationMember, Name: "value", ReturnType: "String"},
		},
		Annotations: []Annotation{{Type: "java.lang.annotation.Documented"}},
	}
	widget := &Element{
		Kind: KindClass,
		Name: "Widget",
		Members: []*Element{
			{Kind: KindField, Name: "size"},
			method("resize", param("int")),
			method("resize", param("java.util.List<String>"), param("T...")),
			{Kind: KindClass, Name: "Part", Members: []*Element{method("run")}},
		},
	}
	pkg := &Element{Kind: KindPackage, Name: "com.example", Members: []*Element{widget, anno}}

	ix, err := Walk([]*Element{pkg})
	require.NoError(t, err)

	var ids []string
	for _, v := range ix.Visits {
		ids = append(ids, v.ID)
	}
	assert.Equal(t, []string{
		"com.example",
		"com.example.Widget",
		"com.example.Widget#size",
		"com.example.Widget#resize(int)",
		"com.example.Widget#resize(java.util.List,T[])",
		"com.example.Widget.Part",
		"com.example.Widget.Part#run()",
		"com.example.Marker",
		"com.example.Marker#value()",
	}, ids)

	v, ok := ix.Lookup(widget.Members[3])
	require.True(t, ok)
	assert.Equal(t, "com.example.Widget.Part", v.QualifiedName)
	assert.Equal(t, widget, v.Parent)
	assert.Equal(t, 2, v.Depth)
	assert.Equal(t, "com.example", v.Package)

	typ, ok := ix.Type("com.example.Marker")
	require.True(t, ok)
	assert.Same(t, anno, typ)
	assert.Equal(t, []*Element{pkg}, ix.Roots)
}

func TestWalkStructuralErrors(t *testing.T) {
	good := &Element{Kind: KindClass, Name: "Good"}
	unnamed := &Element{Kind: KindClass, Name: "Holder", Members: []*Element{{Kind: KindMethod}}}
	dangling := &Element{Kind: KindClass, Name: "Dangling", SuperType: "com.example.Missing"}
	external := &Element{Kind: KindClass, Name: "External", SuperType: "java.lang.Object", Interfaces: []string{"Runnable"}}
	stray := &Element{Kind: KindField, Name: "stray"}
	dup := &Element{Kind: KindClass, Name: "Good"}
	pkg := &Element{Kind: KindPackage, Name: "com.example", Members: []*Element{good, unnamed, dangling, external, stray, dup}}

	ix, err := Walk([]*Element{pkg})
	require.Error(t, err)

	var structural *StructuralError
	require.True(t, errors.As(err, &structural))

	assert.Contains(t, err.Error(), "element has no name")
	assert.Contains(t, err.Error(), "supertype com.example.Missing does not exist")
	assert.Contains(t, err.Error(), "field directly inside a package")
	assert.Contains(t, err.Error(), "duplicate type name")

	assert.Equal(t, []*Element{good, external}, ix.Members(pkg))
	assert.True(t, ix.Excluded(unnamed))
	assert.True(t, ix.Excluded(dangling))
	assert.False(t, ix.Excluded(good))

	typ, ok := ix.Type("com.example.Good")
	require.True(t, ok)
	assert.Same(t, good, typ)
}

func TestWalkNesting(t *testing.T) {
	nested := &Element{Kind: KindClass, Name: "Outer", Members: []*Element{{Kind: KindPackage, Name: "inner"}}}
	pkg := &Element{Kind: KindPackage, Name: "p", Members: []*Element{nested}}
	topLevelType := &Element{Kind: KindClass, Name: "Loose"}

	ix, err := Walk([]*Element{pkg, topLevelType})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "package nested inside a type")
	assert.Contains(t, err.Error(), "top-level element must be a package")
	assert.Equal(t, []*Element{pkg}, ix.Roots)
	assert.Empty(t, ix.Members(pkg))
}

func TestWalkDefaultPackage(t *testing.T) {
	pkg := &Element{Kind: KindPackage, Members: []*Element{{Kind: KindClass, Name: "Main"}}}

	ix, err := Walk([]*Element{pkg})
	require.NoError(t, err)
	_, ok := ix.Type("Main")
	assert.True(t, ok)
}

func TestAncestorOrder(t *testing.T) {
	// Base and both interfaces declare run(); Impl overrides it.
	base := &Element{Kind: KindClass, Name: "Base", Interfaces: []string{"Deep"}, Members: []*Element{method("run")}}
	deep := &Element{Kind: KindInterface, Name: "Deep", Members: []*Element{method("run")}}
	first := &Element{Kind: KindInterface, Name: "First", Members: []*Element{method("run")}}
	second := &Element{Kind: KindInterface, Name: "Second", Interfaces: []string{"First"}, Members: []*Element{method("run")}}
	impl := &Element{
		Kind:       KindClass,
		Name:       "Impl",
		SuperType:  "Base",
		Interfaces: []string{"p.Second", "First"},
		Members:    []*Element{method("run"), method("other")},
	}
	pkg := &Element{Kind: KindPackage, Name: "p", Members: []*Element{impl, base, deep, first, second}}

	ix, err := Walk([]*Element{pkg})
	require.NoError(t, err)

	assert.Equal(t, []*Element{base, second, first}, ix.Supertypes(impl))
	got := ix.Ancestors(impl.Members[0])
	assert.Equal(t, []*Element{base.Members[0], deep.Members[0], second.Members[0], first.Members[0]}, got)
	assert.Empty(t, ix.Ancestors(impl.Members[1]))
}

func TestAncestorsDiamond(t *testing.T) {
	top := &Element{Kind: KindInterface, Name: "Top", Members: []*Element{method("go")}}
	left := &Element{Kind: KindInterface, Name: "Left", Interfaces: []string{"Top"}}
	right := &Element{Kind: KindInterface, Name: "Right", Interfaces: []string{"Top"}}
	bottom := &Element{Kind: KindClass, Name: "Bottom", Interfaces: []string{"Left", "Right"}, Members: []*Element{method("go")}}
	pkg := &Element{Kind: KindPackage, Name: "d", Members: []*Element{top, left, right, bottom}}

	ix, err := Walk([]*Element{pkg})
	require.NoError(t, err)
	assert.Equal(t, []*Element{top.Members[0]}, ix.Ancestors(bottom.Members[0]))
}

func TestAncestorsMatching(t *testing.T) {
	base := &Element{
		Kind:           KindClass,
		Name:           "Base",
		TypeParameters: []string{"T extends Comparable<T>"},
		Members: []*Element{
			method("put", param("T"), param("java.util.List<T>")),
			method("get", param("int")),
			{Kind: KindMethod, Name: "hidden", Modifiers: []string{"private"}},
			{Kind: KindMethod, Name: "util", Modifiers: []string{"static"}},
		},
	}
	impl := &Element{
		Kind:      KindClass,
		Name:      "Impl",
		SuperType: "Base<String>",
		Members: []*Element{
			method("put", param("String"), param("List<String>")),
			method("get", param("long")),
			{Kind: KindMethod, Name: "hidden", Modifiers: []string{"private"}},
			{Kind: KindMethod, Name: "util", Modifiers: []string{"static"}},
			{Kind: KindConstructor, Name: "Impl"},
		},
	}
	pkg := &Element{Kind: KindPackage, Name: "m", Members: []*Element{base, impl}}

	ix, err := Walk([]*Element{pkg})
	require.NoError(t, err)

	assert.Equal(t, []*Element{base.Members[0]}, ix.Ancestors(impl.Members[0]))
	assert.Empty(t, ix.Ancestors(impl.Members[1]), "parameter types differ")
	assert.Empty(t, ix.Ancestors(impl.Members[2]), "private methods do not override")
	assert.Empty(t, ix.Ancestors(impl.Members[3]), "static methods do not override")
	assert.Empty(t, ix.Ancestors(impl.Members[4]), "constructors do not override")
}

func TestAncestorsCycle(t *testing.T) {
	a := &Element{Kind: KindInterface, Name: "A", Interfaces: []string{"B"}, Members: []*Element{method("x")}}
	b := &Element{Kind: KindInterface, Name: "B", Interfaces: []string{"A"}, Members: []*Element{method("x")}}
	pkg := &Element{Kind: KindPackage, Name: "c", Members: []*Element{a, b}}

	ix, err := Walk([]*Element{pkg})
	require.NoError(t, err)
	assert.Equal(t, []*Element{b.Members[0]}, ix.Ancestors(a.Members[0]))
}
