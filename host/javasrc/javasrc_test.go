package javasrc

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mongodb-university/yokedox/config"
	"github.com/mongodb-university/yokedox/java"
)

const widget = `package com.example;

import java.util.List;

// not documentation
/**
 * A widget.
 */
@Deprecated
public final class Widget<T extends Comparable<T>> extends Base implements Runnable, Cloneable {
    /** The answer. */
    public static final int ANSWER = 42, OTHER = 7;

    private List<String> names;

    /** Makes one. */
    public Widget(String name) throws java.io.IOException {}

    /**
     * Runs it.
     */
    @Override
    public void run() {}

    /* plain block comment */
    public <R> R map(java.util.function.Function<T, R> fn, String... rest) { return null; }

    /** Inner. */
    static class Inner {}
}
`

func parse(t *testing.T, path, src string) *File {
	t.Helper()
	f, err := ParseFile(path, []byte(src))
	require.NoError(t, err)
	return f
}

func TestParseClass(t *testing.T) {
	f := parse(t, "com/example/Widget.java", widget)
	assert.Equal(t, "com.example", f.Package)
	assert.False(t, f.SyntaxErrors)
	require.Len(t, f.Types, 1)

	w := f.Types[0]
	assert.Equal(t, java.KindClass, w.Kind)
	assert.Equal(t, "Widget", w.Name)
	assert.Equal(t, []string{"public", "final"}, w.Modifiers)
	assert.Equal(t, []string{"T extends Comparable<T>"}, w.TypeParameters)
	assert.Equal(t, "Base", w.SuperType)
	assert.Equal(t, []string{"Runnable", "Cloneable"}, w.Interfaces)
	assert.Equal(t, "com/example/Widget.java:9", w.Source)
	require.NotNil(t, w.Comment)
	assert.Equal(t, "/**\n * A widget.\n */", *w.Comment)
	assert.Equal(t, []java.Annotation{{Type: "Deprecated"}}, w.Annotations)

	names := make([]string, len(w.Members))
	for i, m := range w.Members {
		names[i] = m.Name
	}
	assert.Equal(t, []string{"ANSWER", "OTHER", "names", "Widget", "run", "map", "Inner"}, names)

	answer, other, field := w.Members[0], w.Members[1], w.Members[2]
	assert.Equal(t, java.KindField, answer.Kind)
	assert.Equal(t, "int", answer.ReturnType)
	assert.Equal(t, "42", answer.Constant)
	assert.Equal(t, "7", other.Constant)
	assert.Equal(t, "/** The answer. */", *other.Comment)
	assert.Equal(t, "List<String>", field.ReturnType)
	assert.Empty(t, field.Constant)
	assert.Nil(t, field.Comment)

	ctor := w.Members[3]
	assert.Equal(t, java.KindConstructor, ctor.Kind)
	assert.Equal(t, []java.Parameter{{Name: "name", Type: "String"}}, ctor.Parameters)
	assert.Equal(t, []string{"java.io.IOException"}, ctor.Throws)

	run := w.Members[4]
	assert.Equal(t, "void", run.ReturnType)
	assert.Equal(t, []java.Annotation{{Type: "Override"}}, run.Annotations)
	assert.Contains(t, *run.Comment, "Runs it.")

	m := w.Members[5]
	assert.Nil(t, m.Comment)
	assert.Equal(t, []string{"R"}, m.TypeParameters)
	assert.Equal(t, []java.Parameter{
		{Name: "fn", Type: "java.util.function.Function<T, R>"},
		{Name: "rest", Type: "String..."},
	}, m.Parameters)

	inner := w.Members[6]
	assert.Equal(t, java.KindClass, inner.Kind)
	assert.Equal(t, []string{"static"}, inner.Modifiers)
	assert.Equal(t, "/** Inner. */", *inner.Comment)
}

const cascade = `package com.example;

import java.lang.annotation.*;

/** Cascades. */
@Retention(RetentionPolicy.RUNTIME)
@Target({ElementType.TYPE, ElementType.METHOD})
public @interface Cascade {
    /** Children. */
    Class<?>[] children() default {};
    String name() default "all";
    int depth() default 3;
    double weight() default 1.5;
    boolean eager() default true;
    Kind kind() default @Kind(value = "x", types = {String.class});
}
`

func TestParseAnnotationType(t *testing.T) {
	f := parse(t, "Cascade.java", cascade)
	require.Len(t, f.Types, 1)
	c := f.Types[0]
	assert.Equal(t, java.KindAnnotationType, c.Kind)
	assert.Equal(t, []java.Annotation{
		{Type: "Retention", ElementValuePairs: []java.ElementValuePair{
			{Name: "value", Value: java.EnumConstant{Type: "RetentionPolicy", Constant: "RUNTIME"}},
		}},
		{Type: "Target", ElementValuePairs: []java.ElementValuePair{
			{Name: "value", Value: []any{
				java.EnumConstant{Type: "ElementType", Constant: "TYPE"},
				java.EnumConstant{Type: "ElementType", Constant: "METHOD"},
			}},
		}},
	}, c.Annotations)

	require.Len(t, c.Members, 6)
	for _, m := range c.Members {
		assert.Equal(t, java.KindAnnotationMember, m.Kind)
	}
	assert.Equal(t, "Class<?>[]", c.Members[0].ReturnType)
	assert.Equal(t, []any{}, c.Members[0].Default)
	assert.Equal(t, "/** Children. */", *c.Members[0].Comment)
	assert.Equal(t, "all", c.Members[1].Default)
	assert.Equal(t, int64(3), c.Members[2].Default)
	assert.Equal(t, 1.5, c.Members[3].Default)
	assert.Equal(t, true, c.Members[4].Default)
	assert.Equal(t, java.Annotation{Type: "Kind", ElementValuePairs: []java.ElementValuePair{
		{Name: "value", Value: "x"},
		{Name: "types", Value: []any{java.ClassLiteral{Type: "String"}}},
	}}, c.Members[5].Default)
}

func TestParseOtherTypes(t *testing.T) {
	f := parse(t, "p/Types.java", `package p;

/** Shapes. */
interface Shape<T> extends Comparable<T>, Cloneable {
    double PI = 3.14;
    /** Area. */
    double area();
}

/** Colors. */
enum Color implements Runnable {
    /** Red. */
    RED,
    GREEN;

    public void run() {}
}

/** A point. */
record Point(int x, int y) {}
`)
	require.Len(t, f.Types, 3)

	shape := f.Types[0]
	assert.Equal(t, java.KindInterface, shape.Kind)
	assert.Equal(t, []string{"Comparable<T>", "Cloneable"}, shape.Interfaces)
	require.Len(t, shape.Members, 2)
	assert.Equal(t, "3.14", shape.Members[0].Constant)
	assert.Equal(t, "/** Area. */", *shape.Members[1].Comment)

	color := f.Types[1]
	assert.Equal(t, java.KindEnum, color.Kind)
	assert.Equal(t, []string{"Runnable"}, color.Interfaces)
	require.Len(t, color.Members, 3)
	assert.Equal(t, java.KindEnumConstant, color.Members[0].Kind)
	assert.Equal(t, "/** Red. */", *color.Members[0].Comment)
	assert.Nil(t, color.Members[1].Comment)
	assert.Equal(t, java.KindMethod, color.Members[2].Kind)

	point := f.Types[2]
	assert.Equal(t, java.KindRecord, point.Kind)
	assert.Equal(t, []java.Parameter{{Name: "x", Type: "int"}, {Name: "y", Type: "int"}}, point.Parameters)
	assert.Equal(t, "/** A point. */", *point.Comment)
}

func TestParseSyntaxErrors(t *testing.T) {
	f := parse(t, "Bad.java", "package p;\n/** Ok. */\nclass Ok {}\nclass Bad { void x( }\n")
	assert.True(t, f.SyntaxErrors)
	require.NotEmpty(t, f.Types)
	assert.Equal(t, "Ok", f.Types[0].Name)
}

func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for name, src := range files {
		p := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(src), 0o644))
	}
	return root
}

func TestLoad(t *testing.T) {
	root := writeTree(t, map[string]string{
		"com/example/B.java":            "package com.example;\nclass B {}\n",
		"com/example/A.java":            "package com.example;\nclass A {}\n",
		"com/example/package-info.java": "/** The example package. */\npackage com.example;\n",
		"com/example/util/U.java":       "package com.example.util;\nclass U {}\n",
		"gen/G.java":                    "package gen;\nclass G {}\n",
		".hidden/H.java":                "package hidden;\nclass H {}\n",
		"README.md":                     "not java",
	})
	exclude, err := config.NewPathFilter([]string{"gen/**"})
	require.NoError(t, err)

	roots, err := Load(context.Background(), root, Options{Exclude: exclude, Parallelism: 4})
	require.NoError(t, err)
	require.Len(t, roots, 2)

	pkg := roots[0]
	assert.Equal(t, "com.example", pkg.Name)
	require.NotNil(t, pkg.Comment)
	assert.Equal(t, "/** The example package. */", *pkg.Comment)
	require.Len(t, pkg.Members, 2)
	assert.Equal(t, "A", pkg.Members[0].Name)
	assert.Equal(t, "com/example/A.java:2", pkg.Members[0].Source)
	assert.Equal(t, "B", pkg.Members[1].Name)

	assert.Equal(t, "com.example.util", roots[1].Name)

	_, err = java.Walk(roots)
	assert.NoError(t, err)
}

func TestLoadCancelled(t *testing.T) {
	root := writeTree(t, map[string]string{"A.java": "class A {}\n"})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Load(ctx, root, Options{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLoadMissingRoot(t *testing.T) {
	_, err := Load(context.Background(), filepath.Join(t.TempDir(), "missing"), Options{})
	assert.ErrorIs(t, err, os.ErrNotExist)
}
