// Package doclet runs the documentation pipeline over a host element tree:
// walk, parse, inherit, resolve references, and hand the result to the
// serializer.
package doclet

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/tliron/commonlog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/mongodb-university/yokedox/config"
	"github.com/mongodb-university/yokedox/format"
	"github.com/mongodb-university/yokedox/java"
	"github.com/mongodb-university/yokedox/java/inherit"
	"github.com/mongodb-university/yokedox/java/javadoc"
	"github.com/mongodb-university/yokedox/observability"
)

var log = commonlog.GetLogger("yokedox.doclet")

// Generator names the producer in the JSON document.
const Generator = "yokedox"

// Options are the frozen settings of one compile.
type Options struct {
	RunID       string
	DocRoot     string
	Patterns    []javadoc.ExternalEntityPattern
	Filter      *config.Filter
	Parallelism int
	Metrics     *observability.Metrics // optional
}

// OptionsFromConfig freezes the pipeline settings of cfg.
func OptionsFromConfig(cfg *config.Config, runID string) (Options, error) {
	patterns, err := cfg.Patterns()
	if err != nil {
		return Options{}, err
	}
	filter, err := config.NewFilter(cfg.Filter)
	if err != nil {
		return Options{}, err
	}
	return Options{
		RunID:       runID,
		DocRoot:     cfg.DocRoot,
		Patterns:    patterns,
		Filter:      filter,
		Parallelism: cfg.Parallelism,
	}, nil
}

// Compile resolves the documentation of roots. Structural errors do not stop
// the run: the affected subtrees are left out, and the document of
// everything else is returned together with the joined *java.StructuralError
// values. Any other error returns a nil document.
func Compile(ctx context.Context, roots []*java.Element, opts Options) (*format.Document, error) {
	ctx, span := observability.Tracer.Start(ctx, "doclet.Compile",
		trace.WithAttributes(attribute.String("run.id", opts.RunID)))
	defer span.End()

	c := &compiler{opts: opts}
	if c.opts.Parallelism <= 0 {
		c.opts.Parallelism = 1
	}

	structural := c.walk(ctx, roots)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := c.parse(ctx); err != nil {
		return nil, err
	}
	if err := c.resolve(ctx); err != nil {
		return nil, err
	}
	c.record()

	doc := &format.Document{
		Generator: Generator,
		Index:     c.index,
		Comments:  c.comments,
	}
	if !c.opts.Filter.Empty() {
		log.Debugf("selecting %s", c.opts.Filter)
		doc.Select = c.opts.Filter.Match
	}
	span.SetAttributes(
		attribute.Int("elements", len(c.index.Visits)),
		attribute.Int("comments", len(c.comments)),
	)
	return doc, structural
}

type compiler struct {
	opts     Options
	index    *java.Index
	parsed   []*javadoc.DocComment // by visit
	resolved []*javadoc.DocComment // by visit
	comments map[*java.Element]*javadoc.DocComment
}

func (c *compiler) walk(ctx context.Context, roots []*java.Element) error {
	_, span := observability.Tracer.Start(ctx, "doclet.walk")
	defer span.End()
	defer c.opts.Metrics.ObserveStage("walk", time.Now())

	ix, err := java.Walk(roots)
	c.index = ix
	for _, e := range StructuralErrors(err) {
		log.Error(e.Error(), "run", c.opts.RunID)
	}
	if c.opts.Metrics != nil {
		c.opts.Metrics.StructuralErrors.Add(float64(len(StructuralErrors(err))))
	}
	log.Infof("walked %d elements in %d packages", len(ix.Visits), len(ix.Roots))
	return err
}

// parse parses the raw comment of every included element.
func (c *compiler) parse(ctx context.Context) error {
	ctx, span := observability.Tracer.Start(ctx, "doclet.parse")
	defer span.End()
	defer c.opts.Metrics.ObserveStage("parse", time.Now())

	c.parsed = make([]*javadoc.DocComment, len(c.index.Visits))
	err := c.each(ctx, func(i int, v java.Visit) {
		if raw := v.Element.Comment; raw != nil {
			c.parsed[i] = javadoc.Parse(*raw)
		}
	})
	if err != nil {
		return fmt.Errorf("parse comments: %w", err)
	}
	return nil
}

// resolve resolves references, then fills inherited documentation. A
// reference resolves in the context of the comment it was written in, so
// text an override inherits keeps pointing at the ancestor's members. Both
// steps read only the frozen index and earlier results, and each visit
// writes its own slot.
func (c *compiler) resolve(ctx context.Context) error {
	ctx, span := observability.Tracer.Start(ctx, "doclet.resolve")
	defer span.End()
	defer c.opts.Metrics.ObserveStage("resolve", time.Now())

	local := make([]*javadoc.DocComment, len(c.index.Visits))
	err := c.each(ctx, func(i int, v java.Visit) {
		local[i] = javadoc.ResolveReferences(c.parsed[i], c.referenceContext(v))
	})
	if err != nil {
		return fmt.Errorf("resolve references: %w", err)
	}

	docs := make(map[*java.Element]*javadoc.DocComment)
	for i, doc := range local {
		if doc != nil {
			docs[c.index.Visits[i].Element] = doc
		}
	}
	resolver := inherit.New(c.index, docs)

	c.resolved = make([]*javadoc.DocComment, len(c.index.Visits))
	err = c.each(ctx, func(i int, v java.Visit) {
		c.resolved[i] = resolver.Resolve(v.Element)
	})
	if err != nil {
		return fmt.Errorf("inherit comments: %w", err)
	}

	c.comments = make(map[*java.Element]*javadoc.DocComment)
	for i, doc := range c.resolved {
		if doc != nil {
			c.comments[c.index.Visits[i].Element] = doc
		}
	}
	return nil
}

// each calls fn for every visit on at most Parallelism goroutines. It stops
// early when ctx is done.
func (c *compiler) each(ctx context.Context, fn func(i int, v java.Visit)) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.opts.Parallelism)
	for i, v := range c.index.Visits {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			fn(i, v)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}

func (c *compiler) referenceContext(v java.Visit) javadoc.ReferenceContext {
	enclosing := c.enclosingType(v)
	return javadoc.ReferenceContext{
		EnclosingType: enclosing,
		DocRoot:       c.opts.DocRoot,
		Patterns:      c.opts.Patterns,
		Qualify: func(name string) (string, bool) {
			return c.qualify(name, enclosing, v.Package)
		},
	}
}

// enclosingType is the type #member references of v resolve against.
func (c *compiler) enclosingType(v java.Visit) string {
	switch {
	case v.Element.Kind.IsType():
		return v.QualifiedName
	case v.Element.Kind.IsMember() && v.Parent != nil:
		if p, ok := c.index.Lookup(v.Parent); ok {
			return p.QualifiedName
		}
	}
	return ""
}

// qualify finds the indexed type a name written in a comment refers to,
// searching the enclosing type and its outer types, then the package, then
// the name as written. Names of types outside the index are not qualified.
func (c *compiler) qualify(name, enclosing, pkg string) (string, bool) {
	for scope := enclosing; scope != "" && scope != pkg; scope = outerName(scope) {
		if java.SimpleName(scope) == name {
			return scope, true
		}
		if _, ok := c.index.Type(scope + "." + name); ok {
			return scope + "." + name, true
		}
	}
	if pkg != "" {
		if _, ok := c.index.Type(pkg + "." + name); ok {
			return pkg + "." + name, true
		}
	}
	if _, ok := c.index.Type(name); ok {
		return name, true
	}
	return "", false
}

func outerName(name string) string {
	if i := strings.LastIndex(name, "."); i >= 0 {
		return name[:i]
	}
	return ""
}

func (c *compiler) record() {
	m := c.opts.Metrics
	kinds := make(map[java.ElementKind]int)
	unknown, inherited := 0, 0
	for i, v := range c.index.Visits {
		kinds[v.Element.Kind]++
		if doc := c.resolved[i]; doc != nil {
			unknown += countUnknown(doc)
			for _, tag := range doc.BlockTags {
				if tag.Inherited != nil {
					inherited++
				}
			}
		}
	}
	log.Debugf("resolved %d comments, %d inherited tags, %d unknown tags", len(c.comments), inherited, unknown)
	if m == nil {
		return
	}
	m.Elements.Reset()
	for kind, n := range kinds {
		m.Elements.WithLabelValues(string(kind)).Set(float64(n))
	}
	m.Comments.Set(float64(len(c.comments)))
	m.UnknownTags.Add(float64(unknown))
	m.InheritedTags.Add(float64(inherited))
}

func countUnknown(doc *javadoc.DocComment) int {
	n := countUnknownNodes(doc.Body)
	for _, tag := range doc.BlockTags {
		if tag.Kind == javadoc.KindUnknown {
			n++
		}
		n += countUnknownNodes(tag.Description)
	}
	return n
}

func countUnknownNodes(nodes []javadoc.Node) int {
	n := 0
	for _, node := range nodes {
		if tag, ok := node.(javadoc.InlineTag); ok {
			if tag.Kind == javadoc.KindUnknown {
				n++
			}
			n += countUnknownNodes(tag.Label)
		}
	}
	return n
}

// StructuralErrors extracts the structural errors from an error returned by
// Compile or java.Walk.
func StructuralErrors(err error) []*java.StructuralError {
	if err == nil {
		return nil
	}
	var result []*java.StructuralError
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		for _, e := range joined.Unwrap() {
			result = append(result, StructuralErrors(e)...)
		}
		return result
	}
	var se *java.StructuralError
	if errors.As(err, &se) {
		result = append(result, se)
	}
	return result
}
