package config

import (
	"fmt"

	"github.com/gobwas/glob"
)

// Filter selects packages and types by qualified name. Patterns are globs
// over dot separated names: "*" matches within one name segment and "**"
// across segments. An empty filter selects everything.
type Filter struct {
	patterns []string
	globs    []glob.Glob
}

func NewFilter(patterns []string) (*Filter, error) {
	return newFilter(patterns, '.')
}

// NewPathFilter compiles globs over slash separated file paths.
func NewPathFilter(patterns []string) (*Filter, error) {
	return newFilter(patterns, '/')
}

func newFilter(patterns []string, separator rune) (*Filter, error) {
	f := &Filter{patterns: patterns}
	for _, p := range patterns {
		g, err := glob.Compile(p, separator)
		if err != nil {
			return nil, fmt.Errorf("compile filter %q: %w", p, err)
		}
		f.globs = append(f.globs, g)
	}
	return f, nil
}

// Match reports whether name is selected.
func (f *Filter) Match(name string) bool {
	if f == nil || len(f.globs) == 0 {
		return true
	}
	for _, g := range f.globs {
		if g.Match(name) {
			return true
		}
	}
	return false
}

// Empty reports whether the filter selects everything.
func (f *Filter) Empty() bool {
	return f == nil || len(f.globs) == 0
}

func (f *Filter) String() string {
	if f == nil {
		return "[]"
	}
	return fmt.Sprint(f.patterns)
}
