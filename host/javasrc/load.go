package javasrc

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/tliron/commonlog"
	"golang.org/x/sync/errgroup"

	"github.com/mongodb-university/yokedox/config"
	"github.com/mongodb-university/yokedox/java"
)

var log = commonlog.GetLogger("yokedox.javasrc")

type Options struct {
	Exclude     *config.Filter // slash separated paths relative to the root
	Parallelism int
}

// Load parses every .java file under root and groups the declared types by
// package. Packages and types keep the lexical order of the files they come
// from.
func Load(ctx context.Context, root string, opts Options) ([]*java.Element, error) {
	files, err := Files(root, opts.Exclude)
	if err != nil {
		return nil, err
	}
	log.Debugf("parsing %d source files under %s", len(files), root)

	parsed := make([]*File, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(opts.Parallelism, 1))
	for i, rel := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			src, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(rel)))
			if err != nil {
				return fmt.Errorf("read source: %w", err)
			}
			f, err := ParseFile(rel, src)
			if err != nil {
				return fmt.Errorf("parse %s: %w", rel, err)
			}
			if f.SyntaxErrors {
				log.Warningf("%s: syntax errors, declarations may be incomplete", rel)
			}
			parsed[i] = f
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return Group(parsed), nil
}

// Files lists the .java files under root in lexical order, relative to root
// with forward slashes. Hidden directories are skipped.
func Files(root string, exclude *config.Filter) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if d.IsDir() {
			if rel != "." && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			if rel != "." && (excluded(exclude, rel) || excluded(exclude, rel+"/")) {
				return filepath.SkipDir
			}
			return nil
		}
		if path.Ext(rel) != ".java" || excluded(exclude, rel) {
			return nil
		}
		files = append(files, rel)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", root, err)
	}
	return files, nil
}

func excluded(f *config.Filter, rel string) bool {
	return !f.Empty() && f.Match(rel)
}

// Group merges parsed files into package elements. The comment of a
// package-info.java file documents its package.
func Group(files []*File) []*java.Element {
	var roots []*java.Element
	byName := map[string]*java.Element{}
	for _, f := range files {
		if f == nil {
			continue
		}
		pkg, ok := byName[f.Package]
		if !ok {
			pkg = &java.Element{Kind: java.KindPackage, Name: f.Package}
			byName[f.Package] = pkg
			roots = append(roots, pkg)
		}
		if path.Base(f.Path) == "package-info.java" {
			pkg.Comment = f.PackageComment
			pkg.Source = f.Path + ":1"
		}
		pkg.Members = append(pkg.Members, f.Types...)
	}
	return roots
}
