package doclet

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/mongodb-university/yokedox/format"
)

// Write encodes doc to path, or to stdout when path is "-". A file is
// written next to its destination first and renamed into place, so readers
// never see a partial document.
func Write(doc *format.Document, path, indent string, stdout io.Writer) error {
	if path == "" || path == "-" {
		enc := format.NewDocumentEncoder(stdout)
		enc.SetIndent(indent)
		return enc.Encode(doc)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("create output file: %w", err)
	}
	defer os.Remove(tmp.Name())

	enc := format.NewDocumentEncoder(tmp)
	enc.SetIndent(indent)
	if err := enc.Encode(doc); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
