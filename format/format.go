// Package format serializes the resolved documentation model.
package format

import (
	"encoding"
)

// Encoder writes one resolved document.
type Encoder interface {
	encoding.TextMarshaler
	Encode(doc *Document) error
}

var _ Encoder = (*DocumentEncoder)(nil)
