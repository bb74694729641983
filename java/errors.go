package java

import "fmt"

// StructuralError reports an element tree that violates the containment or
// naming rules. The element's top-level subtree is left out of the index.
type StructuralError struct {
	QualifiedName string
	Reason        string
}

func (e *StructuralError) Error() string {
	name := e.QualifiedName
	if name == "" {
		name = "<unnamed>"
	}
	return fmt.Sprintf("structural error at %s: %s", name, e.Reason)
}
