package java

// Parameter is a declared method or constructor parameter.
type Parameter struct {
	Name string `json:"name" yaml:"name"`
	Type string `json:"type" yaml:"type"`
}
