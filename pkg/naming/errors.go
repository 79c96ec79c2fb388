package naming

import "fmt"

// UnresolvedLayerError reports a file path that matches none of the layer
// conventions (components/ui, components/layout, components/{domain},
// app/**/page.*).
type UnresolvedLayerError struct {
	Path string
}

func (e *UnresolvedLayerError) Error() string {
	return fmt.Sprintf("no layer convention matches path %q", e.Path)
}

// TooLongError reports a composed identifier exceeding the four segment
// limit.
type TooLongError struct {
	Identifier string
	Segments   int
}

func (e *TooLongError) Error() string {
	return fmt.Sprintf("identifier %q has %d segments, maximum is %d", e.Identifier, e.Segments, MaxSegments)
}

// MalformedError reports an identifier that fails the kebab-case pattern,
// typically an export name containing digits or non-ASCII letters.
type MalformedError struct {
	Identifier string
}

func (e *MalformedError) Error() string {
	return fmt.Sprintf("identifier %q does not match %s", e.Identifier, Pattern)
}
