package inject

import "fmt"

// Diagnostic codes reported by an injection run.
const (
	// CodeParseError marks a file the grammar could not parse.
	CodeParseError = "parse-error"
	// CodeUnresolvedLayer marks a component outside every known layer
	// convention.
	CodeUnresolvedLayer = "unresolved-layer"
	// CodeTooLong marks an identifier exceeding the segment bound.
	CodeTooLong = "identifier-too-long"
	// CodeMalformed marks an identifier that breaks the kebab-case
	// pattern, usually from digits or unicode in an export name.
	CodeMalformed = "malformed-identifier"
	// CodeNoTarget marks a component whose render output has no
	// injectable root element.
	CodeNoTarget = "no-injection-target"
	// CodeMissingIdentifier is reported in check mode for a component
	// that an injection run would modify.
	CodeMissingIdentifier = "missing-identifier"
	// CodeMismatch marks a root element carrying a manual identifier
	// that differs from the resolved one. The manual value is kept.
	CodeMismatch = "identifier-mismatch"
)

// Severity ranks a diagnostic.
type Severity int

const (
	SeverityWarning Severity = iota
	SeverityError
)

func (s Severity) String() string {
	if s == SeverityError {
		return "error"
	}
	return "warning"
}

// Diagnostic is one finding tied to a file position, in the shape lint
// tools report: path, position, code, message.
type Diagnostic struct {
	FilePath string
	Export   string
	Line     uint
	Code     string
	Message  string
	Severity Severity
}

func (d Diagnostic) String() string {
	if d.Export != "" {
		return fmt.Sprintf("%s:%d: %s [%s] (%s)", d.FilePath, d.Line, d.Message, d.Code, d.Export)
	}
	return fmt.Sprintf("%s:%d: %s [%s]", d.FilePath, d.Line, d.Message, d.Code)
}
