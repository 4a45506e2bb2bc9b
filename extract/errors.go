package extract

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/jsxstyle/jsxstyle-sub000/ast"
)

var (
	// ErrUnsupportedSyntax marks attribute shapes the extractor does not
	// understand. The attribute is kept as written.
	ErrUnsupportedSyntax = errors.New("unsupported syntax")
	// ErrConfiguration is returned by New for invalid option combinations.
	ErrConfiguration = errors.New("invalid configuration")
	// ErrSchema marks an invalid nested structure, such as a bad key in the
	// props object. The element is left dynamic.
	ErrSchema = errors.New("schema violation")
	// ErrStructure is fatal for the unit: the element cannot be written in
	// the requested output form.
	ErrStructure = errors.New("impossible structure")
	// ErrRuntimeRequired is reported in strict mode for every element that
	// still needs the runtime.
	ErrRuntimeRequired = errors.New("runtime required")
)

// Severity of a diagnostic.
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

// Diagnostic is a positioned message about one element or attribute.
type Diagnostic struct {
	Severity Severity
	Path     string
	Span     ast.Span
	Err      error
}

func (d Diagnostic) Error() string {
	return fmt.Sprintf("%s:%d:%d: %v", d.Path, d.Span.Line, d.Span.Column, d.Err)
}

func (d Diagnostic) Unwrap() error {
	return d.Err
}

// Reporter receives diagnostics as they are produced.
type Reporter func(Diagnostic)

func logReporter(level func(string, ...zap.Field)) Reporter {
	return func(d Diagnostic) {
		level(d.Err.Error(),
			zap.String("path", d.Path),
			zap.Int("line", d.Span.Line),
			zap.Int("column", d.Span.Column))
	}
}
