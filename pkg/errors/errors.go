package errors

import (
	"fmt"
	"io"
	"strings"
)

// Error is the interface implemented by all esparse errors.
type Error interface {
	error
	Pos() Position
	Kind() string // "Syntax", "Ambiguity", "Nesting" or "Config"
	// Message returns the specific error message without position info.
	Message() string
	Unwrap() error
}

// --- Concrete Error Types ---

// SyntaxError is raised when the current token cannot continue any production.
// It is also the signal that abandons a speculative parse.
type SyntaxError struct {
	Position
	Msg   string
	Cause error
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("Syntax Error at %d:%d: %s", e.Line, e.Column, e.Msg)
}
func (e *SyntaxError) Pos() Position   { return e.Position }
func (e *SyntaxError) Kind() string    { return "Syntax" }
func (e *SyntaxError) Message() string { return e.Msg }
func (e *SyntaxError) Unwrap() error   { return e.Cause }
func (e *SyntaxError) CausedBy(cause error) *SyntaxError {
	e.Cause = cause
	return e
}

// AmbiguityError reports input with more than one valid reading. It is fatal:
// speculative parsing never catches it.
type AmbiguityError struct {
	Position
	Msg        string
	Candidates []int // start offsets of the competing interpretations
}

func (e *AmbiguityError) Error() string {
	return fmt.Sprintf("Ambiguity Error at %d:%d: %s", e.Line, e.Column, e.Msg)
}
func (e *AmbiguityError) Pos() Position   { return e.Position }
func (e *AmbiguityError) Kind() string    { return "Ambiguity" }
func (e *AmbiguityError) Message() string { return e.Msg }
func (e *AmbiguityError) Unwrap() error   { return nil }

// NestingError is raised when productions recurse deeper than the parser allows.
type NestingError struct {
	Position
	Limit int
}

func (e *NestingError) Error() string {
	return fmt.Sprintf("Nesting Error at %d:%d: %s", e.Line, e.Column, e.Message())
}
func (e *NestingError) Pos() Position { return e.Position }
func (e *NestingError) Kind() string  { return "Nesting" }
func (e *NestingError) Message() string {
	return fmt.Sprintf("maximum nesting depth of %d exceeded", e.Limit)
}
func (e *NestingError) Unwrap() error { return nil }

// ConfigError rejects a parser configuration before any input is read.
type ConfigError struct {
	Option string // plugin or option name the problem was found in
	Msg    string
}

func (e *ConfigError) Error() string {
	if e.Option == "" {
		return "Config Error: " + e.Msg
	}
	return fmt.Sprintf("Config Error in %q: %s", e.Option, e.Msg)
}
func (e *ConfigError) Pos() Position   { return Position{} }
func (e *ConfigError) Kind() string    { return "Config" }
func (e *ConfigError) Message() string { return e.Msg }
func (e *ConfigError) Unwrap() error   { return nil }

// --- Error Reporting ---

// DisplayErrors writes errors to w in a user-friendly format, including the
// source line and a position marker.
func DisplayErrors(w io.Writer, source string, errs []Error) {
	if len(errs) == 0 {
		return
	}

	lines := strings.Split(source, "\n")

	for _, err := range errs {
		pos := err.Pos()
		kind := err.Kind()
		msg := err.Message()

		lineIdx := pos.Line - 1
		if lineIdx < 0 || lineIdx >= len(lines) {
			fmt.Fprintf(w, "%s Error: %s\n", kind, msg)
			continue
		}

		trimmedLine := strings.TrimRight(lines[lineIdx], "\r\n\t ")

		// Format: <Kind> Error at <Line>:<Column>: <Message>
		if pos.Source != nil && pos.Source.IsFile() {
			fmt.Fprintf(w, "%s:%d:%d: %s Error: %s\n", pos.Source.DisplayPath(), pos.Line, pos.Column, kind, msg)
		} else {
			fmt.Fprintf(w, "%s Error at %d:%d: %s\n", kind, pos.Line, pos.Column, msg)
		}
		fmt.Fprintf(w, "  %s\n", trimmedLine)

		marker := strings.Repeat(" ", pos.Column) + "^"
		if span := pos.EndPos - pos.StartPos; span > 1 && pos.Column+span <= len([]rune(trimmedLine)) {
			marker += strings.Repeat("~", span-1)
		}
		fmt.Fprintf(w, "  %s\n", marker)
		fmt.Fprintln(w)
	}
}

// As returns err as an esparse Error when it is one.
func As(err error) (Error, bool) {
	e, ok := err.(Error)
	return e, ok
}
