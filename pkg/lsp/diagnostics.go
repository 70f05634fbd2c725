package lsp

import (
	"net/url"
	"path"
	"strings"
	"unicode/utf8"

	"github.com/dlclark/regexp2"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/nooga/esparse/pkg/errors"
	"github.com/nooga/esparse/pkg/parser"
)

// flowPragma matches an @flow annotation in the first comment of a file.
var flowPragma = regexp2.MustCompile(`\A\s*(?:#![^\n]*\n\s*)?(?://[^\n]*@flow\b|/\*(?:(?!\*/)[\s\S])*@flow\b)`, regexp2.None)

// OptionsForURI picks the parser options for a document from its file
// extension. Plain JavaScript files get the flow plugin only when they
// carry an @flow pragma.
func OptionsForURI(uri protocol.DocumentUri, text string) parser.Options {
	opts := parser.DefaultOptions()
	opts.SourceType = parser.SourceUnambiguous
	opts.SourceFilename = uri

	switch ext := strings.ToLower(path.Ext(uriPath(uri))); ext {
	case ".ts":
		opts.Plugins = parser.PluginsFromNames("typescript")
	case ".tsx":
		opts.Plugins = parser.PluginsFromNames("typescript", "jsx")
	case ".mts", ".cts":
		opts.Plugins = parser.PluginsFromNames("typescript")
		if ext == ".mts" {
			opts.SourceType = parser.SourceModule
		} else {
			opts.SourceType = parser.SourceScript
		}
	default:
		names := []string{"jsx"}
		if hasFlowPragma(text) {
			names = append(names, "flow")
		}
		opts.Plugins = parser.PluginsFromNames(names...)
		switch ext {
		case ".mjs":
			opts.SourceType = parser.SourceModule
		case ".cjs":
			opts.SourceType = parser.SourceScript
		}
	}
	return opts
}

func hasFlowPragma(text string) bool {
	ok, err := flowPragma.MatchString(text)
	return err == nil && ok
}

func uriPath(uri protocol.DocumentUri) string {
	if u, err := url.Parse(uri); err == nil && u.Path != "" {
		return u.Path
	}
	return uri
}

// Diagnostics converts the result of parsing text into LSP diagnostics. A
// nil err yields an empty, non-nil list so that publishing it clears the
// client's markers.
func Diagnostics(text string, err error) []protocol.Diagnostic {
	diagnostics := []protocol.Diagnostic{}
	if err == nil {
		return diagnostics
	}

	severity := protocol.DiagnosticSeverityError
	src := lsName
	diag := protocol.Diagnostic{
		Severity: &severity,
		Source:   &src,
		Message:  err.Error(),
	}

	if e, ok := errors.As(err); ok {
		diag.Message = e.Message()
		code := protocol.IntegerOrString{Value: e.Kind()}
		diag.Code = &code
		if e.Kind() != "Config" {
			pos := e.Pos()
			diag.Range = spanRange(text, pos.StartPos, pos.EndPos)
		}
	}
	return append(diagnostics, diag)
}

// spanRange converts byte offsets into an LSP range. An empty span is widened
// to the character it points at so the client has something to underline.
func spanRange(text string, start, end int) protocol.Range {
	if end <= start && start < len(text) && text[start] != '\n' {
		_, size := utf8.DecodeRuneInString(text[start:])
		end = start + size
	}
	return protocol.Range{
		Start: offsetToPosition(text, start),
		End:   offsetToPosition(text, end),
	}
}

// offsetToPosition maps a byte offset to a zero-based line and a character
// index counted in UTF-16 code units.
func offsetToPosition(text string, offset int) protocol.Position {
	if offset > len(text) {
		offset = len(text)
	}
	var line, char protocol.UInteger
	for _, r := range text[:offset] {
		if r == '\n' {
			line++
			char = 0
			continue
		}
		if r >= 0x10000 {
			char += 2
		} else {
			char++
		}
	}
	return protocol.Position{Line: line, Character: char}
}
