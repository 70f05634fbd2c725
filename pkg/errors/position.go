package errors

import "github.com/nooga/esparse/pkg/source"

// Position represents a specific location in the source code.
// Line is 1-based; Column is 0-based and counts runes within the line.
// StartPos/EndPos are byte offsets for tooling (like LSP).
type Position struct {
	Line     int                // 1-based line number
	Column   int                // 0-based column number (rune index within the line)
	StartPos int                // 0-based byte offset of the start of the span
	EndPos   int                // 0-based byte offset of the end of the span (exclusive)
	Source   *source.SourceFile // Reference to the source file
}
