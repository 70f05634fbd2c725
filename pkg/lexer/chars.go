package lexer

import (
	"strings"
	"unicode"
)

// isIdentifierStart checks if the code point can begin an identifier.
func isIdentifierStart(r rune) bool {
	switch {
	case r < 0:
		return false
	case r < 0x80:
		return 'a' <= r && r <= 'z' || 'A' <= r && r <= 'Z' || r == '$' || r == '_'
	}
	return unicode.In(r, unicode.L, unicode.Nl, unicode.Other_ID_Start)
}

// isIdentifierChar checks if the code point can continue an identifier.
func isIdentifierChar(r rune) bool {
	switch {
	case r < 0:
		return false
	case r < 0x80:
		return 'a' <= r && r <= 'z' || 'A' <= r && r <= 'Z' || '0' <= r && r <= '9' || r == '$' || r == '_'
	case r == 0x200C || r == 0x200D:
		return true
	}
	return unicode.In(r, unicode.L, unicode.Nl, unicode.Other_ID_Start, unicode.Mn, unicode.Mc, unicode.Nd, unicode.Pc, unicode.Other_ID_Continue)
}

// IsIdentifierName reports whether s is a syntactically valid identifier.
func IsIdentifierName(s string) bool {
	for i, r := range s {
		if i == 0 && !isIdentifierStart(r) || i > 0 && !isIdentifierChar(r) {
			return false
		}
	}
	return s != ""
}

// isWhitespace checks non-ASCII white space (ASCII is handled inline).
func isWhitespace(r rune) bool {
	switch r {
	case 0xA0, 0x1680, 0x202F, 0x205F, 0x3000, 0xFEFF:
		return true
	}
	return r >= 0x2000 && r <= 0x200A
}

// isNewLineByte reports whether a line terminator starts at input[i].
func isNewLineByte(input string, i int) bool {
	switch input[i] {
	case '\n', '\r':
		return true
	case 0xE2:
		return i+2 < len(input) && input[i+1] == 0x80 && (input[i+2] == 0xA8 || input[i+2] == 0xA9)
	}
	return false
}

func isDigit(ch byte) bool {
	return '0' <= ch && ch <= '9'
}

// digitValue returns the value of ch in bases up to 16, or -1.
func digitValue(ch byte) int {
	switch {
	case '0' <= ch && ch <= '9':
		return int(ch - '0')
	case 'a' <= ch && ch <= 'f':
		return int(ch-'a') + 10
	case 'A' <= ch && ch <= 'F':
		return int(ch-'A') + 10
	}
	return -1
}

func indexFrom(s string, from int, substr string) int {
	if from > len(s) {
		return -1
	}
	i := strings.Index(s[from:], substr)
	if i < 0 {
		return -1
	}
	return from + i
}

func containsFrom(s string, from int, substr string) bool {
	return indexFrom(s, from, substr) >= 0
}

func hasPrefixAt(s string, at int, prefix string) bool {
	return at <= len(s) && strings.HasPrefix(s[at:], prefix)
}
