package lexer

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/dlclark/regexp2"
)

// --- Numbers ---

// readInt reads digits of the given radix, allowing `_` between digits.
// It returns the value and the number of digits read.
func (t *Tokenizer) readInt(radix int) (float64, int) {
	s := t.state
	start := s.Pos
	total := 0.0
	digits := 0
	for s.Pos < len(t.input) {
		ch := t.input[s.Pos]
		if ch == '_' {
			prev := t.byteAt(s.Pos - 1)
			next := t.byteAt(s.Pos + 1)
			if s.Pos == start || prev == '_' || digitValue(prev) < 0 || digitValue(prev) >= radix {
				t.Raise(s.Pos, "Numeric separators are not allowed here")
			}
			if next == '_' {
				t.Raise(s.Pos, "Only one underscore is allowed as numeric separator")
			}
			if v := digitValue(next); v < 0 || v >= radix {
				t.Raise(s.Pos, "Numeric separators are not allowed at the end of numeric literals")
			}
			s.Pos++
			continue
		}
		v := digitValue(ch)
		if v < 0 || v >= radix {
			break
		}
		total = total*float64(radix) + float64(v)
		digits++
		s.Pos++
	}
	return total, digits
}

func (t *Tokenizer) readRadixNumber(radix int) {
	s := t.state
	start := s.Pos
	s.Pos += 2
	val, n := t.readInt(radix)
	if n == 0 {
		t.Raise(start+2, "Expected number in radix %d", radix)
	}
	if t.byteAt(s.Pos) == 'n' {
		s.Pos++
		t.finishToken(BIGINT, strings.ReplaceAll(t.input[start:s.Pos-1], "_", ""))
		return
	}
	if isIdentifierStart(t.codePointAt(s.Pos)) {
		t.Raise(s.Pos, "Identifier directly after number")
	}
	s.Num = val
	t.finishToken(NUM, t.input[start:s.Pos])
}

func (t *Tokenizer) readNumber(startsWithDot bool) {
	s := t.state
	start := s.Pos
	isFloat := false
	if !startsWithDot {
		if _, n := t.readInt(10); n == 0 {
			t.Raise(start, "Invalid number")
		}
	}
	octal := s.Pos-start >= 2 && t.input[start] == '0'
	if octal {
		if s.Strict {
			t.Raise(start, "Legacy octal literals are not allowed in strict mode")
		}
		if strings.ContainsAny(t.input[start:s.Pos], "89") {
			octal = false
		}
	}

	if t.byteAt(s.Pos) == '.' && !octal {
		s.Pos++
		t.readInt(10)
		isFloat = true
	}
	if c := t.byteAt(s.Pos); (c == 'e' || c == 'E') && !octal {
		s.Pos++
		if c := t.byteAt(s.Pos); c == '+' || c == '-' {
			s.Pos++
		}
		if _, n := t.readInt(10); n == 0 {
			t.Raise(start, "Invalid number")
		}
		isFloat = true
	}
	if t.byteAt(s.Pos) == 'n' {
		if isFloat || octal || (s.Pos-start >= 2 && t.input[start] == '0') {
			t.Raise(start, "Invalid BigIntLiteral")
		}
		s.Pos++
		t.finishToken(BIGINT, strings.ReplaceAll(t.input[start:s.Pos-1], "_", ""))
		return
	}
	if isIdentifierStart(t.codePointAt(s.Pos)) {
		t.Raise(s.Pos, "Identifier directly after number")
	}

	raw := t.input[start:s.Pos]
	digits := strings.ReplaceAll(raw, "_", "")
	if octal {
		v, _ := strconv.ParseUint(digits[1:], 8, 64)
		s.Num = float64(v)
	} else {
		// digits are well formed here; only range errors remain and those
		// still yield the IEEE result (Inf or 0)
		v, _ := strconv.ParseFloat(digits, 64)
		s.Num = v
	}
	t.finishToken(NUM, raw)
}

// --- Strings and escapes ---

func (t *Tokenizer) readString(quote byte) {
	s := t.state
	var out strings.Builder
	s.Pos++
	chunkStart := s.Pos
	for {
		if s.Pos >= len(t.input) {
			t.Raise(s.Start, "Unterminated string constant")
		}
		ch := t.input[s.Pos]
		if ch == quote {
			break
		}
		if ch == '\\' {
			out.WriteString(t.input[chunkStart:s.Pos])
			esc, _ := t.readEscapedChar(false)
			out.WriteString(esc)
			chunkStart = s.Pos
			continue
		}
		if ch == '\n' || ch == '\r' {
			t.Raise(s.Start, "Unterminated string constant")
		}
		s.Pos++
	}
	out.WriteString(t.input[chunkStart:s.Pos])
	s.Pos++
	t.finishToken(STRING, out.String())
}

// readEscapedChar reads the escape after a backslash at the current position.
// Invalid escapes are an error in strings; in templates ok is false instead.
func (t *Tokenizer) readEscapedChar(inTemplate bool) (string, bool) {
	s := t.state
	s.Pos++ // backslash
	if s.Pos >= len(t.input) {
		t.Raise(s.Start, "Unterminated string constant")
	}
	ch := t.input[s.Pos]
	s.Pos++
	switch ch {
	case 'n':
		return "\n", true
	case 'r':
		return "\r", true
	case 't':
		return "\t", true
	case 'b':
		return "\b", true
	case 'v':
		return "\v", true
	case 'f':
		return "\f", true
	case 'x':
		code := t.readHexChar(2, !inTemplate)
		if code < 0 {
			return "", false
		}
		return string(rune(code)), true
	case 'u':
		code := t.readCodePoint(!inTemplate)
		if code < 0 {
			return "", false
		}
		return string(code), true
	case '\r':
		if t.byteAt(s.Pos) == '\n' {
			s.Pos++
		}
		t.newLine(s.Pos)
		return "", true
	case '\n':
		t.newLine(s.Pos)
		return "", true
	}
	if ch >= '0' && ch <= '7' {
		codePos := s.Pos - 1
		octal := []byte{ch}
		for len(octal) < 3 {
			c := t.byteAt(s.Pos)
			if c < '0' || c > '7' {
				break
			}
			if v, _ := strconv.ParseUint(string(append(octal, c)), 8, 16); v > 255 {
				break
			}
			octal = append(octal, c)
			s.Pos++
		}
		v, _ := strconv.ParseUint(string(octal), 8, 16)
		if string(octal) != "0" || t.byteAt(s.Pos) == '8' || t.byteAt(s.Pos) == '9' {
			if inTemplate {
				return "", false
			}
			if s.Strict {
				t.Raise(codePos, "Octal literal in strict mode")
			}
			if !s.ContainsOctal {
				s.ContainsOctal = true
				s.OctalPosition = codePos
			}
		}
		return string(rune(v)), true
	}
	if ch >= utf8.RuneSelf {
		r, size := utf8.DecodeRuneInString(t.input[s.Pos-1:])
		s.Pos += size - 1
		if r == 0x2028 || r == 0x2029 {
			t.newLine(s.Pos)
			return "", true
		}
		return string(r), true
	}
	return string(ch), true
}

// readHexChar reads exactly n hex digits. It returns -1 for invalid input
// when throwOnInvalid is false.
func (t *Tokenizer) readHexChar(n int, throwOnInvalid bool) int {
	s := t.state
	start := s.Pos
	code := 0
	for i := 0; i < n; i++ {
		v := digitValue(t.byteAt(s.Pos))
		if v < 0 {
			if throwOnInvalid {
				t.Raise(start, "Bad character escape sequence")
			}
			return -1
		}
		code = code*16 + v
		s.Pos++
	}
	return code
}

// readCodePoint reads `XXXX` or `{X...}` after `\u`.
func (t *Tokenizer) readCodePoint(throwOnInvalid bool) rune {
	s := t.state
	if t.byteAt(s.Pos) != '{' {
		return rune(t.readHexChar(4, throwOnInvalid))
	}
	codePos := s.Pos
	s.Pos++
	end := indexFrom(t.input, s.Pos, "}")
	if end < 0 || end == s.Pos {
		if throwOnInvalid {
			t.Raise(codePos, "Bad character escape sequence")
		}
		return -1
	}
	code := t.readHexChar(end-s.Pos, throwOnInvalid)
	if code < 0 {
		return -1
	}
	s.Pos++
	if code > 0x10FFFF {
		if throwOnInvalid {
			t.Raise(codePos, "Code point out of bounds")
		}
		return -1
	}
	return rune(code)
}

// --- Templates ---

func (t *Tokenizer) readTemplateToken() {
	s := t.state
	var out strings.Builder
	chunkStart := s.Pos
	invalid := false
	for {
		if s.Pos >= len(t.input) {
			t.Raise(s.Start, "Unterminated template")
		}
		ch := t.input[s.Pos]
		if ch == '`' || (ch == '$' && t.byteAt(s.Pos+1) == '{') {
			if s.Pos == s.Start && s.Type == TEMPLATE {
				if ch == '$' {
					s.Pos += 2
					t.finishToken(DOLLAR_BRACE_L, "${")
				} else {
					s.Pos++
					t.finishToken(BACK_QUOTE, "`")
				}
				return
			}
			out.WriteString(t.input[chunkStart:s.Pos])
			s.Invalid = invalid
			t.finishToken(TEMPLATE, out.String())
			return
		}
		switch {
		case ch == '\\':
			out.WriteString(t.input[chunkStart:s.Pos])
			esc, ok := t.readEscapedChar(true)
			if !ok {
				invalid = true
			}
			out.WriteString(esc)
			chunkStart = s.Pos
		case isNewLineByte(t.input, s.Pos):
			out.WriteString(t.input[chunkStart:s.Pos])
			switch {
			case ch == '\r':
				s.Pos++
				if t.byteAt(s.Pos) == '\n' {
					s.Pos++
				}
				out.WriteByte('\n')
			case ch == '\n':
				s.Pos++
				out.WriteByte('\n')
			default:
				out.WriteString(t.input[s.Pos : s.Pos+3])
				s.Pos += 3
			}
			t.newLine(s.Pos)
			chunkStart = s.Pos
		default:
			s.Pos++
		}
	}
}

// --- Regular expressions ---

const regexpFlags = "dgimsuy"

func (t *Tokenizer) readRegexp() {
	s := t.state
	start := s.Pos
	escaped, inClass := false, false
scan:
	for {
		if s.Pos >= len(t.input) || isNewLineByte(t.input, s.Pos) {
			t.Raise(start, "Unterminated regular expression")
		}
		ch := t.input[s.Pos]
		if escaped {
			escaped = false
		} else {
			switch {
			case ch == '[':
				inClass = true
			case ch == ']' && inClass:
				inClass = false
			case ch == '/' && !inClass:
				break scan
			}
			escaped = ch == '\\'
		}
		s.Pos++
	}
	pattern := t.input[start:s.Pos]
	s.Pos++

	flagsStart := s.Pos
	for s.Pos < len(t.input) {
		r, size := t.runeAt(s.Pos)
		if !isIdentifierChar(r) {
			break
		}
		if !strings.ContainsRune(regexpFlags, r) {
			t.Raise(s.Pos, "Invalid regular expression flag")
		}
		if strings.ContainsRune(t.input[flagsStart:s.Pos], r) {
			t.Raise(s.Pos, "Duplicate regular expression flag")
		}
		s.Pos += size
	}
	flags := t.input[flagsStart:s.Pos]

	if t.opts.ValidateRegExp {
		t.validateRegExp(start, pattern, flags)
	}
	s.Flags = flags
	t.finishToken(REGEXP, pattern)
}

// validateRegExp compiles the pattern with ECMAScript semantics. Patterns
// using the `u` or `v` flag rely on syntax regexp2 does not model and are
// not checked.
func (t *Tokenizer) validateRegExp(start int, pattern, flags string) {
	if strings.ContainsAny(flags, "uv") {
		return
	}
	opts := regexp2.RegexOptions(regexp2.ECMAScript)
	if strings.ContainsRune(flags, 'i') {
		opts |= regexp2.IgnoreCase
	}
	if strings.ContainsRune(flags, 'm') {
		opts |= regexp2.Multiline
	}
	if _, err := regexp2.Compile(pattern, opts); err != nil {
		t.Raise(start, "Invalid regular expression: /%s/: %s", pattern, err.Error())
	}
}
