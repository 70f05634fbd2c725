package lexer

import (
	"strconv"
	"strings"
)

// --- Markup tokens ---

func (t *Tokenizer) jsxReadToken() {
	s := t.state
	var out strings.Builder
	chunkStart := s.Pos
	for {
		if s.Pos >= len(t.input) {
			t.Raise(s.Start, "Unterminated JSX contents")
		}
		ch := t.input[s.Pos]
		switch {
		case ch == '<' || ch == '{':
			if s.Pos == s.Start {
				if ch == '<' && s.ExprAllowed {
					s.Pos++
					t.finishToken(JSX_TAG_START, "")
					return
				}
				t.getTokenFromCode(rune(ch))
				return
			}
			out.WriteString(t.input[chunkStart:s.Pos])
			t.finishToken(JSX_TEXT, out.String())
			return
		case ch == '&':
			out.WriteString(t.input[chunkStart:s.Pos])
			out.WriteString(t.jsxReadEntity())
			chunkStart = s.Pos
		case isNewLineByte(t.input, s.Pos):
			out.WriteString(t.input[chunkStart:s.Pos])
			out.WriteString(t.jsxReadNewLine(true))
			chunkStart = s.Pos
		default:
			s.Pos++
		}
	}
}

func (t *Tokenizer) jsxReadNewLine(normalizeCRLF bool) string {
	s := t.state
	ch := t.input[s.Pos]
	var out string
	switch {
	case ch == '\r' && t.byteAt(s.Pos+1) == '\n':
		s.Pos += 2
		out = "\r\n"
		if normalizeCRLF {
			out = "\n"
		}
	case ch == '\r' || ch == '\n':
		s.Pos++
		out = string(ch)
	default:
		out = t.input[s.Pos : s.Pos+3]
		s.Pos += 3
	}
	t.newLine(s.Pos)
	return out
}

func (t *Tokenizer) jsxReadString(quote byte) {
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
		switch {
		case ch == '&':
			out.WriteString(t.input[chunkStart:s.Pos])
			out.WriteString(t.jsxReadEntity())
			chunkStart = s.Pos
		case isNewLineByte(t.input, s.Pos):
			out.WriteString(t.input[chunkStart:s.Pos])
			out.WriteString(t.jsxReadNewLine(false))
			chunkStart = s.Pos
		default:
			s.Pos++
		}
	}
	out.WriteString(t.input[chunkStart:s.Pos])
	s.Pos++
	t.finishToken(STRING, out.String())
}

// jsxReadEntity decodes `&name;`, `&#123;` or `&#x7B;`. Anything else is a
// literal ampersand.
func (t *Tokenizer) jsxReadEntity() string {
	s := t.state
	s.Pos++
	startPos := s.Pos
	end := -1
	for i := s.Pos; i < len(t.input) && i-s.Pos < 10; i++ {
		if t.input[i] == ';' {
			end = i
			break
		}
	}
	if end < 0 {
		return "&"
	}
	str := t.input[startPos:end]
	entity := ""
	switch {
	case strings.HasPrefix(str, "#x"):
		if v, err := strconv.ParseUint(str[2:], 16, 32); err == nil && v <= 0x10FFFF {
			entity = string(rune(v))
		}
	case strings.HasPrefix(str, "#"):
		if v, err := strconv.ParseUint(str[1:], 10, 32); err == nil && v <= 0x10FFFF {
			entity = string(rune(v))
		}
	default:
		entity = xhtmlEntities[str]
	}
	if entity == "" {
		return "&"
	}
	s.Pos = end + 1
	return entity
}

func (t *Tokenizer) jsxReadWord() {
	s := t.state
	start := s.Pos
	for {
		r, size := t.runeAt(s.Pos)
		if size == 0 || !(isIdentifierChar(r) || r == '-') {
			break
		}
		s.Pos += size
	}
	t.finishToken(JSX_NAME, t.input[start:s.Pos])
}

var xhtmlEntities = map[string]string{
	"quot": "\"", "amp": "&", "apos": "'", "lt": "<", "gt": ">",
	"nbsp": " ", "iexcl": "¡", "cent": "¢", "pound": "£",
	"curren": "¤", "yen": "¥", "brvbar": "¦", "sect": "§",
	"uml": "¨", "copy": "©", "ordf": "ª", "laquo": "«",
	"not": "¬", "shy": "­", "reg": "®", "macr": "¯",
	"deg": "°", "plusmn": "±", "sup2": "²", "sup3": "³",
	"acute": "´", "micro": "µ", "para": "¶", "middot": "·",
	"cedil": "¸", "sup1": "¹", "ordm": "º", "raquo": "»",
	"frac14": "¼", "frac12": "½", "frac34": "¾", "iquest": "¿",
	"times": "×", "divide": "÷", "szlig": "ß",
	"Agrave": "À", "Aacute": "Á", "Auml": "Ä", "Ccedil": "Ç",
	"Eacute": "É", "Ntilde": "Ñ", "Ouml": "Ö", "Uuml": "Ü",
	"agrave": "à", "aacute": "á", "auml": "ä", "ccedil": "ç",
	"egrave": "è", "eacute": "é", "ntilde": "ñ", "ouml": "ö",
	"uuml": "ü", "oelig": "œ", "scaron": "š", "fnof": "ƒ",
	"circ": "ˆ", "tilde": "˜",
	"Alpha": "Α", "Beta": "Β", "Gamma": "Γ", "Delta": "Δ",
	"Omega": "Ω", "alpha": "α", "beta": "β", "gamma": "γ",
	"delta": "δ", "epsilon": "ε", "lambda": "λ", "mu": "μ",
	"pi": "π", "sigma": "σ", "tau": "τ", "phi": "φ", "omega": "ω",
	"ensp": " ", "emsp": " ", "thinsp": " ", "zwnj": "‌",
	"zwj": "‍", "lrm": "‎", "rlm": "‏", "ndash": "–",
	"mdash": "—", "lsquo": "‘", "rsquo": "’", "sbquo": "‚",
	"ldquo": "“", "rdquo": "”", "bdquo": "„", "dagger": "†",
	"Dagger": "‡", "bull": "•", "hellip": "…", "permil": "‰",
	"prime": "′", "Prime": "″", "lsaquo": "‹", "rsaquo": "›",
	"euro": "€", "trade": "™", "larr": "←", "uarr": "↑",
	"rarr": "→", "darr": "↓", "harr": "↔", "rArr": "⇒",
	"hArr": "⇔", "forall": "∀", "part": "∂", "exist": "∃",
	"empty": "∅", "nabla": "∇", "isin": "∈", "notin": "∉",
	"sum": "∑", "minus": "−", "infin": "∞", "ne": "≠",
	"equiv": "≡", "le": "≤", "ge": "≥", "loz": "◊",
	"spades": "♠", "clubs": "♣", "hearts": "♥", "diams": "♦",
}
