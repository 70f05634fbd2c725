package lexer

import (
	"strings"
	"testing"
)

func TestRegexLiterals(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		pattern string
		flags   string
	}{
		{"simple", "/hello/", "hello", ""},
		{"flags", "/world/gi", "world", "gi"},
		{"class", "/complex[A-Z]+/m", "complex[A-Z]+", "m"},
		{"escaped slash", `/a\/b/`, `a\/b`, ""},
		{"all flags", "/x/dgimsuy", "x", "dgimsuy"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := NewState(1)
			tk := New(tt.input, Options{ValidateRegExp: true}, &st)
			tk.NextToken()
			if st.Type != REGEXP {
				t.Fatalf("got %s, want regexp", st.Type)
			}
			if st.Value != tt.pattern || st.Flags != tt.flags {
				t.Errorf("got /%s/%s, want /%s/%s", st.Value, st.Flags, tt.pattern, tt.flags)
			}
		})
	}
}

func TestRegexValidation(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"unbalanced group", "/(/", true},
		{"dangling quantifier", "x = /a**/", true},
		{"valid lookahead", "/a(?=b)/", false},
		{"named group", "/(?<year>\\d{4})/", false},
		{"unicode flag skips validation", "/(/u", false},
		{"case and multiline flags", "/^[a-z]+$/im", false},
		{"invalid with flags", "/(a/gi", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := scan(tt.input, Options{ValidateRegExp: true})
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected an error")
				}
				if !strings.HasPrefix(err.Msg, "Invalid regular expression: /") {
					t.Errorf("unexpected message %q", err.Msg)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestRegexValidationDisabled(t *testing.T) {
	if _, err := scan("/(/", Options{}); err != nil {
		t.Fatalf("validation ran while disabled: %v", err)
	}
}
