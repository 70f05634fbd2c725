package source

import "testing"

func TestDecode(t *testing.T) {
	tests := []struct {
		name     string
		input    []byte
		expected string
	}{
		{"plain utf-8", []byte("let a = 1;"), "let a = 1;"},
		{"utf-8 bom", []byte{0xEF, 0xBB, 0xBF, 'x', ';'}, "x;"},
		{"utf-16 le bom", []byte{0xFF, 0xFE, 'a', 0, ';', 0}, "a;"},
		{"utf-16 be bom", []byte{0xFE, 0xFF, 0, 'a', 0, ';'}, "a;"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Decode(tt.input)
			if err != nil {
				t.Fatalf("Decode returned error: %v", err)
			}
			if got != tt.expected {
				t.Errorf("Decode = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestSourceFileLines(t *testing.T) {
	sf := NewEvalSource("a\r\nb\nc")
	if got := len(sf.Lines()); got != 3 {
		t.Fatalf("expected 3 lines, got %d", got)
	}
	if got := sf.Line(1); got != "a" {
		t.Errorf("Line(1) = %q, want %q", got, "a")
	}
	if got := sf.Line(4); got != "" {
		t.Errorf("Line(4) = %q, want empty", got)
	}
	if sf.IsFile() {
		t.Errorf("eval source should not report IsFile")
	}
	if got := FromFile("/tmp/x/app.ts", "").DisplayPath(); got != "/tmp/x/app.ts" {
		t.Errorf("DisplayPath = %q", got)
	}
}
