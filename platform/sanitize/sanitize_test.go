package sanitize

import "testing"

func TestText(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain text unchanged", "replace furnace filter", "replace furnace filter"},
		{"strips tags", "<script>alert(1)</script>note", "alert(1)note"},
		{"strips nested tags", "<div><b>bold</b></div>", "bold"},
		{"decodes and re-strips encoded tags", "&lt;img src=x&gt;", ""},
		{"trims whitespace", "  padded  ", "padded"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Text(tt.input); got != tt.want {
				t.Fatalf("Text(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestTextPtr(t *testing.T) {
	if got := TextPtr(nil); got != nil {
		t.Fatalf("TextPtr(nil) = %v, want nil", got)
	}

	input := "<b>serial</b> 1234"
	got := TextPtr(&input)
	if got == nil || *got != "serial 1234" {
		t.Fatalf("TextPtr(%q) = %v, want %q", input, got, "serial 1234")
	}
}
