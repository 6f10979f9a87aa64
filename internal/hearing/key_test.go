package hearing

import "testing"

func TestSanitizeComponent(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "Finance", "Finance"},
		{"spaces become underscores", "Finance Committee", "Finance_Committee"},
		{"collapse runs", "HB  101", "HB_101"},
		{"trim padding", "  Day One  ", "Day_One"},
		{"keeps hyphens and digits", "hb-101", "hb-101"},
		{"drops slashes", "2024/finance", "2024finance"},
		{"drops backslashes", `a\b`, "ab"},
		{"drops traversal", "..", ""},
		{"dotted name", "v1.2.3", "v123"},
		{"accented folds to base", "Comité", "Comite"},
		{"punctuation becomes underscore", "Day #1: Opening!", "Day_1_Opening"},
		{"only separators", "///", ""},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SanitizeComponent(tt.in); got != tt.want {
				t.Errorf("SanitizeComponent(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestSanitizeComponentDeterministic(t *testing.T) {
	in := "Sénate Finance / Appropriations.."
	first := SanitizeComponent(in)
	for i := 0; i < 5; i++ {
		if got := SanitizeComponent(in); got != first {
			t.Fatalf("sanitization not deterministic: %q vs %q", got, first)
		}
	}
	if got := SanitizeComponent(first); got != first {
		t.Fatalf("sanitization not idempotent: %q vs %q", got, first)
	}
}

func TestKeyPaths(t *testing.T) {
	key := NewKey("2024", "Finance Committee", "HB 101", "Day One")

	if got := key.FolderPath(); got != "2024/Finance_Committee/HB_101/Day_One" {
		t.Errorf("unexpected folder path %q", got)
	}
	if got := key.HearingID(); got != "2024_Finance_Committee_HB_101_Day_One" {
		t.Errorf("unexpected hearing id %q", got)
	}
}

func TestEquivalentInputsShareKey(t *testing.T) {
	a := NewKey("2024", "Finance  Committee", "HB 101", "Day One")
	b := NewKey(" 2024 ", "Finance Committee", "HB  101", "Day One!")
	if a.FolderPath() != b.FolderPath() {
		t.Errorf("equivalent submissions diverged: %q vs %q", a.FolderPath(), b.FolderPath())
	}
}
