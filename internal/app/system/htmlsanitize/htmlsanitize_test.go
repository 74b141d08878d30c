package htmlsanitize

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestStripTags(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"plain", "Holiday clips", "Holiday clips"},
		{"bold", "<b>Best</b> of", "Best of"},
		{"script", `<script>alert(1)</script>Clips`, "Clips"},
		{"ampersand", "Cats & Dogs", "Cats & Dogs"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StripTags(tt.in); got != tt.want {
				t.Errorf("StripTags(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"trim and collapse", "  Long   4K \t clips ", "Long 4K clips"},
		{"markup", "<i>Mine</i>", "Mine"},
		{"control chars", "a\x07b\x1bc", "abc"},
		{"only spaces", "   ", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SanitizeName(tt.in); got != tt.want {
				t.Errorf("SanitizeName(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestSanitizeName_Truncates(t *testing.T) {
	got := SanitizeName(strings.Repeat("é", MaxNameLength+20))
	if n := utf8.RuneCountInString(got); n != MaxNameLength {
		t.Errorf("rune count = %d, want %d", n, MaxNameLength)
	}

	got = SanitizeName(strings.Repeat("ab ", 60))
	if n := utf8.RuneCountInString(got); n > MaxNameLength {
		t.Errorf("rune count = %d, want <= %d", n, MaxNameLength)
	}
	if strings.HasSuffix(got, " ") {
		t.Errorf("truncated name ends with a space: %q", got)
	}
}

func TestIsPlainText(t *testing.T) {
	if !IsPlainText("a < b") {
		t.Error("IsPlainText(a < b) = false")
	}
	if IsPlainText("<p>x</p>") {
		t.Error("IsPlainText(<p>x</p>) = true")
	}
}
