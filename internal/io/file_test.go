package ioutils

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"unicode/utf8"
)

func TestSanitizeFileName(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"Artist - Title (Mapper) [Normal].osz", "Artist - Title (Mapper) [Normal].osz"},
		{"Artist/Title.osz", "Artist_Title.osz"},
		{"file:with:colons.osz", "file_with_colons.osz"},
		{"file<with>brackets.osz", "file_with_brackets.osz"},
		{"file/with\\slashes.osz", "file_with_slashes.osz"},
		{"file|with|pipes.osz", "file_with_pipes.osz"},
		{"file?with*wildcards.osz", "file_with_wildcards.osz"},
		{"file\"with\"quotes.osz", "file_with_quotes.osz"},
		{"trailing dots...", "trailing dots..."},
		{"multiple   spaces", "multiple   spaces"},
		{"日本語: タイトル.osz", "日本語_ タイトル.osz"},
		{"caf\xe9/x.osz", "caf\xe9_x.osz"},
		{"\xff\xfe:", "\xff\xfe_"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := SanitizeFileName(tt.input)
			if got != tt.want {
				t.Errorf("SanitizeFileName(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestSanitizeFileNameStrict(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"Artist - Title.osz", "Artist _ Title.osz"},
		{"a-b/c", "a_b_c"},
		{"no reserved", "no reserved"},
		{"caf\xe9-x.osz", "caf\xe9_x.osz"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := SanitizeFileNameStrict(tt.input)
			if got != tt.want {
				t.Errorf("SanitizeFileNameStrict(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestSanitizeFileName_Properties(t *testing.T) {
	inputs := []string{
		"",
		"plain.osz",
		`\/:*?"<>|`,
		"a\\b/c:d*e?f\"g<h>i|j",
		"__already__sanitized__",
		"ÄÖÜ/ß:é",
		"--dash--",
		"\x00control\x1f",
		strings.Repeat("x/", 200),
	}

	funcs := map[string]struct {
		fn       func(string) string
		reserved string
	}{
		"default": {SanitizeFileName, reservedChars},
		"strict":  {SanitizeFileNameStrict, reservedChars + "-"},
	}

	for name, f := range funcs {
		for _, in := range inputs {
			out := f.fn(in)

			if strings.ContainsAny(out, f.reserved) {
				t.Errorf("%s: %q still contains reserved characters: %q", name, in, out)
			}
			if again := f.fn(out); again != out {
				t.Errorf("%s: not idempotent for %q: %q then %q", name, in, out, again)
			}
			if utf8.RuneCountInString(out) != utf8.RuneCountInString(in) {
				t.Errorf("%s: rune count changed for %q: %q", name, in, out)
			}

			inRunes, outRunes := []rune(in), []rune(out)
			for i := range inRunes {
				if strings.ContainsRune(f.reserved, inRunes[i]) {
					if outRunes[i] != '_' {
						t.Errorf("%s: %q rune %d = %q, want '_'", name, in, i, outRunes[i])
					}
					continue
				}
				if outRunes[i] != inRunes[i] {
					t.Errorf("%s: %q rune %d moved or changed: %q", name, in, i, outRunes[i])
				}
			}
		}
	}
}

func TestSanitizeFileName_InvalidUTF8(t *testing.T) {
	inputs := []string{
		"caf\xe9/x.osz",
		"\x80\x81\x82",
		"a\xc3/b\xa9",
		"\xed\xa0\x80:surrogate",
	}

	for _, in := range inputs {
		for _, fn := range []func(string) string{SanitizeFileName, SanitizeFileNameStrict} {
			out := fn(in)
			if len(out) != len(in) {
				t.Fatalf("length changed for %q: %q", in, out)
			}
			for i := 0; i < len(in); i++ {
				if in[i] >= utf8.RuneSelf && out[i] != in[i] {
					t.Errorf("%q byte %d = %#x, want %#x", in, i, out[i], in[i])
				}
			}
		}
	}
}

func TestReadLines(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "maps.txt")
	content := "https://osu.ppy.sh/s/1\r\n\n12345\nlast"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	lines, err := ReadLines(path)
	if err != nil {
		t.Fatalf("ReadLines failed: %v", err)
	}

	want := []string{"https://osu.ppy.sh/s/1", "", "12345", "last"}
	if len(lines) != len(want) {
		t.Fatalf("got %d lines, want %d: %q", len(lines), len(want), lines)
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Errorf("line %d = %q, want %q", i, lines[i], want[i])
		}
	}
}

func TestReadLines_Missing(t *testing.T) {
	if _, err := ReadLines(filepath.Join(t.TempDir(), "missing.txt")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestDestinationDir(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"maps.txt", "maps"},
		{filepath.Join("lists", "ranked.txt"), filepath.Join("lists", "ranked")},
		{"noext", "noext"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := DestinationDir(tt.input); got != tt.want {
				t.Errorf("DestinationDir(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestEnsureDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a", "b")
	if err := EnsureDir(path); err != nil {
		t.Fatalf("EnsureDir failed: %v", err)
	}
	if err := EnsureDir(path); err != nil {
		t.Fatalf("EnsureDir on existing dir failed: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		t.Errorf("expected %s to be a directory", path)
	}
}
