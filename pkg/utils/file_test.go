package utils

import (
	"os"
	"path/filepath"
	"testing"
)

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Jane Doe", "Jane_Doe"},
		{`Dr. José "Pepe" García`, "Dr._José_Pepe_García"},
		{"a/b\\c*d?e:f<g>h|i", "abcdefghi"},
		{"  Mary   Ann  ", "Mary_Ann"},
		{"???", "applicant"},
		{"..", "applicant"},
	}
	for _, tt := range tests {
		if got := SanitizeName(tt.in); got != tt.want {
			t.Errorf("SanitizeName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestWriteAndReadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "f.txt")
	if err := WriteFile(path, "hello"); err != nil {
		t.Fatal(err)
	}
	got, err := ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if got != "hello" {
		t.Errorf("ReadFile() = %q", got)
	}
	if !FileExists(path) {
		t.Error("FileExists() = false for written file")
	}
	if FileExists(filepath.Dir(path)) {
		t.Error("FileExists() = true for a directory")
	}
}

func TestEnsureGitignore(t *testing.T) {
	dir := filepath.Join(t.TempDir(), ".endeavor")
	if err := EnsureGitignore(dir); err != nil {
		t.Fatal(err)
	}
	b, err := os.ReadFile(filepath.Join(dir, ".gitignore"))
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != "*\n" {
		t.Errorf(".gitignore = %q", b)
	}
}
