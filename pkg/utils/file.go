package utils

import (
	"os"
	"path/filepath"
	"strings"
)

func ReadFile(path string) (string, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(content), nil
}

func WriteFile(path, content string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(content), 0o644)
}

func FileExists(path string) bool {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return false
	}
	return err == nil && !info.IsDir()
}

var unsafeNameChars = strings.NewReplacer(
	`\`, "", "/", "", "*", "", "?", "", ":", "",
	`"`, "", "<", "", ">", "", "|", "",
)

// SanitizeName makes a person's name safe as a folder or file name part:
// \ / * ? : " < > | are removed and whitespace runs become underscores.
// An empty result becomes "applicant".
func SanitizeName(name string) string {
	cleaned := unsafeNameChars.Replace(name)
	safe := strings.Join(strings.Fields(cleaned), "_")
	if safe == "" || safe == "." || safe == ".." {
		return "applicant"
	}
	return safe
}

// EnsureGitignore creates dir/.gitignore ignoring everything, so the tool's
// working directory stays out of git.
func EnsureGitignore(dir string) error {
	gitignorePath := filepath.Join(dir, ".gitignore")

	// Skip if already exists
	if FileExists(gitignorePath) {
		return nil
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	// Create .gitignore that ignores everything
	content := "*\n"
	return os.WriteFile(gitignorePath, []byte(content), 0o644)
}
