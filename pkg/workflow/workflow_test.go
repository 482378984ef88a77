package workflow

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/xrsl/endeavor/pkg/errs"
	"github.com/xrsl/endeavor/pkg/exhibit"
)

func TestDefaultsEmbedded(t *testing.T) {
	for _, name := range Names {
		src, err := Default(name)
		if err != nil {
			t.Fatalf("Default(%s): %v", name, err)
		}
		if !strings.Contains(src, `{{define "system"`) || !strings.Contains(src, `{{define "user"`) {
			t.Errorf("%s: missing system or user template", name)
		}
	}
}

func TestRenderCompose(t *testing.T) {
	var p Prompts
	system, user, err := p.Render(Compose, ComposeData{
		Section:   "National Importance",
		Applicant: "Jane Doe",
		Topic:     "AI for Rural Healthcare Access",
		Exhibits: []exhibit.Exhibit{
			{Label: "1B", SourceURL: "https://www.hrsa.gov/rural-health"},
			{Label: "1C", SourceURL: "https://www.nih.gov/ai"},
		},
		MinWords: 800,
	})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(system, "at least 800 words") {
		t.Errorf("system prompt missing word target:\n%s", system)
	}
	for _, want := range []string{
		"'National Importance'",
		"Jane Doe",
		"Exhibit 1B: https://www.hrsa.gov/rural-health",
		"Exhibit 1C: https://www.nih.gov/ai",
	} {
		if !strings.Contains(user, want) {
			t.Errorf("user prompt missing %q:\n%s", want, user)
		}
	}
}

func TestRenderComposeWithoutExhibits(t *testing.T) {
	_, user, err := (&Prompts{}).Render(Compose, ComposeData{Section: "Substantial Merit", Applicant: "A", Topic: "T"})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(user, "Do not cite any exhibits") {
		t.Errorf("expected no-sources instruction:\n%s", user)
	}
}

func TestRenderResearchExclusions(t *testing.T) {
	_, user, err := (&Prompts{}).Render(Research, ResearchData{
		Topic:   "Grid storage",
		Count:   5,
		Exclude: []string{"https://www.energy.gov/a"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(user, "- https://www.energy.gov/a") {
		t.Errorf("exclusion not rendered:\n%s", user)
	}
}

func TestOverrideDir(t *testing.T) {
	dir := t.TempDir()
	override := `{{define "system"}}custom {{.Count}}{{end}}{{define "user"}}{{.CV}}{{end}}`
	if err := os.WriteFile(filepath.Join(dir, "brainstorm.md"), []byte(override), 0o644); err != nil {
		t.Fatal(err)
	}

	system, user, err := New(dir).Render(Brainstorm, BrainstormData{CV: "cv text", Count: 5})
	if err != nil {
		t.Fatal(err)
	}
	if system != "custom 5" || user != "cv text" {
		t.Errorf("got system=%q user=%q", system, user)
	}

	// missing override files fall back to the embedded default
	if _, _, err := New(dir).Render(Research, ResearchData{Topic: "x", Count: 5}); err != nil {
		t.Errorf("fallback render: %v", err)
	}
}

func TestRenderBrokenTemplate(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "compose.md"), []byte(`{{define "system"}}ok{{end}}`), 0o644); err != nil {
		t.Fatal(err)
	}
	_, _, err := New(dir).Render(Compose, ComposeData{})
	if !errors.Is(err, errs.ErrConfig) {
		t.Errorf("expected ErrConfig for missing user template, got %v", err)
	}
}

func TestInitAndReset(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "prompts")
	if err := Init(dir); err != nil {
		t.Fatal(err)
	}
	for _, name := range Names {
		if _, err := os.Stat(filepath.Join(dir, name.file())); err != nil {
			t.Errorf("%s not written: %v", name, err)
		}
	}

	path := filepath.Join(dir, "compose.md")
	if err := os.WriteFile(path, []byte("edited"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := Init(dir); err != nil {
		t.Fatal(err)
	}
	if b, _ := os.ReadFile(path); string(b) != "edited" {
		t.Error("Init must not overwrite existing prompts")
	}

	if err := Reset(dir); err != nil {
		t.Fatal(err)
	}
	want, _ := Default(Compose)
	if b, _ := os.ReadFile(path); string(b) != want {
		t.Error("Reset must restore the default")
	}
}
