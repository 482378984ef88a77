package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/xrsl/endeavor/pkg/errs"
)

func newStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), DefaultFile))
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	return s
}

func TestLoadDefaults(t *testing.T) {
	c, err := newStore(t).Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if c.Sources != 5 {
		t.Errorf("Sources = %d, want 5", c.Sources)
	}
	if c.ResearchRounds != 1 {
		t.Errorf("ResearchRounds = %d, want 1", c.ResearchRounds)
	}
	if c.LinkTimeout != 10*time.Second {
		t.Errorf("LinkTimeout = %s, want 10s", c.LinkTimeout)
	}
	if c.UpstreamTimeout != 5*time.Minute {
		t.Errorf("UpstreamTimeout = %s, want 5m", c.UpstreamTimeout)
	}
	if !c.Browser.Headless || c.Browser.Paper != "A4" || c.Browser.Settle != 10*time.Second {
		t.Errorf("Browser = %+v", c.Browser)
	}
	if c.OutputDir != "." || c.PromptsDir != ".endeavor/prompts" {
		t.Errorf("dirs = %q, %q", c.OutputDir, c.PromptsDir)
	}
	if len(c.Sections) != 0 {
		t.Errorf("Sections = %v, want none", c.Sections)
	}
}

func TestReadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultFile)
	content := `agent: claude-sonnet-4
sources: 8
browser:
  paper: Letter
  settle: 2s
sections:
  - Overview
  - National Importance
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	s, err := New(path)
	if err != nil {
		t.Fatal(err)
	}
	c, err := s.Load()
	if err != nil {
		t.Fatal(err)
	}
	if c.Agent != "claude-sonnet-4" || c.Sources != 8 {
		t.Errorf("got agent=%q sources=%d", c.Agent, c.Sources)
	}
	if c.Browser.Paper != "Letter" || c.Browser.Settle != 2*time.Second {
		t.Errorf("Browser = %+v", c.Browser)
	}
	if !c.Browser.Headless {
		t.Error("unset browser.headless keeps its default")
	}
	if len(c.Sections) != 2 || c.Sections[1] != "National Importance" {
		t.Errorf("Sections = %v", c.Sections)
	}
}

func TestEnvOverridesFile(t *testing.T) {
	t.Setenv("ENDEAVOR_SOURCES", "3")
	t.Setenv("ENDEAVOR_BROWSER_PAPER", "legal")
	t.Setenv("ENDEAVOR_SECTIONS", "One, Two")

	c, err := newStore(t).Load()
	if err != nil {
		t.Fatal(err)
	}
	if c.Sources != 3 {
		t.Errorf("Sources = %d, want 3", c.Sources)
	}
	if c.Browser.Paper != "legal" {
		t.Errorf("Paper = %q", c.Browser.Paper)
	}
	if len(c.Sections) != 2 || c.Sections[0] != "One" || c.Sections[1] != "Two" {
		t.Errorf("Sections = %q", c.Sections)
	}
}

func TestOverride(t *testing.T) {
	s := newStore(t)
	s.Override("agent", "gemini-2.5-pro")
	c, err := s.Load()
	if err != nil {
		t.Fatal(err)
	}
	if c.Agent != "gemini-2.5-pro" {
		t.Errorf("Agent = %q", c.Agent)
	}
}

func TestSetAndGet(t *testing.T) {
	s := newStore(t)

	if err := s.Set("agent", "claude-code"); err != nil {
		t.Fatalf("Set agent error: %v", err)
	}
	if err := s.Set("browser.settle", "3s"); err != nil {
		t.Fatalf("Set browser.settle error: %v", err)
	}
	if err := s.Set("sections", "A, B ,C"); err != nil {
		t.Fatalf("Set sections error: %v", err)
	}

	// Reload from file
	reloaded, err := New(s.Path())
	if err != nil {
		t.Fatal(err)
	}
	for key, want := range map[string]string{
		"agent":          "claude-code",
		"browser.settle": "3s",
		"sections":       "A, B, C",
		"sources":        "5",
	} {
		got, err := reloaded.Get(key)
		if err != nil {
			t.Fatalf("Get %s error: %v", key, err)
		}
		if got != want {
			t.Errorf("Get(%q) = %q, want %q", key, got, want)
		}
	}

	data, err := os.ReadFile(s.Path())
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "browser:\n  settle: 3s") {
		t.Errorf("nested key not written with 2-space indent:\n%s", data)
	}
	if strings.Contains(string(data), "sources") {
		t.Errorf("defaults must not be written:\n%s", data)
	}
}

func TestSetRejectsInvalid(t *testing.T) {
	s := newStore(t)
	tests := []struct {
		key, value string
	}{
		{"invalid_key", "value"},
		{"sources", "many"},
		{"sources", "25"},
		{"sources", "0"},
		{"research_rounds", "0"},
		{"link_timeout", "soon"},
		{"browser.headless", "maybe"},
		{"browser.paper", "A3"},
	}
	for _, tt := range tests {
		if err := s.Set(tt.key, tt.value); !errors.Is(err, errs.ErrConfig) {
			t.Errorf("Set(%q, %q) = %v, want ErrConfig", tt.key, tt.value, err)
		}
	}
	if _, err := os.Stat(s.Path()); !os.IsNotExist(err) {
		t.Error("rejected values must not create the config file")
	}
	if c, err := s.Load(); err != nil || c.Sources != 5 {
		t.Errorf("store left in a bad state: %v, %+v", err, c)
	}
}

func TestGetInvalidKey(t *testing.T) {
	if _, err := newStore(t).Get("invalid_key"); err == nil {
		t.Error("Expected error for invalid key, got nil")
	}
}

func TestAllListsEveryKey(t *testing.T) {
	all := newStore(t).All()
	if len(all) != len(Keys) {
		t.Errorf("All() has %d keys, want %d", len(all), len(Keys))
	}
	keys := SortedKeys(all)
	if keys[0] != "agent" || keys[len(keys)-1] != "sections" {
		t.Errorf("SortedKeys order = %v", keys)
	}
	if all["link_timeout"] != "10s" {
		t.Errorf("link_timeout = %q", all["link_timeout"])
	}
}

func TestSaveDefaults(t *testing.T) {
	s := newStore(t)
	written, err := s.SaveDefaults("claude-code", "search:gemini-2.5-flash")
	if err != nil || !written {
		t.Fatalf("SaveDefaults() = %v, %v", written, err)
	}
	written, err = s.SaveDefaults("other", "other")
	if err != nil || written {
		t.Errorf("second SaveDefaults() = %v, %v; want no write", written, err)
	}
	if got, _ := s.Get("research_agent"); got != "search:gemini-2.5-flash" {
		t.Errorf("research_agent = %q", got)
	}
}
