package workflow

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/template"

	"github.com/xrsl/endeavor/pkg/errs"
	"github.com/xrsl/endeavor/pkg/exhibit"
)

//go:embed defaults/*.md
var defaults embed.FS

// DefaultDir is where user overrides live, relative to the working directory.
const DefaultDir = ".endeavor/prompts"

// Name identifies one prompt.
type Name string

const (
	Brainstorm Name = "brainstorm"
	Research   Name = "research"
	Compose    Name = "compose"
)

// Names lists every prompt in the order init writes them.
var Names = []Name{Brainstorm, Research, Compose}

func (n Name) file() string { return string(n) + ".md" }

// BrainstormData feeds the brainstorm prompt.
type BrainstormData struct {
	CV      string
	Count   int
	Exclude []string
}

// ResearchData feeds the research prompt.
type ResearchData struct {
	Topic   string
	Count   int
	Exclude []string
}

// ComposeData feeds the section prompt.
type ComposeData struct {
	Section   string
	Applicant string
	Topic     string
	Exhibits  []exhibit.Exhibit
	MinWords  int
}

// Default returns the embedded source of a prompt.
func Default(name Name) (string, error) {
	b, err := defaults.ReadFile("defaults/" + name.file())
	if err != nil {
		return "", errs.ResourceMissing("workflow.Default", fmt.Errorf("no embedded prompt %q", name))
	}
	return string(b), nil
}

// Prompts renders prompt templates, preferring files in Dir over the
// embedded defaults. The zero value uses only the defaults.
type Prompts struct {
	Dir string
}

// New returns Prompts reading overrides from dir.
func New(dir string) *Prompts {
	return &Prompts{Dir: dir}
}

func (p *Prompts) source(name Name) (string, error) {
	if p != nil && p.Dir != "" {
		b, err := os.ReadFile(filepath.Join(p.Dir, name.file()))
		if err == nil {
			return string(b), nil
		}
		if !os.IsNotExist(err) {
			return "", errs.Filesystem("workflow.load", err)
		}
	}
	return Default(name)
}

// Render executes the system and user templates of a prompt.
func (p *Prompts) Render(name Name, data any) (system, user string, err error) {
	src, err := p.source(name)
	if err != nil {
		return "", "", err
	}
	tmpl, err := template.New(string(name)).Option("missingkey=error").Parse(src)
	if err != nil {
		return "", "", errs.Config("workflow.parse", fmt.Errorf("prompt %s: %w", name, err))
	}

	if system, err = execute(tmpl, "system", data); err != nil {
		return "", "", err
	}
	if user, err = execute(tmpl, "user", data); err != nil {
		return "", "", err
	}
	return system, user, nil
}

func execute(tmpl *template.Template, part string, data any) (string, error) {
	t := tmpl.Lookup(part)
	if t == nil {
		return "", errs.Config("workflow.render", fmt.Errorf("prompt %s has no %q template", tmpl.Name(), part))
	}
	var b strings.Builder
	if err := t.Execute(&b, data); err != nil {
		return "", errs.Config("workflow.render", fmt.Errorf("prompt %s/%s: %w", tmpl.Name(), part, err))
	}
	return strings.TrimSpace(b.String()), nil
}

// Init writes every default prompt that does not exist yet in dir.
func Init(dir string) error {
	return write(dir, false)
}

// Reset overwrites every prompt in dir with the embedded default.
func Reset(dir string) error {
	return write(dir, true)
}

func write(dir string, overwrite bool) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errs.Filesystem("workflow.init", err)
	}
	for _, name := range Names {
		path := filepath.Join(dir, name.file())
		if !overwrite {
			if _, err := os.Stat(path); err == nil {
				continue
			}
		}
		src, err := Default(name)
		if err != nil {
			return err
		}
		if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
			return errs.Filesystem("workflow.init", err)
		}
	}
	return nil
}
