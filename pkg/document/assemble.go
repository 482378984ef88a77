package document

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/xrsl/endeavor/pkg/errs"
	clog "github.com/xrsl/endeavor/pkg/log"
)

// Renderer serializes a document.
type Renderer interface {
	Render(doc *Document, created time.Time, w io.Writer) error
}

// maxSuffix bounds the collision suffixes tried for one output name.
const maxSuffix = 100

// Option configures an Assembler.
type Option func(*Assembler)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(a *Assembler) { a.now = now }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(a *Assembler) { a.logger = clog.OrDiscard(l) }
}

// Assembler turns a Document into bytes and files.
type Assembler struct {
	renderer Renderer
	now      func() time.Time
	logger   *slog.Logger
}

// NewAssembler creates an Assembler.
func NewAssembler(r Renderer, opts ...Option) *Assembler {
	a := &Assembler{renderer: r, now: time.Now, logger: clog.Discard()}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Assemble serializes doc. Font problems are ErrResourceMissing.
func (a *Assembler) Assemble(doc *Document) ([]byte, error) {
	return a.assemble(doc, a.now())
}

func (a *Assembler) assemble(doc *Document, created time.Time) ([]byte, error) {
	if strings.TrimSpace(doc.Applicant) == "" {
		return nil, errs.Config("document.assemble", fmt.Errorf("applicant name is empty"))
	}
	var buf bytes.Buffer
	if err := a.renderer.Render(doc, created, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Write assembles doc into dir under OutputName. An existing file is never
// replaced: a _2, _3, ... suffix is added until a new name is free. The path
// written is returned.
func (a *Assembler) Write(doc *Document, dir string) (string, error) {
	created := a.now()
	data, err := a.assemble(doc, created)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", errs.Filesystem("document.write", err)
	}

	base := strings.TrimSuffix(OutputName(doc.Applicant, created), ".pdf")
	for n := 1; n <= maxSuffix; n++ {
		name := base + ".pdf"
		if n > 1 {
			name = fmt.Sprintf("%s_%d.pdf", base, n)
		}
		path := filepath.Join(dir, name)

		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if errors.Is(err, fs.ErrExist) {
			continue
		}
		if err != nil {
			return "", errs.Filesystem("document.write", err)
		}
		if _, err := f.Write(data); err != nil {
			f.Close()
			os.Remove(path)
			return "", errs.Filesystem("document.write", err)
		}
		if err := f.Close(); err != nil {
			os.Remove(path)
			return "", errs.Filesystem("document.write", err)
		}
		a.logger.Info("document written", "path", path, "bytes", len(data), "sections", len(doc.sections))
		return path, nil
	}
	return "", errs.Filesystem("document.write", fmt.Errorf("%s: %d output names already taken", base, maxSuffix))
}
