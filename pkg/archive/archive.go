// Package archive captures web pages as fixed-layout PDF files.
//
// Each Archive call owns one browser session from open to close. The session
// is released on every return path, including navigation failure and
// cancellation.
package archive

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/xrsl/endeavor/pkg/errs"
	clog "github.com/xrsl/endeavor/pkg/log"
)

// DefaultFileName is the per-exhibit archive file.
const DefaultFileName = "source_material.pdf"

const (
	DefaultNavigationTimeout = 30 * time.Second
	DefaultSettle            = 10 * time.Second
)

// Paper is a page size in inches.
type Paper struct {
	Name   string
	Width  float64
	Height float64
}

var papers = map[string]Paper{
	"a4":     {Name: "A4", Width: 8.27, Height: 11.69},
	"letter": {Name: "Letter", Width: 8.5, Height: 11},
	"legal":  {Name: "Legal", Width: 8.5, Height: 14},
}

// A4 is the default paper.
var A4 = papers["a4"]

// PaperByName looks up a paper size case-insensitively.
func PaperByName(name string) (Paper, error) {
	p, ok := papers[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Paper{}, errs.Config("archive.paper", fmt.Errorf("unknown paper size %q (use A4, Letter or Legal)", name))
	}
	return p, nil
}

// PrintOptions controls one capture.
type PrintOptions struct {
	Paper             Paper
	NavigationTimeout time.Duration
	Settle            time.Duration
}

// Session is one isolated browser instance.
type Session interface {
	// Print navigates to url, waits for the page to settle and returns the
	// print-to-PDF bytes with background graphics included.
	Print(ctx context.Context, url string, opts PrintOptions) ([]byte, error)
	Close() error
}

// Browser opens sessions.
type Browser interface {
	Open(ctx context.Context) (Session, error)
}

// Option configures an Archiver.
type Option func(*Archiver)

// WithPaper sets the page size.
func WithPaper(p Paper) Option {
	return func(a *Archiver) { a.opts.Paper = p }
}

// WithNavigationTimeout bounds page navigation and load.
func WithNavigationTimeout(d time.Duration) Option {
	return func(a *Archiver) {
		if d > 0 {
			a.opts.NavigationTimeout = d
		}
	}
}

// WithSettle bounds the wait for late content after load.
func WithSettle(d time.Duration) Option {
	return func(a *Archiver) {
		if d >= 0 {
			a.opts.Settle = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(a *Archiver) { a.logger = clog.OrDiscard(l) }
}

// Archiver writes page captures to disk.
type Archiver struct {
	browser Browser
	opts    PrintOptions
	logger  *slog.Logger
}

// New creates an Archiver using browser for sessions.
func New(browser Browser, opts ...Option) *Archiver {
	a := &Archiver{
		browser: browser,
		opts: PrintOptions{
			Paper:             A4,
			NavigationTimeout: DefaultNavigationTimeout,
			Settle:            DefaultSettle,
		},
		logger: clog.Discard(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Archive renders url and writes it to outPath, creating parent
// directories. Browser failures are ErrNetwork, write failures are
// ErrFilesystem.
func (a *Archiver) Archive(ctx context.Context, url, outPath string) (err error) {
	start := time.Now()

	session, err := a.browser.Open(ctx)
	if err != nil {
		return errs.Network("archive.open", err)
	}
	defer func() {
		if cerr := session.Close(); cerr != nil {
			a.logger.Warn("browser session close failed", "url", url, "error", cerr)
		}
	}()

	pdf, err := session.Print(ctx, url, a.opts)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(err, ctxErr) {
			return ctxErr
		}
		return errs.Network("archive.print", fmt.Errorf("%s: %w", url, err))
	}
	if len(pdf) == 0 {
		return errs.Network("archive.print", fmt.Errorf("%s: renderer returned no data", url))
	}

	if err := writeFile(outPath, pdf); err != nil {
		return err
	}
	a.logger.Info("page archived", "url", url, "path", outPath, "bytes", len(pdf), "elapsed", time.Since(start).Round(time.Millisecond))
	return nil
}

// writeFile writes through a temp file so a failed write never leaves a
// truncated PDF at path.
func writeFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errs.Filesystem("archive.mkdir", err)
	}
	tmp, err := os.CreateTemp(dir, ".archive-*.pdf")
	if err != nil {
		return errs.Filesystem("archive.write", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return errs.Filesystem("archive.write", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return errs.Filesystem("archive.write", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return errs.Filesystem("archive.write", err)
	}
	return nil
}
