// Package runner drives one complete proposed endeavor run:
// CV analysis, topic choice, exhibit pipeline, section composition and
// export. Each stage starts only after the previous one has finished.
package runner

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/xrsl/endeavor/pkg/compose"
	"github.com/xrsl/endeavor/pkg/document"
	"github.com/xrsl/endeavor/pkg/errs"
	"github.com/xrsl/endeavor/pkg/exhibit"
	"github.com/xrsl/endeavor/pkg/export"
	clog "github.com/xrsl/endeavor/pkg/log"
	"github.com/xrsl/endeavor/pkg/pipeline"
	"github.com/xrsl/endeavor/pkg/research"
)

// Brainstormer analyzes a CV into a name and topics.
type Brainstormer interface {
	Brainstorm(ctx context.Context, cv string, exclude []string) (research.Analysis, error)
}

// ExhibitBuilder runs the exhibit pipeline.
type ExhibitBuilder interface {
	Build(ctx context.Context, topic string) (pipeline.Report, error)
}

// SectionComposer writes one section.
type SectionComposer interface {
	Compose(ctx context.Context, req compose.Request) (string, error)
}

// Exporter persists the document and exhibit archives.
type Exporter interface {
	Export(ctx context.Context, runID string, doc *document.Document, exhibits []exhibit.Exhibit) (export.Result, error)
}

// Chooser asks the user for a topic. It returns the 0-based index of the
// chosen topic, or Regenerate to ask for new ones.
type Chooser interface {
	Choose(ctx context.Context, applicant string, topics []string) (int, error)
}

// Regenerate is returned by a Chooser to request a fresh set of topics.
const Regenerate = -1

// MaxRegenerations bounds how often new topics can be requested.
const MaxRegenerations = 5

// Stage names reported to the progress callback.
const (
	StageAnalyze  = "analyze"
	StageResearch = "research"
	StageCompose  = "compose"
	StageExport   = "export"
)

// Event is one progress notification.
type Event struct {
	Stage   string
	Message string
	Current int // 1-based position within the stage, 0 when not counted
	Total   int
}

// Outcome is everything a finished run produced.
type Outcome struct {
	RunID     string
	Applicant string
	Topic     string
	Report    pipeline.Report
	Document  *document.Document
	Export    export.Result
}

// Option configures a Runner.
type Option func(*Runner)

// WithSections overrides the section list.
func WithSections(sections []string) Option {
	return func(r *Runner) {
		if len(sections) > 0 {
			r.sections = sections
		}
	}
}

// WithProgress receives progress events.
func WithProgress(fn func(Event)) Option {
	return func(r *Runner) {
		if fn != nil {
			r.progress = fn
		}
	}
}

// WithRunID replaces the run id generator.
func WithRunID(fn func() string) Option {
	return func(r *Runner) { r.newID = fn }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(r *Runner) { r.logger = clog.OrDiscard(l) }
}

// Runner wires the stages together. Every collaborator is an interface so
// each stage can be replaced in tests.
type Runner struct {
	brainstormer Brainstormer
	exhibits     ExhibitBuilder
	composer     SectionComposer
	exporter     Exporter
	chooser      Chooser
	sections     []string
	progress     func(Event)
	newID        func() string
	logger       *slog.Logger
}

// Stages bundles the collaborators of a Runner.
type Stages struct {
	Brainstormer Brainstormer
	Exhibits     ExhibitBuilder
	Composer     SectionComposer
	Exporter     Exporter
	Chooser      Chooser
}

// New creates a Runner.
func New(s Stages, opts ...Option) *Runner {
	r := &Runner{
		brainstormer: s.Brainstormer,
		exhibits:     s.Exhibits,
		composer:     s.Composer,
		exporter:     s.Exporter,
		chooser:      s.Chooser,
		sections:     compose.DefaultSections,
		progress:     func(Event) {},
		newID:        uuid.NewString,
		logger:       clog.Discard(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run performs the interactive flow starting from CV text.
func (r *Runner) Run(ctx context.Context, cv string) (Outcome, error) {
	applicant, topic, err := r.ChooseTopic(ctx, cv)
	if err != nil {
		return Outcome{}, err
	}
	return r.Generate(ctx, applicant, topic)
}

// ChooseTopic analyzes cv and lets the chooser pick a topic, regenerating
// topics on request.
func (r *Runner) ChooseTopic(ctx context.Context, cv string) (applicant, topic string, err error) {
	if r.brainstormer == nil || r.chooser == nil {
		return "", "", errs.Config("runner", fmt.Errorf("topic selection needs a brainstormer and a chooser"))
	}

	var shown []string
	for attempt := 0; attempt <= MaxRegenerations; attempt++ {
		r.progress(Event{Stage: StageAnalyze, Message: "Analyzing CV and brainstorming topics"})
		a, err := r.brainstormer.Brainstorm(ctx, cv, shown)
		if err != nil {
			return "", "", fmt.Errorf("analyze CV: %w", err)
		}
		r.logger.Info("applicant identified", "applicant", a.FullName, "topics", len(a.Topics))

		choice, err := r.chooser.Choose(ctx, a.FullName, a.Topics)
		if err != nil {
			return "", "", err
		}
		if choice == Regenerate {
			shown = append(shown, a.Topics...)
			continue
		}
		if choice < 0 || choice >= len(a.Topics) {
			return "", "", errs.Config("runner", fmt.Errorf("topic %d out of range 1..%d", choice+1, len(a.Topics)))
		}
		return a.FullName, a.Topics[choice], nil
	}
	return "", "", errs.Config("runner", fmt.Errorf("no topic chosen after %d regenerations", MaxRegenerations))
}

// Generate runs everything after topic selection.
func (r *Runner) Generate(ctx context.Context, applicant, topic string) (Outcome, error) {
	out := Outcome{RunID: r.newID(), Applicant: applicant, Topic: topic}
	logger := r.logger.With("run_id", out.RunID)

	// Exhibit pipeline
	r.progress(Event{Stage: StageResearch, Message: "Researching and validating sources"})
	report, err := r.exhibits.Build(ctx, topic)
	if err != nil {
		return out, fmt.Errorf("build exhibits: %w", err)
	}
	out.Report = report
	if report.Degraded != nil {
		logger.Warn("continuing without sources", "error", report.Degraded)
	}

	// Sections
	doc := document.New(applicant, topic)
	for i, title := range r.sections {
		r.progress(Event{Stage: StageCompose, Message: title, Current: i + 1, Total: len(r.sections)})
		body, err := r.composer.Compose(ctx, compose.Request{
			Section:   title,
			Applicant: applicant,
			Topic:     topic,
			Exhibits:  report.Exhibits,
		})
		if err != nil {
			return out, fmt.Errorf("compose %q: %w", title, err)
		}
		doc.Append(title, body)
	}
	out.Document = doc

	// Export
	r.progress(Event{Stage: StageExport, Message: "Saving document and exhibits"})
	res, err := r.exporter.Export(ctx, out.RunID, doc, report.Exhibits)
	out.Export = res
	if err != nil {
		return out, fmt.Errorf("export: %w", err)
	}
	logger.Info("run complete", "document", res.Document, "exhibits", len(res.Exhibits), "archive_failures", len(res.Failed()))
	return out, nil
}
