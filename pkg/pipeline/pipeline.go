// Package pipeline turns a topic into a validated, labeled exhibit list.
//
// The stages run strictly in sequence: research proposes candidates, each
// candidate is probed in order, and the survivors are labeled 1B, 1C, ...
// in acceptance order. A failed candidate is dropped without consuming a
// label. Research that fails outright degrades to an empty list.
package pipeline

import (
	"context"
	"log/slog"

	"github.com/xrsl/endeavor/pkg/exhibit"
	"github.com/xrsl/endeavor/pkg/linkcheck"
	clog "github.com/xrsl/endeavor/pkg/log"
)

// Researcher proposes candidate URLs for a topic, never returning a URL
// from exclude.
type Researcher interface {
	Research(ctx context.Context, topic string, exclude []string) ([]string, error)
}

// LinkValidator classifies one URL. It must not fail; problems are reported
// through the result status.
type LinkValidator interface {
	Check(ctx context.Context, url string) linkcheck.Result
}

// Report is everything a build observed.
type Report struct {
	Exhibits   []exhibit.Exhibit
	Candidates []linkcheck.Result // every probed candidate, in probe order
	Rounds     int                // research calls made
	Degraded   error              // first research failure, if any
}

// Rejected returns the candidates that did not validate.
func (r Report) Rejected() []linkcheck.Result {
	var out []linkcheck.Result
	for _, c := range r.Candidates {
		if !c.OK() {
			out = append(out, c)
		}
	}
	return out
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithRounds sets the number of research calls allowed. With one round the
// pipeline accepts whatever survives validation, up to target. With more,
// it asks for replacement candidates until target exhibits are accepted.
func WithRounds(n int) Option {
	return func(p *Pipeline) {
		if n > 0 {
			p.rounds = n
		}
	}
}

// WithTarget sets the number of exhibits wanted. Candidates past it are
// never probed.
func WithTarget(n int) Option {
	return func(p *Pipeline) {
		if n > 0 {
			p.target = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(p *Pipeline) { p.logger = clog.OrDiscard(l) }
}

// Pipeline is the exhibit pipeline.
type Pipeline struct {
	researcher Researcher
	validator  LinkValidator
	rounds     int
	target     int
	logger     *slog.Logger
}

// New creates a Pipeline.
func New(researcher Researcher, validator LinkValidator, opts ...Option) *Pipeline {
	p := &Pipeline{
		researcher: researcher,
		validator:  validator,
		rounds:     1,
		target:     5,
		logger:     clog.Discard(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// BuildExhibits returns the labeled exhibits for topic. The list may be
// empty. Only cancellation of ctx and label overflow are errors.
func (p *Pipeline) BuildExhibits(ctx context.Context, topic string) ([]exhibit.Exhibit, error) {
	r, err := p.Build(ctx, topic)
	return r.Exhibits, err
}

// Build is BuildExhibits with the full report.
func (p *Pipeline) Build(ctx context.Context, topic string) (Report, error) {
	var (
		report   Report
		accepted []string
		seen     []string
	)

	for round := 1; round <= p.rounds; round++ {
		if round > 1 && len(accepted) >= p.target {
			break
		}
		if err := ctx.Err(); err != nil {
			return Report{}, err
		}

		candidates, err := p.researcher.Research(ctx, topic, seen)
		report.Rounds = round
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return Report{}, ctxErr
			}
			p.logger.Warn("research unavailable", "round", round, "error", err)
			if report.Degraded == nil {
				report.Degraded = err
			}
			break
		}
		candidates = unseen(candidates, seen)
		if len(candidates) == 0 {
			p.logger.Debug("no new candidates", "round", round)
			break
		}

		for _, url := range candidates {
			if len(accepted) >= p.target {
				break
			}
			seen = append(seen, url)

			res := p.validator.Check(ctx, url)
			if err := ctx.Err(); err != nil {
				return Report{}, err
			}
			report.Candidates = append(report.Candidates, res)
			if !res.OK() {
				p.logger.Info("candidate rejected", "url", url, "status", res.Status, "detail", res.Detail)
				continue
			}
			accepted = append(accepted, url)
		}
	}

	exhibits, err := exhibit.Assign(accepted)
	if err != nil {
		return Report{}, err
	}
	report.Exhibits = exhibits
	p.logger.Info("exhibits built", "topic", topic, "accepted", len(exhibits), "probed", len(report.Candidates), "rounds", report.Rounds)
	return report, nil
}

func unseen(candidates, seen []string) []string {
	if len(seen) == 0 {
		return candidates
	}
	skip := make(map[string]bool, len(seen))
	for _, u := range seen {
		skip[u] = true
	}
	out := make([]string, 0, len(candidates))
	for _, u := range candidates {
		if !skip[u] {
			skip[u] = true
			out = append(out, u)
		}
	}
	return out
}
