// Package research asks the completion service for candidate sources and
// analyzes the applicant's CV into topic suggestions.
package research

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/xrsl/endeavor/pkg/ai"
	"github.com/xrsl/endeavor/pkg/errs"
	clog "github.com/xrsl/endeavor/pkg/log"
	"github.com/xrsl/endeavor/pkg/search"
	"github.com/xrsl/endeavor/pkg/workflow"
)

// DefaultCount is the number of candidate URLs requested per round.
const DefaultCount = 5

// Option configures a Researcher or Brainstormer.
type Option func(*settings)

type settings struct {
	prompts *workflow.Prompts
	count   int
	timeout time.Duration
	logger  *slog.Logger
}

func newSettings(opts []Option) settings {
	s := settings{
		prompts: &workflow.Prompts{},
		count:   DefaultCount,
		logger:  clog.Discard(),
	}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

// WithPrompts sets where prompt templates are loaded from.
func WithPrompts(p *workflow.Prompts) Option {
	return func(s *settings) {
		if p != nil {
			s.prompts = p
		}
	}
}

// WithCount sets how many URLs or topics are requested.
func WithCount(n int) Option {
	return func(s *settings) {
		if n > 0 {
			s.count = n
		}
	}
}

// WithTimeout bounds each completion call. Zero means no extra bound.
func WithTimeout(d time.Duration) Option {
	return func(s *settings) { s.timeout = d }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *settings) { s.logger = clog.OrDiscard(l) }
}

// Researcher proposes candidate source URLs for a topic.
type Researcher struct {
	client ai.Client
	settings
}

// NewResearcher creates a Researcher backed by client.
func NewResearcher(client ai.Client, opts ...Option) *Researcher {
	return &Researcher{client: client, settings: newSettings(opts)}
}

// Count is the number of candidates requested per call.
func (r *Researcher) Count() int { return r.count }

// Research returns at most Count cleaned candidate URLs in the order
// proposed, never including a URL from exclude. An unreachable service is
// ErrUpstreamUnavailable and an unparseable reply is ErrParse; neither is
// retried here.
func (r *Researcher) Research(ctx context.Context, topic string, exclude []string) ([]string, error) {
	system, user, err := r.prompts.Render(workflow.Research, workflow.ResearchData{
		Topic:   topic,
		Count:   r.count,
		Exclude: exclude,
	})
	if err != nil {
		return nil, err
	}

	reply, err := r.ask(ctx, system, user)
	if err != nil {
		return nil, err
	}

	raw, err := ParseURLs(reply)
	if err != nil {
		r.logger.Debug("unparseable research reply", "reply", reply)
		return nil, errs.Parse("research", err)
	}
	urls := Clean(raw, exclude)
	if len(urls) > r.count {
		r.logger.Debug("research reply over count", "proposed", len(urls), "count", r.count)
		urls = urls[:r.count]
	}
	r.logger.Debug("research candidates", "topic", topic, "proposed", len(raw), "kept", len(urls))
	return urls, nil
}

// grounder is a client whose replies carry the web results they were
// based on.
type grounder interface {
	Ground(ctx context.Context, systemPrompt, userPrompt string) (search.Answer, error)
}

// ask completes the research prompt. Grounding sources, when the client
// reports them, are logged at debug level.
func (r *Researcher) ask(ctx context.Context, system, user string) (string, error) {
	g, ok := r.client.(grounder)
	if !ok {
		return complete(ctx, r.client, r.timeout, system, user)
	}
	var sources []search.Source
	reply, err := bounded(ctx, r.timeout, func(ctx context.Context) (string, error) {
		ans, err := g.Ground(ctx, system, user)
		sources = ans.Sources
		return ans.Text, err
	})
	if err != nil {
		return "", err
	}
	for _, src := range sources {
		r.logger.Debug("grounding source", "uri", src.URI, "title", src.Title)
	}
	return reply, nil
}

// complete runs one bounded completion call.
func complete(ctx context.Context, client ai.Client, timeout time.Duration, system, user string) (string, error) {
	return bounded(ctx, timeout, func(ctx context.Context) (string, error) {
		return ai.Complete(ctx, client, system, user)
	})
}

// bounded runs call under timeout. Cancellation of the caller's context is
// returned as is so it can be told apart from upstream failure.
func bounded(ctx context.Context, timeout time.Duration, call func(context.Context) (string, error)) (string, error) {
	callCtx := ctx
	if timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	reply, err := call(callCtx)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		if errors.Is(err, context.DeadlineExceeded) {
			return "", errs.Upstream("complete", fmt.Errorf("no reply within %s", timeout))
		}
		return "", errs.Upstream("complete", err)
	}
	return reply, nil
}
