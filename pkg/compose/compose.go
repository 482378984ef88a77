// Package compose writes the sections of a proposed endeavor document.
package compose

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/xrsl/endeavor/pkg/ai"
	"github.com/xrsl/endeavor/pkg/errs"
	"github.com/xrsl/endeavor/pkg/exhibit"
	clog "github.com/xrsl/endeavor/pkg/log"
	"github.com/xrsl/endeavor/pkg/workflow"
)

// DefaultSections is the section order of a proposed endeavor.
var DefaultSections = []string{
	"Introduction and Overview",
	"Substantial Merit",
	"National Importance",
	"Phased Implementation Plan",
	"Projected Economic Impact and Job Creation",
	"Broader Impacts and Conclusion",
}

// DefaultMinWords is the length each section is asked to reach.
const DefaultMinWords = 800

// Request is everything one section is written from.
type Request struct {
	Section   string
	Applicant string
	Topic     string
	Exhibits  []exhibit.Exhibit
}

// Option configures a Composer.
type Option func(*Composer)

// WithPrompts sets where prompt templates are loaded from.
func WithPrompts(p *workflow.Prompts) Option {
	return func(c *Composer) {
		if p != nil {
			c.prompts = p
		}
	}
}

// WithTimeout bounds each completion call.
func WithTimeout(d time.Duration) Option {
	return func(c *Composer) { c.timeout = d }
}

// WithMinWords sets the requested section length.
func WithMinWords(n int) Option {
	return func(c *Composer) {
		if n > 0 {
			c.minWords = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Composer) { c.logger = clog.OrDiscard(l) }
}

// Composer writes one section per call through the completion service.
type Composer struct {
	client   ai.Client
	prompts  *workflow.Prompts
	timeout  time.Duration
	minWords int
	logger   *slog.Logger
}

// New creates a Composer backed by client.
func New(client ai.Client, opts ...Option) *Composer {
	c := &Composer{
		client:   client,
		prompts:  &workflow.Prompts{},
		minWords: DefaultMinWords,
		logger:   clog.Discard(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Compose returns the body text of one section with citations normalized
// to the exhibits in req. An unreachable service or an empty reply is
// ErrUpstreamUnavailable.
func (c *Composer) Compose(ctx context.Context, req Request) (string, error) {
	system, user, err := c.prompts.Render(workflow.Compose, workflow.ComposeData{
		Section:   req.Section,
		Applicant: req.Applicant,
		Topic:     req.Topic,
		Exhibits:  req.Exhibits,
		MinWords:  c.minWords,
	})
	if err != nil {
		return "", err
	}

	callCtx := ctx
	if c.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	start := time.Now()
	reply, err := ai.Complete(callCtx, c.client, system, user)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		if errors.Is(err, context.DeadlineExceeded) {
			err = fmt.Errorf("no reply within %s", c.timeout)
		}
		return "", errs.Upstream("compose", fmt.Errorf("section %q: %w", req.Section, err))
	}

	body := cleanBody(reply, req.Section)
	if body == "" {
		return "", errs.Upstream("compose", fmt.Errorf("section %q: empty reply", req.Section))
	}

	body, dropped := NormalizeCitations(body, exhibit.Labels(req.Exhibits))
	if len(dropped) > 0 {
		c.logger.Warn("removed citations to unknown exhibits", "section", req.Section, "labels", dropped)
	}
	c.logger.Debug("section composed",
		"section", req.Section,
		"words", len(strings.Fields(body)),
		"elapsed", time.Since(start).Round(time.Millisecond),
	)
	return body, nil
}

// cleanBody trims the reply and drops a leading heading that repeats the
// section title, which models add despite being told not to.
func cleanBody(reply, section string) string {
	body := strings.TrimSpace(reply)
	first, rest, found := strings.Cut(body, "\n")
	heading := strings.TrimSpace(strings.Trim(strings.TrimSpace(first), "#*"))
	if strings.EqualFold(heading, section) {
		if !found {
			return ""
		}
		body = strings.TrimSpace(rest)
	}
	return body
}
