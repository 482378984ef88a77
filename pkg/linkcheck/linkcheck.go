// Package linkcheck probes source URLs for reachability.
package linkcheck

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/xrsl/endeavor/pkg/exhibit"
	clog "github.com/xrsl/endeavor/pkg/log"
)

// DefaultTimeout bounds a single probe.
const DefaultTimeout = 10 * time.Second

const userAgent = "Mozilla/5.0 (compatible; endeavor-linkcheck/1.0)"

// Result is the classification of one URL.
type Result struct {
	URL        string
	Status     exhibit.Status
	StatusCode int    // 0 when no response was received
	Detail     string // human-readable cause, always set
}

// OK reports whether the link is usable as a source.
func (r Result) OK() bool {
	return r.Status == exhibit.Valid
}

// Option configures a Validator.
type Option func(*Validator)

// WithTimeout overrides the per-probe timeout.
func WithTimeout(d time.Duration) Option {
	return func(v *Validator) {
		if d > 0 {
			v.timeout = d
		}
	}
}

// WithHTTPClient replaces the HTTP client used for probes.
func WithHTTPClient(c *http.Client) Option {
	return func(v *Validator) { v.client = c }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(v *Validator) { v.logger = clog.OrDiscard(l) }
}

// Validator issues HEAD probes. It keeps no state between calls and is safe
// to retry.
type Validator struct {
	client  *http.Client
	timeout time.Duration
	logger  *slog.Logger
}

// New creates a Validator.
func New(opts ...Option) *Validator {
	v := &Validator{
		client:  &http.Client{},
		timeout: DefaultTimeout,
		logger:  clog.Discard(),
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Check classifies rawURL. Any status under 400 (redirects are followed) is
// Valid, 400 and above is Broken, and every failure to get a response is
// Error. Check never returns an error value.
func (v *Validator) Check(ctx context.Context, rawURL string) Result {
	res := v.check(ctx, rawURL)
	v.logger.Debug("link checked",
		"url", rawURL,
		"status", res.Status,
		"code", res.StatusCode,
		"detail", res.Detail,
	)
	return res
}

func (v *Validator) check(ctx context.Context, rawURL string) Result {
	target := strings.TrimSpace(rawURL)
	if err := validateURL(target); err != nil {
		return Result{URL: rawURL, Status: exhibit.Error, Detail: err.Error()}
	}

	ctx, cancel := context.WithTimeout(ctx, v.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, target, http.NoBody)
	if err != nil {
		return Result{URL: rawURL, Status: exhibit.Error, Detail: fmt.Sprintf("invalid URL: %v", err)}
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := v.client.Do(req)
	if err != nil {
		return Result{URL: rawURL, Status: exhibit.Error, Detail: describe(ctx, err)}
	}
	_ = resp.Body.Close()

	if resp.StatusCode < http.StatusBadRequest {
		return Result{
			URL:        rawURL,
			Status:     exhibit.Valid,
			StatusCode: resp.StatusCode,
			Detail:     fmt.Sprintf("link is valid, status code %d", resp.StatusCode),
		}
	}
	return Result{
		URL:        rawURL,
		Status:     exhibit.Broken,
		StatusCode: resp.StatusCode,
		Detail:     fmt.Sprintf("link is broken, status code %d", resp.StatusCode),
	}
}

func validateURL(raw string) error {
	if raw == "" {
		return fmt.Errorf("empty URL")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("malformed URL: %v", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("URL has no host")
	}
	return nil
}

func describe(ctx context.Context, err error) string {
	if ctx.Err() == context.DeadlineExceeded {
		return "timed out; the server may be down or slow"
	}
	return fmt.Sprintf("request failed: %v; the URL may be invalid or the server is down", err)
}
