package linkcheck

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/xrsl/endeavor/pkg/exhibit"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/ok", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodHead {
			t.Errorf("expected HEAD, got %s", r.Method)
		}
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/moved", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/ok", http.StatusMovedPermanently)
	})
	mux.HandleFunc("/missing", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	mux.HandleFunc("/down", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})
	mux.HandleFunc("/slow", func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
		w.WriteHeader(http.StatusOK)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestCheckStatusCodes(t *testing.T) {
	srv := newTestServer(t)
	v := New(WithHTTPClient(srv.Client()))

	tests := []struct {
		path string
		want exhibit.Status
		code int
	}{
		{"/ok", exhibit.Valid, 200},
		{"/moved", exhibit.Valid, 200},
		{"/missing", exhibit.Broken, 404},
		{"/down", exhibit.Broken, 503},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			res := v.Check(context.Background(), srv.URL+tt.path)
			if res.Status != tt.want {
				t.Errorf("Check(%s) status = %v, want %v (%s)", tt.path, res.Status, tt.want, res.Detail)
			}
			if res.StatusCode != tt.code {
				t.Errorf("Check(%s) code = %d, want %d", tt.path, res.StatusCode, tt.code)
			}
			if res.Detail == "" {
				t.Error("expected a detail message")
			}
		})
	}
}

func TestCheckRedirectWithoutFollowTarget(t *testing.T) {
	// A 3xx that is not followed still counts as valid.
	srv := newTestServer(t)
	client := srv.Client()
	client.CheckRedirect = func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}
	v := New(WithHTTPClient(client))

	res := v.Check(context.Background(), srv.URL+"/moved")
	if res.Status != exhibit.Valid || res.StatusCode != http.StatusMovedPermanently {
		t.Errorf("got %v/%d, want valid/301", res.Status, res.StatusCode)
	}
}

func TestCheckTimeout(t *testing.T) {
	srv := newTestServer(t)
	v := New(WithHTTPClient(srv.Client()), WithTimeout(50*time.Millisecond))

	start := time.Now()
	res := v.Check(context.Background(), srv.URL+"/slow")
	if res.Status != exhibit.Error {
		t.Errorf("status = %v, want error", res.Status)
	}
	if !strings.Contains(res.Detail, "timed out") {
		t.Errorf("detail = %q, want timeout message", res.Detail)
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("timeout not enforced, took %v", elapsed)
	}
}

func TestCheckMalformedAndUnreachable(t *testing.T) {
	closed := httptest.NewServer(http.NotFoundHandler())
	closedURL := closed.URL
	closed.Close()

	v := New(WithTimeout(time.Second))
	for _, raw := range []string{"", "not a url", "ftp://example.gov/file", "https://", "http://%zz", closedURL} {
		t.Run(raw, func(t *testing.T) {
			res := v.Check(context.Background(), raw)
			if res.Status != exhibit.Error {
				t.Errorf("Check(%q) status = %v, want error", raw, res.Status)
			}
			if res.Detail == "" {
				t.Error("expected a detail message")
			}
			if res.OK() {
				t.Error("OK() should be false")
			}
		})
	}
}

func TestCheckCancelledContext(t *testing.T) {
	srv := newTestServer(t)
	v := New(WithHTTPClient(srv.Client()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res := v.Check(ctx, srv.URL+"/ok")
	if res.Status != exhibit.Error {
		t.Errorf("status = %v, want error", res.Status)
	}
}
