package exhibit

import (
	"errors"
	"fmt"
	"testing"

	"go.uber.org/goleak"

	"github.com/xrsl/endeavor/pkg/errs"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestLabel(t *testing.T) {
	tests := []struct {
		index int
		want  string
	}{
		{0, "1B"},
		{1, "1C"},
		{2, "1D"},
		{23, "1Y"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			got, err := Label(tt.index)
			if err != nil {
				t.Fatalf("Label(%d) error: %v", tt.index, err)
			}
			if got != tt.want {
				t.Errorf("Label(%d) = %q, want %q", tt.index, got, tt.want)
			}
		})
	}
}

func TestLabelOverflow(t *testing.T) {
	for _, i := range []int{-1, MaxLabels, MaxLabels + 5} {
		if _, err := Label(i); !errors.Is(err, errs.ErrConfig) {
			t.Errorf("Label(%d) error = %v, want ErrConfig", i, err)
		}
	}
}

func TestAssignSequentialNoGaps(t *testing.T) {
	for n := 0; n <= MaxLabels; n++ {
		t.Run(fmt.Sprintf("n=%d", n), func(t *testing.T) {
			urls := make([]string, n)
			for i := range urls {
				urls[i] = fmt.Sprintf("https://example.gov/%d", i)
			}

			exs, err := Assign(urls)
			if err != nil {
				t.Fatalf("Assign() error: %v", err)
			}
			if len(exs) != n {
				t.Fatalf("got %d exhibits, want %d", len(exs), n)
			}

			seen := map[string]bool{}
			for i, e := range exs {
				want := "1" + string(rune('B'+i))
				if e.Label != want {
					t.Errorf("exhibit %d label = %q, want %q", i, e.Label, want)
				}
				if !IsLabel(e.Label) {
					t.Errorf("label %q is not well-formed", e.Label)
				}
				if seen[e.Label] {
					t.Errorf("duplicate label %q", e.Label)
				}
				seen[e.Label] = true
				if e.SourceURL != urls[i] {
					t.Errorf("exhibit %d url = %q, want %q", i, e.SourceURL, urls[i])
				}
				if e.Status != Valid {
					t.Errorf("exhibit %d status = %v, want valid", i, e.Status)
				}
			}
		})
	}
}

func TestAssignOverflow(t *testing.T) {
	urls := make([]string, MaxLabels+1)
	if _, err := Assign(urls); !errors.Is(err, errs.ErrConfig) {
		t.Errorf("Assign(%d urls) error = %v, want ErrConfig", len(urls), err)
	}
}

func TestCitationFormat(t *testing.T) {
	e := Exhibit{Label: "1C", SourceURL: "https://nih.gov"}
	if got := e.Citation(); got != "(Exhibit 1C)" {
		t.Errorf("Citation() = %q", got)
	}
	if got := e.Folder(); got != "exhibit1C" {
		t.Errorf("Folder() = %q", got)
	}
}

func TestIsLabel(t *testing.T) {
	for _, s := range []string{"1", "2B", "1b", "1BB", "", "1A"} {
		if IsLabel(s) {
			t.Errorf("IsLabel(%q) = true", s)
		}
	}
}

func TestStatusString(t *testing.T) {
	if Valid.String() != "valid" || Broken.String() != "broken" || Error.String() != "error" {
		t.Error("unexpected status names")
	}
}
