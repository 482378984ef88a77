package cmd

import (
	"bufio"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/xrsl/endeavor/pkg/errs"
	"github.com/xrsl/endeavor/pkg/runner"
	"github.com/xrsl/endeavor/pkg/style"
)

func init() {
	style.NoColor = true
}

func TestPromptChooser(t *testing.T) {
	topics := []string{"One", "Two", "Three"}

	tests := []struct {
		name  string
		input string
		want  int
	}{
		{"first", "1\n", 0},
		{"last", "3\n", 2},
		{"retry after invalid", "9\nabc\n2\n", 1},
		{"regenerate", "r\n", runner.Regenerate},
		{"regenerate upper", " R \n", runner.Regenerate},
		{"no trailing newline", "2", 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := promptChooser{in: bufio.NewReader(strings.NewReader(tt.input))}
			got, err := c.Choose(context.Background(), "Jane Doe", topics)
			if err != nil {
				t.Fatalf("Choose() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Choose() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestPromptChooserEOF(t *testing.T) {
	c := promptChooser{in: bufio.NewReader(strings.NewReader("x\n"))}
	_, err := c.Choose(context.Background(), "Jane Doe", []string{"One"})
	if !errors.Is(err, errs.ErrConfig) {
		t.Errorf("Choose() error = %v, want ErrConfig", err)
	}
}

func TestPromptChooserCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	c := promptChooser{in: bufio.NewReader(strings.NewReader("1\n"))}
	if _, err := c.Choose(ctx, "Jane Doe", []string{"One"}); !errors.Is(err, context.Canceled) {
		t.Errorf("Choose() error = %v, want context.Canceled", err)
	}
}

func TestReadCVFromStdin(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"END marker", "Jane Doe\nPhD, Epidemiology\nEND\nignored\n", "Jane Doe\nPhD, Epidemiology"},
		{"EOF", "Jane Doe\nPhD, Epidemiology", "Jane Doe\nPhD, Epidemiology"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := readCV(context.Background(), "", bufio.NewReader(strings.NewReader(tt.input)))
			if err != nil {
				t.Fatalf("readCV() error = %v", err)
			}
			if strings.TrimSpace(got) != tt.want {
				t.Errorf("readCV() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestReadCVEmpty(t *testing.T) {
	_, err := readCV(context.Background(), "", bufio.NewReader(strings.NewReader("END\n")))
	if !errors.Is(err, errs.ErrConfig) {
		t.Errorf("readCV() error = %v, want ErrConfig", err)
	}
}
