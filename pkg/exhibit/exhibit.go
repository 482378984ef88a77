// Package exhibit models validated source citations and their labels.
//
// Labels run 1B, 1C, 1D, ... in the order sources are accepted. Only
// sources that passed validation are labeled, so the sequence never has
// gaps. Labeling stops at 1Y; a 25th accepted source is a configuration
// error.
package exhibit

import (
	"fmt"
	"regexp"

	"github.com/xrsl/endeavor/pkg/errs"
)

// MaxLabels is the number of single-letter labels available (1B..1Y).
const MaxLabels = 24

// Status is the outcome of validating a source URL.
type Status int

const (
	Valid Status = iota
	Broken
	Error
)

func (s Status) String() string {
	switch s {
	case Valid:
		return "valid"
	case Broken:
		return "broken"
	case Error:
		return "error"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// MarshalText implements encoding.TextMarshaler so manifests carry names.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Exhibit is a labeled, validated source. Values are never mutated.
type Exhibit struct {
	Label     string `yaml:"label" json:"label"`
	SourceURL string `yaml:"source_url" json:"source_url"`
	Status    Status `yaml:"status" json:"status"`
}

// Citation returns the inline citation for the exhibit, e.g. "(Exhibit 1B)".
func (e Exhibit) Citation() string {
	return Cite(e.Label)
}

// Folder returns the per-exhibit folder name, e.g. "exhibit1B".
func (e Exhibit) Folder() string {
	return "exhibit" + e.Label
}

var labelPattern = regexp.MustCompile(`^1[B-Z]$`)

// Label returns the label of the i-th accepted source (0-indexed).
func Label(i int) (string, error) {
	if i < 0 || i >= MaxLabels {
		return "", errs.Config("label", fmt.Errorf("index %d outside 0..%d; more than %d exhibits needs a multi-character scheme", i, MaxLabels-1, MaxLabels))
	}
	return "1" + string(rune('B'+i)), nil
}

// IsLabel reports whether s is a well-formed exhibit label.
func IsLabel(s string) bool {
	return labelPattern.MatchString(s)
}

// Cite formats label in the exact inline citation form.
func Cite(label string) string {
	return "(Exhibit " + label + ")"
}

// Assign labels accepted sources in order. Every URL passed in must already
// be Valid; rejected sources are simply not passed, so they consume no letter.
func Assign(accepted []string) ([]Exhibit, error) {
	if len(accepted) > MaxLabels {
		return nil, errs.Config("label", fmt.Errorf("%d accepted sources exceed the %d available labels", len(accepted), MaxLabels))
	}
	out := make([]Exhibit, 0, len(accepted))
	for i, url := range accepted {
		label, err := Label(i)
		if err != nil {
			return nil, err
		}
		out = append(out, Exhibit{Label: label, SourceURL: url, Status: Valid})
	}
	return out, nil
}

// Labels returns the labels of exs in order.
func Labels(exs []Exhibit) []string {
	labels := make([]string, len(exs))
	for i, e := range exs {
		labels[i] = e.Label
	}
	return labels
}
