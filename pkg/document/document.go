// Package document assembles composed sections into the final proposed
// endeavor PDF.
package document

import (
	"fmt"
	"strings"
	"time"

	"github.com/xrsl/endeavor/pkg/utils"
)

// Section is one composed part of the document.
type Section struct {
	Title string
	Body  string
	Order int
}

// Heading is how the section title is rendered.
func (s Section) Heading() string {
	return strings.ToUpper(s.Title)
}

// Document is a proposed endeavor. Sections are appended in order and never
// edited afterwards.
type Document struct {
	Applicant string
	Topic     string
	sections  []Section
}

// New creates an empty document.
func New(applicant, topic string) *Document {
	return &Document{Applicant: applicant, Topic: topic}
}

// Append adds a section after the existing ones.
func (d *Document) Append(title, body string) Section {
	s := Section{Title: title, Body: body, Order: len(d.sections)}
	d.sections = append(d.sections, s)
	return s
}

// Sections returns a copy of the sections in order.
func (d *Document) Sections() []Section {
	return append([]Section(nil), d.sections...)
}

// Title is the document title.
func (d *Document) Title() string {
	return "Proposed Endeavor for " + d.Applicant
}

// Body renders every section as a "## HEADING" line followed by its body.
func (d *Document) Body() string {
	var b strings.Builder
	for _, s := range d.sections {
		fmt.Fprintf(&b, "## %s\n\n%s\n\n", s.Heading(), strings.TrimSpace(s.Body))
	}
	return b.String()
}

// ParseBody splits text written by Body, or a hand-edited markdown file,
// back into sections. Text before the first heading becomes an untitled
// section.
func ParseBody(text string) []Section {
	var (
		out   []Section
		title string
		body  strings.Builder
		open  bool
	)
	flush := func() {
		content := strings.TrimSpace(body.String())
		if open || content != "" {
			out = append(out, Section{Title: title, Body: content, Order: len(out)})
		}
		body.Reset()
	}
	for _, line := range strings.Split(text, "\n") {
		if h, ok := strings.CutPrefix(strings.TrimSpace(line), "## "); ok {
			flush()
			title, open = strings.TrimSpace(h), true
			continue
		}
		body.WriteString(line)
		body.WriteByte('\n')
	}
	flush()
	return out
}

// TimestampLayout formats the generation time in output names.
const TimestampLayout = "2006-01-02_15-04-05"

// OutputName is proposed_endeavor_<sanitized applicant>_<timestamp>.pdf.
func OutputName(applicant string, t time.Time) string {
	return fmt.Sprintf("proposed_endeavor_%s_%s.pdf", utils.SanitizeName(applicant), t.Format(TimestampLayout))
}
