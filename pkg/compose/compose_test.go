package compose

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xrsl/endeavor/pkg/errs"
	"github.com/xrsl/endeavor/pkg/exhibit"
)

type fakeClient struct {
	reply  string
	err    error
	block  bool
	system string
	user   string
}

func (f *fakeClient) GenerateContent(ctx context.Context, prompt string) (string, error) {
	return f.GenerateContentWithSystem(ctx, "", prompt)
}

func (f *fakeClient) GenerateContentWithSystem(ctx context.Context, system, user string) (string, error) {
	f.system, f.user = system, user
	if f.block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	return f.reply, f.err
}

func (f *fakeClient) Close() {}

var twoExhibits = []exhibit.Exhibit{
	{Label: "1B", SourceURL: "https://www.hrsa.gov/rural-health"},
	{Label: "1C", SourceURL: "https://www.nih.gov/ai"},
}

func TestNormalizeCitations(t *testing.T) {
	known := []string{"1B", "1C", "1D"}
	tests := []struct {
		name    string
		in      string
		want    string
		dropped []string
	}{
		{"exact", "Rural hospitals are closing (Exhibit 1B).", "Rural hospitals are closing (Exhibit 1B).", nil},
		{"lower case", "as shown (exhibit 1c).", "as shown (Exhibit 1C).", nil},
		{"ampersand", "funding (Exhibit 1B & 1C) grows", "funding (Exhibit 1B) (Exhibit 1C) grows", nil},
		{"plural list", "data (Exhibits 1B, 1C, 1D).", "data (Exhibit 1B) (Exhibit 1C) (Exhibit 1D).", nil},
		{"and", "see (Exhibit 1B and 1D)", "see (Exhibit 1B) (Exhibit 1D)", nil},
		{"unknown removed", "a claim (Exhibit 1F).", "a claim.", []string{"1F"}},
		{"mixed unknown", "policy (Exhibit 1B, 1G) applies", "policy (Exhibit 1B) applies", []string{"1G"}},
		{"not a citation", "Exhibit 1B shows (see above)", "Exhibit 1B shows (see above)", nil},
		{"repeated word", "costs (Exhibit 1B; Exhibit 1C) rose", "costs (Exhibit 1B) (Exhibit 1C) rose", nil},
		{"repeated word unknown", "costs (Exhibit 1B; Exhibit 1Q) rose", "costs (Exhibit 1B) rose", []string{"1Q"}},
		{"page reference unknown", "a claim (Exhibit 1Q, p. 4).", "a claim.", []string{"1Q"}},
		{"page reference known", "a claim (Exhibit 1C, p. 4).", "a claim (Exhibit 1C).", nil},
		{"see prefix unknown", "a claim (see Exhibit 1Q).", "a claim.", []string{"1Q"}},
		{"see prefix known", "a claim (see exhibit 1d).", "a claim (Exhibit 1D).", nil},
		{"duplicate label", "a claim (Exhibit 1B, Exhibit 1B).", "a claim (Exhibit 1B).", nil},
		{"unrelated parenthesis kept", "the agency (HRSA) reports (Exhibit 1B).", "the agency (HRSA) reports (Exhibit 1B).", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, dropped := NormalizeCitations(tt.in, known)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.dropped, dropped)
		})
	}
}

func TestCompose(t *testing.T) {
	client := &fakeClient{reply: "## National Importance\n\nMy endeavor matters (Exhibit 1B & 1C). It also cites (Exhibit 1E)."}
	c := New(client, WithMinWords(500))

	body, err := c.Compose(context.Background(), Request{
		Section:   "National Importance",
		Applicant: "Jane Doe",
		Topic:     "AI for Rural Healthcare Access",
		Exhibits:  twoExhibits,
	})
	require.NoError(t, err)
	assert.Equal(t, "My endeavor matters (Exhibit 1B) (Exhibit 1C). It also cites.", body)
	assert.Contains(t, client.system, "at least 500 words")
	assert.Contains(t, client.user, "Exhibit 1C: https://www.nih.gov/ai")
	assert.Contains(t, client.user, "Jane Doe")
}

func TestComposeUpstreamFailures(t *testing.T) {
	req := Request{Section: "Substantial Merit", Applicant: "A", Topic: "T"}

	_, err := New(&fakeClient{err: errors.New("overloaded")}).Compose(context.Background(), req)
	assert.ErrorIs(t, err, errs.ErrUpstreamUnavailable)

	_, err = New(&fakeClient{reply: "   \n"}).Compose(context.Background(), req)
	assert.ErrorIs(t, err, errs.ErrUpstreamUnavailable)

	_, err = New(&fakeClient{reply: "Substantial Merit"}).Compose(context.Background(), req)
	assert.ErrorIs(t, err, errs.ErrUpstreamUnavailable, "a bare heading is an empty section")

	_, err = New(&fakeClient{block: true}, WithTimeout(20*time.Millisecond)).Compose(context.Background(), req)
	assert.ErrorIs(t, err, errs.ErrUpstreamUnavailable)
}

func TestComposeCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := New(&fakeClient{block: true}).Compose(ctx, Request{Section: "S"})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCleanBody(t *testing.T) {
	assert.Equal(t, "Body.", cleanBody("**Substantial Merit**\nBody.", "Substantial Merit"))
	assert.Equal(t, "Intro line\nBody.", cleanBody("Intro line\nBody.", "Substantial Merit"))
}

func TestDefaultSections(t *testing.T) {
	assert.Len(t, DefaultSections, 6)
	assert.Equal(t, "Introduction and Overview", DefaultSections[0])
	assert.Equal(t, "Broader Impacts and Conclusion", DefaultSections[5])
}
