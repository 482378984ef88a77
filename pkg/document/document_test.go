package document

import (
	"bytes"
	"fmt"
	"go/build"
	"io"
	"os"
	"path/filepath"
	"runtime/debug"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xrsl/endeavor/pkg/errs"
)

type fakeRenderer struct {
	calls int
}

func (r *fakeRenderer) Render(doc *Document, created time.Time, w io.Writer) error {
	r.calls++
	_, err := fmt.Fprintf(w, "%%PDF-fake %s %s call=%d", doc.Applicant, created.Format(time.RFC3339), r.calls)
	return err
}

var fixed = time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)

func sampleDoc() *Document {
	doc := New("Jane Doe", "AI for Rural Healthcare Access")
	doc.Append("Introduction and Overview", "My endeavor (Exhibit 1B).")
	doc.Append("National Importance", "It matters.")
	return doc
}

func TestDocumentSectionsInOrder(t *testing.T) {
	doc := sampleDoc()
	sections := doc.Sections()
	require.Len(t, sections, 2)
	assert.Equal(t, 0, sections[0].Order)
	assert.Equal(t, 1, sections[1].Order)
	assert.Equal(t, "NATIONAL IMPORTANCE", sections[1].Heading())

	sections[0].Body = "mutated"
	assert.Equal(t, "My endeavor (Exhibit 1B).", doc.Sections()[0].Body, "Sections returns a copy")

	assert.Equal(t, "## INTRODUCTION AND OVERVIEW\n\nMy endeavor (Exhibit 1B).\n\n## NATIONAL IMPORTANCE\n\nIt matters.\n\n", doc.Body())
}

func TestParseBody(t *testing.T) {
	got := ParseBody("Preface text.\n\n## SUBSTANTIAL MERIT\n\nFirst.\nSecond.\n\n## NATIONAL IMPORTANCE\n\nThird.\n")
	require.Len(t, got, 3)
	assert.Equal(t, Section{Title: "", Body: "Preface text.", Order: 0}, got[0])
	assert.Equal(t, Section{Title: "SUBSTANTIAL MERIT", Body: "First.\nSecond.", Order: 1}, got[1])
	assert.Equal(t, Section{Title: "NATIONAL IMPORTANCE", Body: "Third.", Order: 2}, got[2])
}

func TestOutputName(t *testing.T) {
	assert.Equal(t, "proposed_endeavor_Jane_Doe_2026-03-14_09-26-53.pdf", OutputName("Jane Doe", fixed))
	assert.Equal(t, "proposed_endeavor_OBrien_2026-03-14_09-26-53.pdf", OutputName(`O"Brien`, fixed))
}

func TestWriteNeverOverwrites(t *testing.T) {
	dir := t.TempDir()
	a := NewAssembler(&fakeRenderer{}, WithClock(func() time.Time { return fixed }))

	first, err := a.Write(sampleDoc(), dir)
	require.NoError(t, err)
	second, err := a.Write(sampleDoc(), dir)
	require.NoError(t, err)
	third, err := a.Write(sampleDoc(), dir)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "proposed_endeavor_Jane_Doe_2026-03-14_09-26-53.pdf"), first)
	assert.Equal(t, filepath.Join(dir, "proposed_endeavor_Jane_Doe_2026-03-14_09-26-53_2.pdf"), second)
	assert.Equal(t, filepath.Join(dir, "proposed_endeavor_Jane_Doe_2026-03-14_09-26-53_3.pdf"), third)

	b, err := os.ReadFile(first)
	require.NoError(t, err)
	assert.Contains(t, string(b), "call=1", "first output is untouched")
}

func TestWriteDistinctTimestamps(t *testing.T) {
	dir := t.TempDir()
	times := []time.Time{fixed, fixed.Add(time.Second)}
	i := 0
	a := NewAssembler(&fakeRenderer{}, WithClock(func() time.Time { ts := times[i]; i++; return ts }))

	p1, err := a.Write(sampleDoc(), dir)
	require.NoError(t, err)
	p2, err := a.Write(sampleDoc(), dir)
	require.NoError(t, err)
	assert.NotEqual(t, p1, p2)
	assert.Contains(t, p2, "09-26-54.pdf")
}

func TestWriteFilesystemError(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0o644))

	_, err := NewAssembler(&fakeRenderer{}).Write(sampleDoc(), filepath.Join(blocker, "out"))
	assert.ErrorIs(t, err, errs.ErrFilesystem)
}

func TestAssembleRequiresApplicant(t *testing.T) {
	_, err := NewAssembler(&fakeRenderer{}).Assemble(New(" ", "topic"))
	assert.ErrorIs(t, err, errs.ErrConfig)
}

func TestPDFRendererMissingFont(t *testing.T) {
	tests := []struct {
		name  string
		fonts Fonts
	}{
		{"none configured", Fonts{}},
		{"regular absent", Fonts{Regular: filepath.Join(t.TempDir(), "nope.ttf")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			err := NewPDFRenderer(tt.fonts, "A4").Render(sampleDoc(), fixed, &buf)
			assert.ErrorIs(t, err, errs.ErrResourceMissing)
			assert.Zero(t, buf.Len(), "nothing is written when fonts are missing")
		})
	}
}

// fpdfFonts returns the DejaVu Condensed faces shipped in the fpdf module's
// font directory.
func fpdfFonts(t *testing.T) Fonts {
	t.Helper()
	version := "v0.9.0"
	if info, ok := debug.ReadBuildInfo(); ok {
		for _, dep := range info.Deps {
			if dep.Path == "github.com/go-pdf/fpdf" {
				version = dep.Version
			}
		}
	}
	modCache := os.Getenv("GOMODCACHE")
	if modCache == "" {
		modCache = filepath.Join(build.Default.GOPATH, "pkg", "mod")
	}
	dir := filepath.Join(modCache, "github.com", "go-pdf", "fpdf@"+version, "font")
	fonts := Fonts{
		Regular: filepath.Join(dir, "DejaVuSansCondensed.ttf"),
		Bold:    filepath.Join(dir, "DejaVuSansCondensed-Bold.ttf"),
		Italic:  filepath.Join(dir, "DejaVuSansCondensed-Oblique.ttf"),
	}
	require.NoError(t, fonts.Check(), "fpdf fonts under %s", dir)
	return fonts
}

func TestPDFRendererUnicode(t *testing.T) {
	fonts := fpdfFonts(t)

	doc := New("José Müller-Łukasiewicz", "Résumé-driven grid resilience")
	doc.Append("Introduction and Overview", "**Bold** claims with naïve café text (Exhibit 1B).")

	data, err := NewAssembler(NewPDFRenderer(fonts, "A4"), WithClock(func() time.Time { return fixed })).Assemble(doc)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF-")))
}

func TestPlain(t *testing.T) {
	assert.Equal(t, "Heading\nSome bold text.", plain("### Heading\nSome **bold** text."))
}
