package document

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"

	"github.com/xrsl/endeavor/pkg/errs"
)

const fontFamily = "body"

// PDFRenderer lays a Document out as paginated A4 (or Letter, Legal) text
// with embedded TrueType fonts.
type PDFRenderer struct {
	Fonts Fonts
	Paper string // fpdf size name; empty means A4
}

// NewPDFRenderer creates a renderer using fonts.
func NewPDFRenderer(fonts Fonts, paper string) *PDFRenderer {
	return &PDFRenderer{Fonts: fonts, Paper: paper}
}

// Render writes doc as PDF to w. Fonts are loaded first so a missing font
// fails before any output is produced.
func (r *PDFRenderer) Render(doc *Document, created time.Time, w io.Writer) error {
	fd, err := r.Fonts.load()
	if err != nil {
		return err
	}

	paper := r.Paper
	if paper == "" {
		paper = "A4"
	}
	pdf := fpdf.New("P", "mm", paper, "")
	pdf.SetMargins(20, 20, 20)
	pdf.SetAutoPageBreak(true, 20)
	pdf.SetTitle(doc.Title(), true)
	pdf.SetAuthor(doc.Applicant, true)
	pdf.SetSubject(doc.Topic, true)
	pdf.SetCreator("endeavor", true)
	pdf.SetCreationDate(created)

	pdf.AddUTF8FontFromBytes(fontFamily, "", fd.regular)
	headingStyle := ""
	if fd.bold != nil {
		pdf.AddUTF8FontFromBytes(fontFamily, "B", fd.bold)
		headingStyle = "B"
	}
	topicStyle := ""
	if fd.italic != nil {
		pdf.AddUTF8FontFromBytes(fontFamily, "I", fd.italic)
		topicStyle = "I"
	}
	if err := pdf.Error(); err != nil {
		return errs.ResourceMissing("document.fonts", fmt.Errorf("load font: %w", err))
	}

	pdf.SetFooterFunc(func() {
		pdf.SetY(-15)
		pdf.SetFont(fontFamily, "", 9)
		pdf.CellFormat(0, 10, fmt.Sprintf("%d", pdf.PageNo()), "", 0, "C", false, 0, "")
	})

	pdf.AddPage()

	// Title block
	pdf.SetFont(fontFamily, headingStyle, 16)
	pdf.MultiCell(0, 10, doc.Title(), "", "C", false)
	pdf.Ln(5)
	pdf.SetFont(fontFamily, topicStyle, 12)
	pdf.MultiCell(0, 10, "Topic: "+doc.Topic, "", "C", false)
	pdf.Ln(10)

	headingSize := 12.0
	if headingStyle == "" {
		headingSize = 13
	}
	for _, s := range doc.sections {
		if s.Title != "" {
			pdf.SetFont(fontFamily, headingStyle, headingSize)
			pdf.MultiCell(0, 7, s.Heading(), "", "L", false)
			pdf.Ln(3)
		}
		pdf.SetFont(fontFamily, "", 11)
		pdf.MultiCell(0, 5, plain(s.Body), "", "J", false)
		pdf.Ln(6)
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("render pdf: %w", err)
	}
	return nil
}

// plain strips the markdown emphasis and heading markers models add to
// prose; the PDF has no markup.
func plain(body string) string {
	lines := strings.Split(strings.TrimSpace(body), "\n")
	for i, line := range lines {
		trimmed := strings.TrimLeft(line, " ")
		if strings.HasPrefix(trimmed, "#") {
			line = strings.TrimSpace(strings.TrimLeft(trimmed, "#"))
		}
		lines[i] = strings.ReplaceAll(strings.ReplaceAll(line, "**", ""), "__", "")
	}
	return strings.Join(lines, "\n")
}
