// Package cv reads an applicant's CV into plain text for the completion
// service. Plain text, markdown, HTML and YAML files are accepted, as are
// http(s) URLs of an online CV page.
package cv

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"gopkg.in/yaml.v3"

	"github.com/xrsl/endeavor/pkg/errs"
)

// MaxBytes bounds how much CV text is read.
const MaxBytes = 1 << 20

// fetchTimeout bounds one CV download.
const fetchTimeout = 30 * time.Second

// Format is a CV source format.
type Format string

const (
	Text Format = "text"
	HTML Format = "html"
	YAML Format = "yaml"
)

// FormatOf guesses the format from a file name.
func FormatOf(name string) Format {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".html", ".htm":
		return HTML
	case ".yaml", ".yml":
		return YAML
	default:
		return Text
	}
}

// Load reads the CV at source, a file path or an http(s) URL.
func Load(ctx context.Context, source string) (string, error) {
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		return fetch(ctx, source)
	}

	f, err := os.Open(source)
	if err != nil {
		return "", errs.Filesystem("cv.load", err)
	}
	defer func() { _ = f.Close() }()
	return Read(f, FormatOf(source))
}

// Read converts CV content of the given format to plain text.
func Read(r io.Reader, format Format) (string, error) {
	b, err := io.ReadAll(io.LimitReader(r, MaxBytes))
	if err != nil {
		return "", errs.Filesystem("cv.read", err)
	}

	var text string
	switch format {
	case HTML:
		text, err = cleanHTML(string(b))
	case YAML:
		text, err = flattenYAML(b)
	default:
		text = string(b)
	}
	if err != nil {
		return "", err
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return "", errs.Config("cv.read", fmt.Errorf("CV is empty"))
	}
	return text, nil
}

func fetch(ctx context.Context, url string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, fetchTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return "", errs.Config("cv.fetch", fmt.Errorf("invalid URL: %w", err))
	}
	req.Header.Set("User-Agent", "endeavor-cv/1.0")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", errs.Network("cv.fetch", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", errs.Network("cv.fetch", fmt.Errorf("HTTP %d", resp.StatusCode))
	}

	format := HTML
	if ct := resp.Header.Get("Content-Type"); strings.HasPrefix(ct, "text/plain") {
		format = Text
	}
	return Read(resp.Body, format)
}

func cleanHTML(html string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", errs.Parse("cv.html", fmt.Errorf("failed to parse HTML: %w", err))
	}

	// Remove unwanted elements
	doc.Find("script, style, nav, footer, noscript").Remove()
	// Block elements end lines so adjacent entries do not run together.
	doc.Find("p, li, br, h1, h2, h3, h4, h5, h6, tr, div").Each(func(_ int, s *goquery.Selection) {
		s.AppendHtml("\n")
	})

	lines := strings.Split(doc.Text(), "\n")
	var cleaned []string
	for _, line := range lines {
		line = strings.Join(strings.Fields(line), " ")
		if line != "" {
			cleaned = append(cleaned, line)
		}
	}
	return strings.Join(cleaned, "\n"), nil
}

// flattenYAML renders a structured CV (as used by YAML CV generators) as
// indented "key: value" lines. Map keys are sorted for stable output.
func flattenYAML(b []byte) (string, error) {
	var root any
	if err := yaml.Unmarshal(b, &root); err != nil {
		return "", errs.Parse("cv.yaml", err)
	}
	var sb strings.Builder
	writeNode(&sb, root, 0)
	return sb.String(), nil
}

func writeNode(sb *strings.Builder, node any, depth int) {
	indent := strings.Repeat("  ", depth)
	switch n := node.(type) {
	case map[string]any:
		keys := make([]string, 0, len(n))
		for k := range n {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			switch v := n[k].(type) {
			case map[string]any, []any:
				fmt.Fprintf(sb, "%s%s:\n", indent, k)
				writeNode(sb, v, depth+1)
			default:
				fmt.Fprintf(sb, "%s%s: %v\n", indent, k, v)
			}
		}
	case []any:
		for _, item := range n {
			switch v := item.(type) {
			case map[string]any, []any:
				fmt.Fprintf(sb, "%s-\n", indent)
				writeNode(sb, v, depth+1)
			default:
				fmt.Fprintf(sb, "%s- %v\n", indent, v)
			}
		}
	case nil:
	default:
		fmt.Fprintf(sb, "%s%v\n", indent, n)
	}
}
