package compose

import (
	"regexp"
	"strings"

	"github.com/xrsl/endeavor/pkg/exhibit"
)

// A parenthesis is a citation when it holds at least one exhibit reference,
// e.g. (Exhibit 1B), (exhibits 1b, 1c), (Exhibit 1B & 1C),
// (Exhibit 1B; Exhibit 1C), (see Exhibit 1B, p. 4).
var (
	parenPattern     = regexp.MustCompile(`( ?)\(([^()]*)\)`)
	referencePattern = regexp.MustCompile(`(?i)\bexhibits?\s+(1[a-z]\b(?:\s*(?:,|&|;|and)?\s*1[a-z]\b)*)`)
	labelInCitation  = regexp.MustCompile(`(?i)\b1[a-z]\b`)
)

// NormalizeCitations rewrites every parenthesized exhibit reference in body
// to the exact "(Exhibit 1B)" form, one parenthesis per label. Other text
// inside a citation parenthesis is discarded. References to labels not in
// known are removed and returned in order of appearance.
func NormalizeCitations(body string, known []string) (string, []string) {
	valid := make(map[string]bool, len(known))
	for _, l := range known {
		valid[l] = true
	}

	var dropped []string
	out := parenPattern.ReplaceAllStringFunc(body, func(match string) string {
		m := parenPattern.FindStringSubmatch(match)
		lead, inner := m[1], m[2]

		refs := referencePattern.FindAllStringSubmatch(inner, -1)
		if len(refs) == 0 {
			return match
		}

		var cites []string
		seen := make(map[string]bool)
		for _, ref := range refs {
			for _, raw := range labelInCitation.FindAllString(ref[1], -1) {
				label := strings.ToUpper(raw)
				if !valid[label] {
					dropped = append(dropped, label)
					continue
				}
				if seen[label] {
					continue
				}
				seen[label] = true
				cites = append(cites, exhibit.Cite(label))
			}
		}
		if len(cites) == 0 {
			return ""
		}
		return lead + strings.Join(cites, " ")
	})
	return out, dropped
}
