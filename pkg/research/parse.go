package research

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
)

// stripFences removes a surrounding ``` or ```json fence.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl != -1 {
		s = s[nl+1:]
	} else {
		s = strings.TrimPrefix(s, "json")
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// extract returns the outermost open..close span in s. Search-grounded
// models sometimes wrap the JSON in a sentence.
func extract(s string, open, close byte) (string, bool) {
	start := strings.IndexByte(s, open)
	end := strings.LastIndexByte(s, close)
	if start == -1 || end < start {
		return "", false
	}
	return s[start : end+1], true
}

// ParseURLs decodes a JSON list of URL strings from a completion reply.
func ParseURLs(reply string) ([]string, error) {
	body, ok := extract(stripFences(reply), '[', ']')
	if !ok {
		return nil, fmt.Errorf("no JSON list in reply")
	}

	var urls []string
	if err := json.Unmarshal([]byte(body), &urls); err == nil {
		return urls, nil
	}

	// Some models return [{"url": "..."}] despite the instructions.
	var objs []struct {
		URL string `json:"url"`
	}
	if err := json.Unmarshal([]byte(body), &objs); err != nil {
		return nil, fmt.Errorf("decode URL list: %w", err)
	}
	urls = make([]string, 0, len(objs))
	for _, o := range objs {
		urls = append(urls, o.URL)
	}
	return urls, nil
}

// Clean trims candidates, drops anything that is not an absolute http(s)
// URL, removes URLs in exclude and keeps the first occurrence of
// duplicates. Order is preserved.
func Clean(candidates, exclude []string) []string {
	seen := make(map[string]bool, len(candidates)+len(exclude))
	for _, u := range exclude {
		seen[strings.TrimSpace(u)] = true
	}

	out := make([]string, 0, len(candidates))
	for _, raw := range candidates {
		u := strings.TrimSpace(raw)
		if u == "" || seen[u] || !isWebURL(u) {
			continue
		}
		seen[u] = true
		out = append(out, u)
	}
	return out
}

func isWebURL(s string) bool {
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
