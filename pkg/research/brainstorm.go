package research

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xrsl/endeavor/pkg/ai"
	"github.com/xrsl/endeavor/pkg/errs"
	"github.com/xrsl/endeavor/pkg/workflow"
)

// Analysis is what the completion service extracts from a CV.
type Analysis struct {
	FullName string   `json:"full_name"`
	Topics   []string `json:"topics"`
}

// Brainstormer turns CV text into an applicant name and candidate topics.
type Brainstormer struct {
	client ai.Client
	settings
}

// NewBrainstormer creates a Brainstormer backed by client.
func NewBrainstormer(client ai.Client, opts ...Option) *Brainstormer {
	return &Brainstormer{client: client, settings: newSettings(opts)}
}

// Brainstorm analyzes cv. Topics in exclude were already shown to the user
// and are asked to be avoided; any that come back anyway are dropped.
func (b *Brainstormer) Brainstorm(ctx context.Context, cv string, exclude []string) (Analysis, error) {
	if strings.TrimSpace(cv) == "" {
		return Analysis{}, errs.Config("brainstorm", fmt.Errorf("CV is empty"))
	}

	system, user, err := b.prompts.Render(workflow.Brainstorm, workflow.BrainstormData{
		CV:      cv,
		Count:   b.count,
		Exclude: exclude,
	})
	if err != nil {
		return Analysis{}, err
	}

	reply, err := complete(ctx, b.client, b.timeout, system, user)
	if err != nil {
		return Analysis{}, err
	}

	a, err := ParseAnalysis(reply)
	if err != nil {
		b.logger.Debug("unparseable brainstorm reply", "reply", reply)
		return Analysis{}, errs.Parse("brainstorm", err)
	}

	a.Topics = dropTopics(a.Topics, exclude)
	if len(a.Topics) == 0 {
		return Analysis{}, errs.Parse("brainstorm", fmt.Errorf("no new topics in reply"))
	}
	if len(a.Topics) > b.count {
		a.Topics = a.Topics[:b.count]
	}
	b.logger.Debug("brainstorm complete", "applicant", a.FullName, "topics", len(a.Topics))
	return a, nil
}

// ParseAnalysis decodes the {"full_name", "topics"} object from a reply.
func ParseAnalysis(reply string) (Analysis, error) {
	body, ok := extract(stripFences(reply), '{', '}')
	if !ok {
		return Analysis{}, fmt.Errorf("no JSON object in reply")
	}

	var a Analysis
	if err := json.Unmarshal([]byte(body), &a); err != nil {
		return Analysis{}, fmt.Errorf("decode analysis: %w", err)
	}
	a.FullName = strings.TrimSpace(a.FullName)
	if a.FullName == "" {
		return Analysis{}, fmt.Errorf("full_name missing")
	}

	topics := a.Topics[:0]
	for _, t := range a.Topics {
		if t = strings.TrimSpace(t); t != "" {
			topics = append(topics, t)
		}
	}
	if len(topics) == 0 {
		return Analysis{}, fmt.Errorf("topics missing")
	}
	a.Topics = topics
	return a, nil
}

func dropTopics(topics, exclude []string) []string {
	if len(exclude) == 0 {
		return topics
	}
	skip := make(map[string]bool, len(exclude))
	for _, t := range exclude {
		skip[strings.ToLower(strings.TrimSpace(t))] = true
	}
	out := topics[:0]
	for _, t := range topics {
		if !skip[strings.ToLower(t)] {
			out = append(out, t)
		}
	}
	return out
}
