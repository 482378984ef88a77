// Package search is a completion client whose answers are grounded with
// live Google Search results. The Source Researcher uses it so that proposed
// URLs come from a real search rather than model memory.
package search

import (
	"context"
	"fmt"
	"os"
	"slices"
	"strings"

	"google.golang.org/genai"

	"github.com/xrsl/endeavor/pkg/retry"
)

// DefaultAgent is the agent string selecting this client.
const DefaultAgent = "search:" + DefaultModel

// DefaultModel is the grounded model used when none is named.
const DefaultModel = "gemini-2.5-flash"

// SupportedAgents lists models that accept the Google Search tool.
var SupportedAgents = []string{
	"gemini-2.5-flash",
	"gemini-2.5-pro",
	"gemini-2.0-flash",
}

func IsAgentSupported(model string) bool {
	return slices.Contains(SupportedAgents, model)
}

// Source is one web result the answer was grounded on.
type Source struct {
	URI   string
	Title string
}

// Answer is grounded text plus the sources that backed it.
type Answer struct {
	Text    string
	Sources []Source
}

type Client struct {
	client  *genai.Client
	model   string
	limiter *retry.RateLimiter
}

func NewClient(model string) (*Client, error) {
	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY environment variable not set")
	}
	if model == "" {
		model = DefaultModel
	}

	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}

	return &Client{
		client:  client,
		model:   model,
		limiter: retry.NewRateLimiter(1.0),
	}, nil
}

func (c *Client) GenerateContent(ctx context.Context, prompt string) (string, error) {
	return c.GenerateContentWithSystem(ctx, "", prompt)
}

func (c *Client) GenerateContentWithSystem(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	ans, err := c.Ground(ctx, systemPrompt, userPrompt)
	if err != nil {
		return "", err
	}
	return ans.Text, nil
}

// Ground runs the prompt with the Google Search tool enabled.
func (c *Client) Ground(ctx context.Context, systemPrompt, userPrompt string) (Answer, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return Answer{}, fmt.Errorf("rate limiter: %w", err)
	}

	cfg := &genai.GenerateContentConfig{
		Tools: []*genai.Tool{{GoogleSearch: &genai.GoogleSearch{}}},
	}
	if systemPrompt != "" {
		cfg.SystemInstruction = genai.NewContentFromText(systemPrompt, genai.RoleUser)
	}

	return retry.Do(ctx, retry.DefaultConfig(), func() (Answer, error) {
		resp, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(userPrompt), cfg)
		if err != nil {
			if isRetryableError(err) {
				return Answer{}, retry.Retryable(fmt.Errorf("grounded search error: %w", err))
			}
			return Answer{}, fmt.Errorf("grounded search error: %w", err)
		}
		return toAnswer(resp)
	})
}

func toAnswer(resp *genai.GenerateContentResponse) (Answer, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return Answer{}, fmt.Errorf("no content generated")
	}
	text := resp.Text()
	if strings.TrimSpace(text) == "" {
		return Answer{}, fmt.Errorf("empty grounded response")
	}

	ans := Answer{Text: text}
	if gm := resp.Candidates[0].GroundingMetadata; gm != nil {
		for _, chunk := range gm.GroundingChunks {
			if chunk == nil || chunk.Web == nil || chunk.Web.URI == "" {
				continue
			}
			ans.Sources = append(ans.Sources, Source{URI: chunk.Web.URI, Title: chunk.Web.Title})
		}
	}
	return ans, nil
}

func isRetryableError(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "429") ||
		strings.Contains(msg, "resource_exhausted") ||
		strings.Contains(msg, "503") ||
		strings.Contains(msg, "unavailable")
}

func (c *Client) Close() {}
