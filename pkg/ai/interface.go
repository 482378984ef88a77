package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/xrsl/endeavor/pkg/claude"
	"github.com/xrsl/endeavor/pkg/gemini"
	"github.com/xrsl/endeavor/pkg/openai"
	"github.com/xrsl/endeavor/pkg/search"
)

// Client is the text-completion capability every stage depends on.
type Client interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
	Close()
}

// CachingClient supports a separate, cacheable system prompt (optional interface)
type CachingClient interface {
	Client
	GenerateContentWithSystem(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// Complete sends system and user prompts, using the system slot when the
// client has one and concatenating them otherwise.
func Complete(ctx context.Context, c Client, systemPrompt, userPrompt string) (string, error) {
	if cc, ok := c.(CachingClient); ok {
		return cc.GenerateContentWithSystem(ctx, systemPrompt, userPrompt)
	}
	if systemPrompt == "" {
		return c.GenerateContent(ctx, userPrompt)
	}
	return c.GenerateContent(ctx, systemPrompt+"\n\n"+userPrompt)
}

// DefaultAgent returns the best available agent
// Prefers claude-code, then gemini-cli, then API agents
func DefaultAgent() string {
	if IsClaudeCLIAvailable() {
		return "claude-code"
	}
	if IsGeminiCLIAvailable() {
		return "gemini-cli"
	}
	return gemini.DefaultAgent
}

// DefaultResearchAgent is the search-grounded agent used to find sources.
func DefaultResearchAgent() string {
	return search.DefaultAgent
}

// Option configures NewClient.
type Option func(*options)

type options struct {
	json bool
}

// JSON requests structured JSON output from providers that support a
// response MIME type. Others rely on the prompt alone.
func JSON() Option {
	return func(o *options) { o.json = true }
}

// NewClient creates an AI client based on agent prefix
func NewClient(agent string, opts ...Option) (Client, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	switch {
	case agent == "claude-code" || strings.HasPrefix(agent, "claude-code:"):
		if !IsClaudeCLIAvailable() {
			return nil, fmt.Errorf("claude CLI not found in PATH")
		}
		return NewClaudeCLI(subAgent(agent)), nil
	case agent == "gemini-cli" || strings.HasPrefix(agent, "gemini-cli:"):
		if !IsGeminiCLIAvailable() {
			return nil, fmt.Errorf("gemini CLI not found in PATH")
		}
		return NewGeminiCLI(subAgent(agent)), nil
	case strings.HasPrefix(agent, "search:"):
		// "search:gemini-2.5-flash" -> grounded Gemini model
		return search.NewClient(subAgent(agent))
	case strings.HasPrefix(agent, "gemini-"):
		if o.json {
			return gemini.NewClient(agent, gemini.WithJSON())
		}
		return gemini.NewClient(agent)
	case strings.HasPrefix(agent, "claude-"):
		return claude.NewClient(agent)
	case strings.HasPrefix(agent, "gpt-") || strings.HasPrefix(agent, "o3") || strings.HasPrefix(agent, "o4"):
		return openai.NewClient(agent)
	default:
		return nil, fmt.Errorf("unknown agent: %s (use claude-code, gemini-cli, search:gemini-*, gemini-*, claude-*, or gpt-*)", agent)
	}
}

func subAgent(agent string) string {
	if idx := strings.Index(agent, ":"); idx != -1 {
		return agent[idx+1:]
	}
	return ""
}

// IsAgentSupported checks if an agent is supported by any provider
func IsAgentSupported(agent string) bool {
	switch {
	case agent == "claude-code" || strings.HasPrefix(agent, "claude-code:"):
		return IsClaudeCLIAvailable()
	case agent == "gemini-cli" || strings.HasPrefix(agent, "gemini-cli:"):
		return IsGeminiCLIAvailable()
	case strings.HasPrefix(agent, "search:"):
		return search.IsAgentSupported(subAgent(agent))
	default:
		return IsModelSupported(agent)
	}
}

// IsAgentCLI returns true if the agent is a CLI agent (claude-code, gemini-cli)
func IsAgentCLI(agent string) bool {
	return agent == "claude-code" || strings.HasPrefix(agent, "claude-code:") ||
		agent == "gemini-cli" || strings.HasPrefix(agent, "gemini-cli:")
}

// IsModelSupported checks if an API model is supported
func IsModelSupported(model string) bool {
	switch {
	case strings.HasPrefix(model, "gemini-"):
		return gemini.IsAgentSupported(model)
	case strings.HasPrefix(model, "claude-"):
		return claude.IsAgentSupported(model)
	default:
		return openai.IsAgentSupported(model)
	}
}

// SupportedAgents returns all supported agents (CLI + API)
func SupportedAgents() []string {
	agents := []string{}
	if IsClaudeCLIAvailable() {
		agents = append(agents, "claude-code")
	}
	if IsGeminiCLIAvailable() {
		agents = append(agents, "gemini-cli")
	}
	for _, m := range search.SupportedAgents {
		agents = append(agents, "search:"+m)
	}
	agents = append(agents, gemini.SupportedAgents...)
	agents = append(agents, claude.SupportedAgents...)
	agents = append(agents, openai.SupportedAgents...)
	return agents
}

// SupportedModels returns supported API models (full names)
func SupportedModels() []string {
	models := []string{}
	models = append(models, claude.SupportedAgents...)
	models = append(models, gemini.SupportedAgents...)
	models = append(models, openai.SupportedAgents...)
	return models
}

// APIKeyEnv names the environment variable an API agent needs, or "" for
// CLI agents.
func APIKeyEnv(agent string) string {
	switch {
	case IsAgentCLI(agent):
		return ""
	case strings.HasPrefix(agent, "search:"), strings.HasPrefix(agent, "gemini-"):
		return "GEMINI_API_KEY"
	case strings.HasPrefix(agent, "claude-"):
		return "ANTHROPIC_API_KEY"
	default:
		return "OPENAI_API_KEY"
	}
}
