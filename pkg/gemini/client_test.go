package gemini

import (
	"errors"
	"testing"

	"github.com/google/generative-ai-go/genai"
)

func TestIsAgentSupported(t *testing.T) {
	supported := []string{
		"gemini-3-flash-preview",
		"gemini-3-pro-preview",
		"gemini-2.5-flash",
		"gemini-2.5-pro",
	}

	for _, agent := range supported {
		if !IsAgentSupported(agent) {
			t.Errorf("agent %q should be supported", agent)
		}
	}

	unsupported := []string{
		"gemini-1.5-pro",
		"gemini-1.5-flash",
		"gpt-4",
		"invalid",
	}

	for _, agent := range unsupported {
		if IsAgentSupported(agent) {
			t.Errorf("agent %q should not be supported", agent)
		}
	}
}

func TestNewClientDefaultAgent(t *testing.T) {
	if DefaultAgent != "gemini-2.5-flash" {
		t.Errorf("DefaultAgent = %q, want %q", DefaultAgent, "gemini-2.5-flash")
	}
}

func TestNewClientRequiresKey(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	if _, err := NewClient(""); err == nil {
		t.Error("expected error without GEMINI_API_KEY")
	}
}

func TestResponseTextJoinsParts(t *testing.T) {
	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []genai.Part{genai.Text("first "), genai.Text("second")}},
		}},
	}
	got, err := responseText(resp)
	if err != nil {
		t.Fatal(err)
	}
	if got != "first second" {
		t.Errorf("responseText() = %q", got)
	}

	if _, err := responseText(&genai.GenerateContentResponse{}); err == nil {
		t.Error("expected error for empty response")
	}
	if _, err := responseText(nil); err == nil {
		t.Error("expected error for nil response")
	}
}

func TestIsRetryableError(t *testing.T) {
	if !isRetryableError(errors.New("googleapi: Error 429: RESOURCE_EXHAUSTED")) {
		t.Error("429 should be retryable")
	}
	if isRetryableError(errors.New("googleapi: Error 400: API key not valid")) {
		t.Error("400 should not be retryable")
	}
}
