package openai

import (
	"errors"
	"testing"
)

func TestIsAgentSupported(t *testing.T) {
	for _, agent := range []string{"gpt-4o", "gpt-4.1", "o3", "o4-mini"} {
		if !IsAgentSupported(agent) {
			t.Errorf("agent %q should be supported", agent)
		}
	}
	for _, agent := range []string{"gpt-3", "claude-sonnet-4", ""} {
		if IsAgentSupported(agent) {
			t.Errorf("agent %q should not be supported", agent)
		}
	}
}

func TestNewClientRequiresKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	_, err := NewClient("gpt-4o")
	if err == nil {
		t.Fatal("expected error without OPENAI_API_KEY")
	}
}

func TestNewClientDefaultModel(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-test")
	c, err := NewClient("")
	if err != nil {
		t.Fatal(err)
	}
	if c.model != DefaultAgent {
		t.Errorf("model = %q, want %q", c.model, DefaultAgent)
	}
}

func TestIsRetryableErrorPlain(t *testing.T) {
	if isRetryableError(errors.New("connection reset")) {
		t.Error("non-API errors are not retried")
	}
}
