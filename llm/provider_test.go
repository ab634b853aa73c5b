package llm

import (
	"strings"
	"testing"
)

func TestCanonicalProvider(t *testing.T) {
	cases := map[string]string{
		"anthropic": "anthropic",
		"claude":    "anthropic",
		"Claude":    "anthropic",
		"gpt":       "openai",
		"google":    "gemini",
		"deepseek":  "deepseek",
		"OPENAI":    "openai",
	}
	for in, want := range cases {
		if got := CanonicalProvider(in); got != want {
			t.Errorf("CanonicalProvider(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestNewProviderDefaultsToAnthropic(t *testing.T) {
	p, err := NewProvider(Options{APIKey: "test-key"})
	if err != nil {
		t.Fatalf("NewProvider failed: %v", err)
	}
	if p.Name() != "anthropic" {
		t.Errorf("expected anthropic, got %s", p.Name())
	}
	if p.Model() != ModelAnthropicDefault {
		t.Errorf("expected default model %s, got %s", ModelAnthropicDefault, p.Model())
	}
}

func TestNewProviderUnknown(t *testing.T) {
	_, err := NewProvider(Options{Provider: "mystery", APIKey: "test-key"})
	if err == nil {
		t.Fatal("expected error for unknown provider")
	}
	if !strings.Contains(err.Error(), "unknown provider") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestNewProviderMissingAPIKey(t *testing.T) {
	_, err := NewProvider(Options{Provider: "openai"})
	if err == nil {
		t.Fatal("expected error for missing API key")
	}
}

func TestNewProviderModelOverride(t *testing.T) {
	p, err := NewProvider(Options{Provider: "deepseek", APIKey: "test-key", Model: "deepseek-reasoner"})
	if err != nil {
		t.Fatalf("NewProvider failed: %v", err)
	}
	if p.Name() != "deepseek" {
		t.Errorf("expected deepseek, got %s", p.Name())
	}
	if p.Model() != "deepseek-reasoner" {
		t.Errorf("expected model override, got %s", p.Model())
	}
}
