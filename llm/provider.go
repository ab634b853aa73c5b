// Package llm: LLM provider abstraction.
//
// Each provider implementation hides:
// - API client initialization and authentication
// - Request/response format conversion
// - Provider-specific error handling
package llm

import (
	"context"
	"fmt"
	"strings"
)

// Provider defines the abstract interface for LLM providers.
// Implementations hide provider-specific details while exposing a
// consistent chat-completion interface: an ordered list of role/content
// messages in, a single reply string out.
type Provider interface {
	// Name returns the provider name (for logging/debugging).
	Name() string

	// Model returns the current model being used.
	Model() string

	// Chat sends a chat completion request and returns the reply text.
	Chat(ctx context.Context, messages []ChatMessage) (string, error)
}

// Options configures a provider built by NewProvider.
type Options struct {
	// Provider is the provider name; aliases claude, gpt and google are
	// accepted. Empty defaults to anthropic.
	Provider string
	// APIKey authenticates against the provider's API. Required.
	APIKey string
	// Model overrides the provider's default model when non-empty.
	Model string
	// MaxTokens caps the reply length. Zero defaults to 1024.
	MaxTokens uint32
	// Temperature sets sampling temperature. Zero means 0.
	Temperature float32
}

// Provider aliases map to canonical names.
var providerAliases = map[string]string{
	"claude": "anthropic",
	"gpt":    "openai",
	"google": "gemini",
}

// CanonicalProvider normalizes a provider name, resolving aliases.
func CanonicalProvider(name string) string {
	name = strings.ToLower(name)
	if canonical, ok := providerAliases[name]; ok {
		return canonical
	}
	return name
}

// NewProvider builds a provider from options.
// Returns an error for an unknown provider name or a missing API key.
func NewProvider(opts Options) (Provider, error) {
	name := CanonicalProvider(opts.Provider)
	if name == "" {
		name = "anthropic"
	}
	if opts.APIKey == "" {
		return nil, fmt.Errorf("%s: API key not set", name)
	}

	maxTokens := opts.MaxTokens
	if maxTokens == 0 {
		maxTokens = 1024
	}

	switch name {
	case "anthropic":
		model := opts.Model
		if model == "" {
			model = ModelAnthropicDefault
		}
		return NewAnthropicProvider(opts.APIKey, model, maxTokens, opts.Temperature), nil
	case "openai":
		model := opts.Model
		if model == "" {
			model = ModelOpenAIDefault
		}
		return NewOpenAIProvider(opts.APIKey, model, maxTokens, opts.Temperature), nil
	case "deepseek":
		model := opts.Model
		if model == "" {
			model = ModelDeepSeekDefault
		}
		return NewDeepSeekProvider(opts.APIKey, model, maxTokens, opts.Temperature), nil
	case "gemini":
		model := opts.Model
		if model == "" {
			model = ModelGeminiDefault
		}
		return NewGeminiProvider(opts.APIKey, model, maxTokens, opts.Temperature), nil
	default:
		return nil, fmt.Errorf("unknown provider: %q", opts.Provider)
	}
}
