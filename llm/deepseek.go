// DeepSeek provider implementation using the go-openai library.
//
// Information Hiding:
// - Uses the OpenAI-compatible API with a different base URL
package llm

import openai "github.com/sashabaranov/go-openai"

const deepseekBaseURL = "https://api.deepseek.com/v1"

// NewDeepSeekProvider creates a new DeepSeek provider. DeepSeek speaks the
// OpenAI wire protocol, so it reuses the OpenAI provider with a custom
// base URL.
func NewDeepSeekProvider(apiKey, model string, maxTokens uint32, temperature float32) *OpenAIProvider {
	config := openai.DefaultConfig(apiKey)
	config.BaseURL = deepseekBaseURL

	return &OpenAIProvider{
		client:      openai.NewClientWithConfig(config),
		name:        "deepseek",
		model:       model,
		maxTokens:   int(maxTokens),
		temperature: temperature,
	}
}
