// Package llm provides shared data models for LLM providers.
package llm

// ChatMessage represents a chat message with role and content.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// UserMessage creates a user message.
func UserMessage(content string) ChatMessage {
	return ChatMessage{Role: "user", Content: content}
}

// AssistantMessage creates an assistant message.
func AssistantMessage(content string) ChatMessage {
	return ChatMessage{Role: "assistant", Content: content}
}

// Default model identifiers per provider.
const (
	// ModelAnthropicDefault is Claude Haiku 4.5: fast and efficient.
	ModelAnthropicDefault = "claude-haiku-4-5-20251001"
	// ModelOpenAIDefault is GPT-4o.
	ModelOpenAIDefault = "gpt-4o"
	// ModelDeepSeekDefault is the DeepSeek general chat model.
	ModelDeepSeekDefault = "deepseek-chat"
	// ModelGeminiDefault is Gemini 2.5 Flash.
	ModelGeminiDefault = "gemini-2.5-flash"
)
