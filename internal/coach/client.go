// Package coach turns planner events into short encouraging messages and
// hands them to one or more outboxes.
package coach

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Chat roles.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Coach lines are one or two sentences; the budget leaves room for emoji.
const (
	maxReplyTokens   = 120
	replyTemperature = 0.8
)

var errEmptyReply = errors.New("model returned an empty reply")

// Message represents a chat message.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Client defines the interface for LLM providers.
type Client interface {
	// Chat sends messages to the LLM and returns the response.
	Chat(ctx context.Context, messages []Message) (string, error)
}

const (
	ProviderNone     = "none"
	ProviderOpenAI   = "openai"
	ProviderOllama   = "ollama"
	ProviderLMStudio = "lmstudio"
)

// NewClient creates an LLM client based on provider configuration.
// ProviderNone returns a nil client, which makes the coach use canned lines.
func NewClient(provider, model, baseURL, apiKey string) (Client, error) {
	switch strings.ToLower(strings.TrimSpace(provider)) {
	case "", ProviderNone:
		return nil, nil
	case ProviderOpenAI:
		return NewOpenAIClient(model, baseURL, apiKey)
	case ProviderOllama:
		return NewOllamaClient(model, baseURL)
	case ProviderLMStudio, "lm-studio", "llmstudio":
		return NewLMStudioClient(model, baseURL, apiKey)
	default:
		return nil, fmt.Errorf("unsupported coach provider: %s", provider)
	}
}

// cleanReply drops <think> blocks emitted by reasoning models, surrounding
// whitespace and wrapping quotes.
func cleanReply(s string) string {
	for {
		open := strings.Index(s, "<think>")
		if open < 0 {
			break
		}
		end := strings.Index(s[open:], "</think>")
		if end < 0 {
			s = s[:open]
			break
		}
		s = s[:open] + s[open+end+len("</think>"):]
	}
	s = strings.TrimSpace(s)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = strings.TrimSpace(s[1 : len(s)-1])
	}
	return s
}
