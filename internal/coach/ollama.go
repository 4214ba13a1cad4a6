package coach

import (
	"context"
	"errors"
	"fmt"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"
)

const defaultOllamaBaseURL = "http://localhost:11434"

// OllamaClient asks a local Ollama model for coach lines through langchaingo.
type OllamaClient struct {
	model   llms.Model
	name    string
	baseURL string
}

// NewOllamaClient connects to an Ollama server. An empty baseURL uses the
// local default.
func NewOllamaClient(model, baseURL string) (*OllamaClient, error) {
	if model == "" {
		return nil, errors.New("ollama model is required")
	}
	if baseURL == "" {
		baseURL = defaultOllamaBaseURL
	}

	llm, err := ollama.New(ollama.WithModel(model), ollama.WithServerURL(baseURL))
	if err != nil {
		return nil, fmt.Errorf("creating ollama client: %w", err)
	}
	return &OllamaClient{model: llm, name: model, baseURL: baseURL}, nil
}

// Chat returns the model's reply with reasoning blocks removed.
func (c *OllamaClient) Chat(ctx context.Context, messages []Message) (string, error) {
	resp, err := c.model.GenerateContent(ctx, coachTurns(messages),
		llms.WithModel(c.name),
		llms.WithMaxTokens(maxReplyTokens),
		llms.WithTemperature(replyTemperature),
	)
	if err != nil {
		return "", fmt.Errorf("ollama chat: %w", err)
	}
	for _, choice := range resp.Choices {
		if reply := cleanReply(choice.Content); reply != "" {
			return reply, nil
		}
	}
	return "", errEmptyReply
}

// coachTurns maps coach messages onto langchaingo turns. Unknown roles
// are sent as the user.
func coachTurns(messages []Message) []llms.MessageContent {
	turns := make([]llms.MessageContent, 0, len(messages))
	for _, msg := range messages {
		role := llms.ChatMessageTypeHuman
		switch msg.Role {
		case RoleSystem:
			role = llms.ChatMessageTypeSystem
		case RoleAssistant:
			role = llms.ChatMessageTypeAI
		}
		turns = append(turns, llms.TextParts(role, msg.Content))
	}
	return turns
}
