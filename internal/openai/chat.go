package openai

import (
	"context"
	"errors"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

// DefaultCompletionModel is the chat model used when none is configured.
const DefaultCompletionModel = "gpt-4o-mini"

// Message roles accepted by the completion API.
const (
	RoleSystem    = openai.ChatMessageRoleSystem
	RoleUser      = openai.ChatMessageRoleUser
	RoleAssistant = openai.ChatMessageRoleAssistant
)

// Message is a single entry of a completion request's message sequence.
type Message struct {
	Role    string
	Content string
}

// CompletionOptions controls sampling for a completion request.
type CompletionOptions struct {
	Temperature float32
	MaxTokens   int
	// JSONMode constrains the response to a valid JSON object.
	JSONMode bool
}

// CompletionAPI defines the interface for chat completion
type CompletionAPI interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// ChatClient wraps the OpenAI chat completions API.
type ChatClient struct {
	api   CompletionAPI
	model string
}

// NewChatClient creates a new completion client for the given model.
func NewChatClient(apiKey, model string) *ChatClient {
	return NewChatClientWithBaseURL(apiKey, model, "")
}

// NewChatClientWithBaseURL creates a completion client pointed at a
// non-default API endpoint.
func NewChatClientWithBaseURL(apiKey, model, baseURL string) *ChatClient {
	if model == "" {
		model = DefaultCompletionModel
	}
	return &ChatClient{
		api:   newAPIClient(apiKey, baseURL),
		model: model,
	}
}

// Complete sends the message sequence to the completion API and returns
// the generated text. There is no retry here: callers degrade on failure.
func (c *ChatClient) Complete(ctx context.Context, messages []Message, opts CompletionOptions) (string, error) {
	if len(messages) == 0 {
		return "", errors.New("messages cannot be empty")
	}

	req := openai.ChatCompletionRequest{
		Model:       c.model,
		Messages:    toChatMessages(messages),
		Temperature: opts.Temperature,
		MaxTokens:   opts.MaxTokens,
	}
	if opts.JSONMode {
		req.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}

	resp, err := c.api.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("failed to create chat completion: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", errors.New("no completion choices returned")
	}

	return resp.Choices[0].Message.Content, nil
}

func toChatMessages(messages []Message) []openai.ChatCompletionMessage {
	out := make([]openai.ChatCompletionMessage, len(messages))
	for i, m := range messages {
		out[i] = openai.ChatCompletionMessage{
			Role:    m.Role,
			Content: m.Content,
		}
	}
	return out
}
