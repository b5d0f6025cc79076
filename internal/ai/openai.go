package ai

import (
	"context"
	"fmt"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

// Completer is the chat-completion interface used by the research stages.
type Completer interface {
	// Complete sends a system+user message pair and returns the generated
	// text and total token usage.
	Complete(ctx context.Context, system, user string) (string, int, error)
}

// OpenAIClient implements Completer using the OpenAI Chat Completions API.
type OpenAIClient struct {
	client      *openai.Client
	model       string
	temperature float32
}

type Config struct {
	APIKey      string
	Model       string
	BaseURL     string // optional
	Temperature float32
}

func NewOpenAI(cfg Config) *OpenAIClient {
	var c *openai.Client
	if cfg.BaseURL != "" {
		cc := openai.DefaultConfig(cfg.APIKey)
		cc.BaseURL = cfg.BaseURL
		c = openai.NewClientWithConfig(cc)
	} else {
		c = openai.NewClient(cfg.APIKey)
	}
	model := cfg.Model
	if model == "" {
		panic("OpenAI model must be specified")
	}
	temp := cfg.Temperature
	if temp == 0 {
		temp = 0.4
	}
	return &OpenAIClient{client: c, model: model, temperature: temp}
}

func (o *OpenAIClient) Complete(ctx context.Context, system, user string) (string, int, error) {
	// Default timeout guard, if caller didn't set one
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, 120*time.Second)
		defer cancel()
	}
	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: o.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
		Temperature: o.temperature,
	})
	if err != nil {
		return "", 0, err
	}
	if len(resp.Choices) == 0 {
		return "", resp.Usage.TotalTokens, fmt.Errorf("ai: completion returned no choices")
	}
	return resp.Choices[0].Message.Content, resp.Usage.TotalTokens, nil
}
