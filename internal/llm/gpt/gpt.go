package gpt

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/povarna/generative-ai-agents/doc-qa/internal/llm"
)

// InvokeModel sends a single attempt. The SDK's own retries are disabled.
func (c *Client) InvokeModel(ctx context.Context, request llm.LLMRequest) (*llm.LLMResponse, error) {
	return c.complete(ctx, request, option.WithMaxRetries(0))
}

// InvokeModelWithRetry lets the SDK retry rate limits and 5xx responses with backoff.
func (c *Client) InvokeModelWithRetry(ctx context.Context, request llm.LLMRequest) (*llm.LLMResponse, error) {
	return c.complete(ctx, request, option.WithMaxRetries(c.MaxRetries))
}

func (c *Client) complete(ctx context.Context, request llm.LLMRequest, opts ...option.RequestOption) (*llm.LLMResponse, error) {
	message := openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(request.Prompt),
		},
		Temperature: openai.Float(request.Temperature),
		Model:       openai.ChatModel(c.ModelID),
	}
	if request.MaxTokens > 0 {
		message.MaxCompletionTokens = openai.Int(int64(request.MaxTokens))
	}

	output, err := c.Client.Chat.Completions.New(ctx, message, opts...)
	if err != nil {
		return nil, fmt.Errorf("unable to invoke gpt model: %w", err)
	}

	if len(output.Choices) == 0 {
		return nil, fmt.Errorf("no choices in response")
	}

	response := output.Choices[0]
	return &llm.LLMResponse{
		Content:    response.Message.Content,
		StopReason: string(response.FinishReason),
	}, nil
}
