package generator

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/povarna/generative-ai-agents/doc-qa/internal/llm"
)

var ErrGenerationService = errors.New("generation service error")

type Config struct {
	MaxTokens   int
	Temperature float64
	Retry       bool
}

// Generator turns a prompt into answer text through an LLM client.
type Generator struct {
	client llm.LLMClient
	cfg    Config
}

func New(client llm.LLMClient, cfg Config) *Generator {
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 1024
	}

	return &Generator{
		client: client,
		cfg:    cfg,
	}
}

// Generate returns the trimmed completion for prompt.
// Every failure, including an empty completion, wraps ErrGenerationService.
func (g *Generator) Generate(ctx context.Context, prompt string) (string, error) {
	request := llm.LLMRequest{
		Prompt:      prompt,
		MaxTokens:   g.cfg.MaxTokens,
		Temperature: g.cfg.Temperature,
	}

	var (
		resp *llm.LLMResponse
		err  error
	)
	if g.cfg.Retry {
		resp, err = g.client.InvokeModelWithRetry(ctx, request)
	} else {
		resp, err = g.client.InvokeModel(ctx, request)
	}

	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrGenerationService, err)
	}

	if resp == nil {
		return "", fmt.Errorf("%w: no response", ErrGenerationService)
	}

	answer := strings.TrimSpace(resp.Content)
	if answer == "" {
		return "", fmt.Errorf("%w: empty completion (stop reason %q)", ErrGenerationService, resp.StopReason)
	}

	return answer, nil
}
