package bedrock

import (
	"time"

	"github.com/povarna/generative-ai-agents/doc-qa/internal/bedrock"
)

// Client invokes an Anthropic Claude model hosted on Bedrock.
type Client struct {
	Runtime      bedrock.RuntimeAPI
	ModelID      string
	MaxRetries   int
	InitialDelay time.Duration
	MaxDelay     time.Duration
}

func NewClient(runtime bedrock.RuntimeAPI, modelID string) *Client {
	return &Client{
		Runtime:      runtime,
		ModelID:      modelID,
		MaxRetries:   3,
		InitialDelay: 100 * time.Millisecond,
		MaxDelay:     12 * time.Second,
	}
}
