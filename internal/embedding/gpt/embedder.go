package gpt

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

const DefaultModel = "text-embedding-3-small"

type Embedder struct {
	client openai.Client
	model  string
}

func NewEmbedder(apiKey string, model string, opts ...option.RequestOption) (*Embedder, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}
	if model == "" {
		model = DefaultModel
	}

	opts = append([]option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(3),
	}, opts...)

	return &Embedder{
		client: openai.NewClient(opts...),
		model:  model,
	}, nil
}

func (e *Embedder) Name() string {
	return "openai:" + e.model
}

func (e *Embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	output, err := e.client.Embeddings.New(ctx, openai.EmbeddingNewParams{
		Input: openai.EmbeddingNewParamsInputUnion{
			OfString: openai.String(text),
		},
		Model: openai.EmbeddingModel(e.model),
	})
	if err != nil {
		return nil, fmt.Errorf("unable to create openai embedding: %w", err)
	}

	if len(output.Data) == 0 || len(output.Data[0].Embedding) == 0 {
		return nil, fmt.Errorf("no embedding in response")
	}

	values := output.Data[0].Embedding
	vector := make([]float32, len(values))
	for i, v := range values {
		vector[i] = float32(v)
	}

	return vector, nil
}
