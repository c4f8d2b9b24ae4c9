package ollama

import (
	"context"
	"fmt"

	"github.com/philippgille/chromem-go"
)

const DefaultModel = "all-minilm"

// Embedder runs a local embedding model served by Ollama.
type Embedder struct {
	model string
	embed chromem.EmbeddingFunc
}

// NewEmbedder talks to Ollama at baseURL. An empty baseURL uses the local default.
func NewEmbedder(model string, baseURL string) *Embedder {
	if model == "" {
		model = DefaultModel
	}

	return NewWithFunc(model, chromem.NewEmbeddingFuncOllama(model, baseURL))
}

// NewWithFunc wraps any chromem embedding function under the given model name.
func NewWithFunc(model string, fn chromem.EmbeddingFunc) *Embedder {
	return &Embedder{
		model: model,
		embed: fn,
	}
}

func (e *Embedder) Name() string {
	return "ollama:" + e.model
}

func (e *Embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	vector, err := e.embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("ollama embedding failed: %w", err)
	}

	if len(vector) == 0 {
		return nil, fmt.Errorf("ollama returned an empty embedding")
	}

	return vector, nil
}
