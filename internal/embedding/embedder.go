package embedding

import (
	"context"
)

// Embedder maps text to a fixed-length vector.
// Name identifies the model so a corpus is never queried with vectors from another embedding space.
type Embedder interface {
	Name() string
	Embed(ctx context.Context, text string) ([]float32, error)
}
