package retriever

import (
	"context"
	"errors"
	"fmt"

	"github.com/povarna/generative-ai-agents/doc-qa/internal/corpus"
	"github.com/povarna/generative-ai-agents/doc-qa/internal/embedding"
)

const DefaultK = 3

var (
	ErrInvalidK         = errors.New("invalid neighbor count")
	ErrEmbedderMismatch = errors.New("query embedder differs from corpus embedder")
)

// Match is a retrieved chunk together with its place in the corpus.
type Match struct {
	Position int     `json:"position"`
	Distance float64 `json:"distance"`
	Text     string  `json:"text"`
}

type Retriever struct {
	embedder embedding.Embedder
	k        int
	clampK   bool
}

type Option func(*Retriever)

// WithK sets the default neighbor count used when Retrieve is called with k == 0.
func WithK(k int) Option {
	return func(r *Retriever) {
		r.k = k
	}
}

// WithClampK makes a k larger than the corpus return every chunk instead of failing.
func WithClampK(clamp bool) Option {
	return func(r *Retriever) {
		r.clampK = clamp
	}
}

func New(embedder embedding.Embedder, opts ...Option) *Retriever {
	r := &Retriever{
		embedder: embedder,
		k:        DefaultK,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Retriever) K() int {
	return r.k
}

// Retrieve embeds query and returns the k nearest chunks of c, nearest first.
// k == 0 selects the retriever's default.
func (r *Retriever) Retrieve(ctx context.Context, query string, c *corpus.Corpus, k int) ([]Match, error) {
	if r.embedder.Name() != c.Embedder() {
		return nil, fmt.Errorf("%w: corpus uses %q, retriever uses %q", ErrEmbedderMismatch, c.Embedder(), r.embedder.Name())
	}

	k, err := r.resolveK(k, c.Len())
	if err != nil {
		return nil, err
	}

	vector, err := r.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	neighbors, err := c.Search(vector, k)
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}

	matches := make([]Match, len(neighbors))
	for i, n := range neighbors {
		matches[i] = Match{
			Position: n.Position,
			Distance: n.Distance,
			Text:     c.Chunk(n.Position),
		}
	}

	return matches, nil
}

func (r *Retriever) resolveK(k int, size int) (int, error) {
	if k == 0 {
		k = r.k
	}

	if k < 1 {
		return 0, fmt.Errorf("%w: k=%d must be at least 1", ErrInvalidK, k)
	}

	if k > size {
		if r.clampK {
			return size, nil
		}
		return 0, fmt.Errorf("%w: k=%d exceeds corpus size %d", ErrInvalidK, k, size)
	}

	return k, nil
}

// Texts returns the chunk text of each match, keeping retrieval order.
func Texts(matches []Match) []string {
	texts := make([]string, len(matches))
	for i, m := range matches {
		texts[i] = m.Text
	}
	return texts
}
