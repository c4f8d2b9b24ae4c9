package session

import (
	"context"
	"errors"

	"github.com/povarna/generative-ai-agents/doc-qa/internal/corpus"
)

var ErrNotFound = errors.New("session not found")

// Store keeps one corpus per session id. Put replaces any previous corpus.
type Store interface {
	Get(ctx context.Context, id string) (*corpus.Corpus, error)
	Put(ctx context.Context, id string, c *corpus.Corpus) error
	Delete(ctx context.Context, id string) error
}
