package session

import (
	"context"
	"fmt"
	"sync"

	"github.com/povarna/generative-ai-agents/doc-qa/internal/corpus"
)

type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*corpus.Corpus
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]*corpus.Corpus)}
}

func (s *MemoryStore) Get(_ context.Context, id string) (*corpus.Corpus, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return c, nil
}

func (s *MemoryStore) Put(_ context.Context, id string, c *corpus.Corpus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions[id] = c
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, id)
	return nil
}

func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.sessions)
}
