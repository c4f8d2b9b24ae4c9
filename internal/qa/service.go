package qa

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/povarna/generative-ai-agents/doc-qa/internal/chunker"
	"github.com/povarna/generative-ai-agents/doc-qa/internal/corpus"
	"github.com/povarna/generative-ai-agents/doc-qa/internal/document"
	"github.com/povarna/generative-ai-agents/doc-qa/internal/embedding"
	"github.com/povarna/generative-ai-agents/doc-qa/internal/prompt"
	"github.com/povarna/generative-ai-agents/doc-qa/internal/retriever"
	"github.com/rs/zerolog"
)

var ErrEmptyQuestion = errors.New("question is empty")

// Generator produces answer text for a fully assembled prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

type Config struct {
	K               int
	ClampK          bool
	MaxContextChars int
}

type Answer struct {
	Question         string            `json:"question"`
	Text             string            `json:"answer"`
	Sources          []retriever.Match `json:"sources"`
	ContextTruncated bool              `json:"context_truncated"`
}

// Service runs the question answering pipeline: retrieve, fit context, assemble prompt, generate.
type Service struct {
	embedder        embedding.Embedder
	retriever       *retriever.Retriever
	prompts         *prompt.Builder
	generator       Generator
	maxContextChars int
	logger          *zerolog.Logger
}

func NewService(
	embedder embedding.Embedder,
	prompts *prompt.Builder,
	generator Generator,
	cfg Config,
	logger *zerolog.Logger,
) *Service {
	k := cfg.K
	if k == 0 {
		k = retriever.DefaultK
	}

	return &Service{
		embedder:        embedder,
		retriever:       retriever.New(embedder, retriever.WithK(k), retriever.WithClampK(cfg.ClampK)),
		prompts:         prompts,
		generator:       generator,
		maxContextChars: cfg.MaxContextChars,
		logger:          logger,
	}
}

// WithPrompt returns a copy of the service that renders prompts with builder.
func (s *Service) WithPrompt(builder *prompt.Builder) *Service {
	clone := *s
	clone.prompts = builder
	return &clone
}

// Index chunks doc according to its format and builds a searchable corpus.
func (s *Service) Index(ctx context.Context, doc *document.Document) (*corpus.Corpus, error) {
	now := time.Now()

	chunks := chunker.ForFormat(doc.Format)(doc.Text)
	s.logger.Info().
		Str("document", doc.Name).
		Str("format", string(doc.Format)).
		Int("chunk_count", len(chunks)).
		Msg("Document chunked")

	c, err := corpus.Build(ctx, corpus.Source{Document: doc.Name, Checksum: doc.Checksum, Format: string(doc.Format)}, chunks, s.embedder)
	if err != nil {
		return nil, fmt.Errorf("failed to index %s: %w", doc.Name, err)
	}

	s.logger.Info().
		Str("document", doc.Name).
		Str("embedder", c.Embedder()).
		Dur("duration", time.Since(now)).
		Msg("Document indexed")

	return c, nil
}

// Ask answers question from the default number of nearest chunks.
func (s *Service) Ask(ctx context.Context, c *corpus.Corpus, question string) (*Answer, error) {
	return s.AskK(ctx, c, question, 0)
}

// AskK answers question from the k nearest chunks. k == 0 uses the configured default.
func (s *Service) AskK(ctx context.Context, c *corpus.Corpus, question string, k int) (*Answer, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, ErrEmptyQuestion
	}

	matches, err := s.retriever.Retrieve(ctx, question, c, k)
	if err != nil {
		return nil, err
	}

	context, truncated := prompt.Fit(retriever.Texts(matches), s.maxContextChars)
	if truncated {
		s.logger.Warn().
			Int("max_context_chars", s.maxContextChars).
			Int("retrieved", len(matches)).
			Int("kept", len(context)).
			Msg("Retrieved context truncated")
	}

	rendered, err := s.prompts.Assemble(context, question)
	if err != nil {
		return nil, fmt.Errorf("failed to assemble prompt: %w", err)
	}

	now := time.Now()
	text, err := s.generator.Generate(ctx, rendered)
	if err != nil {
		return nil, err
	}

	s.logger.Debug().
		Int("sources", len(matches)).
		Dur("duration", time.Since(now)).
		Msg("Answer generated")

	return &Answer{
		Question:         question,
		Text:             text,
		Sources:          matches,
		ContextTruncated: truncated,
	}, nil
}
