package setup

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/povarna/generative-ai-agents/doc-qa/internal/bedrock"
	"github.com/povarna/generative-ai-agents/doc-qa/internal/config"
	"github.com/povarna/generative-ai-agents/doc-qa/internal/corpus"
	"github.com/povarna/generative-ai-agents/doc-qa/internal/database"
	"github.com/povarna/generative-ai-agents/doc-qa/internal/document"
	"github.com/povarna/generative-ai-agents/doc-qa/internal/embedding"
	titan "github.com/povarna/generative-ai-agents/doc-qa/internal/embedding/bedrock"
	gptembed "github.com/povarna/generative-ai-agents/doc-qa/internal/embedding/gpt"
	"github.com/povarna/generative-ai-agents/doc-qa/internal/embedding/ollama"
	"github.com/povarna/generative-ai-agents/doc-qa/internal/generator"
	"github.com/povarna/generative-ai-agents/doc-qa/internal/llm"
	claude "github.com/povarna/generative-ai-agents/doc-qa/internal/llm/bedrock"
	"github.com/povarna/generative-ai-agents/doc-qa/internal/llm/gpt"
	"github.com/povarna/generative-ai-agents/doc-qa/internal/prompt"
	"github.com/povarna/generative-ai-agents/doc-qa/internal/qa"
	"github.com/povarna/generative-ai-agents/doc-qa/internal/redis"
	"github.com/povarna/generative-ai-agents/doc-qa/internal/session"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// CorpusCache persists built corpora keyed by document checksum, format and embedder.
type CorpusCache interface {
	LoadCorpus(ctx context.Context, checksum, format, embedder string) (*corpus.Corpus, error)
	SaveCorpus(ctx context.Context, c *corpus.Corpus) (string, error)
}

type Dependencies struct {
	Config    *Config
	Embedder  embedding.Embedder
	LLMClient llm.LLMClient
	Prompts   *config.PromptsConfig
	// Service renders the story prompt. DocumentService renders the uploaded-document prompt.
	Service         *qa.Service
	DocumentService *qa.Service
	Redis           *goredis.Client
	DB              *database.DB
	Cache           CorpusCache
	Logger          *zerolog.Logger
}

func Wire(ctx context.Context, cfg *Config, logger *zerolog.Logger) (*Dependencies, error) {
	runtimes := &runtimeProvider{region: cfg.AWSRegion}

	embedder, err := createEmbedder(ctx, cfg, runtimes)
	if err != nil {
		return nil, fmt.Errorf("failed to create embedder: %w", err)
	}

	llmClient, err := createLLMClient(ctx, cfg, runtimes)
	if err != nil {
		return nil, fmt.Errorf("failed to create LLM client: %w", err)
	}

	prompts, err := config.LoadPromptsConfig(cfg.PromptsConfigPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load prompts config: %w", err)
	}

	storyPrompt, err := prompts.Builder(prompt.StoryTemplateName)
	if err != nil {
		return nil, err
	}
	documentPrompt, err := prompts.Builder(prompt.DocumentTemplateName)
	if err != nil {
		return nil, err
	}

	gen := generator.New(llmClient, generator.Config{
		MaxTokens:   cfg.LLMMaxTokens,
		Temperature: cfg.LLMTemperature,
		Retry:       cfg.LLMRetry,
	})

	service := qa.NewService(embedder, storyPrompt, gen, qa.Config{
		K:               cfg.RetrievalK,
		ClampK:          cfg.RetrievalClampK,
		MaxContextChars: cfg.MaxContextChars,
	}, logger)

	deps := &Dependencies{
		Config:          cfg,
		Embedder:        embedder,
		LLMClient:       llmClient,
		Prompts:         prompts,
		Service:         service,
		DocumentService: service.WithPrompt(documentPrompt),
		Logger:          logger,
	}

	if cfg.Redis.Addr != "" {
		client, err := redis.Connect(ctx, redis.Options{
			Addr:       cfg.Redis.Addr,
			Password:   cfg.Redis.Password,
			DB:         cfg.Redis.DB,
			MaxRetries: cfg.Redis.ConnectRetries,
		}, logger)
		if err != nil {
			return nil, err
		}
		deps.Redis = client
	}

	if cfg.CorpusCache {
		db, err := database.New(ctx, cfg.Database)
		if err != nil {
			deps.Close()
			return nil, err
		}
		if err := db.Ping(ctx); err != nil {
			db.Close()
			deps.Close()
			return nil, fmt.Errorf("failed to ping database: %w", err)
		}
		if err := db.EnsureSchema(ctx); err != nil {
			db.Close()
			deps.Close()
			return nil, err
		}
		deps.DB = db
		deps.Cache = db
	}

	logger.Info().
		Str("llm_provider", cfg.LLMProvider).
		Str("embedder", embedder.Name()).
		Int("k", cfg.RetrievalK).
		Bool("redis", deps.Redis != nil).
		Bool("corpus_cache", deps.Cache != nil).
		Msg("Dependencies wired")

	return deps, nil
}

func (d *Dependencies) Close() {
	if d.Redis != nil {
		if err := d.Redis.Close(); err != nil {
			d.Logger.Warn().Err(err).Msg("Failed to close Redis client")
		}
	}
	if d.DB != nil {
		d.DB.Close()
	}
}

// LoadCorpus loads the document at path and returns its corpus, reusing the
// cached corpus when the document and embedder are unchanged.
func (d *Dependencies) LoadCorpus(ctx context.Context, path string) (*corpus.Corpus, error) {
	doc, err := document.LoadFile(path)
	if err != nil {
		return nil, err
	}

	if d.Cache != nil {
		c, err := d.Cache.LoadCorpus(ctx, doc.Checksum, string(doc.Format), d.Embedder.Name())
		switch {
		case err == nil:
			d.Logger.Info().Str("document", doc.Name).Int("chunks", c.Len()).Msg("Corpus loaded from cache")
			return c, nil
		case errors.Is(err, database.ErrCorpusNotFound):
		default:
			d.Logger.Warn().Err(err).Msg("Corpus cache lookup failed, rebuilding")
		}
	}

	c, err := d.Service.Index(ctx, doc)
	if err != nil {
		return nil, err
	}

	if d.Cache != nil {
		if _, err := d.Cache.SaveCorpus(ctx, c); err != nil {
			d.Logger.Warn().Err(err).Msg("Failed to cache corpus")
		}
	}

	return c, nil
}

// SessionStore keeps form UI sessions in Redis when it is configured, in memory otherwise.
func (d *Dependencies) SessionStore() session.Store {
	if d.Redis != nil {
		return session.NewRedisStore(d.Redis, d.Config.SessionTTL)
	}
	return session.NewMemoryStore()
}

// runtimeProvider creates the Bedrock runtime on first use so that it is
// shared by the embedder and the LLM client.
type runtimeProvider struct {
	region  string
	runtime *bedrockruntime.Client
}

func (p *runtimeProvider) get(ctx context.Context) (bedrock.RuntimeAPI, error) {
	if p.runtime == nil {
		runtime, err := bedrock.NewRuntime(ctx, p.region)
		if err != nil {
			return nil, err
		}
		p.runtime = runtime
	}
	return p.runtime, nil
}

func createEmbedder(ctx context.Context, cfg *Config, runtimes *runtimeProvider) (embedding.Embedder, error) {
	switch cfg.EmbeddingProvider {
	case "ollama", "":
		return ollama.NewEmbedder(cfg.OllamaEmbedModel, cfg.OllamaURL), nil
	case "bedrock":
		runtime, err := runtimes.get(ctx)
		if err != nil {
			return nil, err
		}
		return titan.NewTitanEmbedder(runtime, cfg.TitanEmbedModelID), nil
	case "openai":
		return gptembed.NewEmbedder(cfg.OpenAIKey, cfg.OpenAIEmbeddingModel)
	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", cfg.EmbeddingProvider)
	}
}

func createLLMClient(ctx context.Context, cfg *Config, runtimes *runtimeProvider) (llm.LLMClient, error) {
	switch cfg.LLMProvider {
	case "bedrock":
		runtime, err := runtimes.get(ctx)
		if err != nil {
			return nil, err
		}
		return claude.NewClient(runtime, cfg.ClaudeModelID), nil
	case "openai":
		return gpt.NewClient(cfg.OpenAIKey, cfg.OpenAIModelID)
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.LLMProvider)
	}
}
