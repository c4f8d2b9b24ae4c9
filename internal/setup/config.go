package setup

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/povarna/generative-ai-agents/doc-qa/internal/database"
	"github.com/povarna/generative-ai-agents/doc-qa/internal/stream"
)

type RedisConfig struct {
	Addr           string `env:"ADDR"`
	Password       string `env:"PASSWORD"`
	DB             int    `env:"DB" envDefault:"0"`
	ConnectRetries int    `env:"CONNECT_RETRIES" envDefault:"5"`
}

type Config struct {
	LogLevel          string `env:"LOG_LEVEL" envDefault:"info"`
	DocumentPath      string `env:"DOCUMENT_PATH" envDefault:"doc1.txt"`
	StaticDir         string `env:"STATIC_DIR" envDefault:"static"`
	APIPort           string `env:"DOC_QA_API_PORT" envDefault:"8000"`
	WebPort           string `env:"DOC_QA_WEB_PORT" envDefault:"8501"`
	PromptsConfigPath string `env:"PROMPTS_CONFIG_PATH" envDefault:"configs/prompts.yaml"`

	RetrievalK      int   `env:"RETRIEVAL_K" envDefault:"3"`
	RetrievalClampK bool  `env:"RETRIEVAL_CLAMP_K" envDefault:"false"`
	MaxContextChars int   `env:"MAX_CONTEXT_CHARS" envDefault:"12000"`
	MaxUploadBytes  int64 `env:"MAX_UPLOAD_BYTES" envDefault:"10485760"`

	LLMProvider    string  `env:"LLM_PROVIDER" envDefault:"bedrock"`
	AWSRegion      string  `env:"AWS_REGION" envDefault:"us-east-1"`
	ClaudeModelID  string  `env:"CLAUDE_MODEL_ID"`
	OpenAIKey      string  `env:"OPEN_AI_KEY"`
	OpenAIModelID  string  `env:"OPEN_AI_MODEL_ID"`
	LLMMaxTokens   int     `env:"LLM_MAX_TOKENS" envDefault:"1024"`
	LLMTemperature float64 `env:"LLM_TEMPERATURE" envDefault:"0"`
	LLMRetry       bool    `env:"LLM_RETRY" envDefault:"false"`

	EmbeddingProvider    string `env:"EMBEDDING_PROVIDER" envDefault:"ollama"`
	TitanEmbedModelID    string `env:"TITAN_EMBED_MODEL_ID" envDefault:"amazon.titan-embed-text-v2:0"`
	OpenAIEmbeddingModel string `env:"OPEN_AI_EMBEDDING_MODEL" envDefault:"text-embedding-3-small"`
	OllamaEmbedModel     string `env:"OLLAMA_EMBED_MODEL" envDefault:"all-minilm"`
	OllamaURL            string `env:"OLLAMA_URL"`

	Redis      RedisConfig   `envPrefix:"REDIS_"`
	SessionTTL time.Duration `env:"SESSION_TTL" envDefault:"30m"`

	CorpusCache bool            `env:"CORPUS_CACHE" envDefault:"false"`
	Database    database.Config `envPrefix:"DB_"`

	Stream stream.StreamConfig
}

// LoadConfig reads the process environment.
func LoadConfig() (*Config, error) {
	return parseConfig(env.Options{})
}

func parseConfig(opts env.Options) (*Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.RetrievalK < 1 {
		return fmt.Errorf("RETRIEVAL_K must be at least 1, got %d", c.RetrievalK)
	}
	if c.MaxContextChars < 0 {
		return fmt.Errorf("MAX_CONTEXT_CHARS must not be negative, got %d", c.MaxContextChars)
	}

	switch c.LLMProvider {
	case "bedrock":
		if c.ClaudeModelID == "" {
			return fmt.Errorf("CLAUDE_MODEL_ID is required for the bedrock provider")
		}
	case "openai":
		if c.OpenAIKey == "" || c.OpenAIModelID == "" {
			return fmt.Errorf("OPEN_AI_KEY and OPEN_AI_MODEL_ID are required for the openai provider")
		}
	default:
		return fmt.Errorf("unsupported LLM provider: %s", c.LLMProvider)
	}

	switch c.EmbeddingProvider {
	case "ollama", "bedrock":
	case "openai":
		if c.OpenAIKey == "" {
			return fmt.Errorf("OPEN_AI_KEY is required for the openai embedding provider")
		}
	default:
		return fmt.Errorf("unsupported embedding provider: %s", c.EmbeddingProvider)
	}

	return nil
}

// StreamClientConfig is the subset of Config needed by processes that only talk to the streams.
type StreamClientConfig struct {
	Redis  RedisConfig `envPrefix:"REDIS_"`
	Stream stream.StreamConfig
}

// LoadRedisConfig reads the Redis and stream settings, defaulting to a local Redis.
func LoadRedisConfig() (*StreamClientConfig, error) {
	return parseStreamClientConfig(env.Options{})
}

func parseStreamClientConfig(opts env.Options) (*StreamClientConfig, error) {
	var cfg StreamClientConfig
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if cfg.Redis.Addr == "" {
		cfg.Redis.Addr = "localhost:6379"
	}
	return &cfg, nil
}
