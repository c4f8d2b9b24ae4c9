package stream

import (
	"context"
	"fmt"
	"os"

	"github.com/povarna/generative-ai-agents/doc-qa/internal/corpus"
	"github.com/povarna/generative-ai-agents/doc-qa/internal/stream/redis"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

func NewStreamConsumer(
	ctx context.Context,
	cfg *StreamConfig,
	client goredis.Cmdable,
	asker redis.Asker,
	c *corpus.Corpus,
	logger *zerolog.Logger,
) (StreamConsumer, error) {

	// If provider is empty, fallback to the default configuration.
	provider := cfg.Provider
	if provider == "" {
		provider = "redis"
	}

	switch provider {
	case "redis":
		if client == nil {
			return nil, fmt.Errorf("redis client required for stream provider %q", provider)
		}

		consumerName := cfg.ConsumerName
		if consumerName == "" {
			consumerName, _ = os.Hostname()
		}

		return redis.NewConsumer(
			client,
			redis.NewRedisStreamConfig(cfg.QuestionStream, cfg.AnswerStream, cfg.Group, consumerName),
			asker,
			c,
			logger,
		), nil

	default:
		return nil, fmt.Errorf("unsupported stream provider: %s", cfg.Provider)
	}
}
