package redis

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/povarna/generative-ai-agents/doc-qa/internal/corpus"
	"github.com/povarna/generative-ai-agents/doc-qa/internal/qa"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Asker is the subset of the QA service the consumer needs.
type Asker interface {
	AskK(ctx context.Context, c *corpus.Corpus, question string, k int) (*qa.Answer, error)
}

// Consumer answers questions from one stream and publishes the answers to another.
type Consumer struct {
	client redis.Cmdable
	cfg    *RedisStreamConfig
	asker  Asker
	corpus *corpus.Corpus
	logger *zerolog.Logger
}

func NewConsumer(client redis.Cmdable, cfg *RedisStreamConfig, asker Asker, c *corpus.Corpus, logger *zerolog.Logger) *Consumer {
	return &Consumer{
		client: client,
		cfg:    cfg,
		asker:  asker,
		corpus: c,
		logger: logger,
	}
}

func (c *Consumer) Setup(ctx context.Context) error {
	err := c.client.XGroupCreateMkStream(ctx, c.cfg.QuestionStream, c.cfg.Group, "0").Err()
	if err != nil && !strings.HasPrefix(err.Error(), "BUSYGROUP") {
		return err
	}
	return nil
}

// Start first re-reads entries this consumer received but never ACKed, then
// blocks on new entries. After a failed publish the pending list is retried
// once the next read returns.
func (c *Consumer) Start(ctx context.Context) error {
	c.logger.Info().
		Str("stream", c.cfg.QuestionStream).
		Str("answers", c.cfg.AnswerStream).
		Str("group", c.cfg.Group).
		Str("consumer", c.cfg.ConsumerName).
		Msg("Consumer started")

	retryPending := true
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		if retryPending {
			retry, err := c.drainPending(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				c.logger.Error().Err(err).Msg("Failed to read pending entries")
				time.Sleep(time.Second)
				continue
			}
			retryPending = retry
		}

		streams, err := c.client.XReadGroup(ctx, &redis.XReadGroupArgs{
			Group:    c.cfg.Group,
			Consumer: c.cfg.ConsumerName,
			Streams:  []string{c.cfg.QuestionStream, ">"},
			Count:    1,
			Block:    c.cfg.Block,
		}).Result()

		if err != nil {
			if errors.Is(err, redis.Nil) {
				// timeout, no message -> loop again
				continue
			}

			if ctx.Err() != nil {
				return ctx.Err() // context cancelled during block
			}

			c.logger.Error().Err(err).Msg("Failed to read from stream")
			time.Sleep(time.Second)
			continue
		}

		for _, s := range streams {
			for _, msg := range s.Messages {
				if !c.process(ctx, msg) {
					retryPending = true
				}
			}
		}
	}
}

// drainPending walks this consumer's pending entries once, oldest first.
// It reports whether any entry is still pending afterwards.
func (c *Consumer) drainPending(ctx context.Context) (bool, error) {
	count := c.cfg.PendingBatch
	if count < 1 {
		count = DefaultPendingBatch
	}

	cursor := "0"
	retry := false
	for {
		streams, err := c.client.XReadGroup(ctx, &redis.XReadGroupArgs{
			Group:    c.cfg.Group,
			Consumer: c.cfg.ConsumerName,
			Streams:  []string{c.cfg.QuestionStream, cursor},
			Count:    count,
			Block:    -1,
		}).Result()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				return retry, nil
			}
			return retry, err
		}

		read := 0
		for _, s := range streams {
			for _, msg := range s.Messages {
				read++
				cursor = msg.ID
				if !c.process(ctx, msg) {
					retry = true
				}
			}
		}

		if read == 0 {
			return retry, nil
		}
		c.logger.Info().Int("entries", read).Msg("Re-processed pending entries")
	}
}

func (c *Consumer) Stop() error {
	// No-op
	return nil
}

// process answers one entry and reports whether it was ACKed.
func (c *Consumer) process(ctx context.Context, msg redis.XMessage) bool {
	c.logger.Info().Str("id", msg.ID).Msg("Message received")

	question, err := decodeQuestion(msg.Values)
	if err != nil {
		c.logger.Error().Err(err).Str("id", msg.ID).Msg("Failed to decode message")
		return c.ack(ctx, msg.ID) // bad message, ACK to skip it
	}

	answer, askErr := c.asker.AskK(ctx, c.corpus, question.Question, question.K)
	if askErr != nil {
		c.logger.Error().Err(askErr).Str("id", question.ID).Msg("Failed to answer question")
	}

	err = c.client.XAdd(ctx, &redis.XAddArgs{
		Stream: c.cfg.AnswerStream,
		MaxLen: c.cfg.AnswerMaxLen,
		Approx: true,
		Values: answerValues(question.ID, answer, askErr),
	}).Err()
	if err != nil {
		// Left pending; Start re-reads it from the pending list.
		c.logger.Error().Err(err).Str("id", question.ID).Msg("Failed to publish answer")
		return false
	}

	c.logger.Info().
		Str("id", question.ID).
		Bool("failed", askErr != nil).
		Msg("Answer published")

	return c.ack(ctx, msg.ID)
}

func (c *Consumer) ack(ctx context.Context, msgID string) bool {
	if err := c.client.XAck(ctx, c.cfg.QuestionStream, c.cfg.Group, msgID).Err(); err != nil {
		c.logger.Error().Err(err).Str("id", msgID).Msg("Failed to ACK message")
		return false
	}
	return true
}
