package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/povarna/generative-ai-agents/doc-qa/internal/redis"
	"github.com/povarna/generative-ai-agents/doc-qa/internal/setup"
	streamredis "github.com/povarna/generative-ai-agents/doc-qa/internal/stream/redis"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	question := flag.String("q", "", "Question to publish")
	id := flag.String("id", "", "Optional request id (generated when empty)")
	k := flag.Int("k", 0, "Neighbor count (0 uses the worker default)")
	flag.Parse()

	if *question == "" {
		fmt.Fprintln(os.Stderr, "Usage: producer -q '<question>' [-k 3] [-id <id>]")
		flag.PrintDefaults()
		os.Exit(1)
	}

	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	if err := run(streamredis.QuestionMessage{ID: *id, Question: *question, K: *k}); err != nil {
		log.Error().Err(err).Msg("producer failed")
		os.Exit(1)
	}
}

func run(q streamredis.QuestionMessage) error {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := setup.LoadRedisConfig()
	if err != nil {
		return err
	}

	client, err := redis.Connect(ctx, redis.Options{
		Addr:       cfg.Redis.Addr,
		Password:   cfg.Redis.Password,
		DB:         cfg.Redis.DB,
		MaxRetries: 3,
	}, &log.Logger)
	if err != nil {
		return err
	}
	defer client.Close()

	requestID, entryID, err := streamredis.Publish(ctx, client, cfg.Stream.QuestionStream, q)
	if err != nil {
		return err
	}

	log.Info().
		Str("stream", cfg.Stream.QuestionStream).
		Str("entry", entryID).
		Str("id", requestID).
		Str("answers", cfg.Stream.AnswerStream).
		Msg("Published successfully!")
	return nil
}
