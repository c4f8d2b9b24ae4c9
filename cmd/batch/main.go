package main

import (
	"context"
	"flag"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/povarna/generative-ai-agents/doc-qa/internal/batch"
	"github.com/povarna/generative-ai-agents/doc-qa/internal/setup"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	startTime := time.Now()

	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	input := flag.String("input", "", "Input JSONL file of questions ('-' for stdin)")
	output := flag.String("output", "", "Output file (stdout when empty)")
	format := flag.String("format", batch.FormatJSONL, "Output format. Supported formats: 'jsonl', 'summary'")
	doc := flag.String("doc", "", "Document to answer from (overrides DOCUMENT_PATH)")
	workers := flag.Int("workers", 5, "Concurrent workers")
	dryRun := flag.Bool("dry-run", false, "Validate input without answering")

	flag.Parse()

	if *input == "" {
		log.Fatal().Msg("required flag -input not provided")
	}

	if err := godotenv.Load(); err != nil {
		log.Warn().Msg("No .env file found, using environment variables")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Open input file
	var inputFile io.Reader
	if *input == "-" {
		inputFile = os.Stdin
		log.Info().Msg("Reading from stdin")
	} else {
		f, err := os.Open(*input)
		if err != nil {
			log.Fatal().Err(err).Str("file", *input).Msg("Failed to open input file")
		}
		defer f.Close()
		inputFile = f
		log.Info().Str("file", *input).Msg("Reading input file")
	}

	reader := batch.NewReader(inputFile, &log.Logger)

	var records []batch.InputRecord
	invalid := 0
	for record := range reader.ReadAll(ctx) {
		if record.Error != nil {
			invalid++
		}
		records = append(records, record)
	}

	log.Info().Int("total", len(records)).Int("invalid", invalid).Msg("Input file parsed")

	if *dryRun {
		if invalid > 0 {
			log.Fatal().Int("errors", invalid).Msg("Validation failed")
		}
		log.Info().Msg("Validation successful")
		return
	}

	cfg, err := setup.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}
	if *doc != "" {
		cfg.DocumentPath = *doc
	}

	deps, err := setup.Wire(ctx, cfg, &log.Logger)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to wire dependencies")
	}
	defer deps.Close()

	c, err := deps.LoadCorpus(ctx, cfg.DocumentPath)
	if err != nil {
		log.Fatal().Err(err).Str("document", cfg.DocumentPath).Msg("Failed to index document")
	}

	// Open output file
	var outputFile io.Writer
	if *output == "" {
		outputFile = os.Stdout
		log.Info().Msg("Writing to stdout")
	} else {
		f, err := os.Create(*output)
		if err != nil {
			log.Fatal().Err(err).Str("file", *output).Msg("Failed to create output file")
		}
		defer f.Close()
		outputFile = f
		log.Info().Str("file", *output).Msg("Writing to output file")
	}

	writer, err := batch.NewWriter(outputFile, *format, &log.Logger)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create writer")
	}

	// Process with worker pool
	processor := batch.NewProcessor(deps.Service, c, *workers, &log.Logger)
	for result := range processor.Process(ctx, records) {
		if err := writer.Write(result); err != nil {
			log.Error().Err(err).Str("id", result.ID).Msg("Failed to write result")
		}
	}

	if err := writer.Close(); err != nil {
		log.Error().Err(err).Msg("Failed to write summary")
	}

	summary := writer.Summary()
	log.Info().
		Int("answered", summary.Answered).
		Int("failed", summary.Failed).
		Dur("duration", time.Since(startTime)).
		Msg("Batch processing complete")
}
