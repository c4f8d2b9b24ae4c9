package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
	"github.com/povarna/generative-ai-agents/doc-qa/internal/cli"
	"github.com/povarna/generative-ai-agents/doc-qa/internal/setup"
	"github.com/povarna/generative-ai-agents/doc-qa/internal/tui"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	useTUI := flag.Bool("tui", false, "run the terminal UI instead of the line prompt")
	documentPath := flag.String("doc", "", "document to load (overrides DOCUMENT_PATH)")
	flag.Parse()

	// Setup logging
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	logger := log.Logger
	if *useTUI {
		// Log lines would draw over the UI.
		logger = zerolog.Nop()
	}

	// Load env
	_ = godotenv.Load()

	// Graceful shutdown on SIGINT/SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := setup.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}
	if *documentPath != "" {
		cfg.DocumentPath = *documentPath
	}

	deps, err := setup.Wire(ctx, cfg, &logger)
	if err != nil {
		log.Fatal().Err(err).Msg("Unable to load dependencies")
	}
	defer deps.Close()

	c, err := deps.LoadCorpus(ctx, cfg.DocumentPath)
	if err != nil {
		log.Fatal().Err(err).Str("document", cfg.DocumentPath).Msg("Failed to index document")
	}

	if *useTUI {
		program := tea.NewProgram(tui.New(ctx, deps.Service, c), tea.WithAltScreen(), tea.WithContext(ctx))
		if _, err := program.Run(); err != nil && ctx.Err() == nil {
			log.Fatal().Err(err).Msg("TUI failed")
		}
		return
	}

	loop := cli.NewLoop(deps.Service, c, &logger)
	if err := loop.Run(ctx, os.Stdin, os.Stdout); err != nil {
		log.Fatal().Err(err).Msg("Interactive loop failed")
	}
}
