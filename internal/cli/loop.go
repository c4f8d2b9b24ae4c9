package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/povarna/generative-ai-agents/doc-qa/internal/corpus"
	"github.com/povarna/generative-ai-agents/doc-qa/internal/qa"
	"github.com/rs/zerolog"
)

const (
	Prompt       = "Ask about the story (or 'exit'): "
	ExitCommand  = "exit"
	maxLineBytes = 1024 * 1024
)

// Asker answers a question against a corpus.
type Asker interface {
	Ask(ctx context.Context, c *corpus.Corpus, question string) (*qa.Answer, error)
}

// Loop is the interactive question prompt over a single corpus.
type Loop struct {
	asker  Asker
	corpus *corpus.Corpus
	logger *zerolog.Logger
}

func NewLoop(asker Asker, c *corpus.Corpus, logger *zerolog.Logger) *Loop {
	return &Loop{
		asker:  asker,
		corpus: c,
		logger: logger,
	}
}

// Run prompts on out and answers each line read from in until "exit", EOF or ctx is done.
// A failed question is reported and the loop continues.
func (l *Loop) Run(ctx context.Context, in io.Reader, out io.Writer) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	lines, readErr := readLines(ctx, in)

	for {
		fmt.Fprint(out, "\n"+Prompt)

		var (
			line string
			ok   bool
		)
		select {
		case <-ctx.Done():
			fmt.Fprintln(out)
			return nil
		case line, ok = <-lines:
		}

		if !ok {
			fmt.Fprintln(out)
			return <-readErr
		}

		question := strings.TrimSpace(line)
		if question == "" {
			continue
		}
		if strings.EqualFold(question, ExitCommand) {
			return nil
		}

		answer, err := l.asker.Ask(ctx, l.corpus, question)
		if err != nil {
			l.logger.Error().Err(err).Str("question", question).Msg("Failed to answer question")
			fmt.Fprintf(out, "error: %v\n", err)
			continue
		}

		fmt.Fprintf(out, "\nAnswer: %s\n", answer.Text)
	}
}

// readLines scans in on its own goroutine so a blocked read does not delay shutdown.
func readLines(ctx context.Context, in io.Reader) (<-chan string, <-chan error) {
	lines := make(chan string)
	errc := make(chan error, 1)

	go func() {
		defer close(lines)

		scanner := bufio.NewScanner(in)
		scanner.Buffer(make([]byte, 64*1024), maxLineBytes)

		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				errc <- nil
				return
			}
		}

		if err := scanner.Err(); err != nil {
			errc <- fmt.Errorf("failed to read input: %w", err)
			return
		}
		errc <- nil
	}()

	return lines, errc
}
