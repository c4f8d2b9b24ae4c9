package batch

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog"
)

var ErrInvalidRecord = errors.New("invalid batch record")

// Request is one line of a batch input file.
type Request struct {
	ID       string `json:"id"`
	Question string `json:"question"`
	K        int    `json:"k,omitempty"`
}

// InputRecord is a parsed line. Error is set when the line could not be used.
type InputRecord struct {
	LineNumber int
	Request    Request
	Error      error
}

type Reader struct {
	r      io.Reader
	logger *zerolog.Logger
}

func NewReader(r io.Reader, logger *zerolog.Logger) *Reader {
	return &Reader{r: r, logger: logger}
}

// ReadAll streams records until EOF or ctx is cancelled. Blank lines are skipped.
func (r *Reader) ReadAll(ctx context.Context) <-chan InputRecord {
	out := make(chan InputRecord)

	go func() {
		defer close(out)

		scanner := bufio.NewScanner(r.r)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

		line := 0
		for scanner.Scan() {
			line++
			text := strings.TrimSpace(scanner.Text())
			if text == "" {
				continue
			}

			record := parseLine(line, text)
			if record.Error != nil {
				r.logger.Warn().Err(record.Error).Int("line", line).Msg("Skipping invalid record")
			}

			select {
			case <-ctx.Done():
				return
			case out <- record:
			}
		}

		if err := scanner.Err(); err != nil {
			r.logger.Error().Err(err).Msg("Failed to read batch input")
		}
	}()

	return out
}

func parseLine(line int, text string) InputRecord {
	record := InputRecord{LineNumber: line}

	if err := json.Unmarshal([]byte(text), &record.Request); err != nil {
		record.Error = fmt.Errorf("%w: line %d: %w", ErrInvalidRecord, line, err)
		return record
	}

	record.Request.Question = strings.TrimSpace(record.Request.Question)
	if record.Request.Question == "" {
		record.Error = fmt.Errorf("%w: line %d: missing question", ErrInvalidRecord, line)
		return record
	}
	if record.Request.K < 0 {
		record.Error = fmt.Errorf("%w: line %d: negative k", ErrInvalidRecord, line)
		return record
	}
	if record.Request.ID == "" {
		record.Request.ID = fmt.Sprintf("line-%d", line)
	}

	return record
}
