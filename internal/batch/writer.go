package batch

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/rs/zerolog"
)

const (
	FormatJSONL   = "jsonl"
	FormatSummary = "summary"
)

type Summary struct {
	Total        int     `json:"total"`
	Answered     int     `json:"answered"`
	Failed       int     `json:"failed"`
	AvgLatencyMs float64 `json:"avg_latency_ms"`
}

// Writer emits one JSON line per result, or a single summary object on Close.
type Writer struct {
	w       io.Writer
	format  string
	enc     *json.Encoder
	summary Summary
	latency int64
	logger  *zerolog.Logger
}

func NewWriter(w io.Writer, format string, logger *zerolog.Logger) (*Writer, error) {
	if format != FormatJSONL && format != FormatSummary {
		return nil, fmt.Errorf("unsupported output format: %s", format)
	}
	return &Writer{w: w, format: format, enc: json.NewEncoder(w), logger: logger}, nil
}

func (w *Writer) Write(result Result) error {
	w.summary.Total++
	if result.Failed() {
		w.summary.Failed++
	} else {
		w.summary.Answered++
		w.latency += result.LatencyMs
	}

	if w.format != FormatJSONL {
		return nil
	}
	if err := w.enc.Encode(result); err != nil {
		return fmt.Errorf("failed to write result %s: %w", result.ID, err)
	}
	return nil
}

func (w *Writer) Summary() Summary {
	s := w.summary
	if s.Answered > 0 {
		s.AvgLatencyMs = float64(w.latency) / float64(s.Answered)
	}
	return s
}

func (w *Writer) Close() error {
	if w.format != FormatSummary {
		return nil
	}
	summary := w.Summary()
	w.logger.Debug().Int("total", summary.Total).Msg("Writing batch summary")
	return w.enc.Encode(summary)
}
