package batch

import (
	"context"
	"sync"
	"time"

	"github.com/povarna/generative-ai-agents/doc-qa/internal/corpus"
	"github.com/povarna/generative-ai-agents/doc-qa/internal/qa"
	"github.com/rs/zerolog"
)

type Asker interface {
	AskK(ctx context.Context, c *corpus.Corpus, question string, k int) (*qa.Answer, error)
}

type Source struct {
	Position int     `json:"position"`
	Distance float64 `json:"distance"`
}

// Result is one answered (or failed) batch record.
type Result struct {
	ID        string   `json:"id"`
	Line      int      `json:"line"`
	Question  string   `json:"question"`
	Answer    string   `json:"answer,omitempty"`
	Sources   []Source `json:"sources,omitempty"`
	Error     string   `json:"error,omitempty"`
	LatencyMs int64    `json:"latency_ms"`
}

func (r Result) Failed() bool {
	return r.Error != ""
}

// Processor answers records with a fixed number of concurrent workers.
type Processor struct {
	asker   Asker
	corpus  *corpus.Corpus
	workers int
	logger  *zerolog.Logger
}

func NewProcessor(asker Asker, c *corpus.Corpus, workers int, logger *zerolog.Logger) *Processor {
	if workers < 1 {
		workers = 1
	}
	return &Processor{asker: asker, corpus: c, workers: workers, logger: logger}
}

// Process returns results in completion order. The channel closes once every
// record is handled or ctx is cancelled.
func (p *Processor) Process(ctx context.Context, records []InputRecord) <-chan Result {
	jobs := make(chan InputRecord)
	results := make(chan Result)

	var wg sync.WaitGroup
	for range p.workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for record := range jobs {
				select {
				case <-ctx.Done():
					return
				case results <- p.answer(ctx, record):
				}
			}
		}()
	}

	go func() {
		defer close(jobs)
		for _, record := range records {
			select {
			case <-ctx.Done():
				return
			case jobs <- record:
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	return results
}

func (p *Processor) answer(ctx context.Context, record InputRecord) Result {
	result := Result{
		ID:       record.Request.ID,
		Line:     record.LineNumber,
		Question: record.Request.Question,
	}

	if record.Error != nil {
		result.Error = record.Error.Error()
		return result
	}

	start := time.Now()
	answer, err := p.asker.AskK(ctx, p.corpus, record.Request.Question, record.Request.K)
	result.LatencyMs = time.Since(start).Milliseconds()

	if err != nil {
		p.logger.Warn().Err(err).Str("id", result.ID).Msg("Failed to answer record")
		result.Error = err.Error()
		return result
	}

	result.Answer = answer.Text
	for _, m := range answer.Sources {
		result.Sources = append(result.Sources, Source{Position: m.Position, Distance: m.Distance})
	}

	p.logger.Debug().Str("id", result.ID).Int64("latency_ms", result.LatencyMs).Msg("Record answered")
	return result
}
