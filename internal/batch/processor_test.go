package batch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/povarna/generative-ai-agents/doc-qa/internal/corpus"
	"github.com/povarna/generative-ai-agents/doc-qa/internal/generator"
	"github.com/povarna/generative-ai-agents/doc-qa/internal/qa"
	"github.com/povarna/generative-ai-agents/doc-qa/internal/retriever"
)

type fakeAsker struct {
	calls atomic.Int32
}

func (f *fakeAsker) AskK(_ context.Context, _ *corpus.Corpus, question string, k int) (*qa.Answer, error) {
	f.calls.Add(1)
	if strings.HasPrefix(question, "fail") {
		return nil, fmt.Errorf("%w: throttled", generator.ErrGenerationService)
	}
	return &qa.Answer{
		Question: question,
		Text:     fmt.Sprintf("%s (k=%d)", question, k),
		Sources:  []retriever.Match{{Position: 1, Distance: 0.25, Text: "B."}},
	}, nil
}

func collect(ch <-chan Result) []Result {
	var results []Result
	for r := range ch {
		results = append(results, r)
	}
	sort.Slice(results, func(i, j int) bool { return results[i].Line < results[j].Line })
	return results
}

func TestProcessor_Process(t *testing.T) {
	records := []InputRecord{
		{LineNumber: 1, Request: Request{ID: "a", Question: "alpha", K: 2}},
		{LineNumber: 2, Request: Request{ID: "b", Question: "fail beta"}},
		{LineNumber: 3, Error: fmt.Errorf("%w: line 3: missing question", ErrInvalidRecord)},
		{LineNumber: 4, Request: Request{ID: "d", Question: "delta"}},
	}

	asker := &fakeAsker{}
	results := collect(NewProcessor(asker, nil, 3, newTestLogger()).Process(context.Background(), records))

	if len(results) != 4 {
		t.Fatalf("expected 4 results, got %d", len(results))
	}
	if asker.calls.Load() != 3 {
		t.Errorf("invalid records must not reach the asker, got %d calls", asker.calls.Load())
	}

	if results[0].Answer != "alpha (k=2)" || len(results[0].Sources) != 1 || results[0].Sources[0].Position != 1 {
		t.Errorf("unexpected first result %+v", results[0])
	}
	if !results[1].Failed() || !strings.Contains(results[1].Error, "generation service error") {
		t.Errorf("expected generation failure, got %+v", results[1])
	}
	if !results[2].Failed() {
		t.Errorf("expected invalid record to fail, got %+v", results[2])
	}
	if results[3].Failed() {
		t.Errorf("unexpected failure %+v", results[3])
	}
}

func TestProcessor_CancelledContext(t *testing.T) {
	records := make([]InputRecord, 50)
	for i := range records {
		records[i] = InputRecord{LineNumber: i + 1, Request: Request{Question: "q"}}
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	asker := &fakeAsker{}
	results := collect(NewProcessor(asker, nil, 2, newTestLogger()).Process(ctx, records))

	if len(results) >= len(records) {
		t.Errorf("expected cancellation to stop processing, got %d results", len(results))
	}
}

func TestWriter_JSONL(t *testing.T) {
	var buf bytes.Buffer
	w, err := NewWriter(&buf, FormatJSONL, newTestLogger())
	if err != nil {
		t.Fatalf("NewWriter failed: %v", err)
	}

	_ = w.Write(Result{ID: "a", Line: 1, Question: "q", Answer: "yes", LatencyMs: 10})
	_ = w.Write(Result{ID: "b", Line: 2, Question: "q", Error: "boom"})
	if err := w.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d: %q", len(lines), buf.String())
	}

	var first Result
	if err := json.Unmarshal([]byte(lines[0]), &first); err != nil {
		t.Fatalf("invalid JSON line: %v", err)
	}
	if first.ID != "a" || first.Answer != "yes" {
		t.Errorf("unexpected first line %+v", first)
	}
}

func TestWriter_Summary(t *testing.T) {
	var buf bytes.Buffer
	w, _ := NewWriter(&buf, FormatSummary, newTestLogger())

	_ = w.Write(Result{ID: "a", LatencyMs: 10})
	_ = w.Write(Result{ID: "b", LatencyMs: 30})
	_ = w.Write(Result{ID: "c", Error: "boom"})

	if buf.Len() != 0 {
		t.Errorf("summary format must not write per result, got %q", buf.String())
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	var got Summary
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("invalid summary: %v", err)
	}
	want := Summary{Total: 3, Answered: 2, Failed: 1, AvgLatencyMs: 20}
	if got != want {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestNewWriter_UnsupportedFormat(t *testing.T) {
	if _, err := NewWriter(&bytes.Buffer{}, "csv", newTestLogger()); err == nil {
		t.Error("expected error for unsupported format")
	}
}
