package batch

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func newTestLogger() *zerolog.Logger {
	logger := zerolog.Nop()
	return &logger
}

func readAll(t *testing.T, input string) []InputRecord {
	t.Helper()
	var records []InputRecord
	for record := range NewReader(strings.NewReader(input), newTestLogger()).ReadAll(context.Background()) {
		records = append(records, record)
	}
	return records
}

func TestReader_InvalidFile(t *testing.T) {
	records := readAll(t, "invalid file content")

	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	if !errors.Is(records[0].Error, ErrInvalidRecord) {
		t.Errorf("expected ErrInvalidRecord for invalid JSON, got %v", records[0].Error)
	}
}

func TestReader_ValidFile(t *testing.T) {
	input := `{"id":"q-1","question":"Who is Alice?"}
  {"question":"  What did Bob find?  ","k":2}

{"id":"q-3","question":"Where is the hill?"}`

	records := readAll(t, input)
	if len(records) != 3 {
		t.Fatalf("expected 3 records, got %d", len(records))
	}
	for _, record := range records {
		if record.Error != nil {
			t.Errorf("line %d: unexpected error %v", record.LineNumber, record.Error)
		}
	}

	second := records[1]
	if second.Request.ID != "line-2" {
		t.Errorf("expected generated id line-2, got %q", second.Request.ID)
	}
	if second.Request.Question != "What did Bob find?" || second.Request.K != 2 {
		t.Errorf("unexpected request %+v", second.Request)
	}
	if records[2].LineNumber != 4 {
		t.Errorf("expected line numbers to count blank lines, got %d", records[2].LineNumber)
	}
}

func TestReader_InvalidRecords(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"missing question", `{"id":"q-1"}`},
		{"blank question", `{"id":"q-1","question":"   "}`},
		{"negative k", `{"question":"x","k":-1}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records := readAll(t, tt.input)
			if len(records) != 1 || !errors.Is(records[0].Error, ErrInvalidRecord) {
				t.Errorf("expected one invalid record, got %+v", records)
			}
		})
	}
}

func TestReader_ContextCancellation(t *testing.T) {
	var lines []string
	for i := 0; i < 100; i++ {
		lines = append(lines, `{"question":"test"}`)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	reader := NewReader(strings.NewReader(strings.Join(lines, "\n")), newTestLogger())

	ch := reader.ReadAll(ctx)
	count := 0
	for range ch {
		count++
		if count == 5 {
			cancel() // Cancel after 5 records
			break
		}
	}

	// Should have stopped early
	if count >= 100 {
		t.Errorf("expected early cancellation, but read all records")
	}
}
