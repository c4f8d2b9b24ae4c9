package prompt

import (
	"reflect"
	"strings"
	"testing"
)

func TestBuilder_AssembleStory(t *testing.T) {
	builder, err := NewBuilder(StoryTemplateName, Builtin()[StoryTemplateName])
	if err != nil {
		t.Fatalf("NewBuilder failed: %v", err)
	}

	got, err := builder.Assemble([]string{"first chunk", "second chunk"}, "Who won?")
	if err != nil {
		t.Fatalf("Assemble failed: %v", err)
	}

	want := "You are an AI assistant.\n\nHere is an excerpt from a story:\n\nfirst chunk\nsecond chunk\n\nNow answer this question about the story:\nWho won?\n"
	if got != want {
		t.Errorf("prompt mismatch:\n got %q\nwant %q", got, want)
	}
}

func TestBuilder_AssembleDocument(t *testing.T) {
	builder, _ := NewBuilder(DocumentTemplateName, Builtin()[DocumentTemplateName])

	got, err := builder.Assemble([]string{"ctx"}, "q?")
	if err != nil {
		t.Fatalf("Assemble failed: %v", err)
	}

	if !strings.HasPrefix(got, "You are a helpful assistant. Here is a document:") {
		t.Errorf("unexpected prefix: %q", got)
	}
	if !strings.Contains(got, "Now answer this question: q?") {
		t.Errorf("question missing: %q", got)
	}
}

func TestBuilder_VerbatimInsertion(t *testing.T) {
	builder, _ := NewBuilder("raw", "{{.Context}}|{{.Question}}")

	got, _ := builder.Assemble([]string{"<b>dup</b>", "<b>dup</b>"}, "{{.Context}} & 'quotes'")
	want := "<b>dup</b>\n<b>dup</b>|{{.Context}} & 'quotes'"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestNewBuilder_InvalidTemplate(t *testing.T) {
	if _, err := NewBuilder("broken", "{{.Context"); err == nil {
		t.Error("expected error for invalid template")
	}
}

func TestBuilder_UnknownField(t *testing.T) {
	builder, err := NewBuilder("unknown", "{{.Missing}}")
	if err != nil {
		t.Fatalf("NewBuilder failed: %v", err)
	}

	if _, err := builder.Assemble(nil, "q"); err == nil {
		t.Error("expected execution error for unknown field")
	}
}

func TestFit(t *testing.T) {
	tests := []struct {
		name          string
		chunks        []string
		budget        int
		want          []string
		wantTruncated bool
	}{
		{
			name:   "unlimited",
			chunks: []string{"aaaa", "bbbb"},
			budget: 0,
			want:   []string{"aaaa", "bbbb"},
		},
		{
			name:   "fits exactly with separator",
			chunks: []string{"aaaa", "bbbb"},
			budget: 9,
			want:   []string{"aaaa", "bbbb"},
		},
		{
			name:          "later chunk dropped",
			chunks:        []string{"aaaa", "bbbb", "cc"},
			budget:        8,
			want:          []string{"aaaa"},
			wantTruncated: true,
		},
		{
			name:          "first chunk cut",
			chunks:        []string{"abcdefgh", "ij"},
			budget:        3,
			want:          []string{"abc"},
			wantTruncated: true,
		},
		{
			name:          "cut on rune boundary",
			chunks:        []string{"héllo wörld"},
			budget:        5,
			want:          []string{"héllo"},
			wantTruncated: true,
		},
		{
			name:   "empty input",
			chunks: nil,
			budget: 10,
			want:   nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, truncated := Fit(tt.chunks, tt.budget)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Fit = %q, want %q", got, tt.want)
			}
			if truncated != tt.wantTruncated {
				t.Errorf("truncated = %v, want %v", truncated, tt.wantTruncated)
			}
		})
	}
}
