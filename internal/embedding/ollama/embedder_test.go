package ollama

import (
	"context"
	"errors"
	"testing"
)

func TestEmbedder_Embed(t *testing.T) {
	embedder := NewWithFunc("tiny", func(ctx context.Context, text string) ([]float32, error) {
		return []float32{float32(len(text))}, nil
	})

	vector, err := embedder.Embed(context.Background(), "abc")
	if err != nil {
		t.Fatalf("Embed failed: %v", err)
	}
	if len(vector) != 1 || vector[0] != 3 {
		t.Errorf("unexpected vector %v", vector)
	}
	if embedder.Name() != "ollama:tiny" {
		t.Errorf("Name: %q", embedder.Name())
	}
}

func TestEmbedder_Embed_Errors(t *testing.T) {
	failing := NewWithFunc("m", func(ctx context.Context, text string) ([]float32, error) {
		return nil, errors.New("connection refused")
	})
	if _, err := failing.Embed(context.Background(), "x"); err == nil {
		t.Error("expected error from failing func")
	}

	empty := NewWithFunc("m", func(ctx context.Context, text string) ([]float32, error) {
		return nil, nil
	})
	if _, err := empty.Embed(context.Background(), "x"); err == nil {
		t.Error("expected error for empty embedding")
	}
}

func TestNewEmbedder_DefaultModel(t *testing.T) {
	if got := NewEmbedder("", "").Name(); got != "ollama:"+DefaultModel {
		t.Errorf("Name: %q", got)
	}
}
