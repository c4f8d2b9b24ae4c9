package gpt

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/openai/openai-go/option"
)

func TestNewEmbedder_RequiresKey(t *testing.T) {
	if _, err := NewEmbedder("", ""); err == nil {
		t.Error("expected error for missing api key")
	}
}

func TestEmbedder_Embed(t *testing.T) {
	var gotModel, gotInput string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		gotModel, _ = body["model"].(string)
		gotInput, _ = body["input"].(string)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"object": "list",
			"data": [{"object": "embedding", "index": 0, "embedding": [0.5, -0.25]}],
			"model": "text-embedding-3-small",
			"usage": {"prompt_tokens": 1, "total_tokens": 1}
		}`))
	}))
	defer server.Close()

	embedder, err := NewEmbedder("test-key", "", option.WithBaseURL(server.URL+"/"), option.WithMaxRetries(0))
	if err != nil {
		t.Fatalf("NewEmbedder failed: %v", err)
	}

	vector, err := embedder.Embed(context.Background(), "what happened?")
	if err != nil {
		t.Fatalf("Embed failed: %v", err)
	}

	if len(vector) != 2 || vector[0] != 0.5 || vector[1] != -0.25 {
		t.Errorf("unexpected vector %v", vector)
	}
	if gotModel != DefaultModel {
		t.Errorf("expected model %s, got %s", DefaultModel, gotModel)
	}
	if gotInput != "what happened?" {
		t.Errorf("expected input to be forwarded, got %q", gotInput)
	}
	if embedder.Name() != "openai:"+DefaultModel {
		t.Errorf("Name: %q", embedder.Name())
	}
}

func TestEmbedder_Embed_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	embedder, _ := NewEmbedder("test-key", "m", option.WithBaseURL(server.URL+"/"), option.WithMaxRetries(0))

	if _, err := embedder.Embed(context.Background(), "x"); err == nil {
		t.Error("expected error on server failure")
	}
}
