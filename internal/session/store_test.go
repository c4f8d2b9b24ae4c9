package session

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/povarna/generative-ai-agents/doc-qa/internal/corpus"
	"github.com/redis/go-redis/v9"
)

var integration = flag.Bool("integration", false, "run tests against a live Redis")

type axisEmbedder struct{}

func (axisEmbedder) Name() string { return "axis" }

func (axisEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	return []float32{float32(len(text)), 1}, nil
}

func buildCorpus(t *testing.T, name string, chunks ...string) *corpus.Corpus {
	t.Helper()
	c, err := corpus.Build(context.Background(), corpus.Source{Document: name, Checksum: "sum-" + name}, chunks, axisEmbedder{})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	return c
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	if _, err := store.Get(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	first := buildCorpus(t, "a.txt", "one")
	second := buildCorpus(t, "b.txt", "two", "three")

	if err := store.Put(ctx, "s1", first); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if err := store.Put(ctx, "s2", second); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	got, _ := store.Get(ctx, "s1")
	if got != first {
		t.Error("session s1 returned another session's corpus")
	}

	replacement := buildCorpus(t, "c.txt", "four")
	_ = store.Put(ctx, "s1", replacement)
	got, _ = store.Get(ctx, "s1")
	if got != replacement {
		t.Error("upload did not replace the session corpus")
	}

	_ = store.Delete(ctx, "s1")
	if _, err := store.Get(ctx, "s1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
	if store.Len() != 1 {
		t.Errorf("expected 1 remaining session, got %d", store.Len())
	}
}

func TestMemoryStore_Concurrent(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	c := buildCorpus(t, "a.txt", "one")

	var wg sync.WaitGroup
	for i := range 50 {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := fmt.Sprintf("s%d", i%5)
			_ = store.Put(ctx, id, c)
			_, _ = store.Get(ctx, id)
		}(i)
	}
	wg.Wait()

	if store.Len() != 5 {
		t.Errorf("expected 5 sessions, got %d", store.Len())
	}
}

func TestSnapshotCodec(t *testing.T) {
	original := buildCorpus(t, "story.txt", "Alice.", "Bob and Carol.")

	data, err := encodeSnapshot(original)
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}

	restored, err := decodeSnapshot(data)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}

	if !reflect.DeepEqual(restored.Snapshot(), original.Snapshot()) {
		t.Errorf("restored corpus differs:\n got %+v\nwant %+v", restored.Snapshot(), original.Snapshot())
	}
}

func TestDecodeSnapshot_Corrupt(t *testing.T) {
	if _, err := decodeSnapshot([]byte("{not json")); err == nil {
		t.Error("expected error for corrupt snapshot")
	}

	if _, err := decodeSnapshot([]byte(`{"chunks":["a"],"vectors":[]}`)); err == nil {
		t.Error("expected error for chunk/vector count mismatch")
	}
}

func TestNewRedisStore_DefaultTTL(t *testing.T) {
	store := NewRedisStore(nil, 0)
	if store.ttl != DefaultTTL {
		t.Errorf("expected default TTL %v, got %v", DefaultTTL, store.ttl)
	}
	if store.key("abc") != "docqa:session:abc" {
		t.Errorf("unexpected key %q", store.key("abc"))
	}
}

func TestRedisStore_Integration(t *testing.T) {
	if !*integration {
		t.Skip("skipping integration test; use -integration to run")
	}

	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}

	ctx := context.Background()
	client := redis.NewClient(&redis.Options{Addr: addr})
	defer client.Close()

	store := NewRedisStore(client, time.Minute)
	id := uuid.NewString()
	defer store.Delete(ctx, id)

	if _, err := store.Get(ctx, id); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	original := buildCorpus(t, "story.txt", "Alice.", "Bob.")
	if err := store.Put(ctx, id, original); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	got, err := store.Get(ctx, id)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Len() != 2 || got.Embedder() != "axis" {
		t.Errorf("unexpected corpus %+v", got.Snapshot())
	}

	ttl, _ := client.TTL(ctx, store.key(id)).Result()
	if ttl <= 0 || ttl > time.Minute {
		t.Errorf("unexpected TTL %v", ttl)
	}
}
