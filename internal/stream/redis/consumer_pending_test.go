package redis

import (
	"context"
	"errors"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// fakeStreams keeps one consumer's view of a stream: undelivered entries and
// its pending list. Unused Cmdable methods panic through the nil embed.
type fakeStreams struct {
	redis.Cmdable

	undelivered []redis.XMessage
	pending     []redis.XMessage
	requested   []string
	acked       []string
	published   []map[string]interface{}
	failPublish int
	idle        int
	onIdle      func(idle int)
}

func (f *fakeStreams) XReadGroup(_ context.Context, a *redis.XReadGroupArgs) *redis.XStreamSliceCmd {
	stream, id := a.Streams[0], a.Streams[1]
	f.requested = append(f.requested, id)

	if id == ">" {
		if len(f.undelivered) == 0 {
			f.idle++
			f.onIdle(f.idle)
			return redis.NewXStreamSliceCmdResult(nil, redis.Nil)
		}
		msg := f.undelivered[0]
		f.undelivered = f.undelivered[1:]
		f.pending = append(f.pending, msg)
		return redis.NewXStreamSliceCmdResult([]redis.XStream{{Stream: stream, Messages: []redis.XMessage{msg}}}, nil)
	}

	var msgs []redis.XMessage
	for _, msg := range f.pending {
		if msg.ID > id && int64(len(msgs)) < a.Count {
			msgs = append(msgs, msg)
		}
	}
	return redis.NewXStreamSliceCmdResult([]redis.XStream{{Stream: stream, Messages: msgs}}, nil)
}

func (f *fakeStreams) XAdd(_ context.Context, a *redis.XAddArgs) *redis.StringCmd {
	if f.failPublish > 0 {
		f.failPublish--
		return redis.NewStringResult("", errors.New("READONLY You can't write against a read only replica"))
	}
	f.published = append(f.published, a.Values.(map[string]interface{}))
	return redis.NewStringResult("100-0", nil)
}

func (f *fakeStreams) XAck(_ context.Context, _, _ string, ids ...string) *redis.IntCmd {
	for _, id := range ids {
		for i, msg := range f.pending {
			if msg.ID == id {
				f.pending = append(f.pending[:i], f.pending[i+1:]...)
				break
			}
		}
		f.acked = append(f.acked, id)
	}
	return redis.NewIntResult(int64(len(ids)), nil)
}

func questionEntry(id, payload string) redis.XMessage {
	return redis.XMessage{ID: id, Values: map[string]interface{}{"payload": payload}}
}

func runConsumer(t *testing.T, fake *fakeStreams, stopAfterIdle int) {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	fake.onIdle = func(idle int) {
		if idle >= stopAfterIdle {
			cancel()
		}
	}

	logger := zerolog.Nop()
	cfg := NewRedisStreamConfig("questions", "answers", "group", "worker-1")
	consumer := NewConsumer(fake, cfg, echoAsker{}, nil, &logger)

	if err := consumer.Start(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestConsumer_FailedPublishIsRetried(t *testing.T) {
	fake := &fakeStreams{
		undelivered: []redis.XMessage{questionEntry("1-0", `{"id":"q-1","question":"hello"}`)},
		failPublish: 1,
	}

	runConsumer(t, fake, 1)

	if len(fake.acked) != 1 || fake.acked[0] != "1-0" {
		t.Fatalf("expected 1-0 to be ACKed after the retry, got %v (reads %v)", fake.acked, fake.requested)
	}
	if len(fake.published) != 1 || fake.published[0]["answer"] != "echo: hello" {
		t.Errorf("expected one published answer, got %v", fake.published)
	}
	if len(fake.pending) != 0 {
		t.Errorf("expected empty pending list, got %v", fake.pending)
	}
}

func TestConsumer_RestartDrainsPendingFirst(t *testing.T) {
	fake := &fakeStreams{
		pending: []redis.XMessage{
			questionEntry("1-0", `{"id":"q-1","question":"first"}`),
			questionEntry("2-0", "not json"),
		},
		undelivered: []redis.XMessage{questionEntry("3-0", `{"id":"q-3","question":"third"}`)},
	}

	runConsumer(t, fake, 1)

	if fake.requested[0] != "0" {
		t.Errorf("expected the pending list to be read first, got reads %v", fake.requested)
	}
	want := []string{"1-0", "2-0", "3-0"}
	if len(fake.acked) != len(want) {
		t.Fatalf("expected ACKs %v, got %v", want, fake.acked)
	}
	for i := range want {
		if fake.acked[i] != want[i] {
			t.Errorf("ack %d: got %s, want %s", i, fake.acked[i], want[i])
		}
	}
	if len(fake.published) != 2 {
		t.Errorf("expected answers for the two valid questions, got %d", len(fake.published))
	}
}

func TestConsumer_PersistentPublishFailureStaysPending(t *testing.T) {
	fake := &fakeStreams{
		pending:     []redis.XMessage{questionEntry("1-0", `{"id":"q-1","question":"hello"}`)},
		failPublish: 100,
	}

	runConsumer(t, fake, 3)

	if len(fake.acked) != 0 || len(fake.pending) != 1 {
		t.Errorf("expected the entry to stay pending, acked=%v pending=%d", fake.acked, len(fake.pending))
	}

	pendingReads := 0
	for _, id := range fake.requested {
		if id == "0" {
			pendingReads++
		}
	}
	if pendingReads < 2 {
		t.Errorf("expected the pending list to be retried between reads, got reads %v", fake.requested)
	}
}
