package notify

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/segmentio/kafka-go"

	"barberbook/backend/internal/domain"
	"barberbook/backend/internal/store/memory"
)

type fakeSink struct {
	publishFn func(ctx context.Context, batch []domain.Notification) error
}

func (f *fakeSink) Publish(ctx context.Context, batch []domain.Notification) error {
	if f.publishFn == nil {
		panic("Publish not configured")
	}
	return f.publishFn(ctx, batch)
}

func (f *fakeSink) Close() error { return nil }

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRelayFlush_MarksPublishedAfterSink(t *testing.T) {
	ctx := context.Background()
	st := memory.New()
	for i := 0; i < 3; i++ {
		if err := st.Enqueue(ctx, domain.Notification{Type: domain.NotificationBarberJoin, RecipientID: "a", Message: "m"}); err != nil {
			t.Fatalf("Enqueue: %v", err)
		}
	}

	var seen int
	relay := NewRelay(st, &fakeSink{publishFn: func(ctx context.Context, batch []domain.Notification) error {
		seen += len(batch)
		return nil
	}}, discardLogger(), RelayConfig{BatchSize: 2})

	n, err := relay.Flush(ctx)
	if err != nil {
		t.Fatalf("Flush: %v", err)
	}
	if n != 2 {
		t.Fatalf("first flush = %d, want 2", n)
	}
	if n, _ = relay.Flush(ctx); n != 1 {
		t.Fatalf("second flush = %d, want 1", n)
	}
	if n, _ = relay.Flush(ctx); n != 0 {
		t.Fatalf("third flush = %d, want 0", n)
	}
	if seen != 3 {
		t.Fatalf("sink saw %d, want 3", seen)
	}
}

func TestRelayFlush_SinkFailureKeepsBatch(t *testing.T) {
	ctx := context.Background()
	st := memory.New()
	if err := st.Enqueue(ctx, domain.Notification{Type: domain.NotificationBarberLeave, RecipientID: "a", Message: "m"}); err != nil {
		t.Fatalf("Enqueue: %v", err)
	}

	boom := errors.New("broker down")
	relay := NewRelay(st, &fakeSink{publishFn: func(ctx context.Context, batch []domain.Notification) error {
		return boom
	}}, discardLogger(), RelayConfig{})

	if _, err := relay.Flush(ctx); !errors.Is(err, boom) {
		t.Fatalf("err = %v, want %v", err, boom)
	}
	pending, err := st.FetchUnpublished(ctx, 10)
	if err != nil {
		t.Fatalf("FetchUnpublished: %v", err)
	}
	if len(pending) != 1 {
		t.Fatalf("pending = %d, want 1", len(pending))
	}
}

func TestRelayRun_StopsOnCancel(t *testing.T) {
	st := memory.New()
	relay := NewRelay(st, NewLogSink(discardLogger()), discardLogger(), RelayConfig{PollEvery: time.Millisecond})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		relay.Run(ctx)
		close(done)
	}()

	if err := st.Enqueue(context.Background(), domain.Notification{Type: domain.NotificationShopOwner, RecipientID: "b", Message: "m"}); err != nil {
		t.Fatalf("Enqueue: %v", err)
	}
	deadline := time.Now().Add(2 * time.Second)
	for {
		pending, _ := st.FetchUnpublished(context.Background(), 10)
		if len(pending) == 0 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("relay did not publish")
		}
		time.Sleep(5 * time.Millisecond)
	}

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("Run did not return after cancel")
	}
}

type fakeWriter struct {
	msgs []kafka.Message
}

func (f *fakeWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	f.msgs = append(f.msgs, msgs...)
	return nil
}

func (f *fakeWriter) Close() error { return nil }

func TestKafkaSink_KeysByRecipient(t *testing.T) {
	w := &fakeWriter{}
	sink := &KafkaSink{writer: w}
	id := uuid.MustParse("00000000-0000-0000-0000-000000000042")

	err := sink.Publish(context.Background(), []domain.Notification{{
		ID:          id,
		Type:        domain.NotificationAppointmentCancel,
		RecipientID: "c1",
		Message:     "cancelada",
		Reason:      "lluvia",
	}})
	if err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if len(w.msgs) != 1 {
		t.Fatalf("messages = %d, want 1", len(w.msgs))
	}
	msg := w.msgs[0]
	if string(msg.Key) != "c1" {
		t.Fatalf("key = %q, want c1", msg.Key)
	}
	if len(msg.Headers) != 2 || string(msg.Headers[0].Value) != id.String() || string(msg.Headers[1].Value) != "appointment_cancel" {
		t.Fatalf("headers = %+v", msg.Headers)
	}

	var ev Event
	if err := json.Unmarshal(msg.Value, &ev); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if ev.ID != id || ev.Reason != "lluvia" {
		t.Fatalf("event = %+v", ev)
	}
}

func TestNewKafkaSink_RequiresBrokersAndTopic(t *testing.T) {
	if _, err := NewKafkaSink(nil, "t"); err == nil {
		t.Fatalf("expected error without brokers")
	}
	if _, err := NewKafkaSink([]string{"localhost:9092"}, " "); err == nil {
		t.Fatalf("expected error without topic")
	}
}

type fakeStream struct {
	args []*redis.XAddArgs
	err  error
}

func (f *fakeStream) XAdd(ctx context.Context, a *redis.XAddArgs) *redis.StringCmd {
	f.args = append(f.args, a)
	return redis.NewStringResult("1-0", f.err)
}

func TestRedisSink_AppendsToStream(t *testing.T) {
	fs := &fakeStream{}
	sink := &RedisSink{client: fs, stream: "barberbook:notifications"}

	batch := []domain.Notification{
		{ID: uuid.New(), Type: domain.NotificationBarberJoin, RecipientID: "a"},
		{ID: uuid.New(), Type: domain.NotificationBarberLeave, RecipientID: "a"},
	}
	if err := sink.Publish(context.Background(), batch); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if len(fs.args) != 2 {
		t.Fatalf("xadd calls = %d, want 2", len(fs.args))
	}
	values, ok := fs.args[1].Values.(map[string]any)
	if !ok {
		t.Fatalf("values type = %T", fs.args[1].Values)
	}
	if fs.args[1].Stream != "barberbook:notifications" || values["event_type"] != "barber_leave" {
		t.Fatalf("args = %+v", fs.args[1])
	}

	fs.err = errors.New("READONLY")
	if err := sink.Publish(context.Background(), batch[:1]); err == nil {
		t.Fatalf("expected error")
	}
}

func TestSplitBrokers(t *testing.T) {
	got := SplitBrokers(" a:9092, ,b:9092,")
	if len(got) != 2 || got[0] != "a:9092" || got[1] != "b:9092" {
		t.Fatalf("got %q", got)
	}
}
