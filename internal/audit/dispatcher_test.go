package audit

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestDisabledDispatcherIsNil(t *testing.T) {
	d := NewDispatcher(Config{Enabled: false}, NoOpSink{})
	if d != nil {
		t.Fatal("disabled config must yield a nil dispatcher")
	}

	// Every method is safe on nil.
	d.Emit(context.Background(), Event{Type: EventLogin})
	if d.Dropped() != 0 {
		t.Fatal("nil dispatcher reported drops")
	}
	d.Close()
}

func TestDispatcherDeliversToSink(t *testing.T) {
	sink := NewChannelSink(8)
	d := NewDispatcher(Config{Enabled: true, BufferSize: 8}, sink)

	d.Emit(context.Background(), Event{Type: EventLogin, UserID: 3})

	select {
	case event := <-sink.Events():
		if event.Type != EventLogin || event.UserID != 3 {
			t.Fatalf("event = %+v", event)
		}
	case <-time.After(time.Second):
		t.Fatal("event not delivered")
	}
	d.Close()
}

func TestDispatcherCloseDrainsAndStops(t *testing.T) {
	var buf bytes.Buffer
	d := NewDispatcher(Config{Enabled: true, BufferSize: 16}, NewJSONWriterSink(&buf))

	for i := 0; i < 5; i++ {
		d.Emit(context.Background(), Event{Type: EventRefresh})
	}
	d.Close()

	lines := strings.Count(buf.String(), "\n")
	if lines != 5 {
		t.Fatalf("flushed %d events, want 5", lines)
	}

	// Emits after Close are silently discarded.
	d.Emit(context.Background(), Event{Type: EventRefresh})
	d.Close()
	if got := strings.Count(buf.String(), "\n"); got != 5 {
		t.Fatalf("post-close emit flushed: %d lines", got)
	}
}

func TestDispatcherDropsWhenFull(t *testing.T) {
	block := make(chan struct{})
	sink := blockingSink{block: block}
	d := NewDispatcher(Config{Enabled: true, BufferSize: 1, DropIfFull: true}, sink)

	// First event occupies the worker, second fills the buffer, the rest
	// must be dropped rather than block the caller.
	for i := 0; i < 6; i++ {
		d.Emit(context.Background(), Event{Type: EventOTPRequested})
	}
	if d.Dropped() == 0 {
		t.Fatal("expected drops with a full buffer")
	}
	close(block)
	d.Close()
}

type blockingSink struct {
	block chan struct{}
}

func (s blockingSink) Emit(ctx context.Context, event Event) {
	<-s.block
}

func TestJSONWriterSinkShape(t *testing.T) {
	var buf bytes.Buffer
	sink := NewJSONWriterSink(&buf)

	sink.Emit(context.Background(), Event{
		Timestamp: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		Type:      EventSessionExpired,
		Region:    "om",
		Detail:    "refresh rejected",
	})

	var decoded map[string]any
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("invalid JSON line: %v", err)
	}
	if decoded["event_type"] != "session_expired" || decoded["region"] != "om" {
		t.Fatalf("decoded = %+v", decoded)
	}
	if _, ok := decoded["user_id"]; ok {
		t.Fatal("zero user_id must be omitted")
	}
}
