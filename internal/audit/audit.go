package audit

import (
	"context"
	"encoding/json"
	"io"
	"sync"
	"time"
)

// EventType classifies an audit event.
type EventType string

const (
	// EventLogin is emitted when a session becomes authenticated.
	EventLogin EventType = "login"
	// EventLogout is emitted when a session is cleared by the user.
	EventLogout EventType = "logout"
	// EventRefresh is emitted when a token refresh succeeds.
	EventRefresh EventType = "refresh"
	// EventRefreshFailed is emitted when a token refresh is rejected.
	EventRefreshFailed EventType = "refresh_failed"
	// EventSessionExpired is emitted when a terminal 401 clears the session.
	EventSessionExpired EventType = "session_expired"
	// EventOTPRequested is emitted when an OTP delivery is requested.
	EventOTPRequested EventType = "otp_requested"
	// EventOTPVerified is emitted when an OTP code is accepted.
	EventOTPVerified EventType = "otp_verified"
)

// Event is the canonical audit record emitted by the session and transport
// layers.
type Event struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"event_type"`
	UserID    int64     `json:"user_id,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	Region    string    `json:"region,omitempty"`
	Detail    string    `json:"detail,omitempty"`
}

// Sink receives emitted audit events.
type Sink interface {
	Emit(ctx context.Context, event Event)
}

// NoOpSink drops audit events.
type NoOpSink struct{}

// Emit implements Sink.
func (NoOpSink) Emit(context.Context, Event) {}

// ChannelSink writes audit events into a buffered channel.
type ChannelSink struct {
	events chan Event
}

// NewChannelSink returns a ChannelSink with the given buffer capacity.
func NewChannelSink(buffer int) *ChannelSink {
	if buffer <= 0 {
		buffer = 1
	}
	return &ChannelSink{
		events: make(chan Event, buffer),
	}
}

// Emit implements Sink.
func (s *ChannelSink) Emit(ctx context.Context, event Event) {
	select {
	case s.events <- event:
	case <-ctx.Done():
	}
}

// Events exposes the receiving side of the sink.
func (s *ChannelSink) Events() <-chan Event {
	return s.events
}

// JSONWriterSink writes one JSON object per line.
type JSONWriterSink struct {
	writer io.Writer
	mu     sync.Mutex
}

// NewJSONWriterSink returns a sink that serializes events to w.
func NewJSONWriterSink(w io.Writer) *JSONWriterSink {
	return &JSONWriterSink{
		writer: w,
	}
}

// Emit implements Sink.
func (s *JSONWriterSink) Emit(ctx context.Context, event Event) {
	if s == nil || s.writer == nil {
		return
	}
	data, err := json.Marshal(event)
	if err != nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, _ = s.writer.Write(data)
	_, _ = s.writer.Write([]byte("\n"))
}
