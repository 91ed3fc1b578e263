package audit

import (
	"context"
	"encoding/json"
	"io"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/redis/go-redis/v9"
)

// Event is the canonical audit record. Once emitted it is never mutated or
// deleted by the engine; sinks are expected to preserve that property.
type Event struct {
	ID           string            `json:"id"`
	Timestamp    time.Time         `json:"timestamp"`
	Action       string            `json:"action"`
	ActorID      string            `json:"actor_id,omitempty"`
	ActorKind    string            `json:"actor_kind,omitempty"`
	ResourceKind string            `json:"resource_kind,omitempty"`
	ResourceID   string            `json:"resource_id,omitempty"`
	TenantID     string            `json:"tenant_id,omitempty"`
	IP           string            `json:"ip,omitempty"`
	UserAgent    string            `json:"user_agent,omitempty"`
	Success      bool              `json:"success"`
	Error        string            `json:"error,omitempty"`
	Detail       map[string]string `json:"detail,omitempty"`
}

// NewEventID returns a lexicographically sortable event identifier.
func NewEventID(now time.Time) string {
	return ulid.MustNew(ulid.Timestamp(now), ulid.DefaultEntropy()).String()
}

// Sink receives emitted audit events.
type Sink interface {
	Emit(ctx context.Context, event Event)
}

// NoOpSink drops audit events.
type NoOpSink struct{}

func (NoOpSink) Emit(context.Context, Event) {}

// ChannelSink writes audit events into a buffered channel.
type ChannelSink struct {
	events chan Event
}

func NewChannelSink(buffer int) *ChannelSink {
	if buffer <= 0 {
		buffer = 1
	}
	return &ChannelSink{
		events: make(chan Event, buffer),
	}
}

func (s *ChannelSink) Emit(ctx context.Context, event Event) {
	select {
	case s.events <- event:
	case <-ctx.Done():
	}
}

func (s *ChannelSink) Events() <-chan Event {
	return s.events
}

// JSONWriterSink writes one JSON object per line.
type JSONWriterSink struct {
	writer io.Writer
	mu     sync.Mutex
}

func NewJSONWriterSink(w io.Writer) *JSONWriterSink {
	return &JSONWriterSink{
		writer: w,
	}
}

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

// StreamSink appends events to a Redis stream with XADD. Streams are
// append-only, which matches the immutability requirement of the audit
// trail; trimming and retention are an operator concern, not the engine's.
type StreamSink struct {
	client redis.UniversalClient
	stream string
}

func NewStreamSink(client redis.UniversalClient, stream string) *StreamSink {
	if stream == "" {
		stream = "authcore:audit"
	}
	return &StreamSink{client: client, stream: stream}
}

func (s *StreamSink) Emit(ctx context.Context, event Event) {
	if s == nil || s.client == nil {
		return
	}
	data, err := json.Marshal(event)
	if err != nil {
		return
	}

	// Best-effort append; a failed audit write never fails the operation
	// that produced the event.
	_ = s.client.XAdd(ctx, &redis.XAddArgs{
		Stream: s.stream,
		Values: map[string]interface{}{"event": data},
	}).Err()
}
