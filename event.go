package goPerm

import (
	"context"
	"encoding/json"
	"io"
	"sync"
	"time"
)

const (
	// EventAdminChanged is emitted after construction, transfer, and
	// renounce. Admin carries the new admin (empty once renounced).
	EventAdminChanged = "admin_changed"
	// EventPermissionChanged is emitted after every successful mask
	// mutation. Mask carries the post-update value.
	EventPermissionChanged = "permission_changed"
)

// Event is an observable notification for external bookkeeping. Events
// are emitted only after a successful state change and carry no
// transactional meaning beyond logging.
type Event struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	EventType string    `json:"event_type"`
	Principal string    `json:"principal,omitempty"`
	Admin     string    `json:"admin,omitempty"`
	Mask      uint8     `json:"mask"`
	IP        string    `json:"ip,omitempty"`
}

type EventSink interface {
	Emit(ctx context.Context, event Event)
}

type NoOpSink struct{}

func (NoOpSink) Emit(context.Context, Event) {}

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
