package goPerm

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

type countingSink struct {
	count atomic.Int64
}

func (s *countingSink) Emit(context.Context, Event) {
	s.count.Add(1)
}

func (s *countingSink) Count() int64 {
	return s.count.Load()
}

type gateSink struct {
	gate chan struct{}
}

func newGateSink() *gateSink {
	return &gateSink{
		gate: make(chan struct{}),
	}
}

func (s *gateSink) Emit(context.Context, Event) {
	<-s.gate
}

func TestEventsDisabledNoSinkCalls(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Events.Enabled = false

	sink := &countingSink{}
	reg, err := New().WithConfig(cfg).WithInitialAdmin(adminA).WithEventSink(sink).Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	defer reg.Close()

	if err := reg.SetPermission(context.Background(), adminA, userX, 0x01); err != nil {
		t.Fatalf("SetPermission failed: %v", err)
	}
	time.Sleep(30 * time.Millisecond)

	if sink.Count() != 0 {
		t.Fatalf("expected no sink calls when disabled, got %d", sink.Count())
	}
}

func TestEventCarriesClientIP(t *testing.T) {
	reg, sink := newEventTestRegistry(t)

	waitEvent(t, sink) // construction admin_changed

	ctx := WithClientIP(context.Background(), "198.51.100.33")
	if err := reg.SetPermission(ctx, adminA, userX, 0x01); err != nil {
		t.Fatalf("SetPermission failed: %v", err)
	}

	ev := waitEvent(t, sink)
	if ev.IP != "198.51.100.33" {
		t.Fatalf("expected IP 198.51.100.33, got %q", ev.IP)
	}
}

func TestEventBufferFullDropIfFullTrueDoesNotBlock(t *testing.T) {
	sink := newGateSink()
	dispatcher := newEventDispatcher(EventConfig{
		Enabled:    true,
		BufferSize: 1,
		DropIfFull: true,
	}, sink)
	defer func() {
		close(sink.gate)
		dispatcher.Close()
	}()

	dispatcher.Emit(context.Background(), Event{EventType: "e1"})
	dispatcher.Emit(context.Background(), Event{EventType: "e2"})

	start := time.Now()
	dispatcher.Emit(context.Background(), Event{EventType: "e3"})
	if time.Since(start) > 100*time.Millisecond {
		t.Fatal("expected non-blocking emit when DropIfFull is true")
	}
	if dispatcher.Dropped() == 0 {
		t.Fatal("expected dropped counter to increment when queue is full")
	}
}

func TestEventBufferFullDropIfFullFalseBlocksUntilSpace(t *testing.T) {
	sink := newGateSink()
	dispatcher := newEventDispatcher(EventConfig{
		Enabled:    true,
		BufferSize: 1,
		DropIfFull: false,
	}, sink)
	defer func() {
		close(sink.gate)
		dispatcher.Close()
	}()

	dispatcher.Emit(context.Background(), Event{EventType: "e1"})
	dispatcher.Emit(context.Background(), Event{EventType: "e2"})

	done := make(chan struct{})
	go func() {
		dispatcher.Emit(context.Background(), Event{EventType: "e3"})
		close(done)
	}()

	select {
	case <-done:
		t.Fatal("expected emit to block while buffer is full")
	case <-time.After(150 * time.Millisecond):
	}

	sink.gate <- struct{}{}

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("expected blocked emit to proceed after space is available")
	}
}

func TestJSONWriterSinkWritesJSONLines(t *testing.T) {
	var buf syncBuffer
	sink := NewJSONWriterSink(&buf)
	event := Event{
		ID:        "ev-1",
		Timestamp: time.Now().UTC(),
		EventType: EventPermissionChanged,
		Principal: "principal-X",
		Mask:      0x08,
	}
	sink.Emit(context.Background(), event)

	if !buf.Contains("permission_changed") {
		t.Fatal("expected JSON log line to contain event type")
	}
	if !buf.Contains("\"principal\":\"principal-X\"") {
		t.Fatal("expected JSON log line to contain principal")
	}
	if !buf.Contains("\"mask\":8") {
		t.Fatal("expected JSON log line to contain mask")
	}
}

func TestDispatcherCloseIdempotentAndEmitAfterCloseSafe(t *testing.T) {
	dispatcher := newEventDispatcher(EventConfig{
		Enabled:    true,
		BufferSize: 4,
		DropIfFull: true,
	}, &countingSink{})

	dispatcher.Emit(context.Background(), Event{EventType: "e1"})
	dispatcher.Close()
	dispatcher.Close()
	dispatcher.Emit(context.Background(), Event{EventType: "e2"})
}

type syncBuffer struct {
	mu  sync.Mutex
	buf []byte
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.buf = append(b.buf, p...)
	return len(p), nil
}

func (b *syncBuffer) Contains(v string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return stringContains(string(b.buf), v)
}

func stringContains(s, sub string) bool {
	if len(sub) == 0 {
		return true
	}
	if len(sub) > len(s) {
		return false
	}
	for i := 0; i <= len(s)-len(sub); i++ {
		if s[i:i+len(sub)] == sub {
			return true
		}
	}
	return false
}
