package audit

import (
	"context"
	"encoding/json"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/MrEthical07/authcore/internal/logging"
)

// Event is one security-relevant outcome. It never carries passwords or
// token values.
type Event struct {
	Timestamp time.Time         `json:"timestamp"`
	EventType string            `json:"event_type"`
	AccountID string            `json:"account_id,omitempty"`
	IP        string            `json:"ip,omitempty"`
	Success   bool              `json:"success"`
	Error     string            `json:"error,omitempty"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

// attrs flattens e into key-value pairs for a structured logger. Metadata
// keys are prefixed with "meta." so they cannot shadow the fixed fields.
func (e Event) attrs() []any {
	args := make([]any, 0, 10+2*len(e.Metadata))
	args = append(args, "event_type", e.EventType, "success", e.Success)
	if e.AccountID != "" {
		args = append(args, "account_id", e.AccountID)
	}
	if e.IP != "" {
		args = append(args, "ip", e.IP)
	}
	if e.Error != "" {
		args = append(args, "error_code", e.Error)
	}
	for k, v := range e.Metadata {
		args = append(args, "meta."+k, v)
	}
	return args
}

// Sink receives emitted audit events.
type Sink interface {
	Emit(ctx context.Context, event Event)
}

// NoOpSink drops audit events.
type NoOpSink struct{}

func (NoOpSink) Emit(context.Context, Event) {}

// ChannelSink hands events to a consumer through a buffered channel. Emit
// blocks until there is room or ctx is done.
type ChannelSink struct {
	events chan Event
}

func NewChannelSink(buffer int) *ChannelSink {
	if buffer <= 0 {
		buffer = 1
	}
	return &ChannelSink{events: make(chan Event, buffer)}
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

// JSONWriterSink appends one JSON document per event to w. Encoding and
// write errors are counted, not returned.
type JSONWriterSink struct {
	mu       sync.Mutex
	enc      *json.Encoder
	failures atomic.Uint64
}

func NewJSONWriterSink(w io.Writer) *JSONWriterSink {
	if w == nil {
		w = io.Discard
	}
	return &JSONWriterSink{enc: json.NewEncoder(w)}
}

func (s *JSONWriterSink) Emit(_ context.Context, event Event) {
	if s == nil {
		return
	}
	s.mu.Lock()
	err := s.enc.Encode(event)
	s.mu.Unlock()
	if err != nil {
		s.failures.Add(1)
	}
}

// Failures is the number of events that could not be written.
func (s *JSONWriterSink) Failures() uint64 {
	if s == nil {
		return 0
	}
	return s.failures.Load()
}

// LoggerSink writes events into the structured log: successes at Info,
// failures at Warn.
type LoggerSink struct {
	log logging.Logger
}

func NewLoggerSink(log logging.Logger) *LoggerSink {
	if log == nil {
		log = logging.Nop()
	}
	return &LoggerSink{log: log}
}

func (s *LoggerSink) Emit(ctx context.Context, event Event) {
	if event.Success {
		s.log.Info(ctx, "audit", event.attrs()...)
		return
	}
	s.log.Warn(ctx, "audit", event.attrs()...)
}

// FuncSink adapts a plain function to Sink.
type FuncSink func(ctx context.Context, event Event)

func (f FuncSink) Emit(ctx context.Context, event Event) {
	if f != nil {
		f(ctx, event)
	}
}
