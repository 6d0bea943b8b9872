package diag

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Sink receives diagnostic events from pipeline components.
// Components never touch a global logger; a Sink is passed in explicitly.
type Sink interface {
	Record(event string, fields map[string]any)
}

// Nop discards every event
type Nop struct{}

// Record implements Sink
func (Nop) Record(string, map[string]any) {}

// OrNop returns s, or Nop when s is nil
func OrNop(s Sink) Sink {
	if s == nil {
		return Nop{}
	}
	return s
}

// ZapSink writes events as structured zap log entries
type ZapSink struct {
	logger *zap.Logger
}

// NewZapSink creates a sink backed by logger
func NewZapSink(logger *zap.Logger) *ZapSink {
	return &ZapSink{logger: logger}
}

// Record implements Sink. Fields are emitted in key order.
func (s *ZapSink) Record(event string, fields map[string]any) {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	zf := make([]zap.Field, 0, len(keys))
	for _, k := range keys {
		zf = append(zf, zap.Any(k, fields[k]))
	}

	if strings.HasSuffix(event, ".error") || strings.HasPrefix(event, "evidence.missing") {
		s.logger.Warn(event, zf...)
		return
	}
	s.logger.Info(event, zf...)
}

// NewLogger builds a zap logger for the given level and format (console or json)
func NewLogger(level, format string) (*zap.Logger, error) {
	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("parse log level %q: %w", level, err)
	}

	var config zap.Config
	switch format {
	case "json":
		config = zap.NewProductionConfig()
	case "console", "":
		config = zap.NewDevelopmentConfig()
	default:
		return nil, fmt.Errorf("unknown log format: %s (supported: console, json)", format)
	}
	config.Level = zap.NewAtomicLevelAt(lvl)
	config.OutputPaths = []string{"stderr"}

	logger, err := config.Build()
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	return logger, nil
}

// Event is one recorded diagnostic
type Event struct {
	Name   string
	Fields map[string]any
}

// Recorder keeps events in memory (thread-safe)
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

// Record implements Sink
func (r *Recorder) Record(event string, fields map[string]any) {
	r.mu.Lock()
	defer r.mu.Unlock()

	copied := make(map[string]any, len(fields))
	for k, v := range fields {
		copied[k] = v
	}
	r.events = append(r.events, Event{Name: event, Fields: copied})
}

// Events returns all recorded events
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

// Named returns the recorded events with the given name
func (r *Recorder) Named(name string) []Event {
	var out []Event
	for _, e := range r.Events() {
		if e.Name == name {
			out = append(out, e)
		}
	}
	return out
}
