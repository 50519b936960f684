package testutil

import (
	"context"
	"log/slog"
	"sync"
)

// LogRecord is a captured slog record with its attributes flattened.
type LogRecord struct {
	Level   slog.Level
	Message string
	Attrs   map[string]any
}

// RecordingHandler is a slog.Handler that keeps every record in memory.
//
// Handlers derived with WithAttrs share the parent's record list, so a
// logger built with logger.With(...) still reports into the same recorder.
type RecordingHandler struct {
	mu      *sync.Mutex
	records *[]LogRecord
	attrs   []slog.Attr
}

// NewRecordingHandler creates an empty recorder.
func NewRecordingHandler() *RecordingHandler {
	return &RecordingHandler{
		mu:      &sync.Mutex{},
		records: &[]LogRecord{},
	}
}

// NewRecordingLogger returns a logger backed by a new RecordingHandler.
func NewRecordingLogger() (*slog.Logger, *RecordingHandler) {
	h := NewRecordingHandler()
	return slog.New(h), h
}

// Enabled records every level.
func (h *RecordingHandler) Enabled(context.Context, slog.Level) bool {
	return true
}

// Handle stores the record.
func (h *RecordingHandler) Handle(_ context.Context, r slog.Record) error {
	attrs := make(map[string]any, len(h.attrs)+r.NumAttrs())
	for _, a := range h.attrs {
		attrs[a.Key] = a.Value.Any()
	}
	r.Attrs(func(a slog.Attr) bool {
		attrs[a.Key] = a.Value.Any()
		return true
	})

	h.mu.Lock()
	defer h.mu.Unlock()
	*h.records = append(*h.records, LogRecord{
		Level:   r.Level,
		Message: r.Message,
		Attrs:   attrs,
	})
	return nil
}

// WithAttrs returns a handler that adds attrs to every record.
func (h *RecordingHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	merged := make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	merged = append(merged, h.attrs...)
	merged = append(merged, attrs...)
	return &RecordingHandler{mu: h.mu, records: h.records, attrs: merged}
}

// WithGroup ignores groups; keys stay flat.
func (h *RecordingHandler) WithGroup(string) slog.Handler {
	return h
}

// Records returns a copy of the captured records.
func (h *RecordingHandler) Records() []LogRecord {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]LogRecord, len(*h.records))
	copy(out, *h.records)
	return out
}

// Messages returns the messages logged at exactly level, in order.
func (h *RecordingHandler) Messages(level slog.Level) []string {
	var msgs []string
	for _, r := range h.Records() {
		if r.Level == level {
			msgs = append(msgs, r.Message)
		}
	}
	return msgs
}
