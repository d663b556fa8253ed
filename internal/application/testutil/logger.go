// Package testutil provides in-memory doubles for application layer tests.
package testutil

import (
	"sync"

	"github.com/applytrack/applytrack/internal/shared/logger"
)

// LogEntry records a log call.
type LogEntry struct {
	Level   string
	Message string
	Fields  map[string]interface{}
}

// MockLogger records every entry. Loggers derived with With share the
// parent's entries and carry its fields.
type MockLogger struct {
	mu      *sync.Mutex
	entries *[]LogEntry
	fields  []interface{}
}

func NewMockLogger() *MockLogger {
	return &MockLogger{mu: &sync.Mutex{}, entries: &[]LogEntry{}}
}

func (m *MockLogger) Debug(msg string, args ...any) { m.log("DEBUG", msg, args...) }
func (m *MockLogger) Info(msg string, args ...any)  { m.log("INFO", msg, args...) }
func (m *MockLogger) Warn(msg string, args ...any)  { m.log("WARN", msg, args...) }
func (m *MockLogger) Error(msg string, args ...any) { m.log("ERROR", msg, args...) }

func (m *MockLogger) Debugw(msg string, keysAndValues ...any) { m.log("DEBUG", msg, keysAndValues...) }
func (m *MockLogger) Infow(msg string, keysAndValues ...any)  { m.log("INFO", msg, keysAndValues...) }
func (m *MockLogger) Warnw(msg string, keysAndValues ...any)  { m.log("WARN", msg, keysAndValues...) }
func (m *MockLogger) Errorw(msg string, keysAndValues ...any) { m.log("ERROR", msg, keysAndValues...) }

func (m *MockLogger) With(args ...any) logger.Interface {
	fields := append(append([]interface{}{}, m.fields...), args...)
	return &MockLogger{mu: m.mu, entries: m.entries, fields: fields}
}

func (m *MockLogger) Named(name string) logger.Interface {
	return m.With("logger", name)
}

func (m *MockLogger) log(level, msg string, kv ...interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry := LogEntry{Level: level, Message: msg, Fields: make(map[string]interface{})}
	all := append(append([]interface{}{}, m.fields...), kv...)
	for i := 0; i+1 < len(all); i += 2 {
		if key, ok := all[i].(string); ok {
			entry.Fields[key] = all[i+1]
		}
	}
	*m.entries = append(*m.entries, entry)
}

// Entries returns a copy of all recorded entries.
func (m *MockLogger) Entries() []LogEntry {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]LogEntry(nil), *m.entries...)
}

// EntriesAt returns entries logged at level.
func (m *MockLogger) EntriesAt(level string) []LogEntry {
	var out []LogEntry
	for _, e := range m.Entries() {
		if e.Level == level {
			out = append(out, e)
		}
	}
	return out
}
