package logger

import (
	"sync"
)

// MockLogger is a logger implementation for testing.
type MockLogger struct {
	Messages *[]LogMessage
	attrs    []any
	mu       sync.Mutex
}

// LogMessage represents a logged message for testing.
type LogMessage struct {
	Level string
	Msg   string
	Args  []any
}

// NewMockLogger creates a new mock logger for testing.
func NewMockLogger() *MockLogger {
	messages := make([]LogMessage, 0)
	return &MockLogger{
		Messages: &messages,
	}
}

// Debug logs a debug message.
func (m *MockLogger) Debug(msg string, args ...any) {
	m.record("DEBUG", msg, args)
}

// Info logs an info message.
func (m *MockLogger) Info(msg string, args ...any) {
	m.record("INFO", msg, args)
}

// Warn logs a warning message.
func (m *MockLogger) Warn(msg string, args ...any) {
	m.record("WARN", msg, args)
}

// Error logs an error message.
func (m *MockLogger) Error(msg string, args ...any) {
	m.record("ERROR", msg, args)
}

// With returns a new logger carrying additional attributes.
func (m *MockLogger) With(args ...any) Logger {
	m.mu.Lock()
	defer m.mu.Unlock()
	return &MockLogger{
		Messages: m.Messages,
		attrs:    append(append([]any{}, m.attrs...), args...),
	}
}

func (m *MockLogger) record(level, msg string, args []any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	merged := append(append([]any{}, m.attrs...), args...)
	*m.Messages = append(*m.Messages, LogMessage{Level: level, Msg: msg, Args: merged})
}

// HasMessage reports whether a message with the given level and text was logged.
func (m *MockLogger) HasMessage(level, msg string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, lm := range *m.Messages {
		if lm.Level == level && lm.Msg == msg {
			return true
		}
	}
	return false
}
