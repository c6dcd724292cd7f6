package logger

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"sync"
	"time"
)

// LogLevel represents the severity of a log entry
type LogLevel int

const (
	// DEBUG level for debug information
	DEBUG LogLevel = iota
	// INFO level for informational messages
	INFO
	// WARN level for warning messages
	WARN
	// ERROR level for error messages
	ERROR
)

// String returns the string representation of the log level
func (l LogLevel) String() string {
	switch l {
	case DEBUG:
		return "DEBUG"
	case INFO:
		return "INFO"
	case WARN:
		return "WARN"
	case ERROR:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// LogEntry represents a structured log entry
type LogEntry struct {
	Timestamp time.Time              `json:"timestamp"`
	Level     string                 `json:"level"`
	Message   string                 `json:"message"`
	Fields    map[string]interface{} `json:"fields,omitempty"`
	AgentName string                 `json:"agent,omitempty"`
	SessionID string                 `json:"session_id,omitempty"`
	Error     string                 `json:"error,omitempty"`
}

// Logger provides structured logging capabilities
type Logger struct {
	mu         sync.RWMutex
	level      LogLevel
	output     io.Writer
	fields     map[string]interface{}
	agentName  string
	jsonFormat bool
}

// New creates a new logger instance
func New() *Logger {
	return &Logger{
		level:      INFO,
		output:     os.Stdout,
		fields:     make(map[string]interface{}),
		jsonFormat: true,
	}
}

// SetLevel sets the minimum log level
func (l *Logger) SetLevel(level LogLevel) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.level = level
}

// SetOutput sets the output writer
func (l *Logger) SetOutput(w io.Writer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.output = w
}

// SetJSONFormat enables or disables JSON formatting
func (l *Logger) SetJSONFormat(enabled bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.jsonFormat = enabled
}

// SetAgentName sets the agent name for all log entries
func (l *Logger) SetAgentName(name string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.agentName = name
}

// WithField creates a new logger with an additional field
func (l *Logger) WithField(key string, value interface{}) *Logger {
	return l.WithFields(map[string]interface{}{key: value})
}

// WithFields creates a new logger with additional fields
func (l *Logger) WithFields(fields map[string]interface{}) *Logger {
	l.mu.RLock()
	defer l.mu.RUnlock()

	newLogger := &Logger{
		level:      l.level,
		output:     l.output,
		fields:     make(map[string]interface{}),
		agentName:  l.agentName,
		jsonFormat: l.jsonFormat,
	}
	for k, v := range l.fields {
		newLogger.fields[k] = v
	}
	for k, v := range fields {
		newLogger.fields[k] = v
	}
	return newLogger
}

// Debug logs a debug message
func (l *Logger) Debug(msg string) { l.log(DEBUG, msg, nil) }

// Info logs an informational message
func (l *Logger) Info(msg string) { l.log(INFO, msg, nil) }

// Warn logs a warning message
func (l *Logger) Warn(msg string) { l.log(WARN, msg, nil) }

// Error logs an error message
func (l *Logger) Error(msg string, err error) { l.log(ERROR, msg, err) }

// AccessGranted records an authorized record-disclosure event.
func (l *Logger) AccessGranted(sessionID, requester string) {
	l.WithFields(map[string]interface{}{
		"event":      "record_access_granted",
		"session_id": sessionID,
		"requester":  requester,
	}).Info("patient records disclosed to authorized requester")
}

// AccessDenied records a failed record-disclosure attempt.
func (l *Logger) AccessDenied(sessionID, requester string) {
	l.WithFields(map[string]interface{}{
		"event":      "record_access_denied",
		"session_id": sessionID,
		"requester":  requester,
	}).Warn("record disclosure denied: invalid security code")
}

func (l *Logger) log(level LogLevel, msg string, err error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if level < l.level {
		return
	}

	entry := LogEntry{
		Timestamp: time.Now(),
		Level:     level.String(),
		Message:   msg,
		Fields:    l.fields,
		AgentName: l.agentName,
	}
	if err != nil {
		entry.Error = err.Error()
	}
	if sid, ok := l.fields["session_id"]; ok {
		entry.SessionID = fmt.Sprintf("%v", sid)
	}

	if l.jsonFormat {
		l.writeJSON(entry)
	} else {
		l.writeText(entry)
	}
}

func (l *Logger) writeJSON(entry LogEntry) {
	data, err := json.Marshal(entry)
	if err != nil {
		log.Printf("Failed to marshal log entry: %v", err)
		return
	}
	fmt.Fprintln(l.output, string(data))
}

func (l *Logger) writeText(entry LogEntry) {
	output := fmt.Sprintf("[%s] [%s] ", entry.Timestamp.Format("2006-01-02 15:04:05"), entry.Level)
	if entry.AgentName != "" {
		output += fmt.Sprintf("[%s] ", entry.AgentName)
	}
	output += entry.Message
	for k, v := range entry.Fields {
		output += fmt.Sprintf(" %s=%v", k, v)
	}
	if entry.Error != "" {
		output += fmt.Sprintf(" error=%q", entry.Error)
	}
	fmt.Fprintln(l.output, output)
}
