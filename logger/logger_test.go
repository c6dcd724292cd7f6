package logger

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := New()
	l.SetOutput(&buf)
	l.SetLevel(WARN)

	l.Info("ignored")
	l.Warn("kept")

	out := buf.String()
	if strings.Contains(out, "ignored") {
		t.Error("INFO entry should be filtered at WARN level")
	}
	if !strings.Contains(out, "kept") {
		t.Error("WARN entry should be written")
	}
}

func TestAccessGrantedEntry(t *testing.T) {
	var buf bytes.Buffer
	l := New()
	l.SetOutput(&buf)
	l.SetAgentName("coordinator")

	l.AccessGranted("session_123", "audit_001")

	var entry LogEntry
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("expected JSON log entry: %v", err)
	}
	if entry.Level != "INFO" {
		t.Errorf("expected INFO level, got %s", entry.Level)
	}
	if entry.SessionID != "session_123" {
		t.Errorf("expected session_123, got %q", entry.SessionID)
	}
	if entry.Fields["event"] != "record_access_granted" {
		t.Errorf("expected record_access_granted event, got %v", entry.Fields["event"])
	}
	if entry.Fields["requester"] != "audit_001" {
		t.Errorf("expected requester audit_001, got %v", entry.Fields["requester"])
	}
}

func TestAccessDeniedEntry(t *testing.T) {
	var buf bytes.Buffer
	l := New()
	l.SetOutput(&buf)

	l.AccessDenied("session_a", "human")

	var entry LogEntry
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("expected JSON log entry: %v", err)
	}
	if entry.Level != "WARN" {
		t.Errorf("expected WARN level, got %s", entry.Level)
	}
	if entry.Fields["event"] != "record_access_denied" {
		t.Errorf("expected record_access_denied event, got %v", entry.Fields["event"])
	}
}

func TestWithFieldsDoesNotMutateParent(t *testing.T) {
	var buf bytes.Buffer
	parent := New()
	parent.SetOutput(&buf)

	child := parent.WithField("k", "v")
	if len(parent.fields) != 0 {
		t.Error("parent logger fields should be untouched")
	}
	if child.fields["k"] != "v" {
		t.Error("child logger should carry the added field")
	}
}
