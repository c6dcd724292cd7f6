package types

// AgentLog represents a log entry broadcast to observers
type AgentLog struct {
	Type      string `json:"type"` // "routing", "intake", "disclosure", "specialist", "error"
	From      string `json:"from"`
	To        string `json:"to,omitempty"`
	Content   string `json:"content"`
	Timestamp string `json:"timestamp"`
	SessionID string `json:"sessionId,omitempty"`
	MessageID string `json:"messageId,omitempty"`
}

// WebSocketMessage wraps a payload pushed over the log hub
type WebSocketMessage struct {
	Type      string      `json:"type"` // "log", "error", "status", "heartbeat"
	Payload   interface{} `json:"payload"`
	Timestamp string      `json:"timestamp"`
	MessageID string      `json:"messageId,omitempty"`
}

// RecordView is the wire representation of a patient record on the
// read-only reporting surface.
type RecordView struct {
	ID        uint     `json:"id"`
	Name      string   `json:"name"`
	Age       int      `json:"age"`
	Weight    *float64 `json:"weight"`
	CreatedAt string   `json:"created_at"`
}

// RecordsResponse is the JSON document served by /api/records.
type RecordsResponse struct {
	Status    string       `json:"status"`
	Count     int          `json:"count"`
	Records   []RecordView `json:"records"`
	Timestamp string       `json:"timestamp"`
}
