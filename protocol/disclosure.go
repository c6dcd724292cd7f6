package protocol

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"sync"
	"text/tabwriter"
	"time"

	"github.com/carebridge-project/carebridge-multi-agent/logger"
	"github.com/carebridge-project/carebridge-multi-agent/storage"
	"github.com/carebridge-project/carebridge-multi-agent/types"
)

// DefaultSecurityCode is the development fallback credential. Deployments
// override it via SECURITY_CODE.
const DefaultSecurityCode = "0864"

// ChallengePrompt is issued when a caller first asks for records. The
// word "code" is part of the contract: automated callers key on it.
const ChallengePrompt = "Before I can share any patient records, please provide the security code."

// DeniedMessage is returned on a failed challenge. The same wording goes
// to every caller, human or agent.
const DeniedMessage = "Access denied. The security code you provided is incorrect."

const noRecordsMessage = "Access granted. There are no patient records on file yet."

var intentPhrases = []string{"show records", "display records", "view records"}

// MatchesIntent reports whether text asks for record disclosure. Matching
// is a case-insensitive substring check over the known phrases.
func MatchesIntent(text string) bool {
	lower := strings.ToLower(text)
	for _, p := range intentPhrases {
		if strings.Contains(lower, p) {
			return true
		}
	}
	return false
}

// IsChallengeReply reports whether a coordinator reply is a credential
// prompt. Callers use this to recognize that their next turn is the
// credential and must not be retried: a replayed credential after a
// lost response would hit an already-spent challenge.
func IsChallengeReply(reply string) bool {
	lower := strings.ToLower(reply)
	return strings.Contains(lower, "code") || strings.Contains(lower, "secret")
}

// RecordSource is the slice of the record store the gate needs.
type RecordSource interface {
	ListAll(ctx context.Context) ([]storage.PatientRecord, error)
}

// Gate is the per-session disclosure state machine. A session is either
// idle or holding exactly one open challenge; a submitted credential
// resolves the challenge in a single shot and the session returns to
// idle whatever the outcome.
type Gate struct {
	mu      sync.Mutex
	secret  string
	records RecordSource
	log     *logger.Logger
	notify  func(*types.AgentLog)
	pending map[string]bool
}

// NewGate builds a gate. An empty secret falls back to
// DefaultSecurityCode.
func NewGate(secret string, records RecordSource, log *logger.Logger) *Gate {
	if secret == "" {
		secret = DefaultSecurityCode
	}
	if log == nil {
		log = logger.New()
	}
	return &Gate{
		secret:  secret,
		records: records,
		log:     log,
		pending: make(map[string]bool),
	}
}

// SetNotifier installs an optional broadcast hook for disclosure events.
func (g *Gate) SetNotifier(fn func(*types.AgentLog)) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.notify = fn
}

// Challenge opens a challenge for the session and returns the prompt.
// Re-asking while a challenge is open reissues the same prompt without
// stacking a second challenge.
func (g *Gate) Challenge(sessionID string) string {
	g.mu.Lock()
	g.pending[sessionID] = true
	g.mu.Unlock()

	g.log.WithField("session_id", sessionID).Info("disclosure challenge issued")
	g.emit(sessionID, "challenge issued")
	return ChallengePrompt
}

// Pending reports whether the session has an open challenge.
func (g *Gate) Pending(sessionID string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.pending[sessionID]
}

// Resolve consumes the session's open challenge with the caller's
// credential. The challenge is spent before the comparison, so a wrong
// code cannot be retried against the same challenge. The credential is
// compared case-sensitively after trimming surrounding whitespace.
func (g *Gate) Resolve(ctx context.Context, sessionID, credential, requester string) (string, error) {
	g.mu.Lock()
	open := g.pending[sessionID]
	delete(g.pending, sessionID)
	g.mu.Unlock()

	if !open {
		return DeniedMessage, nil
	}

	if strings.TrimSpace(credential) != g.secret {
		g.log.AccessDenied(sessionID, requester)
		g.emit(sessionID, "access denied")
		return DeniedMessage, nil
	}

	records, err := g.records.ListAll(ctx)
	if err != nil {
		g.log.WithField("session_id", sessionID).Error("record retrieval failed after grant", err)
		return "", err
	}

	g.log.AccessGranted(sessionID, requester)
	g.emit(sessionID, "access granted")

	if len(records) == 0 {
		return noRecordsMessage, nil
	}
	return "Access granted. Here are the patient records on file:\n\n" + RenderRecordTable(records), nil
}

func (g *Gate) emit(sessionID, message string) {
	g.mu.Lock()
	fn := g.notify
	g.mu.Unlock()
	if fn == nil {
		return
	}
	fn(&types.AgentLog{
		Type:      "disclosure",
		From:      "root",
		Content:   message,
		Timestamp: time.Now().Format(time.RFC3339),
		SessionID: sessionID,
	})
}

// RenderRecordTable renders records as an aligned text table.
func RenderRecordTable(records []storage.PatientRecord) string {
	var buf bytes.Buffer
	w := tabwriter.NewWriter(&buf, 2, 2, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tName\tAge\tWeight")
	for _, r := range records {
		weight := "-"
		if r.Weight != nil {
			weight = fmt.Sprintf("%.1f", *r.Weight)
		}
		fmt.Fprintf(w, "%d\t%s\t%d\t%s\n", r.ID, r.Name, r.Age, weight)
	}
	w.Flush()
	return buf.String()
}
