// Package audit implements the automated compliance client. It speaks
// to the coordinator over the same transport a human terminal uses and
// negotiates the disclosure challenge with a configured security code.
package audit

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/carebridge-project/carebridge-multi-agent/logger"
	"github.com/carebridge-project/carebridge-multi-agent/protocol"
)

const requestPhrase = "show records"

// Caller is the slice of the A2A caller the audit agent needs. The
// credential turn uses SendOnce: replaying a code after an ambiguous
// failure would burn a fresh challenge.
type Caller interface {
	Send(ctx context.Context, text, contextID string) (string, error)
	SendOnce(ctx context.Context, text, contextID string) (string, error)
}

// Report is the outcome of one audit run.
type Report struct {
	SessionID  string `json:"session_id"`
	Challenged bool   `json:"challenged"`
	Granted    bool   `json:"granted"`
	Transcript string `json:"transcript"`
}

// Agent runs disclosure audits against a coordinator.
type Agent struct {
	caller Caller
	secret string
	log    *logger.Logger
}

func New(caller Caller, secret string, log *logger.Logger) *Agent {
	if log == nil {
		log = logger.New()
	}
	log.SetAgentName("audit")
	return &Agent{caller: caller, secret: secret, log: log}
}

// Run performs one audit conversation: ask for records, answer the
// challenge if one comes back, and report what the coordinator said.
func (a *Agent) Run(ctx context.Context) (*Report, error) {
	sessionID := uuid.New().String()
	report := &Report{SessionID: sessionID}

	a.log.WithField("session_id", sessionID).Info("audit run started")

	first, err := a.caller.Send(ctx, requestPhrase, sessionID)
	if err != nil {
		return nil, err
	}
	report.Transcript = first

	if !protocol.IsChallengeReply(first) {
		report.Granted = isGrant(first)
		a.log.WithField("session_id", sessionID).Warn("no challenge issued for record request")
		return report, nil
	}
	report.Challenged = true

	second, err := a.caller.SendOnce(ctx, a.secret, sessionID)
	if err != nil {
		return nil, err
	}
	report.Transcript = second
	report.Granted = isGrant(second)

	if report.Granted {
		a.log.WithField("session_id", sessionID).Info("audit access granted")
	} else {
		a.log.WithField("session_id", sessionID).Warn("audit access denied")
	}
	return report, nil
}

func isGrant(reply string) bool {
	return strings.Contains(reply, "Access granted")
}
