// Package protocol implements the conventions shared by every agent in
// the system: the forwarding sentinel specialists use to bounce record
// requests back to the coordinator, the disclosure gate that challenges
// those requests, and the uniform A2A caller used by both the terminal
// and the audit agent.
package protocol

import "strings"

// ForwardToken is the exact reply a specialist emits, alone, when the
// caller asks to see patient records. The coordinator intercepts it; it
// must never reach the end caller.
const ForwardToken = "__FORWARD_TO_ROOT__"

// forwardRule is appended to every specialist system prompt so each
// specialist enforces the convention regardless of its persona.
const forwardRule = "If the user asks to see, show, display, or view patient records or " +
	"any stored personal data, do not answer and do not refuse in your own words. " +
	"Reply with exactly " + ForwardToken + " and nothing else."

// WithForwardRule appends the forwarding instruction to a system prompt.
// Idempotent; a prompt that already carries the rule is returned unchanged.
func WithForwardRule(prompt string) string {
	if strings.Contains(prompt, ForwardToken) {
		return prompt
	}
	return strings.TrimRight(prompt, "\n") + "\n\n" + forwardRule
}

// IsForwardSignal reports whether a specialist reply is the sentinel.
// Only an exact match after trimming surrounding whitespace counts;
// prose mentioning the token is delivered as-is.
func IsForwardSignal(reply string) bool {
	return strings.TrimSpace(reply) == ForwardToken
}
