package protocol

import (
	"context"
	"fmt"
	"strings"
	"time"

	"trpc.group/trpc-go/trpc-a2a-go/client"
	a2aproto "trpc.group/trpc-go/trpc-a2a-go/protocol"

	"github.com/carebridge-project/carebridge-multi-agent/logger"
	"github.com/carebridge-project/carebridge-multi-agent/resilience"
	"github.com/carebridge-project/carebridge-multi-agent/types"
)

// Caller sends one text turn to an A2A agent and returns the agent's
// final text reply. Every caller in the system uses this path, so a
// human at the terminal and the audit agent are indistinguishable on
// the wire.
type Caller struct {
	client  *client.A2AClient
	target  string
	retry   *resilience.RetryConfig
	breaker *resilience.CircuitBreaker
	log     *logger.Logger
}

// NewCaller builds a caller for the agent at url. target names the
// agent in logs only.
func NewCaller(url, target string, log *logger.Logger) (*Caller, error) {
	if log == nil {
		log = logger.New()
	}
	c, err := client.NewA2AClient(url)
	if err != nil {
		return nil, &types.TransportError{Stage: "connect", Err: err}
	}
	return &Caller{
		client: c,
		target: target,
		retry: &resilience.RetryConfig{
			MaxAttempts:     3,
			InitialDelay:    200 * time.Millisecond,
			MaxDelay:        3 * time.Second,
			Multiplier:      2.0,
			RandomizeFactor: 0.1,
		},
		breaker: resilience.NewCircuitBreaker(5, 30*time.Second),
		log:     log,
	}, nil
}

// Send delivers one turn with retry and circuit breaker protection.
// contextID groups turns into one session on the receiving side.
func (c *Caller) Send(ctx context.Context, text, contextID string) (string, error) {
	var reply string
	err := c.breaker.Execute(func() error {
		return resilience.RetryWithConfig(ctx, c.retry, func() error {
			out, err := c.sendOnce(ctx, text, contextID)
			if err != nil {
				return err
			}
			reply = out
			return nil
		})
	})
	if err != nil {
		return "", err
	}
	return reply, nil
}

// SendOnce delivers one turn with no retry. Credential turns use this:
// a replayed credential after an ambiguous failure must not silently
// consume a fresh challenge.
func (c *Caller) SendOnce(ctx context.Context, text, contextID string) (string, error) {
	return c.sendOnce(ctx, text, contextID)
}

func (c *Caller) sendOnce(ctx context.Context, text, contextID string) (string, error) {
	msg := a2aproto.NewMessage(a2aproto.MessageRoleUser, []a2aproto.Part{a2aproto.NewTextPart(text)})
	if contextID != "" {
		msg.ContextID = &contextID
	}

	c.log.WithFields(map[string]interface{}{
		"target":     c.target,
		"context_id": contextID,
	}).Debug("sending turn")

	result, err := c.client.SendMessage(ctx, a2aproto.SendMessageParams{Message: msg})
	if err != nil {
		return "", &types.TransportError{Stage: "send", Err: err}
	}
	if result == nil || result.Result == nil {
		return "", &types.TransportError{Stage: "receive", Err: fmt.Errorf("empty result from %s", c.target)}
	}

	switch result.Result.GetKind() {
	case a2aproto.KindMessage:
		m, ok := result.Result.(*a2aproto.Message)
		if !ok {
			return "", &types.TransportError{Stage: "receive", Err: fmt.Errorf("unexpected message payload from %s", c.target)}
		}
		return ExtractText(*m), nil
	case a2aproto.KindTask:
		task, ok := result.Result.(*a2aproto.Task)
		if !ok {
			return "", &types.TransportError{Stage: "receive", Err: fmt.Errorf("unexpected task payload from %s", c.target)}
		}
		return extractTaskText(task), nil
	default:
		return "", &types.TransportError{Stage: "receive", Err: fmt.Errorf("unknown result kind %q from %s", result.Result.GetKind(), c.target)}
	}
}

// ExtractText concatenates the text parts of a message.
func ExtractText(msg a2aproto.Message) string {
	var sb strings.Builder
	for _, part := range msg.Parts {
		if tp, ok := part.(*a2aproto.TextPart); ok {
			sb.WriteString(tp.Text)
		}
	}
	return sb.String()
}

// extractTaskText pulls the final text out of a task result, preferring
// artifacts over history.
func extractTaskText(task *a2aproto.Task) string {
	for _, artifact := range task.Artifacts {
		var sb strings.Builder
		for _, part := range artifact.Parts {
			if tp, ok := part.(*a2aproto.TextPart); ok {
				sb.WriteString(tp.Text)
			}
		}
		if sb.Len() > 0 {
			return sb.String()
		}
	}
	for i := len(task.History) - 1; i >= 0; i-- {
		if task.History[i].Role == a2aproto.MessageRoleAgent {
			if text := ExtractText(task.History[i]); text != "" {
				return text
			}
		}
	}
	return ""
}
