// Package root implements the coordinator agent. It owns the intake
// interview, routes consultation turns to specialists, and is the only
// component that can disclose patient records.
package root

import (
	"context"
	"time"

	"github.com/google/uuid"
	a2aproto "trpc.group/trpc-go/trpc-a2a-go/protocol"
	"trpc.group/trpc-go/trpc-a2a-go/server"
	"trpc.group/trpc-go/trpc-a2a-go/taskmanager"

	"github.com/carebridge-project/carebridge-multi-agent/logger"
	"github.com/carebridge-project/carebridge-multi-agent/protocol"
	"github.com/carebridge-project/carebridge-multi-agent/types"
	"github.com/carebridge-project/carebridge-multi-agent/websocket"
)

const recordsUnavailable = "Records are unavailable right now. Please try again later."

// SpecialistCaller is the slice of the A2A caller the coordinator needs.
type SpecialistCaller interface {
	Send(ctx context.Context, text, contextID string) (string, error)
}

// Coordinator implements taskmanager.MessageProcessor for the root agent.
type Coordinator struct {
	gate     *protocol.Gate
	intake   *Intake
	router   *Router
	callers  map[string]SpecialistCaller
	log      *logger.Logger
	wsServer *websocket.LogServer
}

// NewCoordinator wires the coordinator. callers maps router targets to
// specialist endpoints; wsServer may be nil.
func NewCoordinator(
	gate *protocol.Gate,
	intake *Intake,
	router *Router,
	callers map[string]SpecialistCaller,
	log *logger.Logger,
	wsServer *websocket.LogServer,
) *Coordinator {
	if log == nil {
		log = logger.New()
	}
	log.SetAgentName("root")
	c := &Coordinator{
		gate:     gate,
		intake:   intake,
		router:   router,
		callers:  callers,
		log:      log,
		wsServer: wsServer,
	}
	if wsServer != nil {
		gate.SetNotifier(wsServer.BroadcastAgentLog)
	}
	return c
}

// ProcessMessage implements the taskmanager.MessageProcessor interface.
func (c *Coordinator) ProcessMessage(
	ctx context.Context,
	message a2aproto.Message,
	options taskmanager.ProcessOptions,
	handle taskmanager.TaskHandler,
) (*taskmanager.MessageProcessingResult, error) {
	text := protocol.ExtractText(message)

	sessionID := handle.GetContextID()
	if sessionID == "" {
		sessionID = uuid.New().String()
	}

	reply := c.respond(ctx, sessionID, text)

	msg := a2aproto.NewMessage(
		a2aproto.MessageRoleAgent,
		[]a2aproto.Part{a2aproto.NewTextPart(reply)},
	)
	return &taskmanager.MessageProcessingResult{Result: &msg}, nil
}

// respond handles one conversational turn. Precedence per turn: an open
// challenge consumes the input as a credential, then disclosure intent,
// then the intake interview, then specialist routing.
func (c *Coordinator) respond(ctx context.Context, sessionID, text string) string {
	if text == "" {
		return "Please type your message."
	}

	if c.gate.Pending(sessionID) {
		reply, err := c.gate.Resolve(ctx, sessionID, text, "caller")
		if err != nil {
			c.log.Error("disclosure resolution failed", err)
			return recordsUnavailable
		}
		return reply
	}

	if protocol.MatchesIntent(text) {
		return c.gate.Challenge(sessionID)
	}

	if !c.intake.Started(sessionID) {
		c.broadcast(sessionID, "intake", "interview started")
		return c.intake.Begin(sessionID)
	}
	if !c.intake.Done(sessionID) {
		reply, err := c.intake.Next(ctx, sessionID, text)
		if err != nil {
			c.log.Error("intake persistence failed", err)
			return "I could not save the patient details. Please try again."
		}
		return reply
	}

	return c.consult(ctx, sessionID, text)
}

func (c *Coordinator) consult(ctx context.Context, sessionID, text string) string {
	target := c.router.Route(ctx, text)
	caller, ok := c.callers[target]
	if !ok {
		c.log.WithField("target", target).Warn("no caller for target")
		return "No specialist is available for that right now."
	}

	c.log.WithFields(map[string]interface{}{
		"session_id": sessionID,
		"target":     target,
	}).Info("routing consultation")
	c.broadcast(sessionID, "routing", "routed to "+target)

	reply, err := caller.Send(ctx, text, sessionID)
	if err != nil {
		c.log.Error("specialist call failed", err)
		c.broadcast(sessionID, "error", target+" unreachable")
		return "The " + target + " specialist is unreachable right now. Please try again."
	}

	// A specialist answers a record request with the sentinel only. It
	// is consumed here; the caller sees the challenge instead.
	if protocol.IsForwardSignal(reply) {
		c.broadcast(sessionID, "routing", "record request intercepted from "+target)
		return c.gate.Challenge(sessionID)
	}
	return reply
}

func (c *Coordinator) broadcast(sessionID, kind, message string) {
	if c.wsServer == nil {
		return
	}
	c.wsServer.BroadcastAgentLog(&types.AgentLog{
		Type:      kind,
		From:      "root",
		Content:   message,
		Timestamp: time.Now().Format(time.RFC3339),
		SessionID: sessionID,
	})
}

func stringPtr(s string) *string { return &s }
func boolPtr(b bool) *bool       { return &b }

// Card returns the coordinator's agent card.
func Card(url string) server.AgentCard {
	return server.AgentCard{
		Name:        "CareBridge Coordinator",
		Description: "Routes healthcare questions to specialists and guards patient record disclosure.",
		URL:         url,
		Version:     "1.0.0",
		Capabilities: server.AgentCapabilities{
			Streaming:              boolPtr(false),
			PushNotifications:      boolPtr(false),
			StateTransitionHistory: boolPtr(true),
		},
		DefaultInputModes:  []string{"text"},
		DefaultOutputModes: []string{"text"},
		Skills: []server.AgentSkill{
			{
				ID:          "task_routing",
				Name:        "Task Routing",
				Description: stringPtr("Routes consultation questions to the right specialist."),
				Tags:        []string{"healthcare", "routing"},
				Examples:    []string{"My ear has been ringing for a week"},
				InputModes:  []string{"text"},
				OutputModes: []string{"text"},
			},
			{
				ID:          "record_disclosure",
				Name:        "Record Disclosure",
				Description: stringPtr("Discloses patient records after a security code challenge."),
				Tags:        []string{"healthcare", "records"},
				Examples:    []string{"show records"},
				InputModes:  []string{"text"},
				OutputModes: []string{"text"},
			},
		},
	}
}
