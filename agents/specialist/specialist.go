// Package specialist implements the consultation agents. Every
// specialist runs the same processor; only the persona differs. A
// specialist never discloses records: record requests are answered with
// the forwarding sentinel and nothing else.
package specialist

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	a2aproto "trpc.group/trpc-go/trpc-a2a-go/protocol"
	"trpc.group/trpc-go/trpc-a2a-go/server"
	"trpc.group/trpc-go/trpc-a2a-go/taskmanager"

	"github.com/carebridge-project/carebridge-multi-agent/llm"
	"github.com/carebridge-project/carebridge-multi-agent/logger"
	"github.com/carebridge-project/carebridge-multi-agent/protocol"
	"github.com/carebridge-project/carebridge-multi-agent/types"
	"github.com/carebridge-project/carebridge-multi-agent/websocket"
)

const historyLimit = 10

// conversationCache stores per-session message history.
type conversationCache struct {
	mu            sync.Mutex
	conversations map[string][]string
}

func newConversationCache() *conversationCache {
	return &conversationCache{conversations: make(map[string][]string)}
}

func (c *conversationCache) AddMessage(sessionID, message string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	h := append(c.conversations[sessionID], message)
	if len(h) > historyLimit {
		h = h[len(h)-historyLimit:]
	}
	c.conversations[sessionID] = h
}

func (c *conversationCache) GetHistory(sessionID string) []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.conversations[sessionID]...)
}

// Processor implements taskmanager.MessageProcessor for one persona.
type Processor struct {
	persona Persona
	// instruction is the persona's system prompt with the forwarding
	// rule appended. Composed once; never rebuilt per turn.
	instruction string
	llm         llm.Client
	cache       *conversationCache
	log         *logger.Logger
	wsServer    *websocket.LogServer
}

// NewProcessor builds a specialist processor. wsServer may be nil.
func NewProcessor(persona Persona, client llm.Client, log *logger.Logger, wsServer *websocket.LogServer) *Processor {
	if log == nil {
		log = logger.New()
	}
	log.SetAgentName(persona.ID)
	return &Processor{
		persona:     persona,
		instruction: protocol.WithForwardRule(persona.SystemPrompt),
		llm:         client,
		cache:       newConversationCache(),
		log:         log,
		wsServer:    wsServer,
	}
}

// ProcessMessage implements the taskmanager.MessageProcessor interface.
func (p *Processor) ProcessMessage(
	ctx context.Context,
	message a2aproto.Message,
	options taskmanager.ProcessOptions,
	handle taskmanager.TaskHandler,
) (*taskmanager.MessageProcessingResult, error) {
	prompt := protocol.ExtractText(message)
	if prompt == "" {
		p.log.Warn("empty message received")
		return textResult("Please describe your symptoms or question in text."), nil
	}

	sessionID := handle.GetContextID()
	if sessionID == "" {
		sessionID = uuid.New().String()
	}

	return textResult(p.respond(ctx, sessionID, prompt)), nil
}

// respond produces the specialist's reply for one turn.
func (p *Processor) respond(ctx context.Context, sessionID, prompt string) string {
	// Record requests never reach the model. The rule also lives in the
	// system prompt, but the guard here makes the sentinel unconditional.
	if protocol.MatchesIntent(prompt) {
		p.log.WithField("session_id", sessionID).Info("record request forwarded")
		p.broadcast(sessionID, "record request forwarded")
		return protocol.ForwardToken
	}

	reply, err := p.consult(ctx, sessionID, prompt)
	if err != nil {
		p.log.Error("consultation failed", err)
		p.broadcast(sessionID, "consultation failed: "+err.Error())
		return "I could not process that right now. Please try again."
	}

	// The model may still decide a paraphrased request is a record
	// request; honor its verdict verbatim.
	if protocol.IsForwardSignal(reply) {
		p.broadcast(sessionID, "record request forwarded")
		return protocol.ForwardToken
	}

	p.cache.AddMessage(sessionID, "User: "+prompt)
	p.cache.AddMessage(sessionID, "Assistant: "+reply)
	p.broadcast(sessionID, "replied")
	return reply
}

func (p *Processor) consult(ctx context.Context, sessionID, prompt string) (string, error) {
	if p.llm == nil {
		return p.persona.Fallback, nil
	}

	user := prompt
	if history := p.cache.GetHistory(sessionID); len(history) > 0 {
		user = fmt.Sprintf("Previous conversation:\n%s\n\nNew request: %s",
			strings.Join(history, "\n"), prompt)
	}

	reply, err := p.llm.Chat(ctx, p.instruction, user)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(reply) == "" {
		return p.persona.Fallback, nil
	}
	return reply, nil
}

func (p *Processor) broadcast(sessionID, message string) {
	if p.wsServer == nil {
		return
	}
	p.wsServer.BroadcastAgentLog(&types.AgentLog{
		Type:      "specialist",
		From:      p.persona.ID,
		Content:   message,
		Timestamp: time.Now().Format(time.RFC3339),
		SessionID: sessionID,
	})
}

func textResult(text string) *taskmanager.MessageProcessingResult {
	msg := a2aproto.NewMessage(
		a2aproto.MessageRoleAgent,
		[]a2aproto.Part{a2aproto.NewTextPart(text)},
	)
	return &taskmanager.MessageProcessingResult{Result: &msg}
}

func stringPtr(s string) *string { return &s }
func boolPtr(b bool) *bool       { return &b }

// Card returns the agent card served at the persona's well-known URL.
func (p *Processor) Card(url string) server.AgentCard {
	return server.AgentCard{
		Name:        p.persona.Name,
		Description: p.persona.Description,
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
				ID:          "medical_consultation",
				Name:        p.persona.SkillName,
				Description: stringPtr(p.persona.Description),
				Tags:        []string{"healthcare", "llm"},
				Examples:    p.persona.Examples,
				InputModes:  []string{"text"},
				OutputModes: []string{"text"},
			},
		},
	}
}
