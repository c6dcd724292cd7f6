package specialist

import (
	"context"
	"fmt"

	"trpc.group/trpc-go/trpc-a2a-go/server"
	"trpc.group/trpc-go/trpc-a2a-go/taskmanager"

	"github.com/carebridge-project/carebridge-multi-agent/config"
	"github.com/carebridge-project/carebridge-multi-agent/llm"
	"github.com/carebridge-project/carebridge-multi-agent/logger"
)

// BuildLLM picks the model backend: Google AI when a key is configured,
// any OpenAI-compatible endpoint otherwise, nil (persona fallback
// answers) when neither is available.
func BuildLLM(ctx context.Context, env *config.EnvConfig, log *logger.Logger) llm.Client {
	if env.GoogleAPIKey != "" {
		if c, err := llm.NewGoogleAI(ctx, env.GoogleAPIKey, env.LLMModel); err == nil {
			return c
		} else {
			log.Error("google ai init failed", err)
		}
	}
	if c, err := llm.NewFromEnv(); err == nil {
		return c
	}
	log.Warn("no model configured, serving fallback answers")
	return nil
}

// Serve runs one specialist as an A2A server on host:port, blocking.
func Serve(ctx context.Context, persona Persona, host string, port int) error {
	env, err := config.LoadEnv()
	if err != nil {
		return err
	}

	log := logger.New()
	log.SetAgentName(persona.ID)

	processor := NewProcessor(persona, BuildLLM(ctx, env, log), log, nil)

	tm, err := taskmanager.NewMemoryTaskManager(processor)
	if err != nil {
		return fmt.Errorf("create task manager: %w", err)
	}

	addr := fmt.Sprintf("%s:%d", host, port)
	card := processor.Card(fmt.Sprintf("http://%s", addr))
	a2aServer, err := server.NewA2AServer(card, tm)
	if err != nil {
		return fmt.Errorf("create server: %w", err)
	}

	log.WithField("addr", addr).Info("specialist listening")
	return a2aServer.Start(addr)
}
