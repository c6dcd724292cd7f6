package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
	"trpc.group/trpc-go/trpc-a2a-go/server"
	"trpc.group/trpc-go/trpc-a2a-go/taskmanager"

	"github.com/carebridge-project/carebridge-multi-agent/agents/root"
	"github.com/carebridge-project/carebridge-multi-agent/agents/specialist"
	"github.com/carebridge-project/carebridge-multi-agent/config"
	"github.com/carebridge-project/carebridge-multi-agent/logger"
	"github.com/carebridge-project/carebridge-multi-agent/protocol"
	"github.com/carebridge-project/carebridge-multi-agent/session"
	"github.com/carebridge-project/carebridge-multi-agent/storage"
	"github.com/carebridge-project/carebridge-multi-agent/websocket"
)

func main() {
	host := flag.String("host", "localhost", "Host to listen on")
	port := flag.Int("port", 0, "Port to listen on (overrides ROOT_AGENT_PORT)")
	wsPort := flag.Int("ws-port", 0, "WebSocket log port (overrides WS_PORT)")
	flag.Parse()

	log := logger.New()
	log.SetAgentName("root")

	if err := run(*host, *port, *wsPort, log); err != nil {
		log.Error("coordinator exited", err)
		os.Exit(1)
	}
}

func run(host string, port, wsPort int, log *logger.Logger) error {
	env, err := config.LoadEnv()
	if err != nil {
		return err
	}
	if err := validateRegistry(log); err != nil {
		return err
	}
	if port == 0 {
		port = env.RootAgentPort
	}
	if wsPort == 0 {
		wsPort = env.WSPort
	}

	zlog, err := zap.NewProduction()
	if err != nil {
		return err
	}
	defer zlog.Sync()

	store, err := storage.Open(env.DatabasePath, zlog)
	if err != nil {
		return err
	}

	var candidates []session.Backend
	if sqlBackend, err := session.NewSQLBackend(env.DatabasePath); err != nil {
		zlog.Warn("sqlite session backend unavailable", zap.Error(err))
	} else {
		candidates = append(candidates, sqlBackend)
	}
	candidates = append(candidates, session.NewMemoryBackend())
	sessions := session.NewStore(zlog, candidates...)

	wsServer := websocket.NewLogServer(wsPort)
	if err := wsServer.Start(); err != nil {
		zlog.Warn("websocket log server unavailable", zap.Error(err))
		wsServer = nil
	}

	gate := protocol.NewGate(env.SecurityCode, store, log)
	intake := root.NewIntake(sessions, store, log)
	router := root.NewRouter(specialist.BuildLLM(context.Background(), env, log), log)

	callers := make(map[string]root.SpecialistCaller)
	for target, p := range map[string]int{
		root.TargetENT:       env.ENTAgentPort,
		root.TargetGynec:     env.GynecAgentPort,
		root.TargetPhysician: env.PhysicianAgentPort,
	} {
		caller, err := protocol.NewCaller(fmt.Sprintf("http://%s:%d", host, p), target, log)
		if err != nil {
			return fmt.Errorf("caller for %s: %w", target, err)
		}
		callers[target] = caller
	}

	coordinator := root.NewCoordinator(gate, intake, router, callers, log, wsServer)

	tm, err := taskmanager.NewMemoryTaskManager(coordinator)
	if err != nil {
		return fmt.Errorf("create task manager: %w", err)
	}

	addr := fmt.Sprintf("%s:%d", host, port)
	a2aServer, err := server.NewA2AServer(root.Card("http://"+addr), tm)
	if err != nil {
		return fmt.Errorf("create server: %w", err)
	}

	errCh := make(chan error, 1)
	go func() {
		log.WithField("addr", addr).Info("coordinator listening")
		errCh <- a2aServer.Start(addr)
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-sigCh:
		log.WithField("signal", sig.String()).Info("shutting down")
		if wsServer != nil {
			_ = wsServer.Stop()
		}
		return nil
	}
}

// validateRegistry checks the agent registry's declared capabilities at
// boot. A missing registry file is tolerated; a malformed one is not.
func validateRegistry(log *logger.Logger) error {
	registry, err := config.LoadAgentConfig("")
	if err != nil {
		log.Warn("agent registry not loaded: " + err.Error())
		return nil
	}

	validator, err := config.NewCapabilitiesValidator()
	if err != nil {
		return err
	}
	if err := validator.ValidateAll(registry); err != nil {
		return err
	}
	for agentType, agent := range registry.Agents {
		if err := config.ValidateSkills(agentType, agent.Capabilities.Skills); err != nil {
			return err
		}
	}
	log.WithField("agents", len(registry.Agents)).Info("agent registry validated")
	return nil
}
