package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/carebridge-project/carebridge-multi-agent/agents/audit"
	"github.com/carebridge-project/carebridge-multi-agent/config"
	"github.com/carebridge-project/carebridge-multi-agent/logger"
	"github.com/carebridge-project/carebridge-multi-agent/protocol"
	"github.com/carebridge-project/carebridge-multi-agent/types"
)

const turnTimeout = 60 * time.Second

// turnCaller is the slice of the A2A caller the chat loop needs.
type turnCaller interface {
	Send(ctx context.Context, text, contextID string) (string, error)
	SendOnce(ctx context.Context, text, contextID string) (string, error)
}

// turns delivers the user's utterances in order. The turn after a
// challenge prompt carries the security code and is never retried: a
// replay after a lost response would hit an already-spent challenge.
type turns struct {
	caller     turnCaller
	sessionID  string
	challenged bool
}

func (t *turns) send(ctx context.Context, input string) (string, error) {
	var reply string
	var err error
	if t.challenged {
		reply, err = t.caller.SendOnce(ctx, input, t.sessionID)
	} else {
		reply, err = t.caller.Send(ctx, input, t.sessionID)
	}
	if err != nil {
		return "", err
	}
	t.challenged = protocol.IsChallengeReply(reply)
	return reply, nil
}

func main() {
	url := flag.String("url", "", "Coordinator URL (overrides ROOT_AGENT_URL)")
	flag.Parse()

	env, err := config.LoadEnv()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}
	if *url == "" {
		*url = env.RootAgentURL
	}

	log := logger.New()
	log.SetAgentName("chat")
	log.SetLevel(logger.WARN)

	caller, err := protocol.NewCaller(*url, "root", log)
	if err != nil {
		fmt.Fprintln(os.Stderr, "connect:", err)
		os.Exit(1)
	}

	conv := &turns{caller: caller, sessionID: uuid.New().String()}
	fmt.Println("Connected to CareBridge at", *url)
	fmt.Println("Type 'exit' to quit, 'audit' to run a disclosure audit.")
	fmt.Println()

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			return
		}
		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}

		switch strings.ToLower(input) {
		case "exit", "quit", "bye":
			return
		case "audit":
			runAudit(caller, env.SecurityCode, log)
			continue
		}

		ctx, cancel := context.WithTimeout(context.Background(), turnTimeout)
		reply, err := conv.send(ctx, input)
		cancel()
		if err != nil {
			if types.IsTransportError(err) {
				fmt.Println("! coordinator unreachable:", err)
			} else {
				fmt.Println("! error:", err)
			}
			continue
		}
		fmt.Println(reply)
		fmt.Println()
	}
}

func runAudit(caller *protocol.Caller, secret string, log *logger.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*turnTimeout)
	defer cancel()

	report, err := audit.New(caller, secret, log).Run(ctx)
	if err != nil {
		fmt.Println("! audit failed:", err)
		return
	}
	fmt.Printf("audit session %s: challenged=%v granted=%v\n", report.SessionID, report.Challenged, report.Granted)
	fmt.Println(report.Transcript)
	fmt.Println()
}
