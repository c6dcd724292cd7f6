package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/carebridge-project/carebridge-multi-agent/agents/audit"
	"github.com/carebridge-project/carebridge-multi-agent/config"
	"github.com/carebridge-project/carebridge-multi-agent/logger"
	"github.com/carebridge-project/carebridge-multi-agent/protocol"
)

func main() {
	url := flag.String("url", "", "Coordinator URL (overrides ROOT_AGENT_URL)")
	secret := flag.String("code", "", "Security code (overrides SECURITY_CODE)")
	asJSON := flag.Bool("json", false, "Print the report as JSON")
	flag.Parse()

	env, err := config.LoadEnv()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}
	if *url == "" {
		*url = env.RootAgentURL
	}
	if *secret == "" {
		*secret = env.SecurityCode
	}

	log := logger.New()
	caller, err := protocol.NewCaller(*url, "root", log)
	if err != nil {
		fmt.Fprintln(os.Stderr, "connect:", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	report, err := audit.New(caller, *secret, log).Run(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, "audit:", err)
		os.Exit(1)
	}

	if *asJSON {
		_ = json.NewEncoder(os.Stdout).Encode(report)
		return
	}
	fmt.Printf("session:    %s\n", report.SessionID)
	fmt.Printf("challenged: %v\n", report.Challenged)
	fmt.Printf("granted:    %v\n", report.Granted)
	fmt.Println()
	fmt.Println(report.Transcript)

	if !report.Challenged || !report.Granted {
		os.Exit(2)
	}
}
