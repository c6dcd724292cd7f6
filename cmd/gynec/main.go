package main

import (
	"context"
	"flag"
	"os"

	"github.com/carebridge-project/carebridge-multi-agent/agents/specialist"
	"github.com/carebridge-project/carebridge-multi-agent/logger"
)

func main() {
	host := flag.String("host", "localhost", "Host to listen on")
	port := flag.Int("port", 8082, "Port to listen on")
	flag.Parse()

	if err := specialist.Serve(context.Background(), specialist.Gynec, *host, *port); err != nil {
		logger.New().Error("gynec agent exited", err)
		os.Exit(1)
	}
}
