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
	port := flag.Int("port", 8083, "Port to listen on")
	flag.Parse()

	if err := specialist.Serve(context.Background(), specialist.Physician, *host, *port); err != nil {
		logger.New().Error("physician agent exited", err)
		os.Exit(1)
	}
}
