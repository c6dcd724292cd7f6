package main

import (
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/carebridge-project/carebridge-multi-agent/api"
	"github.com/carebridge-project/carebridge-multi-agent/config"
	"github.com/carebridge-project/carebridge-multi-agent/storage"
)

func main() {
	port := flag.Int("port", 0, "Port to listen on (overrides REPORT_SERVER_PORT)")
	flag.Parse()

	env, err := config.LoadEnv()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}
	if *port == 0 {
		*port = env.ReportServerPort
	}

	log, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintln(os.Stderr, "logger:", err)
		os.Exit(1)
	}
	defer log.Sync()

	store, err := storage.Open(env.DatabasePath, log)
	if err != nil {
		log.Fatal("open store", zap.Error(err))
	}

	srv := api.NewReportServer(store, log)
	if err := srv.Start(fmt.Sprintf(":%d", *port)); err != nil {
		log.Fatal("report server exited", zap.Error(err))
	}
}
