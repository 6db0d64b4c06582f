// API server entry point for the lexicon terminology service.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/lexicon-health/lexicon/internal/app"
	"github.com/lexicon-health/lexicon/internal/config"
	"github.com/lexicon-health/lexicon/internal/infrastructure/monitoring/logging"
)

func main() {
	configPath := flag.String("config", "", "path to configuration file (default: environment only)")
	flag.Parse()

	var cfg *config.Config
	var err error
	if *configPath != "" {
		cfg, err = config.Load(*configPath)
	} else {
		cfg, err = config.LoadFromEnv()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(1)
	}

	log, err := logging.New(logging.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger error: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, log)
	if err != nil {
		log.Error("startup failed", logging.Err(err))
		os.Exit(1)
	}

	if err := a.Run(ctx); err != nil {
		log.Error("server exited with error", logging.Err(err))
		os.Exit(1)
	}
	log.Info("server stopped")
}
