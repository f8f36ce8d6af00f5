// Command fieldinspectd serves the field-inspection API.
package main

import (
	"context"
	"flag"
	"log"
	"os/signal"
	"syscall"

	"fieldinspect/internal/config"
	"fieldinspect/internal/daemon"
	"fieldinspect/internal/logging"
)

func main() {
	configPath := flag.String("config", "", "Configuration file path")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger, err := logging.NewFromConfig(cfg, true)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}

	if err := daemon.Run(ctx, cfg, logger); err != nil {
		logger.Error("fieldinspectd exited", logging.Error(err))
		log.Fatal(err)
	}
}

func loadConfig(path string) (*config.Config, error) {
	cfg, _, _, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, err
	}
	return cfg, nil
}
