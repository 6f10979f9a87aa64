package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"gavel/internal/config"
	"gavel/internal/logging"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, cfgPath, found, err := config.Load("")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		log.Fatalf("ensure directories: %v", err)
	}

	logger, err := logging.New(loggingOptions(cfg))
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	if !found {
		logger.Info("config file not found, using defaults", logging.String("path", cfgPath))
	}

	d, err := bootstrapDaemon(ctx, cfg, logger)
	if err != nil {
		logger.Error("bootstrap daemon", logging.Error(err))
		os.Exit(1)
	}
	defer d.Close()

	if err := d.Start(ctx); err != nil {
		logger.Error("daemon start", logging.Error(err))
		os.Exit(1)
	}

	<-ctx.Done()
	logger.Info("gaveld shutting down")
	d.Stop()
}
