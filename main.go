package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/slighter12/uiinspect-go/config"
	"github.com/slighter12/uiinspect-go/inspector"
	"github.com/slighter12/uiinspect-go/logger"
	"github.com/slighter12/uiinspect-go/toolkit/mocktk"
	"github.com/slighter12/uiinspect-go/transport/local"
)

func main() {
	configPath, err := config.ResolveConfigPath()
	if err != nil {
		log.Fatalf("failed to resolve config path: %v", err)
	}
	if err := config.EnsureDefaultConfig(configPath); err != nil {
		log.Fatalf("failed to write default config: %v", err)
	}

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	if err := logger.Init(logger.GetLevelFromString(cfg.Logging.Level), logger.Format(cfg.Logging.Format), cfg.Logging.Path); err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}

	adapter := mocktk.NewSampleTree()
	endpoint := inspector.New(adapter, cfg.Endpoint.BindingErrorBufferSize, slog.Default())

	address := local.Address(cfg.Endpoint.RendezvousPrefix, os.Getpid())
	listener, err := local.Listen(address)
	if err != nil {
		logger.Error("failed to listen on rendezvous address", "address", address, "error", err)
		os.Exit(1)
	}
	logger.Info("inspector endpoint listening", "address", address, "pid", strconv.Itoa(os.Getpid()))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := endpoint.Serve(ctx, listener); err != nil && ctx.Err() == nil {
		logger.Error("endpoint stopped unexpectedly", "error", err)
		os.Exit(1)
	}
	logger.Info("inspector endpoint stopped")
}
