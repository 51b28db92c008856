package main

import (
	"context"
	"log"
	"net"
	"os"
	"syscall"
	"time"

	"github.com/honeycarbs/listing-watch/internal/app"
	"github.com/honeycarbs/listing-watch/internal/config"
	"github.com/honeycarbs/listing-watch/internal/mcp"
	"github.com/honeycarbs/listing-watch/pkg/logging"
	"github.com/honeycarbs/listing-watch/pkg/shutdown"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger := logging.New(cfg.LogLevel)
	defer func() { _ = logger.Sync() }()

	res, cleanup, err := app.InitializeResources(context.Background(), cfg, logger)
	if err != nil {
		logger.Error("failed to initialize resources", "err", err)
		os.Exit(1)
	}
	defer cleanup()

	deps := mcp.Deps{
		RunService: res.RunService,
		Listings:   cfg.Listings,
		Codec:      res.Codec,
	}
	if res.JobReader != nil {
		deps.JobReader = res.JobReader
	}

	srv := mcp.NewServer(logger, cfg, deps)

	go shutdown.Graceful(
		[]os.Signal{os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT, syscall.SIGHUP},
		srv,
		10*time.Second,
		logger,
	)

	logger.Info("MCP server initialized and starting",
		"addr", net.JoinHostPort(cfg.Host, cfg.Port),
		"listings", len(cfg.Listings),
		"snapshot_store", cfg.Snapshot.Store,
	)

	if err := srv.Run(); err != nil {
		logger.Error("MCP server exited with error", "err", err)
	} else {
		logger.Info("MCP server stopped")
	}
}
