package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/honeycarbs/listing-watch/internal/app"
	"github.com/honeycarbs/listing-watch/internal/config"
	"github.com/honeycarbs/listing-watch/internal/domain"
	"github.com/honeycarbs/listing-watch/pkg/logging"
)

func main() {
	code := flag.String("listing", "", "crawl only the listing with this code")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger := logging.New(cfg.LogLevel)
	status := run(cfg, *code, logger)
	_ = logger.Sync()

	os.Exit(status)
}

func run(cfg config.Config, code string, logger *logging.Logger) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	listings := cfg.Listings
	if code != "" {
		l, ok := cfg.FindListing(code)
		if !ok {
			logger.Error("unknown listing", "listing", code)
			return 2
		}
		listings = []domain.Listing{l}
	}

	res, cleanup, err := app.InitializeResources(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize resources", "err", err)
		return 1
	}
	defer cleanup()

	reports, err := res.Runner.RunAll(ctx, listings)
	for _, rep := range reports {
		logger.Info("listing done",
			"listing", rep.Listing,
			"pages", rep.Pages,
			"records", rep.Records,
			"new_jobs", len(rep.NewJobs),
			"bootstrapped", rep.Bootstrapped,
			"truncated", rep.Truncated,
		)
	}
	if err != nil {
		logger.Error("crawl failed", "err", err, "completed", len(reports), "total", len(listings))
		return 1
	}

	return 0
}
