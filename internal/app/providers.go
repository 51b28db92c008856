// Package app wires configuration into the run service and its backends.
package app

import (
	"context"
	"fmt"

	"github.com/honeycarbs/listing-watch/internal/config"
	"github.com/honeycarbs/listing-watch/internal/domain/crawl"
	sourceepso "github.com/honeycarbs/listing-watch/internal/domain/crawl/sources/epso"
	"github.com/honeycarbs/listing-watch/internal/domain/run"
	"github.com/honeycarbs/listing-watch/internal/domain/snapshot"
	"github.com/honeycarbs/listing-watch/internal/notify"
	kafkanotify "github.com/honeycarbs/listing-watch/internal/notify/kafka"
	sheetsnotify "github.com/honeycarbs/listing-watch/internal/notify/sheets"
	telegramnotify "github.com/honeycarbs/listing-watch/internal/notify/telegram"
	"github.com/honeycarbs/listing-watch/internal/repository"
	"github.com/honeycarbs/listing-watch/internal/storage/file"
	"github.com/honeycarbs/listing-watch/internal/storage/memory"
	storageneo4j "github.com/honeycarbs/listing-watch/internal/storage/neo4j"
	"github.com/honeycarbs/listing-watch/internal/storage/postgres"
	storageredis "github.com/honeycarbs/listing-watch/internal/storage/redis"
	"github.com/honeycarbs/listing-watch/pkg/epso"
	"github.com/honeycarbs/listing-watch/pkg/logging"
	n4j "github.com/honeycarbs/listing-watch/pkg/neo4j"
	pkgsheets "github.com/honeycarbs/listing-watch/pkg/sheets"
)

// Resources holds everything the binaries need for a run
type Resources struct {
	RunService run.Service
	Runner     *run.Runner
	Codec      snapshot.Codec
	JobReader  repository.JobRepository // nil unless Neo4j is configured
}

func newResources(
	svc run.Service,
	runner *run.Runner,
	codec snapshot.Codec,
	graph *storageneo4j.JobRepository,
) *Resources {
	res := &Resources{
		RunService: svc,
		Runner:     runner,
		Codec:      codec,
	}
	if graph != nil {
		res.JobReader = graph
	}
	return res
}

func provideCodec(cfg config.Config) snapshot.Codec {
	return snapshot.NewCodec(cfg.Snapshot.Delimiter)
}

func provideEPSOClient(cfg config.Config) (*epso.Client, error) {
	return epso.NewClient(epso.Config{
		BaseURL:   cfg.Listing.BaseURL,
		PageParam: cfg.Listing.PageParam,
		UserAgent: cfg.Listing.UserAgent,
	})
}

func provideSource(client *epso.Client, logger *logging.Logger) (*sourceepso.Source, error) {
	src, err := sourceepso.NewSource(client)
	if err != nil {
		return nil, err
	}
	logger.Debug("listing source ready", "source", src.Name())
	return src, nil
}

func provideParser() *sourceepso.Parser {
	return sourceepso.NewParser(epso.NewParser(epso.DefaultParserConfig()))
}

func provideCrawler(cfg config.Config, parser *sourceepso.Parser, logger *logging.Logger) (*crawl.Controller, error) {
	crawlLogger := logger.Named("crawl")
	c, err := crawl.NewController(parser,
		crawl.WithMaxPages(cfg.Listing.MaxPages),
		crawl.WithLogger(crawlLogger),
		crawl.WithPageHook(func(_ context.Context, page int, raw string) {
			crawlLogger.Debug("page fetched", "page", page, "bytes", len(raw))
		}),
	)
	if err != nil {
		return nil, err
	}
	crawlLogger.Info("crawler ready", "max_pages", c.MaxPages())
	return c, nil
}

func provideSnapshotStore(ctx context.Context, cfg config.Config) (run.SnapshotStore, func(), error) {
	switch cfg.Snapshot.Store {
	case config.StoreRedis:
		s := storageredis.NewStore(cfg.Redis.Addr, cfg.Redis.Prefix)
		if err := s.Ping(ctx); err != nil {
			_ = s.Close()
			return nil, nil, fmt.Errorf("redis: ping: %w", err)
		}
		return s, func() { _ = s.Close() }, nil
	case config.StoreMemory:
		return memory.NewStore(), func() {}, nil
	default:
		s, err := file.NewStore(cfg.Snapshot.Dir)
		if err != nil {
			return nil, nil, err
		}
		return s, func() {}, nil
	}
}

func providePostgres(ctx context.Context, cfg config.Config) (*postgres.Repository, func(), error) {
	if cfg.DatabaseURL == "" {
		return nil, func() {}, nil
	}

	repo, err := postgres.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}
	if err := repo.EnsureSchema(ctx); err != nil {
		repo.Close()
		return nil, nil, err
	}
	return repo, repo.Close, nil
}

// provideNeo4jConfig extracts Neo4j config from main config
func provideNeo4jConfig(cfg config.Config) n4j.Config {
	return n4j.Config{
		URI:      cfg.Neo4j.URI,
		Username: cfg.Neo4j.Username,
		Password: cfg.Neo4j.Password,
	}
}

func provideNeo4jClient(ctx context.Context, cfg n4j.Config) (*n4j.Client, func(), error) {
	if cfg.URI == "" {
		return nil, func() {}, nil
	}

	client, err := n4j.NewClient(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	return client, func() { _ = client.Close(context.Background()) }, nil
}

func provideGraphRepository(client *n4j.Client) *storageneo4j.JobRepository {
	if client == nil {
		return nil
	}
	return storageneo4j.NewJobRepository(client)
}

func provideRepositories(pg *postgres.Repository, graph *storageneo4j.JobRepository, logger *logging.Logger) []run.Repository {
	var repos []run.Repository
	if pg != nil {
		repos = append(repos, pg)
	}
	if graph != nil {
		repos = append(repos, graph)
	}
	if len(repos) == 0 {
		logger.Warn("no job repository configured, new jobs are only reported")
	}
	return repos
}

func provideNotifiers(ctx context.Context, cfg config.Config) ([]notify.Notifier, func(), error) {
	var (
		notifiers []notify.Notifier
		cleanups  []func()
	)
	cleanup := func() {
		for _, c := range cleanups {
			c()
		}
	}

	if cfg.Telegram.Token != "" {
		tg, err := telegramnotify.New(cfg.Telegram.Token, cfg.Telegram.ChatID, cfg.SiteURL())
		if err != nil {
			return nil, nil, err
		}
		notifiers = append(notifiers, tg)
	}

	if cfg.Kafka.Broker != "" {
		producer := kafkanotify.NewProducer(cfg.Kafka.Broker, cfg.Kafka.Topic)
		notifiers = append(notifiers, producer)
		cleanups = append(cleanups, func() { _ = producer.Close() })
	}

	if cfg.Sheets.SpreadsheetID != "" {
		client, err := pkgsheets.NewClient(ctx, pkgsheets.Config{CredentialsPath: cfg.Sheets.CredentialsPath})
		if err != nil {
			cleanup()
			return nil, nil, err
		}
		sn, err := sheetsnotify.New(client, cfg.Sheets.SpreadsheetID, cfg.Sheets.Range)
		if err != nil {
			cleanup()
			return nil, nil, err
		}
		notifiers = append(notifiers, sn)
	}

	return notifiers, cleanup, nil
}

func provideRunService(
	cfg config.Config,
	crawler run.Crawler,
	source run.Source,
	snapshots run.SnapshotStore,
	repos []run.Repository,
	notifiers []notify.Notifier,
	codec snapshot.Codec,
	logger *logging.Logger,
) (run.Service, error) {
	return run.NewServiceWithDeps(crawler, source, snapshots, repos, notifiers, codec, logger.Named("run"), cfg.Snapshot.ArchiveRawPages)
}
