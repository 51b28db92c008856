//go:build wireinject
// +build wireinject

package app

import (
	"context"

	"github.com/google/wire"

	"github.com/honeycarbs/listing-watch/internal/config"
	"github.com/honeycarbs/listing-watch/internal/domain/crawl"
	sourceepso "github.com/honeycarbs/listing-watch/internal/domain/crawl/sources/epso"
	"github.com/honeycarbs/listing-watch/internal/domain/run"
	"github.com/honeycarbs/listing-watch/pkg/logging"
)

// InitializeResources creates Resources with all backends wired up
func InitializeResources(ctx context.Context, cfg config.Config, logger *logging.Logger) (*Resources, func(), error) {
	wire.Build(
		// Listing source
		provideEPSOClient,
		provideSource,
		wire.Bind(new(run.Source), new(*sourceepso.Source)),
		provideParser,
		provideCrawler,
		wire.Bind(new(run.Crawler), new(*crawl.Controller)),
		provideCodec,

		// Storage
		provideSnapshotStore,
		providePostgres,
		provideNeo4jConfig,
		provideNeo4jClient,
		provideGraphRepository,
		provideRepositories,

		// Notifiers
		provideNotifiers,

		// Services
		provideRunService,
		run.NewRunner,
		newResources,
	)

	return nil, nil, nil
}
