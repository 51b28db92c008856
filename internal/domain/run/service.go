// Package run coordinates one crawl, snapshot and diff cycle per listing.
package run

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/honeycarbs/listing-watch/internal/domain"
	"github.com/honeycarbs/listing-watch/internal/domain/crawl"
	"github.com/honeycarbs/listing-watch/internal/domain/snapshot"
	"github.com/honeycarbs/listing-watch/internal/notify"
	"github.com/honeycarbs/listing-watch/pkg/logging"
)

const (
	// ArchivePrefix is the key prefix under which raw pages are archived
	ArchivePrefix = "downloads/"
	// ArchiveTimeLayout stamps archive keys; it must not contain ':'
	ArchiveTimeLayout = "20060102T150405Z"
)

type Service interface {
	Run(ctx context.Context, listing domain.Listing) (domain.RunReport, error)
}

// Option configures Service
type Option func(*config)

type config struct {
	crawler   Crawler
	source    Source
	snapshots SnapshotStore
	repos     []Repository
	notifiers []notify.Notifier
	codec     snapshot.Codec
	logger    *logging.Logger
	clock     func() time.Time
	archive   bool
}

// WithCrawler sets the pagination controller
func WithCrawler(c Crawler) Option {
	return func(cfg *config) {
		cfg.crawler = c
	}
}

// WithSource sets the page source
func WithSource(s Source) Option {
	return func(cfg *config) {
		cfg.source = s
	}
}

// WithSnapshots sets the snapshot store
func WithSnapshots(s SnapshotStore) Option {
	return func(cfg *config) {
		cfg.snapshots = s
	}
}

// WithRepositories sets where new jobs are persisted
func WithRepositories(repos ...Repository) Option {
	return func(cfg *config) {
		cfg.repos = repos
	}
}

// WithNotifiers sets who hears about new jobs
func WithNotifiers(n ...notify.Notifier) Option {
	return func(cfg *config) {
		cfg.notifiers = n
	}
}

// WithCodec overrides the snapshot codec
func WithCodec(c snapshot.Codec) Option {
	return func(cfg *config) {
		cfg.codec = c
	}
}

// WithLogger sets the logger
func WithLogger(l *logging.Logger) Option {
	return func(cfg *config) {
		cfg.logger = l
	}
}

// WithClock sets a custom clock
func WithClock(clock func() time.Time) Option {
	return func(cfg *config) {
		cfg.clock = clock
	}
}

// WithArchive enables storing every fetched page in the snapshot store
func WithArchive(enabled bool) Option {
	return func(cfg *config) {
		cfg.archive = enabled
	}
}

// NewService builds Service from options
func NewService(opts ...Option) (Service, error) {
	cfg := &config{
		codec: snapshot.NewCodec(""),
		clock: time.Now,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	if cfg.crawler == nil {
		return nil, fmt.Errorf("run.Service: crawler is required")
	}
	if cfg.source == nil {
		return nil, fmt.Errorf("run.Service: source is required")
	}
	if cfg.snapshots == nil {
		return nil, fmt.Errorf("run.Service: snapshot store is required")
	}
	if cfg.logger == nil {
		cfg.logger = logging.NewNop()
	}
	if cfg.clock == nil {
		cfg.clock = time.Now
	}

	return &service{
		crawler:   cfg.crawler,
		source:    cfg.source,
		snapshots: cfg.snapshots,
		repos:     cfg.repos,
		notifiers: cfg.notifiers,
		codec:     cfg.codec,
		logger:    cfg.logger,
		clock:     cfg.clock,
		archive:   cfg.archive,
	}, nil
}

// NewServiceWithDeps creates a Service with direct dependencies (Wire-compatible)
func NewServiceWithDeps(
	crawler Crawler,
	source Source,
	snapshots SnapshotStore,
	repos []Repository,
	notifiers []notify.Notifier,
	codec snapshot.Codec,
	logger *logging.Logger,
	archive bool,
) (Service, error) {
	return NewService(
		WithCrawler(crawler),
		WithSource(source),
		WithSnapshots(snapshots),
		WithRepositories(repos...),
		WithNotifiers(notifiers...),
		WithCodec(codec),
		WithLogger(logger),
		WithArchive(archive),
	)
}

type service struct {
	crawler   Crawler
	source    Source
	snapshots SnapshotStore
	repos     []Repository
	notifiers []notify.Notifier
	codec     snapshot.Codec
	logger    *logging.Logger
	clock     func() time.Time
	archive   bool
}

// Run crawls the listing, stores the latest snapshot and reports the jobs that
// were not in the previous one. The previous slot only advances when something
// new was found.
func (s *service) Run(ctx context.Context, listing domain.Listing) (domain.RunReport, error) {
	if listing.Code == "" {
		return domain.RunReport{}, fmt.Errorf("run: listing code is required")
	}

	report := domain.RunReport{
		RunID:     uuid.New(),
		Listing:   listing.Code,
		StartedAt: s.clock(),
	}
	logger := s.logger.With("listing", listing.Code, "run_id", report.RunID.String())

	fetcher := s.source.Fetcher(listing)
	if s.archive {
		fetcher = &archivingFetcher{
			next:   fetcher,
			store:  s.snapshots,
			logger: logger,
			prefix: ArchivePrefix + listing.Code + "-" + report.StartedAt.UTC().Format(ArchiveTimeLayout),
		}
	}

	res, err := s.crawler.Crawl(ctx, fetcher)
	if err != nil {
		return domain.RunReport{}, fmt.Errorf("run %s: %w", listing.Code, err)
	}
	report.Pages = res.Pages
	report.Records = len(res.Records)
	report.Truncated = res.Truncated

	latest, err := s.codec.Build(res.Records)
	if err != nil {
		return domain.RunReport{}, fmt.Errorf("run %s: build snapshot: %w", listing.Code, err)
	}

	if err := s.snapshots.Put(ctx, listing.LatestKey(), latest); err != nil {
		return domain.RunReport{}, fmt.Errorf("run %s: store latest: %w", listing.Code, err)
	}

	previous, err := s.snapshots.Get(ctx, listing.PreviousKey())
	switch {
	case errors.Is(err, domain.ErrSnapshotNotFound):
		if err := s.rotate(ctx, listing); err != nil {
			return domain.RunReport{}, err
		}
		report.Bootstrapped = true
		report.FinishedAt = s.clock()
		logger.Info("no previous snapshot, bootstrapped", "records", report.Records)
		return report, nil
	case err != nil:
		return domain.RunReport{}, fmt.Errorf("run %s: load previous: %w", listing.Code, err)
	}

	added := s.codec.DiffAdded(previous, latest)
	if len(added) == 0 {
		report.FinishedAt = s.clock()
		logger.Info("no new jobs", "records", report.Records, "pages", report.Pages)
		return report, nil
	}

	jobs := s.toJobs(listing, report.RunID, added)

	for _, repo := range s.repos {
		if err := repo.SaveJobs(ctx, jobs); err != nil {
			return domain.RunReport{}, fmt.Errorf("run %s: save jobs: %w", listing.Code, err)
		}
	}

	for _, n := range s.notifiers {
		if err := n.Notify(ctx, listing, jobs); err != nil {
			logger.Warn("notifier failed", "notifier", n.Name(), "err", err)
		}
	}

	if err := s.rotate(ctx, listing); err != nil {
		return domain.RunReport{}, err
	}

	report.NewJobs = jobs
	report.Rotated = true
	report.FinishedAt = s.clock()

	logger.Info("new jobs found", "new", len(jobs), "records", report.Records, "pages", report.Pages)
	return report, nil
}

func (s *service) rotate(ctx context.Context, listing domain.Listing) error {
	if err := s.snapshots.Copy(ctx, listing.LatestKey(), listing.PreviousKey()); err != nil {
		return fmt.Errorf("run %s: rotate snapshot: %w", listing.Code, err)
	}
	return nil
}

func (s *service) toJobs(listing domain.Listing, runID uuid.UUID, records []domain.JobRecord) []domain.Job {
	now := s.clock()

	jobs := make([]domain.Job, 0, len(records))
	for _, r := range records {
		jobs = append(jobs, domain.Job{
			ID:           uuid.New(),
			JobRecord:    r,
			ListingCode:  listing.Code,
			PositionType: listing.PositionType,
			RunID:        runID,
			CreatedAt:    now,
		})
	}
	return jobs
}

// archivingFetcher stores every fetched page; store failures are logged only
type archivingFetcher struct {
	next   crawl.Fetcher
	store  SnapshotStore
	logger *logging.Logger
	prefix string
}

func (f *archivingFetcher) Fetch(ctx context.Context, page int) (string, error) {
	raw, err := f.next.Fetch(ctx, page)
	if err != nil {
		return "", err
	}

	key := f.prefix + "-p" + strconv.Itoa(page) + ".html"
	if err := f.store.Put(ctx, key, raw); err != nil {
		f.logger.Warn("archive page failed", "key", key, "err", err)
	}

	return raw, nil
}
