package run

import (
	"context"

	"github.com/honeycarbs/listing-watch/internal/domain"
	"github.com/honeycarbs/listing-watch/internal/domain/crawl"
)

// SnapshotStore holds named snapshot slots. Get returns domain.ErrSnapshotNotFound
// for a slot that was never written.
type SnapshotStore interface {
	Get(ctx context.Context, key string) (string, error)
	Put(ctx context.Context, key, value string) error
	Copy(ctx context.Context, srcKey, dstKey string) error
}

// Repository persists newly discovered jobs
type Repository interface {
	SaveJobs(ctx context.Context, jobs []domain.Job) error
}

// Crawler walks every page of a listing
type Crawler interface {
	Crawl(ctx context.Context, fetcher crawl.Fetcher) (crawl.Result, error)
}

// Source binds a listing to a page fetcher
type Source interface {
	Fetcher(listing domain.Listing) crawl.Fetcher
}
