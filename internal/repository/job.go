package repository

import (
	"context"

	"github.com/honeycarbs/listing-watch/internal/domain"
)

// JobRepository persists discovered jobs and reads them back per listing
type JobRepository interface {
	SaveJobs(ctx context.Context, jobs []domain.Job) error
	FindByListing(ctx context.Context, code string, limit int) ([]domain.Job, error)
}
