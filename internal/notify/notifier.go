// Package notify fans newly discovered jobs out to external channels.
package notify

import (
	"context"

	"github.com/honeycarbs/listing-watch/internal/domain"
)

// Notifier announces new jobs found for a listing
type Notifier interface {
	// e.g. "telegram" or "kafka"
	Name() string

	Notify(ctx context.Context, listing domain.Listing, jobs []domain.Job) error
}
