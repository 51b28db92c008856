// Package sheets appends new jobs to a Google spreadsheet.
package sheets

import (
	"context"
	"fmt"
	"time"

	"github.com/honeycarbs/listing-watch/internal/domain"
	"github.com/honeycarbs/listing-watch/internal/notify"
)

var _ notify.Notifier = (*Notifier)(nil)

// DefaultRange is the sheet range rows are appended to
const DefaultRange = "Jobs!A:K"

// Appender is satisfied by *pkg/sheets.Client
type Appender interface {
	AppendRows(ctx context.Context, spreadsheetID, rangeA1 string, rows [][]interface{}) error
}

// Notifier appends one row per job
type Notifier struct {
	client        Appender
	spreadsheetID string
	rangeA1       string
}

func New(client Appender, spreadsheetID, rangeA1 string) (*Notifier, error) {
	if client == nil {
		return nil, fmt.Errorf("sheets: client is required")
	}
	if spreadsheetID == "" {
		return nil, fmt.Errorf("sheets: spreadsheet id is required")
	}
	if rangeA1 == "" {
		rangeA1 = DefaultRange
	}
	return &Notifier{client: client, spreadsheetID: spreadsheetID, rangeA1: rangeA1}, nil
}

func (n *Notifier) Name() string {
	return "sheets"
}

func (n *Notifier) Notify(ctx context.Context, listing domain.Listing, jobs []domain.Job) error {
	if len(jobs) == 0 {
		return nil
	}
	return n.client.AppendRows(ctx, n.spreadsheetID, n.rangeA1, rows(listing, jobs))
}

// columns: listing, position, title, href, domain, grade, institution, location, deadline, found at, job id
func rows(listing domain.Listing, jobs []domain.Job) [][]interface{} {
	out := make([][]interface{}, 0, len(jobs))
	for _, j := range jobs {
		out = append(out, []interface{}{
			listing.Code,
			listing.PositionType.Label(),
			j.Title,
			j.Href,
			j.Domain,
			j.Grade,
			j.Institution,
			j.Location,
			j.Deadline,
			j.CreatedAt.UTC().Format(time.RFC3339),
			j.ID.String(),
		})
	}
	return out
}
