package snapshot

import (
	"fmt"
	"strings"

	"github.com/honeycarbs/listing-watch/internal/domain"
)

// Build encodes records in crawl order into one snapshot text.
// Order is kept for readability only; DiffAdded ignores it.
func (c Codec) Build(records []domain.JobRecord) (string, error) {
	var b strings.Builder

	for i, r := range records {
		line, err := c.Encode(r)
		if err != nil {
			return "", fmt.Errorf("record %d: %w", i, err)
		}
		b.WriteString(line)
	}

	return b.String(), nil
}
