package snapshot

import (
	"sort"
	"strings"

	"github.com/pmezard/go-difflib/difflib"

	"github.com/honeycarbs/listing-watch/internal/domain"
)

// Hunk is a contiguous run of lines present in latest but not in previous
type Hunk struct {
	Value string // lines joined by LineTerminator
	Count int
}

// Lines expands the hunk into its individual lines
func (h Hunk) Lines() []string {
	if h.Count == 1 {
		return []string{h.Value}
	}
	return strings.Split(h.Value, LineTerminator)
}

// AddedHunks sorts both snapshots line-wise and returns the inserted hunks of
// a line diff between them. Lines are compared with surrounding whitespace trimmed.
func (c Codec) AddedHunks(previous, latest string) []Hunk {
	prevLines := sortedLines(previous)
	latestLines := sortedLines(latest)

	m := difflib.NewMatcherWithJunk(trimAll(prevLines), trimAll(latestLines), false, nil)

	var hunks []Hunk
	for _, op := range m.GetOpCodes() {
		switch op.Tag {
		case 'i', 'r':
			added := latestLines[op.J1:op.J2]
			hunks = append(hunks, Hunk{
				Value: strings.Join(added, LineTerminator),
				Count: len(added),
			})
		}
	}

	return hunks
}

// DiffAdded returns the records whose lines appear in latest but not in previous.
// Output follows sorted line order; records with an empty title are dropped.
func (c Codec) DiffAdded(previous, latest string) []domain.JobRecord {
	return c.HunkRecords(c.AddedHunks(previous, latest))
}

// HunkRecords expands hunks into records, dropping those with an empty title
func (c Codec) HunkRecords(hunks []Hunk) []domain.JobRecord {
	var out []domain.JobRecord

	for _, h := range hunks {
		for _, line := range h.Lines() {
			r := c.Decode(line)
			if r.Title == "" {
				continue
			}
			out = append(out, r)
		}
	}

	return out
}

func sortedLines(s string) []string {
	lines := strings.Split(s, LineTerminator)
	sort.Strings(lines)
	return lines
}

func trimAll(lines []string) []string {
	out := make([]string, len(lines))
	for i, l := range lines {
		out[i] = strings.TrimSpace(l)
	}
	return out
}
