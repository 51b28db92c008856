package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrSnapshotNotFound is returned by snapshot stores when a slot was never written
var ErrSnapshotNotFound = errors.New("snapshot not found")

// JobID uniquely identifies a persisted job
type JobID = uuid.UUID

// RecordFieldCount is the number of positional fields in a JobRecord
const RecordFieldCount = 7

// JobRecord is one row of a listing page, in canonical field order
type JobRecord struct {
	Title       string `json:"title"`
	Href        string `json:"href"`
	Domain      string `json:"domain"`
	Grade       string `json:"grade"`
	Institution string `json:"institution"`
	Location    string `json:"location"`
	Deadline    string `json:"deadline"`
}

// FieldNames lists JobRecord fields in canonical order
var FieldNames = [RecordFieldCount]string{"title", "href", "domain", "grade", "institution", "location", "deadline"}

// Fields returns the record values in canonical order
func (r JobRecord) Fields() [RecordFieldCount]string {
	return [RecordFieldCount]string{r.Title, r.Href, r.Domain, r.Grade, r.Institution, r.Location, r.Deadline}
}

// RecordFromFields builds a record positionally; missing fields stay empty and extras are ignored
func RecordFromFields(fields []string) JobRecord {
	var v [RecordFieldCount]string
	copy(v[:], fields)

	return JobRecord{
		Title:       v[0],
		Href:        v[1],
		Domain:      v[2],
		Grade:       v[3],
		Institution: v[4],
		Location:    v[5],
		Deadline:    v[6],
	}
}

// PositionType classifies what kind of contract a listing advertises
type PositionType string

const (
	PositionPermanentStaff PositionType = "permanent_staff"
	PositionECVacancies    PositionType = "ec_vacancies"
	PositionTemporary      PositionType = "temp"
	PositionCAST           PositionType = "cast"
	PositionSeconded       PositionType = "seconded"
	PositionOthers         PositionType = "others"
)

var positionLabels = map[PositionType]string{
	PositionPermanentStaff: "Permanent staff",
	PositionECVacancies:    "EC vacancies",
	PositionTemporary:      "Temporary",
	PositionCAST:           "CAST",
	PositionSeconded:       "Seconded",
	PositionOthers:         "Others",
}

// Valid reports whether p is a known position type
func (p PositionType) Valid() bool {
	_, ok := positionLabels[p]
	return ok
}

// Label returns the human readable name, or the raw value when unknown
func (p PositionType) Label() string {
	if l, ok := positionLabels[p]; ok {
		return l
	}
	return string(p)
}

// Listing is one category of the job board that gets its own snapshot slots
type Listing struct {
	Code         string            `json:"code" yaml:"code"`
	Name         string            `json:"name" yaml:"name"`
	URL          string            `json:"url,omitempty" yaml:"url"`
	Query        map[string]string `json:"query,omitempty" yaml:"query"`
	PositionType PositionType      `json:"position_type" yaml:"position_type"`
}

const (
	latestFileName   = "latest.txt"
	previousFileName = "previous.txt"
)

// LatestKey is the storage key holding the snapshot of the most recent crawl
func (l Listing) LatestKey() string {
	return l.Code + "/" + latestFileName
}

// PreviousKey is the storage key holding the baseline snapshot
func (l Listing) PreviousKey() string {
	return l.Code + "/" + previousFileName
}

// Job is a newly discovered record accepted for persistence
type Job struct {
	ID           JobID        `json:"id"`
	JobRecord                 // canonical fields
	ListingCode  string       `json:"listing_code"`
	PositionType PositionType `json:"position_type"`
	RunID        uuid.UUID    `json:"run_id"`
	CreatedAt    time.Time    `json:"created_at"`
}

// RunReport summarises one crawl-and-diff run for a listing
type RunReport struct {
	RunID        uuid.UUID `json:"run_id"`
	Listing      string    `json:"listing"`
	Pages        int       `json:"pages"`
	Records      int       `json:"records"`
	Truncated    bool      `json:"truncated"`
	Bootstrapped bool      `json:"bootstrapped"`
	Rotated      bool      `json:"rotated"`
	NewJobs      []Job     `json:"new_jobs"`
	StartedAt    time.Time `json:"started_at"`
	FinishedAt   time.Time `json:"finished_at"`
}
