package neo4j

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/honeycarbs/listing-watch/internal/domain"
	"github.com/honeycarbs/listing-watch/internal/repository"

	pkgneo4j "github.com/honeycarbs/listing-watch/pkg/neo4j"
)

// Ensure JobRepository implements repository.JobRepository
var _ repository.JobRepository = (*JobRepository)(nil)

const defaultFindLimit = 20

const saveJobsQuery = `
	UNWIND $jobs AS job
	MERGE (j:Job {href: job.href})
	ON CREATE SET j.id = job.id,
	              j.createdAt = datetime({epochMillis: job.createdAt})
	SET j.title = job.title,
	    j.domain = job.domain,
	    j.grade = job.grade,
	    j.location = job.location,
	    j.deadline = job.deadline,
	    j.positionType = job.positionType,
	    j.runId = job.runId
	WITH j, job
	MERGE (l:Listing {code: job.listingCode})
	MERGE (j)-[:LISTED_IN]->(l)
	WITH j, job
	WHERE job.institution <> ''
	MERGE (i:Institution {name: job.institution})
	MERGE (j)-[:PUBLISHED_BY]->(i)
`

const findByListingQuery = `
	MATCH (j:Job)-[:LISTED_IN]->(l:Listing {code: $code})
	OPTIONAL MATCH (j)-[:PUBLISHED_BY]->(i:Institution)
	RETURN j, i.name AS institution, l.code AS listingCode
	ORDER BY j.createdAt DESC
	LIMIT $limit
`

// JobRepository implements repository.JobRepository with Neo4j
type JobRepository struct {
	client *pkgneo4j.Client
}

// NewJobRepository creates a JobRepository with a Neo4j client
func NewJobRepository(client *pkgneo4j.Client) *JobRepository {
	return &JobRepository{
		client: client,
	}
}

// SaveJobs merges jobs by href and links them to their listing and institution
func (r *JobRepository) SaveJobs(ctx context.Context, jobs []domain.Job) error {
	if len(jobs) == 0 {
		return nil
	}

	session := r.client.WriteSession(ctx)
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		result, err := tx.Run(ctx, saveJobsQuery, map[string]any{"jobs": jobParams(jobs)})
		if err != nil {
			return nil, err
		}
		return result.Consume(ctx)
	})
	if err != nil {
		return fmt.Errorf("neo4j: save jobs: %w", err)
	}

	return nil
}

// FindByListing returns the most recently created jobs of a listing
func (r *JobRepository) FindByListing(ctx context.Context, code string, limit int) ([]domain.Job, error) {
	if limit <= 0 {
		limit = defaultFindLimit
	}

	session := r.client.ReadSession(ctx)
	defer session.Close(ctx)

	out, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		result, err := tx.Run(ctx, findByListingQuery, map[string]any{"code": code, "limit": limit})
		if err != nil {
			return nil, err
		}

		records, err := result.Collect(ctx)
		if err != nil {
			return nil, err
		}

		jobs := make([]domain.Job, 0, len(records))
		for _, rec := range records {
			jobVal, ok := rec.Get("j")
			if !ok {
				continue
			}
			node, ok := jobVal.(neo4j.Node)
			if !ok {
				continue
			}

			institution, _ := rec.Get("institution")
			listingCode, _ := rec.Get("listingCode")

			jobs = append(jobs, jobFromProps(node.Props, asString(institution), asString(listingCode)))
		}
		return jobs, nil
	})
	if err != nil {
		return nil, fmt.Errorf("neo4j: find jobs: %w", err)
	}

	return out.([]domain.Job), nil
}

func jobParams(jobs []domain.Job) []map[string]any {
	data := make([]map[string]any, 0, len(jobs))
	for _, j := range jobs {
		data = append(data, map[string]any{
			"id":           j.ID.String(),
			"title":        j.Title,
			"href":         j.Href,
			"domain":       j.Domain,
			"grade":        j.Grade,
			"institution":  j.Institution,
			"location":     j.Location,
			"deadline":     j.Deadline,
			"positionType": string(j.PositionType),
			"listingCode":  j.ListingCode,
			"runId":        j.RunID.String(),
			"createdAt":    j.CreatedAt.UnixMilli(),
		})
	}
	return data
}

func jobFromProps(props map[string]any, institution, listingCode string) domain.Job {
	job := domain.Job{
		JobRecord: domain.JobRecord{
			Title:       asString(props["title"]),
			Href:        asString(props["href"]),
			Domain:      asString(props["domain"]),
			Grade:       asString(props["grade"]),
			Institution: institution,
			Location:    asString(props["location"]),
			Deadline:    asString(props["deadline"]),
		},
		ListingCode:  listingCode,
		PositionType: domain.PositionType(asString(props["positionType"])),
	}

	if id, err := uuid.Parse(asString(props["id"])); err == nil {
		job.ID = id
	}
	if id, err := uuid.Parse(asString(props["runId"])); err == nil {
		job.RunID = id
	}

	switch v := props["createdAt"].(type) {
	case time.Time:
		job.CreatedAt = v
	case neo4j.LocalDateTime:
		job.CreatedAt = v.Time()
	}

	return job
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}
