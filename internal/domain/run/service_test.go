package run_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/honeycarbs/listing-watch/internal/domain"
	"github.com/honeycarbs/listing-watch/internal/domain/crawl"
	"github.com/honeycarbs/listing-watch/internal/domain/run"
	"github.com/honeycarbs/listing-watch/internal/notify"
	"github.com/honeycarbs/listing-watch/internal/storage/file"
	"github.com/honeycarbs/listing-watch/internal/storage/memory"
)

var listing = domain.Listing{Code: "brussels", Name: "Brussels", PositionType: domain.PositionPermanentStaff}

type fakeCrawler struct {
	records []domain.JobRecord
	pages   int
	err     error
}

func (c *fakeCrawler) Crawl(ctx context.Context, f crawl.Fetcher) (crawl.Result, error) {
	if c.err != nil {
		return crawl.Result{}, c.err
	}
	pages := c.pages
	if pages == 0 {
		pages = 1
	}
	for i := 0; i < pages; i++ {
		if _, err := f.Fetch(ctx, i); err != nil {
			return crawl.Result{}, err
		}
	}
	return crawl.Result{Records: c.records, Pages: pages}, nil
}

type fakeSource struct{}

func (fakeSource) Fetcher(domain.Listing) crawl.Fetcher { return pageFetcher{} }

type pageFetcher struct{}

func (pageFetcher) Fetch(_ context.Context, page int) (string, error) {
	return "<table>page</table>", nil
}

type fakeRepo struct {
	saved [][]domain.Job
	err   error
}

func (r *fakeRepo) SaveJobs(_ context.Context, jobs []domain.Job) error {
	if r.err != nil {
		return r.err
	}
	r.saved = append(r.saved, jobs)
	return nil
}

type fakeNotifier struct {
	calls int
	err   error
}

func (n *fakeNotifier) Name() string { return "fake" }

func (n *fakeNotifier) Notify(context.Context, domain.Listing, []domain.Job) error {
	n.calls++
	return n.err
}

// failingStore wraps memory.Store and fails selected operations
type failingStore struct {
	*memory.Store
	getErr error
	putErr error
}

func (s *failingStore) Get(ctx context.Context, key string) (string, error) {
	if s.getErr != nil {
		return "", s.getErr
	}
	return s.Store.Get(ctx, key)
}

func (s *failingStore) Put(ctx context.Context, key, value string) error {
	if s.putErr != nil && !strings.HasPrefix(key, listing.Code) {
		return s.putErr
	}
	return s.Store.Put(ctx, key, value)
}

func rec(title string) domain.JobRecord {
	return domain.JobRecord{Title: title, Href: "/" + title, Domain: "IT", Grade: "AD5",
		Institution: "Council", Location: "Brussels", Deadline: "01/01/2025"}
}

func newService(t *testing.T, c run.Crawler, store run.SnapshotStore, opts ...run.Option) run.Service {
	t.Helper()
	base := []run.Option{
		run.WithCrawler(c),
		run.WithSource(fakeSource{}),
		run.WithSnapshots(store),
		run.WithClock(func() time.Time { return time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC) }),
	}
	svc, err := run.NewService(append(base, opts...)...)
	require.NoError(t, err)
	return svc
}

func TestRun_BootstrapCopiesLatestToPrevious(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	repo := &fakeRepo{}
	svc := newService(t, &fakeCrawler{records: []domain.JobRecord{rec("a"), rec("b")}}, store, run.WithRepositories(repo))

	rep, err := svc.Run(ctx, listing)

	require.NoError(t, err)
	assert.True(t, rep.Bootstrapped)
	assert.False(t, rep.Rotated)
	assert.Empty(t, rep.NewJobs)
	assert.Empty(t, repo.saved)

	latest, err := store.Get(ctx, listing.LatestKey())
	require.NoError(t, err)
	previous, err := store.Get(ctx, listing.PreviousKey())
	require.NoError(t, err)
	assert.Equal(t, latest, previous)
	assert.Equal(t, 2, strings.Count(latest, "\n"))
}

func TestRun_NoChangeLeavesPreviousUntouched(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	stale := "b|/b|IT|AD5|Council|Brussels|01/01/2025\na|/a|IT|AD5|Council|Brussels|01/01/2025\n"
	require.NoError(t, store.Put(ctx, listing.PreviousKey(), stale))

	repo := &fakeRepo{}
	svc := newService(t, &fakeCrawler{records: []domain.JobRecord{rec("a"), rec("b")}}, store, run.WithRepositories(repo))

	rep, err := svc.Run(ctx, listing)

	require.NoError(t, err)
	assert.False(t, rep.Rotated)
	assert.False(t, rep.Bootstrapped)
	assert.Empty(t, repo.saved)

	previous, err := store.Get(ctx, listing.PreviousKey())
	require.NoError(t, err)
	assert.Equal(t, stale, previous)
}

func TestRun_NewJobsArePersistedNotifiedAndRotated(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	require.NoError(t, store.Put(ctx, listing.PreviousKey(), "a|/a|IT|AD5|Council|Brussels|01/01/2025\n"))

	repo := &fakeRepo{}
	n := &fakeNotifier{}
	svc := newService(t, &fakeCrawler{records: []domain.JobRecord{rec("a"), rec("c"), rec("b")}}, store,
		run.WithRepositories(repo), run.WithNotifiers(n))

	rep, err := svc.Run(ctx, listing)

	require.NoError(t, err)
	assert.True(t, rep.Rotated)
	require.Len(t, rep.NewJobs, 2)
	assert.Equal(t, "b", rep.NewJobs[0].Title)
	assert.Equal(t, "c", rep.NewJobs[1].Title)
	assert.Equal(t, listing.Code, rep.NewJobs[0].ListingCode)
	assert.Equal(t, domain.PositionPermanentStaff, rep.NewJobs[0].PositionType)
	assert.Equal(t, rep.RunID, rep.NewJobs[0].RunID)
	assert.NotEqual(t, rep.NewJobs[0].ID, rep.NewJobs[1].ID)

	require.Len(t, repo.saved, 1)
	assert.Len(t, repo.saved[0], 2)
	assert.Equal(t, 1, n.calls)

	latest, _ := store.Get(ctx, listing.LatestKey())
	previous, _ := store.Get(ctx, listing.PreviousKey())
	assert.Equal(t, latest, previous)
}

func TestRun_NotifierFailureIsNotFatal(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	require.NoError(t, store.Put(ctx, listing.PreviousKey(), ""))

	n := &fakeNotifier{err: errors.New("telegram down")}
	svc := newService(t, &fakeCrawler{records: []domain.JobRecord{rec("a")}}, store,
		run.WithNotifiers([]notify.Notifier{n}...))

	rep, err := svc.Run(ctx, listing)

	require.NoError(t, err)
	assert.True(t, rep.Rotated)
	assert.Equal(t, 1, n.calls)
}

func TestRun_RepositoryFailureAbortsBeforeRotation(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	require.NoError(t, store.Put(ctx, listing.PreviousKey(), ""))

	boom := errors.New("db down")
	svc := newService(t, &fakeCrawler{records: []domain.JobRecord{rec("a")}}, store,
		run.WithRepositories(&fakeRepo{err: boom}))

	_, err := svc.Run(ctx, listing)

	assert.True(t, errors.Is(err, boom))
	previous, _ := store.Get(ctx, listing.PreviousKey())
	assert.Equal(t, "", previous)
}

func TestRun_CrawlFailureWritesNothing(t *testing.T) {
	store := memory.NewStore()
	boom := errors.New("status 500")
	svc := newService(t, &fakeCrawler{err: boom}, store)

	_, err := svc.Run(context.Background(), listing)

	assert.True(t, errors.Is(err, boom))
	assert.Empty(t, store.Keys())
}

func TestRun_StorageFailureIsFatal(t *testing.T) {
	boom := errors.New("connection reset")
	store := &failingStore{Store: memory.NewStore(), getErr: boom}
	svc := newService(t, &fakeCrawler{records: []domain.JobRecord{rec("a")}}, store)

	_, err := svc.Run(context.Background(), listing)

	assert.True(t, errors.Is(err, boom))
	assert.False(t, errors.Is(err, domain.ErrSnapshotNotFound))
}

func TestRun_ReservedCharacterAbortsRun(t *testing.T) {
	store := memory.NewStore()
	svc := newService(t, &fakeCrawler{records: []domain.JobRecord{{Title: "A | B"}}}, store)

	_, err := svc.Run(context.Background(), listing)

	require.Error(t, err)
	assert.Empty(t, store.Keys())
}

func TestRun_ArchivesRawPages(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	svc := newService(t, &fakeCrawler{records: []domain.JobRecord{rec("a")}, pages: 2}, store, run.WithArchive(true))

	_, err := svc.Run(ctx, listing)
	require.NoError(t, err)

	raw, err := store.Get(ctx, "downloads/brussels-20240301T080000Z-p1.html")
	require.NoError(t, err)
	assert.Equal(t, "<table>page</table>", raw)

	for _, key := range store.Keys() {
		assert.NotContains(t, key, ":")
	}
}

func TestRun_ArchivedPagesLandInFileStore(t *testing.T) {
	ctx := context.Background()
	store, err := file.NewStore(t.TempDir())
	require.NoError(t, err)
	svc := newService(t, &fakeCrawler{records: []domain.JobRecord{rec("a")}, pages: 1}, store, run.WithArchive(true))

	_, err = svc.Run(ctx, listing)
	require.NoError(t, err)

	raw, err := store.Get(ctx, "downloads/brussels-20240301T080000Z-p0.html")
	require.NoError(t, err)
	assert.Equal(t, "<table>page</table>", raw)
}

func TestRun_ArchiveFailureIsNotFatal(t *testing.T) {
	store := &failingStore{Store: memory.NewStore(), putErr: errors.New("bucket full")}
	svc := newService(t, &fakeCrawler{records: []domain.JobRecord{rec("a")}}, store, run.WithArchive(true))

	rep, err := svc.Run(context.Background(), listing)

	require.NoError(t, err)
	assert.True(t, rep.Bootstrapped)
}

func TestNewService_Validation(t *testing.T) {
	_, err := run.NewService(run.WithSource(fakeSource{}), run.WithSnapshots(memory.NewStore()))
	assert.Error(t, err)

	_, err = run.NewService(run.WithCrawler(&fakeCrawler{}), run.WithSnapshots(memory.NewStore()))
	assert.Error(t, err)

	_, err = run.NewService(run.WithCrawler(&fakeCrawler{}), run.WithSource(fakeSource{}))
	assert.Error(t, err)
}

type scriptedService struct {
	fail string
	seen []string
}

func (s *scriptedService) Run(_ context.Context, l domain.Listing) (domain.RunReport, error) {
	s.seen = append(s.seen, l.Code)
	if l.Code == s.fail {
		return domain.RunReport{}, errors.New("boom")
	}
	return domain.RunReport{Listing: l.Code}, nil
}

func TestRunner_RunAllStopsAtFirstFailure(t *testing.T) {
	svc := &scriptedService{fail: "b"}
	r, err := run.NewRunner(svc, nil)
	require.NoError(t, err)

	reports, err := r.RunAll(context.Background(), []domain.Listing{{Code: "a"}, {Code: "b"}, {Code: "c"}})

	require.Error(t, err)
	assert.Equal(t, []string{"a", "b"}, svc.seen)
	require.Len(t, reports, 1)
	assert.Equal(t, "a", reports[0].Listing)
}

func TestRunner_RunAll(t *testing.T) {
	svc := &scriptedService{}
	r, err := run.NewRunner(svc, nil)
	require.NoError(t, err)

	reports, err := r.RunAll(context.Background(), []domain.Listing{{Code: "a"}, {Code: "b"}})

	require.NoError(t, err)
	assert.Len(t, reports, 2)
}
