package jobs

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bloghub/internal/microservices/http-api/models"
	"bloghub/internal/microservices/http-api/repository"
	"bloghub/internal/testutil"
)

func TestReaper_RemovesOnlyUnengagedOldPosts(t *testing.T) {
	db := testutil.NewDB(t)
	fx := testutil.NewFixtures(t, db)
	now := time.Now().UTC()
	old := now.Add(-8 * 24 * time.Hour)

	stale := testutil.NewPost(t, db, fx.Author, "stale", testutil.Ptr(old))
	pendingOnly := testutil.NewPost(t, db, fx.Author, "pending-only", testutil.Ptr(old))
	testutil.NewComment(t, db, fx.Reader, pendingOnly, nil)
	engaged := testutil.NewPost(t, db, fx.Author, "engaged", testutil.Ptr(old))
	testutil.NewComment(t, db, fx.Reader, engaged, fx.Admin)
	fresh := testutil.NewPost(t, db, fx.Author, "fresh", testutil.Ptr(now))
	require.NoError(t, db.Model(&models.Post{}).
		Where("id IN ?", []int64{stale.ID, pendingOnly.ID, engaged.ID}).
		Update("created_at", old).Error)

	reaper := NewReaper(repository.NewPostRepository(db), 0, testutil.DiscardLogger())
	reaper.now = func() time.Time { return now }

	n, err := reaper.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	var live []int64
	require.NoError(t, db.Model(&models.Post{}).Order("id").Pluck("id", &live).Error)
	assert.ElementsMatch(t, []int64{engaged.ID, fresh.ID}, live)

	// a second pass finds nothing new
	n, err = reaper.Run(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}

type fakeDeleter struct {
	cutoff time.Time
	err    error
}

func (f *fakeDeleter) DeleteStale(_ context.Context, before time.Time) (int64, error) {
	f.cutoff = before
	return 3, f.err
}

func TestReaper_CutoffAndErrors(t *testing.T) {
	now := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)
	del := &fakeDeleter{}
	r := NewReaper(del, 48*time.Hour, testutil.DiscardLogger())
	r.now = func() time.Time { return now }

	n, err := r.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
	assert.Equal(t, now.Add(-48*time.Hour), del.cutoff)

	del.err = errors.New("db down")
	_, err = r.Run(context.Background())
	assert.ErrorIs(t, err, del.err)
}

type countingJob struct {
	mu    sync.Mutex
	runs  int
	fail  bool
	ticks chan struct{}
}

func (j *countingJob) Run(context.Context) (int64, error) {
	j.mu.Lock()
	j.runs++
	j.mu.Unlock()
	select {
	case j.ticks <- struct{}{}:
	default:
	}
	if j.fail {
		return 0, errors.New("failed")
	}
	return 1, nil
}

func TestScheduler_RunsUntilCancelled(t *testing.T) {
	job := &countingJob{fail: true, ticks: make(chan struct{}, 8)}
	s := NewScheduler("test", job, 10*time.Millisecond, testutil.DiscardLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Start(ctx, true)
		close(done)
	}()

	// failures do not stop the loop
	for i := 0; i < 3; i++ {
		select {
		case <-job.ticks:
		case <-time.After(2 * time.Second):
			t.Fatal("scheduler did not tick")
		}
	}
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler did not stop")
	}
	job.mu.Lock()
	defer job.mu.Unlock()
	assert.GreaterOrEqual(t, job.runs, 3)
}
