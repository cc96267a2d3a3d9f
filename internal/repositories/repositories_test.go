package repositories

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/maxaizer/jobs-board/internal/entities"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDb(t *testing.T) *DbContext {
	t.Helper()

	dbCtx, err := NewDbContext(filepath.Join(t.TempDir(), "jobs.db"))
	require.NoError(t, err)
	require.NoError(t, dbCtx.Migrate())

	t.Cleanup(func() { _ = dbCtx.Close() })
	return dbCtx
}

func Test_Jobs_UpsertKeepsFirstCopy(t *testing.T) {
	ctx := context.Background()
	jobs := NewJobsRepository(newTestDb(t).DB)

	missing, err := jobs.GetByJobID(ctx, "123")
	require.NoError(t, err)
	assert.Nil(t, missing)

	salary := 56000.0
	stored, err := jobs.Upsert(ctx, entities.Job{JobID: "123", BusinessTitle: "Tax Auditor", SalaryRangeFrom: &salary})
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, "Tax Auditor", stored.BusinessTitle)
	assert.Equal(t, 56000.0, *stored.SalaryRangeFrom)

	again, err := jobs.Upsert(ctx, entities.Job{JobID: "123", BusinessTitle: "Changed"})
	require.NoError(t, err)
	assert.Equal(t, "Tax Auditor", again.BusinessTitle)
	assert.Equal(t, stored.ID, again.ID)
}

func Test_SavedJobs_AddAndQuery(t *testing.T) {
	ctx := context.Background()
	saved := NewSavedJobsRepository(newTestDb(t).DB)

	require.NoError(t, saved.Add(ctx, "user-1", "A"))
	require.NoError(t, saved.Add(ctx, "user-1", "C"))
	require.NoError(t, saved.Add(ctx, "user-2", "B"))

	assert.ErrorIs(t, saved.Add(ctx, "user-1", "A"), ErrAlreadySaved)

	ids, err := saved.SavedJobIDs(ctx, "user-1", []string{"A", "B", "C", "D"})
	require.NoError(t, err)
	assert.Equal(t, map[string]bool{"A": true, "C": true}, ids)

	ids, err = saved.SavedJobIDs(ctx, "", []string{"A"})
	require.NoError(t, err)
	assert.Empty(t, ids)

	isSaved, err := saved.IsSaved(ctx, "user-2", "A")
	require.NoError(t, err)
	assert.False(t, isSaved)
}

func Test_SavedJobs_Remove(t *testing.T) {
	ctx := context.Background()
	saved := NewSavedJobsRepository(newTestDb(t).DB)

	require.NoError(t, saved.Add(ctx, "user-1", "A"))

	removed, err := saved.Remove(ctx, "user-1", "A")
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = saved.Remove(ctx, "user-1", "A")
	require.NoError(t, err)
	assert.False(t, removed)

	require.NoError(t, saved.Add(ctx, "user-1", "A"))
}

func Test_SavedJobs_ListByUserNewestFirst(t *testing.T) {
	ctx := context.Background()
	db := newTestDb(t).DB
	jobs := NewJobsRepository(db)
	saved := NewSavedJobsRepository(db)

	for _, id := range []string{"A", "B", "C"} {
		_, err := jobs.Upsert(ctx, entities.Job{JobID: id, BusinessTitle: "Job " + id})
		require.NoError(t, err)
		require.NoError(t, saved.Add(ctx, "user-1", id))
		time.Sleep(5 * time.Millisecond)
	}
	require.NoError(t, saved.Add(ctx, "user-2", "A"))

	page, total, err := saved.ListByUser(ctx, "user-1", 2, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, page, 2)
	assert.Equal(t, "C", page[0].JobID)
	assert.Equal(t, "B", page[1].JobID)
	assert.True(t, page[0].IsSaved)

	page, total, err = saved.ListByUser(ctx, "user-1", 2, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, page, 1)
	assert.Equal(t, "A", page[0].JobID)
}
