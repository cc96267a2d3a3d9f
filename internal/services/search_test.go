package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/maxaizer/jobs-board/internal/cache"
	"github.com/maxaizer/jobs-board/internal/clients/opendata"
	"github.com/maxaizer/jobs-board/internal/entities"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const testRowCap = 1000

func newTestSearcher(t *testing.T, feed *fakeFeed, saved savedJobsReader) *JobSearcher {
	t.Helper()

	dataset := cache.NewDatasetCache(feed, nil, cache.DatasetOptions{TTL: time.Hour, BatchSize: 1000, MaxRecords: 50000})
	results := cache.NewResultCache(time.Minute, 0)
	if saved == nil {
		saved = &mockSavedJobs{}
	}

	searcher, err := NewJobSearcher(dataset, feed, results, saved, testRowCap)
	require.NoError(t, err)
	return searcher
}

func query(text string) entities.SearchQuery {
	return entities.NewSearchQuery(text, "", "", nil, nil, "")
}

func Test_Search_BrowseSortsByPostingDateDescending(t *testing.T) {
	feed := &fakeFeed{dataset: []opendata.JobRecord{
		record("A", "Analyst", "2024-01-01T00:00:00.000", ""),
		record("B", "Clerk", "2024-03-01T00:00:00.000", ""),
		record("C", "Engineer", "2024-02-01T00:00:00.000", ""),
	}}
	searcher := newTestSearcher(t, feed, nil)

	result, err := searcher.Search(context.Background(), query(""), 1, 20, "")
	require.NoError(t, err)

	assert.Equal(t, []string{"B", "C", "A"}, ids(result.Jobs))
	assert.Equal(t, 3, result.Total)
	assert.Equal(t, 0, feed.filteredCalls)
}

func Test_Search_TruncatedUpstreamAnswerFallsBackToLocalFiltering(t *testing.T) {
	var dataset []opendata.JobRecord
	for i := 0; i < 1247; i++ {
		dataset = append(dataset, record(fmt.Sprintf("C%d", i), fmt.Sprintf("Clerk %d", i), "2024-01-01", ""))
	}
	for i := 0; i < 300; i++ {
		dataset = append(dataset, record(fmt.Sprintf("E%d", i), "Engineer", "2024-01-01", ""))
	}

	feed := &fakeFeed{dataset: dataset, filtered: dataset[:testRowCap]}
	searcher := newTestSearcher(t, feed, nil)

	result, err := searcher.Search(context.Background(), query("clerk"), 1, 20, "")
	require.NoError(t, err)

	assert.Equal(t, 1, feed.filteredCalls)
	assert.Greater(t, feed.batchCalls, 0)
	assert.Equal(t, 1247, result.Total)
	assert.NotEqual(t, testRowCap, result.Total)
}

func Test_Search_UpstreamAnswerBelowCapIsAuthoritative(t *testing.T) {
	feed := &fakeFeed{
		dataset:  []opendata.JobRecord{record("X", "Clerk", "2024-01-01", "")},
		filtered: []opendata.JobRecord{record("A", "Clerk", "2024-01-01", ""), record("B", "Clerk II", "2024-02-01", "")},
	}
	searcher := newTestSearcher(t, feed, nil)

	result, err := searcher.Search(context.Background(), query("clerk"), 1, 20, "")
	require.NoError(t, err)

	assert.Equal(t, []string{"B", "A"}, ids(result.Jobs))
	assert.Equal(t, 2, result.Total)
	assert.Equal(t, 0, feed.batchCalls)
	assert.Contains(t, feed.lastWhere, "LIKE '%clerk%'")
}

func Test_Search_FailedOrEmptyUpstreamAnswerFallsBack(t *testing.T) {
	dataset := []opendata.JobRecord{
		record("A", "Clerk", "2024-01-01", ""),
		record("B", "Engineer", "2024-02-01", ""),
	}

	for name, feed := range map[string]*fakeFeed{
		"error": {dataset: dataset, filteredErr: errors.New("timeout")},
		"empty": {dataset: dataset},
	} {
		t.Run(name, func(t *testing.T) {
			searcher := newTestSearcher(t, feed, nil)

			result, err := searcher.Search(context.Background(), query("CLERK"), 1, 20, "")
			require.NoError(t, err)
			assert.Equal(t, []string{"A"}, ids(result.Jobs))
			assert.Equal(t, 1, feed.filteredCalls)
		})
	}
}

func Test_Search_CachedResultServesFurtherPages(t *testing.T) {
	var dataset []opendata.JobRecord
	for i := 0; i < 25; i++ {
		dataset = append(dataset, record(fmt.Sprintf("J%02d", i), "Clerk", fmt.Sprintf("2024-01-%02d", i+1), ""))
	}
	feed := &fakeFeed{dataset: dataset}
	searcher := newTestSearcher(t, feed, nil)

	first, err := searcher.Search(context.Background(), query("clerk"), 1, 10, "")
	require.NoError(t, err)
	assert.Len(t, first.Jobs, 10)
	assert.Equal(t, "J24", first.Jobs[0].JobID)

	calls := feed.filteredCalls + feed.batchCalls

	third, err := searcher.Search(context.Background(), query("  Clerk "), 3, 10, "")
	require.NoError(t, err)
	assert.Len(t, third.Jobs, 5)
	assert.Equal(t, 25, third.Total)

	beyond, err := searcher.Search(context.Background(), query("clerk"), 4, 10, "")
	require.NoError(t, err)
	assert.Empty(t, beyond.Jobs)
	assert.Equal(t, 25, beyond.Total)

	assert.Equal(t, calls, feed.filteredCalls+feed.batchCalls)
}

func Test_Search_SortOrders(t *testing.T) {
	feed := &fakeFeed{dataset: []opendata.JobRecord{
		record("A", "beta", "2024-01-01", "50000"),
		record("B", "Alpha", "", ""),
		record("C", "gamma", "2024-03-01", "not disclosed"),
		record("D", "Delta", "2024-02-01", "70000"),
	}}
	searcher := newTestSearcher(t, feed, nil)

	sorted := func(order entities.SortOrder) []SearchHit {
		result, err := searcher.Search(context.Background(),
			entities.NewSearchQuery("", "", "", nil, nil, order), 1, 20, "")
		require.NoError(t, err)
		return result.Jobs
	}

	assert.Equal(t, []string{"alpha", "beta", "delta", "gamma"}, lowerTitles(sorted(entities.SortTitleAsc)))
	assert.Equal(t, []string{"gamma", "delta", "beta", "alpha"}, lowerTitles(sorted(entities.SortTitleDesc)))

	salaryDesc := ids(sorted(entities.SortSalaryDesc))
	assert.Equal(t, []string{"D", "A"}, salaryDesc[:2])
	assert.ElementsMatch(t, []string{"B", "C"}, salaryDesc[2:])

	assert.Equal(t, "D", ids(sorted(entities.SortSalaryAsc))[3])
	assert.Equal(t, []string{"B", "A", "D", "C"}, ids(sorted(entities.SortDateAsc)))
	assert.Equal(t, []string{"C", "D", "A", "B"}, ids(sorted(entities.SortDateDesc)))
}

func Test_Search_SalaryFiltersExcludeMissingBounds(t *testing.T) {
	withTo := record("A", "Clerk", "2024-01-01", "60000")
	withTo.SalaryRangeTo = "80000"
	noTo := record("B", "Clerk", "2024-01-02", "65000")
	noFrom := record("C", "Clerk", "2024-01-03", "")
	noFrom.SalaryRangeTo = "70000"
	low := record("D", "Clerk", "2024-01-04", "30000")
	low.SalaryRangeTo = "40000"

	feed := &fakeFeed{dataset: []opendata.JobRecord{withTo, noTo, noFrom, low}}
	searcher := newTestSearcher(t, feed, nil)

	salaryMin, salaryMax := 50000, 90000
	result, err := searcher.Search(context.Background(),
		entities.NewSearchQuery("", "", "", &salaryMin, nil, ""), 1, 20, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"B", "A"}, ids(result.Jobs))

	result, err = searcher.Search(context.Background(),
		entities.NewSearchQuery("", "", "", nil, &salaryMax, ""), 1, 20, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"D", "C", "A"}, ids(result.Jobs))

	result, err = searcher.Search(context.Background(),
		entities.NewSearchQuery("", "", "", &salaryMin, &salaryMax, ""), 1, 20, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"A"}, ids(result.Jobs))
}

func Test_Search_CategoryAndLocationFilters(t *testing.T) {
	a := record("A", "Attorney", "2024-01-01", "")
	a.JobCategory = "Legal Affairs"
	a.WorkLocation = "100 Church St"
	b := record("B", "Paralegal", "2024-01-02", "")
	b.JobCategory = "Legal Affairs, Policy"
	b.WorkLocation1 = "Brooklyn"
	c := record("C", "Counsel", "2024-01-03", "")
	c.JobCategory = "legal affairs"
	c.WorkLocation1 = "Brooklyn Navy Yard"

	feed := &fakeFeed{dataset: []opendata.JobRecord{a, b, c}}
	searcher := newTestSearcher(t, feed, nil)

	result, err := searcher.Search(context.Background(),
		entities.NewSearchQuery("", "Legal Affairs", "", nil, nil, ""), 1, 20, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"C", "A"}, ids(result.Jobs))

	result, err = searcher.Search(context.Background(),
		entities.NewSearchQuery("", "", "brooklyn", nil, nil, ""), 1, 20, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"C", "B"}, ids(result.Jobs))
}

func Test_Search_AttachesSavedFlagsForPageOnly(t *testing.T) {
	feed := &fakeFeed{dataset: []opendata.JobRecord{
		record("A", "Analyst", "2024-01-01", ""),
		record("B", "Clerk", "2024-03-01", ""),
		record("C", "Engineer", "2024-02-01", ""),
	}}
	saved := &mockSavedJobs{}
	saved.On("SavedJobIDs", mock.Anything, "user-1", []string{"B", "C"}).Return(map[string]bool{"C": true}, nil)
	searcher := newTestSearcher(t, feed, saved)

	result, err := searcher.Search(context.Background(), query(""), 1, 2, "user-1")
	require.NoError(t, err)

	require.Len(t, result.Jobs, 2)
	assert.False(t, result.Jobs[0].IsSaved)
	assert.True(t, result.Jobs[1].IsSaved)
	saved.AssertExpectations(t)
}

func Test_Search_SavedLookupFailureDegradesToNotSaved(t *testing.T) {
	feed := &fakeFeed{dataset: []opendata.JobRecord{record("A", "Analyst", "2024-01-01", "")}}
	saved := &mockSavedJobs{}
	saved.On("SavedJobIDs", mock.Anything, "user-1", mock.Anything).Return(nil, errors.New("database is locked"))
	searcher := newTestSearcher(t, feed, saved)

	result, err := searcher.Search(context.Background(), query(""), 1, 20, "user-1")
	require.NoError(t, err)
	require.Len(t, result.Jobs, 1)
	assert.False(t, result.Jobs[0].IsSaved)
}

func Test_Search_AnonymousRequesterSkipsSavedLookup(t *testing.T) {
	feed := &fakeFeed{dataset: []opendata.JobRecord{record("A", "Analyst", "2024-01-01", "")}}
	saved := &mockSavedJobs{}
	searcher := newTestSearcher(t, feed, saved)

	_, err := searcher.Search(context.Background(), query(""), 1, 20, "")
	require.NoError(t, err)
	saved.AssertNotCalled(t, "SavedJobIDs", mock.Anything, mock.Anything, mock.Anything)
}

func Test_Search_NormalizesPageText(t *testing.T) {
	garbled := record("A", "administrativeâ€™s assistant", "2024-01-01", "")
	garbled.JobDescription = "Filing &amp; typing"
	feed := &fakeFeed{dataset: []opendata.JobRecord{garbled}}
	searcher := newTestSearcher(t, feed, nil)

	result, err := searcher.Search(context.Background(), query(""), 1, 20, "")
	require.NoError(t, err)

	require.Len(t, result.Jobs, 1)
	assert.Equal(t, "administrative's assistant", result.Jobs[0].BusinessTitle)
	assert.Equal(t, "Filing & typing", result.Jobs[0].JobDescription)
	assert.Equal(t, "administrativeâ€™s assistant", feed.dataset[0].BusinessTitle)
}

func Test_Search_DeduplicatesUpstreamAnswer(t *testing.T) {
	feed := &fakeFeed{filtered: []opendata.JobRecord{
		record("A", "Clerk", "2024-01-01", ""),
		record("A", "Clerk (duplicate)", "2024-01-01", ""),
		record("B", "Clerk", "2024-01-02", ""),
	}}
	searcher := newTestSearcher(t, feed, nil)

	result, err := searcher.Search(context.Background(), query("clerk"), 1, 20, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"B", "A"}, ids(result.Jobs))
	assert.Equal(t, "Clerk", result.Jobs[1].BusinessTitle)
}

func Test_Search_DropsUpstreamRowsWithoutID(t *testing.T) {
	feed := &fakeFeed{filtered: []opendata.JobRecord{
		record("", "Clerk without id", "2024-01-03", ""),
		record("A", "Clerk", "2024-01-01", ""),
		record("", "Another clerk without id", "2024-01-02", ""),
	}}
	searcher := newTestSearcher(t, feed, nil)

	result, err := searcher.Search(context.Background(), query("clerk"), 1, 20, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"A"}, ids(result.Jobs))
	assert.Equal(t, 1, result.Total)
	assert.Equal(t, 0, feed.batchCalls)
}

func Test_Search_UpstreamAnswerWithoutIDsFallsBack(t *testing.T) {
	feed := &fakeFeed{
		dataset:  []opendata.JobRecord{record("X", "Clerk", "2024-01-01", "")},
		filtered: []opendata.JobRecord{record("", "Clerk", "2024-01-01", "")},
	}
	searcher := newTestSearcher(t, feed, nil)

	result, err := searcher.Search(context.Background(), query("clerk"), 1, 20, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"X"}, ids(result.Jobs))
	assert.Greater(t, feed.batchCalls, 0)
}

func Test_IsSuspectTruncated(t *testing.T) {
	assert.False(t, isSuspectTruncated(999, 1000))
	assert.True(t, isSuspectTruncated(1000, 1000))
	assert.True(t, isSuspectTruncated(1001, 1000))
}

func Test_NewJobSearcher_RejectsInvalidRowCap(t *testing.T) {
	_, err := NewJobSearcher(nil, nil, nil, nil, 0)
	assert.Error(t, err)
}
