package services

import (
	"context"
	"strings"
	"sync"

	"github.com/maxaizer/jobs-board/internal/clients/opendata"
	"github.com/stretchr/testify/mock"
)

// fakeFeed stands in for the open-data client. Unfiltered batches page through dataset,
// filtered batches are answered by filtered and single-record lookups by records.
type fakeFeed struct {
	mu sync.Mutex

	dataset     []opendata.JobRecord
	filtered    []opendata.JobRecord
	filteredErr error
	records     map[string]opendata.JobRecord
	recordErr   error

	batchCalls    int
	filteredCalls int
	recordCalls   int
	lastWhere     string
}

func (f *fakeFeed) FetchBatch(_ context.Context, params opendata.BatchParams) ([]opendata.JobRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if params.Where != "" {
		f.filteredCalls++
		f.lastWhere = params.Where
		return f.filtered, f.filteredErr
	}

	f.batchCalls++
	if params.Offset >= len(f.dataset) {
		return nil, nil
	}
	end := min(params.Offset+params.Limit, len(f.dataset))
	return f.dataset[params.Offset:end], nil
}

func (f *fakeFeed) FetchByID(_ context.Context, id string) (*opendata.JobRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.recordCalls++
	if f.recordErr != nil {
		return nil, f.recordErr
	}
	record, found := f.records[id]
	if !found {
		return nil, nil
	}
	return &record, nil
}

type mockSavedJobs struct {
	mock.Mock
}

func (m *mockSavedJobs) SavedJobIDs(ctx context.Context, userID string, jobIDs []string) (map[string]bool, error) {
	args := m.Called(ctx, userID, jobIDs)
	saved, _ := args.Get(0).(map[string]bool)
	return saved, args.Error(1)
}

func record(id, title, posted, salaryFrom string) opendata.JobRecord {
	return opendata.JobRecord{
		JobID:           id,
		BusinessTitle:   title,
		PostingDate:     posted,
		SalaryRangeFrom: salaryFrom,
	}
}

func ids(hits []SearchHit) []string {
	result := make([]string, 0, len(hits))
	for _, hit := range hits {
		result = append(result, hit.JobID)
	}
	return result
}

func lowerTitles(hits []SearchHit) []string {
	result := make([]string, 0, len(hits))
	for _, hit := range hits {
		result = append(result, strings.ToLower(hit.BusinessTitle))
	}
	return result
}
