package services

import (
	"context"
	"fmt"

	"github.com/maxaizer/jobs-board/internal/clients/opendata"
	"github.com/maxaizer/jobs-board/internal/entities"
	"github.com/maxaizer/jobs-board/internal/logger"
	"github.com/maxaizer/jobs-board/internal/metrics"
	"github.com/samber/lo"
	log "github.com/sirupsen/logrus"
)

const (
	strategyCache    = "cache"
	strategyUpstream = "upstream"
	strategyLocal    = "local"
	strategyBrowse   = "browse"

	DefaultPageSize = 20
)

type datasetProvider interface {
	GetAll(ctx context.Context) ([]opendata.JobRecord, error)
	Categories(ctx context.Context) ([]string, error)
}

type batchFetcher interface {
	FetchBatch(ctx context.Context, params opendata.BatchParams) ([]opendata.JobRecord, error)
}

type resultCache interface {
	Get(query entities.SearchQuery) ([]opendata.JobRecord, bool)
	Put(query entities.SearchQuery, records []opendata.JobRecord)
}

type savedJobsReader interface {
	SavedJobIDs(ctx context.Context, userID string, jobIDs []string) (map[string]bool, error)
}

// SearchHit is a search result in its upstream shape with the requester's saved flag.
type SearchHit struct {
	opendata.JobRecord
	IsSaved bool `json:"isSaved"`
}

type SearchResult struct {
	Jobs     []SearchHit
	Page     int
	PageSize int
	Total    int
}

type JobSearcher struct {
	dataset  datasetProvider
	upstream batchFetcher
	results  resultCache
	saved    savedJobsReader
	rowCap   int
}

// NewJobSearcher takes rowCap, the number of rows at which the feed silently truncates a
// filtered query.
func NewJobSearcher(dataset datasetProvider, upstream batchFetcher, results resultCache,
	saved savedJobsReader, rowCap int) (*JobSearcher, error) {

	if rowCap <= 0 {
		return nil, fmt.Errorf("row cap must be positive, got %d", rowCap)
	}

	return &JobSearcher{
		dataset:  dataset,
		upstream: upstream,
		results:  results,
		saved:    saved,
		rowCap:   rowCap,
	}, nil
}

func (s *JobSearcher) Search(ctx context.Context, query entities.SearchQuery, page, pageSize int,
	requesterID string) (*SearchResult, error) {

	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}

	strategy := strategyCache
	records, found := s.results.Get(query)
	if !found {
		var err error
		records, strategy, err = s.compute(ctx, query)
		if err != nil {
			return nil, err
		}
		s.results.Put(query, records)
	}
	metrics.SearchStrategyCounter.WithLabelValues(strategy).Inc()

	pageRecords := paginate(records, page, pageSize)
	saved := s.savedFlags(ctx, requesterID, pageRecords)

	return &SearchResult{
		Jobs: lo.Map(pageRecords, func(r opendata.JobRecord, _ int) SearchHit {
			return SearchHit{JobRecord: normalizeRecord(r), IsSaved: saved[r.JobID]}
		}),
		Page:     page,
		PageSize: pageSize,
		Total:    len(records),
	}, nil
}

func (s *JobSearcher) Categories(ctx context.Context) ([]string, error) {
	return s.dataset.Categories(ctx)
}

// compute returns the deduplicated and sorted result list together with the strategy that
// produced it.
func (s *JobSearcher) compute(ctx context.Context, query entities.SearchQuery) ([]opendata.JobRecord, string, error) {

	if query.HasFilters() {
		if records, ok := s.filterUpstream(ctx, query); ok {
			return sortRecords(dedupe(records), query.Sort), strategyUpstream, nil
		}
	}

	all, err := s.dataset.GetAll(ctx)
	if err != nil {
		return nil, "", err
	}

	if !query.HasFilters() {
		browse := sortRecords(dedupe(all), entities.SortDateDesc)
		if query.Sort != entities.SortDateDesc {
			browse = sortRecords(browse, query.Sort)
		}
		return browse, strategyBrowse, nil
	}

	matched := lo.Filter(all, func(r opendata.JobRecord, _ int) bool {
		return matchesQuery(r, query)
	})
	return sortRecords(dedupe(matched), query.Sort), strategyLocal, nil
}

// filterUpstream asks the feed to filter server-side. The answer is used only when it is
// non-empty and below the row cap.
func (s *JobSearcher) filterUpstream(ctx context.Context, query entities.SearchQuery) ([]opendata.JobRecord, bool) {

	records, err := s.upstream.FetchBatch(ctx, opendata.BatchParams{
		Limit: s.rowCap,
		Where: opendata.WhereFromQuery(query),
	})
	if err != nil {
		log.WithField(logger.ErrorTypeField, logger.ErrorTypeUpstream).
			Warnf("filtered search failed, falling back to local filtering: %v", err)
		return nil, false
	}

	records = withJobID(records)
	if len(records) == 0 {
		log.Debug("filtered search returned no rows, falling back to local filtering")
		return nil, false
	}

	if isSuspectTruncated(len(records), s.rowCap) {
		log.Infof("filtered search returned %d rows with a cap of %d, presumed truncated, falling back to local filtering",
			len(records), s.rowCap)
		return nil, false
	}

	return records, true
}

// isSuspectTruncated reports whether a filtered answer may have been cut at the feed's row cap.
func isSuspectTruncated(count, rowCap int) bool {
	return count >= rowCap
}

func (s *JobSearcher) savedFlags(ctx context.Context, requesterID string, records []opendata.JobRecord) map[string]bool {
	if requesterID == "" || len(records) == 0 {
		return map[string]bool{}
	}

	ids := lo.Map(records, func(r opendata.JobRecord, _ int) string { return r.JobID })
	saved, err := s.saved.SavedJobIDs(ctx, requesterID, ids)
	if err != nil {
		log.WithField(logger.ErrorTypeField, logger.ErrorTypeDb).
			Errorf("failed to load saved jobs of user %s, reporting none as saved: %v", requesterID, err)
		return map[string]bool{}
	}
	return saved
}

// withJobID drops rows without an id, the same rows dataset ingestion drops.
func withJobID(records []opendata.JobRecord) []opendata.JobRecord {
	return lo.Filter(records, func(r opendata.JobRecord, _ int) bool { return r.JobID != "" })
}

func dedupe(records []opendata.JobRecord) []opendata.JobRecord {
	return lo.UniqBy(records, func(r opendata.JobRecord) string { return r.JobID })
}

func paginate(records []opendata.JobRecord, page, pageSize int) []opendata.JobRecord {
	start := (page - 1) * pageSize
	if start >= len(records) {
		return []opendata.JobRecord{}
	}
	end := min(start+pageSize, len(records))
	return records[start:end]
}
