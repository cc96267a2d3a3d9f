package cache

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/asaskevich/EventBus"
	"github.com/maxaizer/jobs-board/internal/clients/opendata"
	"github.com/maxaizer/jobs-board/internal/events"
	"github.com/maxaizer/jobs-board/internal/logger"
	"github.com/maxaizer/jobs-board/internal/metrics"
	"github.com/samber/lo"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

const refreshKey = "dataset"

type batchFetcher interface {
	FetchBatch(ctx context.Context, params opendata.BatchParams) ([]opendata.JobRecord, error)
}

type DatasetOptions struct {
	TTL        time.Duration
	BatchSize  int
	MaxRecords int
}

type DatasetStatus struct {
	Size      int
	FetchedAt time.Time
	Fresh     bool
}

// DatasetCache keeps the whole feed in memory. A stale read blocks until a new snapshot is
// ingested; concurrent stale reads share one ingestion.
type DatasetCache struct {
	fetcher batchFetcher
	bus     EventBus.BusPublisher
	options DatasetOptions
	now     func() time.Time

	mu        sync.RWMutex
	records   []opendata.JobRecord
	index     map[string]int
	fetchedAt time.Time

	group singleflight.Group
}

func NewDatasetCache(fetcher batchFetcher, bus EventBus.BusPublisher, options DatasetOptions) *DatasetCache {
	return &DatasetCache{
		fetcher: fetcher,
		bus:     bus,
		options: options,
		now:     time.Now,
		index:   map[string]int{},
	}
}

func (c *DatasetCache) SetClock(now func() time.Time) {
	c.now = now
}

// GetAll returns the current snapshot, refreshing it first when it is older than the TTL.
// The returned slice is shared and must not be modified.
func (c *DatasetCache) GetAll(ctx context.Context) ([]opendata.JobRecord, error) {
	if records, ok := c.fresh(); ok {
		metrics.CacheLookupsCounter.WithLabelValues("dataset", "hit").Inc()
		return records, nil
	}
	metrics.CacheLookupsCounter.WithLabelValues("dataset", "miss").Inc()

	return c.refresh(ctx, false)
}

// Refresh ingests a new snapshot regardless of the age of the current one.
func (c *DatasetCache) Refresh(ctx context.Context) ([]opendata.JobRecord, error) {
	return c.refresh(ctx, true)
}

// Peek looks a record up in a fresh snapshot. It never triggers an ingestion.
func (c *DatasetCache) Peek(id string) (opendata.JobRecord, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if !c.isFresh() {
		return opendata.JobRecord{}, false
	}

	i, found := c.index[id]
	if !found {
		return opendata.JobRecord{}, false
	}
	return c.records[i], true
}

// Categories returns the sorted distinct non-empty categories of the snapshot.
func (c *DatasetCache) Categories(ctx context.Context) ([]string, error) {
	records, err := c.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	categories := lo.Uniq(lo.FilterMap(records, func(r opendata.JobRecord, _ int) (string, bool) {
		return r.JobCategory, r.JobCategory != ""
	}))
	sort.Strings(categories)
	return categories, nil
}

func (c *DatasetCache) Status() DatasetStatus {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return DatasetStatus{
		Size:      len(c.records),
		FetchedAt: c.fetchedAt,
		Fresh:     c.isFresh(),
	}
}

func (c *DatasetCache) fresh() ([]opendata.JobRecord, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if !c.isFresh() {
		return nil, false
	}
	return c.records, true
}

func (c *DatasetCache) isFresh() bool {
	return !c.fetchedAt.IsZero() && c.now().Sub(c.fetchedAt) < c.options.TTL
}

func (c *DatasetCache) refresh(ctx context.Context, force bool) ([]opendata.JobRecord, error) {

	// the ingestion outlives the caller that started it, other callers may be waiting on it
	detached := context.WithoutCancel(ctx)

	result := c.group.DoChan(refreshKey, func() (any, error) {
		if !force {
			if records, ok := c.fresh(); ok {
				return records, nil
			}
		}
		return c.ingest(detached), nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-result:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.([]opendata.JobRecord), nil
	}
}

func (c *DatasetCache) ingest(ctx context.Context) []opendata.JobRecord {
	start := time.Now()

	var fetched []opendata.JobRecord
	for offset := 0; offset < c.options.MaxRecords; {
		limit := min(c.options.BatchSize, c.options.MaxRecords-offset)

		batch, err := c.fetcher.FetchBatch(ctx, opendata.BatchParams{Offset: offset, Limit: limit, Order: ":id"})
		if err != nil {
			log.WithField(logger.ErrorTypeField, logger.ErrorTypeUpstream).
				Warnf("dataset ingestion stopped at offset %d: %v", offset, err)
			break
		}
		if len(batch) == 0 {
			break
		}

		fetched = append(fetched, batch...)
		offset += len(batch)
	}

	records := lo.UniqBy(lo.Filter(fetched, func(r opendata.JobRecord, _ int) bool {
		return r.JobID != ""
	}), func(r opendata.JobRecord) string {
		return r.JobID
	})

	metrics.DatasetRefreshDuration.Observe(time.Since(start).Seconds())

	c.mu.Lock()
	if len(records) == 0 {
		previous := c.records
		c.mu.Unlock()
		log.WithField(logger.ErrorTypeField, logger.ErrorTypeUpstream).
			Errorf("dataset ingestion returned no records, keeping %d cached records", len(previous))
		return previous
	}

	c.records = records
	c.index = make(map[string]int, len(records))
	for i, r := range records {
		c.index[r.JobID] = i
	}
	c.fetchedAt = c.now()
	fetchedAt := c.fetchedAt
	c.mu.Unlock()

	metrics.DatasetSize.Set(float64(len(records)))
	log.Infof("dataset refreshed: %d records (%d fetched) in %v", len(records), len(fetched), time.Since(start))

	if c.bus != nil {
		c.bus.Publish(events.DatasetRefreshedTopic, events.DatasetRefreshed{Records: len(records), FetchedAt: fetchedAt})
	}

	return records
}
