package cache

import (
	"time"

	"github.com/asaskevich/EventBus"
	"github.com/maxaizer/jobs-board/internal/clients/opendata"
	"github.com/maxaizer/jobs-board/internal/entities"
	"github.com/maxaizer/jobs-board/internal/events"
	"github.com/maxaizer/jobs-board/internal/metrics"
	gocache "github.com/patrickmn/go-cache"
	log "github.com/sirupsen/logrus"
)

// ResultCache memoizes filtered and sorted, not yet paginated, search results.
// Expired entries are never returned; a cleanupInterval of zero disables the background sweep.
type ResultCache struct {
	cache *gocache.Cache
}

func NewResultCache(ttl, cleanupInterval time.Duration) *ResultCache {
	return &ResultCache{cache: gocache.New(ttl, cleanupInterval)}
}

func (c *ResultCache) Get(query entities.SearchQuery) ([]opendata.JobRecord, bool) {
	if value, found := c.cache.Get(query.Key()); found {
		metrics.CacheLookupsCounter.WithLabelValues("query", "hit").Inc()
		return value.([]opendata.JobRecord), true
	}
	metrics.CacheLookupsCounter.WithLabelValues("query", "miss").Inc()
	return nil, false
}

func (c *ResultCache) Put(query entities.SearchQuery, records []opendata.JobRecord) {
	c.cache.Set(query.Key(), records, gocache.DefaultExpiration)
}

func (c *ResultCache) Flush() {
	c.cache.Flush()
}

func (c *ResultCache) Len() int {
	return c.cache.ItemCount()
}

// SubscribeTo drops every memoized result whenever a new dataset snapshot is published.
func (c *ResultCache) SubscribeTo(bus EventBus.BusSubscriber) error {
	return bus.Subscribe(events.DatasetRefreshedTopic, c.onDatasetRefreshed)
}

func (c *ResultCache) onDatasetRefreshed(event events.DatasetRefreshed) {
	flushed := c.cache.ItemCount()
	c.Flush()
	log.Debugf("dataset refreshed with %d records, dropped %d cached search results", event.Records, flushed)
}
