package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/asaskevich/EventBus"
	"github.com/maxaizer/jobs-board/internal/cache"
	"github.com/maxaizer/jobs-board/internal/clients/opendata"
	"github.com/maxaizer/jobs-board/internal/config"
	"github.com/maxaizer/jobs-board/internal/logger"
	"github.com/maxaizer/jobs-board/internal/metrics"
	"github.com/maxaizer/jobs-board/internal/repositories"
	"github.com/maxaizer/jobs-board/internal/server"
	"github.com/maxaizer/jobs-board/internal/services"
	log "github.com/sirupsen/logrus"
)

const shutdownTimeout = 10 * time.Second

func newUpstreamClient(cfg config.UpstreamConfig) *opendata.Client {
	client := opendata.NewClient(cfg.BaseURL)
	client.SetRateLimit(cfg.MaxRequestsPerSecond)
	client.SetRetryPolicy(cfg.MaxAttempts, cfg.BackoffBase)
	client.SetTimeouts(cfg.BatchTimeout, cfg.RecordTimeout)
	return client
}

func main() {

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.Get()

	logger.Setup(ctx, cfg.Logger)
	defer logger.Cleanup()

	metrics.Register()

	dbContext, err := repositories.NewDbContext(cfg.DB.ConnectionString)
	if err != nil {
		log.Fatalf("can't create db context: %v", err)
	}
	defer dbContext.Close()

	err = dbContext.Migrate()
	if err != nil {
		log.Fatalf("can't migrate db context: %v", err)
	}

	jobs := repositories.NewJobsRepository(dbContext.DB)
	savedJobs := repositories.NewSavedJobsRepository(dbContext.DB)

	upstream := newUpstreamClient(cfg.Upstream)
	bus := EventBus.New()

	dataset := cache.NewDatasetCache(upstream, bus, cache.DatasetOptions{
		TTL:        cfg.Cache.DatasetTTL,
		BatchSize:  cfg.Upstream.BatchSize,
		MaxRecords: cfg.Upstream.MaxRecords,
	})

	results := cache.NewResultCache(cfg.Cache.QueryTTL, cfg.Cache.QueryCleanupInterval)
	if err = results.SubscribeTo(bus); err != nil {
		log.Fatalf("can't subscribe result cache: %v", err)
	}

	searcher, err := services.NewJobSearcher(dataset, upstream, results, savedJobs, cfg.Upstream.FilteredRowCap)
	if err != nil {
		log.Fatalf("can't create searcher: %v", err)
	}
	materializer := services.NewJobMaterializer(dataset, upstream, jobs, savedJobs)

	warmer, err := services.NewDatasetWarmer(ctx, dataset, cfg.Cache.WarmSchedule)
	if err != nil {
		log.Fatalf("can't create dataset warmer: %v", err)
	}
	warmer.Start()
	defer warmer.Stop()

	srv := server.NewServer(cfg.Server, server.NewJobsHandler(searcher, materializer, dataset))
	go func() {
		if err := srv.Run(); err != nil {
			log.Errorf("http server failed: %v", err)
			stop()
		}
	}()

	<-ctx.Done()

	log.Info("Shutting down services...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorf("http server shutdown failed: %v", err)
	}
	log.Info("Services stopped.")
}
