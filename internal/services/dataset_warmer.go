package services

import (
	"context"
	"time"

	"github.com/maxaizer/jobs-board/internal/clients/opendata"
	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"
)

type datasetRefresher interface {
	Refresh(ctx context.Context) ([]opendata.JobRecord, error)
}

// DatasetWarmer refreshes the dataset on a schedule so requests rarely wait for an ingestion.
type DatasetWarmer struct {
	dataset datasetRefresher
	cron    *cron.Cron
	ctx     context.Context
}

func NewDatasetWarmer(ctx context.Context, dataset datasetRefresher, schedule string) (*DatasetWarmer, error) {

	w := &DatasetWarmer{
		dataset: dataset,
		cron:    cron.New(),
		ctx:     ctx,
	}

	if _, err := w.cron.AddFunc(schedule, w.warm); err != nil {
		return nil, err
	}

	return w, nil
}

// Start warms the dataset once in the background and then follows the schedule.
func (w *DatasetWarmer) Start() {
	go w.warm()
	w.cron.Start()
	log.Info("dataset warmer started")
}

func (w *DatasetWarmer) Stop() {
	<-w.cron.Stop().Done()
}

func (w *DatasetWarmer) warm() {
	start := time.Now()
	records, err := w.dataset.Refresh(w.ctx)
	if err != nil {
		log.Warnf("dataset warm-up failed: %v", err)
		return
	}
	log.Infof("dataset warmed with %d records in %v", len(records), time.Since(start))
}
