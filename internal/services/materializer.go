package services

import (
	"context"
	"fmt"

	"github.com/maxaizer/jobs-board/internal/clients/opendata"
	"github.com/maxaizer/jobs-board/internal/entities"
	"github.com/maxaizer/jobs-board/internal/logger"
	"github.com/maxaizer/jobs-board/internal/repositories"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

var (
	ErrJobNotFound  = errors.New("job not found")
	ErrAlreadySaved = repositories.ErrAlreadySaved
)

type recordFetcher interface {
	FetchByID(ctx context.Context, id string) (*opendata.JobRecord, error)
}

type snapshotReader interface {
	Peek(id string) (opendata.JobRecord, bool)
}

type jobStore interface {
	GetByJobID(ctx context.Context, jobID string) (*entities.Job, error)
	Upsert(ctx context.Context, job entities.Job) (*entities.Job, error)
}

type savedJobStore interface {
	IsSaved(ctx context.Context, userID string, jobID string) (bool, error)
	Add(ctx context.Context, userID string, jobID string) error
	Remove(ctx context.Context, userID string, jobID string) (bool, error)
	ListByUser(ctx context.Context, userID string, limit int, offset int) ([]entities.Job, int64, error)
}

// JobMaterializer builds canonical jobs for detail views and owns the save and unsave paths.
// It never triggers a full dataset ingestion.
type JobMaterializer struct {
	dataset  snapshotReader
	upstream recordFetcher
	jobs     jobStore
	saved    savedJobStore
}

func NewJobMaterializer(dataset snapshotReader, upstream recordFetcher, jobs jobStore, saved savedJobStore) *JobMaterializer {
	return &JobMaterializer{
		dataset:  dataset,
		upstream: upstream,
		jobs:     jobs,
		saved:    saved,
	}
}

// GetByID looks the job up in the warm dataset, then among persisted jobs, then upstream.
func (m *JobMaterializer) GetByID(ctx context.Context, id string, requesterID string) (*entities.Job, error) {

	job, err := m.lookup(ctx, id)
	if err != nil {
		return nil, err
	}

	if requesterID != "" {
		isSaved, err := m.saved.IsSaved(ctx, requesterID, id)
		if err != nil {
			log.WithField(logger.ErrorTypeField, logger.ErrorTypeDb).
				Errorf("failed to check whether job %s is saved by %s: %v", id, requesterID, err)
		}
		job.IsSaved = isSaved
	}

	return job, nil
}

func (m *JobMaterializer) lookup(ctx context.Context, id string) (*entities.Job, error) {

	if record, found := m.dataset.Peek(id); found {
		job := ToCanonical(record)
		return &job, nil
	}

	stored, err := m.jobs.GetByJobID(ctx, id)
	if err != nil {
		log.WithField(logger.ErrorTypeField, logger.ErrorTypeDb).
			Errorf("failed to read persisted job %s, asking upstream: %v", id, err)
	} else if stored != nil {
		return stored, nil
	}

	record, err := m.upstream.FetchByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch job %s: %w", id, err)
	}
	if record == nil {
		return nil, ErrJobNotFound
	}

	job := ToCanonical(*record)
	return &job, nil
}

// UpsertFromUpstream fetches a single record and persists its canonical form.
func (m *JobMaterializer) UpsertFromUpstream(ctx context.Context, id string) (*entities.Job, error) {

	record, err := m.upstream.FetchByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch job %s: %w", id, err)
	}
	if record == nil {
		return nil, ErrJobNotFound
	}

	job, err := m.jobs.Upsert(ctx, ToCanonical(*record))
	if err != nil {
		return nil, fmt.Errorf("failed to persist job %s: %w", id, err)
	}
	return job, nil
}

func (m *JobMaterializer) SaveJob(ctx context.Context, userID string, id string) error {

	stored, err := m.jobs.GetByJobID(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to read persisted job %s: %w", id, err)
	}

	if stored == nil {
		if record, found := m.dataset.Peek(id); found {
			_, err = m.jobs.Upsert(ctx, ToCanonical(record))
		} else {
			_, err = m.UpsertFromUpstream(ctx, id)
		}
		if err != nil {
			return err
		}
	}

	return m.saved.Add(ctx, userID, id)
}

// UnsaveJob returns ErrJobNotFound only when no user ever saved the job.
func (m *JobMaterializer) UnsaveJob(ctx context.Context, userID string, id string) error {

	stored, err := m.jobs.GetByJobID(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to read persisted job %s: %w", id, err)
	}
	if stored == nil {
		return ErrJobNotFound
	}

	removed, err := m.saved.Remove(ctx, userID, id)
	if err != nil {
		return err
	}
	if !removed {
		log.Debugf("job %s was not saved by %s", id, userID)
	}
	return nil
}

func (m *JobMaterializer) ListSaved(ctx context.Context, userID string, page, pageSize int) ([]entities.Job, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	return m.saved.ListByUser(ctx, userID, pageSize, (page-1)*pageSize)
}
