package repositories

import (
	"context"

	"github.com/maxaizer/jobs-board/internal/entities"
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Jobs stores canonical copies of jobs that at least one user has saved.
type Jobs struct {
	db *gorm.DB
}

func NewJobsRepository(db *gorm.DB) *Jobs {
	return &Jobs{db: db}
}

// GetByJobID returns nil without an error when the job was never persisted.
func (repo *Jobs) GetByJobID(ctx context.Context, jobID string) (*entities.Job, error) {
	var job entities.Job
	err := repo.db.WithContext(ctx).First(&job, "job_id = ?", jobID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &job, nil
}

// Upsert inserts the job unless a copy with the same JobID already exists and returns the
// stored copy.
func (repo *Jobs) Upsert(ctx context.Context, job entities.Job) (*entities.Job, error) {
	job.ID = 0
	err := repo.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "job_id"}}, DoNothing: true}).
		Create(&job).Error
	if err != nil {
		return nil, err
	}

	return repo.GetByJobID(ctx, job.JobID)
}
