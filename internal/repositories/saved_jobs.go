package repositories

import (
	"context"
	"time"

	"github.com/maxaizer/jobs-board/internal/entities"
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrAlreadySaved = errors.New("job already saved")

type SavedJobs struct {
	db *gorm.DB
}

func NewSavedJobsRepository(db *gorm.DB) *SavedJobs {
	return &SavedJobs{db: db}
}

// SavedJobIDs returns the subset of jobIDs the user has saved.
func (repo *SavedJobs) SavedJobIDs(ctx context.Context, userID string, jobIDs []string) (map[string]bool, error) {
	saved := map[string]bool{}
	if userID == "" || len(jobIDs) == 0 {
		return saved, nil
	}

	var ids []string
	err := repo.db.WithContext(ctx).Model(&entities.SavedJob{}).
		Where("user_id = ? AND job_id IN ?", userID, jobIDs).
		Pluck("job_id", &ids).Error
	if err != nil {
		return nil, err
	}

	for _, id := range ids {
		saved[id] = true
	}
	return saved, nil
}

func (repo *SavedJobs) IsSaved(ctx context.Context, userID string, jobID string) (bool, error) {
	saved, err := repo.SavedJobIDs(ctx, userID, []string{jobID})
	if err != nil {
		return false, err
	}
	return saved[jobID], nil
}

func (repo *SavedJobs) Add(ctx context.Context, userID string, jobID string) error {
	res := repo.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&entities.SavedJob{UserID: userID, JobID: jobID, SavedAt: time.Now().UTC()})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrAlreadySaved
	}
	return nil
}

// Remove reports whether an association was deleted.
func (repo *SavedJobs) Remove(ctx context.Context, userID string, jobID string) (bool, error) {
	res := repo.db.WithContext(ctx).
		Where("user_id = ? AND job_id = ?", userID, jobID).
		Delete(&entities.SavedJob{})
	return res.RowsAffected > 0, res.Error
}

// ListByUser returns a page of the user's saved jobs, most recently saved first, and the
// total number of jobs the user has saved.
func (repo *SavedJobs) ListByUser(ctx context.Context, userID string, limit int, offset int) ([]entities.Job, int64, error) {

	var total int64
	if err := repo.db.WithContext(ctx).Model(&entities.SavedJob{}).
		Where("user_id = ?", userID).
		Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var jobs []entities.Job
	if err := repo.db.WithContext(ctx).
		Joins("JOIN saved_jobs ON saved_jobs.job_id = jobs.job_id").
		Where("saved_jobs.user_id = ?", userID).
		Order("saved_jobs.saved_at DESC").
		Order("saved_jobs.id DESC").
		Limit(limit).
		Offset(offset).
		Find(&jobs).Error; err != nil {
		return nil, 0, err
	}

	for i := range jobs {
		jobs[i].IsSaved = true
	}
	return jobs, total, nil
}
