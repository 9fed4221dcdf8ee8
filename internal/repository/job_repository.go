package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/roadsafe/billing-service/internal/model"
)

type JobRepository struct {
	db *gorm.DB
}

func NewJobRepository(db *gorm.DB) *JobRepository {
	return &JobRepository{db: db}
}

type JobFilter struct {
	ClientID *uuid.UUID
	From     *time.Time
	To       *time.Time
}

func (r *JobRepository) List(ctx context.Context, filter JobFilter) ([]model.Job, error) {
	query := r.db.WithContext(ctx).Model(&model.Job{})
	if filter.ClientID != nil {
		query = query.Where("client_id = ?", *filter.ClientID)
	}
	if filter.From != nil {
		query = query.Where("scheduled_at >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("scheduled_at < ?", *filter.To)
	}

	var jobs []model.Job
	if err := query.Order("scheduled_at ASC").Find(&jobs).Error; err != nil {
		return nil, err
	}
	return jobs, nil
}

func (r *JobRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Job, error) {
	var job model.Job
	if err := r.db.WithContext(ctx).First(&job, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &job, nil
}

func (r *JobRepository) ListByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Job, error) {
	if len(ids) == 0 {
		return []model.Job{}, nil
	}
	var jobs []model.Job
	if err := r.db.WithContext(ctx).
		Where("id IN ?", ids).
		Order("scheduled_at ASC").
		Find(&jobs).Error; err != nil {
		return nil, err
	}
	return jobs, nil
}

// Create assigns the next sequential job number and inserts the job in one
// transaction, so numbers stay unique and strictly increasing.
func (r *JobRepository) Create(ctx context.Context, job *model.Job) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		number, err := nextNumber(tx, "jobs", "job_number")
		if err != nil {
			return err
		}
		job.JobNumber = number
		return tx.Create(job).Error
	})
}

func (r *JobRepository) Update(ctx context.Context, job *model.Job) error {
	result := r.db.WithContext(ctx).Model(&model.Job{}).
		Where("id = ?", job.ID).
		Select("client_id", "scheduled_at", "work_type", "shift_type", "site",
			"city", "worker_id", "vehicle_id", "cart_id", "amount", "notes").
		Updates(job)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *JobRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&model.Job{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ListForMonth returns the client's jobs scheduled inside [monthStart,
// monthEnd), ordered by date. These are the default-selected candidates for
// a new invoice.
func (r *JobRepository) ListForMonth(ctx context.Context, clientID uuid.UUID, monthStart, monthEnd time.Time) ([]model.Job, error) {
	var jobs []model.Job
	err := r.db.WithContext(ctx).
		Where("client_id = ?", clientID).
		Where("scheduled_at >= ? AND scheduled_at < ?", monthStart, monthEnd).
		Order("scheduled_at ASC").
		Find(&jobs).Error
	if err != nil {
		return nil, err
	}
	return jobs, nil
}

// ListOlderUnbilled returns the client's jobs dated before the billing month
// that are not yet linked to any invoice, newest first.
func (r *JobRepository) ListOlderUnbilled(ctx context.Context, clientID uuid.UUID, before time.Time) ([]model.Job, error) {
	var jobs []model.Job
	err := r.db.WithContext(ctx).
		Where("client_id = ?", clientID).
		Where("scheduled_at < ?", before).
		Where("invoice_id IS NULL").
		Order("scheduled_at DESC").
		Find(&jobs).Error
	if err != nil {
		return nil, err
	}
	return jobs, nil
}

// nextNumber issues the next value of a zero-padded 4-digit sequence stored
// in a varchar column.
func nextNumber(tx *gorm.DB, table, column string) (string, error) {
	var max int64
	query := fmt.Sprintf("SELECT COALESCE(MAX(CAST(%s AS INTEGER)), 0) FROM %s", column, table)
	if err := tx.Raw(query).Scan(&max).Error; err != nil {
		return "", err
	}
	return fmt.Sprintf("%04d", max+1), nil
}
