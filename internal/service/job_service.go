package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/roadsafe/billing-service/internal/billing"
	"github.com/roadsafe/billing-service/internal/model"
	"github.com/roadsafe/billing-service/internal/repository"
)

type ExcelGenerator interface {
	Generate(report model.JobsReport) ([]byte, error)
}

type JobService struct {
	jobs    *repository.JobRepository
	clients *repository.Store[model.Client]
	excel   ExcelGenerator
}

func NewJobService(jobs *repository.JobRepository, clients *repository.Store[model.Client], excel ExcelGenerator) *JobService {
	return &JobService{jobs: jobs, clients: clients, excel: excel}
}

func (s *JobService) List(ctx context.Context, filter repository.JobFilter) ([]model.Job, error) {
	jobs, err := s.jobs.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	for i := range jobs {
		billing.Refresh(&jobs[i], now)
	}
	return jobs, nil
}

func (s *JobService) Get(ctx context.Context, id uuid.UUID) (*model.Job, error) {
	job, err := s.jobs.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	billing.Refresh(job, time.Now())
	return job, nil
}

type JobInput struct {
	ClientID    uuid.UUID
	ScheduledAt time.Time
	WorkType    string
	ShiftType   model.ShiftType
	Site        string
	City        string
	WorkerID    *uuid.UUID
	VehicleID   *uuid.UUID
	CartID      *uuid.UUID
	Amount      *float64
	Notes       string
}

func (s *JobService) Create(ctx context.Context, principal model.Principal, input JobInput) (*model.Job, error) {
	if principal.IsViewer() {
		return nil, ErrPermissionDenied
	}
	if err := validateJobInput(input); err != nil {
		return nil, err
	}

	clientID := input.ClientID
	job := &model.Job{
		ClientID:    &clientID,
		ScheduledAt: input.ScheduledAt,
		WorkType:    strings.TrimSpace(input.WorkType),
		ShiftType:   input.ShiftType,
		Site:        input.Site,
		City:        input.City,
		WorkerID:    input.WorkerID,
		VehicleID:   input.VehicleID,
		CartID:      input.CartID,
		Amount:      input.Amount,
		Notes:       input.Notes,
	}
	if err := s.jobs.Create(ctx, job); err != nil {
		return nil, err
	}
	billing.Refresh(job, time.Now())
	return job, nil
}

func (s *JobService) Update(ctx context.Context, principal model.Principal, id uuid.UUID, input JobInput) (*model.Job, error) {
	if principal.IsViewer() {
		return nil, ErrPermissionDenied
	}
	if err := validateJobInput(input); err != nil {
		return nil, err
	}

	clientID := input.ClientID
	job := &model.Job{
		ID:          id,
		ClientID:    &clientID,
		ScheduledAt: input.ScheduledAt,
		WorkType:    strings.TrimSpace(input.WorkType),
		ShiftType:   input.ShiftType,
		Site:        input.Site,
		City:        input.City,
		WorkerID:    input.WorkerID,
		VehicleID:   input.VehicleID,
		CartID:      input.CartID,
		Amount:      input.Amount,
		Notes:       input.Notes,
	}
	if err := s.jobs.Update(ctx, job); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return s.Get(ctx, id)
}

// Delete removes a job. Jobs already billed by an invoice stay put.
func (s *JobService) Delete(ctx context.Context, principal model.Principal, id uuid.UUID) error {
	if principal.IsViewer() {
		return ErrPermissionDenied
	}
	job, err := s.jobs.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	if job.Invoiced() {
		return fmt.Errorf("%w: unlink it from invoice %s first", ErrJobAlreadyInvoiced, job.InvoiceID)
	}
	return s.jobs.Delete(ctx, id)
}

type ExportJobsInput struct {
	ClientID    uuid.UUID
	PeriodStart time.Time
	PeriodEnd   time.Time
}

type ExportJobsResult struct {
	FileName string
	Content  []byte
}

// ExportExcel builds the jobs workbook for a client and period.
func (s *JobService) ExportExcel(ctx context.Context, input ExportJobsInput) (*ExportJobsResult, error) {
	if input.ClientID == uuid.Nil {
		return nil, fmt.Errorf("%w: client_id is required", ErrInvalidInput)
	}
	if input.PeriodStart.IsZero() || input.PeriodEnd.IsZero() {
		return nil, fmt.Errorf("%w: period dates are required", ErrInvalidInput)
	}
	if input.PeriodStart.After(input.PeriodEnd) {
		return nil, fmt.Errorf("%w: period_start must be before or equal to period_end", ErrInvalidInput)
	}

	client, err := s.clients.Get(ctx, input.ClientID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	clientID := input.ClientID
	from := input.PeriodStart
	to := input.PeriodEnd
	jobs, err := s.jobs.List(ctx, repository.JobFilter{ClientID: &clientID, From: &from, To: &to})
	if err != nil {
		return nil, err
	}

	now := time.Now()
	var total float64
	for i := range jobs {
		billing.Refresh(&jobs[i], now)
		total += jobs[i].AmountOrZero()
	}

	report := model.JobsReport{
		Client:      *client,
		PeriodStart: input.PeriodStart,
		PeriodEnd:   input.PeriodEnd,
		Jobs:        jobs,
		TotalAmount: total,
	}

	content, err := s.excel.Generate(report)
	if err != nil {
		return nil, err
	}
	return &ExportJobsResult{
		FileName: fmt.Sprintf("jobs-%s-%s-%s.xlsx",
			sanitizeFileName(client.Name),
			input.PeriodStart.Format("20060102"),
			input.PeriodEnd.Format("20060102")),
		Content: content,
	}, nil
}

func validateJobInput(input JobInput) error {
	if input.ClientID == uuid.Nil {
		return fmt.Errorf("%w: client_id is required", ErrInvalidInput)
	}
	if input.ScheduledAt.IsZero() {
		return fmt.Errorf("%w: scheduled_at is required", ErrInvalidInput)
	}
	if strings.TrimSpace(input.WorkType) == "" {
		return fmt.Errorf("%w: work_type is required", ErrInvalidInput)
	}
	switch input.ShiftType {
	case model.ShiftTypeDay, model.ShiftTypeNight, model.ShiftTypeDouble:
	default:
		return fmt.Errorf("%w: invalid shift_type", ErrInvalidInput)
	}
	if input.Amount != nil && *input.Amount < 0 {
		return fmt.Errorf("%w: amount must be non-negative", ErrInvalidInput)
	}
	return nil
}

func sanitizeFileName(input string) string {
	result := make([]rune, 0, len(input))
	for _, r := range input {
		switch {
		case r >= 'a' && r <= 'z':
			result = append(result, r)
		case r >= 'A' && r <= 'Z':
			result = append(result, r)
		case r >= '0' && r <= '9':
			result = append(result, r)
		case r == '-', r == '_':
			result = append(result, r)
		default:
			result = append(result, '-')
		}
	}
	return strings.Trim(string(result), "-")
}
