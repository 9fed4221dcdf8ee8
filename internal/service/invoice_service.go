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
	"github.com/roadsafe/billing-service/internal/config"
	"github.com/roadsafe/billing-service/internal/model"
	"github.com/roadsafe/billing-service/internal/repository"
)

type PDFGenerator interface {
	Generate(doc model.InvoiceDocument) ([]byte, error)
}

type InvoiceService struct {
	jobs     *repository.JobRepository
	invoices *repository.InvoiceRepository
	clients  *repository.Store[model.Client]
	pdf      PDFGenerator
	cfg      *config.Config
}

func NewInvoiceService(
	jobs *repository.JobRepository,
	invoices *repository.InvoiceRepository,
	clients *repository.Store[model.Client],
	pdf PDFGenerator,
	cfg *config.Config,
) *InvoiceService {
	return &InvoiceService{
		jobs:     jobs,
		invoices: invoices,
		clients:  clients,
		pdf:      pdf,
		cfg:      cfg,
	}
}

// JobSelection pairs a candidate job with its default selection flag:
// in-month jobs start selected, older unbilled jobs start unselected.
type JobSelection struct {
	Job      model.Job `json:"job"`
	Selected bool      `json:"selected"`
}

type BillableJobsResult struct {
	InMonth []JobSelection `json:"in_month"`
	Older   []JobSelection `json:"older"`
}

// BillableJobs returns the invoice-creation candidates for a client and
// billing month. Older not-yet-invoiced jobs are only fetched when the
// caller asks for them.
func (s *InvoiceService) BillableJobs(ctx context.Context, clientID uuid.UUID, month time.Time, includeOlder bool) (*BillableJobsResult, error) {
	if clientID == uuid.Nil {
		return nil, fmt.Errorf("%w: client_id is required", ErrInvalidInput)
	}
	if _, err := s.clients.Get(ctx, clientID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	monthStart := time.Date(month.Year(), month.Month(), 1, 0, 0, 0, 0, time.UTC)
	monthEnd := monthStart.AddDate(0, 1, 0)
	now := time.Now()

	inMonth, err := s.jobs.ListForMonth(ctx, clientID, monthStart, monthEnd)
	if err != nil {
		return nil, err
	}

	result := &BillableJobsResult{
		InMonth: make([]JobSelection, 0, len(inMonth)),
		Older:   []JobSelection{},
	}
	for i := range inMonth {
		billing.Refresh(&inMonth[i], now)
		result.InMonth = append(result.InMonth, JobSelection{Job: inMonth[i], Selected: true})
	}

	if includeOlder {
		older, err := s.jobs.ListOlderUnbilled(ctx, clientID, monthStart)
		if err != nil {
			return nil, err
		}
		for i := range older {
			billing.Refresh(&older[i], now)
			result.Older = append(result.Older, JobSelection{Job: older[i], Selected: false})
		}
	}

	return result, nil
}

type CreateInvoiceInput struct {
	ClientID           uuid.UUID
	JobIDs             []uuid.UUID
	Notes              string
	PaymentTerms       string
	IncludeBankDetails bool
	Principal          model.Principal
}

// CreateInvoice builds the invoice document for the selected jobs and
// persists it atomically together with its lines and the job linkage.
func (s *InvoiceService) CreateInvoice(ctx context.Context, input CreateInvoiceInput) (*model.Invoice, error) {
	if !input.Principal.CanBill() {
		return nil, ErrPermissionDenied
	}
	if input.ClientID == uuid.Nil {
		return nil, fmt.Errorf("%w: client_id is required", ErrInvalidInput)
	}
	if len(input.JobIDs) == 0 {
		return nil, ErrNoJobsSelected
	}

	if _, err := s.clients.Get(ctx, input.ClientID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: client", ErrNotFound)
		}
		return nil, err
	}

	jobs, err := s.jobs.ListByIDs(ctx, input.JobIDs)
	if err != nil {
		return nil, err
	}
	if len(jobs) != len(input.JobIDs) {
		return nil, fmt.Errorf("%w: one or more selected jobs do not exist", ErrInvalidInput)
	}
	for _, job := range jobs {
		if job.ClientID == nil || *job.ClientID != input.ClientID {
			return nil, fmt.Errorf("%w: job %s does not belong to the client", ErrInvalidInput, job.JobNumber)
		}
		if job.Invoiced() {
			return nil, fmt.Errorf("%w: job %s", ErrJobAlreadyInvoiced, job.JobNumber)
		}
	}

	lines := billing.BuildLines(jobs)
	totals := billing.TotalsForLines(lines, s.cfg.Billing.TaxRate)

	issueDate := dateOnly(time.Now())
	invoice := &model.Invoice{
		ClientID:           input.ClientID,
		IssueDate:          issueDate,
		DueDate:            issueDate.AddDate(0, 0, s.termsDays(input.PaymentTerms)),
		Subtotal:           totals.Subtotal,
		TaxRate:            s.cfg.Billing.TaxRate,
		TaxAmount:          totals.Tax,
		Total:              totals.Total,
		Currency:           s.cfg.Billing.Currency,
		Notes:              input.Notes,
		PaymentTerms:       input.PaymentTerms,
		IncludeBankDetails: input.IncludeBankDetails,
		Status:             model.InvoiceStatusDraft,
	}

	if err := s.invoices.Create(ctx, invoice, lines); err != nil {
		return nil, err
	}
	return invoice, nil
}

func (s *InvoiceService) Get(ctx context.Context, id uuid.UUID) (*model.Invoice, error) {
	invoice, err := s.invoices.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	invoice.Status = invoice.DisplayStatus(time.Now())
	return invoice, nil
}

func (s *InvoiceService) List(ctx context.Context, clientID *uuid.UUID) ([]model.Invoice, error) {
	invoices, err := s.invoices.List(ctx, clientID)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	for i := range invoices {
		invoices[i].Status = invoices[i].DisplayStatus(now)
	}
	return invoices, nil
}

func (s *InvoiceService) UpdateNotes(ctx context.Context, principal model.Principal, id uuid.UUID, notes string) error {
	if !principal.CanBill() {
		return ErrPermissionDenied
	}
	if err := s.invoices.UpdateNotes(ctx, id, notes); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

// MarkSent moves a draft invoice to sent. Only drafts can be sent.
func (s *InvoiceService) MarkSent(ctx context.Context, principal model.Principal, id uuid.UUID) error {
	if !principal.CanBill() {
		return ErrPermissionDenied
	}
	invoice, err := s.invoices.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	if invoice.Status != model.InvoiceStatusDraft {
		return fmt.Errorf("%w: only drafts can be sent", ErrInvalidInput)
	}
	return s.invoices.UpdateStatus(ctx, id, model.InvoiceStatusSent)
}

// MarkPaid settles the invoice and flags its jobs as paid.
func (s *InvoiceService) MarkPaid(ctx context.Context, principal model.Principal, id uuid.UUID) error {
	if !principal.CanBill() {
		return ErrPermissionDenied
	}
	invoice, err := s.invoices.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	if invoice.Status == model.InvoiceStatusPaid {
		return nil
	}
	if err := s.invoices.UpdateStatus(ctx, id, model.InvoiceStatusPaid); err != nil {
		return err
	}
	return s.invoices.MarkJobsPaid(ctx, id)
}

// Delete removes a draft invoice and releases its jobs for rebilling.
func (s *InvoiceService) Delete(ctx context.Context, principal model.Principal, id uuid.UUID) error {
	if !principal.CanBill() {
		return ErrPermissionDenied
	}
	invoice, err := s.invoices.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	if invoice.Status != model.InvoiceStatusDraft {
		return ErrInvoiceNotDraft
	}
	return s.invoices.Delete(ctx, id)
}

type RenderPDFResult struct {
	FileName string
	Content  []byte
}

// RenderPDF renders the invoice from its stored amounts. The document never
// recomputes tax on its own.
func (s *InvoiceService) RenderPDF(ctx context.Context, id uuid.UUID) (*RenderPDFResult, error) {
	invoice, err := s.invoices.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	client, err := s.clients.Get(ctx, invoice.ClientID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: client", ErrNotFound)
		}
		return nil, err
	}

	doc := model.InvoiceDocument{
		Invoice: *invoice,
		Client:  *client,
	}
	if invoice.IncludeBankDetails {
		doc.BankDetails = s.cfg.Billing.BankDetails
	}

	content, err := s.pdf.Generate(doc)
	if err != nil {
		return nil, err
	}
	return &RenderPDFResult{
		FileName: fmt.Sprintf("invoice-%s.pdf", invoice.ReceiptNumber),
		Content:  content,
	}, nil
}

// termsDays resolves a payment-terms label to a day count, falling back to
// the configured default for unknown labels.
func (s *InvoiceService) termsDays(label string) int {
	switch strings.ToLower(strings.ReplaceAll(strings.TrimSpace(label), " ", "")) {
	case "immediate":
		return 0
	case "net14":
		return 14
	case "net30":
		return 30
	case "net60":
		return 60
	case "net90":
		return 90
	default:
		return s.cfg.Billing.PaymentTermsDays
	}
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
