package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/roadsafe/billing-service/internal/model"
)

type InvoiceRepository struct {
	db *gorm.DB
}

func NewInvoiceRepository(db *gorm.DB) *InvoiceRepository {
	return &InvoiceRepository{db: db}
}

// Create persists the invoice, its lines and the job linkage in a single
// transaction: either the whole document lands or none of it does.
func (r *InvoiceRepository) Create(ctx context.Context, invoice *model.Invoice, lines []model.InvoiceLine) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		number, err := nextNumber(tx, "invoices", "receipt_number")
		if err != nil {
			return err
		}
		invoice.ReceiptNumber = number

		if err := tx.Omit("Lines").Create(invoice).Error; err != nil {
			return err
		}

		jobIDs := make([]uuid.UUID, 0, len(lines))
		for i := range lines {
			lines[i].InvoiceID = invoice.ID
			if err := tx.Create(&lines[i]).Error; err != nil {
				return err
			}
			if lines[i].JobID != nil {
				jobIDs = append(jobIDs, *lines[i].JobID)
			}
		}

		if len(jobIDs) > 0 {
			if err := tx.Model(&model.Job{}).
				Where("id IN ?", jobIDs).
				Update("invoice_id", invoice.ID).Error; err != nil {
				return err
			}
		}

		invoice.Lines = lines
		return nil
	})
}

func (r *InvoiceRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Invoice, error) {
	var invoice model.Invoice
	err := r.db.WithContext(ctx).
		Preload("Lines").
		First(&invoice, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &invoice, nil
}

func (r *InvoiceRepository) List(ctx context.Context, clientID *uuid.UUID) ([]model.Invoice, error) {
	query := r.db.WithContext(ctx).Model(&model.Invoice{}).Preload("Lines")
	if clientID != nil {
		query = query.Where("client_id = ?", *clientID)
	}

	var invoices []model.Invoice
	if err := query.Order("issue_date DESC, receipt_number DESC").Find(&invoices).Error; err != nil {
		return nil, err
	}
	return invoices, nil
}

func (r *InvoiceRepository) UpdateNotes(ctx context.Context, id uuid.UUID, notes string) error {
	result := r.db.WithContext(ctx).Model(&model.Invoice{}).
		Where("id = ?", id).
		Update("notes", notes)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *InvoiceRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status model.InvoiceStatus) error {
	result := r.db.WithContext(ctx).Model(&model.Invoice{}).
		Where("id = ?", id).
		Update("status", status)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// MarkJobsPaid flags every job billed by the invoice as paid.
func (r *InvoiceRepository) MarkJobsPaid(ctx context.Context, invoiceID uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&model.Job{}).
		Where("invoice_id = ?", invoiceID).
		Update("paid", true).Error
}

// Delete removes the invoice together with its lines and releases the jobs
// it billed, so they become billable again.
func (r *InvoiceRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.Job{}).
			Where("invoice_id = ?", id).
			Update("invoice_id", nil).Error; err != nil {
			return err
		}
		if err := tx.Delete(&model.InvoiceLine{}, "invoice_id = ?", id).Error; err != nil {
			return err
		}
		result := tx.Delete(&model.Invoice{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}
