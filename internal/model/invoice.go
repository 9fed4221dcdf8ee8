package model

import (
	"time"

	"github.com/google/uuid"
)

type InvoiceStatus string

const (
	InvoiceStatusDraft InvoiceStatus = "DRAFT"
	InvoiceStatusSent  InvoiceStatus = "SENT"
	InvoiceStatusPaid  InvoiceStatus = "PAID"
	// InvoiceStatusOverdue is a display state derived from the due date,
	// never written to storage.
	InvoiceStatusOverdue InvoiceStatus = "OVERDUE"
)

type Invoice struct {
	ID                 uuid.UUID     `gorm:"type:uuid;primaryKey" json:"id"`
	ReceiptNumber      string        `gorm:"size:16;uniqueIndex" json:"receipt_number"`
	ClientID           uuid.UUID     `gorm:"type:uuid;index" json:"client_id"`
	IssueDate          time.Time     `json:"issue_date"`
	DueDate            time.Time     `json:"due_date"`
	Subtotal           float64       `json:"subtotal"`
	TaxRate            float64       `json:"tax_rate"`
	TaxAmount          float64       `json:"tax_amount"`
	Total              float64       `json:"total"`
	Currency           string        `gorm:"size:8" json:"currency"`
	Notes              string        `gorm:"type:text" json:"notes"`
	PaymentTerms       string        `gorm:"size:64" json:"payment_terms"`
	IncludeBankDetails bool          `json:"include_bank_details"`
	Status             InvoiceStatus `gorm:"size:16" json:"status"`
	Lines              []InvoiceLine `gorm:"foreignKey:InvoiceID" json:"lines"`
	CreatedAt          time.Time     `json:"created_at"`
}

func (Invoice) TableName() string { return "invoices" }

// DisplayStatus derives the overdue state for rendering. A sent invoice past
// its due date shows as overdue; the stored status is left untouched.
func (inv Invoice) DisplayStatus(now time.Time) InvoiceStatus {
	if inv.Status == InvoiceStatusSent && now.After(inv.DueDate) {
		return InvoiceStatusOverdue
	}
	return inv.Status
}

type InvoiceLine struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	InvoiceID   uuid.UUID  `gorm:"type:uuid;index" json:"invoice_id"`
	JobID       *uuid.UUID `gorm:"type:uuid;uniqueIndex" json:"job_id"` // nil for manual lines
	Description string     `gorm:"size:255" json:"description"`
	Quantity    float64    `json:"quantity"`
	UnitPrice   float64    `json:"unit_price"`
	LineTotal   float64    `json:"line_total"`
	WorkType    string     `gorm:"size:128" json:"work_type"`
	JobDate     time.Time  `json:"job_date"`
	Location    string     `gorm:"size:255" json:"location"`
}

func (InvoiceLine) TableName() string { return "invoice_lines" }
