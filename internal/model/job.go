package model

import (
	"time"

	"github.com/google/uuid"
)

type JobStatus string

const (
	JobStatusActive     JobStatus = "ACTIVE"
	JobStatusInProgress JobStatus = "IN_PROGRESS"
	JobStatusCompleted  JobStatus = "COMPLETED"
)

type PaymentStatus string

const (
	PaymentStatusNotApplicable   PaymentStatus = "NOT_APPLICABLE"
	PaymentStatusAwaitingInvoice PaymentStatus = "AWAITING_INVOICE"
	PaymentStatusInvoiced        PaymentStatus = "INVOICED"
	PaymentStatusPaid            PaymentStatus = "PAID"
)

type ShiftType string

const (
	ShiftTypeDay    ShiftType = "DAY"
	ShiftTypeNight  ShiftType = "NIGHT"
	ShiftTypeDouble ShiftType = "DOUBLE"
)

type Job struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	JobNumber   string     `gorm:"size:16;uniqueIndex" json:"job_number"`
	ClientID    *uuid.UUID `gorm:"type:uuid;index" json:"client_id"` // nullable for legacy rows
	ScheduledAt time.Time  `gorm:"index" json:"scheduled_at"`
	WorkType    string     `gorm:"size:128" json:"work_type"`
	ShiftType   ShiftType  `gorm:"size:16" json:"shift_type"`
	Site        string     `gorm:"size:255" json:"site"`
	City        string     `gorm:"size:128" json:"city"`
	WorkerID    *uuid.UUID `gorm:"type:uuid" json:"worker_id"`
	VehicleID   *uuid.UUID `gorm:"type:uuid" json:"vehicle_id"`
	CartID      *uuid.UUID `gorm:"type:uuid" json:"cart_id"`
	Amount      *float64   `json:"amount"`
	InvoiceID   *uuid.UUID `gorm:"type:uuid;index" json:"invoice_id"`
	Paid        bool       `json:"paid"`
	Notes       string     `gorm:"type:text" json:"notes"`
	CreatedAt   time.Time  `json:"created_at"`

	// Derived on every read, never persisted.
	Status        JobStatus     `gorm:"-" json:"status"`
	PaymentStatus PaymentStatus `gorm:"-" json:"payment_status"`
}

func (Job) TableName() string { return "jobs" }

// Invoiced reports whether the job has been linked to an invoice.
func (j Job) Invoiced() bool { return j.InvoiceID != nil }

// AmountOrZero treats an unset amount as zero for billing purposes.
func (j Job) AmountOrZero() float64 {
	if j.Amount == nil {
		return 0
	}
	return *j.Amount
}
