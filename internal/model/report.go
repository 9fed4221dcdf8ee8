package model

import "time"

// InvoiceDocument carries everything the PDF renderer needs: the stored
// invoice (amounts are rendered as persisted, never recomputed) plus the
// client block and optional bank details.
type InvoiceDocument struct {
	Invoice     Invoice
	Client      Client
	BankDetails string
}

// JobsReport is the input to the Excel export: a client's jobs for a period
// with their derived statuses stamped.
type JobsReport struct {
	Client      Client
	PeriodStart time.Time
	PeriodEnd   time.Time
	Jobs        []Job
	TotalAmount float64
}
