// Package billing holds the pure billing rules: job status derivation,
// invoice line construction and totals arithmetic. Nothing in this package
// touches storage or the clock; callers pass "now" in.
package billing

import (
	"time"

	"github.com/roadsafe/billing-service/internal/model"
)

// statusWindow is the band around "now" inside which a job counts as in
// progress. Both boundaries are inclusive.
const statusWindow = 24 * time.Hour

// DeriveStatus classifies a job along a single time axis relative to now:
// more than 24 hours in the past is completed, more than 24 hours in the
// future is still scheduled, anything in between is in progress.
func DeriveStatus(scheduledAt, now time.Time) model.JobStatus {
	diff := scheduledAt.Sub(now)
	switch {
	case diff < -statusWindow:
		return model.JobStatusCompleted
	case diff > statusWindow:
		return model.JobStatusActive
	default:
		return model.JobStatusInProgress
	}
}

// DerivePaymentStatus maps a job's lifecycle status to its payment status.
// Payment status is meaningless until the job is finished; once the job is
// linked to an invoice it tracks the invoice instead.
func DerivePaymentStatus(status model.JobStatus, invoiced, paid bool) model.PaymentStatus {
	if invoiced {
		if paid {
			return model.PaymentStatusPaid
		}
		return model.PaymentStatusInvoiced
	}
	if status == model.JobStatusCompleted {
		return model.PaymentStatusAwaitingInvoice
	}
	return model.PaymentStatusNotApplicable
}

// Refresh stamps the derived statuses onto a job. Call it on every read.
func Refresh(job *model.Job, now time.Time) {
	job.Status = DeriveStatus(job.ScheduledAt, now)
	job.PaymentStatus = DerivePaymentStatus(job.Status, job.Invoiced(), job.Paid)
}
