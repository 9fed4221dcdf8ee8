package billing

import (
	"fmt"

	"github.com/roadsafe/billing-service/internal/model"
)

// BuildLines turns the selected jobs into invoice lines, one per job in
// input order. A job with no recorded amount still yields a line, billed at
// zero, so the invoice accounts for every selected job.
func BuildLines(jobs []model.Job) []model.InvoiceLine {
	lines := make([]model.InvoiceLine, 0, len(jobs))
	for _, job := range jobs {
		jobID := job.ID
		unit := job.AmountOrZero()
		lines = append(lines, model.InvoiceLine{
			JobID:       &jobID,
			Description: lineDescription(job),
			Quantity:    1,
			UnitPrice:   unit,
			LineTotal:   1 * unit,
			WorkType:    job.WorkType,
			JobDate:     job.ScheduledAt,
			Location:    lineLocation(job),
		})
	}
	return lines
}

func lineDescription(job model.Job) string {
	return fmt.Sprintf("%s — job #%s", job.WorkType, job.JobNumber)
}

func lineLocation(job model.Job) string {
	if job.Site == "" {
		return job.City
	}
	if job.City == "" {
		return job.Site
	}
	return job.Site + ", " + job.City
}
