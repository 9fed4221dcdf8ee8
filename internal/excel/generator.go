package excel

import (
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/roadsafe/billing-service/internal/model"
)

type Generator struct{}

func NewGenerator() *Generator {
	return &Generator{}
}

func (g *Generator) Generate(report model.JobsReport) ([]byte, error) {
	file := excelize.NewFile()

	summarySheet := "Summary"
	file.SetSheetName("Sheet1", summarySheet)
	if err := g.writeSummary(file, summarySheet, report); err != nil {
		return nil, err
	}

	detailSheet := "Jobs"
	if _, err := file.NewSheet(detailSheet); err != nil {
		return nil, err
	}
	if err := g.writeJobs(file, detailSheet, report); err != nil {
		return nil, err
	}

	file.SetActiveSheet(0)
	buf, err := file.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (g *Generator) writeSummary(file *excelize.File, sheet string, report model.JobsReport) error {
	set := func(cell string, value interface{}) {
		_ = file.SetCellValue(sheet, cell, value)
	}

	set("A1", "Client")
	set("B1", report.Client.Name)
	set("A2", "Period start")
	set("B2", formatDate(report.PeriodStart))
	set("A3", "Period end")
	set("B3", formatDate(report.PeriodEnd))
	set("A4", "Job count")
	set("B4", len(report.Jobs))
	set("A5", "Total amount")
	set("B5", report.TotalAmount)

	byStatus := map[model.JobStatus]int{}
	for _, job := range report.Jobs {
		byStatus[job.Status]++
	}
	set("A7", "Active")
	set("B7", byStatus[model.JobStatusActive])
	set("A8", "In progress")
	set("B8", byStatus[model.JobStatusInProgress])
	set("A9", "Completed")
	set("B9", byStatus[model.JobStatusCompleted])

	_ = file.SetColWidth(sheet, "A", "A", 22)
	_ = file.SetColWidth(sheet, "B", "B", 30)
	return nil
}

func (g *Generator) writeJobs(file *excelize.File, sheet string, report model.JobsReport) error {
	set := func(cell string, value interface{}) {
		_ = file.SetCellValue(sheet, cell, value)
	}

	headers := []string{
		"Job number",
		"Date",
		"Work type",
		"Shift",
		"Site",
		"City",
		"Amount",
		"Status",
		"Payment status",
	}
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		set(cell, header)
	}

	for i, job := range report.Jobs {
		row := i + 2
		set(fmt.Sprintf("A%d", row), job.JobNumber)
		set(fmt.Sprintf("B%d", row), formatDateTime(job.ScheduledAt))
		set(fmt.Sprintf("C%d", row), job.WorkType)
		set(fmt.Sprintf("D%d", row), string(job.ShiftType))
		set(fmt.Sprintf("E%d", row), job.Site)
		set(fmt.Sprintf("F%d", row), job.City)
		set(fmt.Sprintf("G%d", row), job.AmountOrZero())
		set(fmt.Sprintf("H%d", row), string(job.Status))
		set(fmt.Sprintf("I%d", row), string(job.PaymentStatus))
	}

	_ = file.SetColWidth(sheet, "A", "A", 12)
	_ = file.SetColWidth(sheet, "B", "B", 18)
	_ = file.SetColWidth(sheet, "C", "C", 24)
	_ = file.SetColWidth(sheet, "D", "D", 10)
	_ = file.SetColWidth(sheet, "E", "F", 22)
	_ = file.SetColWidth(sheet, "G", "I", 16)
	return nil
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("02.01.2006")
}

func formatDateTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("02.01.2006 15:04")
}
