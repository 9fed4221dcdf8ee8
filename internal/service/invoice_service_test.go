package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/roadsafe/billing-service/internal/config"
	"github.com/roadsafe/billing-service/internal/model"
	"github.com/roadsafe/billing-service/internal/repository"
	"github.com/roadsafe/billing-service/internal/service"
	"github.com/roadsafe/billing-service/internal/testutil"
)

type stubPDF struct{}

func (stubPDF) Generate(model.InvoiceDocument) ([]byte, error) {
	return []byte("%PDF-stub"), nil
}

func testConfig() *config.Config {
	return &config.Config{
		Environment: "test",
		Billing: config.BillingConfig{
			TaxRate:          0.18,
			PaymentTermsDays: 30,
			Currency:         "ILS",
			BankDetails:      "Bank Leumi, branch 800, account 123456",
		},
	}
}

func newInvoiceService(t *testing.T) (*service.InvoiceService, *gorm.DB) {
	t.Helper()
	db := testutil.SetupDB(t)
	svc := service.NewInvoiceService(
		repository.NewJobRepository(db),
		repository.NewInvoiceRepository(db),
		repository.NewStore[model.Client](db),
		stubPDF{},
		testConfig(),
	)
	return svc, db
}

func manager() model.Principal {
	return model.Principal{UserID: uuid.New(), Name: "Noa", Role: model.RoleManager}
}

func viewer() model.Principal {
	return model.Principal{UserID: uuid.New(), Name: "Guest", Role: model.RoleViewer}
}

func TestBillableJobsDefaultsSelection(t *testing.T) {
	svc, db := newInvoiceService(t)
	client := testutil.CreateClient(t, db, "Acme Ltd")

	testutil.CreateJob(t, db, client.ID, "0001", time.Date(2025, 8, 5, 8, 0, 0, 0, time.UTC), testutil.Float(900))
	testutil.CreateJob(t, db, client.ID, "0002", time.Date(2025, 8, 20, 8, 0, 0, 0, time.UTC), testutil.Float(1200))
	testutil.CreateJob(t, db, client.ID, "0003", time.Date(2025, 6, 15, 8, 0, 0, 0, time.UTC), testutil.Float(500))

	month := time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC)
	result, err := svc.BillableJobs(context.Background(), client.ID, month, true)
	require.NoError(t, err)

	require.Len(t, result.InMonth, 2)
	for _, sel := range result.InMonth {
		assert.True(t, sel.Selected, "in-month jobs default to selected")
		assert.NotEmpty(t, sel.Job.Status, "statuses are derived on read")
	}

	require.Len(t, result.Older, 1)
	assert.False(t, result.Older[0].Selected, "older jobs default to unselected")
	assert.Equal(t, "0003", result.Older[0].Job.JobNumber)
}

func TestBillableJobsWithoutOlder(t *testing.T) {
	svc, db := newInvoiceService(t)
	client := testutil.CreateClient(t, db, "Acme Ltd")
	testutil.CreateJob(t, db, client.ID, "0001", time.Date(2025, 6, 15, 8, 0, 0, 0, time.UTC), nil)

	month := time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC)
	result, err := svc.BillableJobs(context.Background(), client.ID, month, false)
	require.NoError(t, err)

	assert.Empty(t, result.InMonth)
	assert.Empty(t, result.Older, "older jobs only appear on request")
}

func TestCreateInvoiceComputesTotals(t *testing.T) {
	svc, db := newInvoiceService(t)
	client := testutil.CreateClient(t, db, "Acme Ltd")

	j1 := testutil.CreateJob(t, db, client.ID, "0001", time.Date(2025, 8, 5, 8, 0, 0, 0, time.UTC), testutil.Float(900))
	j2 := testutil.CreateJob(t, db, client.ID, "0002", time.Date(2025, 8, 12, 8, 0, 0, 0, time.UTC), testutil.Float(1200))
	j3 := testutil.CreateJob(t, db, client.ID, "0003", time.Date(2025, 8, 20, 8, 0, 0, 0, time.UTC), nil)

	invoice, err := svc.CreateInvoice(context.Background(), service.CreateInvoiceInput{
		ClientID:  client.ID,
		JobIDs:    []uuid.UUID{j1.ID, j2.ID, j3.ID},
		Principal: manager(),
	})
	require.NoError(t, err)

	assert.Equal(t, 2100.0, invoice.Subtotal)
	assert.Equal(t, 378.0, invoice.TaxAmount)
	assert.Equal(t, 2478.0, invoice.Total)
	assert.Equal(t, model.InvoiceStatusDraft, invoice.Status)
	assert.Equal(t, "ILS", invoice.Currency)
	assert.Equal(t, "0001", invoice.ReceiptNumber)
	require.Len(t, invoice.Lines, 3)
	assert.Equal(t, invoice.IssueDate.AddDate(0, 0, 30), invoice.DueDate)
}

func TestCreateInvoiceRejectsEmptySelection(t *testing.T) {
	svc, db := newInvoiceService(t)
	client := testutil.CreateClient(t, db, "Acme Ltd")

	_, err := svc.CreateInvoice(context.Background(), service.CreateInvoiceInput{
		ClientID:  client.ID,
		JobIDs:    nil,
		Principal: manager(),
	})
	assert.ErrorIs(t, err, service.ErrNoJobsSelected)

	var count int64
	require.NoError(t, db.Model(&model.Invoice{}).Count(&count).Error)
	assert.Zero(t, count, "validation failure must not write anything")
}

func TestCreateInvoiceRejectsForeignJob(t *testing.T) {
	svc, db := newInvoiceService(t)
	acme := testutil.CreateClient(t, db, "Acme Ltd")
	beta := testutil.CreateClient(t, db, "Beta Ltd")
	foreign := testutil.CreateJob(t, db, beta.ID, "0001", time.Date(2025, 8, 5, 8, 0, 0, 0, time.UTC), testutil.Float(900))

	_, err := svc.CreateInvoice(context.Background(), service.CreateInvoiceInput{
		ClientID:  acme.ID,
		JobIDs:    []uuid.UUID{foreign.ID},
		Principal: manager(),
	})
	assert.ErrorIs(t, err, service.ErrInvalidInput)
}

func TestCreateInvoiceRejectsAlreadyInvoicedJob(t *testing.T) {
	svc, db := newInvoiceService(t)
	client := testutil.CreateClient(t, db, "Acme Ltd")
	job := testutil.CreateJob(t, db, client.ID, "0001", time.Date(2025, 8, 5, 8, 0, 0, 0, time.UTC), testutil.Float(900))

	_, err := svc.CreateInvoice(context.Background(), service.CreateInvoiceInput{
		ClientID:  client.ID,
		JobIDs:    []uuid.UUID{job.ID},
		Principal: manager(),
	})
	require.NoError(t, err)

	_, err = svc.CreateInvoice(context.Background(), service.CreateInvoiceInput{
		ClientID:  client.ID,
		JobIDs:    []uuid.UUID{job.ID},
		Principal: manager(),
	})
	assert.ErrorIs(t, err, service.ErrJobAlreadyInvoiced)
}

func TestCreateInvoiceRequiresBillingRole(t *testing.T) {
	svc, db := newInvoiceService(t)
	client := testutil.CreateClient(t, db, "Acme Ltd")
	job := testutil.CreateJob(t, db, client.ID, "0001", time.Date(2025, 8, 5, 8, 0, 0, 0, time.UTC), testutil.Float(900))

	_, err := svc.CreateInvoice(context.Background(), service.CreateInvoiceInput{
		ClientID:  client.ID,
		JobIDs:    []uuid.UUID{job.ID},
		Principal: viewer(),
	})
	assert.ErrorIs(t, err, service.ErrPermissionDenied)
}

func TestCreateInvoicePaymentTermsLabels(t *testing.T) {
	svc, db := newInvoiceService(t)
	client := testutil.CreateClient(t, db, "Acme Ltd")

	j1 := testutil.CreateJob(t, db, client.ID, "0001", time.Date(2025, 8, 5, 8, 0, 0, 0, time.UTC), testutil.Float(100))
	j2 := testutil.CreateJob(t, db, client.ID, "0002", time.Date(2025, 8, 6, 8, 0, 0, 0, time.UTC), testutil.Float(100))

	immediate, err := svc.CreateInvoice(context.Background(), service.CreateInvoiceInput{
		ClientID:     client.ID,
		JobIDs:       []uuid.UUID{j1.ID},
		PaymentTerms: "Immediate",
		Principal:    manager(),
	})
	require.NoError(t, err)
	assert.Equal(t, immediate.IssueDate, immediate.DueDate)

	net60, err := svc.CreateInvoice(context.Background(), service.CreateInvoiceInput{
		ClientID:     client.ID,
		JobIDs:       []uuid.UUID{j2.ID},
		PaymentTerms: "Net 60",
		Principal:    manager(),
	})
	require.NoError(t, err)
	assert.Equal(t, net60.IssueDate.AddDate(0, 0, 60), net60.DueDate)
}

func TestMarkPaidFlagsJobs(t *testing.T) {
	svc, db := newInvoiceService(t)
	client := testutil.CreateClient(t, db, "Acme Ltd")
	job := testutil.CreateJob(t, db, client.ID, "0001", time.Date(2025, 8, 5, 8, 0, 0, 0, time.UTC), testutil.Float(900))

	invoice, err := svc.CreateInvoice(context.Background(), service.CreateInvoiceInput{
		ClientID:  client.ID,
		JobIDs:    []uuid.UUID{job.ID},
		Principal: manager(),
	})
	require.NoError(t, err)

	require.NoError(t, svc.MarkPaid(context.Background(), manager(), invoice.ID))

	loaded, err := svc.Get(context.Background(), invoice.ID)
	require.NoError(t, err)
	assert.Equal(t, model.InvoiceStatusPaid, loaded.Status)

	var paidJob model.Job
	require.NoError(t, db.First(&paidJob, "id = ?", job.ID).Error)
	assert.True(t, paidJob.Paid)
}

func TestDeleteOnlyDrafts(t *testing.T) {
	svc, db := newInvoiceService(t)
	client := testutil.CreateClient(t, db, "Acme Ltd")
	job := testutil.CreateJob(t, db, client.ID, "0001", time.Date(2025, 8, 5, 8, 0, 0, 0, time.UTC), testutil.Float(900))

	invoice, err := svc.CreateInvoice(context.Background(), service.CreateInvoiceInput{
		ClientID:  client.ID,
		JobIDs:    []uuid.UUID{job.ID},
		Principal: manager(),
	})
	require.NoError(t, err)

	require.NoError(t, svc.MarkSent(context.Background(), manager(), invoice.ID))
	err = svc.Delete(context.Background(), manager(), invoice.ID)
	assert.ErrorIs(t, err, service.ErrInvoiceNotDraft)
}

func TestOverdueIsDerivedNotStored(t *testing.T) {
	svc, db := newInvoiceService(t)
	client := testutil.CreateClient(t, db, "Acme Ltd")
	job := testutil.CreateJob(t, db, client.ID, "0001", time.Date(2025, 8, 5, 8, 0, 0, 0, time.UTC), testutil.Float(900))

	invoice, err := svc.CreateInvoice(context.Background(), service.CreateInvoiceInput{
		ClientID:  client.ID,
		JobIDs:    []uuid.UUID{job.ID},
		Principal: manager(),
	})
	require.NoError(t, err)
	require.NoError(t, svc.MarkSent(context.Background(), manager(), invoice.ID))

	// Push the due date into the past directly.
	require.NoError(t, db.Model(&model.Invoice{}).
		Where("id = ?", invoice.ID).
		Update("due_date", time.Now().AddDate(0, 0, -10)).Error)

	loaded, err := svc.Get(context.Background(), invoice.ID)
	require.NoError(t, err)
	assert.Equal(t, model.InvoiceStatusOverdue, loaded.Status)

	var stored model.Invoice
	require.NoError(t, db.First(&stored, "id = ?", invoice.ID).Error)
	assert.Equal(t, model.InvoiceStatusSent, stored.Status, "overdue is display-only")
}

func TestRenderPDFUsesStoredInvoice(t *testing.T) {
	svc, db := newInvoiceService(t)
	client := testutil.CreateClient(t, db, "Acme Ltd")
	job := testutil.CreateJob(t, db, client.ID, "0001", time.Date(2025, 8, 5, 8, 0, 0, 0, time.UTC), testutil.Float(900))

	invoice, err := svc.CreateInvoice(context.Background(), service.CreateInvoiceInput{
		ClientID:  client.ID,
		JobIDs:    []uuid.UUID{job.ID},
		Principal: manager(),
	})
	require.NoError(t, err)

	result, err := svc.RenderPDF(context.Background(), invoice.ID)
	require.NoError(t, err)
	assert.Equal(t, "invoice-0001.pdf", result.FileName)
	assert.NotEmpty(t, result.Content)
}

func TestRenderPDFMissingInvoice(t *testing.T) {
	svc, _ := newInvoiceService(t)

	_, err := svc.RenderPDF(context.Background(), uuid.New())
	assert.ErrorIs(t, err, service.ErrNotFound)
}
