package http_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/roadsafe/billing-service/internal/config"
	"github.com/roadsafe/billing-service/internal/excel"
	httphandler "github.com/roadsafe/billing-service/internal/http"
	"github.com/roadsafe/billing-service/internal/http/middleware"
	"github.com/roadsafe/billing-service/internal/model"
	"github.com/roadsafe/billing-service/internal/pdf"
	"github.com/roadsafe/billing-service/internal/repository"
	"github.com/roadsafe/billing-service/internal/service"
	"github.com/roadsafe/billing-service/internal/testutil"
)

func setupRouter(t *testing.T, principal model.Principal) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testutil.SetupDB(t)
	cfg := &config.Config{
		Environment: "test",
		Billing: config.BillingConfig{
			TaxRate:          0.18,
			PaymentTermsDays: 30,
			Currency:         "ILS",
		},
	}

	jobRepo := repository.NewJobRepository(db)
	invoiceRepo := repository.NewInvoiceRepository(db)
	stores := httphandler.Stores{
		Clients:  repository.NewStore[model.Client](db),
		Workers:  repository.NewStore[model.Worker](db),
		Vehicles: repository.NewStore[model.Vehicle](db),
		Carts:    repository.NewStore[model.Cart](db),
	}

	jobService := service.NewJobService(jobRepo, stores.Clients, excel.NewGenerator())
	invoiceService := service.NewInvoiceService(jobRepo, invoiceRepo, stores.Clients, pdf.NewGenerator(), cfg)

	log := zerolog.Nop()
	handler := httphandler.NewHandler(jobService, invoiceService, log)
	router := httphandler.NewRouter(handler, stores, middleware.SetPrincipal(principal), "test", log)
	return router, db
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func managerPrincipal() model.Principal {
	return model.Principal{UserID: uuid.New(), Name: "Noa", Role: model.RoleManager}
}

func TestHealthz(t *testing.T) {
	router, _ := setupRouter(t, managerPrincipal())

	rec := doJSON(t, router, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCreateInvoiceFlow(t *testing.T) {
	router, db := setupRouter(t, managerPrincipal())
	client := testutil.CreateClient(t, db, "Acme Ltd")

	j1 := testutil.CreateJob(t, db, client.ID, "0001", time.Date(2025, 8, 5, 8, 0, 0, 0, time.UTC), testutil.Float(900))
	j2 := testutil.CreateJob(t, db, client.ID, "0002", time.Date(2025, 8, 12, 8, 0, 0, 0, time.UTC), testutil.Float(1200))

	// The fetch step: in-month candidates arrive default-selected.
	rec := doJSON(t, router, http.MethodGet,
		fmt.Sprintf("/clients/%s/billable-jobs?month=2025-08", client.ID), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var billable struct {
		InMonth []struct {
			Selected bool `json:"selected"`
		} `json:"in_month"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &billable))
	require.Len(t, billable.InMonth, 2)
	assert.True(t, billable.InMonth[0].Selected)

	rec = doJSON(t, router, http.MethodPost, "/invoices", gin.H{
		"client_id": client.ID.String(),
		"job_ids":   []string{j1.ID.String(), j2.ID.String()},
		"notes":     "August works",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var invoice model.Invoice
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &invoice))
	assert.Equal(t, 2100.0, invoice.Subtotal)
	assert.Equal(t, 378.0, invoice.TaxAmount)
	assert.Equal(t, 2478.0, invoice.Total)
	assert.Len(t, invoice.Lines, 2)
}

func TestCreateInvoiceEmptySelectionRejected(t *testing.T) {
	router, db := setupRouter(t, managerPrincipal())
	client := testutil.CreateClient(t, db, "Acme Ltd")

	rec := doJSON(t, router, http.MethodPost, "/invoices", gin.H{
		"client_id": client.ID.String(),
		"job_ids":   []string{},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var count int64
	require.NoError(t, db.Model(&model.Invoice{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestInvoicePDFEndpoint(t *testing.T) {
	router, db := setupRouter(t, managerPrincipal())
	client := testutil.CreateClient(t, db, "Acme Ltd")
	job := testutil.CreateJob(t, db, client.ID, "0001", time.Date(2025, 8, 5, 8, 0, 0, 0, time.UTC), testutil.Float(900))

	rec := doJSON(t, router, http.MethodPost, "/invoices", gin.H{
		"client_id": client.ID.String(),
		"job_ids":   []string{job.ID.String()},
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var invoice model.Invoice
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &invoice))

	rec = doJSON(t, router, http.MethodGet, "/invoices/"+invoice.ID.String()+"/pdf", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.NotEmpty(t, rec.Body.Bytes())
}

func TestJobsCRUDAndStatusesOverHTTP(t *testing.T) {
	router, db := setupRouter(t, managerPrincipal())
	client := testutil.CreateClient(t, db, "Acme Ltd")

	rec := doJSON(t, router, http.MethodPost, "/jobs", gin.H{
		"client_id":    client.ID.String(),
		"scheduled_at": time.Now().Add(-72 * time.Hour).Format(time.RFC3339),
		"work_type":    "Traffic direction",
		"shift_type":   "day",
		"site":         "Route 4 interchange",
		"city":         "Ashdod",
		"amount":       900,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var job model.Job
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &job))
	assert.Equal(t, "0001", job.JobNumber)
	assert.Equal(t, model.JobStatusCompleted, job.Status)
	assert.Equal(t, model.PaymentStatusAwaitingInvoice, job.PaymentStatus)

	rec = doJSON(t, router, http.MethodGet, "/jobs?client_id="+client.ID.String(), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var list struct {
		Jobs []model.Job `json:"jobs"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Len(t, list.Jobs, 1)
}

func TestCRUDForbiddenForViewer(t *testing.T) {
	viewer := model.Principal{UserID: uuid.New(), Name: "Guest", Role: model.RoleViewer}
	router, _ := setupRouter(t, viewer)

	rec := doJSON(t, router, http.MethodPost, "/workers", gin.H{
		"full_name": "Dana Levi",
	})
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestWorkersCRUDOverHTTP(t *testing.T) {
	router, _ := setupRouter(t, managerPrincipal())

	rec := doJSON(t, router, http.MethodPost, "/workers", gin.H{
		"full_name": "Dana Levi",
		"role":      "flagger",
		"active":    true,
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var worker model.Worker
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &worker))
	assert.NotEqual(t, uuid.Nil, worker.ID)

	rec = doJSON(t, router, http.MethodGet, "/workers", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var list struct {
		Workers []model.Worker `json:"workers"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Len(t, list.Workers, 1)
}

func TestBillableJobsBadMonth(t *testing.T) {
	router, db := setupRouter(t, managerPrincipal())
	client := testutil.CreateClient(t, db, "Acme Ltd")

	rec := doJSON(t, router, http.MethodGet,
		fmt.Sprintf("/clients/%s/billable-jobs?month=August", client.ID), nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
