package http

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/roadsafe/billing-service/internal/http/middleware"
	"github.com/roadsafe/billing-service/internal/model"
	"github.com/roadsafe/billing-service/internal/repository"
	"github.com/roadsafe/billing-service/internal/service"
)

type Handler struct {
	jobs     *service.JobService
	invoices *service.InvoiceService
	log      zerolog.Logger
}

func NewHandler(jobs *service.JobService, invoices *service.InvoiceService, log zerolog.Logger) *Handler {
	return &Handler{jobs: jobs, invoices: invoices, log: log}
}

func (h *Handler) Register(rg *gin.RouterGroup) {
	rg.GET("/jobs", h.listJobs)
	rg.GET("/jobs/export", h.exportJobs)
	rg.GET("/jobs/:id", h.getJob)
	rg.POST("/jobs", h.createJob)
	rg.PUT("/jobs/:id", h.updateJob)
	rg.DELETE("/jobs/:id", h.deleteJob)

	rg.GET("/clients/:id/billable-jobs", h.billableJobs)

	rg.GET("/invoices", h.listInvoices)
	rg.GET("/invoices/:id", h.getInvoice)
	rg.GET("/invoices/:id/pdf", h.invoicePDF)
	rg.POST("/invoices", h.createInvoice)
	rg.PATCH("/invoices/:id", h.patchInvoice)
	rg.DELETE("/invoices/:id", h.deleteInvoice)
}

func (h *Handler) listJobs(c *gin.Context) {
	var filter repository.JobFilter

	if raw := c.Query("client_id"); raw != "" {
		clientID, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid client_id"})
			return
		}
		filter.ClientID = &clientID
	}
	if raw := c.Query("from"); raw != "" {
		from, err := parseDate(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid from"})
			return
		}
		filter.From = &from
	}
	if raw := c.Query("to"); raw != "" {
		to, err := parseDate(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid to"})
			return
		}
		filter.To = &to
	}

	jobs, err := h.jobs.List(c.Request.Context(), filter)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"jobs": jobs})
}

func (h *Handler) getJob(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	job, err := h.jobs.Get(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, job)
}

type jobRequest struct {
	ClientID    string   `json:"client_id" binding:"required"`
	ScheduledAt string   `json:"scheduled_at" binding:"required"`
	WorkType    string   `json:"work_type" binding:"required"`
	ShiftType   string   `json:"shift_type" binding:"required"`
	Site        string   `json:"site"`
	City        string   `json:"city"`
	WorkerID    *string  `json:"worker_id"`
	VehicleID   *string  `json:"vehicle_id"`
	CartID      *string  `json:"cart_id"`
	Amount      *float64 `json:"amount"`
	Notes       string   `json:"notes"`
}

func (req jobRequest) toInput() (service.JobInput, error) {
	clientID, err := uuid.Parse(strings.TrimSpace(req.ClientID))
	if err != nil {
		return service.JobInput{}, errors.New("invalid client_id")
	}
	scheduledAt, err := parseDate(req.ScheduledAt)
	if err != nil {
		return service.JobInput{}, errors.New("invalid scheduled_at")
	}

	input := service.JobInput{
		ClientID:    clientID,
		ScheduledAt: scheduledAt,
		WorkType:    req.WorkType,
		ShiftType:   model.ShiftType(strings.ToUpper(strings.TrimSpace(req.ShiftType))),
		Site:        req.Site,
		City:        req.City,
		Amount:      req.Amount,
		Notes:       req.Notes,
	}

	for _, ref := range []struct {
		raw  *string
		dest **uuid.UUID
		name string
	}{
		{req.WorkerID, &input.WorkerID, "worker_id"},
		{req.VehicleID, &input.VehicleID, "vehicle_id"},
		{req.CartID, &input.CartID, "cart_id"},
	} {
		if ref.raw == nil || strings.TrimSpace(*ref.raw) == "" {
			continue
		}
		id, err := uuid.Parse(strings.TrimSpace(*ref.raw))
		if err != nil {
			return service.JobInput{}, errors.New("invalid " + ref.name)
		}
		*ref.dest = &id
	}

	return input, nil
}

func (h *Handler) createJob(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}

	var req jobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	input, err := req.toInput()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	job, err := h.jobs.Create(c.Request.Context(), principal, input)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, job)
}

func (h *Handler) updateJob(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	var req jobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	input, err := req.toInput()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	job, err := h.jobs.Update(c.Request.Context(), principal, id, input)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, job)
}

func (h *Handler) deleteJob(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	if err := h.jobs.Delete(c.Request.Context(), principal, id); err != nil {
		h.handleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) exportJobs(c *gin.Context) {
	clientID, err := uuid.Parse(c.Query("client_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid client_id"})
		return
	}
	from, err := parseDate(c.Query("from"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid from"})
		return
	}
	to, err := parseDate(c.Query("to"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid to"})
		return
	}

	result, err := h.jobs.ExportExcel(c.Request.Context(), service.ExportJobsInput{
		ClientID:    clientID,
		PeriodStart: from,
		PeriodEnd:   to,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.Header("Content-Disposition", "attachment; filename=\""+result.FileName+"\"")
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", result.Content)
}

func (h *Handler) billableJobs(c *gin.Context) {
	clientID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid client id"})
		return
	}
	month, err := parseMonth(c.Query("month"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid month, expected YYYY-MM"})
		return
	}
	includeOlder := c.Query("include_older") == "true"

	result, err := h.invoices.BillableJobs(c.Request.Context(), clientID, month, includeOlder)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

type createInvoiceRequest struct {
	ClientID           string   `json:"client_id" binding:"required"`
	JobIDs             []string `json:"job_ids"`
	Notes              string   `json:"notes"`
	PaymentTerms       string   `json:"payment_terms"`
	IncludeBankDetails bool     `json:"include_bank_details"`
}

func (h *Handler) createInvoice(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}

	var req createInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	clientID, err := uuid.Parse(strings.TrimSpace(req.ClientID))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid client_id"})
		return
	}
	jobIDs := make([]uuid.UUID, 0, len(req.JobIDs))
	for _, raw := range req.JobIDs {
		id, err := uuid.Parse(strings.TrimSpace(raw))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid job id: " + raw})
			return
		}
		jobIDs = append(jobIDs, id)
	}

	invoice, err := h.invoices.CreateInvoice(c.Request.Context(), service.CreateInvoiceInput{
		ClientID:           clientID,
		JobIDs:             jobIDs,
		Notes:              req.Notes,
		PaymentTerms:       req.PaymentTerms,
		IncludeBankDetails: req.IncludeBankDetails,
		Principal:          principal,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, invoice)
}

func (h *Handler) listInvoices(c *gin.Context) {
	var clientID *uuid.UUID
	if raw := c.Query("client_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid client_id"})
			return
		}
		clientID = &id
	}

	invoices, err := h.invoices.List(c.Request.Context(), clientID)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"invoices": invoices})
}

func (h *Handler) getInvoice(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	invoice, err := h.invoices.Get(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, invoice)
}

type patchInvoiceRequest struct {
	Notes  *string `json:"notes"`
	Status *string `json:"status"`
}

func (h *Handler) patchInvoice(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	var req patchInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Notes == nil && req.Status == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "nothing to update"})
		return
	}

	ctx := c.Request.Context()
	if req.Notes != nil {
		if err := h.invoices.UpdateNotes(ctx, principal, id, *req.Notes); err != nil {
			h.handleError(c, err)
			return
		}
	}
	if req.Status != nil {
		switch model.InvoiceStatus(strings.ToUpper(strings.TrimSpace(*req.Status))) {
		case model.InvoiceStatusSent:
			err = h.invoices.MarkSent(ctx, principal, id)
		case model.InvoiceStatusPaid:
			err = h.invoices.MarkPaid(ctx, principal, id)
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": "status must be SENT or PAID"})
			return
		}
		if err != nil {
			h.handleError(c, err)
			return
		}
	}

	invoice, err := h.invoices.Get(ctx, id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, invoice)
}

func (h *Handler) deleteInvoice(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	if err := h.invoices.Delete(c.Request.Context(), principal, id); err != nil {
		h.handleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) invoicePDF(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	result, err := h.invoices.RenderPDF(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.Header("Content-Disposition", "attachment; filename=\""+result.FileName+"\"")
	c.Data(http.StatusOK, "application/pdf", result.Content)
}

func (h *Handler) handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrPermissionDenied):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrNoJobsSelected),
		errors.Is(err, service.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrJobAlreadyInvoiced),
		errors.Is(err, service.ErrInvoiceNotDraft):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		h.log.Error().Err(err).Str("path", c.FullPath()).Msg("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func parseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, service.ErrInvalidInput
	}
	layouts := []string{
		time.RFC3339,
		"2006-01-02",
		"2006-01-02T15:04:05",
	}
	for _, layout := range layouts {
		if parsed, err := time.Parse(layout, raw); err == nil {
			return parsed, nil
		}
	}
	return time.Time{}, service.ErrInvalidInput
}

func parseMonth(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, service.ErrInvalidInput
	}
	parsed, err := time.Parse("2006-01", raw)
	if err != nil {
		return time.Time{}, service.ErrInvalidInput
	}
	return parsed, nil
}
