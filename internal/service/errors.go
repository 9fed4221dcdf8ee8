package service

import "errors"

var (
	ErrNotFound           = errors.New("not found")
	ErrPermissionDenied   = errors.New("permission denied")
	ErrInvalidInput       = errors.New("invalid input")
	ErrNoJobsSelected     = errors.New("no jobs selected")
	ErrJobAlreadyInvoiced = errors.New("job already invoiced")
	ErrInvoiceNotDraft    = errors.New("invoice is not a draft")
)
