package model

import "github.com/google/uuid"

type Role string

const (
	RoleAdmin   Role = "ADMIN"
	RoleManager Role = "MANAGER"
	RoleViewer  Role = "VIEWER"
)

// Principal is the authenticated caller, extracted from the access token by
// the auth middleware and passed explicitly to service operations.
type Principal struct {
	UserID uuid.UUID
	Name   string
	Role   Role
}

func (p Principal) IsAdmin() bool   { return p.Role == RoleAdmin }
func (p Principal) IsManager() bool { return p.Role == RoleManager }
func (p Principal) IsViewer() bool  { return p.Role == RoleViewer }

// CanBill reports whether the principal may create or mutate invoices.
func (p Principal) CanBill() bool { return p.IsAdmin() || p.IsManager() }
