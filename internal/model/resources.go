package model

import (
	"time"

	"github.com/google/uuid"
)

// Worker, Vehicle and Cart are flat reference entities assigned to jobs.
// They are managed through the generic CRUD repository.

type Worker struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	FullName  string    `gorm:"size:128" json:"full_name"`
	IDNumber  string    `gorm:"size:16" json:"id_number"`
	Phone     string    `gorm:"size:32" json:"phone"`
	Role      string    `gorm:"size:64" json:"role"`
	Active    bool      `json:"active"`
	Notes     string    `gorm:"type:text" json:"notes"`
	CreatedAt time.Time `json:"created_at"`
}

func (Worker) TableName() string { return "workers" }

type Vehicle struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	PlateNumber  string    `gorm:"size:16" json:"plate_number"`
	Model        string    `gorm:"size:64" json:"model"`
	Year         int       `json:"year"`
	LicenseUntil time.Time `json:"license_until"`
	Active       bool      `json:"active"`
	Notes        string    `gorm:"type:text" json:"notes"`
	CreatedAt    time.Time `json:"created_at"`
}

func (Vehicle) TableName() string { return "vehicles" }

type Cart struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	SerialNumber string    `gorm:"size:32" json:"serial_number"`
	Kind         string    `gorm:"size:64" json:"kind"`
	Active       bool      `json:"active"`
	Notes        string    `gorm:"type:text" json:"notes"`
	CreatedAt    time.Time `json:"created_at"`
}

func (Cart) TableName() string { return "carts" }
