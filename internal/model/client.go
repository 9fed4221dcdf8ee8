package model

import (
	"time"

	"github.com/google/uuid"
)

type Client struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name          string    `gorm:"size:255" json:"name"`
	CompanyNumber string    `gorm:"size:32" json:"company_number"`
	ContactName   string    `gorm:"size:128" json:"contact_name"`
	Email         string    `gorm:"size:255" json:"email"`
	Phone         string    `gorm:"size:32" json:"phone"`
	Address       string    `gorm:"size:255" json:"address"`
	City          string    `gorm:"size:128" json:"city"`
	Notes         string    `gorm:"type:text" json:"notes"`
	CreatedAt     time.Time `json:"created_at"`
}

func (Client) TableName() string { return "clients" }
