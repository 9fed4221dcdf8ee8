// Package testutil provides the in-memory database used by repository and
// service tests.
package testutil

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/roadsafe/billing-service/internal/model"
)

func SetupDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err, "open in-memory database")

	err = db.AutoMigrate(
		&model.Client{},
		&model.Worker{},
		&model.Vehicle{},
		&model.Cart{},
		&model.Invoice{},
		&model.Job{},
		&model.InvoiceLine{},
	)
	require.NoError(t, err, "migrate test schema")

	return db
}

func CreateClient(t *testing.T, db *gorm.DB, name string) *model.Client {
	t.Helper()
	client := &model.Client{
		Name:  name,
		City:  "Tel Aviv",
		Phone: "03-1234567",
	}
	require.NoError(t, db.Create(client).Error)
	return client
}

// CreateJob inserts a job directly, bypassing the repository's numbering, so
// tests control the job number. amount may be nil.
func CreateJob(t *testing.T, db *gorm.DB, clientID uuid.UUID, number string, scheduledAt time.Time, amount *float64) *model.Job {
	t.Helper()
	job := &model.Job{
		JobNumber:   number,
		ClientID:    &clientID,
		ScheduledAt: scheduledAt,
		WorkType:    "Traffic direction",
		ShiftType:   model.ShiftTypeDay,
		Site:        "Route 4 interchange",
		City:        "Ashdod",
		Amount:      amount,
	}
	require.NoError(t, db.Create(job).Error)
	return job
}

func Float(v float64) *float64 { return &v }
