package db

import (
	"fmt"

	"gorm.io/gorm"
)

var migrationStatements = []string{
	`CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`,
	`CREATE TABLE IF NOT EXISTS clients (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		name VARCHAR(255) NOT NULL,
		company_number VARCHAR(32),
		contact_name VARCHAR(128),
		email VARCHAR(255),
		phone VARCHAR(32),
		address VARCHAR(255),
		city VARCHAR(128),
		notes TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE TABLE IF NOT EXISTS workers (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		full_name VARCHAR(128) NOT NULL,
		id_number VARCHAR(16),
		phone VARCHAR(32),
		role VARCHAR(64),
		active BOOLEAN NOT NULL DEFAULT TRUE,
		notes TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE TABLE IF NOT EXISTS vehicles (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		plate_number VARCHAR(16) NOT NULL,
		model VARCHAR(64),
		year INT,
		license_until TIMESTAMPTZ,
		active BOOLEAN NOT NULL DEFAULT TRUE,
		notes TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE TABLE IF NOT EXISTS carts (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		serial_number VARCHAR(32) NOT NULL,
		kind VARCHAR(64),
		active BOOLEAN NOT NULL DEFAULT TRUE,
		notes TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE TABLE IF NOT EXISTS invoices (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		receipt_number VARCHAR(16) NOT NULL,
		client_id UUID NOT NULL REFERENCES clients(id),
		issue_date DATE NOT NULL,
		due_date DATE NOT NULL,
		subtotal NUMERIC(18,2) NOT NULL,
		tax_rate NUMERIC(5,4) NOT NULL,
		tax_amount NUMERIC(18,2) NOT NULL,
		total NUMERIC(18,2) NOT NULL,
		currency VARCHAR(8) NOT NULL,
		notes TEXT,
		payment_terms VARCHAR(64),
		include_bank_details BOOLEAN NOT NULL DEFAULT FALSE,
		status VARCHAR(16) NOT NULL DEFAULT 'DRAFT',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE UNIQUE INDEX IF NOT EXISTS uq_invoice_receipt_number ON invoices (receipt_number);`,
	`CREATE INDEX IF NOT EXISTS idx_invoices_client_id ON invoices (client_id);`,
	`CREATE TABLE IF NOT EXISTS jobs (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		job_number VARCHAR(16) NOT NULL,
		client_id UUID REFERENCES clients(id),
		scheduled_at TIMESTAMPTZ NOT NULL,
		work_type VARCHAR(128) NOT NULL,
		shift_type VARCHAR(16) NOT NULL,
		site VARCHAR(255),
		city VARCHAR(128),
		worker_id UUID REFERENCES workers(id),
		vehicle_id UUID REFERENCES vehicles(id),
		cart_id UUID REFERENCES carts(id),
		amount NUMERIC(18,2) CHECK (amount IS NULL OR amount >= 0),
		invoice_id UUID REFERENCES invoices(id),
		paid BOOLEAN NOT NULL DEFAULT FALSE,
		notes TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE UNIQUE INDEX IF NOT EXISTS uq_job_number ON jobs (job_number);`,
	`CREATE INDEX IF NOT EXISTS idx_jobs_client_id ON jobs (client_id);`,
	`CREATE INDEX IF NOT EXISTS idx_jobs_scheduled_at ON jobs (scheduled_at);`,
	`CREATE INDEX IF NOT EXISTS idx_jobs_invoice_id ON jobs (invoice_id) WHERE invoice_id IS NOT NULL;`,
	`CREATE TABLE IF NOT EXISTS invoice_lines (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		invoice_id UUID NOT NULL REFERENCES invoices(id) ON DELETE CASCADE,
		job_id UUID REFERENCES jobs(id),
		description VARCHAR(255) NOT NULL,
		quantity NUMERIC(10,2) NOT NULL,
		unit_price NUMERIC(18,2) NOT NULL,
		line_total NUMERIC(18,2) NOT NULL,
		work_type VARCHAR(128),
		job_date TIMESTAMPTZ,
		location VARCHAR(255)
	);`,
	`CREATE UNIQUE INDEX IF NOT EXISTS uq_invoice_line_job_id ON invoice_lines (job_id) WHERE job_id IS NOT NULL;`,
	`CREATE INDEX IF NOT EXISTS idx_invoice_lines_invoice_id ON invoice_lines (invoice_id);`,
}

func runMigrations(db *gorm.DB) error {
	for i, stmt := range migrationStatements {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}
	return nil
}
