package db

import (
	"fmt"

	"gorm.io/gorm"
)

var migrationStatements = []string{
	`CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`,
	`CREATE EXTENSION IF NOT EXISTS "pgcrypto";`,
	`DO $$
	BEGIN
		IF NOT EXISTS (SELECT 1 FROM pg_type WHERE typname = 'batch_status') THEN
			CREATE TYPE batch_status AS ENUM ('pickup', 'washing', 'completed', 'delivered');
		END IF;
		IF NOT EXISTS (SELECT 1 FROM pg_type WHERE typname = 'user_role') THEN
			CREATE TYPE user_role AS ENUM ('admin', 'staff');
		END IF;
		IF NOT EXISTS (SELECT 1 FROM pg_type WHERE typname = 'rfid_status') THEN
			CREATE TYPE rfid_status AS ENUM ('active', 'in_wash', 'lost', 'retired');
		END IF;
	END
	$$;`,
	`CREATE TABLE IF NOT EXISTS clients (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		name VARCHAR(255) NOT NULL,
		email VARCHAR(255) NOT NULL DEFAULT '',
		phone VARCHAR(64) NOT NULL DEFAULT '',
		address TEXT NOT NULL DEFAULT '',
		contact_person VARCHAR(255) NOT NULL DEFAULT '',
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE UNIQUE INDEX IF NOT EXISTS uq_clients_name ON clients (LOWER(name));`,
	`CREATE TABLE IF NOT EXISTS linen_categories (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		name VARCHAR(255) NOT NULL,
		price_per_item NUMERIC(12,2) NOT NULL CHECK (price_per_item > 0),
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE UNIQUE INDEX IF NOT EXISTS uq_linen_categories_name ON linen_categories (LOWER(name));`,
	`CREATE TABLE IF NOT EXISTS profiles (
		id UUID PRIMARY KEY,
		email VARCHAR(255) NOT NULL,
		full_name VARCHAR(255) NOT NULL DEFAULT '',
		role user_role NOT NULL DEFAULT 'staff',
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE UNIQUE INDEX IF NOT EXISTS uq_profiles_email ON profiles (LOWER(email));`,
	`CREATE TABLE IF NOT EXISTS batches (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		client_id UUID NOT NULL REFERENCES clients(id),
		paper_batch_id VARCHAR(64) NOT NULL DEFAULT '',
		pickup_date DATE NOT NULL,
		delivery_date DATE,
		status batch_status NOT NULL DEFAULT 'pickup',
		notes TEXT NOT NULL DEFAULT '',
		total_amount NUMERIC(12,2) NOT NULL DEFAULT 0,
		created_by UUID REFERENCES profiles(id),
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE INDEX IF NOT EXISTS idx_batches_client_id ON batches (client_id);`,
	`CREATE INDEX IF NOT EXISTS idx_batches_pickup_date ON batches (pickup_date);`,
	`CREATE INDEX IF NOT EXISTS idx_batches_status ON batches (status);`,
	`CREATE TABLE IF NOT EXISTS batch_items (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		batch_id UUID NOT NULL REFERENCES batches(id) ON DELETE CASCADE,
		category_id UUID NOT NULL REFERENCES linen_categories(id),
		quantity_sent INTEGER NOT NULL CHECK (quantity_sent >= 0),
		quantity_received INTEGER NOT NULL DEFAULT 0 CHECK (quantity_received >= 0),
		price_per_item NUMERIC(12,2) NOT NULL DEFAULT 0,
		notes TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE INDEX IF NOT EXISTS idx_batch_items_batch_id ON batch_items (batch_id);`,
	`CREATE TABLE IF NOT EXISTS batch_status_history (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		batch_id UUID NOT NULL REFERENCES batches(id) ON DELETE CASCADE,
		from_status batch_status,
		to_status batch_status NOT NULL,
		notes TEXT NOT NULL DEFAULT '',
		changed_by UUID REFERENCES profiles(id),
		changed_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE INDEX IF NOT EXISTS idx_batch_status_history_batch_id ON batch_status_history (batch_id);`,
	`CREATE TABLE IF NOT EXISTS business_settings (
		id SMALLINT PRIMARY KEY DEFAULT 1 CHECK (id = 1),
		company_name VARCHAR(255) NOT NULL DEFAULT '',
		address TEXT NOT NULL DEFAULT '',
		phone VARCHAR(64) NOT NULL DEFAULT '',
		email VARCHAR(255) NOT NULL DEFAULT '',
		vat_number VARCHAR(64) NOT NULL DEFAULT '',
		registration_number VARCHAR(64) NOT NULL DEFAULT '',
		bank_details TEXT NOT NULL DEFAULT '',
		invoice_footer TEXT NOT NULL DEFAULT '',
		extra JSONB NOT NULL DEFAULT '{}'::jsonb,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`INSERT INTO business_settings (id) VALUES (1) ON CONFLICT (id) DO NOTHING;`,
	`CREATE TABLE IF NOT EXISTS rfid_records (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		rfid_number VARCHAR(128) NOT NULL,
		category_id UUID REFERENCES linen_categories(id),
		client_id UUID REFERENCES clients(id),
		status rfid_status NOT NULL DEFAULT 'active',
		condition VARCHAR(64) NOT NULL DEFAULT '',
		location VARCHAR(255) NOT NULL DEFAULT '',
		wash_count INTEGER NOT NULL DEFAULT 0 CHECK (wash_count >= 0),
		last_scanned_at TIMESTAMPTZ,
		notes TEXT NOT NULL DEFAULT '',
		payload JSONB NOT NULL DEFAULT '{}'::jsonb,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE UNIQUE INDEX IF NOT EXISTS uq_rfid_records_number ON rfid_records (rfid_number);`,
	`CREATE INDEX IF NOT EXISTS idx_rfid_records_client_id ON rfid_records (client_id) WHERE client_id IS NOT NULL;`,
}

// Migrate applies the schema statements in order. Every statement is idempotent.
func Migrate(db *gorm.DB) error {
	for i, stmt := range migrationStatements {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}
	return nil
}
