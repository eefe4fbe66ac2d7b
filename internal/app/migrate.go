package app

import (
	"context"

	"github.com/jackc/pgx/v4/pgxpool"

	"github.com/dormhub/dorms-service/internal/utils"
)

// Schema DDL, applied in order at startup. Statements are idempotent so
// repeated boots are safe; real column migrations go through ALTERs
// appended to this list.
var migrations = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id UUID PRIMARY KEY,
		username TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		full_name TEXT NOT NULL,
		email TEXT NOT NULL,
		phone TEXT,
		student_code TEXT,
		role TEXT NOT NULL DEFAULT 'student',
		gender TEXT,
		active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,

	`CREATE TABLE IF NOT EXISTS buildings (
		id UUID PRIMARY KEY,
		name TEXT NOT NULL UNIQUE,
		address TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,

	`CREATE TABLE IF NOT EXISTS rooms (
		id UUID PRIMARY KEY,
		building_id UUID NOT NULL REFERENCES buildings(id),
		name TEXT NOT NULL,
		capacity INT NOT NULL CHECK (capacity > 0),
		gender_restriction TEXT,
		monthly_price NUMERIC(14,2) NOT NULL DEFAULT 0,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		UNIQUE (building_id, name)
	)`,

	`CREATE TABLE IF NOT EXISTS room_registrations (
		id UUID PRIMARY KEY,
		student_id UUID NOT NULL REFERENCES users(id),
		room_id UUID NOT NULL REFERENCES rooms(id),
		active BOOLEAN NOT NULL DEFAULT TRUE,
		start_date DATE NOT NULL,
		end_date DATE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,

	// One active registration per student; history rows keep active=false.
	`CREATE UNIQUE INDEX IF NOT EXISTS room_registrations_one_active_per_student
		ON room_registrations (student_id) WHERE active`,

	`CREATE INDEX IF NOT EXISTS room_registrations_room_active
		ON room_registrations (room_id) WHERE active`,

	`CREATE TABLE IF NOT EXISTS room_swaps (
		id UUID PRIMARY KEY,
		student_id UUID NOT NULL REFERENCES users(id),
		current_room_id UUID NOT NULL REFERENCES rooms(id),
		desired_room_id UUID NOT NULL REFERENCES rooms(id),
		reason TEXT NOT NULL DEFAULT '',
		approved BOOLEAN NOT NULL DEFAULT FALSE,
		processed_by UUID REFERENCES users(id),
		processed_at TIMESTAMPTZ,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,

	// One open request per student at a time.
	`CREATE UNIQUE INDEX IF NOT EXISTS room_swaps_one_pending_per_student
		ON room_swaps (student_id) WHERE NOT approved`,

	`CREATE TABLE IF NOT EXISTS fee_types (
		id UUID PRIMARY KEY,
		name TEXT NOT NULL UNIQUE,
		description TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,

	`CREATE TABLE IF NOT EXISTS invoices (
		id UUID PRIMARY KEY,
		code TEXT NOT NULL UNIQUE,
		room_id UUID NOT NULL REFERENCES rooms(id),
		billing_period DATE NOT NULL,
		paid BOOLEAN NOT NULL DEFAULT FALSE,
		paid_at TIMESTAMPTZ,
		payment_method TEXT,
		created_by UUID NOT NULL REFERENCES users(id),
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		UNIQUE (room_id, billing_period)
	)`,

	`CREATE TABLE IF NOT EXISTS invoice_details (
		id UUID PRIMARY KEY,
		invoice_id UUID NOT NULL REFERENCES invoices(id),
		fee_type_id UUID NOT NULL REFERENCES fee_types(id),
		quantity NUMERIC(14,4),
		unit_price NUMERIC(14,2),
		amount NUMERIC(14,2) NOT NULL CHECK (amount >= 0),
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		UNIQUE (invoice_id, fee_type_id)
	)`,

	`CREATE TABLE IF NOT EXISTS devices (
		id UUID PRIMARY KEY,
		user_id UUID NOT NULL REFERENCES users(id),
		token TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		UNIQUE (user_id, token)
	)`,

	`CREATE TABLE IF NOT EXISTS notifications (
		id UUID PRIMARY KEY,
		title TEXT NOT NULL,
		content TEXT NOT NULL,
		urgent BOOLEAN NOT NULL DEFAULT FALSE,
		target_ids UUID[] NOT NULL DEFAULT '{}',
		sent_by UUID NOT NULL REFERENCES users(id),
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,

	`CREATE INDEX IF NOT EXISTS notifications_target_ids ON notifications USING GIN (target_ids)`,
}

func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	for _, stmt := range migrations {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return err
		}
	}
	utils.Logger.Infof("Applied %d schema statements", len(migrations))
	return nil
}
