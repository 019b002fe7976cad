package database

import (
	"context"
	"fmt"
)

// schema is the full DDL for the notification subsystem. Statements are
// idempotent so migrate can run on every deploy.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS technicians (
		id         uuid PRIMARY KEY,
		full_name  text NOT NULL,
		email      text NOT NULL DEFAULT '',
		phone      text NOT NULL DEFAULT '',
		created_at timestamptz NOT NULL DEFAULT now()
	)`,

	`CREATE TABLE IF NOT EXISTS customers (
		id         uuid PRIMARY KEY,
		full_name  text NOT NULL,
		email      text NOT NULL DEFAULT '',
		phone      text NOT NULL DEFAULT '',
		created_at timestamptz NOT NULL DEFAULT now()
	)`,

	`CREATE TABLE IF NOT EXISTS notifications (
		id             uuid PRIMARY KEY,
		recipient_kind text NOT NULL CHECK (recipient_kind IN ('technician', 'customer')),
		recipient_id   uuid NOT NULL,
		category       text NOT NULL,
		priority       text NOT NULL,
		title          text NOT NULL,
		body           text NOT NULL DEFAULT '',
		data           jsonb,
		is_read        boolean NOT NULL DEFAULT false,
		read_at        timestamptz,
		email_sent     boolean NOT NULL DEFAULT false,
		sms_sent       boolean NOT NULL DEFAULT false,
		created_at     timestamptz NOT NULL DEFAULT now(),
		updated_at     timestamptz NOT NULL DEFAULT now()
	)`,

	`CREATE INDEX IF NOT EXISTS idx_notifications_recipient
		ON notifications (recipient_kind, recipient_id, is_read, created_at)`,

	`CREATE TABLE IF NOT EXISTS delivery_logs (
		id              uuid PRIMARY KEY,
		notification_id uuid NOT NULL REFERENCES notifications (id),
		channel         text NOT NULL CHECK (channel IN ('email', 'sms')),
		status          text NOT NULL DEFAULT 'pending',
		recipient       text NOT NULL DEFAULT '',
		attempt_number  int NOT NULL DEFAULT 0,
		attempt_cap     int NOT NULL DEFAULT 3,
		last_error      text,
		cost            numeric,
		next_attempt_at timestamptz,
		created_at      timestamptz NOT NULL DEFAULT now(),
		updated_at      timestamptz NOT NULL DEFAULT now(),
		UNIQUE (notification_id, channel)
	)`,

	`CREATE INDEX IF NOT EXISTS idx_delivery_logs_due
		ON delivery_logs (status, next_attempt_at)`,

	`CREATE TABLE IF NOT EXISTS notification_preferences (
		id                  uuid PRIMARY KEY,
		recipient_kind      text NOT NULL CHECK (recipient_kind IN ('technician', 'customer')),
		recipient_id        uuid NOT NULL,
		email_enabled       boolean NOT NULL DEFAULT true,
		sms_enabled         boolean NOT NULL DEFAULT true,
		in_app_enabled      boolean NOT NULL DEFAULT true,
		categories          jsonb NOT NULL DEFAULT '{}',
		quiet_hours_enabled boolean NOT NULL DEFAULT false,
		quiet_hours_start   text NOT NULL DEFAULT '',
		quiet_hours_end     text NOT NULL DEFAULT '',
		daily_digest        boolean NOT NULL DEFAULT false,
		created_at          timestamptz NOT NULL DEFAULT now(),
		updated_at          timestamptz NOT NULL DEFAULT now(),
		UNIQUE (recipient_kind, recipient_id)
	)`,
}

// Migrate applies the embedded schema to the connected database.
func (db *DB) Migrate(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := db.conn.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply migration: %w", err)
		}
	}
	return nil
}
