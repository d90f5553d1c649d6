package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
)

var (
	// ErrNotFound is returned when a lookup by id or email matches no row.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicateEmail is returned when a user email is already taken.
	ErrDuplicateEmail = errors.New("email already taken")
	// ErrForeignKey is returned when a referenced user or task does not exist.
	ErrForeignKey = errors.New("referenced record does not exist")
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id SERIAL PRIMARY KEY,
		name VARCHAR(255) NOT NULL,
		email VARCHAR(255) NOT NULL UNIQUE,
		password VARCHAR(255) NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS tasks (
		id SERIAL PRIMARY KEY,
		title VARCHAR(255) NOT NULL,
		description TEXT,
		priority VARCHAR(16) NOT NULL DEFAULT 'Medium'
			CHECK (priority IN ('Low', 'Medium', 'High', 'Critical')),
		status VARCHAR(16) NOT NULL DEFAULT 'Pending'
			CHECK (status IN ('Pending', 'In-Progress', 'On-Hold', 'Completed')),
		start_date DATE,
		deadline DATE,
		assigned_user_id INT REFERENCES users (id) ON DELETE SET NULL,
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
		CHECK (deadline IS NULL OR start_date IS NULL OR deadline >= start_date)
	)`,
	`CREATE TABLE IF NOT EXISTS task_entries (
		id SERIAL PRIMARY KEY,
		task_id INT NOT NULL REFERENCES tasks (id) ON DELETE CASCADE,
		user_id INT NOT NULL REFERENCES users (id),
		status VARCHAR(16) NOT NULL DEFAULT 'pending' CHECK (status IN ('pending', 'done')),
		remark TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE INDEX IF NOT EXISTS idx_task_entries_created_at ON task_entries (created_at)`,
	`CREATE INDEX IF NOT EXISTS idx_tasks_active_created ON tasks (is_active, created_at)`,
}

// CreateTableIfNotExists creates the schema idempotently.
func CreateTableIfNotExists(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}
	return nil
}

// DeleteAllTable drops every table. Used to reset test databases.
func DeleteAllTable(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
	DROP TABLE IF EXISTS task_entries;
	DROP TABLE IF EXISTS tasks;
	DROP TABLE IF EXISTS users;
	`)
	return err
}

// translate maps driver errors onto the repository sentinels.
func translate(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case "23505":
			if pqErr.Constraint == "users_email_key" {
				return ErrDuplicateEmail
			}
		case "23503":
			return ErrForeignKey
		}
	}
	return err
}
