package repository

import (
	"context"
	"database/sql"
	"fmt"

	"tasktracker/internal/models"
)

// EntryRepository stores the append-only activity log.
type EntryRepository struct {
	db *sql.DB
}

func NewEntryRepository(db *sql.DB) *EntryRepository {
	return &EntryRepository{db: db}
}

// Create appends e. CreatedAt must be set by the caller.
func (r *EntryRepository) Create(ctx context.Context, e *models.TaskEntry) error {
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO task_entries (task_id, user_id, status, remark, created_at)
		VALUES ($1, $2, $3, $4, $5) RETURNING id`,
		e.TaskID, e.UserID, e.Status, e.Remark, e.CreatedAt,
	).Scan(&e.ID)
	if err != nil {
		return fmt.Errorf("create entry: %w", translate(err))
	}
	return nil
}

// List returns entries in [f.From, f.To), newest first, joined with their
// actor and task. Deactivated tasks are included.
func (r *EntryRepository) List(ctx context.Context, f models.EntryFilter) ([]models.EntryView, error) {
	query := `SELECT e.id, e.task_id, e.user_id, e.status, e.remark, e.created_at,
		u.id, u.name, u.email, t.id, t.title
		FROM task_entries e
		JOIN users u ON u.id = e.user_id
		JOIN tasks t ON t.id = e.task_id
		WHERE e.created_at >= $1 AND e.created_at < $2`
	args := []interface{}{f.From, f.To}
	if f.UserID != nil {
		args = append(args, *f.UserID)
		query += fmt.Sprintf(` AND e.user_id = $%d`, len(args))
	}
	if f.TaskID != nil {
		args = append(args, *f.TaskID)
		query += fmt.Sprintf(` AND e.task_id = $%d`, len(args))
	}
	query += ` ORDER BY e.created_at DESC, e.id DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	defer rows.Close()

	entries := []models.EntryView{}
	for rows.Next() {
		var v models.EntryView
		err := rows.Scan(&v.ID, &v.TaskID, &v.UserID, &v.Status, &v.Remark, &v.CreatedAt,
			&v.User.ID, &v.User.Name, &v.User.Email, &v.Task.ID, &v.Task.Title)
		if err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		entries = append(entries, v)
	}
	return entries, rows.Err()
}
