package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"tasktracker/internal/models"
)

type TaskRepository struct {
	db *sql.DB
}

func NewTaskRepository(db *sql.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

const taskColumns = `t.id, t.title, t.description, t.priority, t.status, t.start_date, t.deadline,
	t.assigned_user_id, t.is_active, t.created_at, t.updated_at, u.name`

const taskFrom = ` FROM tasks t LEFT JOIN users u ON u.id = t.assigned_user_id`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanTask(row rowScanner) (models.Task, error) {
	var (
		t            models.Task
		description  sql.NullString
		assignedID   sql.NullInt64
		assigneeName sql.NullString
	)
	err := row.Scan(&t.ID, &t.Title, &description, &t.Priority, &t.Status, &t.StartDate, &t.Deadline,
		&assignedID, &t.IsActive, &t.CreatedAt, &t.UpdatedAt, &assigneeName)
	if err != nil {
		return models.Task{}, err
	}
	if description.Valid {
		t.Description = &description.String
	}
	if assignedID.Valid {
		id := int(assignedID.Int64)
		t.AssignedUserID = &id
		t.Assignee = &models.UserSummary{ID: id, Name: assigneeName.String}
	}
	return t, nil
}

// Create inserts t and fills its id, timestamps and active flag.
func (r *TaskRepository) Create(ctx context.Context, t *models.Task) error {
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO tasks (title, description, priority, status, start_date, deadline, assigned_user_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, is_active, created_at, updated_at`,
		t.Title, t.Description, t.Priority, t.Status, t.StartDate, t.Deadline, t.AssignedUserID,
	).Scan(&t.ID, &t.IsActive, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create task: %w", translate(err))
	}
	return nil
}

// Get returns a task joined with its assignee, active or not.
func (r *TaskRepository) Get(ctx context.Context, id int) (models.Task, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+taskColumns+taskFrom+` WHERE t.id = $1`, id)
	t, err := scanTask(row)
	if err != nil {
		return models.Task{}, translate(err)
	}
	return t, nil
}

func (r *TaskRepository) Exists(ctx context.Context, id int) (bool, error) {
	var ok bool
	err := r.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM tasks WHERE id = $1)`, id).Scan(&ok)
	return ok, err
}

// List returns active tasks, newest first.
func (r *TaskRepository) List(ctx context.Context, f models.TaskFilter) ([]models.Task, error) {
	query := `SELECT ` + taskColumns + taskFrom + ` WHERE t.is_active = TRUE`
	args := []interface{}{}
	if f.StartDate != nil {
		args = append(args, *f.StartDate)
		query += fmt.Sprintf(` AND t.start_date = $%d`, len(args))
	}
	query += ` ORDER BY t.created_at DESC, t.id DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	tasks := []models.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

// Update applies the present fields of p. Absent fields keep their value.
func (r *TaskRepository) Update(ctx context.Context, id int, p models.TaskPatch) error {
	sets := []string{}
	args := []interface{}{}
	add := func(column string, v interface{}) {
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if p.Title != nil {
		add("title", *p.Title)
	}
	if p.Description.Set {
		add("description", p.Description.Ptr())
	}
	if p.Priority != nil {
		add("priority", *p.Priority)
	}
	if p.Status != nil {
		add("status", *p.Status)
	}
	if p.StartDate != nil {
		add("start_date", *p.StartDate)
	}
	if p.Deadline != nil {
		add("deadline", *p.Deadline)
	}
	if p.Assignee.Set {
		add("assigned_user_id", p.Assignee.Ptr())
	}
	sets = append(sets, "updated_at = CURRENT_TIMESTAMP")

	args = append(args, id)
	query := fmt.Sprintf(`UPDATE tasks SET %s WHERE id = $%d`, strings.Join(sets, ", "), len(args))
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update task: %w", translate(err))
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// Deactivate soft-deletes a task. It reports whether a row matched.
func (r *TaskRepository) Deactivate(ctx context.Context, id int) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE tasks SET is_active = FALSE, updated_at = CURRENT_TIMESTAMP WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("deactivate task: %w", err)
	}
	n, err := res.RowsAffected()
	return n > 0, err
}
