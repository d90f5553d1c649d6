package models

import (
	"time"
)

type Priority string

const (
	PriorityLow      Priority = "Low"
	PriorityMedium   Priority = "Medium"
	PriorityHigh     Priority = "High"
	PriorityCritical Priority = "Critical"
)

type TaskStatus string

const (
	StatusPending    TaskStatus = "Pending"
	StatusInProgress TaskStatus = "In-Progress"
	StatusOnHold     TaskStatus = "On-Hold"
	StatusCompleted  TaskStatus = "Completed"
)

// EntryStatus is the activity log status. It is a separate, lower-case
// enumeration from TaskStatus.
type EntryStatus string

const (
	EntryPending EntryStatus = "pending"
	EntryDone    EntryStatus = "done"
)

type User struct {
	ID        int       `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Password  string    `json:"-"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// UserSummary is the assignee projection and the /users list item.
type UserSummary struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// UserContact is the actor projection in activity views.
type UserContact struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type TaskSummary struct {
	ID    int    `json:"id"`
	Title string `json:"title"`
}

type Task struct {
	ID             int          `json:"id"`
	Title          string       `json:"title"`
	Description    *string      `json:"description"`
	Priority       Priority     `json:"priority"`
	Status         TaskStatus   `json:"status"`
	StartDate      Date         `json:"start_date"`
	Deadline       Date         `json:"deadline"`
	AssignedUserID *int         `json:"assigned_user_id"`
	IsActive       bool         `json:"is_active"`
	CreatedAt      time.Time    `json:"created_at"`
	UpdatedAt      time.Time    `json:"updated_at"`
	Assignee       *UserSummary `json:"assignee"`
}

type TaskEntry struct {
	ID        int         `json:"id"`
	TaskID    int         `json:"task_id"`
	UserID    int         `json:"user_id"`
	Status    EntryStatus `json:"status"`
	Remark    string      `json:"remark"`
	CreatedAt time.Time   `json:"created_at"`
}

// EntryView is an activity entry joined with its actor and task.
type EntryView struct {
	TaskEntry
	User UserContact `json:"user"`
	Task TaskSummary `json:"task"`
}

// TaskFilter narrows Task listings. Listings are always active-only.
type TaskFilter struct {
	StartDate *Date
}

// EntryFilter selects entries with From <= created_at < To.
type EntryFilter struct {
	From   time.Time
	To     time.Time
	UserID *int
	TaskID *int
}

// TaskPatch carries the fields of a partial task update; nil or unset means unchanged.
type TaskPatch struct {
	Title       *string
	Description OptionalString
	Priority    *Priority
	Status      *TaskStatus
	StartDate   *Date
	Deadline    *Date
	Assignee    OptionalInt
}
