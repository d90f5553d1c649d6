// Package testutil provides in-memory doubles of the Postgres repositories for
// service and handler tests. They honour the same sentinel errors.
package testutil

import (
	"context"
	"sort"
	"sync"
	"time"

	"tasktracker/internal/models"
	"tasktracker/internal/repository"
)

type memDB struct {
	mu      sync.Mutex
	users   map[int]models.User
	tasks   map[int]models.Task
	entries map[int]models.TaskEntry
	nextID  map[string]int
	now     func() time.Time
}

// MemStore bundles the three repositories over one shared dataset.
type MemStore struct {
	Users   *MemUsers
	Tasks   *MemTasks
	Entries *MemEntries
	db      *memDB
}

func NewMemStore() *MemStore {
	db := &memDB{
		users:   map[int]models.User{},
		tasks:   map[int]models.Task{},
		entries: map[int]models.TaskEntry{},
		nextID:  map[string]int{},
		now:     time.Now,
	}
	return &MemStore{
		Users:   &MemUsers{db: db},
		Tasks:   &MemTasks{db: db},
		Entries: &MemEntries{db: db},
		db:      db,
	}
}

// SetClock fixes the timestamps given to new users and tasks.
func (m *MemStore) SetClock(now func() time.Time) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	m.db.now = now
}

func (db *memDB) id(table string) int {
	db.nextID[table]++
	return db.nextID[table]
}

type MemUsers struct{ db *memDB }

func (r *MemUsers) Create(_ context.Context, u *models.User) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, existing := range r.db.users {
		if existing.Email == u.Email {
			return repository.ErrDuplicateEmail
		}
	}
	u.ID = r.db.id("users")
	u.CreatedAt = r.db.now()
	u.UpdatedAt = u.CreatedAt
	r.db.users[u.ID] = *u
	return nil
}

func (r *MemUsers) FindByEmail(_ context.Context, email string) (models.User, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, u := range r.db.users {
		if u.Email == email {
			return u, nil
		}
	}
	return models.User{}, repository.ErrNotFound
}

func (r *MemUsers) FindByID(_ context.Context, id int) (models.User, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	u, ok := r.db.users[id]
	if !ok {
		return models.User{}, repository.ErrNotFound
	}
	return u, nil
}

func (r *MemUsers) EmailTaken(ctx context.Context, email string) (bool, error) {
	_, err := r.FindByEmail(ctx, email)
	return err == nil, nil
}

func (r *MemUsers) Exists(ctx context.Context, id int) (bool, error) {
	_, err := r.FindByID(ctx, id)
	return err == nil, nil
}

func (r *MemUsers) ListSummaries(_ context.Context) ([]models.UserSummary, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	out := []models.UserSummary{}
	for _, u := range r.db.users {
		out = append(out, models.UserSummary{ID: u.ID, Name: u.Name})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

type MemTasks struct{ db *memDB }

func (r *MemTasks) withAssignee(t models.Task) models.Task {
	t.Assignee = nil
	if t.AssignedUserID != nil {
		if u, ok := r.db.users[*t.AssignedUserID]; ok {
			t.Assignee = &models.UserSummary{ID: u.ID, Name: u.Name}
		}
	}
	return t
}

func (r *MemTasks) Create(_ context.Context, t *models.Task) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if t.AssignedUserID != nil {
		if _, ok := r.db.users[*t.AssignedUserID]; !ok {
			return repository.ErrForeignKey
		}
	}
	t.ID = r.db.id("tasks")
	t.IsActive = true
	t.CreatedAt = r.db.now()
	t.UpdatedAt = t.CreatedAt
	stored := *t
	stored.Assignee = nil
	r.db.tasks[t.ID] = stored
	return nil
}

func (r *MemTasks) Get(_ context.Context, id int) (models.Task, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	t, ok := r.db.tasks[id]
	if !ok {
		return models.Task{}, repository.ErrNotFound
	}
	return r.withAssignee(t), nil
}

func (r *MemTasks) Exists(ctx context.Context, id int) (bool, error) {
	_, err := r.Get(ctx, id)
	return err == nil, nil
}

func (r *MemTasks) List(_ context.Context, f models.TaskFilter) ([]models.Task, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	out := []models.Task{}
	for _, t := range r.db.tasks {
		if !t.IsActive {
			continue
		}
		if f.StartDate != nil && !t.StartDate.Equal(f.StartDate.Time) {
			continue
		}
		out = append(out, r.withAssignee(t))
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (r *MemTasks) Update(_ context.Context, id int, p models.TaskPatch) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	t, ok := r.db.tasks[id]
	if !ok {
		return repository.ErrNotFound
	}
	if p.Assignee.Valid {
		if _, ok := r.db.users[p.Assignee.Int]; !ok {
			return repository.ErrForeignKey
		}
	}
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Description.Set {
		t.Description = p.Description.Ptr()
	}
	if p.Priority != nil {
		t.Priority = *p.Priority
	}
	if p.Status != nil {
		t.Status = *p.Status
	}
	if p.StartDate != nil {
		t.StartDate = *p.StartDate
	}
	if p.Deadline != nil {
		t.Deadline = *p.Deadline
	}
	if p.Assignee.Set {
		t.AssignedUserID = p.Assignee.Ptr()
	}
	t.UpdatedAt = r.db.now()
	r.db.tasks[id] = t
	return nil
}

func (r *MemTasks) Deactivate(_ context.Context, id int) (bool, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	t, ok := r.db.tasks[id]
	if !ok {
		return false, nil
	}
	t.IsActive = false
	r.db.tasks[id] = t
	return true, nil
}

type MemEntries struct {
	db *memDB
	// FailNext makes the next Create return this error once.
	FailNext error
}

func (r *MemEntries) Create(_ context.Context, e *models.TaskEntry) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if r.FailNext != nil {
		err := r.FailNext
		r.FailNext = nil
		return err
	}
	if _, ok := r.db.tasks[e.TaskID]; !ok {
		return repository.ErrForeignKey
	}
	if _, ok := r.db.users[e.UserID]; !ok {
		return repository.ErrForeignKey
	}
	e.ID = r.db.id("entries")
	r.db.entries[e.ID] = *e
	return nil
}

func (r *MemEntries) List(_ context.Context, f models.EntryFilter) ([]models.EntryView, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	out := []models.EntryView{}
	for _, e := range r.db.entries {
		if e.CreatedAt.Before(f.From) || !e.CreatedAt.Before(f.To) {
			continue
		}
		if f.UserID != nil && e.UserID != *f.UserID {
			continue
		}
		if f.TaskID != nil && e.TaskID != *f.TaskID {
			continue
		}
		u := r.db.users[e.UserID]
		t := r.db.tasks[e.TaskID]
		out = append(out, models.EntryView{
			TaskEntry: e,
			User:      models.UserContact{ID: u.ID, Name: u.Name, Email: u.Email},
			Task:      models.TaskSummary{ID: t.ID, Title: t.Title},
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

// Count returns the number of stored entries.
func (r *MemEntries) Count() int {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	return len(r.db.entries)
}
