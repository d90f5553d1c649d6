// Package service implements the task registry and the activity log on top
// of the repositories, applying validation and the task update policy.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"tasktracker/internal/apperr"
	"tasktracker/internal/config"
	"tasktracker/internal/models"
	"tasktracker/internal/policy"
	"tasktracker/internal/repository"
	"tasktracker/pkg/logger"
)

type UserLookup interface {
	Exists(ctx context.Context, id int) (bool, error)
	ListSummaries(ctx context.Context) ([]models.UserSummary, error)
}

type TaskStore interface {
	Create(ctx context.Context, t *models.Task) error
	Get(ctx context.Context, id int) (models.Task, error)
	Exists(ctx context.Context, id int) (bool, error)
	List(ctx context.Context, f models.TaskFilter) ([]models.Task, error)
	Update(ctx context.Context, id int, p models.TaskPatch) error
	Deactivate(ctx context.Context, id int) (bool, error)
}

type TaskCache interface {
	Get(ctx context.Context, id int) (models.Task, bool, error)
	Set(ctx context.Context, t models.Task) error
	Invalidate(ctx context.Context, id int) error
}

type CreateTaskInput struct {
	Title          string             `json:"title" validate:"required,max=255"`
	Description    *string            `json:"description"`
	Priority       string             `json:"priority" validate:"omitempty,oneof=Low Medium High Critical"`
	StartDate      string             `json:"start_date" validate:"required,datetime=2006-01-02"`
	Deadline       string             `json:"deadline" validate:"required,datetime=2006-01-02"`
	Status         string             `json:"status" validate:"omitempty,oneof=Pending In-Progress On-Hold Completed"`
	AssignedUserID models.OptionalInt `json:"assigned_user_id"`
}

// UpdateTaskInput is a partial update. Present fields follow the creation
// rules. Remark, when not blank, is appended to the activity log after the
// task is saved.
type UpdateTaskInput struct {
	Title          *string               `json:"title" validate:"omitnil,required,max=255"`
	Description    models.OptionalString `json:"description"`
	Priority       *string               `json:"priority" validate:"omitnil,oneof=Low Medium High Critical"`
	StartDate      *string               `json:"start_date" validate:"omitnil,required,datetime=2006-01-02"`
	Deadline       *string               `json:"deadline" validate:"omitnil,required,datetime=2006-01-02"`
	Status         *string               `json:"status" validate:"omitnil,oneof=Pending In-Progress On-Hold Completed"`
	AssignedUserID models.OptionalInt    `json:"assigned_user_id"`
	Remark         *string               `json:"remark"`
}

type TaskService struct {
	tasks    TaskStore
	users    UserLookup
	activity *ActivityService
	cache    TaskCache
}

// NewTaskService wires the registry. cache may be nil.
func NewTaskService(tasks TaskStore, users UserLookup, activity *ActivityService, cache TaskCache) *TaskService {
	return &TaskService{tasks: tasks, users: users, activity: activity, cache: cache}
}

func (s *TaskService) Users(ctx context.Context) ([]models.UserSummary, error) {
	return s.users.ListSummaries(ctx)
}

// List returns active tasks, optionally only those starting on date.
func (s *TaskService) List(ctx context.Context, date string) ([]models.Task, error) {
	filter := models.TaskFilter{}
	if date != "" {
		d, err := models.ParseDate(date)
		if err != nil {
			return nil, apperr.Validation("date", "the date is not a valid date (expected YYYY-MM-DD)")
		}
		filter.StartDate = &d
	}
	return s.tasks.List(ctx, filter)
}

func (s *TaskService) Get(ctx context.Context, id int) (models.Task, error) {
	if s.cache != nil {
		if t, ok, err := s.cache.Get(ctx, id); err != nil {
			logger.ErrorLogger.Error("Error reading task cache", zap.Int("task_id", id), zap.Error(err))
		} else if ok {
			return t, nil
		}
	}
	t, err := s.tasks.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return models.Task{}, apperr.NotFound("Task")
		}
		return models.Task{}, err
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, t); err != nil {
			logger.ErrorLogger.Error("Error caching task", zap.Int("task_id", id), zap.Error(err))
		}
	}
	return t, nil
}

func (s *TaskService) Create(ctx context.Context, in CreateTaskInput) (models.Task, error) {
	in.Title = strings.TrimSpace(in.Title)
	verr := &apperr.ValidationError{Message: "The given data was invalid."}
	if err := config.ValidateStruct(in); err != nil {
		if !errors.As(err, &verr) {
			return models.Task{}, err
		}
	}

	if !in.AssignedUserID.Valid {
		verr.Add("assigned_user_id", "the assigned user id field is required")
	} else if err := s.checkUser(ctx, verr, in.AssignedUserID.Int); err != nil {
		return models.Task{}, err
	}

	start, _ := models.ParseDate(in.StartDate)
	deadline, _ := models.ParseDate(in.Deadline)
	if !start.IsZero() && !deadline.IsZero() && deadline.Before(start.Time) {
		verr.Add("deadline", "the deadline must be a date after or equal to start date")
	}
	if err := verr.OrNil(); err != nil {
		return models.Task{}, err
	}

	task := models.Task{
		Title:          in.Title,
		Description:    in.Description,
		Priority:       models.PriorityMedium,
		Status:         models.StatusPending,
		StartDate:      start,
		Deadline:       deadline,
		AssignedUserID: in.AssignedUserID.Ptr(),
	}
	if in.Priority != "" {
		task.Priority = models.Priority(in.Priority)
	}
	if in.Status != "" {
		task.Status = models.TaskStatus(in.Status)
	}

	if err := s.tasks.Create(ctx, &task); err != nil {
		if errors.Is(err, repository.ErrForeignKey) {
			return models.Task{}, apperr.Validation("assigned_user_id", "the selected assigned user id is invalid")
		}
		return models.Task{}, err
	}

	logger.AuditLogger.Info("Task created", zap.Int("task_id", task.ID))
	return s.tasks.Get(ctx, task.ID)
}

// Update applies a partial update on behalf of actor. When the request
// carries a remark it is appended to the activity log after the task write;
// the two writes are independent, so a failed append leaves the task updated
// and is reported as an error.
func (s *TaskService) Update(ctx context.Context, id int, in UpdateTaskInput, actor models.User) (models.Task, error) {
	current, err := s.tasks.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return models.Task{}, apperr.NotFound("Task")
		}
		return models.Task{}, err
	}

	patch, err := s.buildPatch(ctx, current, in)
	if err != nil {
		return models.Task{}, err
	}

	remark := ""
	if in.Remark != nil {
		remark = strings.TrimSpace(*in.Remark)
	}
	if err := policy.CheckUpdate(current, patch, remark); err != nil {
		return models.Task{}, err
	}

	if err := s.tasks.Update(ctx, id, patch); err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return models.Task{}, apperr.NotFound("Task")
		case errors.Is(err, repository.ErrForeignKey):
			return models.Task{}, apperr.Validation("assigned_user_id", "the selected assigned user id is invalid")
		}
		return models.Task{}, err
	}
	s.invalidate(ctx, id)

	updated, err := s.tasks.Get(ctx, id)
	if err != nil {
		return models.Task{}, err
	}
	logger.AuditLogger.Info("Task updated", zap.Int("task_id", id), zap.Int("user_id", actor.ID))

	if remark != "" {
		_, err := s.activity.Append(ctx, AppendInput{
			TaskID: id,
			Status: string(policy.EntryStatusFor(updated.Status)),
			Remark: remark,
		}, actor)
		if err != nil {
			logger.ErrorLogger.Error("Task updated but activity entry failed", zap.Int("task_id", id), zap.Error(err))
			return updated, fmt.Errorf("task %d updated but activity entry failed: %w", id, err)
		}
	}
	return updated, nil
}

// Deactivate soft-deletes a task. Unknown ids are not an error.
func (s *TaskService) Deactivate(ctx context.Context, id int) error {
	found, err := s.tasks.Deactivate(ctx, id)
	if err != nil {
		return err
	}
	if found {
		s.invalidate(ctx, id)
		logger.AuditLogger.Info("Task deactivated", zap.Int("task_id", id))
	}
	return nil
}

func (s *TaskService) invalidate(ctx context.Context, id int) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, id); err != nil {
		logger.ErrorLogger.Error("Error invalidating task cache", zap.Int("task_id", id), zap.Error(err))
	}
}

func (s *TaskService) checkUser(ctx context.Context, verr *apperr.ValidationError, id int) error {
	ok, err := s.users.Exists(ctx, id)
	if err != nil {
		return fmt.Errorf("check user: %w", err)
	}
	if !ok {
		verr.Add("assigned_user_id", "the selected assigned user id is invalid")
	}
	return nil
}

// buildPatch validates every present field with the creation rules.
func (s *TaskService) buildPatch(ctx context.Context, current models.Task, in UpdateTaskInput) (models.TaskPatch, error) {
	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		in.Title = &title
	}
	verr := &apperr.ValidationError{Message: "The given data was invalid."}
	if err := config.ValidateStruct(in); err != nil {
		if !errors.As(err, &verr) {
			return models.TaskPatch{}, err
		}
	}

	p := models.TaskPatch{
		Title:       in.Title,
		Description: in.Description,
		Assignee:    in.AssignedUserID,
	}
	if in.Priority != nil {
		pr := models.Priority(*in.Priority)
		p.Priority = &pr
	}
	if in.Status != nil {
		st := models.TaskStatus(*in.Status)
		p.Status = &st
	}
	if in.StartDate != nil {
		if d, err := models.ParseDate(*in.StartDate); err == nil {
			p.StartDate = &d
		}
	}
	if in.Deadline != nil {
		if d, err := models.ParseDate(*in.Deadline); err == nil {
			p.Deadline = &d
		}
	}
	if in.AssignedUserID.Valid {
		if err := s.checkUser(ctx, verr, in.AssignedUserID.Int); err != nil {
			return models.TaskPatch{}, err
		}
	}

	start, deadline := current.StartDate, current.Deadline
	if p.StartDate != nil {
		start = *p.StartDate
	}
	if p.Deadline != nil {
		deadline = *p.Deadline
	}
	if !start.IsZero() && !deadline.IsZero() && deadline.Before(start.Time) {
		verr.Add("deadline", "the deadline must be a date after or equal to start date")
	}

	if err := verr.OrNil(); err != nil {
		return models.TaskPatch{}, err
	}
	return p, nil
}
