package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"tasktracker/internal/apperr"
	"tasktracker/internal/config"
	"tasktracker/internal/models"
	"tasktracker/internal/report"
	"tasktracker/internal/repository"
	"tasktracker/pkg/logger"
)

type EntryStore interface {
	Create(ctx context.Context, e *models.TaskEntry) error
	List(ctx context.Context, f models.EntryFilter) ([]models.EntryView, error)
}

type AppendInput struct {
	TaskID int    `json:"task_id" validate:"required"`
	Status string `json:"status" validate:"required,oneof=pending done"`
	Remark string `json:"remark" validate:"required"`
}

type ReportInput struct {
	StartDate string
	EndDate   string
	UserID    string
	TaskID    string
}

type DailyView struct {
	Date         string             `json:"date"`
	TotalUpdates int                `json:"total_updates"`
	Data         []models.EntryView `json:"data"`
}

type ReportView struct {
	Range string             `json:"range"`
	Count int                `json:"count"`
	Data  []models.EntryView `json:"data"`
}

// ActivityService owns the append-only activity log and its views.
type ActivityService struct {
	entries EntryStore
	tasks   TaskStore
	users   UserLookup
	now     func() time.Time
	loc     *time.Location
}

func NewActivityService(entries EntryStore, tasks TaskStore, users UserLookup, now func() time.Time, loc *time.Location) *ActivityService {
	if now == nil {
		now = time.Now
	}
	if loc == nil {
		loc = time.Local
	}
	return &ActivityService{entries: entries, tasks: tasks, users: users, now: now, loc: loc}
}

// Append records an entry for actor. The actor always comes from the
// authenticated session.
func (s *ActivityService) Append(ctx context.Context, in AppendInput, actor models.User) (models.TaskEntry, error) {
	in.Remark = strings.TrimSpace(in.Remark)
	if err := config.ValidateStruct(in); err != nil {
		return models.TaskEntry{}, err
	}

	ok, err := s.tasks.Exists(ctx, in.TaskID)
	if err != nil {
		return models.TaskEntry{}, fmt.Errorf("check task: %w", err)
	}
	if !ok {
		return models.TaskEntry{}, apperr.Validation("task_id", "the selected task id is invalid")
	}

	entry := models.TaskEntry{
		TaskID:    in.TaskID,
		UserID:    actor.ID,
		Status:    models.EntryStatus(in.Status),
		Remark:    in.Remark,
		CreatedAt: s.now(),
	}
	if err := s.entries.Create(ctx, &entry); err != nil {
		if errors.Is(err, repository.ErrForeignKey) {
			return models.TaskEntry{}, apperr.Validation("task_id", "the selected task id is invalid")
		}
		return models.TaskEntry{}, err
	}

	logger.AuditLogger.Info("Activity appended",
		zap.Int("entry_id", entry.ID), zap.Int("task_id", entry.TaskID), zap.Int("user_id", entry.UserID))
	return entry, nil
}

// Daily returns every entry created on the current calendar day.
func (s *ActivityService) Daily(ctx context.Context) (DailyView, error) {
	w := report.DayBounds(s.now(), s.loc)
	data, err := s.entries.List(ctx, models.EntryFilter{From: w.From, To: w.To})
	if err != nil {
		return DailyView{}, err
	}
	return DailyView{Date: w.Start.String(), TotalUpdates: len(data), Data: data}, nil
}

// Report returns entries created between two dates, both inclusive. With no
// dates at all the month-to-date window applies.
func (s *ActivityService) Report(ctx context.Context, in ReportInput) (ReportView, error) {
	verr := &apperr.ValidationError{Message: "The given data was invalid."}

	var start, end models.Date
	if in.StartDate == "" && in.EndDate == "" {
		start, end = report.MonthToDate(s.now(), s.loc)
	} else {
		start = parseDateField(verr, "start_date", in.StartDate, true)
		end = parseDateField(verr, "end_date", in.EndDate, true)
	}

	filter := models.EntryFilter{}
	var err error
	if filter.UserID, err = parseRef(ctx, verr, "user_id", in.UserID, s.users.Exists); err != nil {
		return ReportView{}, err
	}
	if filter.TaskID, err = parseRef(ctx, verr, "task_id", in.TaskID, s.tasks.Exists); err != nil {
		return ReportView{}, err
	}

	if err := verr.OrNil(); err != nil {
		return ReportView{}, err
	}

	w, err := report.RangeBounds(start, end, s.loc)
	if err != nil {
		return ReportView{}, err
	}
	filter.From, filter.To = w.From, w.To

	data, err := s.entries.List(ctx, filter)
	if err != nil {
		return ReportView{}, err
	}
	return ReportView{Range: w.Label(), Count: len(data), Data: data}, nil
}

// parseRef parses an optional id filter and checks that it references a row.
func parseRef(ctx context.Context, verr *apperr.ValidationError, field, raw string,
	exists func(context.Context, int) (bool, error)) (*int, error) {
	if raw == "" {
		return nil, nil
	}
	invalid := "the selected " + strings.ReplaceAll(field, "_", " ") + " is invalid"
	id, err := strconv.Atoi(raw)
	if err != nil {
		verr.Add(field, invalid)
		return nil, nil
	}
	ok, err := exists(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("check %s: %w", field, err)
	}
	if !ok {
		verr.Add(field, invalid)
		return nil, nil
	}
	return &id, nil
}

func parseDateField(verr *apperr.ValidationError, field, raw string, required bool) models.Date {
	name := strings.ReplaceAll(field, "_", " ")
	if raw == "" {
		if required {
			verr.Add(field, "the "+name+" field is required")
		}
		return models.Date{}
	}
	d, err := models.ParseDate(raw)
	if err != nil {
		verr.Add(field, "the "+name+" is not a valid date (expected YYYY-MM-DD)")
		return models.Date{}
	}
	return d
}
