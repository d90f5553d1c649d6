// Package policy holds the rules that gate task updates: the status graph,
// the Completed lock on priority and assignee, and mandatory remarks.
package policy

import (
	"strings"

	"tasktracker/internal/apperr"
	"tasktracker/internal/models"
)

var validPriorities = map[models.Priority]bool{
	models.PriorityLow:      true,
	models.PriorityMedium:   true,
	models.PriorityHigh:     true,
	models.PriorityCritical: true,
}

var validStatuses = map[models.TaskStatus]bool{
	models.StatusPending:    true,
	models.StatusInProgress: true,
	models.StatusOnHold:     true,
	models.StatusCompleted:  true,
}

func ValidPriority(p models.Priority) bool { return validPriorities[p] }

func ValidStatus(s models.TaskStatus) bool { return validStatuses[s] }

func ValidEntryStatus(s models.EntryStatus) bool {
	return s == models.EntryPending || s == models.EntryDone
}

// CanTransition reports whether a task may move from one status to another.
// The graph is complete: open statuses move freely, any of them may complete,
// and a completed task may be reopened to any open status. Only unknown
// statuses are refused.
func CanTransition(from, to models.TaskStatus) bool {
	return ValidStatus(from) && ValidStatus(to)
}

// RequiresRemark reports whether moving into status must be accompanied by
// an activity remark.
func RequiresRemark(to models.TaskStatus) bool {
	return to == models.StatusCompleted || to == models.StatusOnHold
}

// EntryStatusFor maps a task status onto the activity log enumeration.
func EntryStatusFor(s models.TaskStatus) models.EntryStatus {
	if s == models.StatusCompleted {
		return models.EntryDone
	}
	return models.EntryPending
}

// CheckUpdate validates patch against the stored task. remark is the text
// that will be appended to the activity log alongside the update.
func CheckUpdate(current models.Task, patch models.TaskPatch, remark string) error {
	verr := &apperr.ValidationError{Message: "The given data was invalid."}

	next := current.Status
	if patch.Status != nil {
		next = *patch.Status
		if !CanTransition(current.Status, next) {
			verr.Add("status", "transition from "+string(current.Status)+" to "+string(next)+" is not allowed")
			return verr
		}
	}

	if next == models.StatusCompleted {
		if patch.Priority != nil && *patch.Priority != current.Priority {
			verr.Add("priority", "priority is locked while the task is Completed; reopen the task first")
		}
		if patch.Assignee.Set && !sameAssignee(current.AssignedUserID, patch.Assignee) {
			verr.Add("assigned_user_id", "assignment is locked while the task is Completed; reopen the task first")
		}
	}

	if next != current.Status && RequiresRemark(next) && strings.TrimSpace(remark) == "" {
		verr.Add("remark", "a remark is required when marking a task as "+string(next))
	}

	return verr.OrNil()
}

func sameAssignee(stored *int, patch models.OptionalInt) bool {
	if stored == nil || !patch.Valid {
		return stored == nil && !patch.Valid
	}
	return *stored == patch.Int
}
