package handlers

import (
	"github.com/gofiber/fiber/v2"

	"tasktracker/internal/service"
)

type ActivityHandler struct {
	activity *service.ActivityService
}

func NewActivityHandler(activity *service.ActivityService) *ActivityHandler {
	return &ActivityHandler{activity: activity}
}

// Append records an activity entry. Any user_id in the body is ignored.
func (h *ActivityHandler) Append(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	var req service.AppendInput
	if err := parseBody(c, &req); err != nil {
		return err
	}
	entry, err := h.activity.Append(c.UserContext(), req, user)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(entry)
}

func (h *ActivityHandler) Daily(c *fiber.Ctx) error {
	view, err := h.activity.Daily(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(view)
}

func (h *ActivityHandler) Report(c *fiber.Ctx) error {
	view, err := h.activity.Report(c.UserContext(), service.ReportInput{
		StartDate: c.Query("start_date"),
		EndDate:   c.Query("end_date"),
		UserID:    c.Query("user_id"),
		TaskID:    c.Query("task_id"),
	})
	if err != nil {
		return err
	}
	return c.JSON(view)
}
