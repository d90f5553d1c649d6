package handlers

import (
	"github.com/gofiber/fiber/v2"

	"tasktracker/internal/apperr"
	"tasktracker/internal/service"
)

type TaskHandler struct {
	tasks *service.TaskService
}

func NewTaskHandler(tasks *service.TaskService) *TaskHandler {
	return &TaskHandler{tasks: tasks}
}

// ListUsers returns the id and name of every user for assignee pickers.
func (h *TaskHandler) ListUsers(c *fiber.Ctx) error {
	users, err := h.tasks.Users(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(users)
}

func (h *TaskHandler) ListTasks(c *fiber.Ctx) error {
	tasks, err := h.tasks.List(c.UserContext(), c.Query("date"))
	if err != nil {
		return err
	}
	return c.JSON(tasks)
}

func (h *TaskHandler) CreateTask(c *fiber.Ctx) error {
	var req service.CreateTaskInput
	if err := parseBody(c, &req); err != nil {
		return err
	}
	task, err := h.tasks.Create(c.UserContext(), req)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(task)
}

func (h *TaskHandler) GetTask(c *fiber.Ctx) error {
	id, err := taskID(c)
	if err != nil {
		return err
	}
	task, err := h.tasks.Get(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(task)
}

// UpdateTask applies a partial update and, when a remark is present, logs it
// as an activity of the caller.
func (h *TaskHandler) UpdateTask(c *fiber.Ctx) error {
	id, err := taskID(c)
	if err != nil {
		return err
	}
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	var req service.UpdateTaskInput
	if err := parseBody(c, &req); err != nil {
		return err
	}
	task, err := h.tasks.Update(c.UserContext(), id, req, user)
	if err != nil {
		return err
	}
	return c.JSON(task)
}

func (h *TaskHandler) DeleteTask(c *fiber.Ctx) error {
	id, err := taskID(c)
	if err != nil {
		return err
	}
	if err := h.tasks.Deactivate(c.UserContext(), id); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Task deactivated"})
}

func taskID(c *fiber.Ctx) (int, error) {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return 0, apperr.NotFound("Task")
	}
	return id, nil
}
