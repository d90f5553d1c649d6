package v1

import (
	"github.com/gofiber/fiber/v2"

	"tasktracker/internal/api/v1/handlers"
	"tasktracker/internal/auth"
	"tasktracker/internal/middleware"
	"tasktracker/internal/service"
)

// Services are the dependencies of the HTTP surface.
type Services struct {
	Auth     *auth.Service
	Tasks    *service.TaskService
	Activity *service.ActivityService
}

// RegisterRoutes mounts the API under /api. guard, when non-nil, runs in
// front of the credential endpoints.
func RegisterRoutes(app *fiber.App, s Services, guard fiber.Handler) {
	authH := handlers.NewAuthHandler(s.Auth)
	taskH := handlers.NewTaskHandler(s.Tasks)
	activityH := handlers.NewActivityHandler(s.Activity)

	if guard == nil {
		guard = func(c *fiber.Ctx) error { return c.Next() }
	}
	token := middleware.UseToken(s.Auth)

	api := app.Group("/api")

	// Auth
	api.Post("/register", guard, authH.Register)
	api.Post("/login", guard, authH.Login)
	api.Post("/logout", token, authH.Logout)
	api.Get("/user", token, authH.Me)

	// User
	api.Get("/users", token, taskH.ListUsers)

	// Task
	taskRoutes := api.Group("/tasks", token)
	taskRoutes.Get("/", taskH.ListTasks)
	taskRoutes.Post("/", taskH.CreateTask)
	taskRoutes.Get("/:id", taskH.GetTask)
	taskRoutes.Put("/:id", taskH.UpdateTask)
	taskRoutes.Delete("/:id", taskH.DeleteTask)

	// Activity
	activityRoutes := api.Group("/activities", token)
	activityRoutes.Post("/", activityH.Append)
	activityRoutes.Get("/daily", activityH.Daily)
	activityRoutes.Get("/report", activityH.Report)
}
