// Package handlers adapts the services to Fiber. Handlers return errors and
// leave rendering them to the application error handler.
package handlers

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"tasktracker/internal/apperr"
	"tasktracker/internal/auth"
	"tasktracker/internal/middleware"
	"tasktracker/internal/models"
	"tasktracker/pkg/logger"
)

type AuthHandler struct {
	auth *auth.Service
}

func NewAuthHandler(svc *auth.Service) *AuthHandler {
	return &AuthHandler{auth: svc}
}

type tokenResponse struct {
	User  models.User `json:"user"`
	Token string      `json:"token"`
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req auth.RegisterInput
	if err := parseBody(c, &req); err != nil {
		return err
	}
	user, token, err := h.auth.Register(c.UserContext(), req)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(tokenResponse{User: user, Token: token})
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req auth.LoginInput
	if err := parseBody(c, &req); err != nil {
		return err
	}
	user, token, err := h.auth.Login(c.UserContext(), req)
	if err != nil {
		return err
	}
	return c.JSON(tokenResponse{User: user, Token: token})
}

// Logout revokes every session of the caller.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	if err := h.auth.Logout(c.UserContext(), user.ID); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Logged out"})
}

func (h *AuthHandler) Me(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	return c.JSON(user)
}

func parseBody(c *fiber.Ctx, out interface{}) error {
	if err := c.BodyParser(out); err != nil {
		logger.ErrorLogger.Error("Bad request body", zap.String("url", c.OriginalURL()), zap.Error(err))
		return fiber.NewError(fiber.StatusBadRequest, "Bad request")
	}
	return nil
}

func currentUser(c *fiber.Ctx) (models.User, error) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return models.User{}, apperr.Unauthorized("Unauthenticated.")
	}
	return user, nil
}
