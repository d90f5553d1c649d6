package middleware

import (
	"errors"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"tasktracker/internal/apperr"
	"tasktracker/pkg/logger"
)

// RequestLogger recovers from panics and logs every request with the status
// that is actually sent back.
func RequestLogger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := next(c)
		if err != nil {
			// render now so the logged status is the final one
			if herr := c.App().ErrorHandler(c, err); herr != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}

		logger.RequestLogger.Info("Request",
			zap.String("method", c.Method()),
			zap.String("url", c.OriginalURL()),
			zap.Int("status", c.Response().StatusCode()),
			zap.Duration("latency", time.Since(start)),
		)
		return nil
	}
}

func next(c *fiber.Ctx) (err error) {
	defer func() {
		if r := recover(); r != nil {
			logger.ErrorLogger.Error(fmt.Sprintf("Recovered from panic: %v", r),
				zap.String("stack", string(debug.Stack())))
			err = fiber.NewError(fiber.StatusInternalServerError, "Internal server error")
		}
	}()
	return c.Next()
}

// ErrorHandler renders errors returned by handlers as JSON.
func ErrorHandler(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	body := fiber.Map{"message": "Internal server error"}

	var (
		verr  *apperr.ValidationError
		aerr  *apperr.AuthError
		nerr  *apperr.NotFoundError
		cerr  *apperr.ConflictError
		fiErr *fiber.Error
	)
	switch {
	case errors.As(err, &verr):
		status = fiber.StatusUnprocessableEntity
		body = fiber.Map{"message": verr.Message, "errors": verr.Fields}
	case errors.As(err, &aerr):
		status = fiber.StatusUnauthorized
		body = fiber.Map{"message": aerr.Message}
	case errors.As(err, &nerr):
		status = fiber.StatusNotFound
		body = fiber.Map{"message": nerr.Error()}
	case errors.As(err, &cerr):
		status = fiber.StatusConflict
		body = fiber.Map{"message": cerr.Message}
	case errors.As(err, &fiErr):
		status = fiErr.Code
		body = fiber.Map{"message": fiErr.Message}
	default:
		logger.ErrorLogger.Error("Unhandled error",
			zap.String("method", c.Method()),
			zap.String("url", c.OriginalURL()),
			zap.Error(err))
	}

	body["success"] = false
	body["status"] = status
	return c.Status(status).JSON(body)
}
