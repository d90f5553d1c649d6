// Package auth is the identity store: registration, login, logout and bearer
// token authentication.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"tasktracker/internal/apperr"
	"tasktracker/internal/config"
	"tasktracker/internal/models"
	"tasktracker/internal/repository"
	"tasktracker/pkg/logger"
)

const (
	invalidCredentials = "Invalid credentials"
	maxPasswordBytes   = 72
)

type UserStore interface {
	Create(ctx context.Context, u *models.User) error
	FindByEmail(ctx context.Context, email string) (models.User, error)
	FindByID(ctx context.Context, id int) (models.User, error)
	EmailTaken(ctx context.Context, email string) (bool, error)
}

type SessionStore interface {
	Add(ctx context.Context, userID int, sessionID string, ttl time.Duration) error
	Active(ctx context.Context, userID int, sessionID string) (bool, error)
	RevokeAll(ctx context.Context, userID int) error
}

type RegisterInput struct {
	Name                 string `json:"name" validate:"required,max=255"`
	Email                string `json:"email" validate:"required,email,max=255"`
	Password             string `json:"password" validate:"required"`
	PasswordConfirmation string `json:"password_confirmation" validate:"required,eqfield=Password"`
}

type LoginInput struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type Service struct {
	users    UserStore
	sessions SessionStore
	tokens   *TokenIssuer
	cost     int
}

func NewService(users UserStore, sessions SessionStore, tokens *TokenIssuer) *Service {
	return &Service{users: users, sessions: sessions, tokens: tokens, cost: bcrypt.DefaultCost}
}

// WithCost overrides the bcrypt cost. Tests use bcrypt.MinCost.
func (s *Service) WithCost(cost int) *Service {
	s.cost = cost
	return s
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *Service) Register(ctx context.Context, in RegisterInput) (models.User, string, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = normalizeEmail(in.Email)
	verr := &apperr.ValidationError{Message: "The given data was invalid."}
	if err := config.ValidateStruct(in); err != nil {
		if !errors.As(err, &verr) {
			return models.User{}, "", err
		}
	}
	// bcrypt only reads the first 72 bytes
	if len(in.Password) > maxPasswordBytes {
		verr.Add("password", "the password may not be greater than 72 bytes")
	}
	if err := verr.OrNil(); err != nil {
		return models.User{}, "", err
	}

	taken, err := s.users.EmailTaken(ctx, in.Email)
	if err != nil {
		return models.User{}, "", fmt.Errorf("check email: %w", err)
	}
	if taken {
		return models.User{}, "", apperr.Validation("email", "the email has already been taken")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.cost)
	if err != nil {
		return models.User{}, "", fmt.Errorf("hash password: %w", err)
	}

	user := models.User{Name: in.Name, Email: in.Email, Password: string(hashed)}
	if err := s.users.Create(ctx, &user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return models.User{}, "", apperr.Validation("email", "the email has already been taken")
		}
		return models.User{}, "", err
	}

	token, err := s.startSession(ctx, user.ID)
	if err != nil {
		return models.User{}, "", err
	}
	logger.AuditLogger.Info("User registered", zap.Int("user_id", user.ID))
	return user, token, nil
}

func (s *Service) Login(ctx context.Context, in LoginInput) (models.User, string, error) {
	in.Email = normalizeEmail(in.Email)
	if err := config.ValidateStruct(in); err != nil {
		return models.User{}, "", err
	}

	user, err := s.users.FindByEmail(ctx, in.Email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			logger.SecurityLogger.Warn("Login failed", zap.String("email", in.Email))
			return models.User{}, "", apperr.Unauthorized(invalidCredentials)
		}
		return models.User{}, "", err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(in.Password)); err != nil {
		logger.SecurityLogger.Warn("Login failed", zap.String("email", in.Email))
		return models.User{}, "", apperr.Unauthorized(invalidCredentials)
	}

	token, err := s.startSession(ctx, user.ID)
	if err != nil {
		return models.User{}, "", err
	}
	logger.AuditLogger.Info("Login success", zap.Int("user_id", user.ID))
	return user, token, nil
}

// Logout revokes every session of userID. Calling it twice is harmless.
func (s *Service) Logout(ctx context.Context, userID int) error {
	if err := s.sessions.RevokeAll(ctx, userID); err != nil {
		return err
	}
	logger.AuditLogger.Info("Logout", zap.Int("user_id", userID))
	return nil
}

// Authenticate resolves a bearer token to its user.
func (s *Service) Authenticate(ctx context.Context, token string) (models.User, error) {
	claims, err := s.tokens.Parse(token)
	if err != nil {
		return models.User{}, apperr.Unauthorized("Unauthenticated.")
	}
	active, err := s.sessions.Active(ctx, claims.UserID, claims.SessionID)
	if err != nil {
		return models.User{}, err
	}
	if !active {
		return models.User{}, apperr.Unauthorized("Unauthenticated.")
	}
	user, err := s.users.FindByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return models.User{}, apperr.Unauthorized("Unauthenticated.")
		}
		return models.User{}, err
	}
	return user, nil
}

func (s *Service) startSession(ctx context.Context, userID int) (string, error) {
	token, claims, err := s.tokens.Issue(userID)
	if err != nil {
		return "", err
	}
	if err := s.sessions.Add(ctx, userID, claims.SessionID, s.tokens.TTL()); err != nil {
		return "", err
	}
	return token, nil
}
