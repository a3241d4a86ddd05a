package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/diero-hl/agentclaw/internal/models"
	pgrepo "github.com/diero-hl/agentclaw/internal/repositories/postgres"
	"github.com/diero-hl/agentclaw/internal/utils"
	"github.com/google/uuid"
)

type LoginResult struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expiresAt"`
	User      *models.User `json:"user"`
}

type UserService interface {
	Register(ctx context.Context, username, password string) (*models.User, error)
	Login(ctx context.Context, username, password string) (*LoginResult, error)
}

type userService struct {
	users  pgrepo.UserRepository
	secret string
	ttl    time.Duration
	now    func() time.Time
}

func NewUserService(users pgrepo.UserRepository, jwtSecret string, tokenTTL time.Duration) UserService {
	if tokenTTL <= 0 {
		tokenTTL = 24 * time.Hour
	}
	return &userService{users: users, secret: jwtSecret, ttl: tokenTTL, now: time.Now}
}

func (s *userService) Register(ctx context.Context, username, password string) (*models.User, error) {
	const op = "UserService.Register"

	username = strings.TrimSpace(username)
	var fields []utils.FieldError
	if len(username) < 3 || len(username) > 32 {
		fields = append(fields, utils.FieldError{Field: "username", Rule: "len", Message: "username must be 3 to 32 characters"})
	}
	if len(password) < 8 {
		fields = append(fields, utils.FieldError{Field: "password", Rule: "min", Message: "password must be at least 8 characters"})
	}
	if len(fields) > 0 {
		return nil, utils.Invalid(op, "invalid registration", fields, nil)
	}

	hash, err := utils.HashPassword(password)
	if err != nil {
		if errors.Is(err, utils.ErrPasswordTooLong) {
			return nil, utils.Invalid(op, "invalid registration", []utils.FieldError{{
				Field: "password", Rule: "max", Message: err.Error(),
			}}, err)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to hash password", err)
	}

	u := &models.User{
		ID:        uuid.NewString(),
		Username:  username,
		Password:  hash,
		Role:      models.UserRoleUser,
		CreatedAt: s.now().UTC(),
	}
	if err := s.users.Create(ctx, u); err != nil {
		if errors.Is(err, utils.ErrConflict) {
			return nil, utils.E(utils.CodeConflict, op, "username is already taken", err)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to create user", err)
	}
	return u, nil
}

func (s *userService) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	const op = "UserService.Login"

	u, err := s.users.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeUnauthorized, op, "invalid username or password", nil)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to load user", err)
	}
	if !utils.CheckPassword(u.Password, password) {
		return nil, utils.E(utils.CodeUnauthorized, op, "invalid username or password", nil)
	}

	tok, exp, err := utils.SignToken(s.secret, u.ID, u.Username, string(u.Role), s.ttl, s.now())
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to issue token", err)
	}
	return &LoginResult{Token: tok, ExpiresAt: exp, User: u}, nil
}
