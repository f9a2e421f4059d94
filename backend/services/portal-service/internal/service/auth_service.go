package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"nmsportal/backend/services/portal-service/internal/config"
	passwordpkg "nmsportal/backend/services/portal-service/internal/password"
)

// ErrInvalidCredentials represents login failure.
var ErrInvalidCredentials = errors.New("auth: invalid credentials")

// AuthService checks portal accounts declared in configuration.
type AuthService struct {
	users     map[string]config.User
	hasher    passwordpkg.Hasher
	tokenizer *TokenService
	logger    *zap.Logger
}

// NewAuthService builds AuthService. Usernames are matched case-insensitively.
func NewAuthService(users []config.User, hasher passwordpkg.Hasher, tokenizer *TokenService, logger *zap.Logger) *AuthService {
	byName := make(map[string]config.User, len(users))
	for _, u := range users {
		byName[strings.ToLower(strings.TrimSpace(u.Username))] = u
	}
	return &AuthService{
		users:     byName,
		hasher:    hasher,
		tokenizer: tokenizer,
		logger:    logger,
	}
}

// Login authenticates a user and produces a JWT.
func (s *AuthService) Login(ctx context.Context, username, password string) (string, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	if username == "" || password == "" {
		return "", ErrInvalidCredentials
	}

	user, ok := s.users[username]
	if !ok {
		return "", ErrInvalidCredentials
	}
	if err := s.hasher.Compare(user.PasswordHash, password); err != nil {
		if !errors.Is(err, passwordpkg.ErrMismatch) {
			s.logger.Warn("unusable password hash", zap.String("username", user.Username), zap.Error(err))
		}
		return "", ErrInvalidCredentials
	}

	role := user.Role
	if role == "" {
		role = "viewer"
	}
	token, err := s.tokenizer.GenerateToken(user.Username, role)
	if err != nil {
		return "", err
	}

	s.logger.Info("user logged in", zap.String("username", user.Username))
	return token, nil
}
