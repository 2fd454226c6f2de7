// Account and token logic.
//
//	AuthHandler (HTTP) → AuthService (business rules) → UserRepository (DB)
//	                   ↘ TokenService (JWT), PasswordService (bcrypt)

package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/programmer-battle/internal/apperror"
	"github.com/sakif/programmer-battle/internal/auth"
	"github.com/sakif/programmer-battle/internal/model"
	"github.com/sakif/programmer-battle/internal/repository"
)

// ErrTokensDisabled is returned by IssueToken when no signing secret was
// configured.
var ErrTokensDisabled = errors.New("service/auth: token issuing is disabled")

// invalidCredentials is shared by unknown usernames and wrong passwords.
const invalidCredentials = "Invalid credentials."

// AuthService manages local accounts and issues API tokens.
type AuthService struct {
	users     repository.UserRepository
	tokens    *auth.TokenService // nil when JWT_SECRET is unset
	passwords *auth.PasswordService
	logger    *slog.Logger
}

// NewAuthService creates an AuthService. tokens may be nil, which disables
// IssueToken.
func NewAuthService(
	users repository.UserRepository,
	tokens *auth.TokenService,
	passwords *auth.PasswordService,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		users:     users,
		tokens:    tokens,
		passwords: passwords,
		logger:    logger,
	}
}

// CreateUser hashes password and stores a new account. The email is derived
// from the username and the default role is granted.
func (s *AuthService) CreateUser(ctx context.Context, username, password string) (*model.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, apperror.ValidationFailed("username", "username is required")
	}

	hash, err := s.passwords.Hash(password)
	if err != nil {
		return nil, apperror.ValidationFailed("password", err.Error())
	}

	user := &model.User{
		Username: username,
		Email:    username + "@foo.com",
		Password: hash,
		Roles:    []string{model.DefaultRole},
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("user created",
		slog.String("userID", user.ID),
		slog.String("username", user.Username),
	)
	return user, nil
}

// EnsureUser returns the account named username, creating it with password
// when it does not exist yet. The server calls it at startup to seed the
// default creator.
func (s *AuthService) EnsureUser(ctx context.Context, username, password string) (*model.User, error) {
	user, err := s.users.FindUserByUsername(ctx, username)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, apperror.ErrNotFound) {
		return nil, fmt.Errorf("service/auth: looking up %q: %w", username, err)
	}

	user, err = s.CreateUser(ctx, username, password)
	if errors.Is(err, apperror.ErrConflict) {
		// Lost a race with another instance seeding the same account.
		return s.users.FindUserByUsername(ctx, username)
	}
	if err != nil {
		return nil, fmt.Errorf("service/auth: seeding %q: %w", username, err)
	}
	return user, nil
}

// Authenticate checks a username and password pair.
// Returns apperror.ErrUnauthorized when either is wrong.
func (s *AuthService) Authenticate(ctx context.Context, username, password string) (*model.User, error) {
	user, err := s.users.FindUserByUsername(ctx, username)
	if errors.Is(err, apperror.ErrNotFound) {
		return nil, apperror.Unauthorized(invalidCredentials)
	}
	if err != nil {
		return nil, fmt.Errorf("service/auth: looking up %q: %w", username, err)
	}

	if err := s.passwords.Verify(user.Password, password); err != nil {
		s.logger.Warn("failed login attempt", slog.String("username", username))
		return nil, apperror.Unauthorized(invalidCredentials)
	}

	return user, nil
}

// IssueToken authenticates the user and returns a signed JWT whose subject
// is the user's ID.
func (s *AuthService) IssueToken(ctx context.Context, username, password string) (string, error) {
	if s.tokens == nil {
		return "", ErrTokensDisabled
	}

	user, err := s.Authenticate(ctx, username, password)
	if err != nil {
		return "", err
	}

	token, err := s.tokens.Generate(user.ID)
	if err != nil {
		return "", fmt.Errorf("service/auth: generating token for user %s: %w", user.ID, err)
	}

	s.logger.Info("token issued", slog.String("userID", user.ID))
	return token, nil
}

// GetUserByID returns the user for the given internal ID.
func (s *AuthService) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	if id == "" {
		return nil, apperror.Unauthorized("valid authentication required")
	}
	return s.users.FindUserByID(ctx, id)
}
