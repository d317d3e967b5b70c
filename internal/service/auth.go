package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"conclusio/internal/model"
	"conclusio/internal/repository"
	"conclusio/internal/session"
)

// AuthService authenticates requests from their session token.
type AuthService interface {
	// Authenticate resolves a session token to its user.
	Authenticate(ctx context.Context, token string) (*model.User, *session.Claims, error)
	// Logout revokes the session for the rest of its lifetime.
	Logout(ctx context.Context, claims *session.Claims) error
	// Issue finds or creates the user by email and opens a session for it.
	Issue(ctx context.Context, email, name string) (string, *model.User, error)
	Me(ctx context.Context, userID string) (*model.User, error)
}

type authService struct {
	users   repository.UserRepository
	tokens  *session.Manager
	revoker session.Revoker
	logger  *zap.Logger
	now     func() time.Time
}

// NewAuthService constructs an AuthService.
func NewAuthService(users repository.UserRepository, tokens *session.Manager, revoker session.Revoker, logger *zap.Logger) AuthService {
	return &authService{
		users:   users,
		tokens:  tokens,
		revoker: revoker,
		logger:  logger.With(zap.String("component", "auth")),
		now:     time.Now,
	}
}

func (s *authService) Authenticate(ctx context.Context, token string) (*model.User, *session.Claims, error) {
	if token == "" {
		return nil, nil, ErrUnauthenticated
	}
	claims, err := s.tokens.Parse(token)
	if err != nil {
		if errors.Is(err, session.ErrExpired) {
			return nil, nil, ErrSessionExpired
		}
		return nil, nil, ErrUnauthenticated
	}

	revoked, err := s.revoker.IsRevoked(ctx, claims.ID)
	if err != nil {
		// Fail open when the revocation list is unreachable.
		s.logger.Warn("session_revocation_check_failed", zap.Error(err))
	} else if revoked {
		return nil, nil, ErrUnauthenticated
	}

	user, err := s.users.FindByID(ctx, claims.UserID())
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, ErrUnauthenticated
		}
		return nil, nil, err
	}
	return user, claims, nil
}

func (s *authService) Logout(ctx context.Context, claims *session.Claims) error {
	if claims == nil {
		return ErrUnauthenticated
	}
	if err := s.revoker.Revoke(ctx, claims.ID, claims.Remaining(s.now())); err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}
	return nil
}

func (s *authService) Issue(ctx context.Context, email, name string) (string, *model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if _, err := mail.ParseAddress(email); err != nil {
		return "", nil, validationError("invalid email %q", email)
	}
	user, err := s.users.UpsertByEmail(ctx, &model.User{
		ID:        uuid.NewString(),
		Email:     email,
		Name:      strings.TrimSpace(name),
		CreatedAt: s.now().UTC(),
	})
	if err != nil {
		return "", nil, err
	}
	token, _, err := s.tokens.Issue(user.ID)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

func (s *authService) Me(ctx context.Context, userID string) (*model.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return user, nil
}
