package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"storefront/models"

	"go.uber.org/zap"
)

const (
	maxPasswordBytes = 72
	welcomeTimeout   = 2 * time.Second
)

// Notifier is told about new accounts. Failures never reach the caller of Register.
type Notifier interface {
	Welcome(ctx context.Context, id models.Identity) error
}

// Service implements the account operations on top of a Repository.
type Service struct {
	repo        Repository
	hasher      Hasher
	tokens      *TokenIssuer
	revocations Revocations
	notifier    Notifier

	welcomeTimeout time.Duration
}

func NewService(repo Repository, hasher Hasher, tokens *TokenIssuer, revocations Revocations, notifier Notifier) *Service {
	if revocations == nil {
		revocations = NewMemoryRevocations()
	}
	return &Service{
		repo:        repo,
		hasher:      hasher,
		tokens:      tokens,
		revocations: revocations,
		notifier:    notifier,

		welcomeTimeout: welcomeTimeout,
	}
}

// LoginResult is what a successful login hands back to the client.
type LoginResult struct {
	User      models.Identity
	Token     string
	ExpiresAt time.Time
}

// Register creates an account. An existing email is reported before an existing username.
func (s *Service) Register(ctx context.Context, username, email, password string) (models.Identity, error) {
	const op = "auth.Register"

	username, email = strings.TrimSpace(username), strings.TrimSpace(email)
	if username == "" || email == "" || password == "" {
		return models.Identity{}, wrap(op, ErrMissingFields)
	}
	if len(password) > maxPasswordBytes {
		return models.Identity{}, wrap(op, ErrPasswordTooLong)
	}

	if err := s.ensureAbsent(ctx, s.repo.FindByEmail, email, ErrDuplicateEmail); err != nil {
		return models.Identity{}, wrap(op, err)
	}
	if err := s.ensureAbsent(ctx, s.repo.FindByUsername, username, ErrDuplicateUsername); err != nil {
		return models.Identity{}, wrap(op, err)
	}

	digest, err := s.hasher.Hash(password)
	if err != nil {
		return models.Identity{}, wrap(op, err)
	}
	acc := &models.Account{Username: username, Email: email, Password: digest}
	if err := s.repo.Create(ctx, acc); err != nil {
		return models.Identity{}, wrap(op, err)
	}
	return acc.Identity(), nil
}

func (s *Service) ensureAbsent(ctx context.Context, find func(context.Context, string) (*models.Account, error), key string, conflict error) error {
	_, err := find(ctx, key)
	switch {
	case err == nil:
		return conflict
	case errors.Is(err, ErrUserNotFound):
		return nil
	default:
		return err
	}
}

// Welcome hands the new identity to the notifier, logging any failure. The notifier gets
// at most welcomeTimeout, so a stalled queue cannot hold the caller.
func (s *Service) Welcome(ctx context.Context, id models.Identity) {
	if s.notifier == nil {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, s.welcomeTimeout)
	defer cancel()
	if err := s.notifier.Welcome(ctx, id); err != nil {
		zap.L().Warn("welcome notification not queued",
			zap.String("user", id.Username),
			zap.Error(err))
	}
}

// Login verifies the password and issues an access token.
func (s *Service) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	const op = "auth.Login"

	acc, err := s.repo.FindByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		return nil, wrap(op, err)
	}
	if !s.hasher.Verify(password, acc.Password) {
		return nil, wrap(op, ErrInvalidCredentials)
	}

	id := acc.Identity()
	token, claims, err := s.tokens.Issue(id)
	if err != nil {
		return nil, wrap(op, err)
	}
	return &LoginResult{User: id, Token: token, ExpiresAt: claims.ExpiresAt.Time}, nil
}

// UpdateProfile replaces the username of the account registered under email.
func (s *Service) UpdateProfile(ctx context.Context, email, username string) (models.Identity, error) {
	const op = "auth.UpdateProfile"

	username, email = strings.TrimSpace(username), strings.TrimSpace(email)
	if username == "" || email == "" {
		return models.Identity{}, wrap(op, ErrMissingProfile)
	}
	acc, err := s.repo.UpdateUsername(ctx, email, username)
	if err != nil {
		return models.Identity{}, wrap(op, err)
	}
	return acc.Identity(), nil
}

// Authenticate parses a bearer token and rejects revoked ones.
func (s *Service) Authenticate(ctx context.Context, raw string) (*Claims, error) {
	const op = "auth.Authenticate"

	claims, err := s.tokens.Parse(raw)
	if err != nil {
		return nil, wrap(op, err)
	}
	revoked, err := s.revocations.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, wrap(op, err)
	}
	if revoked {
		return nil, wrap(op, ErrInvalidToken)
	}
	return claims, nil
}

// Logout revokes the token until it would have expired.
func (s *Service) Logout(ctx context.Context, claims *Claims) error {
	if claims == nil || claims.ID == "" {
		return wrap("auth.Logout", ErrInvalidToken)
	}
	until := time.Now()
	if claims.ExpiresAt != nil {
		until = claims.ExpiresAt.Time
	}
	return wrap("auth.Logout", s.revocations.Revoke(ctx, claims.ID, until))
}
