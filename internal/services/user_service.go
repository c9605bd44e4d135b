package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/example/tripbook/internal/models"
	"github.com/example/tripbook/internal/repository"
)

// PasswordHasher hashes and compares passwords.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hashedPassword, password string) bool
}

// Credentials is what a request presents to prove who it is.
type Credentials struct {
	BearerToken string
	HeaderPhone string
	QueryPhone  string
}

// UserService owns account creation and caller identity resolution.
type UserService struct {
	repo   repository.UserRepository
	hasher PasswordHasher
	tokens *TokenService
	log    *zap.Logger
	legacy bool
	now    func() time.Time
}

// NewUserService builds a UserService. legacyFallback enables the
// header/query/first-user identity chain.
func NewUserService(repo repository.UserRepository, hasher PasswordHasher, tokens *TokenService, log *zap.Logger, legacyFallback bool) *UserService {
	return &UserService{
		repo:   repo,
		hasher: hasher,
		tokens: tokens,
		log:    log.Named("users"),
		legacy: legacyFallback,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Create registers a new account. An empty username is generated from
// the phone and the current time.
func (s *UserService) Create(ctx context.Context, phone, username, password string) (*models.User, error) {
	if _, err := s.repo.FindByPhone(ctx, phone); err == nil {
		return nil, ErrPhoneRegistered
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("lookup phone: %w", err)
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := s.now()
	if username == "" {
		username = generateUsername(phone, now)
	} else if _, err := s.repo.FindByUsername(ctx, username); err == nil {
		return nil, ErrUsernameTaken
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("lookup username: %w", err)
	}

	user := &models.User{
		Username:     &username,
		Phone:        phone,
		PasswordHash: hash,
	}
	user.CreatedAt = now
	user.UpdatedAt = now

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}
	s.log.Info("user created",
		zap.String("user_id", user.ID.String()),
		zap.String("username", user.DisplayUsername()),
	)
	return user, nil
}

// Get loads a user by id.
func (s *UserService) Get(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	return user, nil
}

// ResolveCurrentUser identifies the caller. By default only a valid
// bearer token naming an existing user is accepted. In legacy mode the
// chain is header phone, query phone, token, then the earliest user.
func (s *UserService) ResolveCurrentUser(ctx context.Context, creds Credentials) (*models.User, error) {
	if !s.legacy {
		return s.fromToken(ctx, creds.BearerToken)
	}

	for _, phone := range []string{creds.HeaderPhone, creds.QueryPhone} {
		if phone == "" {
			continue
		}
		user, err := s.repo.FindByPhone(ctx, phone)
		if err == nil {
			return user, nil
		}
		if !errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("lookup phone: %w", err)
		}
	}

	if creds.BearerToken != "" {
		user, err := s.fromToken(ctx, creds.BearerToken)
		if err == nil {
			return user, nil
		}
		if !errors.Is(err, ErrUserNotFound) {
			return nil, err
		}
	}

	user, err := s.repo.FindFirst(ctx)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("lookup first user: %w", err)
	}
	s.log.Warn("legacy identity fell back to the first user", zap.String("user_id", user.ID.String()))
	return user, nil
}

func (s *UserService) fromToken(ctx context.Context, token string) (*models.User, error) {
	if token == "" {
		return nil, ErrUserNotFound
	}
	identity, err := s.tokens.Parse(token)
	if err != nil {
		return nil, ErrUserNotFound
	}

	user, err := s.repo.FindByID(ctx, identity.UserID)
	if errors.Is(err, repository.ErrNotFound) && identity.Phone != "" && s.legacy {
		user, err = s.repo.FindByPhone(ctx, identity.Phone)
	}
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("lookup token user: %w", err)
	}
	return user, nil
}

func generateUsername(phone string, now time.Time) string {
	millis := fmt.Sprintf("%d", now.UnixMilli())
	return fmt.Sprintf("user_%s_%s", lastN(phone, 4), lastN(millis, 4))
}

func lastN(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}
