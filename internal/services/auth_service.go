package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/example/tripbook/internal/metrics"
	"github.com/example/tripbook/internal/models"
	"github.com/example/tripbook/internal/repository"
)

// RegistrationTicketTTL bounds the gap between the two registration steps.
const RegistrationTicketTTL = 10 * time.Minute

// Session is a signed-in user with their bearer token.
type Session struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

// AuthService implements login and phone registration.
type AuthService struct {
	users         repository.UserRepository
	registrations repository.RegistrationRepository
	tx            repository.Transactor
	verification  *VerificationService
	userService   *UserService
	hasher        PasswordHasher
	tokens        *TokenService
	metrics       *metrics.Metrics
	log           *zap.Logger
	now           func() time.Time
}

// AuthDeps groups the collaborators of AuthService.
type AuthDeps struct {
	Users         repository.UserRepository
	Registrations repository.RegistrationRepository
	Tx            repository.Transactor
	Verification  *VerificationService
	UserService   *UserService
	Hasher        PasswordHasher
	Tokens        *TokenService
	Metrics       *metrics.Metrics
	Log           *zap.Logger
}

// NewAuthService builds an AuthService.
func NewAuthService(deps AuthDeps) *AuthService {
	return &AuthService{
		users:         deps.Users,
		registrations: deps.Registrations,
		tx:            deps.Tx,
		verification:  deps.Verification,
		userService:   deps.UserService,
		hasher:        deps.Hasher,
		tokens:        deps.Tokens,
		metrics:       deps.Metrics,
		log:           deps.Log.Named("auth"),
		now:           func() time.Time { return time.Now().UTC() },
	}
}

// PasswordLogin signs in by username, falling back to phone.
func (s *AuthService) PasswordLogin(ctx context.Context, identifier, password string) (*Session, error) {
	session, err := s.passwordLogin(ctx, identifier, password)
	s.metrics.Login("password", err == nil)
	return session, err
}

func (s *AuthService) passwordLogin(ctx context.Context, identifier, password string) (*Session, error) {
	user, err := s.users.FindByUsername(ctx, identifier)
	if errors.Is(err, repository.ErrNotFound) {
		user, err = s.users.FindByPhone(ctx, identifier)
	}
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	if !s.hasher.Compare(user.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}
	return s.session(user)
}

// CodeLogin signs in with a login verification code.
func (s *AuthService) CodeLogin(ctx context.Context, phone, code string) (*Session, error) {
	session, err := s.codeLogin(ctx, phone, code)
	s.metrics.Login("code", err == nil)
	return session, err
}

func (s *AuthService) codeLogin(ctx context.Context, phone, code string) (*Session, error) {
	if err := s.verification.Verify(ctx, phone, code, models.VerificationLogin); err != nil {
		return nil, err
	}

	user, err := s.users.FindByPhone(ctx, phone)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrPhoneNotRegistered
	}
	if err != nil {
		return nil, fmt.Errorf("lookup phone: %w", err)
	}
	return s.session(user)
}

// RegisterStep1 checks a register code and returns a single-use ticket
// for RegisterStep2.
func (s *AuthService) RegisterStep1(ctx context.Context, phone, code string) (string, error) {
	if err := s.verification.Verify(ctx, phone, code, models.VerificationRegister); err != nil {
		return "", err
	}

	if _, err := s.users.FindByPhone(ctx, phone); err == nil {
		return "", ErrPhoneRegistered
	} else if !errors.Is(err, repository.ErrNotFound) {
		return "", fmt.Errorf("lookup phone: %w", err)
	}

	token, err := randomHex(16)
	if err != nil {
		return "", fmt.Errorf("generate ticket: %w", err)
	}

	now := s.now()
	ticket := &models.RegistrationTicket{
		Phone:     phone,
		Token:     token,
		ExpiresAt: now.Add(RegistrationTicketTTL),
	}
	ticket.CreatedAt = now
	ticket.UpdatedAt = now

	if err := s.registrations.Create(ctx, ticket); err != nil {
		return "", err
	}
	return token, nil
}

// RegisterStep2 consumes the ticket and creates the account in one
// transaction. A failed creation leaves the ticket usable.
func (s *AuthService) RegisterStep2(ctx context.Context, phone, ticket, password, username string) (*Session, error) {
	var user *models.User
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		ok, err := s.registrations.Consume(ctx, phone, ticket, s.now())
		if err != nil {
			return err
		}
		if !ok {
			return ErrInvalidTicket
		}

		user, err = s.userService.Create(ctx, phone, username, password)
		return err
	})
	if err != nil {
		return nil, err
	}
	return s.session(user)
}

// ChangePassword replaces the password after checking the current one.
func (s *AuthService) ChangePassword(ctx context.Context, userID uuid.UUID, oldPassword, newPassword string) error {
	user, err := s.users.FindByID(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrUserNotFound
	}
	if err != nil {
		return fmt.Errorf("lookup user: %w", err)
	}

	if !s.hasher.Compare(user.PasswordHash, oldPassword) {
		return ErrInvalidCredentials
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.users.UpdatePasswordHash(ctx, userID, hash, s.now()); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	s.log.Info("password changed", zap.String("user_id", userID.String()))
	return nil
}

func (s *AuthService) session(user *models.User) (*Session, error) {
	token, err := s.tokens.Issue(user)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}
	return &Session{Token: token, User: user}, nil
}

func randomHex(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
