package services

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"go.uber.org/zap"

	"github.com/example/tripbook/internal/metrics"
	"github.com/example/tripbook/internal/models"
	"github.com/example/tripbook/internal/repository"
)

const (
	CodeTTL          = 5 * time.Minute
	CodeRateWindow   = 60 * time.Second
	CodeRateLimit    = 3
	codeMin, codeMax = 100000, 999999
)

// VerificationService issues and checks one-time SMS codes.
type VerificationService struct {
	repo      repository.VerificationRepository
	sms       SMSSender
	metrics   *metrics.Metrics
	log       *zap.Logger
	fixedCode string
	now       func() time.Time
}

// NewVerificationService builds a VerificationService. A non-empty
// fixedCode replaces random generation.
func NewVerificationService(repo repository.VerificationRepository, sms SMSSender, m *metrics.Metrics, log *zap.Logger, fixedCode string) *VerificationService {
	return &VerificationService{
		repo:      repo,
		sms:       sms,
		metrics:   m,
		log:       log.Named("verification"),
		fixedCode: fixedCode,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Issue stores a new code for phone and hands it to the SMS sender.
func (s *VerificationService) Issue(ctx context.Context, phone string, typ models.VerificationType) (string, error) {
	if !typ.Valid() {
		return "", ErrUnknownCodeType
	}
	code, err := s.generateCode()
	if err != nil {
		return "", fmt.Errorf("generate code: %w", err)
	}

	now := s.now()
	record := &models.VerificationCode{
		Phone:     phone,
		Code:      code,
		Type:      typ,
		ExpiresAt: now.Add(CodeTTL),
	}
	record.CreatedAt = now
	record.UpdatedAt = now

	if err := s.repo.Create(ctx, record); err != nil {
		return "", err
	}
	s.metrics.CodeIssued(string(typ))

	if err := s.sms.SendCode(ctx, phone, code); err != nil {
		s.log.Warn("sms dispatch failed", zap.String("phone", maskPhone(phone)), zap.Error(err))
	}
	return code, nil
}

// RateLimited reports whether phone already received CodeRateLimit codes
// inside the trailing CodeRateWindow.
func (s *VerificationService) RateLimited(ctx context.Context, phone string) (bool, error) {
	count, err := s.repo.CountSince(ctx, phone, s.now().Add(-CodeRateWindow))
	if err != nil {
		return false, err
	}
	return count >= CodeRateLimit, nil
}

// Send checks the rate guard and issues a code. The check and the insert
// are not atomic, so concurrent requests may slightly exceed the limit.
func (s *VerificationService) Send(ctx context.Context, phone string, typ models.VerificationType) error {
	if !typ.Valid() {
		return ErrUnknownCodeType
	}
	limited, err := s.RateLimited(ctx, phone)
	if err != nil {
		return err
	}
	if limited {
		return ErrTooManyRequests
	}
	_, err = s.Issue(ctx, phone, typ)
	return err
}

// Verify consumes the newest matching live code. Every failure cause
// yields ErrInvalidCode.
func (s *VerificationService) Verify(ctx context.Context, phone, code string, typ models.VerificationType) error {
	err := s.verify(ctx, phone, code, typ)
	s.metrics.CodeChecked(string(typ), err == nil)
	return err
}

func (s *VerificationService) verify(ctx context.Context, phone, code string, typ models.VerificationType) error {
	record, err := s.repo.FindActive(ctx, phone, code, typ, s.now())
	if errors.Is(err, repository.ErrNotFound) {
		return ErrInvalidCode
	}
	if err != nil {
		return fmt.Errorf("find verification code: %w", err)
	}

	ok, err := s.repo.MarkUsed(ctx, record.ID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrInvalidCode
	}
	return nil
}

func (s *VerificationService) generateCode() (string, error) {
	if s.fixedCode != "" {
		return s.fixedCode, nil
	}
	n, err := rand.Int(rand.Reader, big.NewInt(codeMax-codeMin+1))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()+codeMin), nil
}
