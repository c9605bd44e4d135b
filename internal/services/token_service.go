package services

import (
	"time"

	"github.com/example/tripbook/internal/models"
	"github.com/example/tripbook/internal/utils"
)

// TokenService signs and checks bearer tokens.
type TokenService struct {
	secret string
	ttl    time.Duration
}

// NewTokenService creates a TokenService.
func NewTokenService(secret string, ttl time.Duration) *TokenService {
	return &TokenService{secret: secret, ttl: ttl}
}

// Issue signs a token for user.
func (s *TokenService) Issue(user *models.User) (string, error) {
	return utils.GenerateToken(s.secret, user.ID, user.Phone, s.ttl)
}

// Parse validates token and returns the identity it carries.
func (s *TokenService) Parse(token string) (utils.TokenIdentity, error) {
	return utils.ParseToken(s.secret, token)
}
