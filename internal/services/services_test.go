package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/example/tripbook/internal/metrics"
	"github.com/example/tripbook/internal/repository"
	"github.com/example/tripbook/internal/testutil"
	"github.com/example/tripbook/internal/utils"
)

type recordingSMS struct {
	mu    sync.Mutex
	codes map[string][]string
}

func (r *recordingSMS) SendCode(_ context.Context, phone, code string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.codes == nil {
		r.codes = make(map[string][]string)
	}
	r.codes[phone] = append(r.codes[phone], code)
	return nil
}

func (r *recordingSMS) last(phone string) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	codes := r.codes[phone]
	if len(codes) == 0 {
		return ""
	}
	return codes[len(codes)-1]
}

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

type testEnv struct {
	clock        *fakeClock
	sms          *recordingSMS
	users        repository.UserRepository
	orders       repository.OrderRepository
	tokens       *TokenService
	verification *VerificationService
	userService  *UserService
	orderService *OrderService
	auth         *AuthService
}

func newTestEnv(t *testing.T, legacy bool) *testEnv {
	t.Helper()

	db := testutil.NewDB(t)
	log := zap.NewNop()
	m := metrics.New()
	clock := &fakeClock{t: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	hasher := utils.PasswordHasher{Cost: bcrypt.MinCost}
	sms := &recordingSMS{}

	env := &testEnv{
		clock:  clock,
		sms:    sms,
		users:  repository.NewUserRepository(db),
		orders: repository.NewOrderRepository(db),
		tokens: NewTokenService("test-secret", time.Hour),
	}

	env.verification = NewVerificationService(repository.NewVerificationRepository(db), sms, m, log, "")
	env.verification.now = clock.Now

	env.userService = NewUserService(env.users, hasher, env.tokens, log, legacy)
	env.userService.now = clock.Now

	env.orderService = NewOrderService(env.orders, m, log)
	env.orderService.now = clock.Now

	env.auth = NewAuthService(AuthDeps{
		Users:         env.users,
		Registrations: repository.NewRegistrationRepository(db),
		Tx:            repository.NewTransactor(db),
		Verification:  env.verification,
		UserService:   env.userService,
		Hasher:        hasher,
		Tokens:        env.tokens,
		Metrics:       m,
		Log:           log,
	})
	env.auth.now = clock.Now

	return env
}
