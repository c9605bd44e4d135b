package services

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/tripbook/internal/models"
)

func TestVerifyConsumesCodeOnce(t *testing.T) {
	env := newTestEnv(t, false)
	env.verification.fixedCode = "123456"
	ctx := context.Background()

	code, err := env.verification.Issue(ctx, "13800138000", models.VerificationRegister)
	require.NoError(t, err)
	assert.Equal(t, "123456", code)
	assert.Equal(t, "123456", env.sms.last("13800138000"))

	require.NoError(t, env.verification.Verify(ctx, "13800138000", "123456", models.VerificationRegister))
	assert.ErrorIs(t, env.verification.Verify(ctx, "13800138000", "123456", models.VerificationRegister), ErrInvalidCode)
}

func TestVerifyRejectsMismatches(t *testing.T) {
	env := newTestEnv(t, false)
	ctx := context.Background()

	code, err := env.verification.Issue(ctx, "13800138000", models.VerificationLogin)
	require.NoError(t, err)

	assert.ErrorIs(t, env.verification.Verify(ctx, "13800138000", code, models.VerificationRegister), ErrInvalidCode)
	assert.ErrorIs(t, env.verification.Verify(ctx, "13900139000", code, models.VerificationLogin), ErrInvalidCode)

	wrong := "000000"
	if code == wrong {
		wrong = "111111"
	}
	assert.ErrorIs(t, env.verification.Verify(ctx, "13800138000", wrong, models.VerificationLogin), ErrInvalidCode)

	require.NoError(t, env.verification.Verify(ctx, "13800138000", code, models.VerificationLogin))
}

func TestVerifyRejectsExpiredCode(t *testing.T) {
	env := newTestEnv(t, false)
	ctx := context.Background()

	code, err := env.verification.Issue(ctx, "13800138000", models.VerificationLogin)
	require.NoError(t, err)

	env.clock.Advance(CodeTTL + time.Second)
	assert.ErrorIs(t, env.verification.Verify(ctx, "13800138000", code, models.VerificationLogin), ErrInvalidCode)
}

func TestOutstandingCodesCoexist(t *testing.T) {
	env := newTestEnv(t, false)
	ctx := context.Background()

	env.verification.fixedCode = "111111"
	_, err := env.verification.Issue(ctx, "13800138000", models.VerificationLogin)
	require.NoError(t, err)
	env.clock.Advance(time.Second)
	env.verification.fixedCode = "222222"
	_, err = env.verification.Issue(ctx, "13800138000", models.VerificationLogin)
	require.NoError(t, err)

	require.NoError(t, env.verification.Verify(ctx, "13800138000", "111111", models.VerificationLogin))
	require.NoError(t, env.verification.Verify(ctx, "13800138000", "222222", models.VerificationLogin))
}

func TestGeneratedCodesAreSixDigits(t *testing.T) {
	env := newTestEnv(t, false)

	for i := 0; i < 50; i++ {
		code, err := env.verification.generateCode()
		require.NoError(t, err)
		require.Len(t, code, 6)
		n, err := strconv.Atoi(code)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, n, 100000)
		assert.LessOrEqual(t, n, 999999)
	}
}

func TestRateGuard(t *testing.T) {
	env := newTestEnv(t, false)
	ctx := context.Background()
	phone := "13800138000"

	for i := 0; i < CodeRateLimit; i++ {
		limited, err := env.verification.RateLimited(ctx, phone)
		require.NoError(t, err)
		assert.False(t, limited, "issuance %d", i+1)
		require.NoError(t, env.verification.Send(ctx, phone, models.VerificationLogin))
		env.clock.Advance(5 * time.Second)
	}

	limited, err := env.verification.RateLimited(ctx, phone)
	require.NoError(t, err)
	assert.True(t, limited)
	assert.ErrorIs(t, env.verification.Send(ctx, phone, models.VerificationLogin), ErrTooManyRequests)

	other, err := env.verification.RateLimited(ctx, "13900139000")
	require.NoError(t, err)
	assert.False(t, other, "limit is per phone")

	env.clock.Advance(CodeRateWindow)
	limited, err = env.verification.RateLimited(ctx, phone)
	require.NoError(t, err)
	assert.False(t, limited)
	require.NoError(t, env.verification.Send(ctx, phone, models.VerificationLogin))
}

func TestUnknownCodeTypeRejected(t *testing.T) {
	env := newTestEnv(t, false)
	ctx := context.Background()

	_, err := env.verification.Issue(ctx, "13800138000", models.VerificationType("reset"))
	assert.ErrorIs(t, err, ErrUnknownCodeType)
	assert.ErrorIs(t, env.verification.Send(ctx, "13800138000", "reset"), ErrUnknownCodeType)
	assert.Empty(t, env.sms.last("13800138000"))
}
