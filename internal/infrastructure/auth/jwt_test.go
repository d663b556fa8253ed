package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/applytrack/applytrack/internal/domain/quota"
	"github.com/applytrack/applytrack/internal/shared/biztime"
	"github.com/applytrack/applytrack/internal/shared/config"
)

func newTestService(t *testing.T, now time.Time) *JWTService {
	t.Helper()
	s := NewJWTService(&config.AuthConfig{
		JWTSecret: "test-secret",
		Issuer:    "applytrack-auth",
		Audience:  "applytrack",
	})
	s.clock = biztime.Fixed(now)
	return s
}

func TestJWTService_SignAndVerify(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	s := newTestService(t, now)

	tests := []struct {
		plan string
		want quota.Tier
	}{
		{"pro", quota.TierPro},
		{"AI Coach", quota.TierAICoach},
		{"", quota.TierFree},
		{"enterprise-gold", quota.TierFree},
	}

	for _, tt := range tests {
		t.Run(tt.plan, func(t *testing.T) {
			token, err := s.Sign("user-1", "jane@example.com", tt.plan, time.Hour)
			require.NoError(t, err)

			p, err := s.Verify(token)
			require.NoError(t, err)
			assert.Equal(t, "user-1", p.Identity.UserID)
			assert.Equal(t, "jane@example.com", p.Identity.Email)
			assert.Equal(t, tt.want, p.Tier)
			assert.Equal(t, tt.plan, p.RawPlan)
		})
	}
}

func TestJWTService_Rejects(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	s := newTestService(t, now)

	t.Run("expired", func(t *testing.T) {
		token, err := s.Sign("user-1", "", "pro", time.Minute)
		require.NoError(t, err)

		later := newTestService(t, now.Add(2*time.Minute))
		_, err = later.Verify(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("wrong secret", func(t *testing.T) {
		other := NewJWTService(&config.AuthConfig{JWTSecret: "other", Issuer: "applytrack-auth", Audience: "applytrack"})
		other.clock = biztime.Fixed(now)
		token, err := other.Sign("user-1", "", "pro", time.Hour)
		require.NoError(t, err)

		_, err = s.Verify(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("wrong issuer", func(t *testing.T) {
		other := NewJWTService(&config.AuthConfig{JWTSecret: "test-secret", Issuer: "someone-else", Audience: "applytrack"})
		other.clock = biztime.Fixed(now)
		token, err := other.Sign("user-1", "", "pro", time.Hour)
		require.NoError(t, err)

		_, err = s.Verify(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("none algorithm", func(t *testing.T) {
		token, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
			"sub": "user-1",
			"exp": now.Add(time.Hour).Unix(),
			"iss": "applytrack-auth",
			"aud": "applytrack",
		}).SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)

		_, err = s.Verify(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("missing subject", func(t *testing.T) {
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
			"exp": now.Add(time.Hour).Unix(),
			"iss": "applytrack-auth",
			"aud": "applytrack",
		}).SignedString([]byte("test-secret"))
		require.NoError(t, err)

		_, err = s.Verify(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := s.Verify("not-a-token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}
