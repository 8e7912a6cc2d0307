package auth

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/mauv0809/courtqueue/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newTestGate(t *testing.T) *Gate {
	t.Helper()
	g, err := NewGate(config.AuthConfig{
		Password:    "let-me-in",
		TokenSecret: "test-signing-key",
		TokenTTL:    time.Hour,
		LoginRate:   1,
		LoginBurst:  3,
	})
	require.NoError(t, err)
	return g
}

func TestNewGateRequiresSecrets(t *testing.T) {
	_, err := NewGate(config.AuthConfig{Password: "x"})
	assert.Error(t, err, "token secret is required")

	_, err = NewGate(config.AuthConfig{TokenSecret: "k"})
	assert.Error(t, err, "a password or hash is required")

	_, err = NewGate(config.AuthConfig{TokenSecret: "k", PasswordHash: "not-a-bcrypt-hash"})
	assert.Error(t, err)
}

func TestAuthenticate(t *testing.T) {
	g := newTestGate(t)
	assert.True(t, g.Authenticate("let-me-in"))
	assert.False(t, g.Authenticate("let-me-in "))
	assert.False(t, g.Authenticate(""))
}

func TestLongSecrets(t *testing.T) {
	secret := strings.Repeat("s", maxSecretLen)
	g, err := NewGate(config.AuthConfig{Password: secret, TokenSecret: "k"})
	require.NoError(t, err)
	assert.True(t, g.Authenticate(secret))
	assert.False(t, g.Authenticate(secret+"WRONG"), "bytes past the bcrypt limit must not be ignored")

	_, err = NewGate(config.AuthConfig{Password: secret + "x", TokenSecret: "k"})
	assert.ErrorContains(t, err, "at most 72")
}

func TestAuthenticateWithStoredHash(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("hunter2"), bcrypt.MinCost)
	require.NoError(t, err)

	g, err := NewGate(config.AuthConfig{PasswordHash: string(hash), TokenSecret: "k"})
	require.NoError(t, err)
	assert.True(t, g.Authenticate("hunter2"))
	assert.False(t, g.Authenticate("hunter3"))
}

func TestLoginAndVerify(t *testing.T) {
	g := newTestGate(t)
	now := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	g.now = func() time.Time { return now }

	token, expiresAt, err := g.Login("10.0.0.1", "let-me-in")
	require.NoError(t, err)
	assert.Equal(t, now.Add(time.Hour), expiresAt)

	c, err := g.Verify(token)
	require.NoError(t, err)
	assert.True(t, c.IsAdmin())
	assert.NotEmpty(t, c.SessionID)
	assert.True(t, expiresAt.Equal(c.ExpiresAt))

	t.Run("expired token", func(t *testing.T) {
		g.now = func() time.Time { return now.Add(2 * time.Hour) }
		defer func() { g.now = func() time.Time { return now } }()
		_, err := g.Verify(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("token signed with another key", func(t *testing.T) {
		other, err := NewGate(config.AuthConfig{Password: "let-me-in", TokenSecret: "other-key"})
		require.NoError(t, err)
		other.now = g.now
		_, err = other.Verify(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("viewer role is not a capability token", func(t *testing.T) {
		claims := &Claims{
			RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour))},
			Role:             string(RoleViewer),
		}
		signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(g.signingKey)
		require.NoError(t, err)
		_, err = g.Verify(signed)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := g.Verify("not.a.token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	g := newTestGate(t)
	token, _, err := g.Login("10.0.0.1", "guess")
	assert.ErrorIs(t, err, ErrInvalidCredential)
	assert.Empty(t, token)
}

func TestLoginThrottlesPerClient(t *testing.T) {
	g := newTestGate(t)

	for i := 0; i < 3; i++ {
		_, _, err := g.Login("10.0.0.1", "guess")
		require.ErrorIs(t, err, ErrInvalidCredential)
	}
	_, _, err := g.Login("10.0.0.1", "let-me-in")
	assert.ErrorIs(t, err, ErrThrottled, "even the right password is refused once the bucket is empty")

	_, _, err = g.Login("10.0.0.2", "let-me-in")
	assert.NoError(t, err, "other clients have their own bucket")
}

func TestLoginThrottleRefillsOverTime(t *testing.T) {
	g := newTestGate(t)
	now := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	g.now = func() time.Time { return now }

	for i := 0; i < 3; i++ {
		_, _, err := g.Login("10.0.0.1", "guess")
		require.ErrorIs(t, err, ErrInvalidCredential)
	}
	_, _, err := g.Login("10.0.0.1", "let-me-in")
	require.ErrorIs(t, err, ErrThrottled)

	now = now.Add(time.Minute)
	_, _, err = g.Login("10.0.0.1", "let-me-in")
	assert.NoError(t, err)
}

func TestCapabilityContext(t *testing.T) {
	ctx := context.Background()
	assert.False(t, FromContext(ctx).IsAdmin())
	assert.Equal(t, RoleViewer, FromContext(ctx).Role)

	assert.True(t, FromContext(Admin(ctx)).IsAdmin())

	ctx = WithCapability(ctx, Capability{Role: RoleAdmin, SessionID: "s1"})
	assert.Equal(t, "s1", FromContext(ctx).SessionID)
}
