package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/mauv0809/courtqueue/internal/config"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/time/rate"
)

// maxSecretLen is the longest secret bcrypt can tell apart. Longer inputs are
// silently truncated by the hash, so they are refused instead.
const maxSecretLen = 72

// Gate checks the shared admin secret and issues capability tokens.
type Gate struct {
	secretHash []byte
	signingKey []byte
	ttl        time.Duration
	limiter    *attemptLimiter
	now        func() time.Time
}

// NewGate builds a Gate from configuration. A plaintext password is hashed
// once here so that every comparison goes through bcrypt.
func NewGate(cfg config.AuthConfig) (*Gate, error) {
	if cfg.TokenSecret == "" {
		return nil, errors.New("token secret is required")
	}

	hash := []byte(cfg.PasswordHash)
	if len(hash) == 0 {
		if cfg.Password == "" {
			return nil, errors.New("admin password or password hash is required")
		}
		if len(cfg.Password) > maxSecretLen {
			return nil, fmt.Errorf("admin password is %d bytes, at most %d are supported", len(cfg.Password), maxSecretLen)
		}
		var err error
		hash, err = bcrypt.GenerateFromPassword([]byte(cfg.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("failed to hash admin password: %w", err)
		}
	} else if _, err := bcrypt.Cost(hash); err != nil {
		return nil, fmt.Errorf("invalid admin password hash: %w", err)
	}

	ttl := cfg.TokenTTL
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	perMinute := cfg.LoginRate
	if perMinute <= 0 {
		perMinute = 5
	}
	burst := cfg.LoginBurst
	if burst <= 0 {
		burst = perMinute
	}

	return &Gate{
		secretHash: hash,
		signingKey: []byte(cfg.TokenSecret),
		ttl:        ttl,
		limiter:    newAttemptLimiter(rate.Every(time.Minute/time.Duration(perMinute)), burst, maxIdleAge),
		now:        time.Now,
	}, nil
}

// Authenticate reports whether candidate equals the configured secret.
// Candidates longer than maxSecretLen never match.
func (g *Gate) Authenticate(candidate string) bool {
	if len(candidate) > maxSecretLen {
		return false
	}
	return bcrypt.CompareHashAndPassword(g.secretHash, []byte(candidate)) == nil
}

// Login throttles attempts per clientKey, checks candidate and, on success,
// returns a signed admin token and its expiry.
func (g *Gate) Login(clientKey, candidate string) (string, time.Time, error) {
	if !g.limiter.take(clientKey, g.now()) {
		log.Warn("Login throttled", "client", clientKey)
		return "", time.Time{}, ErrThrottled
	}
	if !g.Authenticate(candidate) {
		log.Warn("Rejected admin login", "client", clientKey)
		return "", time.Time{}, ErrInvalidCredential
	}

	now := g.now()
	expiresAt := now.Add(g.ttl)
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   string(RoleAdmin),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		Role: string(RoleAdmin),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(g.signingKey)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}

	log.Info("Admin session started", "session", claims.ID, "expires_at", expiresAt)
	return signed, expiresAt, nil
}

// Verify parses a token issued by Login and returns the capability it grants.
func (g *Gate) Verify(token string) (Capability, error) {
	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return g.signingKey, nil
	}, jwt.WithTimeFunc(g.now))
	if err != nil {
		return Capability{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid || Role(claims.Role) != RoleAdmin {
		return Capability{}, ErrInvalidToken
	}
	c := Capability{Role: RoleAdmin, SessionID: claims.ID}
	if claims.ExpiresAt != nil {
		c.ExpiresAt = claims.ExpiresAt.Time
	}
	return c, nil
}
