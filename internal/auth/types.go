package auth

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidCredential = errors.New("invalid admin password")
	ErrThrottled         = errors.New("too many login attempts")
	ErrInvalidToken      = errors.New("invalid or expired token")
)

// Role is the capability level granted by a token.
type Role string

const (
	RoleViewer Role = "viewer"
	RoleAdmin  Role = "admin"
)

// Capability is what a caller may do for the lifetime of its session.
type Capability struct {
	Role      Role
	SessionID string
	ExpiresAt time.Time
}

// IsAdmin reports whether the capability grants mutation rights.
func (c Capability) IsAdmin() bool { return c.Role == RoleAdmin }

// Claims are the signed contents of a capability token.
type Claims struct {
	jwt.RegisteredClaims
	Role string `json:"role"`
}

type contextKey string

const capabilityKey contextKey = "capability"

// WithCapability attaches c to ctx.
func WithCapability(ctx context.Context, c Capability) context.Context {
	return context.WithValue(ctx, capabilityKey, c)
}

// FromContext returns the capability attached to ctx, or a viewer capability.
func FromContext(ctx context.Context) Capability {
	if c, ok := ctx.Value(capabilityKey).(Capability); ok {
		return c
	}
	return Capability{Role: RoleViewer}
}

// Admin returns ctx carrying an admin capability. Meant for trusted local tools.
func Admin(ctx context.Context) context.Context {
	return WithCapability(ctx, Capability{Role: RoleAdmin})
}
