package credentials

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jonboulle/clockwork"
)

// ErrOpaqueToken is returned by Inspect when the token is not a JWT.
var ErrOpaqueToken = errors.New("token is opaque")

// Claims is what the client can learn from a bearer token without the
// server's key. It is informational only; identity always comes from the
// resolver.
type Claims struct {
	Subject   string
	IssuedAt  time.Time
	ExpiresAt time.Time
	Expired   bool
}

// Inspect decodes the registered claims of a JWT bearer token without
// verifying its signature.
func Inspect(token string, clock clockwork.Clock) (Claims, error) {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}

	registered := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, &registered); err != nil {
		return Claims{}, ErrOpaqueToken
	}

	claims := Claims{Subject: registered.Subject}
	if registered.IssuedAt != nil {
		claims.IssuedAt = registered.IssuedAt.Time
	}
	if registered.ExpiresAt != nil {
		claims.ExpiresAt = registered.ExpiresAt.Time
		claims.Expired = !clock.Now().Before(claims.ExpiresAt)
	}
	return claims, nil
}

// TimeLeft returns how long the token remains valid, or zero when it has
// expired or carries no expiry.
func (c Claims) TimeLeft(now time.Time) time.Duration {
	if c.ExpiresAt.IsZero() || !now.Before(c.ExpiresAt) {
		return 0
	}
	return c.ExpiresAt.Sub(now)
}
