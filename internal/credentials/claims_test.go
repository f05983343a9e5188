package credentials

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signedToken(t *testing.T, subject string, issued, expires time.Time) string {
	t.Helper()
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(issued),
		ExpiresAt: jwt.NewNumericDate(expires),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("some-secret"))
	require.NoError(t, err)
	return token
}

func TestInspect(t *testing.T) {
	issued := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	token := signedToken(t, "user-1", issued, issued.Add(24*time.Hour))

	clock := clockwork.NewFakeClockAt(issued.Add(time.Hour))
	claims, err := Inspect(token, clock)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.Subject)
	assert.True(t, claims.IssuedAt.Equal(issued))
	assert.False(t, claims.Expired)
	assert.Equal(t, 23*time.Hour, claims.TimeLeft(clock.Now()))

	clock.Advance(23 * time.Hour)
	claims, err = Inspect(token, clock)
	require.NoError(t, err)
	assert.True(t, claims.Expired)
	assert.Zero(t, claims.TimeLeft(clock.Now()))
}

func TestInspect_OpaqueToken(t *testing.T) {
	_, err := Inspect("not-a-jwt", clockwork.NewFakeClock())
	assert.ErrorIs(t, err, ErrOpaqueToken)
}
