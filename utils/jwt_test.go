package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueAndResolveIdentity(t *testing.T) {
	issuer := NewTokenIssuer("secret", time.Hour)
	token, expiresAt, err := issuer.Issue(42)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, 5*time.Second)

	uid, err := ResolveIdentity("secret", "Bearer "+token)
	require.NoError(t, err)
	assert.EqualValues(t, 42, uid)

	claims, err := ResolveClaims("secret", "bearer "+token)
	require.NoError(t, err)
	assert.NotEmpty(t, claims.ID)
}

func TestResolveIdentityFailures(t *testing.T) {
	issuer := NewTokenIssuer("secret", time.Hour)
	good, _, err := issuer.Issue(7)
	require.NoError(t, err)

	expired := NewTokenIssuer("secret", time.Hour)
	expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	stale, _, err := expired.Issue(7)
	require.NoError(t, err)

	zero, _, err := issuer.Issue(0)
	require.NoError(t, err)

	cases := map[string]struct {
		header  string
		message string
	}{
		"missing header":   {"", "Not authorized, no token"},
		"wrong scheme":     {"Basic " + good, "Not authorized, no token"},
		"empty token":      {"Bearer ", "Not authorized, no token"},
		"garbage":          {"Bearer not-a-jwt", "Not authorized, token failed"},
		"wrong secret":     {"Bearer " + mustIssue(t, "other", 7), "Not authorized, token failed"},
		"expired":          {"Bearer " + stale, "Not authorized, token failed"},
		"missing identity": {"Bearer " + zero, "Not authorized, token failed"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ResolveIdentity("secret", tc.header)
			require.Error(t, err)
			appErr := AsAppError(err)
			assert.Equal(t, KindUnauthorized, appErr.Kind)
			assert.Equal(t, 401, appErr.Status)
			assert.Equal(t, tc.message, appErr.Message)
		})
	}
}

func mustIssue(t *testing.T, secret string, uid uint) string {
	t.Helper()
	token, _, err := NewTokenIssuer(secret, time.Hour).Issue(uid)
	require.NoError(t, err)
	return token
}

func TestNewTokenIssuerDefaultTTL(t *testing.T) {
	_, expiresAt, err := NewTokenIssuer("secret", 0).Issue(1)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(72*time.Hour), expiresAt, 5*time.Second)
}
