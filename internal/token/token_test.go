package token

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueVerifyRoundtrip(t *testing.T) {
	issuer := NewIssuer("test-secret", time.Hour)

	raw, err := issuer.Issue(42)
	require.NoError(t, err)
	require.NotEmpty(t, raw)

	userID, err := issuer.Verify(raw)
	require.NoError(t, err)
	assert.Equal(t, 42, userID)
}

func TestVerifyMissing(t *testing.T) {
	issuer := NewIssuer("test-secret", time.Hour)

	for _, raw := range []string{"", "   "} {
		_, err := issuer.Verify(raw)
		assert.ErrorIs(t, err, ErrTokenMissing)
	}
}

func TestVerifyExpired(t *testing.T) {
	issuer := NewIssuer("test-secret", time.Hour)

	issued := time.Now()
	issuer.now = func() time.Time { return issued }
	raw, err := issuer.Issue(7)
	require.NoError(t, err)

	// Exactly at expiry: now >= expiry counts as expired.
	issuer.now = func() time.Time { return issued.Add(time.Hour) }
	_, err = issuer.Verify(raw)
	assert.ErrorIs(t, err, ErrTokenExpired)

	issuer.now = func() time.Time { return issued.Add(2 * time.Hour) }
	_, err = issuer.Verify(raw)
	assert.ErrorIs(t, err, ErrTokenExpired)

	// Just before expiry the token is still good.
	issuer.now = func() time.Time { return issued.Add(time.Hour - time.Second) }
	userID, err := issuer.Verify(raw)
	require.NoError(t, err)
	assert.Equal(t, 7, userID)
}

func TestVerifyTampered(t *testing.T) {
	issuer := NewIssuer("test-secret", time.Hour)

	raw, err := issuer.Issue(7)
	require.NoError(t, err)

	parts := strings.Split(raw, ".")
	require.Len(t, parts, 3)
	parts[1] = "eyJzdWIiOiI5OTkifQ"
	_, err = issuer.Verify(strings.Join(parts, "."))
	assert.ErrorIs(t, err, ErrTokenInvalid)

	_, err = issuer.Verify("not-a-token")
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestVerifyWrongSecret(t *testing.T) {
	raw, err := NewIssuer("secret-a", time.Hour).Issue(7)
	require.NoError(t, err)

	_, err = NewIssuer("secret-b", time.Hour).Verify(raw)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}
