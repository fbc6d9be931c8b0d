package token_test

import (
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BasilOkoth/digitest/token"
)

var tokenFormat = regexp.MustCompile(`^verif_\d+_[a-z0-9]+$`)
var stateFormat = regexp.MustCompile(`^state_\d+_[a-z0-9]+$`)

func newIssuer(t *testing.T) *token.Issuer {
	t.Helper()
	iss, err := token.NewIssuer("test-signing-secret", 15*time.Minute)
	require.NoError(t, err)
	t.Cleanup(iss.Destroy)
	return iss
}

func TestMintFormat(t *testing.T) {
	iss := newIssuer(t)
	tok, err := iss.Mint()
	require.NoError(t, err)
	assert.Regexp(t, tokenFormat, tok)
}

func TestMintValidateRoundtrip(t *testing.T) {
	iss := newIssuer(t)
	tok, err := iss.Mint()
	require.NoError(t, err)
	require.NoError(t, iss.Validate(tok))
}

func TestValidateMissing(t *testing.T) {
	iss := newIssuer(t)
	assert.ErrorIs(t, iss.Validate(""), token.ErrMissingToken)
}

func TestValidateWrongPrefix(t *testing.T) {
	iss := newIssuer(t)
	for _, tok := range []string{"bogus", "state_123_abc", "VERIF_123_abc", "verif"} {
		assert.ErrorIs(t, iss.Validate(tok), token.ErrInvalidToken, tok)
	}
}

func TestValidateTamperedToken(t *testing.T) {
	iss := newIssuer(t)
	tok, err := iss.Mint()
	require.NoError(t, err)

	// Flip the last character of the MAC.
	last := tok[len(tok)-1]
	replacement := byte('a')
	if last == 'a' {
		replacement = 'b'
	}
	tampered := tok[:len(tok)-1] + string(replacement)
	assert.ErrorIs(t, iss.Validate(tampered), token.ErrInvalidToken)
}

func TestValidateForeignIssuer(t *testing.T) {
	iss := newIssuer(t)
	other, err := token.NewIssuer("different-secret", 15*time.Minute)
	require.NoError(t, err)
	defer other.Destroy()

	tok, err := other.Mint()
	require.NoError(t, err)
	assert.ErrorIs(t, iss.Validate(tok), token.ErrInvalidToken)
}

func TestEphemeralIssuersUseDistinctKeys(t *testing.T) {
	a, err := token.NewIssuer("", 0)
	require.NoError(t, err)
	defer a.Destroy()
	b, err := token.NewIssuer("", 0)
	require.NoError(t, err)
	defer b.Destroy()

	tok, err := a.Mint()
	require.NoError(t, err)
	require.NoError(t, a.Validate(tok))
	assert.ErrorIs(t, b.Validate(tok), token.ErrInvalidToken)
}

func TestValidateExpired(t *testing.T) {
	iss := newIssuer(t)
	base := time.Now()
	iss.SetClock(func() time.Time { return base })

	tok, err := iss.Mint()
	require.NoError(t, err)
	require.NoError(t, iss.Validate(tok))

	iss.SetClock(func() time.Time { return base.Add(16 * time.Minute) })
	assert.ErrorIs(t, iss.Validate(tok), token.ErrInvalidToken)
}

func TestZeroTTLDisablesExpiry(t *testing.T) {
	iss, err := token.NewIssuer("test-signing-secret", 0)
	require.NoError(t, err)
	defer iss.Destroy()

	base := time.Now()
	iss.SetClock(func() time.Time { return base })
	tok, err := iss.Mint()
	require.NoError(t, err)

	iss.SetClock(func() time.Time { return base.Add(24 * time.Hour) })
	assert.NoError(t, iss.Validate(tok))
}

func TestStateFormatAndUniqueness(t *testing.T) {
	iss := newIssuer(t)

	// Freeze the clock so uniqueness cannot come from the timestamp.
	base := time.Now()
	iss.SetClock(func() time.Time { return base })

	seen := make(map[string]struct{})
	for range 100 {
		s, err := iss.State()
		require.NoError(t, err)
		assert.Regexp(t, stateFormat, s)
		_, dup := seen[s]
		require.False(t, dup, "duplicate state %s", s)
		seen[s] = struct{}{}
	}
}

func TestStateIsNotAVerificationToken(t *testing.T) {
	iss := newIssuer(t)
	s, err := iss.State()
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(s, "state_"))
	assert.ErrorIs(t, iss.Validate(s), token.ErrInvalidToken)
}
