// Package token mints and validates the short-lived verification tokens
// issued after API-token validation, and the anti-replay state nonces
// embedded in generated bot links.
//
// A verification token has the form verif_<unix-ms>_<nonce><mac>. The mac
// is a truncated HMAC-SHA256 over "<unix-ms>_<nonce>", so a token is
// accepted only if it was minted by an issuer holding the same key; the
// prefix alone proves nothing. Tokens are never stored server-side;
// validation is pure recomputation.
package token

import (
	"crypto/hmac"
	"crypto/sha256"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/awnumar/memguard"

	"github.com/BasilOkoth/digitest/internal/util"
)

var (
	// ErrMissingToken indicates a required token field was absent.
	ErrMissingToken = errors.New("verification token is required")
	// ErrInvalidToken indicates a token that fails format, signature or
	// expiry checks.
	ErrInvalidToken = errors.New("invalid verification token")
)

const (
	// Prefix is the literal prefix carried by every verification token.
	Prefix      = "verif_"
	statePrefix = "state_"

	nonceLength = 9
	macLength   = 8 // truncated HMAC bytes; hex-encoded to 16 chars

	keyDerivationInfo = "digitest:verification_token:v1"
)

// Issuer mints and validates verification tokens. Safe for concurrent use:
// the key is immutable after construction and the state counter is atomic.
type Issuer struct {
	key     *memguard.LockedBuffer
	ttl     time.Duration
	now     func() time.Time
	counter atomic.Uint64
}

// NewIssuer derives the signing key from the shared secret. An empty secret
// yields a random ephemeral key, which invalidates outstanding tokens on
// restart; multi-instance deployments must configure a shared secret.
// A ttl of 0 disables expiry.
func NewIssuer(secret string, ttl time.Duration) (*Issuer, error) {
	var seed []byte
	if secret == "" {
		b, err := util.RandomBytes(32)
		if err != nil {
			return nil, fmt.Errorf("generating ephemeral signing seed: %w", err)
		}
		seed = b
	} else {
		seed = []byte(util.Normalize(secret))
	}
	key, err := util.HKDF(seed, nil, []byte(keyDerivationInfo))
	if err != nil {
		return nil, fmt.Errorf("deriving token signing key: %w", err)
	}
	return &Issuer{
		key: memguard.NewBufferFromBytes(key),
		ttl: ttl,
		now: time.Now,
	}, nil
}

// Destroy wipes the signing key. The issuer is unusable afterwards.
func (i *Issuer) Destroy() {
	i.key.Destroy()
}

// Mint returns a fresh verification token.
func (i *Issuer) Mint() (string, error) {
	ts := i.now().UnixMilli()
	nonce, err := util.RandomBase36(nonceLength)
	if err != nil {
		return "", fmt.Errorf("generating token nonce: %w", err)
	}
	return Prefix + strconv.FormatInt(ts, 10) + "_" + nonce + i.mac(ts, nonce), nil
}

// Validate checks a verification token by recomputing its MAC and enforcing
// the issuer TTL. Returns ErrMissingToken for an empty token and
// ErrInvalidToken for anything that fails verification.
func (i *Issuer) Validate(tok string) error {
	if tok == "" {
		return ErrMissingToken
	}
	rest, ok := strings.CutPrefix(tok, Prefix)
	if !ok {
		return ErrInvalidToken
	}
	tsPart, suffix, ok := strings.Cut(rest, "_")
	if !ok || len(suffix) != nonceLength+2*macLength {
		return ErrInvalidToken
	}
	ts, err := strconv.ParseInt(tsPart, 10, 64)
	if err != nil {
		return ErrInvalidToken
	}
	nonce, mac := suffix[:nonceLength], suffix[nonceLength:]
	if !hmac.Equal([]byte(mac), []byte(i.mac(ts, nonce))) {
		return ErrInvalidToken
	}
	if i.ttl > 0 {
		issued := time.UnixMilli(ts)
		if i.now().Sub(issued) > i.ttl {
			return fmt.Errorf("%w: expired", ErrInvalidToken)
		}
	}
	return nil
}

// State returns a fresh anti-replay nonce of the form
// state_<unix-ms>_<random><counter>. The process-wide counter guarantees
// two calls never produce the same value, even with identical timestamps
// and colliding random suffixes.
func (i *Issuer) State() (string, error) {
	ts := i.now().UnixMilli()
	rnd, err := util.RandomBase36(nonceLength)
	if err != nil {
		return "", fmt.Errorf("generating state nonce: %w", err)
	}
	seq := strconv.FormatUint(i.counter.Add(1), 36)
	return statePrefix + strconv.FormatInt(ts, 10) + "_" + rnd + seq, nil
}

func (i *Issuer) mac(ts int64, nonce string) string {
	h := hmac.New(sha256.New, i.key.Bytes())
	fmt.Fprintf(h, "%d_%s", ts, nonce)
	return util.HexEncode(h.Sum(nil)[:macLength])
}
