package security

import (
	"crypto/ed25519"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSeed = "000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f"

func newTestSigner(t *testing.T) *Signer {
	t.Helper()
	key, generated, err := KeyFromSeedHex(testSeed)
	require.NoError(t, err)
	require.False(t, generated)
	s, err := NewSigner(key, "core", "administration", time.Minute)
	require.NoError(t, err)
	s.now = func() time.Time { return time.Date(2026, 7, 1, 12, 0, 0, 0, time.UTC) }
	return s
}

func TestSigner_RequestHeaderVerifies(t *testing.T) {
	s := newTestSigner(t)

	token, err := s.SignRequest()
	require.NoError(t, err)

	claims, err := Verify(token, s.PublicKey(), time.Date(2026, 7, 1, 12, 0, 30, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, "core", claims.PlatformID)
	assert.Equal(t, "administration", claims.ComponentID)
	assert.Equal(t, "request", claims.Kind)
	assert.NotEmpty(t, claims.JWTID)
	assert.Equal(t, time.Date(2026, 7, 1, 12, 1, 0, 0, time.UTC), claims.ExpiresAt)
}

func TestSigner_FreshTokenPerCall(t *testing.T) {
	s := newTestSigner(t)

	a, err := s.SignRequest()
	require.NoError(t, err)
	b, err := s.SignRequest()
	require.NoError(t, err)
	assert.NotEqual(t, a, b)

	resp, err := s.SignResponse()
	require.NoError(t, err)
	claims, err := Verify(resp, s.PublicKey(), time.Date(2026, 7, 1, 12, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, "response", claims.Kind)
}

func TestVerify_Rejects(t *testing.T) {
	s := newTestSigner(t)
	token, err := s.SignRequest()
	require.NoError(t, err)

	_, err = Verify(token, s.PublicKey(), time.Date(2026, 7, 1, 12, 5, 0, 0, time.UTC))
	assert.Error(t, err, "expired")

	other, _, err := KeyFromSeedHex("")
	require.NoError(t, err)
	_, err = Verify(token, other.Public().(ed25519.PublicKey), time.Date(2026, 7, 1, 12, 0, 0, 0, time.UTC))
	assert.Error(t, err, "wrong key")

	tampered := token[:strings.LastIndex(token, ".")] + ".AAAA"
	_, err = Verify(tampered, s.PublicKey(), time.Date(2026, 7, 1, 12, 0, 0, 0, time.UTC))
	assert.Error(t, err)

	_, err = Verify("", s.PublicKey(), time.Now())
	assert.Error(t, err)
}

func TestKeyFromSeedHex(t *testing.T) {
	_, generated, err := KeyFromSeedHex("")
	require.NoError(t, err)
	assert.True(t, generated)

	_, _, err = KeyFromSeedHex("abcd")
	assert.Error(t, err)

	_, _, err = KeyFromSeedHex("zz")
	assert.Error(t, err)
}

func TestNewSignerValidates(t *testing.T) {
	_, err := NewSigner(nil, "core", "administration", time.Minute)
	assert.Error(t, err)

	key, _, err := KeyFromSeedHex(testSeed)
	require.NoError(t, err)
	_, err = NewSigner(key, "", "administration", time.Minute)
	assert.Error(t, err)
}
