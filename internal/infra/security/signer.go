package security

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	HeaderSecurityRequest  = "X-Security-Request"
	HeaderSecurityResponse = "X-Security-Response"

	kindRequest  = "request"
	kindResponse = "response"
)

// serviceClaims identify this administration service towards other platform components.
type serviceClaims struct {
	jwt.RegisteredClaims
	Kind string `json:"kind"`
}

type ServiceClaims struct {
	PlatformID  string
	ComponentID string
	Kind        string
	IssuedAt    time.Time
	ExpiresAt   time.Time
	JWTID       string
}

// Signer issues the signed security headers. A fresh token is minted per call.
type Signer struct {
	key         ed25519.PrivateKey
	platformID  string
	componentID string
	ttl         time.Duration
	now         func() time.Time
}

func NewSigner(key ed25519.PrivateKey, platformID, componentID string, ttl time.Duration) (*Signer, error) {
	if len(key) != ed25519.PrivateKeySize {
		return nil, fmt.Errorf("signing key must be %d bytes", ed25519.PrivateKeySize)
	}
	if strings.TrimSpace(platformID) == "" || strings.TrimSpace(componentID) == "" {
		return nil, errors.New("platform id and component id are required")
	}
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &Signer{
		key:         key,
		platformID:  platformID,
		componentID: componentID,
		ttl:         ttl,
		now:         time.Now,
	}, nil
}

// KeyFromSeedHex derives the signing key from a hex seed. An empty seed yields a random key
// and generated=true.
func KeyFromSeedHex(seedHex string) (key ed25519.PrivateKey, generated bool, err error) {
	seedHex = strings.TrimSpace(seedHex)
	if seedHex == "" {
		_, priv, err := ed25519.GenerateKey(rand.Reader)
		if err != nil {
			return nil, false, fmt.Errorf("generate signing key: %w", err)
		}
		return priv, true, nil
	}
	seed, err := hex.DecodeString(seedHex)
	if err != nil {
		return nil, false, fmt.Errorf("decode signing seed: %w", err)
	}
	if len(seed) != ed25519.SeedSize {
		return nil, false, fmt.Errorf("signing seed must be %d bytes", ed25519.SeedSize)
	}
	return ed25519.NewKeyFromSeed(seed), false, nil
}

func (s *Signer) PublicKey() ed25519.PublicKey {
	return s.key.Public().(ed25519.PublicKey)
}

func (s *Signer) PublicKeyBase64() string {
	return base64.StdEncoding.EncodeToString(s.PublicKey())
}

func (s *Signer) PlatformID() string  { return s.platformID }
func (s *Signer) ComponentID() string { return s.componentID }

func (s *Signer) SignRequest() (string, error) {
	return s.sign(kindRequest)
}

func (s *Signer) SignResponse() (string, error) {
	return s.sign(kindResponse)
}

func (s *Signer) sign(kind string) (string, error) {
	if s == nil {
		return "", errors.New("signer is nil")
	}
	now := s.now().UTC()
	claims := serviceClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.platformID,
			Subject:   s.componentID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
			ID:        uuid.NewString(),
		},
		Kind: kind,
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodEdDSA, claims).SignedString(s.key)
	if err != nil {
		return "", fmt.Errorf("sign %s header: %w", kind, err)
	}
	return token, nil
}

// Verify checks a header minted by a Signer holding the matching private key.
func Verify(token string, key ed25519.PublicKey, now time.Time) (ServiceClaims, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return ServiceClaims{}, errors.New("security header is required")
	}
	if len(key) != ed25519.PublicKeySize {
		return ServiceClaims{}, errors.New("verification key is not configured")
	}
	var parsed serviceClaims
	_, err := jwt.ParseWithClaims(token, &parsed, func(*jwt.Token) (any, error) {
		return key, nil
	},
		jwt.WithValidMethods([]string{"EdDSA"}),
		jwt.WithTimeFunc(func() time.Time { return now }),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return ServiceClaims{}, fmt.Errorf("invalid security header: %w", err)
	}
	out := ServiceClaims{
		PlatformID:  parsed.Issuer,
		ComponentID: parsed.Subject,
		Kind:        parsed.Kind,
		JWTID:       parsed.ID,
		ExpiresAt:   parsed.ExpiresAt.Time.UTC(),
	}
	if parsed.IssuedAt != nil {
		out.IssuedAt = parsed.IssuedAt.Time.UTC()
	}
	return out, nil
}
