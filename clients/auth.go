package clients

import (
	"crypto/rsa"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// tokenLifetime is the provider's upper bound for exp - iat.
const tokenLifetime = 30 * time.Second

// requestSigner produces the per-request bearer token: an RS256 JWT bound to
// the request path and a hash of the body.
type requestSigner struct {
	apiKey string
	key    *rsa.PrivateKey
	now    func() time.Time
	nonce  func() string
}

func newRequestSigner(apiKey, secretPEM string) (*requestSigner, error) {
	key, err := jwt.ParseRSAPrivateKeyFromPEM([]byte(secretPEM))
	if err != nil {
		return nil, fmt.Errorf("failed to parse api secret: %w", err)
	}

	return &requestSigner{
		apiKey: apiKey,
		key:    key,
		now:    time.Now,
		nonce:  uuid.NewString,
	}, nil
}

// BodyHash returns the hex encoded sha256 of a request body.
func BodyHash(body []byte) string {
	sum := sha256.Sum256(body)
	return hex.EncodeToString(sum[:])
}

func (s *requestSigner) sign(uri string, body []byte) (string, error) {
	now := s.now()
	claims := jwt.MapClaims{
		"uri":      uri,
		"nonce":    s.nonce(),
		"iat":      now.Unix(),
		"exp":      now.Add(tokenLifetime).Unix(),
		"sub":      s.apiKey,
		"bodyHash": BodyHash(body),
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(s.key)
	if err != nil {
		return "", fmt.Errorf("failed to sign request token: %w", err)
	}
	return token, nil
}
