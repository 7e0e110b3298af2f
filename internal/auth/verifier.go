// Package auth verifies identity-provider tokens and carries the caller identity in context.
package auth

import (
	"crypto/rsa"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/TariqKichawele/Reflect/internal/errs"
)

// Leeway tolerated on exp/nbf/iat checks.
const Leeway = 30 * time.Second

// Identity is the caller as asserted by the identity provider.
type Identity struct {
	Subject string
	Email   string
	Name    string
}

type claims struct {
	Email string `json:"email,omitempty"`
	Name  string `json:"name,omitempty"`
	jwt.RegisteredClaims
}

// Verifier validates bearer tokens signed with either a shared secret or an RSA key.
type Verifier struct {
	method jwt.SigningMethod
	key    any
	issuer string
}

// NewHS256 returns a Verifier for HMAC-SHA256 tokens.
func NewHS256(secret []byte, issuer string) *Verifier {
	return &Verifier{method: jwt.SigningMethodHS256, key: secret, issuer: issuer}
}

// NewRS256 returns a Verifier for RSA-SHA256 tokens given a PEM-encoded public key.
func NewRS256(publicKeyPEM []byte, issuer string) (*Verifier, error) {
	pub, err := jwt.ParseRSAPublicKeyFromPEM(publicKeyPEM)
	if err != nil {
		return nil, fmt.Errorf("auth: parse public key: %w", err)
	}
	return newRSA(pub, issuer), nil
}

func newRSA(pub *rsa.PublicKey, issuer string) *Verifier {
	return &Verifier{method: jwt.SigningMethodRS256, key: pub, issuer: issuer}
}

// Verify parses and validates the token. Every failure matches errs.ErrUnauthorized.
func (v *Verifier) Verify(token string) (Identity, error) {
	if token == "" {
		return Identity{}, fmt.Errorf("%w: empty token", errs.ErrUnauthorized)
	}

	opts := []jwt.ParserOption{
		jwt.WithLeeway(Leeway),
		jwt.WithValidMethods([]string{v.method.Alg()}),
	}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}

	var c claims
	parsed, err := jwt.ParseWithClaims(token, &c, func(t *jwt.Token) (any, error) {
		if t.Method.Alg() != v.method.Alg() {
			return nil, errors.New("unexpected signing method")
		}
		return v.key, nil
	}, opts...)
	if err != nil || !parsed.Valid {
		return Identity{}, fmt.Errorf("%w: invalid token", errs.ErrUnauthorized)
	}
	if c.Subject == "" {
		return Identity{}, fmt.Errorf("%w: missing subject", errs.ErrUnauthorized)
	}
	return Identity{Subject: c.Subject, Email: c.Email, Name: c.Name}, nil
}

// BearerToken extracts the token from an Authorization header value.
func BearerToken(header string) (string, bool) {
	if len(header) >= 7 && strings.EqualFold(header[:7], "bearer ") {
		tok := strings.TrimSpace(header[7:])
		return tok, tok != ""
	}
	return "", false
}
