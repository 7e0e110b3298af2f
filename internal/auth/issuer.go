package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Issuer mints HS256 tokens for local development against a server
// configured with the same secret.
type Issuer struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

// NewIssuer constructs an Issuer.
func NewIssuer(secret []byte, issuer string, ttl time.Duration) *Issuer {
	return &Issuer{secret: secret, issuer: issuer, ttl: ttl, now: time.Now}
}

// Issue signs a token for the given identity.
func (i *Issuer) Issue(id Identity) (string, time.Time, error) {
	if len(i.secret) == 0 {
		return "", time.Time{}, errors.New("auth: empty signing secret")
	}
	if id.Subject == "" {
		return "", time.Time{}, errors.New("auth: empty subject")
	}
	now := i.now()
	exp := now.Add(i.ttl)
	c := claims{
		Email: id.Email,
		Name:  id.Name,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.Subject,
			Issuer:    i.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	signed, err := tok.SignedString(i.secret)
	return signed, exp, err
}
