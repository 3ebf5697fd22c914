// Package auth issues and verifies access tokens and handles the
// Google sign-in flow.
package auth

import (
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"
)

const (
	// AccessTokenDuration is the lifetime of an issued access token.
	AccessTokenDuration = 30 * time.Minute

	issuer = "donna"
)

// Claims is the JWT payload of an access token.
type Claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// Signer issues and verifies HS256 access tokens.
type Signer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewSigner creates a Signer with the default token lifetime.
func NewSigner(secret string) *Signer {
	return &Signer{
		secret: []byte(secret),
		ttl:    AccessTokenDuration,
		now:    time.Now,
	}
}

// WithNow returns a Signer using the given clock. For tests.
func (s *Signer) WithNow(now func() time.Time) *Signer {
	clone := *s
	clone.now = now
	return &clone
}

// Issue signs an access token for the given user.
func (s *Signer) Issue(userID int32, email string) (string, error) {
	if len(s.secret) == 0 {
		return "", errors.New("jwt secret not configured")
	}
	now := s.now()
	claims := &Claims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   strconv.FormatInt(int64(userID), 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", errors.Wrap(err, "failed to sign access token")
	}
	return signed, nil
}

// Verify parses and validates an access token, returning the user id
// it was issued for.
func (s *Signer) Verify(tokenString string) (int32, *Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithIssuer(issuer), jwt.WithTimeFunc(s.now))
	if err != nil {
		return 0, nil, errors.Wrap(err, "invalid access token")
	}
	if !token.Valid {
		return 0, nil, errors.New("invalid access token")
	}
	userID, err := strconv.ParseInt(claims.Subject, 10, 32)
	if err != nil {
		return 0, nil, errors.Wrap(err, "malformed token subject")
	}
	return int32(userID), claims, nil
}
