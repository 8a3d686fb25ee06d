// Package auth extracts the authenticated caller identity from bearer
// tokens. The surrounding dispatch transport is not this package's concern;
// it only answers "which user is calling, if any".
package auth

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrUnauthenticated indicates the caller presented no usable identity.
var ErrUnauthenticated = errors.New("unauthenticated")

// Verifier validates caller tokens signed with the shared key.
type Verifier struct {
	signingKey []byte
}

// NewVerifier creates a Verifier for HS256 tokens signed with signingKey.
func NewVerifier(signingKey string) *Verifier {
	return &Verifier{signingKey: []byte(signingKey)}
}

// VerifyToken checks the token signature and expiry and returns the user id
// from the subject claim.
func (v *Verifier) VerifyToken(tokenString string) (string, error) {
	token, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{}, func(t *jwt.Token) (interface{}, error) {
		return v.signingKey, nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnauthenticated, err)
	}

	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok || claims.Subject == "" {
		return "", fmt.Errorf("%w: token has no subject", ErrUnauthenticated)
	}
	return claims.Subject, nil
}

// UserID extracts and verifies the caller identity from a request's
// Authorization header.
func (v *Verifier) UserID(r *http.Request) (string, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", fmt.Errorf("%w: missing Authorization header", ErrUnauthenticated)
	}
	tokenString, found := strings.CutPrefix(header, "Bearer ")
	if !found {
		return "", fmt.Errorf("%w: Authorization header is not a bearer token", ErrUnauthenticated)
	}
	return v.VerifyToken(tokenString)
}

// IssueToken signs a short-lived token for the given user id. Used by
// tests and local tooling; production tokens come from the identity
// provider that shares the signing key.
func (v *Verifier) IssueToken(userID string, ttl time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	})
	return token.SignedString(v.signingKey)
}
