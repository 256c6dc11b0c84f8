// Package auth gates the admin surface behind a configured credential pair
// and short-lived session tokens.
//
// This is a placeholder for a real identity provider, not a security
// boundary: the rest of the system only ever consumes the boolean outcome
// of Verify, so swapping in real authentication touches nothing else.
package auth

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrUnauthorized is returned for bad credentials and bad tokens alike; the
// caller gets no hint which part failed.
var ErrUnauthorized = errors.New("auth: unauthorized")

// Authenticator checks the admin credential and issues HS256 session tokens.
type Authenticator struct {
	email    string
	password string
	secret   []byte
	ttl      time.Duration
}

func New(email, password, secret string, ttl time.Duration) *Authenticator {
	return &Authenticator{
		email:    email,
		password: password,
		secret:   []byte(secret),
		ttl:      ttl,
	}
}

// Login compares the submitted credential pair in constant time and returns
// a signed session token on success.
func (a *Authenticator) Login(email, password string) (string, error) {
	emailOK := subtle.ConstantTimeCompare([]byte(email), []byte(a.email)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(password), []byte(a.password)) == 1
	if !emailOK || !passOK {
		return "", ErrUnauthorized
	}

	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   email,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(a.ttl)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(a.secret)
	if err != nil {
		return "", fmt.Errorf("auth: sign token: %w", err)
	}
	return signed, nil
}

// Verify parses and validates a session token.
func (a *Authenticator) Verify(tokenString string) error {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return a.secret, nil
	})
	if err != nil || !token.Valid {
		return ErrUnauthorized
	}
	return nil
}

// Middleware admits requests carrying a valid bearer token and rejects the
// rest with 401.
func (a *Authenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, found := strings.CutPrefix(header, "Bearer ")
		if !found || a.Verify(token) != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":"unauthorized"}`))
			return
		}
		next.ServeHTTP(w, r)
	})
}
