// Package auth verifies bearer tokens and extracts the caller's role.
package auth

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token expired")
)

// Verifier validates tokens. Modes: dev (token is "subject:role" or just a
// role, not verified) and hmac (HS256 JWT with sub and role claims).
type Verifier struct {
	Mode       string
	HMACSecret []byte
	RoleClaim  string
}

// Claims is the payload of an hmac-mode token.
type Claims struct {
	Role string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

type Principal struct {
	Subject string
	Role    string
}

// IsAdmin reports whether the principal may use admin endpoints.
func (p Principal) IsAdmin() bool { return p.Role == "admin" }

func NewVerifier(mode, secret string) *Verifier {
	mode = strings.ToLower(strings.TrimSpace(mode))
	if mode == "" {
		mode = "dev"
	}
	return &Verifier{Mode: mode, HMACSecret: []byte(secret), RoleClaim: "role"}
}

func (v *Verifier) Verify(token string) (Principal, error) {
	switch v.Mode {
	case "dev":
		return devPrincipal(token)
	case "hmac":
		return v.verifyHMAC(token)
	}
	return Principal{}, errors.New("unsupported auth mode")
}

func devPrincipal(token string) (Principal, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return Principal{}, ErrInvalidToken
	}
	sub, role, ok := strings.Cut(token, ":")
	if !ok {
		sub, role = "dev", sub
	}
	if role == "" {
		return Principal{}, ErrInvalidToken
	}
	return Principal{Subject: sub, Role: strings.ToLower(role)}, nil
}

func (v *Verifier) verifyHMAC(token string) (Principal, error) {
	var claims Claims
	_, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		return v.HMACSecret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) || errors.Is(err, jwt.ErrTokenNotValidYet) {
			return Principal{}, ErrExpiredToken
		}
		return Principal{}, ErrInvalidToken
	}
	role := strings.ToLower(claims.Role)
	if role == "" {
		role = "user"
	}
	return Principal{Subject: claims.Subject, Role: role}, nil
}

// Sign issues an HS256 token. Used by the CLI and tests.
func Sign(secret, subject, role string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}
