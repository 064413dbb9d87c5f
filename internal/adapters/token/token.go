package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Purpose restricts where a token is valid. A confirmation token must not be
// accepted by the withdrawal endpoint and vice versa.
const (
	PurposeConfirmEmail = "confirm_email"
	PurposeWithdraw     = "withdraw"
	PurposeCalendarFeed = "calendar_feed"
)

// Errors returned by Verify.
var (
	ErrInvalidToken = errors.New("token is invalid or expired")
	ErrWrongPurpose = errors.New("token was issued for a different purpose")
)

// Claims carried by a signed action link.
type Claims struct {
	Purpose string `json:"purpose"`
	Subject string `json:"sub_id"` // account or volunteer ID depending on purpose
	jwt.RegisteredClaims
}

// Signer issues and verifies signed single-purpose action links.
type Signer struct {
	secret []byte
	ttl    time.Duration
}

// NewSigner creates a Signer.
// PRE: secret is at least 32 bytes of key material
// POST: Returns a ready-to-use signer; ttl <= 0 defaults to 48h
func NewSigner(secret []byte, ttl time.Duration) *Signer {
	if ttl <= 0 {
		ttl = 48 * time.Hour
	}
	return &Signer{secret: secret, ttl: ttl}
}

// Issue creates a signed token bound to a purpose and subject.
// PRE: purpose and subject are non-empty
// POST: Returns a compact JWS valid for the signer's TTL
func (s *Signer) Issue(purpose, subject string, now time.Time) (string, error) {
	claims := Claims{
		Purpose: purpose,
		Subject: subject,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify parses a token and checks its signature, expiry and purpose.
// PRE: raw is a compact JWS
// POST: Returns the subject the token was issued for
func (s *Signer) Verify(raw, purpose string) (string, error) {
	parsed, err := jwt.ParseWithClaims(raw, &Claims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !parsed.Valid {
		return "", ErrInvalidToken
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok {
		return "", ErrInvalidToken
	}
	if claims.Purpose != purpose {
		return "", ErrWrongPurpose
	}
	if claims.Subject == "" {
		return "", ErrInvalidToken
	}
	return claims.Subject, nil
}
