package utils // package utils provides helper functions for session token creation

import (
	"errors" // errors defines sentinel values for token validation
	"time"   // time utilities for generating expirations

	"github.com/golang-jwt/jwt/v5" // JWT library for creating signed tokens
)

// SessionToken represents a signed admin session token along with its expiry.
// The Token field contains the JWT string.  Exp stores the expiration
// timestamp as a time.Time.  Sessions are short‑lived; there is exactly one
// administrative identity, so the token carries no user id beyond a fixed
// subject.
type SessionToken struct {
	Token string    // the serialized JWT string
	Exp   time.Time // the UTC expiration time
}

// ErrInvalidSession is returned when a presented session token cannot be
// parsed, fails signature verification or has expired.
var ErrInvalidSession = errors.New("invalid session token")

// adminSubject is the fixed subject claim of every admin session token.
const adminSubject = "admin"

// NewSessionToken builds and signs an HS256 JWT marking an authorized admin
// session.  It takes the signing secret and a TTL in minutes and returns a
// SessionToken containing the signed token and its expiration time.  The JWT
// includes standard claims: subject (sub), expiration (exp) and issued at
// (iat).
func NewSessionToken(secret string, ttlMin int) (SessionToken, error) {
	// Calculate the expiration time by adding the TTL to the current UTC time.
	exp := time.Now().UTC().Add(time.Duration(ttlMin) * time.Minute)
	claims := jwt.MapClaims{
		"sub": adminSubject,
		"exp": exp.Unix(),
		"iat": time.Now().UTC().Unix(),
	}
	// Create a new token object specifying the signing method (HS256) and
	// include the claims.
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString([]byte(secret))
	if err != nil {
		return SessionToken{}, err
	}
	return SessionToken{Token: signed, Exp: exp}, nil
}

// VerifySessionToken parses a raw token string and reports whether it is a
// valid, unexpired admin session signed with the given secret.  Any parse or
// claim failure yields ErrInvalidSession; callers do not need to distinguish
// the reasons.
func VerifySessionToken(secret, raw string) error {
	tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		// Type assert the signing method to HMAC; reject others.
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidSession
		}
		return []byte(secret), nil
	})
	if err != nil || !tok.Valid {
		return ErrInvalidSession
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return ErrInvalidSession
	}
	if sub, _ := claims.GetSubject(); sub != adminSubject {
		return ErrInvalidSession
	}
	return nil
}
