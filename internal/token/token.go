// Package token issues and verifies signed, time-limited session tokens.
package token

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	// LoginTTL is the lifetime of tokens issued on password login.
	LoginTTL = 24 * time.Hour
	// FederatedTTL is the lifetime of tokens issued via the federated
	// bridge. The two lifetimes differ on purpose: both values are carried
	// over from previous revisions and clients depend on the longer
	// federated session.
	FederatedTTL = 7 * 24 * time.Hour

	issuer = "savornshare-api"
)

// Verification failure modes. Expired and malformed are distinguishable so
// the client can prompt for re-login instead of treating the token as junk.
var (
	ErrExpired   = errors.New("token expired")
	ErrMalformed = errors.New("token malformed or signature invalid")
)

// Claims is the verified content of a session token.
type Claims struct {
	UserID uint
	Name   string
}

// Service signs and verifies session tokens. Tokens are stateless; nothing
// is persisted server-side.
type Service struct {
	secret []byte
}

// NewService creates a token Service with the given HMAC secret.
func NewService(secret string) (*Service, error) {
	if secret == "" {
		return nil, errors.New("JWT secret not configured")
	}
	return &Service{secret: []byte(secret)}, nil
}

// Issue produces a signed token embedding the user identifier with the given
// lifetime. Pure computation, no side effects.
func (s *Service) Issue(userID uint, name string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":  strconv.FormatUint(uint64(userID), 10),
		"name": name,
		"iss":  issuer,
		"exp":  now.Add(ttl).Unix(),
		"iat":  now.Unix(),
		"jti":  uuid.New().String(),
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return tok.SignedString(s.secret)
}

// Verify parses and validates a raw token. It returns ErrExpired for tokens
// past their expiry instant and ErrMalformed for everything else that fails,
// including garbage input.
func (s *Service) Verify(raw string) (*Claims, error) {
	tok, err := jwt.Parse(raw, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %q", t.Method.Alg())
		}
		return s.secret, nil
	}, jwt.WithIssuer(issuer), jwt.WithExpirationRequired())
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpired
		}
		return nil, ErrMalformed
	}
	if !tok.Valid {
		return nil, ErrMalformed
	}

	mapClaims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrMalformed
	}

	sub, ok := mapClaims["sub"].(string)
	if !ok {
		return nil, ErrMalformed
	}
	userID, err := strconv.ParseUint(sub, 10, 32)
	if err != nil || userID == 0 {
		return nil, ErrMalformed
	}

	name, _ := mapClaims["name"].(string)

	return &Claims{UserID: uint(userID), Name: name}, nil
}
