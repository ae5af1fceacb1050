package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	// ErrInvalidToken is returned when a token fails signature or expiry validation.
	ErrInvalidToken = errors.New("invalid token")
)

// Claims holds the identity claims: the subject is the user email.
type Claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// TokenService issues and verifies signed identity tokens.
type TokenService struct {
	secret     []byte
	expireDays int
}

// NewTokenService creates a token service. Tokens expire expireDays after issuance.
func NewTokenService(secret string, expireDays int) *TokenService {
	return &TokenService{
		secret:     []byte(secret),
		expireDays: expireDays,
	}
}

// ExpireAfter returns the token lifetime.
func (s *TokenService) ExpireAfter() time.Duration {
	return time.Duration(s.expireDays) * 24 * time.Hour
}

// Issue creates a signed token for the given email.
func (s *TokenService) Issue(email string) (string, error) {
	claims := Claims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   email,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(s.ExpireAfter())),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ID:        uuid.New().String(),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Verify parses and validates a token, returning the identity email or an error.
func (s *TokenService) Verify(tokenString string) (string, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return s.secret, nil
	})
	if err != nil {
		return "", ErrInvalidToken
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return "", ErrInvalidToken
	}
	if claims.Email == "" {
		return claims.Subject, nil
	}
	return claims.Email, nil
}
