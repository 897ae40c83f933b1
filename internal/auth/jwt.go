package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// RoleOverlay is the only role accepted on the overlay websocket
const RoleOverlay = "overlay"

// ErrInvalidRole is returned when a valid token carries another role
var ErrInvalidRole = errors.New("token role is not allowed")

// JWTClaims represents the claims in our JWT token
type JWTClaims struct {
	ClientName string `json:"client_name,omitempty"`
	Role       string `json:"role"`
	jwt.RegisteredClaims
}

// TokenIssuer signs and validates overlay tokens with a shared HMAC secret
type TokenIssuer struct {
	secret []byte
	now    func() time.Time
}

// NewTokenIssuer creates an issuer; the secret must not be empty
func NewTokenIssuer(secret string) (*TokenIssuer, error) {
	if secret == "" {
		return nil, errors.New("JWT secret is required")
	}
	return &TokenIssuer{secret: []byte(secret), now: time.Now}, nil
}

// GenerateOverlayToken generates a token for an overlay client such as an OBS browser source
func (i *TokenIssuer) GenerateOverlayToken(clientName string, ttl time.Duration) (string, time.Time, error) {
	now := i.now()
	expiresAt := now.Add(ttl)
	claims := &JWTClaims{
		ClientName: clientName,
		Role:       RoleOverlay,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   clientName,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(i.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, expiresAt, nil
}

// ValidateToken validates a JWT token and returns the claims
func (i *TokenIssuer) ValidateToken(tokenString string) (*JWTClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		return i.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(i.now))
	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*JWTClaims); ok && token.Valid {
		return claims, nil
	}

	return nil, jwt.ErrInvalidKey
}

// ValidateOverlayToken validates the token and requires the overlay role
func (i *TokenIssuer) ValidateOverlayToken(tokenString string) (*JWTClaims, error) {
	claims, err := i.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}
	if claims.Role != RoleOverlay {
		return nil, fmt.Errorf("%w: %q", ErrInvalidRole, claims.Role)
	}
	return claims, nil
}
