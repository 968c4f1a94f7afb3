package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken is returned for any token that fails verification.
var ErrInvalidToken = errors.New("invalid session token")

// Identity is the acting user carried by a session token.
type Identity struct {
	UserID string
	Name   string
	Role   string
	City   string
}

// Claims is the JWT payload.
type Claims struct {
	Role string `json:"role"`
	Name string `json:"name,omitempty"`
	City string `json:"city,omitempty"`
	jwt.RegisteredClaims
}

// Tokens issues and verifies HS256 session tokens.
type Tokens struct {
	secret []byte
	roles  map[string]bool
}

// NewTokens creates a Tokens; only the listed roles are accepted.
func NewTokens(secret string, roles ...string) *Tokens {
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return &Tokens{secret: []byte(secret), roles: allowed}
}

// Issue signs a token for id valid for ttl.
func (t *Tokens) Issue(id Identity, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		Role: id.Role,
		Name: id.Name,
		City: id.City,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("auth: sign token: %w", err)
	}
	return signed, nil
}

// Verify parses and validates a token.
func (t *Tokens) Verify(tokenString string) (Identity, error) {
	var claims Claims
	_, err := jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (interface{}, error) {
		return t.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return Identity{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	if claims.Subject == "" {
		return Identity{}, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}
	if len(t.roles) > 0 && !t.roles[claims.Role] {
		return Identity{}, fmt.Errorf("%w: invalid role %q", ErrInvalidToken, claims.Role)
	}

	return Identity{
		UserID: claims.Subject,
		Name:   claims.Name,
		Role:   claims.Role,
		City:   claims.City,
	}, nil
}
