// Package auth verifies bearer credentials from the identity provider and
// yields a stable subject identity for the rest of the service.
package auth

import (
	"context"

	"github.com/bharatTiffin/elitemeet-backend/internal/domain"
	"github.com/golang-jwt/jwt/v5"
)

const RoleAdmin = "admin"

// Identity is the verified caller.
type Identity struct {
	UserID string
	Email  string
	Name   string
	Role   string
}

// Verifier turns a bearer token into an Identity or ErrUnauthenticated.
type Verifier interface {
	Verify(ctx context.Context, token string) (Identity, error)
}

// JWTVerifier validates HS256 tokens minted by the identity provider with a
// shared secret.
type JWTVerifier struct {
	secret []byte
}

func NewJWTVerifier(secret string) *JWTVerifier {
	return &JWTVerifier{secret: []byte(secret)}
}

type claims struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

func (v *JWTVerifier) Verify(_ context.Context, token string) (Identity, error) {
	var c claims
	parsed, err := jwt.ParseWithClaims(token, &c, func(t *jwt.Token) (any, error) {
		return v.secret, nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil || !parsed.Valid || c.Subject == "" {
		return Identity{}, domain.ErrUnauthenticated
	}

	role := c.Role
	if role == "" {
		role = "user"
	}
	return Identity{
		UserID: c.Subject,
		Email:  c.Email,
		Name:   c.Name,
		Role:   role,
	}, nil
}

type identityKey struct{}

// WithIdentity stores the verified caller in the request context.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// IdentityFromContext returns the verified caller, if any.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(Identity)
	return id, ok
}
