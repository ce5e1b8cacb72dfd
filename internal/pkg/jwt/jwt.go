package jwt

import (
	"context"
	"errors"
	"slices"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrInvalidSigningMethod is returned when the JWT signing method is not supported.
	ErrInvalidSigningMethod = errors.New("invalid JWT signing method")

	// ErrPublicKeyRequired is returned when the verifier is built without a key.
	ErrPublicKeyRequired = errors.New("RS256 public key is required")

	// ErrTokenExpired is returned when the JWT token has expired.
	ErrTokenExpired = errors.New("JWT token has expired")

	// ErrInvalidToken is returned when the token is malformed or fails validation.
	ErrInvalidToken = errors.New("invalid token")
)

// Verifier parses and validates a bearer token and returns its claims.
type Verifier interface {
	Verify(tokenStr string) (Claims, error)
}

type clocker interface {
	Now() time.Time
}

type jwtContextKey struct{}

// RealmAccess lists the realm roles granted to the subject.
type RealmAccess struct {
	Roles []string `json:"roles"`
}

// Claims is the access token payload of the identity provider.
type Claims struct {
	// RegisteredClaims holds the standard JWT claims; Subject is the provider user id.
	jwt.RegisteredClaims
	// PreferredUsername is the login name.
	PreferredUsername string `json:"preferred_username"`
	// Email is the user email, when the email scope was granted.
	Email string `json:"email"`
	// AuthorizedParty is the client the token was issued to.
	AuthorizedParty string `json:"azp"`
	// RealmAccess carries realm roles.
	RealmAccess RealmAccess `json:"realm_access"`
}

// Roles returns the realm roles of the subject.
func (c Claims) Roles() []string {
	return c.RealmAccess.Roles
}

// HasRole reports whether the subject holds role.
func (c Claims) HasRole(role string) bool {
	return slices.Contains(c.RealmAccess.Roles, role)
}

// GetAuth returns the JWT claims stored in the context, if any.
func GetAuth(ctx context.Context) *Claims {
	clm, ok := ctx.Value(jwtContextKey{}).(Claims)
	if !ok {
		return nil
	}

	return &clm
}

// SetAuth stores JWT claims in the context.
func SetAuth(ctx context.Context, clm Claims) context.Context {
	return context.WithValue(ctx, jwtContextKey{}, clm)
}
