package jwt

import (
	"crypto/rsa"
	"errors"
	"strings"
	"time"

	libJWT "github.com/golang-jwt/jwt/v5"
)

// Config defines the inputs for building the RS256 verifier.
type Config struct {
	// PublicKey is the realm signing key.
	PublicKey *rsa.PublicKey
	// Issuer is the expected iss, usually {keycloak}/realms/{realm}.
	Issuer string
	// Audiences are the accepted token audiences; empty disables the check.
	Audiences []string
	// Clock provides the current time source.
	Clock clocker
}

// Asymmetric verifies RS256 tokens signed by the identity provider.
type Asymmetric struct {
	key       *rsa.PublicKey
	issuer    string
	audiences []string
	clock     clocker
}

// NewRS256 constructs an RS256 verifier.
func NewRS256(cfg Config) (*Asymmetric, error) {
	if cfg.PublicKey == nil {
		return nil, ErrPublicKeyRequired
	}

	return &Asymmetric{
		key:       cfg.PublicKey,
		issuer:    cfg.Issuer,
		audiences: cfg.Audiences,
		clock:     cfg.Clock,
	}, nil
}

// ParseRSAPublicKey decodes the base64 DER key published by the realm endpoint.
func ParseRSAPublicKey(encoded string) (*rsa.PublicKey, error) {
	encoded = strings.TrimSpace(encoded)
	if !strings.HasPrefix(encoded, "-----BEGIN") {
		encoded = "-----BEGIN PUBLIC KEY-----\n" + encoded + "\n-----END PUBLIC KEY-----\n"
	}

	return libJWT.ParseRSAPublicKeyFromPEM([]byte(encoded))
}

// Verify parses and validates a JWT string.
func (a *Asymmetric) Verify(tokenStr string) (Claims, error) {
	var claims Claims

	opts := []libJWT.ParserOption{
		libJWT.WithValidMethods([]string{libJWT.SigningMethodRS256.Alg()}),
		libJWT.WithExpirationRequired(),
		libJWT.WithIssuedAt(),
	}
	if a.issuer != "" {
		opts = append(opts, libJWT.WithIssuer(a.issuer))
	}
	if len(a.audiences) > 0 {
		opts = append(opts, libJWT.WithAudience(a.audiences...))
	}
	if a.clock != nil {
		opts = append(opts, libJWT.WithTimeFunc(func() time.Time { return a.clock.Now() }))
	}

	token, err := libJWT.ParseWithClaims(tokenStr, &claims,
		func(t *libJWT.Token) (any, error) {
			if _, ok := t.Method.(*libJWT.SigningMethodRSA); !ok {
				return nil, ErrInvalidSigningMethod
			}
			return a.key, nil
		},
		opts...,
	)
	if err != nil {
		if errors.Is(err, libJWT.ErrTokenExpired) {
			return Claims{}, ErrTokenExpired
		}
		return Claims{}, err
	}

	if !token.Valid {
		return Claims{}, ErrInvalidToken
	}

	return claims, nil
}
