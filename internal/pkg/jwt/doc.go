// Package jwt verifies bearer tokens issued by the identity provider.
//
// It includes:
//   - Claims carrying the Keycloak realm roles next to the registered claims.
//   - An RS256 verifier bound to the realm public key.
//   - Context helpers for storing and retrieving authenticated claims.
package jwt
