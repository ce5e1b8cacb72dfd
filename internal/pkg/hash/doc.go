// Package hash provides keyed hashing for short-lived secrets such as
// password reset tokens, which are persisted only as their HMAC.
package hash
