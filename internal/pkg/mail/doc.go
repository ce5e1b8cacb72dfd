// Package mail sends email through a provider-agnostic Mail interface.
//
// SMTP is the only provider. Its settings can change at runtime, so callers
// usually build a sender per delivery from the current mailer settings.
package mail
