package idp

import (
	"context"
	"errors"
	"strings"

	"github.com/shandysiswandi/isaback/internal/identity/entity"
	"github.com/shandysiswandi/isaback/internal/pkg/goerror"
	"github.com/shandysiswandi/isaback/internal/pkg/instrument"
	"github.com/shandysiswandi/isaback/internal/pkg/keycloak"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

type client interface {
	CreateUser(ctx context.Context, u keycloak.User) (string, error)
	UpdateUser(ctx context.Context, id string, u keycloak.User) error
	ResetPassword(ctx context.Context, id, password string) error
	DeleteUser(ctx context.Context, id string) error
}

type Keycloak struct {
	client client
	ins    instrument.Instrumentation
}

func NewKeycloak(c client, ins instrument.Instrumentation) *Keycloak {
	return &Keycloak{client: c, ins: ins}
}

func (k *Keycloak) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return k.ins.Tracer("identity.outbound.idp").Start(ctx, name)
}

func (k *Keycloak) endSpan(span trace.Span, err error) {
	if err != nil && !errors.Is(err, goerror.ErrConflict) && !errors.Is(err, goerror.ErrNotFound) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

func mapError(err error) error {
	switch {
	case errors.Is(err, keycloak.ErrUserExists):
		return goerror.ErrConflict
	case errors.Is(err, keycloak.ErrUserNotFound):
		return goerror.ErrNotFound
	default:
		return err
	}
}

func representation(u entity.User) keycloak.User {
	first, last, _ := strings.Cut(strings.TrimSpace(u.Name), " ")

	return keycloak.User{
		Username:      u.Username,
		Email:         u.Email,
		FirstName:     first,
		LastName:      strings.TrimSpace(last),
		Enabled:       true,
		EmailVerified: true,
		Attributes: map[string][]string{
			"cpf":   {u.CPF},
			"phone": {u.Phone},
		},
	}
}

// CreateUser creates the user with a permanent password and returns the provider id.
func (k *Keycloak) CreateUser(ctx context.Context, u entity.User, password string) (_ string, err error) {
	ctx, span := k.startSpan(ctx, "CreateUser")
	defer func() { k.endSpan(span, err) }()

	rep := representation(u)
	rep.Credentials = []keycloak.Credential{{Type: "password", Value: password}}

	id, err := k.client.CreateUser(ctx, rep)
	return id, mapError(err)
}

func (k *Keycloak) UpdateUser(ctx context.Context, keycloakID string, u entity.User) (err error) {
	ctx, span := k.startSpan(ctx, "UpdateUser")
	defer func() { k.endSpan(span, err) }()

	return mapError(k.client.UpdateUser(ctx, keycloakID, representation(u)))
}

func (k *Keycloak) ResetPassword(ctx context.Context, keycloakID, password string) (err error) {
	ctx, span := k.startSpan(ctx, "ResetPassword")
	defer func() { k.endSpan(span, err) }()

	return mapError(k.client.ResetPassword(ctx, keycloakID, password))
}

func (k *Keycloak) DeleteUser(ctx context.Context, keycloakID string) (err error) {
	ctx, span := k.startSpan(ctx, "DeleteUser")
	defer func() { k.endSpan(span, err) }()

	return mapError(k.client.DeleteUser(ctx, keycloakID))
}
