package inbound

import (
	"errors"

	"github.com/shandysiswandi/isaback/internal/pkg/goerror"
	"github.com/shandysiswandi/isaback/internal/pkg/router"
	"github.com/shandysiswandi/isaback/internal/pkg/validator"
)

type usersCreateSchema struct {
	Username        string `json:"username" validate:"required"`
	Name            string `json:"name" validate:"required"`
	Password        string `json:"password" validate:"required"`
	ConfirmPassword string `json:"confirm_password" validate:"required"`
	CPF             string `json:"cpf" validate:"required"`
	Phone           string `json:"phone" validate:"required"`
	Email           string `json:"email" validate:"required,email"`
	RoleID          string `json:"roleId" validate:"required"`
	Establishments  []any  `json:"establishments" validate:"required"`
}

type usersUpdateSchema struct {
	ID             string `json:"id" validate:"required"`
	Username       string `json:"username" validate:"required"`
	Name           string `json:"name" validate:"required"`
	CPF            string `json:"cpf" validate:"required"`
	Phone          string `json:"phone" validate:"required"`
	Email          string `json:"email" validate:"required,email"`
	RoleID         string `json:"roleId"`
	Establishments []any  `json:"establishments"`
}

type sessionsCreateSchema struct {
	Email string `json:"email" validate:"required,email"`
}

type sessionsResetSchema struct {
	Token           string `json:"token" validate:"required"`
	Password        string `json:"password" validate:"required"`
	ConfirmPassword string `json:"confirm_password" validate:"required"`
}

// UsersValidator checks user payloads before the handler runs.
type UsersValidator struct {
	v validator.JSONValidator
}

func NewUsersValidator(v validator.JSONValidator) UsersValidator {
	return UsersValidator{v: v}
}

func (u UsersValidator) Create(next router.Handler) router.Handler {
	return validateBody(u.v, func() any { return &usersCreateSchema{} }, next)
}

func (u UsersValidator) Update(next router.Handler) router.Handler {
	return validateBody(u.v, func() any { return &usersUpdateSchema{} }, next)
}

// SessionsValidator checks password reset payloads before the handler runs.
type SessionsValidator struct {
	v validator.JSONValidator
}

func NewSessionsValidator(v validator.JSONValidator) SessionsValidator {
	return SessionsValidator{v: v}
}

func (s SessionsValidator) Create(next router.Handler) router.Handler {
	return validateBody(s.v, func() any { return &sessionsCreateSchema{} }, next)
}

func (s SessionsValidator) Reset(next router.Handler) router.Handler {
	return validateBody(s.v, func() any { return &sessionsResetSchema{} }, next)
}

// validateBody reports every violation of a fresh schema and leaves the
// request body untouched for next.
func validateBody(v validator.JSONValidator, schema func() any, next router.Handler) router.Handler {
	return func(r *router.Request) (any, error) {
		body, err := r.PeekBody()
		if err != nil {
			return nil, err
		}

		if err := v.ValidateJSON(body, schema()); err != nil {
			if errors.Is(err, validator.ErrMalformedBody) {
				return nil, goerror.NewInvalidFormat()
			}
			return nil, goerror.NewInvalidInput(err)
		}

		return next(r)
	}
}
