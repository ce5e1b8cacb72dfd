package inbound

import (
	"context"

	"github.com/shandysiswandi/isaback/internal/identity/entity"
	"github.com/shandysiswandi/isaback/internal/identity/usecase"
	"github.com/shandysiswandi/isaback/internal/pkg/router"
	"github.com/shandysiswandi/isaback/internal/pkg/validator"
)

type uc interface {
	UserList(ctx context.Context, in usecase.UserListInput) (*usecase.UserListOutput, error)
	UserDetail(ctx context.Context, id string) (*entity.User, error)
	UserCreate(ctx context.Context, in usecase.UserCreateInput) (*entity.User, error)
	UserUpdate(ctx context.Context, in usecase.UserUpdateInput) (*entity.User, error)

	SessionCreate(ctx context.Context, in usecase.SessionCreateInput) error
	SessionReset(ctx context.Context, in usecase.SessionResetInput) error
}

// PublicEndpoints lists the routes reachable without a bearer token.
var PublicEndpoints = map[string][]string{
	"POST": {"/api/v1/sessions", "/api/v1/sessions/reset"},
}

func RegisterHTTPEndpoint(r *router.Router, v validator.JSONValidator, uc uc) {
	end := &HTTPEndpoint{uc: uc}
	users := NewUsersValidator(v)
	sessions := NewSessionsValidator(v)

	// User Directory (need authenticated & authorization)
	r.GET("/api/v1/users", end.UserList)
	r.GET("/api/v1/users/:id", end.UserDetail)
	r.POST("/api/v1/users", users.Create(end.UserCreate))
	r.PUT("/api/v1/users", users.Update(end.UserUpdate))

	// Password reset
	r.POST("/api/v1/sessions", sessions.Create(end.SessionCreate))
	r.POST("/api/v1/sessions/reset", sessions.Reset(end.SessionReset))
}
