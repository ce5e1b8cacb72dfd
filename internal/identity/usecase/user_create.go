package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/samber/lo"
	"github.com/shandysiswandi/isaback/internal/identity/entity"
	"github.com/shandysiswandi/isaback/internal/pkg/authz"
	"github.com/shandysiswandi/isaback/internal/pkg/goerror"
)

type UserCreateInput struct {
	Username        string
	Name            string
	Password        string
	ConfirmPassword string
	Email           string
	CPF             string
	Phone           string
	RoleID          string
	Establishments  []string
}

func (s *Usecase) UserCreate(ctx context.Context, in UserCreateInput) (*entity.User, error) {
	ctx, span := s.startSpan(ctx, "UserCreate")
	defer span.End()

	if _, err := s.authz.Check(ctx, resourceUsers, authz.ActCreate); err != nil {
		return nil, err
	}

	in.Email = strings.TrimSpace(strings.ToLower(in.Email))
	in.Username = strings.TrimSpace(in.Username)
	in.Name = strings.TrimSpace(in.Name)

	if in.Password != in.ConfirmPassword {
		return nil, goerror.NewBusiness("Passwords do not match", goerror.CodeInvalidInput)
	}

	if err := s.ensureUnique(ctx, in.Email, in.Username, ""); err != nil {
		return nil, err
	}

	if err := s.ensureEstablishments(ctx, in.Establishments); err != nil {
		return nil, err
	}

	user := entity.User{
		ID:       s.uuid.Generate(),
		Username: in.Username,
		Name:     in.Name,
		Email:    in.Email,
		CPF:      in.CPF,
		Phone:    in.Phone,
		RoleID:   in.RoleID,
		Establishments: lo.Map(lo.Uniq(lo.Compact(in.Establishments)), func(id string, _ int) entity.Establishment {
			return entity.Establishment{ID: id}
		}),
	}

	keycloakID, err := s.repoIDP.CreateUser(ctx, user, in.Password)
	if errors.Is(err, goerror.ErrConflict) {
		slog.WarnContext(ctx, "user already exists in identity provider", "username", in.Username, "email", in.Email)
		return nil, goerror.NewBusiness("User already exists", goerror.CodeConflict)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to create user in identity provider", "username", in.Username, "error", err)
		return nil, goerror.NewServer(err)
	}
	user.KeycloakID = keycloakID

	if err := s.repoDB.CreateUser(ctx, user); err != nil {
		slog.ErrorContext(ctx, "failed to repo create user", "user_id", user.ID, "keycloak_id", keycloakID, "error", err)
		s.rollbackIDPUser(ctx, keycloakID)
		if errors.Is(err, goerror.ErrConflict) {
			return nil, goerror.NewBusiness("User already exists", goerror.CodeConflict)
		}
		return nil, goerror.NewServer(err)
	}

	return &user, nil
}

// rollbackIDPUser removes a provider user whose local row could not be stored,
// so a retry is not answered with a conflict.
func (s *Usecase) rollbackIDPUser(ctx context.Context, keycloakID string) {
	if err := s.repoIDP.DeleteUser(context.WithoutCancel(ctx), keycloakID); err != nil {
		slog.ErrorContext(ctx, "failed to roll back identity provider user", "keycloak_id", keycloakID, "error", err)
	}
}
