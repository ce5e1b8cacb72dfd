package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/shandysiswandi/isaback/internal/identity/entity"
	"github.com/shandysiswandi/isaback/internal/pkg/authz"
	"github.com/shandysiswandi/isaback/internal/pkg/goerror"
)

// UserUpdateInput replaces the user profile. RoleID and Establishments
// are only replaced when present.
type UserUpdateInput struct {
	ID             string
	Username       string
	Name           string
	Email          string
	CPF            string
	Phone          string
	RoleID         *string
	Establishments []string
}

func (s *Usecase) UserUpdate(ctx context.Context, in UserUpdateInput) (*entity.User, error) {
	ctx, span := s.startSpan(ctx, "UserUpdate")
	defer span.End()

	if _, err := s.authz.Check(ctx, resourceUsers, authz.ActUpdate); err != nil {
		return nil, err
	}

	in.Email = strings.TrimSpace(strings.ToLower(in.Email))
	in.Username = strings.TrimSpace(in.Username)
	in.Name = strings.TrimSpace(in.Name)

	current, err := s.repoDB.GetUserByID(ctx, in.ID)
	if errors.Is(err, goerror.ErrNotFound) {
		slog.WarnContext(ctx, "user to update not found", "user_id", in.ID)
		return nil, goerror.NewBusiness("User not found", goerror.CodeNotFound)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get user by id", "user_id", in.ID, "error", err)
		return nil, goerror.NewServer(err)
	}

	if err := s.ensureUnique(ctx, in.Email, in.Username, in.ID); err != nil {
		return nil, err
	}

	if in.Establishments != nil {
		if err := s.ensureEstablishments(ctx, in.Establishments); err != nil {
			return nil, err
		}
	}

	updated := *current
	updated.Username = in.Username
	updated.Name = in.Name
	updated.Email = in.Email
	updated.CPF = in.CPF
	updated.Phone = in.Phone
	if in.RoleID != nil {
		updated.RoleID = *in.RoleID
	}

	if current.KeycloakID != "" {
		err := s.repoIDP.UpdateUser(ctx, current.KeycloakID, updated)
		if errors.Is(err, goerror.ErrConflict) {
			return nil, goerror.NewBusiness("User already exists", goerror.CodeConflict)
		}
		if err != nil {
			slog.ErrorContext(ctx, "failed to update user in identity provider", "user_id", in.ID, "keycloak_id", current.KeycloakID, "error", err)
			return nil, goerror.NewServer(err)
		}
	}

	if err := s.repoDB.UpdateUser(ctx, entity.UserPatch{
		ID:             in.ID,
		Username:       updated.Username,
		Name:           updated.Name,
		Email:          updated.Email,
		CPF:            updated.CPF,
		Phone:          updated.Phone,
		RoleID:         in.RoleID,
		Establishments: in.Establishments,
	}); err != nil {
		slog.ErrorContext(ctx, "failed to repo update user", "user_id", in.ID, "error", err)
		return nil, goerror.NewServer(err)
	}

	user, err := s.repoDB.GetUserByID(ctx, in.ID)
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get updated user", "user_id", in.ID, "error", err)
		return nil, goerror.NewServer(err)
	}

	return user, nil
}
