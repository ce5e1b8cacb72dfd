package usecase

import (
	"context"
	"errors"
	"log/slog"

	"github.com/shandysiswandi/isaback/internal/identity/entity"
	"github.com/shandysiswandi/isaback/internal/pkg/authz"
	"github.com/shandysiswandi/isaback/internal/pkg/goerror"
)

func (s *Usecase) UserDetail(ctx context.Context, id string) (*entity.User, error) {
	ctx, span := s.startSpan(ctx, "UserDetail")
	defer span.End()

	if _, err := s.authz.Check(ctx, resourceUsers, authz.ActRead); err != nil {
		return nil, err
	}

	user, err := s.repoDB.GetUserByID(ctx, id)
	if errors.Is(err, goerror.ErrNotFound) {
		return nil, goerror.NewBusiness("User not found", goerror.CodeNotFound)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get user by id", "user_id", id, "error", err)
		return nil, goerror.NewServer(err)
	}

	return user, nil
}
