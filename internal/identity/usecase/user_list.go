package usecase

import (
	"context"
	"log/slog"

	"github.com/shandysiswandi/isaback/internal/identity/entity"
	"github.com/shandysiswandi/isaback/internal/pkg/authz"
	"github.com/shandysiswandi/isaback/internal/pkg/goerror"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

type UserListInput struct {
	Search string
	Page   int32
	Size   int32
}

type UserListOutput struct {
	Users []entity.User
	Total int64
	Page  int32
	Size  int32
}

func (s *Usecase) UserList(ctx context.Context, in UserListInput) (*UserListOutput, error) {
	ctx, span := s.startSpan(ctx, "UserList")
	defer span.End()

	if _, err := s.authz.Check(ctx, resourceUsers, authz.ActRead); err != nil {
		return nil, err
	}

	if in.Page < 1 {
		in.Page = 1
	}
	if in.Size < 1 {
		in.Size = defaultPageSize
	}
	in.Size = min(in.Size, maxPageSize)

	users, total, err := s.repoDB.GetUserList(ctx, entity.UserListFilter{
		Search: in.Search,
		Limit:  int(in.Size),
		Offset: int((in.Page - 1) * in.Size),
	})
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get user list", "error", err)
		return nil, goerror.NewServer(err)
	}

	return &UserListOutput{Users: users, Total: total, Page: in.Page, Size: in.Size}, nil
}
