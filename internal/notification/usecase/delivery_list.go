package usecase

import (
	"context"
	"log/slog"

	"github.com/shandysiswandi/isaback/internal/notification/entity"
	"github.com/shandysiswandi/isaback/internal/pkg/authz"
	"github.com/shandysiswandi/isaback/internal/pkg/goerror"
)

type DeliveryListInput struct {
	Page int32
	Size int32
}

type DeliveryListOutput struct {
	Deliveries []entity.DeliveryLog
	Total      int64
	Page       int32
	Size       int32
}

func (s *Usecase) DeliveryList(ctx context.Context, in DeliveryListInput) (*DeliveryListOutput, error) {
	ctx, span := s.startSpan(ctx, "DeliveryList")
	defer span.End()

	if _, err := s.authz.Check(ctx, "notifications", authz.ActRead); err != nil {
		return nil, err
	}

	if in.Page < 1 {
		in.Page = 1
	}
	if in.Size < 1 {
		in.Size = 20
	}
	in.Size = min(in.Size, 100)

	logs, total, err := s.repoDB.ListDeliveryLogs(ctx, int(in.Size), int((in.Page-1)*in.Size))
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo list delivery logs", "error", err)
		return nil, goerror.NewServer(err)
	}

	return &DeliveryListOutput{Deliveries: logs, Total: total, Page: in.Page, Size: in.Size}, nil
}
