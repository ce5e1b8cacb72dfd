package db

import (
	"context"

	"github.com/shandysiswandi/isaback/internal/notification/entity"
	"github.com/shandysiswandi/isaback/internal/pkg/database"
	"github.com/shandysiswandi/isaback/internal/pkg/goerror"
)

func (s *DB) UpdateDeliveryLogStatus(ctx context.Context, u entity.UpdateDeliveryLog) (err error) {
	ctx, span := s.startSpan(ctx, "UpdateDeliveryLogStatus")
	defer func() { s.endSpan(span, err) }()

	res := s.db.WithContext(ctx).Model(&deliveryLog{}).
		Where("id = ?", u.ID).
		Updates(map[string]any{"status": u.Status, "error": u.Error})
	if err = database.MapError(res.Error); err != nil {
		return err
	}
	if res.RowsAffected == 0 {
		return goerror.ErrNotFound
	}

	return nil
}
