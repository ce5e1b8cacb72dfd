package db

import (
	"context"

	"github.com/shandysiswandi/isaback/internal/notification/entity"
	"github.com/shandysiswandi/isaback/internal/pkg/database"
)

func (s *DB) GetTemplate(ctx context.Context, jobName string, ch entity.Channel) (_ *entity.Template, err error) {
	ctx, span := s.startSpan(ctx, "GetTemplate")
	defer func() { s.endSpan(span, err) }()

	var m template
	err = database.MapError(s.db.WithContext(ctx).
		Where("job_name = ? AND channel = ?", jobName, ch).
		Take(&m).Error)
	if err != nil {
		return nil, err
	}

	return &entity.Template{JobName: m.JobName, Channel: m.Channel, Subject: m.Subject, Body: m.Body}, nil
}

func (s *DB) ListDeliveryLogs(ctx context.Context, limit, offset int) (_ []entity.DeliveryLog, total int64, err error) {
	ctx, span := s.startSpan(ctx, "ListDeliveryLogs")
	defer func() { s.endSpan(span, err) }()

	if err = database.MapError(s.db.WithContext(ctx).Model(&deliveryLog{}).Count(&total).Error); err != nil {
		return nil, 0, err
	}

	var rows []deliveryLog
	err = database.MapError(s.db.WithContext(ctx).
		Order("id DESC").
		Limit(limit).
		Offset(offset).
		Find(&rows).Error)
	if err != nil {
		return nil, 0, err
	}

	out := make([]entity.DeliveryLog, 0, len(rows))
	for _, r := range rows {
		out = append(out, toEntityDeliveryLog(r))
	}

	return out, total, nil
}
