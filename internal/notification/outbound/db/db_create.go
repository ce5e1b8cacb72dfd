package db

import (
	"context"
	"errors"

	"github.com/shandysiswandi/isaback/internal/notification/entity"
	"github.com/shandysiswandi/isaback/internal/pkg/database"
	"github.com/shandysiswandi/isaback/internal/pkg/valueobject"
	"gorm.io/gorm"
)

func (s *DB) CreateDeliveryLog(ctx context.Context, dl entity.CreateDeliveryLog) (err error) {
	ctx, span := s.startSpan(ctx, "CreateDeliveryLog")
	defer func() { s.endSpan(span, err) }()

	err = database.MapError(s.db.WithContext(ctx).Create(&deliveryLog{
		ID:        dl.ID,
		JobName:   dl.JobName,
		Channel:   dl.Channel,
		Recipient: dl.Recipient,
		Status:    entity.DeliveryStatusQueued,
		Meta:      valueobject.JSONMap(dl.Meta),
	}).Error)

	return err
}

// UpsertTemplate stores the template of a job and channel, replacing any previous one.
func (s *DB) UpsertTemplate(ctx context.Context, t entity.Template) (err error) {
	ctx, span := s.startSpan(ctx, "UpsertTemplate")
	defer func() { s.endSpan(span, err) }()

	err = database.MapError(s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var m template
		err := tx.Where("job_name = ? AND channel = ?", t.JobName, t.Channel).Take(&m).Error
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		m.JobName, m.Channel, m.Subject, m.Body = t.JobName, t.Channel, t.Subject, t.Body
		return tx.Save(&m).Error
	}))

	return err
}
