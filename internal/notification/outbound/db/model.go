package db

import (
	"time"

	"github.com/shandysiswandi/isaback/internal/notification/entity"
	"github.com/shandysiswandi/isaback/internal/pkg/valueobject"
)

type template struct {
	ID        int64          `gorm:"primaryKey"`
	JobName   string         `gorm:"uniqueIndex:idx_template_job_channel;not null"`
	Channel   entity.Channel `gorm:"uniqueIndex:idx_template_job_channel;not null"`
	Subject   string
	Body      string `gorm:"not null"`
	UpdatedAt time.Time
}

func (template) TableName() string { return "notification_templates" }

type deliveryLog struct {
	ID        int64                 `gorm:"primaryKey;autoIncrement:false"`
	JobName   string                `gorm:"index;not null"`
	Channel   entity.Channel        `gorm:"not null"`
	Recipient string                `gorm:"not null"`
	Status    entity.DeliveryStatus `gorm:"not null"`
	Error     string
	Meta      valueobject.JSONMap `gorm:"type:jsonb"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (deliveryLog) TableName() string { return "notification_delivery_logs" }

// Models lists the tables owned by the notification module, for migrations.
func Models() []any {
	return []any{&template{}, &deliveryLog{}}
}

func toEntityDeliveryLog(m deliveryLog) entity.DeliveryLog {
	return entity.DeliveryLog{
		ID:        m.ID,
		JobName:   m.JobName,
		Channel:   m.Channel,
		Recipient: m.Recipient,
		Status:    m.Status,
		Error:     m.Error,
		Meta:      m.Meta,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}
