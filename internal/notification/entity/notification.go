package entity

import "time"

type Channel int

const (
	ChannelUnknown Channel = iota
	ChannelEmail
	ChannelSMS
)

func (c Channel) String() string {
	switch c {
	case ChannelEmail:
		return "email"
	case ChannelSMS:
		return "sms"
	default:
		return "unknown"
	}
}

type DeliveryStatus int

const (
	DeliveryStatusUnknown DeliveryStatus = iota
	DeliveryStatusQueued
	DeliveryStatusSent
	DeliveryStatusFailed
)

func (s DeliveryStatus) String() string {
	switch s {
	case DeliveryStatusQueued:
		return "queued"
	case DeliveryStatusSent:
		return "sent"
	case DeliveryStatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Template renders one job on one channel. Subject is unused for SMS.
type Template struct {
	JobName string
	Channel Channel
	Subject string
	Body    string
}

// DeliveryLog records one attempt to deliver a notification. Meta carries
// the sender and, for email, the rendered subject.
type DeliveryLog struct {
	ID        int64
	JobName   string
	Channel   Channel
	Recipient string
	Status    DeliveryStatus
	Error     string
	Meta      map[string]any
	CreatedAt time.Time
	UpdatedAt time.Time
}

type CreateDeliveryLog struct {
	ID        int64
	JobName   string
	Channel   Channel
	Recipient string
	Meta      map[string]any
}

type UpdateDeliveryLog struct {
	ID     int64
	Status DeliveryStatus
	Error  string
}
