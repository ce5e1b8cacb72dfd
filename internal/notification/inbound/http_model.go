package inbound

import "time"

type DeliveryResponse struct {
	ID        int64          `json:"id,string"`
	Job       string         `json:"job"`
	Channel   string         `json:"channel"`
	Recipient string         `json:"recipient"`
	Status    string         `json:"status"`
	Error     string         `json:"error,omitempty"`
	Meta      map[string]any `json:"meta,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}

type DeliveriesResponse struct {
	Deliveries []DeliveryResponse `json:"deliveries"`
	// meta
	total int64
	size  int32
	page  int32
}

func (r DeliveriesResponse) Meta() map[string]any {
	return map[string]any{
		"total": r.total,
		"size":  r.size,
		"page":  r.page,
	}
}
