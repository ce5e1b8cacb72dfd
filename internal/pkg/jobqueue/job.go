package jobqueue

import (
	"encoding/json"
	"time"
)

// Job is one unit of work travelling through the queue.
type Job struct {
	ID         int64           `json:"id,string"`
	Name       string          `json:"name"`
	Data       json.RawMessage `json:"data,omitempty"`
	EnqueuedAt time.Time       `json:"enqueued_at"`
}

// Decode unmarshals the job data into v. Empty data leaves v untouched.
func (j Job) Decode(v any) error {
	if len(j.Data) == 0 || string(j.Data) == "null" {
		return nil
	}
	return json.Unmarshal(j.Data, v)
}
