package domain

import (
	"context"
	"time"
)

// RawEvent represents an unprocessed message from the source topic.
type RawEvent struct {
	Key       []byte
	Value     []byte
	Headers   map[string]string
	Topic     string
	Partition int
	Offset    int64
	Timestamp time.Time
	Commit    func(ctx context.Context) error
}

// Violation is one failed consistency check, flattened for serialization.
type Violation struct {
	Kind     string    `json:"kind"`
	Field    string    `json:"field,omitempty"`
	Values   []float64 `json:"values,omitempty"`
	Actual   *int      `json:"actual,omitempty"`
	Expected *int      `json:"expected,omitempty"`
	Message  string    `json:"message"`
}

// Report is the validation outcome for one sounding, destined for the sink topic.
type Report struct {
	SoundingID  string      `json:"sounding_id"`
	StationID   string      `json:"station_id,omitempty"`
	ValidTime   time.Time   `json:"valid_time"`
	LeadTime    int         `json:"lead_time"`
	Levels      int         `json:"levels"`
	Valid       bool        `json:"valid"`
	Violations  []Violation `json:"violations"`
	ValidatedAt time.Time   `json:"validated_at"`
}
