package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"
)

// ParseRawSounding deserializes a RawEvent's value into a Sounding.
func ParseRawSounding(raw RawEvent) (Sounding, error) {
	var snd Sounding
	if err := json.Unmarshal(raw.Value, &snd); err != nil {
		return Sounding{}, fmt.Errorf("parse raw sounding: %w", err)
	}
	return snd, nil
}

// NewReport assembles the report for a sounding from its violations and
// stamps it with the current time. A sounding with no violations is valid.
func NewReport(snd Sounding, violations []Violation) Report {
	if violations == nil {
		violations = []Violation{}
	}
	return Report{
		SoundingID:  SoundingID(snd),
		StationID:   snd.Station().ID,
		ValidTime:   snd.ValidTime(),
		LeadTime:    snd.LeadTime(),
		Levels:      len(snd.PressureProfile()),
		Valid:       len(violations) == 0,
		Violations:  violations,
		ValidatedAt: clock.Now().UTC(),
	}
}

// SoundingID produces a deterministic ID from the station, valid time and lead
// time, so replaying the same sounding yields the same report key.
func SoundingID(snd Sounding) string {
	input := fmt.Sprintf("%s|%s|%d", snd.Station().ID, snd.ValidTime().UTC().Format(time.RFC3339), snd.LeadTime())
	hash := sha256.Sum256([]byte(input))
	return "snd-" + hex.EncodeToString(hash[:8])
}
