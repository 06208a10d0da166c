package model

import "time"

const (
	BroadcastAnniversary       = "anniversary"
	BroadcastHistoricalMoments = "historical_moments"
	BroadcastHistoricalEvents  = "historical_events"
)

type Report struct {
	ID            int64
	ReportDate    time.Time
	Content       string
	BroadcastType string
	AudioURL      *string
	CreatedAt     time.Time
	IsPushed      bool
}

// HasAudio reports whether a synthesized artifact is attached.
func (r *Report) HasAudio() bool {
	return r.AudioURL != nil && *r.AudioURL != ""
}
