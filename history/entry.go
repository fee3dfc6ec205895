package history

import (
	"time"

	"github.com/reelmark/reelmark/source"
)

// Resume thresholds: positions this close to either end start from the top.
const (
	minResume    = 5.0
	tailFraction = 0.95
)

// Entry is the saved playback position of one source.
type Entry struct {
	Key       string      `json:"key"`
	Input     string      `json:"input"`
	Kind      source.Kind `json:"kind"`
	Platform  string      `json:"platform"`
	Position  float64     `json:"position"`
	Duration  float64     `json:"duration"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// NewEntry describes desc at position of duration.
func NewEntry(desc source.Descriptor, position, duration float64) Entry {
	return Entry{
		Key:       KeyOf(desc),
		Input:     desc.Input,
		Kind:      desc.Kind,
		Platform:  desc.PlatformLabel,
		Position:  position,
		Duration:  duration,
		UpdatedAt: time.Now(),
	}
}

// KeyOf identifies a source independent of URL shape: platform sources with
// an extracted id share a key across all their URL forms.
func KeyOf(desc source.Descriptor) string {
	if id, ok := desc.ExtractedID.Get(); ok && desc.Platform != "" {
		return desc.Platform + ":" + id
	}
	return desc.Target
}

// ResumeAt reports where playback should resume, if anywhere.
func (e Entry) ResumeAt() (float64, bool) {
	if e.Position < minResume {
		return 0, false
	}
	if e.Duration > 0 && e.Position >= e.Duration*tailFraction {
		return 0, false
	}
	return e.Position, true
}

// Watched is the fraction of the source played, or 0 when the duration is unknown.
func (e Entry) Watched() float64 {
	if e.Duration <= 0 {
		return 0
	}
	return e.Position / e.Duration
}
