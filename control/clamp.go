package control

import (
	"math"

	"github.com/reelmark/reelmark/util"
)

// ClampVolume bounds v to [0, 1]. NaN becomes 0.
func ClampVolume(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return util.Clamp(v, 0, 1)
}

// ClampRate bounds r to [MinRate, MaxRate]. NaN becomes 1.
func ClampRate(r float64) float64 {
	if math.IsNaN(r) {
		return 1
	}
	return util.Clamp(r, MinRate, MaxRate)
}

// ClampSeek bounds t to [0, duration]. An unknown duration (<= 0) only bounds below.
func ClampSeek(t, duration float64) float64 {
	if math.IsNaN(t) || t < 0 {
		return 0
	}
	if duration > 0 && t > duration {
		return duration
	}
	return t
}
