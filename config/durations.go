package config

import (
	"time"

	"github.com/reelmark/reelmark/key"
	"github.com/spf13/viper"
)

// PollInterval returns the native engine status poll interval.
func PollInterval() time.Duration {
	return millis(key.PlayerPollInterval)
}

// StatusInterval returns how often the embedded page is asked for its playback position.
func StatusInterval() time.Duration {
	return millis(key.RendererStatusEvery)
}

// LoadTimeout returns the per-attempt load timeout.
func LoadTimeout() time.Duration {
	return time.Duration(viper.GetInt(key.ResilienceLoadTimeout)) * time.Second
}

// Backoff returns the base delay applied before each retry.
func Backoff() time.Duration {
	return millis(key.ResilienceBackoff)
}

// DefaultVolume returns the initial volume as a fraction in [0, 1].
func DefaultVolume() float64 {
	v := float64(viper.GetInt(key.PlayerDefaultVolume)) / 100
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}

func millis(k string) time.Duration {
	return time.Duration(viper.GetInt(k)) * time.Millisecond
}
