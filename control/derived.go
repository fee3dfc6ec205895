package control

// Forward skips ahead by delta seconds from the current position.
func Forward(c Controller, delta float64) error {
	return c.Seek(c.Status().CurrentTime + delta)
}

// Rewind skips back by delta seconds from the current position.
func Rewind(c Controller, delta float64) error {
	return c.Seek(c.Status().CurrentTime - delta)
}

// ToggleMute flips the muted flag.
func ToggleMute(c Controller) error {
	return c.SetMuted(!c.Status().Muted)
}

// ToggleFullscreen flips between fullscreen and windowed.
func ToggleFullscreen(c Controller) error {
	if c.Status().Fullscreen {
		return c.ExitFullscreen()
	}
	return c.EnterFullscreen()
}

// TogglePlay pauses an active playback and resumes anything else.
func TogglePlay(c Controller) error {
	if c.Status().State == StatePlaying {
		return c.Pause()
	}
	return c.Play()
}
