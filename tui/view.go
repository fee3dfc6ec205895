package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wrap"
	"github.com/reelmark/reelmark/color"
	"github.com/reelmark/reelmark/control"
	"github.com/reelmark/reelmark/icon"
	"github.com/reelmark/reelmark/style"
	"github.com/reelmark/reelmark/util"
)

var paddingStyle = lipgloss.NewStyle().Padding(1, 2)

func (m *model) View() string {
	lines := []string{m.viewTitle(), ""}

	switch {
	case m.err != nil:
		lines = append(lines, m.viewFailure(m.err.Error())...)
	case m.opening:
		lines = append(lines, m.spinnerC.View()+" Opening "+style.Fg(color.Purple)(m.options.Input))
	default:
		lines = append(lines, m.viewPlayback()...)
	}

	if m.notice != "" {
		lines = append(lines, "", style.Faint(m.notice))
	}
	if m.keymap.prompting {
		lines = append(lines, "", m.inputC.View())
	}

	return m.renderLines(lines)
}

func (m *model) viewTitle() string {
	desc, ok := m.desc.Get()
	if !ok {
		return style.Title("Player")
	}

	title := style.Title(desc.PlatformLabel)
	if backend, ok := m.options.Player.Backend(); ok {
		i := icon.Native
		if backend == control.BackendEmbedded {
			i = icon.Embedded
		}
		title += " " + style.Backend(backend)(strings.TrimSpace(icon.Get(i)+" "+string(backend)))
	}
	return title + " " + style.Faint(desc.String())
}

func (m *model) viewPlayback() []string {
	s := m.status

	if message, ok := s.Error.Get(); ok {
		return m.viewFailure(message)
	}

	state := style.State(s.State)(strings.TrimSpace(icon.Get(icon.ForState(s.State)) + " " + string(s.State)))
	if s.State == control.StateLoading || s.State == control.StateBuffering {
		state = m.spinnerC.View() + " " + state
	}
	if retries := m.options.Player.Retries(); retries.Retries > 0 && !retries.Settled {
		state += style.Fg(color.Yellow)(fmt.Sprintf("  %s retry %d", icon.Get(icon.Retry), retries.Retries))
	}

	var fraction float64
	if s.Duration > 0 {
		fraction = s.CurrentTime / s.Duration
	}
	position := fmt.Sprintf("%s / %s", util.FormatSeconds(s.CurrentTime), util.FormatSeconds(s.Duration))

	volume := fmt.Sprintf("%s %d%%", icon.Get(icon.Volume), int(s.Volume*100+0.5))
	if s.Muted {
		volume = style.Fg(color.Red)(strings.TrimSpace(icon.Get(icon.Muted) + " muted"))
	}
	flags := []string{volume, fmt.Sprintf("%.2gx", s.PlaybackRate)}
	if s.Fullscreen {
		flags = append(flags, strings.TrimSpace(icon.Get(icon.Fullscreen)+" fullscreen"))
	}

	return []string{
		state,
		"",
		m.progressC.ViewAs(fraction) + "  " + position,
		"",
		strings.Join(flags, style.Faint("  ·  ")),
	}
}

func (m *model) viewFailure(message string) []string {
	body := lipgloss.NewStyle().Foreground(style.ErrorColor).Render(message)
	return []string{
		style.ErrorTitle("Error"),
		"",
		wrap.String(body, util.Max(20, m.width-4)),
		"",
		style.Faint("r to retry, o to open in browser"),
	}
}

func (m *model) renderLines(lines []string) string {
	h := len(lines)
	l := strings.Join(lines, "\n")
	if m.height > h+4 {
		l += strings.Repeat("\n", m.height-h-4)
	}
	l += "\n" + m.helpC.View(m.keymap)
	return paddingStyle.Render(l)
}
