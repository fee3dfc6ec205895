// Package intent maps typed or transcribed commands ("pause", "forward 30",
// "volume 50%") onto control operations. Transcription noise is tolerated
// with subsequence and edit-distance matching.
package intent

import (
	"sort"
	"strconv"
	"strings"
	"unicode"

	levenshtein "github.com/ka-weihe/fast-levenshtein"
	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/samber/lo"
	"github.com/samber/mo"
)

// Action is a recognised command.
type Action string

const (
	ActionPlay             Action = "play"
	ActionPause            Action = "pause"
	ActionToggle           Action = "toggle"
	ActionStop             Action = "stop"
	ActionForward          Action = "forward"
	ActionRewind           Action = "rewind"
	ActionSeek             Action = "seek"
	ActionVolume           Action = "volume"
	ActionVolumeUp         Action = "volume-up"
	ActionVolumeDown       Action = "volume-down"
	ActionMute             Action = "mute"
	ActionUnmute           Action = "unmute"
	ActionToggleMute       Action = "toggle-mute"
	ActionFaster           Action = "faster"
	ActionSlower           Action = "slower"
	ActionSpeed            Action = "speed"
	ActionFullscreen       Action = "fullscreen"
	ActionExitFullscreen   Action = "exit-fullscreen"
	ActionToggleFullscreen Action = "toggle-fullscreen"
)

// Intent is a parsed command. Value is seconds for seeks and skips, a
// fraction for volume and a multiplier for speed.
type Intent struct {
	Action Action
	Value  mo.Option[float64]
}

func (i Intent) String() string {
	if v, ok := i.Value.Get(); ok {
		return string(i.Action) + " " + strconv.FormatFloat(v, 'f', -1, 64)
	}
	return string(i.Action)
}

type phrase struct {
	text   string
	action Action
}

// phrases are matched longest first so that "exit fullscreen" wins over "fullscreen".
var phrases = []phrase{
	{"play", ActionPlay},
	{"resume", ActionPlay},
	{"continue", ActionPlay},
	{"start", ActionPlay},
	{"unpause", ActionPlay},
	{"pause", ActionPause},
	{"hold on", ActionPause},
	{"wait", ActionPause},
	{"play pause", ActionToggle},
	{"toggle", ActionToggle},
	{"stop", ActionStop},
	{"forward", ActionForward},
	{"fast forward", ActionForward},
	{"skip", ActionForward},
	{"skip ahead", ActionForward},
	{"ahead", ActionForward},
	{"rewind", ActionRewind},
	{"back", ActionRewind},
	{"go back", ActionRewind},
	{"skip back", ActionRewind},
	{"seek", ActionSeek},
	{"seek to", ActionSeek},
	{"go to", ActionSeek},
	{"jump to", ActionSeek},
	{"volume", ActionVolume},
	{"set volume", ActionVolume},
	{"volume up", ActionVolumeUp},
	{"louder", ActionVolumeUp},
	{"turn it up", ActionVolumeUp},
	{"volume down", ActionVolumeDown},
	{"quieter", ActionVolumeDown},
	{"softer", ActionVolumeDown},
	{"turn it down", ActionVolumeDown},
	{"mute", ActionMute},
	{"silence", ActionMute},
	{"unmute", ActionUnmute},
	{"sound on", ActionUnmute},
	{"toggle mute", ActionToggleMute},
	{"faster", ActionFaster},
	{"speed up", ActionFaster},
	{"slower", ActionSlower},
	{"slow down", ActionSlower},
	{"speed", ActionSpeed},
	{"playback speed", ActionSpeed},
	{"rate", ActionSpeed},
	{"normal speed", ActionSpeed},
	{"fullscreen", ActionFullscreen},
	{"full screen", ActionFullscreen},
	{"maximize", ActionFullscreen},
	{"exit fullscreen", ActionExitFullscreen},
	{"exit full screen", ActionExitFullscreen},
	{"leave fullscreen", ActionExitFullscreen},
	{"windowed", ActionExitFullscreen},
	{"toggle fullscreen", ActionToggleFullscreen},
}

var byLength = func() []phrase {
	sorted := append([]phrase(nil), phrases...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return len(sorted[i].text) > len(sorted[j].text)
	})
	return sorted
}()

var phraseTexts = lo.Map(phrases, func(p phrase, _ int) string { return p.text })

// filler words carry no meaning for any command.
var filler = map[string]bool{
	"please": true, "the": true, "video": true, "player": true,
	"a": true, "an": true, "now": true, "by": true, "for": true,
	"second": true, "seconds": true, "sec": true, "secs": true,
	"percent": true, "times": true, "x": true,
}

// needsValue lists actions that mean nothing without a number.
var needsValue = map[Action]bool{
	ActionSeek:   true,
	ActionVolume: true,
}

// Parse recognises text as a command.
func Parse(text string) (Intent, bool) {
	words, value := tokenize(text)
	if len(words) == 0 {
		return Intent{}, false
	}

	action, ok := match(strings.Join(words, " "))
	if !ok {
		return Intent{}, false
	}

	in := Intent{Action: action}
	if v, ok := value.Get(); ok {
		in.Value = mo.Some(normalizeValue(action, v))
	} else if action == ActionSpeed && strings.Contains(strings.ToLower(text), "normal") {
		in.Value = mo.Some(1.0)
	}

	if needsValue[action] && in.Value.IsAbsent() {
		return Intent{}, false
	}
	if action == ActionSpeed && in.Value.IsAbsent() {
		return Intent{}, false
	}
	return in, true
}

// match finds the action for a normalized phrase: exact, then contained
// words, then subsequence, then edit distance.
func match(text string) (Action, bool) {
	for _, p := range phrases {
		if p.text == text {
			return p.action, true
		}
	}

	padded := " " + text + " "
	for _, p := range byLength {
		if strings.Contains(padded, " "+p.text+" ") {
			return p.action, true
		}
	}

	if ranks := fuzzy.RankFindNormalizedFold(text, phraseTexts); len(ranks) > 0 {
		sort.Sort(ranks)
		if best := ranks[0]; best.Distance <= len(text) {
			return phrases[best.OriginalIndex].action, true
		}
	}

	best, bestDistance := phrase{}, -1
	for _, p := range phrases {
		d := levenshtein.Distance(text, p.text)
		if d <= tolerance(p.text) && (bestDistance < 0 || d < bestDistance) {
			best, bestDistance = p, d
		}
	}
	if bestDistance >= 0 {
		return best.action, true
	}
	return "", false
}

func tolerance(s string) int {
	switch n := len(s); {
	case n < 4:
		return 0
	case n < 7:
		return 2
	default:
		return n / 3
	}
}

// tokenize lowercases text, splits it into words and pulls out the first
// number. "1:30" is read as minutes and seconds, a following "minutes" scales
// the number, and "%" marks a percentage.
func tokenize(text string) ([]string, mo.Option[float64]) {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '.' && r != ':' && r != '%'
	})

	var (
		words []string
		value mo.Option[float64]
	)
	for i, f := range fields {
		f = strings.Trim(f, ".")
		if f == "" {
			continue
		}
		if n, ok := parseNumber(f); ok {
			if value.IsAbsent() {
				if i+1 < len(fields) && isMinutes(fields[i+1]) {
					n *= 60
				}
				value = mo.Some(n)
			}
			continue
		}
		if isMinutes(f) || filler[f] {
			continue
		}
		words = append(words, f)
	}
	return words, value
}

func isMinutes(word string) bool {
	return word == "minute" || word == "minutes" || word == "min" || word == "mins"
}

func parseNumber(s string) (float64, bool) {
	s = strings.TrimSuffix(strings.TrimSuffix(s, "x"), "%")
	if s == "" || !(unicode.IsDigit(rune(s[0])) || s[0] == '.') {
		return 0, false
	}
	if parts := strings.Split(s, ":"); len(parts) > 1 {
		total := 0.0
		for _, p := range parts {
			n, err := strconv.Atoi(p)
			if err != nil || n < 0 {
				return 0, false
			}
			total = total*60 + float64(n)
		}
		return total, true
	}
	n, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// normalizeValue turns spoken volume percentages into fractions.
func normalizeValue(action Action, v float64) float64 {
	if action == ActionVolume && v > 1 {
		return v / 100
	}
	return v
}
