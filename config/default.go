// Package config provides centralized management for application settings, defaults, and the Viper-based configuration engine.
package config

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"text/template"

	"github.com/reelmark/reelmark/color"
	"github.com/reelmark/reelmark/constant"
	"github.com/reelmark/reelmark/key"
	"github.com/reelmark/reelmark/style"
	"github.com/samber/lo"
	"github.com/spf13/viper"
)

// Field represents a configuration field definition.
type Field struct {
	Key         string
	Value       any
	Description string
}

// Pretty returns a colored string representation of the field for display.
func (f *Field) Pretty() string {
	var b strings.Builder
	lo.Must0(prettyTemplate.Execute(&b, f))
	return b.String()
}

// Env returns the environment variable name for this field.
func (f *Field) Env() string {
	env := strings.ToUpper(EnvKeyReplacer.Replace(f.Key))
	prefix := strings.ToUpper(constant.App + "_")
	if strings.HasPrefix(env, prefix) {
		return env
	}
	return prefix + env
}

// MarshalJSON customizes JSON output to include current and default values.
func (f *Field) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Key         string `json:"key"`
		Value       any    `json:"value"`
		Default     any    `json:"default"`
		Description string `json:"description"`
		Type        string `json:"type"`
		Allowed     string `json:"allowed,omitempty"`
	}{
		Key:         f.Key,
		Value:       viper.Get(f.Key),
		Default:     f.Value,
		Description: f.Description,
		Type:        f.typeName(),
		Allowed:     Allowed(f.Key),
	})
}

// typeName returns the string representation of the field's underlying value type.
func (f *Field) typeName() string {
	switch f.Value.(type) {
	case string:
		return "string"
	case int:
		return "int"
	case bool:
		return "bool"
	case []string:
		return "[]string"
	default:
		return "unknown"
	}
}

// Default holds the map of all configuration fields.
var Default = make(map[string]Field)

// EnvExposed holds keys that are bound to environment variables.
var EnvExposed []string

func init() {
	register := func(k string, v any, desc string) {
		if _, exists := Default[k]; exists {
			panic("Duplicate config key: " + k)
		}
		f := Field{Key: k, Value: v, Description: desc}
		Default[k] = f
		EnvExposed = append(EnvExposed, k)
	}

	register(key.PlayerEngine, "mpv", "Native media engine used for direct files and HLS streams")
	register(key.PlayerPollInterval, 250, "Interval in milliseconds between native engine status polls")
	register(key.PlayerDefaultVolume, 100, "Initial volume in percent (0-100)")
	register(key.PlayerSeekStep, 10, "Seconds skipped by forward and rewind")
	register(key.ResilienceLoadTimeout, 30, "Seconds a source may spend loading before the attempt is abandoned")
	register(key.ResilienceMaxRetries, 4, "Automatic retries after a timeout or transient error")
	register(key.ResilienceBackoff, 1000, "Milliseconds to wait before each retry, multiplied by the retry number")
	register(key.RendererHeadless, false, "Run the embedded browser without a visible window")
	register(key.RendererBrowserBin, "", "Path to a Chromium-compatible browser.\nDownloaded automatically if empty")
	register(key.RendererStatusEvery, 1000, "Interval in milliseconds between embedded page status reports")
	register(key.ProbeEnable, true, "Check reachability of direct sources before handing them to the engine")
	register(key.ProbeTLSFingerprint, true, "Use a browser TLS fingerprint when probing remote hosts")
	register(key.HistorySaveOnPlay, true, "Remember playback positions and resume from them")
	register(key.GateTier, "free", "Membership tier of the current user")
	register(key.GateRestrictedRequiresTier, false, "Require a paid tier for restricted-content sources")
	register(key.IconsVariant, "plain", "Icons variant.\nAvailable options are: emoji, kaomoji, plain, squares, nerd (nerd-font required)")
	register(key.LogsWrite, false, "Write logs")
	register(key.LogsLevel, "info", "Available options are: (from less to most verbose)\npanic, fatal, error, warn, info, debug, trace")
	register(key.LogsJson, false, "Use json format for logs")
	register(key.CliColored, true, "Enable colored CLI output")
	register(key.CliVersionCheck, true, "Enable automatic version check")
}

var prettyTemplate = lo.Must(template.New("pretty").Funcs(template.FuncMap{
	"faint":    style.Faint,
	"bold":     style.Bold,
	"purple":   style.Fg(color.Purple),
	"blue":     style.Fg(color.Blue),
	"cyan":     style.Fg(color.Cyan),
	"value":    func(k string) any { return viper.Get(k) },
	"allowed":  Allowed,
	"typename": func(v any) string { return reflect.TypeOf(v).String() },
	"hl": func(v any) string {
		switch value := v.(type) {
		case bool:
			b := strconv.FormatBool(value)
			if value {
				return style.Fg(color.Green)(b)
			}
			return style.Fg(color.Red)(b)
		case string:
			return style.Fg(color.Yellow)(value)
		default:
			return fmt.Sprint(value)
		}
	},
}).Parse(`{{ faint .Description }}
{{ blue "Key:" }}     {{ purple .Key }}
{{ blue "Env:" }}     {{ .Env }}
{{ blue "Value:" }}   {{ hl (value .Key) }}
{{ blue "Default:" }} {{ hl (.Value) }}
{{ blue "Type:" }}    {{ typename .Value }}{{ with allowed .Key }}
{{ blue "Allowed:" }} {{ . }}{{ end }}`))
