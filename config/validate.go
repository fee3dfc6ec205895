package config

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/reelmark/reelmark/key"
	"github.com/samber/lo"
)

type validator struct {
	check    func(v any) error
	describe string
}

func intRange(low, high int) validator {
	describe := fmt.Sprintf("%d..%d", low, high)
	if high == maxInt {
		describe = fmt.Sprintf(">= %d", low)
	}
	return validator{
		describe: describe,
		check: func(v any) error {
			n, ok := v.(int)
			if !ok {
				return fmt.Errorf("expected an integer, got %v", v)
			}
			if n < low || n > high {
				return fmt.Errorf("%d is outside %s", n, describe)
			}
			return nil
		},
	}
}

func oneOf(options ...string) validator {
	return validator{
		describe: strings.Join(options, ", "),
		check: func(v any) error {
			s, ok := v.(string)
			if !ok || !lo.Contains(options, s) {
				return fmt.Errorf("%v is not one of %v", v, options)
			}
			return nil
		},
	}
}

const maxInt = int(^uint(0) >> 1)

var validators = map[string]validator{
	key.PlayerEngine:          oneOf("mpv"),
	key.PlayerPollInterval:    intRange(50, 10_000),
	key.PlayerDefaultVolume:   intRange(0, 100),
	key.PlayerSeekStep:        intRange(1, 3600),
	key.ResilienceLoadTimeout: intRange(1, 600),
	key.ResilienceMaxRetries:  intRange(0, 20),
	key.ResilienceBackoff:     intRange(0, maxInt),
	key.RendererStatusEvery:   intRange(100, 60_000),
	key.IconsVariant:          oneOf("emoji", "kaomoji", "plain", "squares", "nerd"),
	key.LogsLevel:             oneOf("panic", "fatal", "error", "warn", "info", "debug", "trace"),
}

// Validate checks v against the constraints of the key. Keys without
// constraints accept any value of their default's type.
func Validate(k string, v any) error {
	field, ok := Default[k]
	if !ok {
		return fmt.Errorf("unknown key %s", k)
	}
	if fmt.Sprintf("%T", field.Value) != fmt.Sprintf("%T", v) {
		return fmt.Errorf("%s expects %T, got %T", k, field.Value, v)
	}
	if rule, ok := validators[k]; ok {
		if err := rule.check(v); err != nil {
			return fmt.Errorf("%s: %w", k, err)
		}
	}
	return nil
}

// Allowed describes the accepted values of k, or "" when any value of the
// right type is accepted.
func Allowed(k string) string {
	return validators[k].describe
}

// Parse converts raw command-line words into a value of the key's type and
// validates it.
func Parse(k string, raw []string) (any, error) {
	field, ok := Default[k]
	if !ok {
		return nil, fmt.Errorf("unknown key %s", k)
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("%s: value is required", k)
	}

	var v any
	switch field.Value.(type) {
	case string:
		v = raw[0]
	case int:
		n, err := strconv.Atoi(raw[0])
		if err != nil {
			return nil, fmt.Errorf("%s: invalid integer %q", k, raw[0])
		}
		v = n
	case bool:
		b, err := strconv.ParseBool(raw[0])
		if err != nil {
			return nil, fmt.Errorf("%s: invalid boolean %q", k, raw[0])
		}
		v = b
	case []string:
		v = raw
	default:
		return nil, fmt.Errorf("%s: unsupported type %T", k, field.Value)
	}

	if err := Validate(k, v); err != nil {
		return nil, err
	}
	return v, nil
}
