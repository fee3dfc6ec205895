package session

import (
	"errors"
	"fmt"

	"github.com/reelmark/reelmark/key"
	"github.com/reelmark/reelmark/source"
	"github.com/spf13/viper"
)

// ErrVetoed is returned when a gate refuses a source before any adapter exists.
var ErrVetoed = errors.New("playback not permitted")

// Gate may veto a classified source before playback starts.
type Gate interface {
	Allow(desc source.Descriptor) error
}

// GateFunc adapts a function to Gate.
type GateFunc func(desc source.Descriptor) error

func (f GateFunc) Allow(desc source.Descriptor) error { return f(desc) }

// AllowAll never vetoes.
var AllowAll Gate = GateFunc(func(source.Descriptor) error { return nil })

// FreeTier is the tier that cannot open restricted content when the
// restriction is enabled.
const FreeTier = "free"

// TierGate vetoes restricted content for the free tier when configured to.
type TierGate struct {
	Tier                   string
	RestrictedRequiresTier bool
}

// TierGateFromConfig reads the gate.* config keys.
func TierGateFromConfig() TierGate {
	return TierGate{
		Tier:                   viper.GetString(key.GateTier),
		RestrictedRequiresTier: viper.GetBool(key.GateRestrictedRequiresTier),
	}
}

func (g TierGate) Allow(desc source.Descriptor) error {
	if desc.Kind != source.KindRestricted || !g.RestrictedRequiresTier {
		return nil
	}
	if g.Tier == "" || g.Tier == FreeTier {
		return fmt.Errorf("%w: %s needs a paid tier", ErrVetoed, desc.PlatformLabel)
	}
	return nil
}
