// Package router maps a source descriptor to the backend that can play it and
// builds the matching adapter. It keeps no adapter references; callers own
// adapter lifetime.
package router

import (
	"github.com/reelmark/reelmark/constant"
	"github.com/reelmark/reelmark/control"
	"github.com/reelmark/reelmark/log"
	"github.com/reelmark/reelmark/player"
	"github.com/reelmark/reelmark/renderer"
	"github.com/reelmark/reelmark/source"
)

// Target is a routing decision.
type Target string

const (
	TargetNative      Target = "native"
	TargetEmbedded    Target = "embedded-renderer"
	TargetUnsupported Target = "unsupported"
)

// Route decides which backend plays desc. It is total over source.Kind.
func Route(desc source.Descriptor) Target {
	switch {
	case desc.Kind == source.KindUnsupportedDRM, desc.Kind == source.KindUnrecognized:
		return TargetUnsupported
	case desc.RequiresEmbeddedRenderer:
		return TargetEmbedded
	}

	switch desc.Kind {
	case source.KindDirectFile, source.KindAudioFile, source.KindRealtime:
		return TargetNative
	case source.KindAdaptiveStream:
		if desc.Format == source.FormatHLS {
			return TargetNative
		}
		return TargetEmbedded
	case source.KindPlatformEmbed, source.KindRestricted, source.KindCloudFile, source.KindGenericWeb:
		return TargetEmbedded
	default:
		return TargetUnsupported
	}
}

// EngineFactory opens a fresh native engine for one adapter.
type EngineFactory func(desc source.Descriptor) player.Engine

// MPVEngines starts one mpv process per adapter, titled after the source.
func MPVEngines(desc source.Descriptor) player.Engine {
	return player.NewMPV(desc.PlatformLabel + " - " + constant.App)
}

// Router builds adapters for routed descriptors.
type Router struct {
	engines EngineFactory
	prober  player.Prober
}

// New returns a Router. prober may be nil to skip the native preflight.
func New(engines EngineFactory, prober player.Prober) *Router {
	if engines == nil {
		engines = MPVEngines
	}
	return &Router{engines: engines, prober: prober}
}

// CreateAdapter returns an adapter for desc, or nil when desc is unsupported
// or needs an embedded surface that has not been attached yet.
func (r *Router) CreateAdapter(desc source.Descriptor, surface renderer.Surface, opts ...control.Option) control.Adapter {
	switch Route(desc) {
	case TargetNative:
		src := player.Source{Target: desc.Target}
		if !desc.Local {
			src.Headers = map[string]string{"User-Agent": constant.UserAgent}
		}
		return player.NewNative(r.engines(desc), r.prober, src, opts...)
	case TargetEmbedded:
		if surface == nil {
			log.Warnf("router: no renderer surface for %s", desc)
			return nil
		}
		return renderer.NewEmbedded(surface, desc, opts...)
	default:
		return nil
	}
}
