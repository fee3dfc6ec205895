// Package source classifies user-supplied URLs and local file references into
// playback descriptors. Classification is pure: no I/O, no shared state.
package source

import "github.com/samber/mo"

// Kind is the closed set of source categories a reference can classify into.
type Kind string

const (
	KindDirectFile     Kind = "direct-file"
	KindAudioFile      Kind = "audio-file"
	KindAdaptiveStream Kind = "adaptive-stream"
	KindRealtime       Kind = "realtime-protocol"
	KindPlatformEmbed  Kind = "platform-embed"
	KindCloudFile      Kind = "cloud-file"
	KindRestricted     Kind = "restricted-content"
	KindGenericWeb     Kind = "generic-web"
	KindUnsupportedDRM Kind = "unsupported-drm"
	KindUnrecognized   Kind = "unrecognized"
)

// Kinds lists every Kind, playable kinds first.
func Kinds() []Kind {
	return []Kind{
		KindDirectFile,
		KindAudioFile,
		KindAdaptiveStream,
		KindRealtime,
		KindPlatformEmbed,
		KindCloudFile,
		KindRestricted,
		KindGenericWeb,
		KindUnsupportedDRM,
		KindUnrecognized,
	}
}

// Sub-tags carried in Descriptor.Format.
const (
	FormatHLS  = "hls"
	FormatDASH = "dash"
	FormatRTMP = "rtmp"
	FormatRTSP = "rtsp"
)

// Descriptor is the immutable result of classifying one input.
type Descriptor struct {
	Kind Kind `json:"kind"`

	// Format is the adaptive-stream or realtime-protocol sub-tag.
	Format string `json:"format,omitempty"`

	// Platform is the machine name of the origin (youtube, drive, ...).
	// Empty for direct media hosted on arbitrary domains.
	Platform string `json:"platform,omitempty"`

	// PlatformLabel is the human-readable origin name. Always populated.
	PlatformLabel string `json:"platform_label"`

	// ExtractedID is the platform-native identifier, present only for
	// deep-linkable kinds.
	ExtractedID mo.Option[string] `json:"extracted_id"`

	RequiresEmbeddedRenderer bool `json:"requires_embedded_renderer"`
	RequiresAgeGate          bool `json:"requires_age_gate"`

	// DiagnosticMessage explains unsupported-drm and unrecognized results.
	DiagnosticMessage mo.Option[string] `json:"diagnostic_message"`

	// Local is set for file://, content:// and bare path references.
	Local bool `json:"local"`

	// Input is the trimmed original input.
	Input string `json:"input"`

	// Target is what a backend should open: a cleaned path for local
	// references, the normalized URL otherwise.
	Target string `json:"target"`
}

// Playable reports whether some backend can attempt this source.
func (d Descriptor) Playable() bool {
	return d.Kind != KindUnsupportedDRM && d.Kind != KindUnrecognized
}

// IsAdaptive reports whether the descriptor is an adaptive stream with the given sub-tag.
func (d Descriptor) IsAdaptive(format string) bool {
	return d.Kind == KindAdaptiveStream && d.Format == format
}

// Restrictive reports whether the origin is known to gate access by account,
// region or embedding permission, which changes how a 403 is explained.
func (d Descriptor) Restrictive() bool {
	switch d.Kind {
	case KindPlatformEmbed, KindRestricted, KindCloudFile:
		return true
	default:
		return false
	}
}

// EmbedURL returns the page the embedded renderer should navigate to. Platforms
// with an extracted id are deep-linked to their canonical embed player.
func (d Descriptor) EmbedURL() string {
	id, ok := d.ExtractedID.Get()
	if !ok {
		return d.Target
	}
	p, found := platformByName(d.Platform)
	if !found || p.embed == nil {
		return d.Target
	}
	return p.embed(id)
}

// String renders the descriptor kind with its sub-tag.
func (d Descriptor) String() string {
	sub := d.Format
	if sub == "" && d.Kind == KindPlatformEmbed {
		sub = d.Platform
	}
	if sub == "" {
		return string(d.Kind)
	}
	return string(d.Kind) + "/" + sub
}
