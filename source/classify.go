package source

import (
	"fmt"
	"net"
	"net/url"
	"path"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/samber/lo"
	"github.com/samber/mo"
	"golang.org/x/net/publicsuffix"
)

var (
	audioExtensions    = []string{".mp3", ".m4a", ".wav", ".flac", ".aac", ".wma", ".opus"}
	videoExtensions    = []string{".mp4", ".m4v", ".mov", ".mkv", ".webm", ".avi", ".wmv", ".flv", ".3gp", ".ts", ".ogv", ".mpg", ".mpeg"}
	manifestExtensions = map[string]string{".m3u8": FormatHLS, ".mpd": FormatDASH}
	realtimeSchemes    = map[string]string{"rtmp": FormatRTMP, "rtmps": FormatRTMP, "rtsp": FormatRTSP, "rtsps": FormatRTSP}
)

var (
	windowsPathPattern = regexp.MustCompile(`^(?:[A-Za-z]:[\\/]|\\\\)`)
	bareDomainPattern  = regexp.MustCompile(`^[A-Za-z0-9-]+(?:\.[A-Za-z0-9-]+)+(?::\d+)?(?:[/?#].*)?$`)
)

const (
	localLabel   = "Local file"
	unknownLabel = "Unknown"
)

// Classify maps an input string to a Descriptor. It never fails: malformed
// input yields KindUnrecognized with a diagnostic message.
//
// Precedence is fixed: local paths, DRM blocklist, streaming protocols,
// audio extensions, video extensions, restricted domains, cloud storage,
// named embed platforms, then generic web.
func Classify(input string) Descriptor {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return unrecognized(trimmed, "The link is empty. Paste a video URL or choose a local media file.")
	}

	if d, ok := classifyLocal(trimmed); ok {
		return d
	}

	u, ok := parseRemote(trimmed)
	if !ok {
		return unrecognized(trimmed, "This is not a web link or a local media file. Check that the whole URL was copied.")
	}

	host := canonicalHost(u.Host)
	if host == "" {
		return unrecognized(trimmed, "The link has no host name. Check that the whole URL was copied.")
	}
	base := Descriptor{Input: trimmed, Target: u.String(), PlatformLabel: originLabel(host)}

	if p, ok := findPlatform(drmPlatforms, host, u.Path); ok {
		d := base
		d.Kind = KindUnsupportedDRM
		d.Platform = p.name
		d.PlatformLabel = p.label
		d.DiagnosticMessage = mo.Some(fmt.Sprintf(
			"%s only plays inside its own DRM-protected apps and offers no public player that can be embedded. Open it in the official %s app instead.",
			p.label, p.label,
		))
		return d
	}

	if format, ok := realtimeSchemes[strings.ToLower(u.Scheme)]; ok {
		d := base
		d.Kind = KindRealtime
		d.Format = format
		return d
	}

	if !isWebScheme(u.Scheme) {
		return unrecognized(trimmed, fmt.Sprintf("Links using %q are not supported. Use an http(s) URL or a local file.", u.Scheme+"://"))
	}

	ext := strings.ToLower(path.Ext(u.Path))

	if format, ok := manifestExtensions[ext]; ok {
		d := base
		d.Kind = KindAdaptiveStream
		d.Format = format
		d.RequiresEmbeddedRenderer = format == FormatDASH
		return d
	}

	if lo.Contains(audioExtensions, ext) {
		d := base
		d.Kind = KindAudioFile
		return d
	}

	if lo.Contains(videoExtensions, ext) {
		d := base
		d.Kind = KindDirectFile
		return d
	}

	if p, ok := findPlatform(restrictedPlatforms, host, u.Path); ok {
		return fromPlatform(base, p, KindRestricted, u)
	}

	if p, ok := findPlatform(cloudPlatforms, host, u.Path); ok {
		return fromPlatform(base, p, KindCloudFile, u)
	}

	if p, ok := findPlatform(embedPlatforms, host, u.Path); ok {
		return fromPlatform(base, p, KindPlatformEmbed, u)
	}

	d := base
	d.Kind = KindGenericWeb
	d.RequiresEmbeddedRenderer = true
	return d
}

func fromPlatform(base Descriptor, p platform, kind Kind, u *url.URL) Descriptor {
	d := base
	d.Kind = kind
	d.Platform = p.name
	d.PlatformLabel = p.label
	d.RequiresEmbeddedRenderer = true
	d.RequiresAgeGate = kind == KindRestricted
	if p.extract != nil {
		if id, ok := p.extract(u); ok {
			d.ExtractedID = mo.Some(id)
		}
	}
	return d
}

func unrecognized(input, message string) Descriptor {
	return Descriptor{
		Kind:              KindUnrecognized,
		PlatformLabel:     unknownLabel,
		DiagnosticMessage: mo.Some(message),
		Input:             input,
		Target:            input,
	}
}

// classifyLocal handles file://, content:// and bare absolute paths. Bare paths
// count only when they end in a known media extension. A file:// or
// content:// reference that names nothing is reported as unrecognized.
func classifyLocal(input string) (Descriptor, bool) {
	lower := strings.ToLower(input)

	var target string
	explicit := true
	switch {
	case strings.HasPrefix(lower, "file://"):
		u, err := url.Parse(input)
		if err != nil || u.Path == "" {
			target = input[len("file://"):]
		} else {
			target = u.Path
		}
		if strings.Trim(target, `/\`) == "" {
			return unrecognized(input, "The file link names no file. Choose a media file instead of a folder."), true
		}
	case strings.HasPrefix(lower, "content://"):
		if strings.Trim(input[len("content://"):], "/") == "" {
			return unrecognized(input, "The content link names no file. Share the media file again."), true
		}
		target = input
	case strings.HasPrefix(input, "/"), windowsPathPattern.MatchString(input):
		target = input
		explicit = false
	default:
		return Descriptor{}, false
	}

	d := Descriptor{
		Local:         true,
		Input:         input,
		PlatformLabel: localLabel,
	}

	ext := strings.ToLower(path.Ext(strings.ReplaceAll(target, `\`, "/")))
	if i := strings.IndexAny(ext, "?#"); i >= 0 {
		ext = ext[:i]
	}

	switch format, manifest := manifestExtensions[ext]; {
	case manifest:
		d.Kind = KindAdaptiveStream
		d.Format = format
		d.RequiresEmbeddedRenderer = format == FormatDASH
	case lo.Contains(audioExtensions, ext):
		d.Kind = KindAudioFile
	case lo.Contains(videoExtensions, ext):
		d.Kind = KindDirectFile
	case explicit:
		// Content URIs and file URLs often hide the container; let the engine sniff it.
		d.Kind = KindDirectFile
	default:
		return Descriptor{}, false
	}

	if strings.HasPrefix(lower, "content://") {
		d.Target = target
	} else {
		d.Target = filepath.Clean(target)
	}
	return d, true
}

// parseRemote parses input as a URL, accepting bare domains such as
// "vimeo.com/123" by assuming https.
func parseRemote(input string) (*url.URL, bool) {
	if strings.ContainsAny(input, " \t\n\r\x00") {
		return nil, false
	}

	candidate := input
	if strings.HasPrefix(candidate, "//") {
		candidate = "https:" + candidate
	} else if !strings.Contains(candidate, "://") {
		if !bareDomainPattern.MatchString(candidate) {
			return nil, false
		}
		candidate = "https://" + candidate
		u, err := url.Parse(candidate)
		if err != nil || !knownDomain(canonicalHost(u.Host)) {
			return nil, false
		}
		// "clip.mov" is a file name even though .mov is a TLD.
		if strings.Trim(u.Path, "/") == "" && isMediaExtension(path.Ext(u.Host)) {
			return nil, false
		}
		return u, true
	}

	u, err := url.Parse(candidate)
	if err != nil || u.Scheme == "" {
		return nil, false
	}
	return u, true
}

// knownDomain reports whether a bare host ends in a real public suffix, so
// that "video.mp4" is not mistaken for a host. Private suffixes such as
// github.io are listed with more than one label and count too.
func knownDomain(host string) bool {
	if host == "" {
		return false
	}
	if net.ParseIP(host) != nil {
		return true
	}
	suffix, icann := publicsuffix.PublicSuffix(host)
	if suffix == host {
		return false
	}
	return icann || strings.Contains(suffix, ".")
}

func isMediaExtension(ext string) bool {
	ext = strings.ToLower(ext)
	return lo.Contains(videoExtensions, ext) || lo.Contains(audioExtensions, ext)
}

func isWebScheme(scheme string) bool {
	s := strings.ToLower(scheme)
	return s == "http" || s == "https"
}

// canonicalHost lowercases host, drops the port and common mobile/www prefixes.
func canonicalHost(host string) string {
	h := strings.ToLower(host)
	if name, _, err := net.SplitHostPort(h); err == nil {
		h = name
	}
	h = strings.TrimSuffix(h, ".")
	for _, prefix := range []string{"www.", "m.", "mobile."} {
		h = strings.TrimPrefix(h, prefix)
	}
	return h
}

// originLabel names an arbitrary host by its registrable domain.
func originLabel(host string) string {
	if host == "" {
		return unknownLabel
	}
	if net.ParseIP(strings.Trim(host, "[]")) != nil {
		return host
	}
	if domain, err := publicsuffix.EffectiveTLDPlusOne(host); err == nil {
		return domain
	}
	return host
}
