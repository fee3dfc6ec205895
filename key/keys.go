// Package key defines the canonical set of configuration identifiers used for centralized settings management.
package key

// Media Playback - these keys configure the native engine and its status synchronization.
const (
	PlayerEngine        = "player.engine"
	PlayerPollInterval  = "player.poll_interval_ms"
	PlayerDefaultVolume = "player.default_volume"
	PlayerSeekStep      = "player.seek_step"
)

// Load Resilience - these keys govern timeout detection and the bounded auto-retry policy.
const (
	ResilienceLoadTimeout = "resilience.load_timeout_seconds"
	ResilienceMaxRetries  = "resilience.max_retries"
	ResilienceBackoff     = "resilience.backoff_ms"
)

// Embedded Renderer - these keys configure the browser surface used for web-only players.
const (
	RendererHeadless    = "renderer.headless"
	RendererBrowserBin  = "renderer.browser_bin"
	RendererStatusEvery = "renderer.status_interval_ms"
)

// Preflight Probe - these keys control the HTTP reachability check run before native playback.
const (
	ProbeEnable         = "probe.enable"
	ProbeTLSFingerprint = "probe.tls_fingerprint"
)

// History Tracking - these keys configure the persistence of playback positions.
const (
	HistorySaveOnPlay = "history.save_on_play"
)

// Membership Gate - these keys describe the tier used to veto restricted playback.
const (
	GateTier                   = "gate.tier"
	GateRestrictedRequiresTier = "gate.restricted_requires_tier"
)

// Iconography - these keys manage the visual rendering of UI symbols.
const (
	IconsVariant = "icons.variant"
)

// Logging Infrastructure - these keys manage the application's internal diagnostics.
const (
	LogsWrite = "logs.write"
	LogsLevel = "logs.level"
	LogsJson  = "logs.json"
)

// CLI Execution Environment - these flags and settings govern the non-TUI application behavior.
const (
	CliColored      = "cli.colored"
	CliVersionCheck = "cli.version_check"
)
