// Package where resolves the directories reelmark reads and writes.
package where

import (
	"os"
	"path/filepath"

	"github.com/reelmark/reelmark/constant"
	"github.com/reelmark/reelmark/filesystem"
	"github.com/samber/lo"
)

// EnvConfigPath is the environment variable identifier used to override the default configuration directory.
const EnvConfigPath = "REELMARK_CONFIG_PATH"

// ensureDir guarantees the existence of a directory at the specified path, creating it if necessary.
func ensureDir(path string) string {
	lo.Must0(filesystem.API().MkdirAll(path, os.ModePerm))
	return path
}

// Config is the directory holding the config file, history and logs.
// REELMARK_CONFIG_PATH overrides the platform default.
func Config() string {
	if custom, ok := os.LookupEnv(EnvConfigPath); ok {
		return ensureDir(custom)
	}

	base := lo.Must(os.UserConfigDir())
	return ensureDir(filepath.Join(base, constant.App))
}

// Cache holds probe results, the release check and the downloaded browser.
func Cache() string {
	base, err := os.UserCacheDir()
	if err != nil {
		base = filepath.Join(".", "cache")
	}
	return ensureDir(filepath.Join(base, constant.App))
}

// Logs resolves the absolute path to the directory used for application diagnostic and audit logs.
func Logs() string {
	return ensureDir(filepath.Join(Config(), "logs"))
}

// History resolves the absolute path to the persisted playback position registry.
func History() string {
	return filepath.Join(Config(), "history.json")
}

// Browser resolves the directory holding the downloaded embedded-renderer browser and its profile.
func Browser() string {
	return ensureDir(filepath.Join(Cache(), "browser"))
}

// Temp resolves a unique, volatile filesystem path for transient application artifacts.
func Temp() string {
	return ensureDir(filepath.Join(os.TempDir(), constant.App))
}
