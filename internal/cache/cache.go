// Package cache stores small JSON records under the cache directory, keyed by
// a hash and expired by modification time.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io/fs"
	"path/filepath"
	"strings"
	"time"

	"github.com/reelmark/reelmark/filesystem"
	"github.com/reelmark/reelmark/where"
)

// TTL is the longest any record is kept.
const TTL = 7 * 24 * time.Hour

func dir() string {
	return filepath.Join(where.Cache(), "records")
}

// GenerateKey derives a stable key from a subject and a namespace.
func GenerateKey(subject, namespace string) string {
	hash := sha256.Sum256([]byte(strings.TrimSpace(subject) + "\x00" + namespace))
	return hex.EncodeToString(hash[:])
}

// Read decodes the record for key into target if it is younger than maxAge.
func Read(key string, maxAge time.Duration, target interface{}) bool {
	path := filepath.Join(dir(), key)

	info, err := filesystem.API().Stat(path)
	if err != nil || time.Since(info.ModTime()) > maxAge {
		return false
	}

	f, err := filesystem.API().Open(path)
	if err != nil {
		return false
	}
	defer f.Close()

	return json.NewDecoder(f).Decode(target) == nil
}

// Write stores data for key, replacing the previous record atomically.
func Write(key string, data interface{}) error {
	if err := filesystem.API().MkdirAll(dir(), 0755); err != nil {
		return err
	}
	path := filepath.Join(dir(), key)
	tmpPath := path + ".tmp"

	f, err := filesystem.API().Create(tmpPath)
	if err != nil {
		return err
	}

	if err := json.NewEncoder(f).Encode(data); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}

	return filesystem.API().Rename(tmpPath, path)
}

// CollectGarbage removes records older than TTL.
func CollectGarbage() {
	_ = filesystem.API().Walk(dir(), func(path string, info fs.FileInfo, err error) error {
		if err != nil || info.IsDir() {
			return nil
		}
		if time.Since(info.ModTime()) > TTL {
			_ = filesystem.API().Remove(path)
		}
		return nil
	})
}
