// Package history remembers where each source was left off.
package history

import (
	"sort"

	"github.com/metafates/gache"
	"github.com/reelmark/reelmark/filesystem"
	"github.com/reelmark/reelmark/source"
	"github.com/reelmark/reelmark/where"
)

// cacher provides a disk-backed registry of playback positions.
var cacher = gache.New[map[string]Entry](
	&gache.Options{
		Path:       where.History(),
		FileSystem: &filesystem.GacheFs{},
	},
)

func load() (map[string]Entry, error) {
	cached, expired, err := cacher.Get()
	if err != nil {
		return nil, err
	}
	if expired || cached == nil {
		return make(map[string]Entry), nil
	}
	return cached, nil
}

// Get returns the saved entry for desc.
func Get(desc source.Descriptor) (Entry, bool, error) {
	saved, err := load()
	if err != nil {
		return Entry{}, false, err
	}
	entry, ok := saved[KeyOf(desc)]
	return entry, ok, nil
}

// All returns every entry, most recently updated first.
func All() ([]Entry, error) {
	saved, err := load()
	if err != nil {
		return nil, err
	}
	entries := make([]Entry, 0, len(saved))
	for _, e := range saved {
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].UpdatedAt.After(entries[j].UpdatedAt)
	})
	return entries, nil
}

// Save records entry, replacing any previous position for the same source.
func Save(entry Entry) error {
	saved, err := load()
	if err != nil {
		return err
	}
	saved[entry.Key] = entry
	return cacher.Set(saved)
}

// Remove forgets the position of desc.
func Remove(desc source.Descriptor) error {
	saved, err := load()
	if err != nil {
		return err
	}
	delete(saved, KeyOf(desc))
	return cacher.Set(saved)
}

// Clear forgets every position.
func Clear() error {
	return cacher.Set(make(map[string]Entry))
}
