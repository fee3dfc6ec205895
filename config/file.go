package config

import (
	"errors"
	"path/filepath"
	"sort"
	"strings"

	"github.com/reelmark/reelmark/constant"
	"github.com/reelmark/reelmark/where"
	"github.com/spf13/viper"
)

// File is the path of the TOML config file.
func File() string {
	return filepath.Join(where.Config(), constant.App+".toml")
}

// Persist writes the in-memory configuration, creating the file if needed.
func Persist() error {
	err := viper.WriteConfig()
	var missing viper.ConfigFileNotFoundError
	if errors.As(err, &missing) {
		return viper.SafeWriteConfig()
	}
	return err
}

// Sections lists the top-level key groups, e.g. player or resilience.
func Sections() []string {
	seen := make(map[string]struct{})
	for k := range Default {
		section, _, _ := strings.Cut(k, ".")
		seen[section] = struct{}{}
	}
	sections := make([]string, 0, len(seen))
	for s := range seen {
		sections = append(sections, s)
	}
	sort.Strings(sections)
	return sections
}

// InSection returns the fields of one section sorted by key.
func InSection(section string) []Field {
	var fields []Field
	for k, f := range Default {
		if s, _, _ := strings.Cut(k, "."); s == section {
			fields = append(fields, f)
		}
	}
	sort.Slice(fields, func(i, j int) bool { return fields[i].Key < fields[j].Key })
	return fields
}
