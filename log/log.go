// Package log writes diagnostics to a daily file under the logs directory.
// Nothing is printed to the terminal. When logs.write is off every call is a
// no-op, so callers never need to check.
package log

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/reelmark/reelmark/filesystem"
	"github.com/reelmark/reelmark/key"
	"github.com/reelmark/reelmark/where"
	logrus "github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

var (
	enabled bool
	logger  = logrus.New()
)

// Fields annotate an entry, e.g. the platform or attempt number of a load.
type Fields = logrus.Fields

// Setup opens today's log file and applies the configured format and level.
func Setup() error {
	enabled = viper.GetBool(key.LogsWrite)
	if !enabled {
		return nil
	}

	path, err := File(time.Now())
	if err != nil {
		return err
	}

	f, err := filesystem.API().OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	logger.SetOutput(f)

	if viper.GetBool(key.LogsJson) {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{DisableColors: true, FullTimestamp: true})
	}

	level, err := logrus.ParseLevel(viper.GetString(key.LogsLevel))
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	return nil
}

// File is the path of the log file for the given day.
func File(day time.Time) (string, error) {
	dir := where.Logs()
	if dir == "" {
		return "", errors.New("log directory path is empty")
	}
	return filepath.Join(dir, day.Format("2006-01-02")+".log"), nil
}

// Entry is a logger bound to a set of fields.
type Entry struct {
	fields Fields
}

// With returns an entry that adds fields to every line it writes.
func With(fields Fields) Entry {
	return Entry{fields: fields}
}

// With merges more fields into a copy of the entry.
func (e Entry) With(fields Fields) Entry {
	merged := make(Fields, len(e.fields)+len(fields))
	for k, v := range e.fields {
		merged[k] = v
	}
	for k, v := range fields {
		merged[k] = v
	}
	return Entry{fields: merged}
}

func (e Entry) log(level logrus.Level, format string, args ...interface{}) {
	if !enabled {
		return
	}
	entry := logrus.NewEntry(logger)
	if len(e.fields) > 0 {
		entry = entry.WithFields(e.fields)
	}
	if format == "" {
		entry.Log(level, args...)
		return
	}
	entry.Logf(level, format, args...)
}

func (e Entry) Debugf(format string, args ...interface{}) { e.log(logrus.DebugLevel, format, args...) }
func (e Entry) Infof(format string, args ...interface{})  { e.log(logrus.InfoLevel, format, args...) }
func (e Entry) Warnf(format string, args ...interface{})  { e.log(logrus.WarnLevel, format, args...) }
func (e Entry) Errorf(format string, args ...interface{}) { e.log(logrus.ErrorLevel, format, args...) }

var root Entry

func Debugf(format string, args ...interface{}) { root.Debugf(format, args...) }
func Infof(format string, args ...interface{})  { root.Infof(format, args...) }
func Warnf(format string, args ...interface{})  { root.Warnf(format, args...) }
func Errorf(format string, args ...interface{}) { root.Errorf(format, args...) }

func Warn(args ...interface{})  { root.log(logrus.WarnLevel, "", args...) }
func Error(args ...interface{}) { root.log(logrus.ErrorLevel, "", args...) }
