// Package logging builds the zerolog logger carried in command contexts.
package logging

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/wizzomafizzo/filefilter/internal/storage"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	maxLogSizeMB  = 10
	maxLogBackups = 3
	maxLogAgeDays = 30
)

const (
	ErrorLevel = zerolog.ErrorLevel
	WarnLevel  = zerolog.WarnLevel
	InfoLevel  = zerolog.InfoLevel
	DebugLevel = zerolog.DebugLevel
	TraceLevel = zerolog.TraceLevel
)

// Config selects where log records go and which fields they carry.
type Config struct {
	// Writer receives JSON records. When nil, records go to the rotating
	// log file in the data directory of Storage.
	Writer io.Writer
	// Console additionally receives human-readable records.
	Console  io.Writer
	Storage  *storage.Manager
	Module   string
	Platform string
	Level    zerolog.Level
}

// New returns ctx with a logger attached.
func New(ctx context.Context, fs afero.Fs, config Config) (context.Context, error) {
	sink, err := config.sink(fs)
	if err != nil {
		return nil, err
	}

	if config.Console != nil {
		console := zerolog.ConsoleWriter{Out: config.Console, TimeFormat: time.TimeOnly, NoColor: color.NoColor}
		sink = zerolog.MultiLevelWriter(sink, console)
	}

	logger := zerolog.New(sink).
		Level(config.Level).
		With().
		Timestamp().
		Str("module", config.Module).
		Str("platform", config.Platform).
		Logger()

	return logger.WithContext(ctx), nil
}

func (c Config) sink(fs afero.Fs) (io.Writer, error) {
	if c.Writer != nil {
		return c.Writer, nil
	}
	if fs == nil {
		return nil, errors.New("filesystem required when no writer provided")
	}

	manager := c.Storage
	if manager == nil {
		manager = storage.New(fs)
	}
	path, err := manager.GetLogPath()
	if err != nil {
		return nil, fmt.Errorf("failed to get log path: %w", err)
	}

	return &lumberjack.Logger{
		Filename:   path,
		MaxSize:    maxLogSizeMB,
		MaxBackups: maxLogBackups,
		MaxAge:     maxLogAgeDays,
	}, nil
}

// Get returns the logger in ctx, or a disabled logger when there is none.
func Get(ctx context.Context) *zerolog.Logger {
	return zerolog.Ctx(ctx)
}

// ParseLevel converts a level name, defaulting to info when empty.
func ParseLevel(name string) (zerolog.Level, error) {
	if name == "" {
		return InfoLevel, nil
	}
	level, err := zerolog.ParseLevel(name)
	if err != nil {
		return InfoLevel, fmt.Errorf("invalid log level '%s': %w", name, err)
	}
	return level, nil
}
