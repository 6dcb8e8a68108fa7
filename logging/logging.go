/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

// Package logging builds the zerolog loggers handed to stores and services.
package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Options selects the level and output of a logger.
type Options struct {
	// Level is a zerolog level name; "" means info.
	Level string
	// Pretty writes human readable lines instead of JSON.
	Pretty bool
	// Writer defaults to stderr.
	Writer io.Writer
}

// New builds a timestamped logger. An unknown level falls back to info and
// is reported on the returned logger.
func New(opts Options) zerolog.Logger {
	w := opts.Writer
	if w == nil {
		w = os.Stderr
	}
	if opts.Pretty {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}

	level, err := ParseLevel(opts.Level)
	log := zerolog.New(w).Level(level).With().Timestamp().Logger()
	if err != nil {
		log.Warn().Str("level", opts.Level).Msg("unknown log level, using info")
	}
	return log
}

// ParseLevel maps a level name to a zerolog level.
func ParseLevel(s string) (zerolog.Level, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == "" {
		return zerolog.InfoLevel, nil
	}
	level, err := zerolog.ParseLevel(s)
	if err != nil {
		return zerolog.InfoLevel, err
	}
	return level, nil
}
