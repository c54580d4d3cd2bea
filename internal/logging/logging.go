// Package logging builds the zap logger used by the almanac command.
package logging

import (
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// Output formats.
const (
	FormatJSON    = "json"
	FormatConsole = "console"
)

// ErrFormatUnknown is returned for a format other than json or console.
var ErrFormatUnknown = errors.New("unknown log format")

// New returns a logger writing to stderr at level. The json format uses the
// zap production encoder; console uses the development encoder. An empty
// level means info and an empty format means console.
func New(level, format string) (*zap.Logger, error) {
	if level == "" {
		level = "info"
	}
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, fmt.Errorf("parse log level: %w", err)
	}

	var cfg zap.Config
	switch format {
	case FormatJSON:
		cfg = zap.NewProductionConfig()
	case FormatConsole, "":
		cfg = zap.NewDevelopmentConfig()
		cfg.Development = false
	default:
		return nil, fmt.Errorf("%w: %q", ErrFormatUnknown, format)
	}
	cfg.Level = lvl
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}

	return cfg.Build()
}
