package config

import (
	"errors"
	"fmt"
	"slices"

	"github.com/simonhull/geolayer/internal/types"
)

// Encodings lists the accepted output.encoding values.
var Encodings = []string{"table", "json", "yaml", "cbor"}

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if _, ok := types.ParseFormat(c.Pipeline.DefaultFormat); !ok {
		return fmt.Errorf("pipeline.default_format: unknown format %q", c.Pipeline.DefaultFormat)
	}
	if c.Pipeline.MaxFileBytes < 0 {
		return errors.New("pipeline.max_file_bytes must not be negative")
	}
	if c.Pipeline.MaxArchiveEntryBytes < 0 {
		return errors.New("pipeline.max_archive_entry_bytes must not be negative")
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "auto", "json", "console":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	if !slices.Contains(Encodings, c.Output.Encoding) {
		return fmt.Errorf("output.encoding: unsupported value %q", c.Output.Encoding)
	}
	if c.Watch.DebounceMS < 0 {
		return errors.New("watch.debounce_ms must not be negative")
	}
	return nil
}

// Format returns the parsed default format. Validate guarantees it parses.
func (c *Config) Format() types.Format {
	f, _ := types.ParseFormat(c.Pipeline.DefaultFormat)
	return f
}
