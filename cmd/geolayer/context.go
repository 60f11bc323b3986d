package main

import (
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/simonhull/geolayer"
	"github.com/simonhull/geolayer/internal/config"
	"github.com/simonhull/geolayer/internal/logging"
)

type commandContext struct {
	configFlag *string
	levelFlag  *string
	formatFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
	loggerErr  error
}

func newCommandContext(configFlag, levelFlag, formatFlag *string) *commandContext {
	return &commandContext{
		configFlag: configFlag,
		levelFlag:  levelFlag,
		formatFlag: formatFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

// ensureLogger builds the process logger. Flags override the config file.
func (c *commandContext) ensureLogger() (*slog.Logger, error) {
	c.loggerOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.loggerErr = err
			return
		}
		opts := logging.Options{Level: cfg.Logging.Level, Format: cfg.Logging.Format, Output: os.Stderr}
		if v := flagValue(c.levelFlag); v != "" {
			opts.Level = v
		}
		if v := flagValue(c.formatFlag); v != "" {
			opts.Format = v
		}
		logger, err := logging.New(opts)
		if err != nil {
			c.loggerErr = err
			return
		}
		c.logger = logger.With(slog.String("session_id", uuid.NewString()))
	})
	return c.logger, c.loggerErr
}

// pipelineOptions translates the config into pipeline options.
func (c *commandContext) pipelineOptions(logger *slog.Logger) []geolayer.Option {
	opts := []geolayer.Option{geolayer.WithLogger(logger)}
	if c.config == nil {
		return opts
	}
	p := c.config.Pipeline
	if p.StrictKML {
		opts = append(opts, geolayer.WithStrictKML())
	}
	if p.LenientJSON {
		opts = append(opts, geolayer.WithLenientJSON())
	}
	if p.MaxFileBytes > 0 {
		opts = append(opts, geolayer.WithMaxFileSize(p.MaxFileBytes))
	}
	if p.MaxArchiveEntryBytes > 0 {
		opts = append(opts, geolayer.WithMaxArchiveEntrySize(p.MaxArchiveEntryBytes))
	}
	return opts
}

// resolveFormat picks the --format flag, then the configured default, then a
// guess from the file extensions.
func (c *commandContext) resolveFormat(flag string, paths []string) (geolayer.Format, error) {
	if strings.TrimSpace(flag) != "" {
		f, ok := geolayer.ParseFormat(flag)
		if !ok {
			return geolayer.FormatNone, unknownFormatError(flag)
		}
		return f, nil
	}
	if c.config != nil {
		if f := c.config.Format(); f != geolayer.FormatNone {
			return f, nil
		}
	}
	return guessFormat(paths), nil
}

func flagValue(p *string) string {
	if p == nil {
		return ""
	}
	return strings.TrimSpace(*p)
}
