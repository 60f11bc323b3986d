package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"slices"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/simonhull/geolayer"
)

func newWatchCommand(ctx *commandContext) *cobra.Command {
	var formatFlag string

	cmd := &cobra.Command{
		Use:   "watch <dir>",
		Short: "Reload the layer whenever matching files land in a directory",
		Long: `Watch a directory and decode every file dropped into it.

Each drop starts a new selection. A drop that arrives while an earlier one
is still being read supersedes it, and only the newest result is printed.
A shapefile member is loaded together with its partner of the same name.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			format, err := ctx.resolveFormat(formatFlag, nil)
			if err != nil {
				return err
			}
			if format == geolayer.FormatNone {
				return errors.New("watch needs --format or pipeline.default_format")
			}

			out := cmd.OutOrStdout()
			p := geolayer.New(append(ctx.pipelineOptions(logger), geolayer.WithListener(printStatus(out, ctx.config.Output.Encoding)))...)
			p.SetFormat(format)

			debounce := time.Duration(ctx.config.Watch.DebounceMS) * time.Millisecond
			return watchDir(cmd.Context(), args[0], format, debounce, logger, func(path string) {
				gen, err := p.Select(cmd.Context(), partnerUploads(path))
				if err != nil {
					logger.Debug("drop rejected", slog.Uint64("generation", uint64(gen)), slog.String("file", path))
				}
			})
		},
	}

	cmd.Flags().StringVarP(&formatFlag, "format", "f", "", "Declared format (geojson, shapefile, kml)")
	return cmd
}

// printStatus renders settled generations as they are published.
func printStatus(w io.Writer, encoding string) func(geolayer.Status) {
	return func(s geolayer.Status) {
		switch s.State {
		case geolayer.StateReady:
			if err := writeResult(w, encoding, s.Collection, s.Warnings, s.Sources); err != nil {
				fmt.Fprintln(w, err)
			}
		case geolayer.StateError:
			fmt.Fprintln(w, geolayer.UserMessage(s.Err))
		}
	}
}

// watchDir calls fire with the last file written to dir once it has been
// quiet for debounce. Only files carrying one of format's extensions count.
func watchDir(ctx context.Context, dir string, format geolayer.Format, debounce time.Duration, logger *slog.Logger, fire func(string)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}
	logger.Info("watching", slog.String("dir", dir), slog.String("format", format.String()))

	var timer *time.Timer
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if !slices.Contains(format.Extensions(), extension(event.Name)) {
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			path := filepath.Clean(event.Name)
			timer = time.AfterFunc(debounce, func() {
				logger.Info("file dropped", slog.String("file", path))
				fire(path)
			})
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watch error", slog.String("error", err.Error()))
		}
	}
}
