package main

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/simonhull/geolayer"
)

func newLoadCommand(ctx *commandContext) *cobra.Command {
	var formatFlag, outputFlag string

	cmd := &cobra.Command{
		Use:   "load <file>...",
		Short: "Decode files into a feature collection and print it",
		Long: `Decode one selection of files and print the resulting feature collection.

A shapefile is given either as its .shp and .dbf pair or as a single .zip.
When --format is omitted the configured default is used, and failing that
the format is guessed from the file extensions.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			format, err := ctx.resolveFormat(formatFlag, args)
			if err != nil {
				return err
			}
			encoding := ctx.config.Output.Encoding
			if strings.TrimSpace(outputFlag) != "" {
				encoding = strings.ToLower(strings.TrimSpace(outputFlag))
			}

			p := geolayer.New(append(ctx.pipelineOptions(logger), geolayer.WithInputReset(func(err error) {
				logger.Debug("selection reset", slog.String("error", err.Error()))
			}))...)
			p.SetFormat(format)

			fc, err := p.Upload(cmd.Context(), geolayer.UploadFiles(args...))
			if err != nil {
				var pe *geolayer.PipelineError
				if errors.As(err, &pe) {
					return fmt.Errorf("%s\n%w", geolayer.UserMessage(err), err)
				}
				return err
			}

			st := p.Status()
			return writeResult(cmd.OutOrStdout(), encoding, fc, st.Warnings, st.Sources)
		},
	}

	cmd.Flags().StringVarP(&formatFlag, "format", "f", "", "Declared format (geojson, shapefile, kml)")
	cmd.Flags().StringVarP(&outputFlag, "output", "o", "", "Output encoding (table, json, yaml, cbor)")
	return cmd
}
