package main

import (
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/simonhull/geolayer"
	"github.com/simonhull/geolayer/internal/registry"
)

func newFormatsCommand() *cobra.Command {
	return &cobra.Command{
		Use:         "formats",
		Short:       "List the accepted formats and file extensions",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{"skip-config": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			decoders := registry.Registered()
			rows := make([][]string, 0, len(geolayer.Formats()))
			for _, f := range geolayer.Formats() {
				exts := make([]string, 0, len(f.Extensions()))
				for _, e := range f.Extensions() {
					exts = append(exts, "."+e)
				}
				roles := make([]string, 0, len(f.RequiredRoles()))
				for _, r := range f.RequiredRoles() {
					roles = append(roles, r.String())
				}
				decoder := "no"
				if slices.Contains(decoders, f) {
					decoder = "yes"
				}
				rows = append(rows, []string{f.String(), strings.Join(exts, " "), strings.Join(roles, " + "), decoder})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Format", "Extensions", "Decoder needs", "Decoder"}, rows, nil))
			return nil
		},
	}
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:         "version",
		Short:       "Print version information",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{"skip-config": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			info := geolayer.GetVersionInfo()
			fmt.Fprintf(cmd.OutOrStdout(), "geolayer %s (commit %s, built %s, %s)\n",
				info.Version, info.GitCommit, info.BuildTime, info.GoVersion)
			return nil
		},
	}
}
