package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/simonhull/geolayer/internal/shapefile"
)

// newDumpCommand prints the record layout of a .shp file, which helps
// confirm what the decoder is actually able to read.
func newDumpCommand() *cobra.Command {
	return &cobra.Command{
		Use:         "dump <file.shp>",
		Short:       "Print the header and record layout of a .shp file",
		Args:        cobra.ExactArgs(1),
		Annotations: map[string]string{"skip-config": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}

			layout, layoutErr := shapefile.Inspect(data, args[0])
			if layout == nil {
				return layoutErr
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s: %s, version %d, %d bytes declared, %d on disk\n",
				args[0], shapefile.ShapeTypeName(layout.ShapeType), layout.Version, layout.Length, len(data))
			fmt.Fprintf(out, "bbox: %g %g %g %g\n", layout.BBox[0], layout.BBox[1], layout.BBox[2], layout.BBox[3])

			rows := make([][]string, 0, len(layout.Records))
			for _, r := range layout.Records {
				rows = append(rows, []string{
					strconv.Itoa(int(r.Number)),
					strconv.FormatInt(r.Offset, 10),
					strconv.FormatInt(r.Length, 10),
					shapefile.ShapeTypeName(r.ShapeType),
				})
			}
			fmt.Fprintln(out, renderTable([]string{"Record", "Offset", "Bytes", "Shape"}, rows,
				[]columnAlignment{alignRight, alignRight, alignRight, alignLeft}))
			return layoutErr
		},
	}
}
