package main

import (
	"fmt"
	"io"
	"maps"
	"slices"
	"strconv"
	"strings"

	"github.com/simonhull/geolayer"
	"github.com/simonhull/geolayer/internal/export"
)

const maxPropertyChars = 60

// writeResult prints a loaded collection in the configured encoding.
func writeResult(w io.Writer, encoding string, fc *geolayer.FeatureCollection, warnings []geolayer.Warning, sources []geolayer.Source) error {
	if encoding != "table" {
		return export.Write(w, export.Encoding(encoding), fc)
	}

	if len(sources) > 0 {
		fmt.Fprintln(w, renderTable([]string{"Source", "Role", "Bytes", "Digest"}, sourceRows(sources),
			[]columnAlignment{alignLeft, alignLeft, alignRight, alignLeft}))
	}
	fmt.Fprintln(w, renderTable([]string{"#", "Geometry", "Positions", "Properties"}, featureRows(fc),
		[]columnAlignment{alignRight, alignLeft, alignRight, alignLeft}))
	if len(warnings) > 0 {
		fmt.Fprintln(w, renderTable([]string{"Warning"}, warningRows(warnings), nil))
	}
	_, err := fmt.Fprintf(w, "%d feature(s)\n", fc.Len())
	return err
}

func sourceRows(sources []geolayer.Source) [][]string {
	rows := make([][]string, 0, len(sources))
	for _, s := range sources {
		rows = append(rows, []string{s.Name, s.Role.String(), strconv.FormatInt(s.Size, 10), s.Digest.Short()})
	}
	return rows
}

func featureRows(fc *geolayer.FeatureCollection) [][]string {
	if fc == nil {
		return nil
	}
	rows := make([][]string, 0, len(fc.Features))
	for i, f := range fc.Features {
		kind := "-"
		if f.Geometry != nil {
			kind = f.Geometry.Type
		}
		rows = append(rows, []string{
			strconv.Itoa(i),
			kind,
			strconv.Itoa(geolayer.CountPositions(f.Geometry)),
			summarizeProperties(f.Properties),
		})
	}
	return rows
}

func warningRows(warnings []geolayer.Warning) [][]string {
	rows := make([][]string, 0, len(warnings))
	for _, w := range warnings {
		rows = append(rows, []string{w.String()})
	}
	return rows
}

// summarizeProperties renders properties as sorted key=value pairs, cut to
// maxPropertyChars.
func summarizeProperties(props map[string]any) string {
	if len(props) == 0 {
		return ""
	}
	parts := make([]string, 0, len(props))
	for _, k := range slices.Sorted(maps.Keys(props)) {
		parts = append(parts, fmt.Sprintf("%s=%v", k, props[k]))
	}
	s := strings.Join(parts, " ")
	if r := []rune(s); len(r) > maxPropertyChars {
		s = string(r[:maxPropertyChars-1]) + "…"
	}
	return s
}
