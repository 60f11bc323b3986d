package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/simonhull/geolayer"
)

func unknownFormatError(value string) error {
	names := make([]string, 0, len(geolayer.Formats()))
	for _, f := range geolayer.Formats() {
		names = append(names, strings.ToLower(f.String()))
	}
	return fmt.Errorf("unknown format %q (want one of %s)", value, strings.Join(names, ", "))
}

// guessFormat returns the format whose extensions cover every path, or
// FormatNone so validation reports the problem.
func guessFormat(paths []string) geolayer.Format {
	for _, f := range geolayer.Formats() {
		if len(paths) > 0 && coversAll(f, paths) {
			return f
		}
	}
	return geolayer.FormatNone
}

func coversAll(f geolayer.Format, paths []string) bool {
	for _, p := range paths {
		if f.RoleFor(extension(p)) == geolayer.RoleUnknown {
			return false
		}
	}
	return true
}

func extension(path string) string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
}

// partnerUploads expands a changed shapefile member into its .shp/.dbf pair
// when both exist next to each other.
func partnerUploads(path string) []geolayer.Upload {
	ext := extension(path)
	if ext != "shp" && ext != "dbf" {
		return []geolayer.Upload{geolayer.UploadFile(path)}
	}

	stem := strings.TrimSuffix(path, filepath.Ext(path))
	var uploads []geolayer.Upload
	for _, want := range []string{"shp", "dbf"} {
		if p, ok := sibling(stem, want); ok {
			uploads = append(uploads, geolayer.UploadFile(p))
		}
	}
	return uploads
}

// sibling finds stem.ext in either letter case.
func sibling(stem, ext string) (string, bool) {
	for _, candidate := range []string{stem + "." + ext, stem + "." + strings.ToUpper(ext)} {
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, true
		}
	}
	return "", false
}
