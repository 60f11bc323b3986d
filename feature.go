package geolayer

import "github.com/simonhull/geolayer/internal/types"

// Canonical output types, re-exported from internal/types.
type (
	FeatureCollection = types.FeatureCollection
	Feature           = types.Feature
	Geometry          = types.Geometry
	Position          = types.Position
)

// Input and bookkeeping types, re-exported from internal/types.
type (
	Upload     = types.Upload
	Generation = types.Generation
	Source     = types.Source
	Digest     = types.Digest
)

// UploadBytes wraps in-memory content as an Upload.
func UploadBytes(name string, data []byte) Upload {
	return types.UploadBytes(name, data)
}

// UploadFile wraps a file on disk as an Upload.
func UploadFile(path string) Upload {
	return types.UploadFile(path)
}

// UploadFiles wraps each path with UploadFile.
func UploadFiles(paths ...string) []Upload {
	out := make([]Upload, len(paths))
	for i, p := range paths {
		out[i] = types.UploadFile(p)
	}
	return out
}

// CountPositions returns the number of coordinate positions in g.
func CountPositions(g *Geometry) int {
	return types.CountPositions(g)
}
