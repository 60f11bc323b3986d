package geolayer

import "github.com/simonhull/geolayer/internal/types"

// Format is an alias to types.Format.
// Re-exporting from internal/types to maintain public API.
type Format = types.Format

// Re-export all format constants.
const (
	FormatNone      = types.FormatNone
	FormatGeoJSON   = types.FormatGeoJSON
	FormatShapefile = types.FormatShapefile
	FormatKML       = types.FormatKML
)

// Role is an alias to types.Role.
type Role = types.Role

// Re-export all role constants.
const (
	RoleUnknown     = types.RoleUnknown
	RoleGeometry    = types.RoleGeometry
	RoleAttributes  = types.RoleAttributes
	RoleArchive     = types.RoleArchive
	RoleTextPayload = types.RoleTextPayload
)

// ParseFormat is a wrapper around types.ParseFormat.
func ParseFormat(s string) (Format, bool) {
	return types.ParseFormat(s)
}

// Formats lists the declarable formats in selector order.
func Formats() []Format {
	return types.Formats()
}
