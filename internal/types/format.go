package types

import (
	"path"
	"strconv"
	"strings"
)

// Format represents the declared geospatial format of an upload.
type Format int

const (
	// FormatNone means no format has been chosen yet.
	FormatNone Format = iota
	// FormatGeoJSON represents a single GeoJSON text file.
	FormatGeoJSON
	// FormatShapefile represents an ESRI shapefile, either as a .shp/.dbf pair or a .zip.
	FormatShapefile
	// FormatKML represents a single Keyhole Markup Language document.
	FormatKML
)

// String returns the display name of the format.
func (f Format) String() string {
	switch f {
	case FormatGeoJSON:
		return "GeoJSON"
	case FormatShapefile:
		return "Shapefile"
	case FormatKML:
		return "KML"
	case FormatNone:
		return "None"
	default:
		return "Format(" + strconv.Itoa(int(f)) + ")"
	}
}

// Formats lists the declarable formats in selector order.
func Formats() []Format {
	return []Format{FormatShapefile, FormatGeoJSON, FormatKML}
}

// ParseFormat maps a selector value to a Format.
//
// Accepts the original selector labels ("Shapefiles", "GeoJSON", "Keyhole(KML)")
// and short lowercase aliases. An empty value yields FormatNone.
func ParseFormat(s string) (Format, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return FormatNone, true
	case "geojson", "json":
		return FormatGeoJSON, true
	case "shapefiles", "shapefile", "shp", "zip":
		return FormatShapefile, true
	case "keyhole(kml)", "keyhole", "kml":
		return FormatKML, true
	default:
		return FormatNone, false
	}
}

// Role tags a raw upload with the part it plays in a format.
type Role int

const (
	// RoleUnknown is the zero value and never accepted.
	RoleUnknown Role = iota
	// RoleGeometry is the .shp member of a shapefile.
	RoleGeometry
	// RoleAttributes is the .dbf member of a shapefile.
	RoleAttributes
	// RoleArchive is a .zip holding a shapefile pair.
	RoleArchive
	// RoleTextPayload is a .json or .kml document.
	RoleTextPayload
)

func (r Role) String() string {
	switch r {
	case RoleGeometry:
		return "geometry"
	case RoleAttributes:
		return "attributes"
	case RoleArchive:
		return "archive"
	case RoleTextPayload:
		return "text-payload"
	default:
		return "unknown"
	}
}

// Mode selects how a file is read.
type Mode int

const (
	// ModeBinary reads the file as raw bytes.
	ModeBinary Mode = iota
	// ModeText reads the file as UTF-8 text.
	ModeText
)

func (m Mode) String() string {
	if m == ModeText {
		return "text"
	}
	return "binary"
}

// Mode returns how files carrying this role must be read.
func (r Role) Mode() Mode {
	if r == RoleTextPayload {
		return ModeText
	}
	return ModeBinary
}

// Extensions returns the accepted file extensions for this format, without the dot.
func (f Format) Extensions() []string {
	switch f {
	case FormatGeoJSON:
		return []string{"json"}
	case FormatShapefile:
		return []string{"shp", "dbf", "zip"}
	case FormatKML:
		return []string{"kml"}
	case FormatNone:
		return nil
	default:
		return nil
	}
}

// RequiredRoles returns the role set a decoder needs before it can run.
//
// A shapefile archive is expanded into geometry and attributes before it
// reaches the decoder, so Shapefile always requires the pair.
func (f Format) RequiredRoles() []Role {
	switch f {
	case FormatGeoJSON, FormatKML:
		return []Role{RoleTextPayload}
	case FormatShapefile:
		return []Role{RoleGeometry, RoleAttributes}
	default:
		return nil
	}
}

// RoleFor returns the role a file with the given extension plays in this format.
// Returns RoleUnknown when the extension is not accepted.
func (f Format) RoleFor(ext string) Role {
	ext = strings.ToLower(ext)
	switch f {
	case FormatGeoJSON:
		if ext == "json" {
			return RoleTextPayload
		}
	case FormatKML:
		if ext == "kml" {
			return RoleTextPayload
		}
	case FormatShapefile:
		switch ext {
		case "shp":
			return RoleGeometry
		case "dbf":
			return RoleAttributes
		case "zip":
			return RoleArchive
		}
	}
	return RoleUnknown
}

// Ext returns the lowercase extension of name without the leading dot.
func Ext(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	return strings.ToLower(strings.TrimPrefix(path.Ext(name), "."))
}
