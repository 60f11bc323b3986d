package geolayer

import (
	_ "github.com/simonhull/geolayer/internal/geojson"   // Register GeoJSON decoder
	_ "github.com/simonhull/geolayer/internal/kml"       // Register KML decoder
	_ "github.com/simonhull/geolayer/internal/shapefile" // Register Shapefile decoder
)
