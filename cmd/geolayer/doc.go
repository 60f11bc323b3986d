// Command geolayer loads GeoJSON, shapefile and KML uploads from the command
// line and prints the resulting feature collection.
//
//	geolayer load --format shapefile roads.shp roads.dbf
//	geolayer load --output json parks.json
//	geolayer watch --format kml ./drops
//	geolayer dump roads.shp
package main
