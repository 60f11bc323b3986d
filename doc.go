// Package geolayer ingests user-selected map files and turns them into a
// single GeoJSON-shaped FeatureCollection.
//
// Three formats are accepted, each declared up front:
//
//   - GeoJSON: one .json document
//   - Shapefile: a .shp and .dbf pair, or a .zip holding both
//   - KML: one .kml document
//
// # Quick Start
//
// One-shot loading:
//
//	res, err := geolayer.Load(ctx, geolayer.FormatShapefile,
//		geolayer.UploadFiles("roads.shp", "roads.dbf")...)
//	if err != nil {
//		log.Fatal(geolayer.UserMessage(err))
//	}
//	fmt.Println(res.Collection.Len(), "features")
//
// # Pipeline
//
// Interactive callers keep a Pipeline. Every Select, SetFormat and Clear
// starts a new generation; reads and decodes belonging to an older
// generation are dropped when they finish, so only the latest selection can
// publish:
//
//	p := geolayer.New(geolayer.WithListener(render))
//	p.SetFormat(geolayer.FormatGeoJSON)
//	gen, err := p.Select(ctx, uploads)
//	if err != nil {
//		return err // rejected selection
//	}
//	fc, err := p.Wait(ctx, gen)
//
// A failed decode leaves the previously published collection in place.
//
// # Error Handling
//
// Failures are *PipelineError values tagged with a kind. Match them with
// errors.Is against the exported sentinels and show UserMessage to people:
//
//	if errors.Is(err, geolayer.ErrExtensionMismatch) {
//		resetInput()
//	}
//
// Non-fatal issues such as a shapefile whose attribute table is shorter
// than its geometry file are reported as warnings on the Status.
package geolayer
