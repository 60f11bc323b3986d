package shapefile

import "github.com/simonhull/geolayer/internal/types"

// assemblePolygon groups shapefile rings into polygons. Clockwise rings are
// outer boundaries; every other ring is a hole of the first outer ring that
// contains its first vertex, or of the last outer ring when none does.
// A record with no clockwise ring treats each ring as its own polygon.
func assemblePolygon(rings [][]types.Position) *types.Geometry {
	var polys [][][]types.Position
	var holes [][]types.Position
	for _, r := range rings {
		if clockwise(r) {
			polys = append(polys, [][]types.Position{r})
		} else {
			holes = append(holes, r)
		}
	}

	if len(polys) == 0 {
		for _, h := range holes {
			polys = append(polys, [][]types.Position{h})
		}
		holes = nil
	}

	for _, h := range holes {
		owner := len(polys) - 1
		for i, p := range polys {
			if len(h) > 0 && contains(p[0], h[0]) {
				owner = i
				break
			}
		}
		polys[owner] = append(polys[owner], h)
	}

	if len(polys) == 1 {
		return types.PolygonGeometry(polys[0])
	}
	return &types.Geometry{Type: types.GeometryMultiPolygon, Coordinates: polys}
}

// clockwise reports whether ring winds clockwise with y pointing up.
func clockwise(ring []types.Position) bool {
	var sum float64
	for i := 0; i+1 < len(ring); i++ {
		a, b := ring[i], ring[i+1]
		sum += (b[0] - a[0]) * (b[1] + a[1])
	}
	return sum > 0
}

// contains is an even-odd ray cast of pt against ring.
func contains(ring []types.Position, pt types.Position) bool {
	in := false
	x, y := pt[0], pt[1]
	for i, j := 0, len(ring)-1; i < len(ring); j, i = i, i+1 {
		xi, yi := ring[i][0], ring[i][1]
		xj, yj := ring[j][0], ring[j][1]
		if (yi > y) != (yj > y) && x < (xj-xi)*(y-yi)/(yj-yi)+xi {
			in = !in
		}
	}
	return in
}
