package geolayer_test

import (
	"bytes"
	"encoding/binary"
	"io"
	"strings"
	"testing"

	"github.com/klauspost/compress/zip"

	"github.com/simonhull/geolayer"
)

const twoPoints = `{
  "type": "FeatureCollection",
  "features": [
    {"type": "Feature", "properties": {"admin": "Aruba"}, "geometry": {"type": "Point", "coordinates": [102, 0.5]}},
    {"type": "Feature", "properties": {"admin": "Fiji"}, "geometry": {"type": "Point", "coordinates": [178.4, -18.1]}}
  ]
}`

const onePoint = `{"type":"Feature","properties":{},"geometry":{"type":"Point","coordinates":[1,2]}}`

const placemarks = `<?xml version="1.0" encoding="UTF-8"?>
<kml xmlns="http://www.opengis.net/kml/2.2">
  <Document>
    <Placemark><name>Harbour</name><Point><coordinates>-122.08,37.42,0</coordinates></Point></Placemark>
  </Document>
</kml>`

// gated returns an upload whose Open blocks until gate is closed.
func gated(name string, data []byte, gate <-chan struct{}) geolayer.Upload {
	return geolayer.Upload{
		Name: name,
		Open: func() (io.ReadCloser, error) {
			<-gate
			return io.NopCloser(bytes.NewReader(data)), nil
		},
	}
}

// pointShapefile builds a point .shp and a .dbf with one NAME column.
func pointShapefile(names []string, pts [][2]float64) (shp, dbf []byte) {
	var body bytes.Buffer
	for i, p := range pts {
		binary.Write(&body, binary.BigEndian, int32(i+1))
		binary.Write(&body, binary.BigEndian, int32(10)) // 20 bytes
		binary.Write(&body, binary.LittleEndian, int32(1))
		binary.Write(&body, binary.LittleEndian, p[0])
		binary.Write(&body, binary.LittleEndian, p[1])
	}

	var s bytes.Buffer
	binary.Write(&s, binary.BigEndian, int32(9994))
	s.Write(make([]byte, 20))
	binary.Write(&s, binary.BigEndian, int32((100+body.Len())/2))
	binary.Write(&s, binary.LittleEndian, int32(1000))
	binary.Write(&s, binary.LittleEndian, int32(1))
	s.Write(make([]byte, 64)) // bbox, z and m ranges
	s.Write(body.Bytes())

	const width = 16
	var d bytes.Buffer
	d.Write([]byte{0x03, 124, 1, 1})
	binary.Write(&d, binary.LittleEndian, uint32(len(names)))
	binary.Write(&d, binary.LittleEndian, uint16(32+32+1))
	binary.Write(&d, binary.LittleEndian, uint16(1+width))
	d.Write(make([]byte, 20))
	desc := make([]byte, 32)
	copy(desc, "NAME")
	desc[11] = 'C'
	desc[16] = width
	d.Write(desc)
	d.WriteByte(0x0D)
	for _, n := range names {
		d.WriteByte(' ')
		d.WriteString(n + strings.Repeat(" ", width-len(n)))
	}
	d.WriteByte(0x1A)

	return s.Bytes(), d.Bytes()
}

func zipOf(t *testing.T, files map[string][]byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, data := range files {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("create %s: %v", name, err)
		}
		if _, err := w.Write(data); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	return buf.Bytes()
}
