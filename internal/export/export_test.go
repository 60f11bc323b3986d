package export

import (
	"bytes"
	"encoding/json"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/simonhull/geolayer/internal/types"
)

func sample() *types.FeatureCollection {
	fc := types.NewFeatureCollection(2)
	fc.Features = append(fc.Features,
		types.NewFeature(types.PointGeometry(types.Position{1, 2}), map[string]any{"name": "a"}),
		types.NewFeature(types.LineGeometry([]types.Position{{0, 0}, {1, 1}}), nil),
	)
	fc.BBox = []float64{0, 0, 1, 2}
	return fc
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, JSON, sample()); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	var got types.FeatureCollection
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("output is not json: %v", err)
	}
	if got.Type != "FeatureCollection" || got.Len() != 2 {
		t.Errorf("decoded %s with %d features", got.Type, got.Len())
	}
	if got.Features[0].Properties["name"] != "a" {
		t.Errorf("properties = %v", got.Features[0].Properties)
	}
}

func TestWriteYAML(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, YAML, sample()); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	var got map[string]any
	if err := yaml.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("output is not yaml: %v", err)
	}
	if got["type"] != "FeatureCollection" {
		t.Errorf("type = %v", got["type"])
	}
	features, ok := got["features"].([]any)
	if !ok || len(features) != 2 {
		t.Errorf("features = %v", got["features"])
	}
}

func TestWriteCBOR(t *testing.T) {
	var a, b bytes.Buffer
	if err := Write(&a, CBOR, sample()); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if err := Write(&b, CBOR, sample()); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if !bytes.Equal(a.Bytes(), b.Bytes()) {
		t.Error("encoding is not deterministic")
	}

	got, err := ReadCBOR(a.Bytes())
	if err != nil {
		t.Fatalf("ReadCBOR() error = %v", err)
	}
	if got.Len() != 2 || got.Features[0].Geometry.Type != "Point" {
		t.Errorf("decoded %+v", got)
	}
	if got.Features[0].Properties["name"] != "a" {
		t.Errorf("properties = %v", got.Features[0].Properties)
	}
}

func TestWriteNilCollection(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, JSON, nil); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if !bytes.Contains(buf.Bytes(), []byte(`"features": []`)) {
		t.Errorf("output = %s", buf.String())
	}
}

func TestWriteUnknownEncoding(t *testing.T) {
	if err := Write(&bytes.Buffer{}, Encoding("csv"), sample()); err == nil {
		t.Error("expected error")
	}
}
