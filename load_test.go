package geolayer_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/simonhull/geolayer"
)

func TestLoad_File(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "world.json")
	if err := os.WriteFile(path, []byte(twoPoints), 0o644); err != nil {
		t.Fatal(err)
	}

	res, err := geolayer.Load(context.Background(), geolayer.FormatGeoJSON, geolayer.UploadFile(path))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if res.Collection.Len() != 2 {
		t.Errorf("Len() = %d, want 2", res.Collection.Len())
	}
	if len(res.Sources) != 1 || res.Sources[0].Size != int64(len(twoPoints)) {
		t.Errorf("Sources = %+v", res.Sources)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := geolayer.Load(context.Background(), geolayer.FormatKML, geolayer.UploadFile(filepath.Join(t.TempDir(), "nope.kml")))
	if !errors.Is(err, geolayer.ErrReadFailure) {
		t.Errorf("error = %v, want ReadFailure", err)
	}
}

func TestLoadMany(t *testing.T) {
	shp, dbf := pointShapefile([]string{"a", "b", "c"}, [][2]float64{{0, 0}, {1, 1}, {2, 2}})

	jobs := []geolayer.Job{
		{Format: geolayer.FormatGeoJSON, Uploads: []geolayer.Upload{geolayer.UploadBytes("one.json", []byte(onePoint))}},
		{Format: geolayer.FormatShapefile, Uploads: []geolayer.Upload{
			geolayer.UploadBytes("t.shp", shp),
			geolayer.UploadBytes("t.dbf", dbf),
		}},
		{Format: geolayer.FormatKML, Uploads: []geolayer.Upload{geolayer.UploadBytes("k.kml", []byte(placemarks))}},
	}

	results, err := geolayer.LoadMany(context.Background(), jobs...)
	if err != nil {
		t.Fatalf("LoadMany() error = %v", err)
	}

	want := []int{1, 3, 1}
	if len(results) != len(want) {
		t.Fatalf("got %d results, want %d", len(results), len(want))
	}
	for i, n := range want {
		if got := results[i].Collection.Len(); got != n {
			t.Errorf("results[%d].Len() = %d, want %d", i, got, n)
		}
	}
}

func TestLoadMany_FailsAsAWhole(t *testing.T) {
	jobs := []geolayer.Job{
		{Format: geolayer.FormatGeoJSON, Uploads: []geolayer.Upload{geolayer.UploadBytes("ok.json", []byte(onePoint))}},
		{Format: geolayer.FormatGeoJSON, Uploads: []geolayer.Upload{geolayer.UploadBytes("bad.json", []byte("{"))}},
	}

	results, err := geolayer.LoadMany(context.Background(), jobs...)
	if !errors.Is(err, geolayer.ErrMalformedJSON) {
		t.Errorf("error = %v, want MalformedJSON", err)
	}
	if results != nil {
		t.Error("results should be nil on failure")
	}
}

func TestLoadMany_Empty(t *testing.T) {
	results, err := geolayer.LoadMany(context.Background())
	if err != nil || results != nil {
		t.Errorf("LoadMany() = %v, %v", results, err)
	}
}
