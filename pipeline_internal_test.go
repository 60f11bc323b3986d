package geolayer

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"github.com/simonhull/geolayer/internal/types"
	"github.com/simonhull/geolayer/internal/validate"
)

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

const (
	oldPoint  = `{"type":"Feature","geometry":{"type":"Point","coordinates":[1,2]},"properties":{}}`
	newPoints = `{"type":"FeatureCollection","features":[
		{"type":"Feature","geometry":{"type":"Point","coordinates":[3,4]},"properties":{}},
		{"type":"Feature","geometry":{"type":"Point","coordinates":[5,6]},"properties":{}}]}`
)

func TestLoad_SupersededBufferIsDropped(t *testing.T) {
	var logs syncBuffer
	p := New(WithLogger(slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))))
	p.SetFormat(FormatGeoJSON)
	ctx := context.Background()

	old, err := p.Select(ctx, []Upload{UploadBytes("old.json", []byte(oldPoint))})
	if err != nil {
		t.Fatalf("first Select() error = %v", err)
	}
	if _, err := p.Wait(ctx, old); err != nil {
		t.Fatalf("Wait(old) error = %v", err)
	}
	current, err := p.Upload(ctx, []Upload{UploadBytes("new.json", []byte(newPoints))})
	if err != nil {
		t.Fatalf("Upload() error = %v", err)
	}
	gen := p.Status().Generation

	// A read of the old generation that finishes after the new one published.
	late := validate.Item{
		Upload: UploadBytes("late.json", []byte(oldPoint)),
		Role:   types.RoleTextPayload,
		Mode:   types.RoleTextPayload.Mode(),
	}
	if err := p.load(context.Background(), old, late); err != nil {
		t.Fatalf("load() error = %v", err)
	}
	if !strings.Contains(logs.String(), "stale buffer dropped") {
		t.Errorf("late buffer was not rejected by the coordinator:\n%s", logs.String())
	}

	p.decode(&types.BufferSet{
		Format:     FormatGeoJSON,
		Generation: old,
		Buffers: map[types.Role]types.RawBuffer{
			types.RoleTextPayload: {Name: "late.json", Text: oldPoint, Generation: old, Role: types.RoleTextPayload, Mode: types.ModeText},
		},
	})
	p.publish(old, &types.Decoded{Collection: types.NewFeatureCollection(0)}, nil)
	p.fail(old, types.ErrMalformedJSON)

	st := p.Status()
	if st.Generation != gen || st.State != StateReady {
		t.Errorf("Status() = %v gen %d, want ready gen %d", st.State, st.Generation, gen)
	}
	if st.Collection != current || st.Collection.Len() != 2 {
		t.Errorf("published collection replaced by generation %d", old)
	}
	if st.Err != nil {
		t.Errorf("Err = %v, want nil", st.Err)
	}
}
