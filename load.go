package geolayer

import (
	"context"
	"fmt"
	"runtime"
	"strings"

	"golang.org/x/sync/errgroup"
)

// Result is the outcome of a one-shot load.
type Result struct {
	Collection *FeatureCollection
	Warnings   []Warning
	Sources    []Source
}

// Job describes one independent load for LoadMany.
type Job struct {
	Uploads []Upload
	Options []Option
	Format  Format
}

func (j Job) name() string {
	names := make([]string, len(j.Uploads))
	for i, u := range j.Uploads {
		names[i] = u.Name
	}
	return strings.Join(names, ",")
}

func (j Job) run(ctx context.Context) (*Result, error) {
	p := New(j.Options...)
	p.SetFormat(j.Format)

	fc, err := p.Upload(ctx, j.Uploads)
	if err != nil {
		return nil, err
	}
	st := p.Status()
	return &Result{Collection: fc, Warnings: st.Warnings, Sources: st.Sources}, nil
}

// Load decodes uploads as format with a throwaway Pipeline.
//
// Example:
//
//	res, err := geolayer.Load(ctx, geolayer.FormatGeoJSON, geolayer.UploadFile("parks.json"))
//	if err != nil {
//		log.Fatal(geolayer.UserMessage(err))
//	}
//	fmt.Println(res.Collection.Len(), "features")
func Load(ctx context.Context, format Format, uploads ...Upload) (*Result, error) {
	return Job{Format: format, Uploads: uploads}.run(ctx)
}

// LoadMany runs independent jobs concurrently.
//
// Jobs run on up to runtime.NumCPU() goroutines, each with its own Pipeline.
// Results are returned in the same order as the input jobs.
//
// If any job fails, the remaining jobs are cancelled and only the first
// error is returned.
func LoadMany(ctx context.Context, jobs ...Job) ([]*Result, error) {
	if len(jobs) == 0 {
		return nil, nil
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())

	results := make([]*Result, len(jobs))

	for i, job := range jobs {
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			res, err := job.run(ctx)
			if err != nil {
				return fmt.Errorf("job %d (%s): %w", i, job.name(), err)
			}
			results[i] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
