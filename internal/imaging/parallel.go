package imaging

import (
	"runtime"

	"golang.org/x/sync/errgroup"
)

// minBandRows keeps small images on the calling goroutine.
const minBandRows = 16

// forEachRowBand splits [0, height) into contiguous row bands and calls fn for
// each band, at most GOMAXPROCS at a time. fn must only write rows inside its
// band. Returns after every band has finished.
func forEachRowBand(height int, fn func(y0, y1 int)) {
	workers := runtime.GOMAXPROCS(0)
	if workers <= 1 || height < 2*minBandRows {
		fn(0, height)
		return
	}

	band := (height + workers - 1) / workers
	if band < minBandRows {
		band = minBandRows
	}

	var g errgroup.Group
	g.SetLimit(workers)
	for y0 := 0; y0 < height; y0 += band {
		y0, y1 := y0, min(y0+band, height) // per-iteration copy (go 1.21 loop semantics)
		g.Go(func() error {
			fn(y0, y1)
			return nil
		})
	}
	// Band functions return nothing, so every goroutine returns nil and Wait
	// only serves as the join.
	_ = g.Wait()
}
