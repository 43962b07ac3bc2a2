package detection

import (
	"fmt"
	"image"
	"math"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/ironsheep/vision-tools-mcp/internal/imaging"
)

// DefaultStopColor is the red range used to find stop-sign candidates.
var DefaultStopColor = imaging.ColorRange{MinR: 80, MaxR: 255, MinG: 0, MaxG: 80, MinB: 0, MaxB: 80}

// StopSignOptions tunes StopSignDetector.
type StopSignOptions struct {
	Color imaging.ColorRange `json:"color" yaml:"color"`

	// Candidate clusters must be at least this many pixels wide and tall.
	MinClusterWidth  int `json:"min_cluster_width" yaml:"min_cluster_width"`
	MinClusterHeight int `json:"min_cluster_height" yaml:"min_cluster_height"`

	// MinClusterRatio is the smallest accepted min(w,h)/max(w,h).
	MinClusterRatio float64 `json:"min_cluster_ratio" yaml:"min_cluster_ratio"`

	// MinClusterSize is the pixel count below which blobs are ignored outright.
	MinClusterSize int `json:"min_cluster_size" yaml:"min_cluster_size"`

	// MaxDissimilarity: clusters scoring at or above it are rejected.
	MaxDissimilarity float64 `json:"max_dissimilarity" yaml:"max_dissimilarity"`

	// BorderRatio pads accepted regions by this fraction of their size on each side.
	BorderRatio float64 `json:"border_ratio" yaml:"border_ratio"`
}

// DefaultStopSignOptions returns the stock thresholds.
func DefaultStopSignOptions() StopSignOptions {
	return StopSignOptions{
		Color:            DefaultStopColor,
		MinClusterWidth:  50,
		MinClusterHeight: 50,
		MinClusterRatio:  0.8,
		MinClusterSize:   1,
		MaxDissimilarity: 0.2,
		BorderRatio:      0.025,
	}
}

// Validate checks the options for values that would make detection meaningless.
func (o StopSignOptions) Validate() error {
	if err := o.Color.Validate(); err != nil {
		return err
	}
	switch {
	case o.MinClusterWidth < 1 || o.MinClusterHeight < 1:
		return fmt.Errorf("%w: minimum cluster size %dx%d", imaging.ErrInvalidOptions, o.MinClusterWidth, o.MinClusterHeight)
	case o.MinClusterRatio < 0 || o.MinClusterRatio > 1:
		return fmt.Errorf("%w: minimum cluster ratio %v", imaging.ErrInvalidOptions, o.MinClusterRatio)
	case o.MinClusterSize < 1:
		return fmt.Errorf("%w: minimum cluster pixels %d", imaging.ErrInvalidOptions, o.MinClusterSize)
	case o.MaxDissimilarity <= 0 || o.MaxDissimilarity > 1:
		return fmt.Errorf("%w: max dissimilarity %v", imaging.ErrInvalidOptions, o.MaxDissimilarity)
	case o.BorderRatio < 0:
		return fmt.Errorf("%w: border ratio %v", imaging.ErrInvalidOptions, o.BorderRatio)
	}
	return nil
}

// Region is an axis-aligned rectangle in pixel coordinates. It may extend
// past the image after padding.
type Region struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Rect returns the region as an image.Rectangle.
func (r Region) Rect() image.Rectangle {
	return image.Rect(r.X, r.Y, r.X+r.Width, r.Y+r.Height)
}

// Candidate is a cluster that passed the geometry filter, with its template
// dissimilarity.
type Candidate struct {
	Cluster
	Score    float64 `json:"score"`
	Accepted bool    `json:"accepted"`
	Region   Region  `json:"region"`
}

// StopSignDetector finds stop-sign shaped red regions by comparing color
// clusters against a reference silhouette.
type StopSignDetector struct {
	Options  StopSignOptions
	Template *Template
}

// NewStopSignDetector creates a detector. A nil template selects the
// built-in octagon.
func NewStopSignDetector(opts StopSignOptions, tmpl *Template) *StopSignDetector {
	if tmpl == nil {
		tmpl = NewOctagonTemplate()
	}
	return &StopSignDetector{Options: opts, Template: tmpl}
}

// DetectStopSignRegions runs a detector with default options against tmpl
// (nil for the built-in octagon).
func DetectStopSignRegions(src *imaging.Buffer, tmpl *Template) ([]Region, error) {
	return NewStopSignDetector(DefaultStopSignOptions(), tmpl).Detect(src)
}

// Detect returns the padded regions of src that look like stop signs, in
// cluster order.
//
// # Algorithm
//
//  1. Threshold src with Options.Color into a mask
//  2. Cluster the mask into 4-connected blobs
//  3. Keep clusters at least MinClusterWidth x MinClusterHeight with a
//     ratio of at least MinClusterRatio
//  4. Rescale the template mask to each cluster's box and take the mean
//     absolute difference over the box, normalized to [0, 1]
//  5. Accept clusters scoring below MaxDissimilarity and pad them by
//     round(dimension * BorderRatio) on each side
//
// Returns an empty slice when nothing matches.
func (d *StopSignDetector) Detect(src *imaging.Buffer) ([]Region, error) {
	candidates, err := d.Candidates(src)
	if err != nil {
		return nil, err
	}
	regions := make([]Region, 0, len(candidates))
	for _, c := range candidates {
		if c.Accepted {
			regions = append(regions, c.Region)
		}
	}
	return regions, nil
}

// Candidates returns every cluster that passed the geometry filter with its
// score and padded region, accepted or not.
func (d *StopSignDetector) Candidates(src *imaging.Buffer) ([]Candidate, error) {
	if err := d.Options.Validate(); err != nil {
		return nil, err
	}
	mask, err := imaging.ThresholdColor(src, d.Options.Color)
	if err != nil {
		return nil, err
	}
	clusters, err := ClusterBlobs(mask, d.Options.MinClusterSize)
	if err != nil {
		return nil, err
	}

	candidates := make([]Candidate, 0, len(clusters))
	for _, c := range clusters {
		if d.fits(c) {
			candidates = append(candidates, Candidate{Cluster: c})
		}
	}

	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i := range candidates {
		i := i // per-iteration copy (go 1.21 loop semantics)
		g.Go(func() error {
			c := &candidates[i]
			score, err := d.dissimilarity(mask, c.Cluster)
			if err != nil {
				return err
			}
			c.Score = score
			c.Accepted = score < d.Options.MaxDissimilarity
			c.Region = d.pad(c.Cluster)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return candidates, nil
}

func (d *StopSignDetector) fits(c Cluster) bool {
	return c.Width >= d.Options.MinClusterWidth &&
		c.Height >= d.Options.MinClusterHeight &&
		c.Ratio >= d.Options.MinClusterRatio
}

// dissimilarity is the mean of |template - mask| / 255 over the cluster's
// bounding box, in [0, 1].
func (d *StopSignDetector) dissimilarity(mask *imaging.Buffer, c Cluster) (float64, error) {
	tmpl, err := d.Template.Mask(c.Width, c.Height, d.Options.Color)
	if err != nil {
		return 0, err
	}

	var dist float64
	for y := 0; y < c.Height; y++ {
		row := mask.Pix[(c.Y1+y)*mask.Width+c.X1:]
		for x := 0; x < c.Width; x++ {
			dist += math.Abs(float64(tmpl.Pix[y*c.Width+x])-float64(row[x])) / 255
		}
	}
	return dist / float64(c.Width*c.Height), nil
}

func (d *StopSignDetector) pad(c Cluster) Region {
	bx := int(math.Round(float64(c.Width) * d.Options.BorderRatio))
	by := int(math.Round(float64(c.Height) * d.Options.BorderRatio))
	return Region{
		X:      c.X1 - bx,
		Y:      c.Y1 - by,
		Width:  c.Width + 2*bx,
		Height: c.Height + 2*by,
	}
}
