package detection

import (
	"fmt"

	"github.com/ironsheep/vision-tools-mcp/internal/imaging"
)

// foreground is the mask value of admissible pixels.
const foreground = 255

// Cluster is a 4-connected blob of foreground mask pixels.
type Cluster struct {
	Label  uint32 `json:"label"`
	Pixels []int  `json:"-"`

	// Inclusive bounding box.
	X1 int `json:"x1"`
	Y1 int `json:"y1"`
	X2 int `json:"x2"`
	Y2 int `json:"y2"`

	// Width and Height count pixels, X2-X1+1 and Y2-Y1+1.
	Width  int `json:"width"`
	Height int `json:"height"`

	// Ratio is min(Width, Height) / max(Width, Height), in (0, 1].
	Ratio float64 `json:"ratio"`

	Size int `json:"size"`
}

func newCluster(c Component) Cluster {
	cl := Cluster{
		Label:  c.Label,
		Pixels: c.Pixels,
		X1:     c.X1,
		Y1:     c.Y1,
		X2:     c.X2,
		Y2:     c.Y2,
		Width:  c.X2 - c.X1 + 1,
		Height: c.Y2 - c.Y1 + 1,
		Size:   len(c.Pixels),
	}
	if cl.Width > 0 && cl.Height > 0 {
		cl.Ratio = float64(min(cl.Width, cl.Height)) / float64(max(cl.Width, cl.Height))
	}
	return cl
}

// ClusterBlobs groups the foreground (255) pixels of a Gray mask into
// 4-connected clusters and drops clusters with fewer than minSize pixels.
//
// Each unvisited foreground pixel seeds a depth-first traversal with an
// explicit stack, so large blobs cannot overflow the goroutine stack.
// Clusters are ordered by their first pixel in raster order.
func ClusterBlobs(mask *imaging.Buffer, minSize int) ([]Cluster, error) {
	if err := mask.Validate(); err != nil {
		return nil, err
	}
	if mask.Format != imaging.Gray {
		return nil, fmt.Errorf("%w: cluster mask must be gray, got %s", imaging.ErrFormat, mask.Format)
	}

	width, height := mask.Width, mask.Height
	grid := NewLabelGrid(width, height)
	admissible := func(i int) bool {
		return mask.Pix[i] == foreground && grid.Labels[i] == 0
	}

	type step struct{ from, to int }
	var stack []step

	for seed := range grid.Labels {
		if !admissible(seed) {
			continue
		}
		grid.Assign(seed)
		stack = append(stack[:0], step{seed, seed})

		for len(stack) > 0 {
			s := stack[len(stack)-1]
			stack = stack[:len(stack)-1]

			if s.to != s.from {
				if !admissible(s.to) {
					continue
				}
				grid.Link(s.from, s.to)
			}

			i := s.to
			x, y := i%width, i/width
			if x+1 < width {
				stack = append(stack, step{i, i + 1})
			}
			if x > 0 {
				stack = append(stack, step{i, i - 1})
			}
			if y+1 < height {
				stack = append(stack, step{i, i + width})
			}
			if y > 0 {
				stack = append(stack, step{i, i - width})
			}
		}
	}

	comps := grid.Resolve(minSize)
	clusters := make([]Cluster, 0, len(comps))
	for _, c := range comps {
		clusters = append(clusters, newCluster(c))
	}
	return clusters, nil
}
