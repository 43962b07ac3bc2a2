package detection

import (
	"fmt"
	"math"

	"github.com/ironsheep/vision-tools-mcp/internal/imaging"
)

// DefaultMinLineSize is the smallest linked component reported as a line.
const DefaultMinLineSize = 10

// Point represents a 2D coordinate in pixel space.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Mark classifies a strong edge pixel by its strong 4-neighbours.
type Mark uint8

const (
	// MarkNone: not a strong edge pixel, or on the image border.
	MarkNone Mark = iota
	// MarkSingle: strong, but no strong 4-neighbour.
	MarkSingle
	// MarkColumn: part of a vertical run (strong pixel above or below) only.
	MarkColumn
	// MarkRow: part of a horizontal run (strong pixel left or right) only.
	MarkRow
	// MarkCross: part of both a horizontal and a vertical run.
	MarkCross
)

func (m Mark) String() string {
	switch m {
	case MarkNone:
		return "none"
	case MarkSingle:
		return "single"
	case MarkColumn:
		return "column"
	case MarkRow:
		return "row"
	case MarkCross:
		return "cross"
	}
	return fmt.Sprintf("Mark(%d)", uint8(m))
}

// Orientation of a linked line.
type Orientation uint8

const (
	Unclassified Orientation = iota
	Horizontal
	Vertical
)

func (o Orientation) String() string {
	switch o {
	case Horizontal:
		return "horizontal"
	case Vertical:
		return "vertical"
	}
	return "unclassified"
}

// MarshalText encodes the orientation by name.
func (o Orientation) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// UnmarshalText decodes a name written by MarshalText.
func (o *Orientation) UnmarshalText(text []byte) error {
	for _, v := range []Orientation{Unclassified, Horizontal, Vertical} {
		if v.String() == string(text) {
			*o = v
			return nil
		}
	}
	return fmt.Errorf("unknown orientation %q", text)
}

// ClassifyEdges marks the interior strong (255) pixels of a Gray edge map by
// the runs they belong to: a strong left or right neighbour makes a row pair,
// a strong upper or lower neighbour a column pair, and both pixels of a pair
// carry the mark. Border pixels stay MarkNone.
func ClassifyEdges(edges *imaging.Buffer) ([]Mark, error) {
	if err := edges.Validate(); err != nil {
		return nil, err
	}
	if edges.Format != imaging.Gray {
		return nil, fmt.Errorf("%w: edge map must be gray, got %s", imaging.ErrFormat, edges.Format)
	}

	width, height := edges.Width, edges.Height
	marks := make([]Mark, width*height)
	strong := func(i int) bool { return edges.Pix[i] == foreground }

	for y := 1; y < height-1; y++ {
		for x := 1; x < width-1; x++ {
			i := y*width + x
			if !strong(i) {
				continue
			}
			row := strong(i-1) || strong(i+1)
			col := strong(i-width) || strong(i+width)
			switch {
			case row && col:
				marks[i] = MarkCross
			case row:
				marks[i] = MarkRow
			case col:
				marks[i] = MarkColumn
			default:
				marks[i] = MarkSingle
			}
		}
	}
	return marks, nil
}

// LinkPolicy decides which neighbouring marked pixels are joined while
// linking lines of one orientation.
type LinkPolicy struct {
	Orientation Orientation

	// IncludeCross lets MarkCross pixels take part in links. By default they
	// are excluded so that intersections split lines.
	IncludeCross bool
}

var (
	// RowPolicy links horizontal runs and rejects any pixel marked as a column.
	RowPolicy = LinkPolicy{Orientation: Horizontal}

	// ColumnPolicy links vertical runs. It rejects pixels marked as a row and
	// pairs within a single row. Diagonal pairs are accepted, so a column
	// may drift sideways one pixel per row.
	ColumnPolicy = LinkPolicy{Orientation: Vertical}
)

// WithCross returns a copy of p that admits MarkCross pixels.
func (p LinkPolicy) WithCross() LinkPolicy {
	p.IncludeCross = true
	return p
}

func (p LinkPolicy) admits(m Mark) bool {
	switch m {
	case MarkNone:
		return false
	case MarkCross:
		return p.IncludeCross
	case MarkColumn:
		return p.Orientation != Horizontal
	case MarkRow:
		return p.Orientation != Vertical
	}
	return true
}

func (p LinkPolicy) accepts(marks []Mark, a, b, width int) bool {
	if !p.admits(marks[a]) || !p.admits(marks[b]) {
		return false
	}
	if p.Orientation == Vertical && a/width == b/width {
		return false
	}
	return true
}

// LinkLines labels the marked pixels into connected runs under policy.
//
// A 2x2 window slides over every position (x, y) with x < width-1 and
// y < height-1 and tests four pairs: top-left with top-right, top-left with
// bottom-left, top-left with bottom-right, and top-right with bottom-left.
// Accepted pairs are linked in the returned grid; call Resolve on it to
// obtain the runs.
func LinkLines(marks []Mark, width, height int, policy LinkPolicy) *LabelGrid {
	grid := NewLabelGrid(width, height)
	for y := 0; y < height-1; y++ {
		for x := 0; x < width-1; x++ {
			tl := y*width + x
			tr := tl + 1
			bl := tl + width
			br := bl + 1
			for _, pair := range [4][2]int{{tl, tr}, {tl, bl}, {tl, br}, {tr, bl}} {
				if policy.accepts(marks, pair[0], pair[1], width) {
					grid.Link(pair[0], pair[1])
				}
			}
		}
	}
	return grid
}

// Line is a linked run of edge pixels reduced to its two extreme pixels.
type Line struct {
	// Start is the first pixel of the run in raster order, End the last.
	Start Point `json:"start"`
	End   Point `json:"end"`

	Orientation Orientation `json:"orientation"`

	// Size is the number of linked pixels.
	Size int `json:"size"`

	Length       float64 `json:"length"`
	AngleDegrees float64 `json:"angle_degrees"`
}

func newLine(c Component, width int, o Orientation) Line {
	first, last := c.Pixels[0], c.Pixels[len(c.Pixels)-1]
	start := Point{X: first % width, Y: first / width}
	end := Point{X: last % width, Y: last / width}
	dx, dy := float64(end.X-start.X), float64(end.Y-start.Y)
	return Line{
		Start:        start,
		End:          end,
		Orientation:  o,
		Size:         len(c.Pixels),
		Length:       math.Hypot(dx, dy),
		AngleDegrees: math.Atan2(dy, dx) * 180 / math.Pi,
	}
}

// LineOptions tunes DetectLines.
type LineOptions struct {
	Canny imaging.CannyOptions `json:"canny" yaml:",inline"`

	// MinSize drops runs with fewer pixels.
	MinSize int `json:"min_size" yaml:"min_size"`

	// IncludeCross admits intersection pixels into both row and column runs.
	IncludeCross bool `json:"include_cross" yaml:"include_cross"`
}

// DefaultLineOptions returns the permissive Canny thresholds and a minimum run of 10 pixels.
func DefaultLineOptions() LineOptions {
	return LineOptions{
		Canny:   imaging.DefaultLineCannyOptions(),
		MinSize: DefaultMinLineSize,
	}
}

// LineSet is the full output of line linking: the lines plus the resolved
// row and column label grids they came from.
type LineSet struct {
	Width   int
	Height  int
	Lines   []Line
	Rows    *LabelGrid
	Columns *LabelGrid
}

// LinkEdges classifies a Gray edge map and links it into horizontal and
// vertical lines. Horizontal lines come first, then vertical, each in the
// raster order of their first pixel.
func LinkEdges(edges *imaging.Buffer, opts LineOptions) (*LineSet, error) {
	marks, err := ClassifyEdges(edges)
	if err != nil {
		return nil, err
	}

	rowPolicy, colPolicy := RowPolicy, ColumnPolicy
	if opts.IncludeCross {
		rowPolicy, colPolicy = rowPolicy.WithCross(), colPolicy.WithCross()
	}

	width, height := edges.Width, edges.Height
	set := &LineSet{
		Width:   width,
		Height:  height,
		Rows:    LinkLines(marks, width, height, rowPolicy),
		Columns: LinkLines(marks, width, height, colPolicy),
	}
	for _, c := range set.Rows.Resolve(opts.MinSize) {
		set.Lines = append(set.Lines, newLine(c, width, Horizontal))
	}
	for _, c := range set.Columns.Resolve(opts.MinSize) {
		set.Lines = append(set.Lines, newLine(c, width, Vertical))
	}
	return set, nil
}

// DetectLineSet runs Canny edge detection with opts.Canny and links the edges.
func DetectLineSet(src *imaging.Buffer, opts LineOptions) (*LineSet, error) {
	edges, err := imaging.CannyEdgeMap(src, opts.Canny)
	if err != nil {
		return nil, fmt.Errorf("failed to detect edges: %w", err)
	}
	return LinkEdges(edges, opts)
}

// DetectLines finds horizontal and vertical line segments in src.
//
// Parameters:
//   - src: Gray, RGB or RGBA buffer.
//   - opts: Canny options, minimum run size and cross handling.
//     DefaultLineOptions gives 0.05/0.10 hysteresis and a minimum of 10 pixels.
//
// Returns:
//   - []Line: Horizontal lines, then vertical lines.
//   - error: Non-nil if src is malformed or opts are out of range.
//
// # Algorithm
//
//  1. Canny edge map
//  2. Each interior strong pixel is marked by the horizontal and vertical
//     runs of two or more strong pixels it belongs to (single, row, column,
//     cross)
//  3. Row and column pixels are linked separately with a 2x2 window
//  4. Runs shorter than MinSize are dropped
//  5. Each run becomes a segment between its first and last pixel
//
// # Limitations
//
//   - Only near-axis-aligned lines are found
//   - Intersections split lines unless IncludeCross is set
//   - Column runs accept diagonal steps and may lean
func DetectLines(src *imaging.Buffer, opts LineOptions) ([]Line, error) {
	set, err := DetectLineSet(src, opts)
	if err != nil {
		return nil, err
	}
	return set.Lines, nil
}
