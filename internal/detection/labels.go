package detection

// LabelGrid assigns connected-component labels to the pixels of a
// width x height grid.
//
// Labels are positive integers; 0 means unlabeled. Labeling happens in two
// stages. During the scan, Assign and Link hand out provisional labels and
// record merges in an equivalence table. Resolve then rewrites every cell to
// the canonical label of its set and gathers the components.
//
// The equivalence table always points a larger label at a smaller one, so the
// canonical label of a set is its smallest provisional label. Labels are
// uint32, which bounds a grid to about four billion provisional labels.
type LabelGrid struct {
	Width  int
	Height int

	// Labels holds one label per pixel, row-major.
	Labels []uint32

	// parent is the equivalence table indexed by label. parent[l] == l marks
	// a canonical label. Index 0 is a placeholder for "unlabeled".
	parent []uint32
}

// NewLabelGrid creates an unlabeled grid.
func NewLabelGrid(width, height int) *LabelGrid {
	return &LabelGrid{
		Width:  width,
		Height: height,
		Labels: make([]uint32, width*height),
		parent: []uint32{0},
	}
}

// Assign gives pixel i a fresh label and returns it.
func (g *LabelGrid) Assign(i int) uint32 {
	l := g.newLabel()
	g.Labels[i] = l
	return l
}

// Link declares pixels a and b connected:
//   - neither labeled: both get one fresh label
//   - one labeled: the other inherits it
//   - both labeled differently: their sets are merged in the equivalence table
//
// Cells are not rewritten on merge; Resolve does that in one pass.
func (g *LabelGrid) Link(a, b int) {
	la, lb := g.Labels[a], g.Labels[b]
	switch {
	case la == 0 && lb == 0:
		l := g.newLabel()
		g.Labels[a] = l
		g.Labels[b] = l
	case la == 0:
		g.Labels[a] = lb
	case lb == 0:
		g.Labels[b] = la
	case la != lb:
		g.union(la, lb)
	}
}

// Provisional returns the number of labels handed out so far.
func (g *LabelGrid) Provisional() int {
	return len(g.parent) - 1
}

func (g *LabelGrid) newLabel() uint32 {
	l := uint32(len(g.parent))
	g.parent = append(g.parent, l)
	return l
}

// union records the merge of the sets of a and b. The entry always goes from
// the larger representative to the smaller one, and merging representatives
// rather than the labels themselves keeps earlier merges intact.
func (g *LabelGrid) union(a, b uint32) {
	ra, rb := g.find(a), g.find(b)
	switch {
	case ra < rb:
		g.parent[rb] = ra
	case rb < ra:
		g.parent[ra] = rb
	}
}

func (g *LabelGrid) find(l uint32) uint32 {
	for g.parent[l] != l {
		l = g.parent[l]
	}
	return l
}

// Component is one resolved connected component.
type Component struct {
	// Label is the canonical label written to the grid.
	Label uint32

	// Pixels holds the flat pixel indices of the component in raster order.
	Pixels []int

	// Inclusive bounding box.
	X1, Y1, X2, Y2 int
}

// Size returns the number of pixels in the component.
func (c *Component) Size() int {
	return len(c.Pixels)
}

func (c *Component) extend(x, y int) {
	c.X1 = min(c.X1, x)
	c.Y1 = min(c.Y1, y)
	c.X2 = max(c.X2, x)
	c.Y2 = max(c.Y2, y)
}

// Resolve rewrites every labeled cell to its canonical label, gathers the
// pixels of each component and drops components with fewer than minSize
// pixels, resetting their cells to 0.
//
// Components are returned in the raster order of their first pixel, so the
// result does not depend on the order in which links were recorded.
func (g *LabelGrid) Resolve(minSize int) []Component {
	canonical := make([]uint32, len(g.parent))
	for l := range canonical {
		canonical[l] = g.find(uint32(l))
	}
	// Flatten so later finds are direct.
	copy(g.parent, canonical)

	index := make(map[uint32]int)
	var comps []Component
	for i, l := range g.Labels {
		if l == 0 {
			continue
		}
		l = canonical[l]
		g.Labels[i] = l

		x, y := i%g.Width, i/g.Width
		k, ok := index[l]
		if !ok {
			k = len(comps)
			index[l] = k
			comps = append(comps, Component{Label: l, X1: x, Y1: y, X2: x, Y2: y})
		}
		comp := &comps[k]
		comp.Pixels = append(comp.Pixels, i)
		comp.extend(x, y)
	}

	kept := make([]Component, 0, len(comps))
	for _, c := range comps {
		if len(c.Pixels) < minSize {
			for _, i := range c.Pixels {
				g.Labels[i] = 0
			}
			continue
		}
		kept = append(kept, c)
	}
	return kept
}
