package gazealloc

import "math"

// Heatmap accumulates gaze density over a fixed grid with multiplicative
// decay. Intensities only grow through AddPoint; Decay never increases a
// cell.
type Heatmap struct {
	W, H  int
	cells []float64

	decay  float64 // per-pass retention factor, < 1
	spread float64 // gaussian kernel sigma in cells
	floor  float64 // values below this collapse to zero on decay
}

// NewHeatmap creates a w×h grid. decay is the per-pass retention factor
// in (0,1).
func NewHeatmap(w, h int, decay float64) *Heatmap {
	return &Heatmap{
		W:      w,
		H:      h,
		cells:  make([]float64, w*h),
		decay:  decay,
		spread: 1.0,
		floor:  1e-4,
	}
}

// AddPoint deposits weight at a normalized position with a small
// gaussian falloff. Out-of-range positions are clamped to the grid edge.
func (h *Heatmap) AddPoint(x, y, weight float64) {
	cx := clampInt(int(x*float64(h.W)), 0, h.W-1)
	cy := clampInt(int(y*float64(h.H)), 0, h.H-1)

	r := int(math.Ceil(h.spread * 2))
	for dy := -r; dy <= r; dy++ {
		for dx := -r; dx <= r; dx++ {
			gx, gy := cx+dx, cy+dy
			if gx < 0 || gx >= h.W || gy < 0 || gy >= h.H {
				continue
			}
			d2 := float64(dx*dx + dy*dy)
			h.cells[gy*h.W+gx] += weight * math.Exp(-d2/(2*h.spread*h.spread))
		}
	}
}

// Decay applies one retention pass: every cell is multiplied by the
// decay factor and snapped to zero below the floor. With no new points
// this strictly decreases every nonzero cell.
func (h *Heatmap) Decay() {
	for i, v := range h.cells {
		if v == 0 {
			continue
		}
		v *= h.decay
		if v < h.floor {
			v = 0
		}
		h.cells[i] = v
	}
}

// Cell returns the intensity at grid position (x, y).
func (h *Heatmap) Cell(x, y int) float64 {
	return h.cells[y*h.W+x]
}

// Max returns the highest cell intensity.
func (h *Heatmap) Max() float64 {
	max := 0.0
	for _, v := range h.cells {
		if v > max {
			max = v
		}
	}
	return max
}

// Snapshot returns a copy of the grid, row-major.
func (h *Heatmap) Snapshot() []float64 {
	out := make([]float64, len(h.cells))
	copy(out, h.cells)
	return out
}

// Reset zeroes the grid.
func (h *Heatmap) Reset() {
	for i := range h.cells {
		h.cells[i] = 0
	}
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
