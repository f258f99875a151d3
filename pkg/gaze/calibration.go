package gaze

// Target is one on-screen calibration point in normalized coordinates.
type Target struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// DefaultTargets returns the 3x3 calibration grid, row-major from
// top-left.
func DefaultTargets() []Target {
	coords := []float64{0.1, 0.5, 0.9}
	targets := make([]Target, 0, 9)
	for _, y := range coords {
		for _, x := range coords {
			targets = append(targets, Target{X: x, Y: y})
		}
	}
	return targets
}

// Model maps a gaze vector to one screen axis: screen = A*gx + B*gy + C.
// The quadratic cross terms are reserved for a future fit and stay zero
// with the bilinear solver.
type Model struct {
	A, B, C       float64
	QXX, QYY, QXY float64
}

// Predict evaluates the model at a gaze vector.
func (m Model) Predict(gx, gy float64) float64 {
	return m.A*gx + m.B*gy + m.C + m.QXX*gx*gx + m.QYY*gy*gy + m.QXY*gx*gy
}

// Mapping is the fitted pair of per-axis models.
type Mapping struct {
	X Model
	Y Model
}

// Predict maps a gaze vector to screen coordinates.
func (m Mapping) Predict(gx, gy float64) (x, y float64) {
	return m.X.Predict(gx, gy), m.Y.Predict(gx, gy)
}

// observation is one averaged calibration point: the mean gaze vector
// recorded while the subject fixated a known target.
type observation struct {
	gx, gy float64
	target Target
}

// Solve fits both per-axis bilinear models by least squares over the
// observations (normal equations on [gx gy 1]).
func solveMapping(obs []observation) (Mapping, error) {
	if len(obs) < 3 {
		return Mapping{}, ErrInsufficientPoints
	}

	// Accumulate A^T A (symmetric 3x3) and A^T b for both axes.
	var s [3][3]float64
	var bx, by [3]float64
	for _, o := range obs {
		row := [3]float64{o.gx, o.gy, 1}
		for i := 0; i < 3; i++ {
			for j := 0; j < 3; j++ {
				s[i][j] += row[i] * row[j]
			}
			bx[i] += row[i] * o.target.X
			by[i] += row[i] * o.target.Y
		}
	}

	cx, err := solve3(s, bx)
	if err != nil {
		return Mapping{}, err
	}
	cy, err := solve3(s, by)
	if err != nil {
		return Mapping{}, err
	}

	return Mapping{
		X: Model{A: cx[0], B: cx[1], C: cx[2]},
		Y: Model{A: cy[0], B: cy[1], C: cy[2]},
	}, nil
}

// solve3 solves a 3x3 linear system by Gaussian elimination with partial
// pivoting.
func solve3(a [3][3]float64, b [3]float64) ([3]float64, error) {
	for col := 0; col < 3; col++ {
		pivot := col
		for r := col + 1; r < 3; r++ {
			if abs(a[r][col]) > abs(a[pivot][col]) {
				pivot = r
			}
		}
		if abs(a[pivot][col]) < 1e-12 {
			return [3]float64{}, ErrInsufficientPoints
		}
		a[col], a[pivot] = a[pivot], a[col]
		b[col], b[pivot] = b[pivot], b[col]

		for r := col + 1; r < 3; r++ {
			f := a[r][col] / a[col][col]
			for c := col; c < 3; c++ {
				a[r][c] -= f * a[col][c]
			}
			b[r] -= f * b[col]
		}
	}

	var x [3]float64
	for r := 2; r >= 0; r-- {
		sum := b[r]
		for c := r + 1; c < 3; c++ {
			sum -= a[r][c] * x[c]
		}
		x[r] = sum / a[r][r]
	}
	return x, nil
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
