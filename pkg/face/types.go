// Package face defines the per-frame input contract produced by the
// face-perception front end: a dense 3D landmark mesh plus named
// blendshape scores. Analyzers consume these types read-only.
package face

// MinLandmarks is the number of mesh points a frame must carry for the
// landmark indices in this package to be meaningful.
const MinLandmarks = 478

// Point is a single landmark in normalized image coordinates.
// X and Y are roughly in [0,1]; Z is depth relative to the face plane.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// LandmarkFrame is one frame of mesh output from the perception front end.
// Timestamp is in milliseconds and non-decreasing across frames.
type LandmarkFrame struct {
	Landmarks []Point `json:"landmarks"`
	Timestamp float64 `json:"timestamp"`
}

// Valid reports whether the frame carries enough landmarks for analysis.
func (f *LandmarkFrame) Valid() bool {
	return f != nil && len(f.Landmarks) >= MinLandmarks
}

// At returns the landmark at index i. Callers must check Valid() first;
// indices below MinLandmarks are then always in range.
func (f *LandmarkFrame) At(i int) Point {
	return f.Landmarks[i]
}

// Blendshapes maps a named expression channel (e.g. "browInnerUp") to a
// score in [0,1]. Channels not present are treated as zero, never as an
// error.
type Blendshapes map[string]float64

// Get returns the score for a channel, or 0 if absent.
func (b Blendshapes) Get(name string) float64 {
	if b == nil {
		return 0
	}
	return b[name]
}

// Mean returns the average score of the given channels, absent ones
// counting as zero. Returns 0 for an empty channel list.
func (b Blendshapes) Mean(names ...string) float64 {
	if len(names) == 0 {
		return 0
	}
	sum := 0.0
	for _, n := range names {
		sum += b.Get(n)
	}
	return sum / float64(len(names))
}

// Frame bundles the two per-frame inputs. Blendshapes may be nil when the
// front end runs in landmark-only mode; analyzers degrade gracefully.
type Frame struct {
	Landmarks   *LandmarkFrame `json:"landmarks"`
	Blendshapes Blendshapes    `json:"blendshapes,omitempty"`
	Timestamp   float64        `json:"timestamp"`
}
