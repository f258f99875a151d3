package gazealloc

import "github.com/Yukkurisiteikitai/deepface-facs/pkg/face"

// Region names a face area of interest.
type Region string

const (
	RegionEyes     Region = "eyes"
	RegionNose     Region = "nose"
	RegionMouth    Region = "mouth"
	RegionBrows    Region = "brows"
	RegionForehead Region = "forehead"
	RegionChin     Region = "chin"
	RegionOther    Region = "other"
)

// Regions lists every named AOI, excluding the "other" fallback.
var Regions = []Region{RegionEyes, RegionNose, RegionMouth, RegionBrows, RegionForehead, RegionChin}

// AOI is a named axis-aligned rectangle in face-relative normalized
// coordinates.
type AOI struct {
	Name Region  `json:"name"`
	MinX float64 `json:"min_x"`
	MinY float64 `json:"min_y"`
	MaxX float64 `json:"max_x"`
	MaxY float64 `json:"max_y"`
}

// Contains reports rectangle membership. Both edges are inclusive, so a
// boundary point is classified the same way on every call.
func (a AOI) Contains(x, y float64) bool {
	return x >= a.MinX && x <= a.MaxX && y >= a.MinY && y <= a.MaxY
}

// DefaultAOIs returns the static face-region layout for a centered,
// upright face occupying most of the normalized square.
func DefaultAOIs() []AOI {
	return []AOI{
		{Name: RegionForehead, MinX: 0.25, MinY: 0.05, MaxX: 0.75, MaxY: 0.22},
		{Name: RegionBrows, MinX: 0.25, MinY: 0.22, MaxX: 0.75, MaxY: 0.32},
		{Name: RegionEyes, MinX: 0.22, MinY: 0.32, MaxX: 0.78, MaxY: 0.45},
		{Name: RegionNose, MinX: 0.40, MinY: 0.45, MaxX: 0.60, MaxY: 0.62},
		{Name: RegionMouth, MinX: 0.32, MinY: 0.62, MaxX: 0.68, MaxY: 0.78},
		{Name: RegionChin, MinX: 0.35, MinY: 0.78, MaxX: 0.65, MaxY: 0.92},
	}
}

// Reanchor recenters the AOI layout on the face actually in frame, using
// landmark anchors for eyes, nose and mouth. Returns the input layout
// unchanged when the frame is invalid.
func Reanchor(aois []AOI, frame *face.LandmarkFrame) []AOI {
	if !frame.Valid() {
		return aois
	}

	leftEye := frame.At(face.LeftEyeOuter)
	rightEye := frame.At(face.RightEyeOuter)
	nose := frame.At(face.NoseTip)
	mouthL := frame.At(face.MouthLeft)
	mouthR := frame.At(face.MouthRight)
	chin := frame.At(face.Chin)
	forehead := frame.At(face.Forehead)

	eyeY := (leftEye.Y + rightEye.Y) / 2
	eyeHalfSpan := (leftEye.X - rightEye.X) / 2 * 1.25
	cx := (leftEye.X + rightEye.X) / 2
	mouthY := (mouthL.Y + mouthR.Y) / 2

	out := make([]AOI, 0, len(aois))
	for _, a := range aois {
		switch a.Name {
		case RegionEyes:
			a = AOI{Name: a.Name, MinX: cx - eyeHalfSpan, MaxX: cx + eyeHalfSpan,
				MinY: eyeY - 0.06, MaxY: eyeY + 0.06}
		case RegionNose:
			a = AOI{Name: a.Name, MinX: nose.X - 0.10, MaxX: nose.X + 0.10,
				MinY: eyeY + 0.06, MaxY: nose.Y + 0.05}
		case RegionMouth:
			a = AOI{Name: a.Name, MinX: mouthR.X - 0.04, MaxX: mouthL.X + 0.04,
				MinY: mouthY - 0.07, MaxY: mouthY + 0.07}
		case RegionBrows:
			a = AOI{Name: a.Name, MinX: cx - eyeHalfSpan, MaxX: cx + eyeHalfSpan,
				MinY: eyeY - 0.14, MaxY: eyeY - 0.06}
		case RegionForehead:
			a = AOI{Name: a.Name, MinX: cx - eyeHalfSpan, MaxX: cx + eyeHalfSpan,
				MinY: forehead.Y - 0.05, MaxY: eyeY - 0.14}
		case RegionChin:
			a = AOI{Name: a.Name, MinX: cx - eyeHalfSpan*0.7, MaxX: cx + eyeHalfSpan*0.7,
				MinY: mouthY + 0.07, MaxY: chin.Y + 0.04}
		}
		out = append(out, a)
	}
	return out
}

// Classify returns the first AOI containing the point, or RegionOther.
func Classify(aois []AOI, x, y float64) Region {
	for _, a := range aois {
		if a.Contains(x, y) {
			return a.Name
		}
	}
	return RegionOther
}
