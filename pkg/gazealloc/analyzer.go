// Package gazealloc buckets a gaze-position stream into named face
// regions, segments it into fixations, and derives dwell statistics,
// emotion-typical viewing patterns, scan-path classes, and nose-anchor
// transit analysis. The pattern tables are illustrative heuristics.
package gazealloc

import (
	"math"

	"github.com/Yukkurisiteikitai/deepface-facs/pkg/history"
)

// Fixation is one accepted dwell. Immutable once recorded.
type Fixation struct {
	X        float64 `json:"x"` // centroid
	Y        float64 `json:"y"`
	Start    float64 `json:"start"`
	End      float64 `json:"end"`
	Duration float64 `json:"duration"`
	AOI      Region  `json:"aoi"`
}

// AOIStat aggregates accepted fixations per region.
type AOIStat struct {
	DwellMs  float64 `json:"dwell_ms"`
	Visits   int     `json:"visits"`
	Fraction float64 `json:"fraction"` // share of total dwell
}

// PatternMatch is the best-matching emotion viewing pattern.
type PatternMatch struct {
	Name       string  `json:"name"`
	Similarity float64 `json:"similarity"`
}

// PatternInsufficient is reported until enough fixations accumulate.
const PatternInsufficient = "insufficient_data"

// ScanPathClass buckets recent viewing behavior.
type ScanPathClass string

const (
	ScanFocused     ScanPathClass = "focused"
	ScanScanning    ScanPathClass = "scanning"
	ScanFixated     ScanPathClass = "fixated"
	ScanExploratory ScanPathClass = "exploratory"
)

// ScanPath summarizes the recent fixation sequence.
type ScanPath struct {
	Class        ScanPathClass `json:"class"`
	Coverage     float64       `json:"coverage"`      // distinct AOIs / total AOIs
	MeanFixation float64       `json:"mean_fixation"` // ms
	PathLength   float64       `json:"path_length"`   // normalized units
}

// NoseAnchor reports whether the nose serves as a transit hub between
// eye and mouth fixations.
type NoseAnchor struct {
	Ratio       float64 `json:"ratio"`
	Anchored    bool    `json:"anchored"`
	Transitions int     `json:"transitions"` // eye<->mouth transitions considered
}

// Result is the per-frame output record.
type Result struct {
	CurrentAOI Region             `json:"current_aoi"`
	Fixation   *Fixation          `json:"fixation,omitempty"` // completed this frame
	AOIStats   map[Region]AOIStat `json:"aoi_stats"`
	Pattern    PatternMatch       `json:"pattern"`
	ScanPath   ScanPath           `json:"scan_path"`
	NoseAnchor NoseAnchor         `json:"nose_anchor"`
}

// emotionAOIPatterns maps emotions to their expected gaze-allocation
// fractions over face regions. Uncited heuristics from eye-tracking
// literature summaries; preserved as data, not hardcoded logic.
var emotionAOIPatterns = map[string]map[Region]float64{
	"happiness": {RegionEyes: 0.30, RegionMouth: 0.45, RegionNose: 0.15, RegionBrows: 0.10},
	"sadness":   {RegionEyes: 0.50, RegionMouth: 0.15, RegionNose: 0.15, RegionBrows: 0.20},
	"anger":     {RegionEyes: 0.40, RegionBrows: 0.35, RegionMouth: 0.15, RegionNose: 0.10},
	"fear":      {RegionEyes: 0.55, RegionMouth: 0.20, RegionBrows: 0.15, RegionNose: 0.10},
	"neutral":   {RegionEyes: 0.35, RegionNose: 0.25, RegionMouth: 0.25, RegionBrows: 0.15},
}

// current is the in-progress fixation.
type current struct {
	cx, cy float64
	start  float64
	last   float64
	active bool
}

// Analyzer segments gaze positions into fixations over an AOI layout.
// Not safe for concurrent use.
type Analyzer struct {
	cfg  Config
	aois []AOI

	cur       current
	fixations *history.Rolling[Fixation]
}

// New creates a gaze allocation analyzer with the default AOI layout.
func New(cfg Config) *Analyzer {
	return &Analyzer{
		cfg:       cfg,
		aois:      DefaultAOIs(),
		fixations: history.NewRolling[Fixation](0, cfg.FixationWindow),
	}
}

// SetAOIs replaces the AOI layout (e.g. after Reanchor).
func (a *Analyzer) SetAOIs(aois []AOI) { a.aois = aois }

// AOIs returns the active layout.
func (a *Analyzer) AOIs() []AOI { return a.aois }

// Update consumes one gaze position at timestamp t (ms) and returns the
// per-frame result. A closed fixation appears in Result.Fixation exactly
// once, on the frame that ended it.
func (a *Analyzer) Update(x, y, t float64) Result {
	closed := a.track(x, y, t)
	if closed != nil {
		a.fixations.Push(t, *closed)
	}
	a.fixations.EvictBefore(t - a.cfg.FixationWindow)

	fixes := a.recentFixations()
	stats := a.aoiStats(fixes)

	return Result{
		CurrentAOI: Classify(a.aois, x, y),
		Fixation:   closed,
		AOIStats:   stats,
		Pattern:    a.matchPattern(fixes, stats),
		ScanPath:   a.scanPath(fixes),
		NoseAnchor: a.noseAnchor(fixes),
	}
}

// track runs the fixation segmentation state machine. A sample within
// FixationRadius of the centroid extends the fixation with an
// exponentially-weighted centroid update; beyond the radius the fixation
// closes (recorded only if long enough) and a new one starts.
func (a *Analyzer) track(x, y, t float64) *Fixation {
	if !a.cur.active {
		a.cur = current{cx: x, cy: y, start: t, last: t, active: true}
		return nil
	}

	if math.Hypot(x-a.cur.cx, y-a.cur.cy) <= a.cfg.FixationRadius {
		w := a.cfg.CentroidSmoothing
		a.cur.cx = w*x + (1-w)*a.cur.cx
		a.cur.cy = w*y + (1-w)*a.cur.cy
		a.cur.last = t
		return nil
	}

	var closed *Fixation
	duration := a.cur.last - a.cur.start
	if duration >= a.cfg.MinFixationDuration {
		closed = &Fixation{
			X:        a.cur.cx,
			Y:        a.cur.cy,
			Start:    a.cur.start,
			End:      a.cur.last,
			Duration: duration,
			AOI:      Classify(a.aois, a.cur.cx, a.cur.cy),
		}
	}
	a.cur = current{cx: x, cy: y, start: t, last: t, active: true}
	return closed
}

func (a *Analyzer) recentFixations() []Fixation {
	samples := a.fixations.Samples()
	out := make([]Fixation, len(samples))
	for i, s := range samples {
		out[i] = s.Value
	}
	return out
}

func (a *Analyzer) aoiStats(fixes []Fixation) map[Region]AOIStat {
	stats := make(map[Region]AOIStat)
	total := 0.0
	for _, f := range fixes {
		s := stats[f.AOI]
		s.DwellMs += f.Duration
		s.Visits++
		stats[f.AOI] = s
		total += f.Duration
	}
	if total > 0 {
		for r, s := range stats {
			s.Fraction = s.DwellMs / total
			stats[r] = s
		}
	}
	return stats
}

// matchPattern compares the observed AOI dwell fractions to each
// emotion's expected distribution: similarity is the mean over regions
// of 1 - |observed - expected|/2, best match wins.
func (a *Analyzer) matchPattern(fixes []Fixation, stats map[Region]AOIStat) PatternMatch {
	if len(fixes) < a.cfg.MinPatternFixations {
		return PatternMatch{Name: PatternInsufficient}
	}

	best := PatternMatch{Name: PatternInsufficient}
	for name, expected := range emotionAOIPatterns {
		sim, n := 0.0, 0
		for region, frac := range expected {
			observed := stats[region].Fraction
			sim += 1 - math.Abs(observed-frac)/2
			n++
		}
		sim /= float64(n)
		if sim > best.Similarity {
			best = PatternMatch{Name: name, Similarity: sim}
		}
	}
	return best
}

// scanPath buckets recent fixation behavior from AOI coverage, mean
// fixation duration and path length. The breakpoint order matters:
// fixated is checked before focused, exploratory last.
func (a *Analyzer) scanPath(fixes []Fixation) ScanPath {
	if len(fixes) == 0 {
		return ScanPath{Class: ScanScanning}
	}

	seen := map[Region]bool{}
	durSum := 0.0
	pathLen := 0.0
	for i, f := range fixes {
		seen[f.AOI] = true
		durSum += f.Duration
		if i > 0 {
			pathLen += math.Hypot(f.X-fixes[i-1].X, f.Y-fixes[i-1].Y)
		}
	}
	coverage := float64(len(seen)) / float64(len(Regions))
	meanDur := durSum / float64(len(fixes))

	class := ScanScanning
	switch {
	case coverage <= a.cfg.FixatedCoverage && meanDur >= a.cfg.LongFixation:
		class = ScanFixated
	case coverage <= a.cfg.FocusedCoverage && meanDur >= a.cfg.MediumFixation:
		class = ScanFocused
	case coverage >= a.cfg.ExploratoryCoverage || pathLen >= a.cfg.HighPathLength:
		class = ScanExploratory
	}

	return ScanPath{
		Class:        class,
		Coverage:     coverage,
		MeanFixation: meanDur,
		PathLength:   pathLen,
	}
}

// noseAnchor counts eye->nose->mouth and mouth->nose->eye triples among
// consecutive fixations against all eye<->mouth transitions (direct or
// via the nose). A ratio above the threshold flags the nose as a
// transit anchor.
func (a *Analyzer) noseAnchor(fixes []Fixation) NoseAnchor {
	viaNose, direct := 0, 0

	for i := 0; i+1 < len(fixes); i++ {
		from, to := fixes[i].AOI, fixes[i+1].AOI
		if (from == RegionEyes && to == RegionMouth) || (from == RegionMouth && to == RegionEyes) {
			direct++
		}
	}
	for i := 0; i+2 < len(fixes); i++ {
		first, mid, last := fixes[i].AOI, fixes[i+1].AOI, fixes[i+2].AOI
		if mid != RegionNose {
			continue
		}
		if (first == RegionEyes && last == RegionMouth) || (first == RegionMouth && last == RegionEyes) {
			viaNose++
		}
	}

	total := viaNose + direct
	if total == 0 {
		return NoseAnchor{}
	}
	ratio := float64(viaNose) / float64(total)
	return NoseAnchor{
		Ratio:       ratio,
		Anchored:    ratio > a.cfg.NoseAnchorThreshold,
		Transitions: total,
	}
}
