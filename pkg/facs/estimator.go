// Package facs maps blendshape scores onto FACS Action Units and derives
// a coded intensity string, a best-match emotion, and valence/arousal
// estimates. The emotion and affect outputs are deliberately simple
// linear heuristics over AU scores, not learned models.
package facs

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/Yukkurisiteikitai/deepface-facs/pkg/face"
)

// Scoring thresholds. Exported where conformance tests pin them.
const (
	// ActivationFloor removes noise-level AUs from the active set.
	ActivationFloor = 0.05

	// IntensityFloor is the minimum AU score that appears in the FACS code.
	IntensityFloor = 0.2

	// NeutralFloor is the score the neutral default starts with; a pattern
	// must beat it to be reported.
	NeutralFloor = 0.1

	// NeutralCode is emitted when no AU reaches the intensity floor.
	NeutralCode = "---"
)

// Intensity letter breakpoints (FACS A–E scale).
const (
	intensityE = 0.8
	intensityD = 0.6
	intensityC = 0.4
	intensityB = 0.3
)

// Result is the per-frame output of the estimator.
type Result struct {
	// ActionUnits holds every AU at or above ActivationFloor.
	ActionUnits map[int]float64 `json:"action_units"`

	// FACSCode is the coded active set, e.g. "AU4B+AU12C", or NeutralCode.
	FACSCode string `json:"facs_code"`

	Emotion    string  `json:"emotion"`
	Confidence float64 `json:"confidence"`

	// Valence in [-1,1], Arousal in [0,1]. Linear AU combinations,
	// documented as approximations rather than ground truth.
	Valence float64 `json:"valence"`
	Arousal float64 `json:"arousal"`
}

// Estimator converts blendshape maps to AU activations per frame.
// It is stateless; one instance may be shared across frames.
type Estimator struct{}

// NewEstimator creates a blendshape-to-AU estimator.
func NewEstimator() *Estimator {
	return &Estimator{}
}

// Analyze maps one frame of blendshapes to AUs, FACS code, emotion and
// valence/arousal. A nil blendshape map yields a neutral result.
func (e *Estimator) Analyze(bs face.Blendshapes) Result {
	aus := e.ActionUnits(bs)

	emotion, confidence := e.matchEmotion(aus)

	return Result{
		ActionUnits: aus,
		FACSCode:    FormatCode(aus),
		Emotion:     emotion,
		Confidence:  confidence,
		Valence:     valence(aus),
		Arousal:     arousal(aus),
	}
}

// ActionUnits computes the AU activation map from blendshapes. Each AU is
// the max over its contributing channels (weight-scaled); AUs below
// ActivationFloor are dropped.
func (e *Estimator) ActionUnits(bs face.Blendshapes) map[int]float64 {
	aus := make(map[int]float64)
	for au, contribs := range blendshapeToAU {
		best := 0.0
		for _, c := range contribs {
			score := bs.Get(c.Channel) * c.Weight
			if score > best {
				best = score
			}
		}
		if best >= ActivationFloor {
			aus[au] = best
		}
	}
	return aus
}

// FormatCode renders active AUs as a FACS intensity code: AUs at or above
// IntensityFloor, sorted ascending by number, each tagged with its A–E
// letter and joined with "+". An empty active set yields NeutralCode.
func FormatCode(aus map[int]float64) string {
	nums := make([]int, 0, len(aus))
	for au, score := range aus {
		if score >= IntensityFloor {
			nums = append(nums, au)
		}
	}
	if len(nums) == 0 {
		return NeutralCode
	}
	sort.Ints(nums)

	parts := make([]string, 0, len(nums))
	for _, au := range nums {
		parts = append(parts, fmt.Sprintf("AU%d%s", au, intensityLetter(aus[au])))
	}
	return strings.Join(parts, "+")
}

func intensityLetter(score float64) string {
	switch {
	case score >= intensityE:
		return "E"
	case score >= intensityD:
		return "D"
	case score >= intensityC:
		return "C"
	case score >= intensityB:
		return "B"
	default:
		return "A"
	}
}

// matchEmotion scores each pattern by the mean of its AUs that are
// present and keeps the best that clears both its own threshold and the
// running best, starting from the neutral floor.
func (e *Estimator) matchEmotion(aus map[int]float64) (string, float64) {
	best := EmotionNeutral
	bestScore := NeutralFloor

	for _, p := range emotionPatterns {
		sum, n := 0.0, 0
		for _, au := range p.AUs {
			if score, ok := aus[au]; ok {
				sum += score
				n++
			}
		}
		if n == 0 || n < p.MinMatch {
			continue
		}
		mean := sum / float64(n)
		if mean >= p.Threshold && mean > bestScore {
			best = p.Name
			bestScore = mean
		}
	}

	if best == EmotionNeutral {
		return best, 0.5
	}
	return best, math.Min(1, bestScore*1.5)
}

// valence = ((AU6+AU12) - (AU4+AU15+AU9)) / 2, clamped to [-1,1].
func valence(aus map[int]float64) float64 {
	v := ((aus[6] + aus[12]) - (aus[4] + aus[15] + aus[9])) / 2
	return clamp(v, -1, 1)
}

// arousal = mean(AU1, AU2, AU5, AU26, AU20), clamped to [0,1].
func arousal(aus map[int]float64) float64 {
	a := (aus[1] + aus[2] + aus[5] + aus[26] + aus[20]) / 5
	return clamp(a, 0, 1)
}

func clamp(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
