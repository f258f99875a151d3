package facs

import (
	"math"
	"testing"

	"github.com/Yukkurisiteikitai/deepface-facs/pkg/face"
)

const floatTolerance = 1e-9

func floatEquals(a, b float64) bool {
	return math.Abs(a-b) < floatTolerance
}

func TestFormatCode_Ordering(t *testing.T) {
	// AU12 at 0.5 -> C, AU4 at 0.35 -> B; ascending AU number
	code := FormatCode(map[int]float64{12: 0.5, 4: 0.35})
	if code != "AU4B+AU12C" {
		t.Errorf("FACS code: got %q, want %q", code, "AU4B+AU12C")
	}
}

func TestFormatCode_Letters(t *testing.T) {
	cases := []struct {
		score float64
		want  string
	}{
		{0.2, "AU12A"},
		{0.3, "AU12B"},
		{0.4, "AU12C"},
		{0.6, "AU12D"},
		{0.8, "AU12E"},
		{1.0, "AU12E"},
	}
	for _, c := range cases {
		got := FormatCode(map[int]float64{12: c.score})
		if got != c.want {
			t.Errorf("score %v: got %q, want %q", c.score, got, c.want)
		}
	}
}

func TestFormatCode_NeutralSentinel(t *testing.T) {
	if code := FormatCode(nil); code != NeutralCode {
		t.Errorf("Empty set: got %q, want %q", code, NeutralCode)
	}
	// Below intensity floor doesn't appear either
	if code := FormatCode(map[int]float64{12: 0.1}); code != NeutralCode {
		t.Errorf("Sub-floor AU: got %q, want %q", code, NeutralCode)
	}
}

func TestActionUnits_MaxNotSum(t *testing.T) {
	e := NewEstimator()
	bs := face.Blendshapes{
		"mouthSmileLeft":  0.6,
		"mouthSmileRight": 0.4,
	}
	aus := e.ActionUnits(bs)
	if !floatEquals(aus[12], 0.6) {
		t.Errorf("AU12 should be max of contributors: got %v, want 0.6", aus[12])
	}
}

func TestActionUnits_ActivationFloor(t *testing.T) {
	e := NewEstimator()
	aus := e.ActionUnits(face.Blendshapes{"browInnerUp": 0.04})
	if _, ok := aus[1]; ok {
		t.Errorf("AU1 below activation floor should be absent, got %v", aus[1])
	}
}

func TestAnalyze_Happiness(t *testing.T) {
	e := NewEstimator()
	res := e.Analyze(face.Blendshapes{
		"cheekSquintLeft": 0.7,
		"mouthSmileLeft":  0.8,
	})

	if res.Emotion != "happiness" {
		t.Errorf("Emotion: got %q, want happiness", res.Emotion)
	}
	// mean(0.7, 0.8) = 0.75, confidence = min(1, 0.75*1.5) = 1
	if !floatEquals(res.Confidence, 1.0) {
		t.Errorf("Confidence: got %v, want 1.0", res.Confidence)
	}
	if res.Valence <= 0 {
		t.Errorf("Smile should have positive valence, got %v", res.Valence)
	}
}

func TestAnalyze_NeutralOnEmptyInput(t *testing.T) {
	e := NewEstimator()
	res := e.Analyze(nil)

	if res.Emotion != EmotionNeutral {
		t.Errorf("Emotion: got %q, want %q", res.Emotion, EmotionNeutral)
	}
	if res.FACSCode != NeutralCode {
		t.Errorf("FACSCode: got %q, want %q", res.FACSCode, NeutralCode)
	}
	if !floatEquals(res.Valence, 0) || !floatEquals(res.Arousal, 0) {
		t.Errorf("Neutral affect: got valence %v arousal %v, want 0 0", res.Valence, res.Arousal)
	}
}

func TestAnalyze_ValenceClamped(t *testing.T) {
	e := NewEstimator()
	// Strong negative AUs drive valence below the formula's raw range
	res := e.Analyze(face.Blendshapes{
		"browDownLeft":   1.0,
		"mouthFrownLeft": 1.0,
		"noseSneerLeft":  1.0,
	})
	if res.Valence < -1 || res.Valence > 1 {
		t.Errorf("Valence out of range: %v", res.Valence)
	}
	if !floatEquals(res.Valence, -1) {
		t.Errorf("Full negative activation: got %v, want -1 (raw -1.5 clamped)", res.Valence)
	}
}
