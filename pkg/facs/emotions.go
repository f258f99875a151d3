package facs

// EmotionPattern is a prototype AU combination for one emotion, following
// the Ekman basic-emotion AU tables. Threshold is the minimum mean score
// across the pattern's AUs for the pattern to be considered at all.
//
// These are uncited heuristic prototypes, not a validated classifier.
type EmotionPattern struct {
	Name      string
	AUs       []int
	Threshold float64

	// MinMatch is how many of the pattern's AUs must be active for the
	// pattern to count; the mean is taken over the active ones only.
	MinMatch int
}

// emotionPatterns are evaluated in order; the best mean score that beats
// both its own threshold and the running best wins.
var emotionPatterns = []EmotionPattern{
	{Name: "happiness", AUs: []int{6, 12}, Threshold: 0.3, MinMatch: 2},
	{Name: "sadness", AUs: []int{1, 4, 15}, Threshold: 0.25, MinMatch: 2},
	{Name: "surprise", AUs: []int{1, 2, 5, 26}, Threshold: 0.25, MinMatch: 2},
	{Name: "fear", AUs: []int{1, 2, 4, 5, 20, 26}, Threshold: 0.25, MinMatch: 3},
	{Name: "anger", AUs: []int{4, 5, 7, 23}, Threshold: 0.25, MinMatch: 2},
	{Name: "disgust", AUs: []int{9, 15, 16}, Threshold: 0.25, MinMatch: 2},
	{Name: "contempt", AUs: []int{12, 14}, Threshold: 0.35, MinMatch: 2},
	{Name: "interest", AUs: []int{1, 2}, Threshold: 0.2, MinMatch: 1},
}

// EmotionNeutral is the default emotion when no pattern clears its
// threshold.
const EmotionNeutral = "neutral"

// KnownEmotions lists every label the estimator can emit, neutral
// included. Consumers (e.g. the session recorder) validate labels against
// this set.
func KnownEmotions() []string {
	out := make([]string, 0, len(emotionPatterns)+1)
	out = append(out, EmotionNeutral)
	for _, p := range emotionPatterns {
		out = append(out, p.Name)
	}
	return out
}
