package facs

// auContribution is one blendshape channel feeding an Action Unit with a
// fixed weight. A channel may feed several AUs and an AU may be fed by
// several channels; the AU score is the max over contributors so that
// multiple partial cues never exceed full confidence.
type auContribution struct {
	Channel string
	Weight  float64
}

// blendshapeToAU maps AU numbers to their contributing blendshape
// channels. Channel names follow the perception front end's vocabulary.
var blendshapeToAU = map[int][]auContribution{
	1:  {{"browInnerUp", 1.0}},
	2:  {{"browOuterUpLeft", 1.0}, {"browOuterUpRight", 1.0}},
	4:  {{"browDownLeft", 1.0}, {"browDownRight", 1.0}},
	5:  {{"eyeWideLeft", 1.0}, {"eyeWideRight", 1.0}},
	6:  {{"cheekSquintLeft", 1.0}, {"cheekSquintRight", 1.0}, {"mouthSmileLeft", 0.3}, {"mouthSmileRight", 0.3}},
	7:  {{"eyeSquintLeft", 1.0}, {"eyeSquintRight", 1.0}},
	9:  {{"noseSneerLeft", 1.0}, {"noseSneerRight", 1.0}},
	10: {{"mouthUpperUpLeft", 1.0}, {"mouthUpperUpRight", 1.0}},
	12: {{"mouthSmileLeft", 1.0}, {"mouthSmileRight", 1.0}},
	14: {{"mouthDimpleLeft", 1.0}, {"mouthDimpleRight", 1.0}},
	15: {{"mouthFrownLeft", 1.0}, {"mouthFrownRight", 1.0}},
	16: {{"mouthLowerDownLeft", 1.0}, {"mouthLowerDownRight", 1.0}},
	17: {{"mouthShrugLower", 1.0}},
	18: {{"mouthPucker", 1.0}},
	20: {{"mouthStretchLeft", 1.0}, {"mouthStretchRight", 1.0}},
	22: {{"mouthFunnel", 1.0}},
	23: {{"mouthPressLeft", 1.0}, {"mouthPressRight", 1.0}},
	24: {{"mouthPressLeft", 0.8}, {"mouthPressRight", 0.8}, {"mouthClose", 0.6}},
	25: {{"jawOpen", 0.8}, {"mouthFunnel", 0.4}},
	26: {{"jawOpen", 1.0}},
	28: {{"mouthRollLower", 1.0}, {"mouthRollUpper", 1.0}},
	43: {{"eyeBlinkLeft", 0.9}, {"eyeBlinkRight", 0.9}},
	45: {{"eyeBlinkLeft", 1.0}, {"eyeBlinkRight", 1.0}},
}

// AUName returns the FACS name for an AU number, or "" if unknown.
func AUName(au int) string {
	return auNames[au]
}

var auNames = map[int]string{
	1:  "Inner Brow Raiser",
	2:  "Outer Brow Raiser",
	4:  "Brow Lowerer",
	5:  "Upper Lid Raiser",
	6:  "Cheek Raiser",
	7:  "Lid Tightener",
	9:  "Nose Wrinkler",
	10: "Upper Lip Raiser",
	12: "Lip Corner Puller",
	14: "Dimpler",
	15: "Lip Corner Depressor",
	16: "Lower Lip Depressor",
	17: "Chin Raiser",
	18: "Lip Puckerer",
	20: "Lip Stretcher",
	22: "Lip Funneler",
	23: "Lip Tightener",
	24: "Lip Presser",
	25: "Lips Part",
	26: "Jaw Drop",
	28: "Lip Suck",
	43: "Eyes Closed",
	45: "Blink",
}
