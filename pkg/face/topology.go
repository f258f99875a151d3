package face

// MediaPipe face-mesh landmark indices used by the analyzers.
// "Left"/"Right" are the subject's left/right eye, matching the front
// end's convention. The formulas in the analyzer packages assume this
// topology; a front end with a different mesh must remap before feeding.
const (
	// Right eye (subject's right, image-left side).
	RightEyeOuter       = 33
	RightEyeInner       = 133
	RightEyeTopOuter    = 160
	RightEyeTopInner    = 158
	RightEyeBottomInner = 153
	RightEyeBottomOuter = 144
	RightEyeTopMid      = 159
	RightEyeBottomMid   = 145

	// Left eye (subject's left, image-right side).
	LeftEyeInner       = 362
	LeftEyeOuter       = 263
	LeftEyeTopInner    = 385
	LeftEyeTopOuter    = 387
	LeftEyeBottomOuter = 373
	LeftEyeBottomInner = 380
	LeftEyeTopMid      = 386
	LeftEyeBottomMid   = 374

	// Iris centers and ring points (requires the iris-refined mesh).
	RightIrisCenter = 468
	RightIrisRight  = 469
	RightIrisTop    = 470
	RightIrisLeft   = 471
	RightIrisBottom = 472
	LeftIrisCenter  = 473
	LeftIrisRight   = 474
	LeftIrisTop     = 475
	LeftIrisLeft    = 476
	LeftIrisBottom  = 477

	// Brows.
	RightBrowOuter = 70
	RightBrowMid   = 105
	RightBrowInner = 107
	LeftBrowInner  = 336
	LeftBrowMid    = 334
	LeftBrowOuter  = 300

	// Face anchors.
	NoseTip    = 1
	NoseBridge = 6
	Chin       = 152
	Forehead   = 10

	// Mouth.
	MouthRight     = 61
	MouthLeft      = 291
	UpperLipCenter = 13
	LowerLipCenter = 14
)

// RightEyeEAR and LeftEyeEAR list the six landmarks used for the eye
// aspect ratio, ordered P1..P6: outer corner, two upper-lid points, inner
// corner, two lower-lid points.
var (
	RightEyeEAR = [6]int{RightEyeOuter, RightEyeTopOuter, RightEyeTopInner, RightEyeInner, RightEyeBottomInner, RightEyeBottomOuter}
	LeftEyeEAR  = [6]int{LeftEyeOuter, LeftEyeTopOuter, LeftEyeTopInner, LeftEyeInner, LeftEyeBottomInner, LeftEyeBottomOuter}
)
