package gaze

import (
	"math"

	"github.com/Yukkurisiteikitai/deepface-facs/pkg/face"
)

// HeadPose is a coarse per-frame head orientation estimate used only to
// correct the eye-in-head gaze vector. It is not a full 3D pose
// reconstruction.
type HeadPose struct {
	Yaw   float64 `json:"yaw"`   // + looking toward image right
	Pitch float64 `json:"pitch"` // + looking down
	Roll  float64 `json:"roll"`  // eye-line tilt, radians
}

// EstimatePose derives yaw from the nose tip's horizontal offset against
// the eye line, pitch from its vertical position between forehead and
// chin, and roll from the eye-line angle.
func EstimatePose(frame *face.LandmarkFrame) HeadPose {
	leftEye := frame.At(face.LeftEyeOuter)
	rightEye := frame.At(face.RightEyeOuter)
	nose := frame.At(face.NoseTip)
	chin := frame.At(face.Chin)
	forehead := frame.At(face.Forehead)

	eyeMidX := (leftEye.X + rightEye.X) / 2
	eyeSpan := math.Hypot(leftEye.X-rightEye.X, leftEye.Y-rightEye.Y)
	if eyeSpan == 0 {
		return HeadPose{}
	}

	// Nose offset of half the eye span reads as roughly 45° of yaw.
	yaw := math.Atan((nose.X - eyeMidX) / eyeSpan * 2)

	faceHeight := chin.Y - forehead.Y
	pitch := 0.0
	if faceHeight > 0 {
		// Neutral pose puts the nose tip ~55% down the face.
		pitch = math.Atan(((nose.Y-forehead.Y)/faceHeight - 0.55) * 2)
	}

	roll := math.Atan2(leftEye.Y-rightEye.Y, leftEye.X-rightEye.X)

	return HeadPose{Yaw: yaw, Pitch: pitch, Roll: roll}
}
