// Package detector provides face-mesh detection interfaces and landmark helpers.
package detector

import "github.com/ayusman/heroswap/internal/geometry"

// Face mesh landmark indices following the MediaPipe FaceMesh topology.
// See: https://developers.google.com/mediapipe/solutions/vision/face_landmarker
const (
	NoseTip      = 1
	LeftEye      = 33
	RightEye     = 263
	NumLandmarks = 468
)

// FaceOval traces the jawline and forehead. The first index is repeated at the
// end so the sequence forms a closed loop.
var FaceOval = []int{
	10, 338, 297, 332, 284, 251, 389, 356, 454, 323, 361, 288,
	397, 365, 379, 378, 400, 377, 152, 148, 176, 149, 150, 136,
	172, 58, 132, 93, 234, 127, 162, 21, 54, 103, 67, 109, 10,
}

// Face is one detected face. Mesh entries keep whatever shape the detector
// produced and are normalized on access.
type Face struct {
	Mesh  []any   `json:"mesh"`
	Score float64 `json:"score"`
}

// Anchors are the three reference points used to align faces.
type Anchors struct {
	LeftEye  geometry.Point2D `json:"leftEye"`
	RightEye geometry.Point2D `json:"rightEye"`
	Nose     geometry.Point2D `json:"nose"`
}

// Triangle returns the anchors in solver order.
func (a Anchors) Triangle() [3]geometry.Point2D {
	return [3]geometry.Point2D{a.LeftEye, a.RightEye, a.Nose}
}

// Translate returns the anchors shifted by d.
func (a Anchors) Translate(d geometry.Point2D) Anchors {
	return Anchors{LeftEye: a.LeftEye.Add(d), RightEye: a.RightEye.Add(d), Nose: a.Nose.Add(d)}
}

// Point returns landmark i, or false when it is absent or malformed.
func (f *Face) Point(i int) (geometry.Point2D, bool) {
	if f == nil || i < 0 || i >= len(f.Mesh) {
		return geometry.Point2D{}, false
	}
	return geometry.NormalizePoint(f.Mesh[i])
}

// Points returns every well-formed landmark in mesh order.
func (f *Face) Points() []geometry.Point2D {
	if f == nil {
		return nil
	}
	out := make([]geometry.Point2D, 0, len(f.Mesh))
	for _, raw := range f.Mesh {
		if p, ok := geometry.NormalizePoint(raw); ok {
			out = append(out, p)
		}
	}
	return out
}

// Oval returns the face-oval points that are present, in loop order.
func (f *Face) Oval() []geometry.Point2D {
	if f == nil {
		return nil
	}
	out := make([]geometry.Point2D, 0, len(FaceOval))
	for _, idx := range FaceOval {
		if p, ok := f.Point(idx); ok {
			out = append(out, p)
		}
	}
	return out
}

// Anchors returns the eye and nose reference points. The bool is false when any
// of them is missing.
func (f *Face) Anchors() (Anchors, bool) {
	le, ok1 := f.Point(LeftEye)
	re, ok2 := f.Point(RightEye)
	nose, ok3 := f.Point(NoseTip)
	if !ok1 || !ok2 || !ok3 {
		return Anchors{}, false
	}
	return Anchors{LeftEye: le, RightEye: re, Nose: nose}, true
}
