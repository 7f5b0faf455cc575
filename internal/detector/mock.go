package detector

import (
	"context"
	"image"
	"math"
	"sync"
)

// MockDetector is a test implementation of the Detector interface.
// It allows tests to control the detection results.
type MockDetector struct {
	mu     sync.Mutex
	faces  []Face
	err    error
	fn     func(img image.Image) ([]Face, error)
	calls  int
	closed bool
}

// NewMockDetector creates a new MockDetector instance.
func NewMockDetector() *MockDetector {
	return &MockDetector{}
}

// SetFaces sets the faces that will be returned by Detect.
func (m *MockDetector) SetFaces(faces ...Face) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.faces = faces
}

// SetError sets the error that will be returned by Detect.
func (m *MockDetector) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// SetFunc makes Detect answer per image. It takes precedence over SetFaces.
func (m *MockDetector) SetFunc(fn func(img image.Image) ([]Face, error)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fn = fn
}

// Calls returns how many times Detect has run.
func (m *MockDetector) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Detect returns the pre-configured faces or error.
func (m *MockDetector) Detect(ctx context.Context, img image.Image) (*Result, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if m.err != nil {
		return nil, m.err
	}
	if m.fn != nil {
		faces, err := m.fn(img)
		if err != nil {
			return nil, err
		}
		return &Result{Faces: faces}, nil
	}
	return &Result{Faces: m.faces}, nil
}

// Close is a no-op for the mock detector.
func (m *MockDetector) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// SyntheticFace builds a full 468-point mesh for a frontal face whose eyes are
// eyeDist apart and centred horizontally on cx at height cy. The oval is an
// ellipse around the eyes and nose; every other landmark sits inside it.
func SyntheticFace(cx, cy, eyeDist float64) Face {
	mesh := make([]any, NumLandmarks)

	ocx, ocy := cx, cy+0.2*eyeDist
	rx, ry := 0.95*eyeDist, 1.3*eyeDist
	for i := range mesh {
		a := 2 * math.Pi * float64(i) / NumLandmarks
		mesh[i] = []float64{ocx + 0.5*rx*math.Cos(a), ocy + 0.5*ry*math.Sin(a), 0}
	}

	loop := len(FaceOval) - 1
	for j, idx := range FaceOval[:loop] {
		a := -math.Pi/2 + 2*math.Pi*float64(j)/float64(loop)
		mesh[idx] = []float64{ocx + rx*math.Cos(a), ocy + ry*math.Sin(a), 0}
	}

	mesh[LeftEye] = []float64{cx - eyeDist/2, cy, 0}
	mesh[RightEye] = []float64{cx + eyeDist/2, cy, 0}
	mesh[NoseTip] = []float64{cx, cy + 0.35*eyeDist, 0}

	return Face{Mesh: mesh, Score: 0.97}
}
