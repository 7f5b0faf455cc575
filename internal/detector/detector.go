package detector

import (
	"context"
	"image"
)

// Detector defines the interface for face-mesh detection implementations.
type Detector interface {
	// Detect analyzes a still image and returns the detected faces.
	// A result with no faces is not an error.
	Detect(ctx context.Context, img image.Image) (*Result, error)

	// Close releases any resources held by the detector.
	Close() error
}

// Config holds configuration options for face detection.
type Config struct {
	// MaxFaces is the maximum number of faces to return (default: 1).
	MaxFaces int

	// MinConfidence is the minimum detection confidence threshold (0.0-1.0).
	MinConfidence float64
}

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() Config {
	return Config{
		MaxFaces:      1,
		MinConfidence: 0.5,
	}
}

// Result is the outcome of one detection call.
type Result struct {
	Faces []Face `json:"face"`
}

// First returns the first detected face, or nil.
func (r *Result) First() *Face {
	if r == nil || len(r.Faces) == 0 {
		return nil
	}
	return &r.Faces[0]
}
