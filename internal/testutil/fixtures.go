// Package testutil provides scene fixtures and a face detector stand-in for
// tests that drive the whole pipeline.
package testutil

import (
	"bytes"
	"image"
	"image/color"
	"testing/fstest"

	"github.com/ayusman/heroswap/internal/detector"
	"github.com/ayusman/heroswap/internal/raster"
)

// Fixture scene size.
const (
	SceneWidth  = 200
	SceneHeight = 150
)

// MinFaceWidth is the narrowest image FaceDetector finds a face in.
const MinFaceWidth = 50

var (
	Red   = color.RGBA{R: 220, A: 255}
	Green = color.RGBA{G: 200, A: 255}
	Blue  = color.RGBA{B: 200, A: 255}
	Gray  = color.RGBA{R: 128, G: 128, B: 128, A: 255}
	White = color.RGBA{R: 255, G: 255, B: 255, A: 255}
)

// PNG encodes a solid w×h image.
func PNG(w, h int, c color.Color) []byte {
	img := raster.NewSurface(w, h)
	raster.Fill(img, c)
	var buf bytes.Buffer
	if err := raster.EncodePNG(&buf, img); err != nil {
		panic(err)
	}
	return buf.Bytes()
}

// Photo is a solid gray photo FaceDetector finds a face in when w is at least
// MinFaceWidth.
func Photo(w, h int) []byte {
	return PNG(w, h, Gray)
}

// SceneFS holds the five scene images under their stock names. The background
// is red, hero1 green, hero2 blue, the sprites white.
func SceneFS() fstest.MapFS {
	return fstest.MapFS{
		"bg.jpg":      {Data: PNG(SceneWidth, SceneHeight, Red)},
		"hero1.png":   {Data: PNG(100, 120, Green)},
		"hero2.png":   {Data: PNG(100, 120, Blue)},
		"villian.png": {Data: PNG(20, 40, White)},
		"med.png":     {Data: PNG(10, 10, White)},
	}
}

// FaceDetector reports one synthetic frontal face in every image at least
// MinFaceWidth wide, centred horizontally at 40% of the height.
func FaceDetector() *detector.MockDetector {
	m := detector.NewMockDetector()
	m.SetFunc(FaceFunc)
	return m
}

// FaceFunc is FaceDetector's detection rule.
func FaceFunc(img image.Image) ([]detector.Face, error) {
	w, h := raster.Size(img)
	if w < MinFaceWidth {
		return nil, nil
	}
	fw, fh := float64(w), float64(h)
	return []detector.Face{detector.SyntheticFace(fw/2, fh*0.4, fw*0.2)}, nil
}
