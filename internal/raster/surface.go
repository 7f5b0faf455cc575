// Package raster holds the pixel surfaces and paint operations the compositor
// and animation scenes draw with. Every draw is an explicit Op so no transform
// or clip state leaks between calls.
package raster

import (
	"image"
	"image/color"
	"image/draw"
)

// NewSurface allocates a transparent RGBA surface.
func NewSurface(w, h int) *image.RGBA {
	return image.NewRGBA(image.Rect(0, 0, w, h))
}

// Clone copies img into a new surface whose origin is (0,0).
func Clone(img image.Image) *image.RGBA {
	b := img.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	return dst
}

// Crop copies the r region of img into a new surface whose origin is (0,0).
func Crop(img image.Image, r image.Rectangle) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, r.Dx(), r.Dy()))
	draw.Draw(dst, dst.Bounds(), img, r.Min, draw.Src)
	return dst
}

// Clear makes every pixel of dst transparent.
func Clear(dst *image.RGBA) {
	clear(dst.Pix)
}

// Fill paints dst with a solid color.
func Fill(dst *image.RGBA, c color.Color) {
	draw.Draw(dst, dst.Bounds(), image.NewUniform(c), image.Point{}, draw.Src)
}

// Size returns the width and height of img.
func Size(img image.Image) (int, int) {
	b := img.Bounds()
	return b.Dx(), b.Dy()
}
