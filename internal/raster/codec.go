package raster

import (
	"fmt"
	"image"
	"io"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp"
)

// Decode reads a JPEG, PNG, GIF, BMP, TIFF or WebP image and applies any EXIF
// orientation so faces are upright before detection.
func Decode(r io.Reader) (image.Image, error) {
	img, err := imaging.Decode(r, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	return img, nil
}

// EncodePNG writes img as PNG.
func EncodePNG(w io.Writer, img image.Image) error {
	return imaging.Encode(w, img, imaging.PNG)
}

// EncodeJPEG writes img as JPEG at the given quality.
func EncodeJPEG(w io.Writer, img image.Image, quality int) error {
	return imaging.Encode(w, img, imaging.JPEG, imaging.JPEGQuality(quality))
}

// Resize scales img to exactly w×h with a Lanczos filter.
func Resize(img image.Image, w, h int) *image.NRGBA {
	return imaging.Resize(img, max(1, w), max(1, h), imaging.Lanczos)
}
