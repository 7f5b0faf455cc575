// Package swapper extracts a face from a photo and pastes it onto templates.
package swapper

import (
	"image"
	"math"

	"github.com/charmbracelet/log"

	"github.com/ayusman/heroswap/internal/detector"
	"github.com/ayusman/heroswap/internal/errors"
	"github.com/ayusman/heroswap/internal/geometry"
	"github.com/ayusman/heroswap/internal/raster"
)

const (
	minCropExtent = 4
	minOvalPoints = 6
)

// ExtractOptions controls how much context is cropped around a face.
type ExtractOptions struct {
	PaddingFraction float64 // of the source image's larger side
	MinPadding      float64 // pixels
	ClipScale       float64 // oval expansion for the crop clip
	SoftEdge        bool    // radial falloff toward the clip boundary
}

// DefaultExtractOptions returns the stock padding and clip settings.
func DefaultExtractOptions() ExtractOptions {
	return ExtractOptions{
		PaddingFraction: 0.18,
		MinPadding:      50,
		ClipScale:       1.5,
	}
}

// Crop is a face cut out of a source photo. It is never modified after
// Extract returns.
type Crop struct {
	Image   *image.RGBA
	Anchors detector.Anchors // in crop coordinates
	Origin  image.Point      // crop's top-left in the source image
}

// Extractor turns a detected face into a reusable Crop.
type Extractor struct {
	opts   ExtractOptions
	logger *log.Logger
}

// NewExtractor creates an Extractor. A nil logger uses log.Default().
func NewExtractor(opts ExtractOptions, logger *log.Logger) *Extractor {
	if logger == nil {
		logger = log.Default()
	}
	return &Extractor{opts: opts, logger: logger}
}

// Options returns the extractor's settings.
func (e *Extractor) Options() ExtractOptions {
	return e.opts
}

// WithSoftEdge returns a copy of e with the soft edge toggled.
func (e *Extractor) WithSoftEdge(on bool) *Extractor {
	opts := e.opts
	opts.SoftEdge = on
	return &Extractor{opts: opts, logger: e.logger}
}

// Extract crops face out of img, clips it to the expanded face oval and records
// the alignment anchors in crop coordinates.
func (e *Extractor) Extract(img image.Image, face *detector.Face) (*Crop, error) {
	if face == nil || len(face.Mesh) == 0 {
		return nil, errors.New(errors.ErrCodeMissingLandmarks, "Face landmarks missing. Try another photo.")
	}
	points := face.Points()
	if len(points) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidLandmarks, "Face landmarks invalid. Try another photo.")
	}

	bounds, err := e.cropBounds(img.Bounds(), geometry.BoundingBox(points))
	if err != nil {
		return nil, err
	}
	origin := bounds.Min
	raw := raster.Crop(img, bounds.Add(img.Bounds().Min))
	w, h := raster.Size(raw)

	out := raw
	oval := face.Oval()
	if len(oval) >= minOvalPoints {
		shape := geometry.Translate(
			geometry.ExpandPolygon(oval, e.opts.ClipScale),
			geometry.Pt(-float64(origin.X), -float64(origin.Y)),
		)
		clip := raster.PolygonMask(w, h, shape)
		if e.opts.SoftEdge {
			clip = raster.Multiply(clip, softEdge(w, h, shape))
		}
		out = raster.NewSurface(w, h)
		op := raster.Paint(raw, geometry.Identity())
		op.Clip = clip
		raster.Render(out, op)
	} else {
		e.logger.Debug("face oval incomplete, keeping rectangular crop", "points", len(oval))
	}

	anchors, ok := face.Anchors()
	if !ok {
		return nil, errors.New(errors.ErrCodeMissingLandmarks, "Missing facial landmarks for alignment.")
	}

	e.logger.Debug("extracted face", "origin", origin, "size", image.Pt(w, h))
	return &Crop{
		Image:   out,
		Anchors: anchors.Translate(geometry.Pt(-float64(origin.X), -float64(origin.Y))),
		Origin:  origin,
	}, nil
}

// cropBounds pads the landmark box by a fraction of the image's larger side and
// clamps it to the image. Bounds are in image-relative coordinates (origin at 0,0).
func (e *Extractor) cropBounds(img image.Rectangle, box geometry.Rect) (image.Rectangle, error) {
	w, h := float64(img.Dx()), float64(img.Dy())
	pad := math.Max(e.opts.MinPadding, math.Round(math.Max(w, h)*e.opts.PaddingFraction))

	minX := math.Max(0, math.Floor(box.X-pad))
	minY := math.Max(0, math.Floor(box.Y-pad))
	maxX := math.Min(w, math.Ceil(box.X+box.Width+pad))
	maxY := math.Min(h, math.Ceil(box.Y+box.Height+pad))

	for _, v := range [...]float64{minX, minY, maxX, maxY} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return image.Rectangle{}, errors.New(errors.ErrCodeInvalidCropBounds, "Invalid face crop bounds. Try a clearer face photo.")
		}
	}

	if maxX-minX < minCropExtent {
		maxX = math.Min(w, minX+minCropExtent)
		minX = math.Max(0, maxX-minCropExtent)
	}
	if maxY-minY < minCropExtent {
		maxY = math.Min(h, minY+minCropExtent)
		minY = math.Max(0, maxY-minCropExtent)
	}

	x0, y0 := int(minX), int(minY)
	cw := max(1, int(math.Round(maxX-minX)))
	ch := max(1, int(math.Round(maxY-minY)))
	return image.Rect(x0, y0, x0+cw, y0+ch), nil
}

// softEdge is opaque out to 70% of the shape's bounding radius and fades to
// transparent at 110%.
func softEdge(w, h int, shape []geometry.Point2D) *image.Alpha {
	box := geometry.BoundingBox(shape)
	r := math.Max(box.Width, box.Height) / 2
	outer := r * 1.1
	return raster.RadialMask(w, h, box.Center(), outer,
		raster.Stop{Offset: 0, Alpha: 1},
		raster.Stop{Offset: 0.7 / 1.1, Alpha: 1},
		raster.Stop{Offset: 1, Alpha: 0},
	)
}
