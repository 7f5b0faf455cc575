package swapper

import (
	"image"
	"math"

	"github.com/charmbracelet/log"

	"github.com/ayusman/heroswap/internal/detector"
	"github.com/ayusman/heroswap/internal/geometry"
	"github.com/ayusman/heroswap/internal/raster"
	"github.com/ayusman/heroswap/internal/tuning"
)

// Composite is a template with a face pasted onto it.
type Composite struct {
	Image     *image.RGBA
	Aligned   bool            // false when the template was returned unchanged
	Transform geometry.Affine // crop space to template space
}

// Compositor pastes crops onto templates.
type Compositor struct {
	logger *log.Logger
}

// NewCompositor creates a Compositor. A nil logger uses log.Default().
func NewCompositor(logger *log.Logger) *Compositor {
	if logger == nil {
		logger = log.Default()
	}
	return &Compositor{logger: logger}
}

// Plan returns the paint operations that paste crop onto a template whose face
// is face, without running them. The second result is false when the template
// cannot be aligned and should be used as is.
func (c *Compositor) Plan(face *detector.Face, crop *Crop, p tuning.Profile, w, h int) ([]raster.Op, geometry.Affine, bool) {
	if face == nil || crop == nil || crop.Image == nil {
		return nil, geometry.Affine{}, false
	}
	dst, ok := face.Anchors()
	if !ok {
		return nil, geometry.Affine{}, false
	}

	var ops []raster.Op
	oval := face.Oval()
	if p.RemoveOriginal && len(oval) >= 3 {
		ops = append(ops, raster.Erase(geometry.ExpandPolygon(oval, p.MaskScale)))
	}

	m := geometry.SolveAffine(crop.Anchors.Triangle(), dst.Triangle())

	total := geometry.Identity()
	if math.Abs(p.UniformScale-1) > 0.01 && p.UniformScale != 0 {
		total = geometry.ScalingAbout(dst.Nose, p.UniformScale)
	}
	total = total.Multiply(m)
	if p.OffsetX != 0 || p.OffsetY != 0 {
		total = total.Translate(p.OffsetX, p.OffsetY)
	}

	paint := raster.Paint(crop.Image, total)
	if len(oval) >= 3 && p.ClipScale != 0 {
		paint.Clip = raster.PolygonMask(w, h, geometry.ExpandPolygon(oval, p.ClipScale))
	}
	ops = append(ops, paint)
	return ops, total, true
}

// Compose copies template and pastes crop onto it aligned to face. When face,
// its anchors or crop are missing the copy is returned unmodified.
func (c *Compositor) Compose(template image.Image, face *detector.Face, crop *Crop, p tuning.Profile) *Composite {
	out := raster.Clone(template)
	w, h := raster.Size(out)

	ops, total, ok := c.Plan(face, crop, p, w, h)
	if !ok {
		c.logger.Debug("template not aligned, using it unchanged")
		return &Composite{Image: out}
	}
	raster.RenderAll(out, ops...)
	return &Composite{Image: out, Aligned: true, Transform: total}
}
