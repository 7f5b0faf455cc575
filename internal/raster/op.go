package raster

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	xdraw "golang.org/x/image/draw"

	"github.com/ayusman/heroswap/internal/geometry"
)

// Mode selects how an Op combines with the destination.
type Mode int

const (
	// SourceOver paints Source through Transform on top of the destination.
	SourceOver Mode = iota
	// DestinationOut clears the destination wherever Shape covers it.
	DestinationOut
)

func (m Mode) String() string {
	switch m {
	case SourceOver:
		return "source-over"
	case DestinationOut:
		return "destination-out"
	}
	return "unknown"
}

// Op is a single paint operation. Clip and Shape are in destination space.
type Op struct {
	Mode      Mode
	Source    image.Image
	Transform geometry.Affine // source space to destination space
	Shape     []geometry.Point2D
	Clip      *image.Alpha
	Alpha     float64 // 1 is opaque
}

// Paint returns an opaque SourceOver op drawing src through m.
func Paint(src image.Image, m geometry.Affine) Op {
	return Op{Mode: SourceOver, Source: src, Transform: m, Alpha: 1}
}

// PaintAt returns an opaque SourceOver op drawing src scaled into the
// rectangle (x, y, w, h).
func PaintAt(src image.Image, x, y, w, h float64) Op {
	sw, sh := Size(src)
	m := geometry.Translation(x, y)
	if sw > 0 && sh > 0 {
		m = m.Scale(w/float64(sw), h/float64(sh))
	}
	return Paint(src, m)
}

// Erase returns a DestinationOut op over the polygon.
func Erase(shape []geometry.Point2D) Op {
	return Op{Mode: DestinationOut, Shape: shape, Alpha: 1}
}

// Render applies op to dst.
func Render(dst *image.RGBA, op Op) {
	if op.Alpha <= 0 {
		return
	}
	switch op.Mode {
	case DestinationOut:
		renderErase(dst, op)
	default:
		renderOver(dst, op)
	}
}

// RenderAll applies ops in order.
func RenderAll(dst *image.RGBA, ops ...Op) {
	for _, op := range ops {
		Render(dst, op)
	}
}

func renderErase(dst *image.RGBA, op Op) {
	if len(op.Shape) < 3 {
		return
	}
	w, h := Size(dst)
	mask := Multiply(PolygonMask(w, h, op.Shape), op.Clip)
	if op.Alpha < 1 {
		mask = ScaleMask(mask, op.Alpha)
	}
	destinationOut(dst, mask)
}

// destinationOut scales every premultiplied channel of dst by (1 - mask).
func destinationOut(dst *image.RGBA, mask *image.Alpha) {
	r := dst.Bounds().Intersect(mask.Bounds())
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			m := uint32(mask.Pix[mask.PixOffset(x, y)])
			if m == 0 {
				continue
			}
			keep := 255 - m
			i := dst.PixOffset(x, y)
			for c := range 4 {
				dst.Pix[i+c] = uint8((uint32(dst.Pix[i+c])*keep + 127) / 255)
			}
		}
	}
}

func renderOver(dst *image.RGBA, op Op) {
	if op.Source == nil || !op.Transform.Finite() || op.Transform.Det() == 0 {
		return
	}

	var mask image.Image
	if op.Clip != nil {
		clip := op.Clip
		if op.Alpha < 1 {
			clip = ScaleMask(clip, op.Alpha)
		}
		mask = clip
	} else if op.Alpha < 1 {
		mask = image.NewUniform(uniformAlpha(op.Alpha))
	}

	if dx, dy, ok := integerTranslation(op.Transform); ok {
		sb := op.Source.Bounds()
		r := image.Rect(dx, dy, dx+sb.Dx(), dy+sb.Dy()).Intersect(dst.Bounds())
		if r.Empty() {
			return
		}
		sp := sb.Min.Add(r.Min.Sub(image.Pt(dx, dy)))
		if mask == nil {
			draw.Draw(dst, r, op.Source, sp, draw.Over)
		} else {
			draw.DrawMask(dst, r, op.Source, sp, mask, r.Min, draw.Over)
		}
		return
	}

	// x/image/draw works in absolute source coordinates.
	sb := op.Source.Bounds()
	m := op.Transform.Translate(-float64(sb.Min.X), -float64(sb.Min.Y))
	xdraw.BiLinear.Transform(dst, m.Aff3(), op.Source, sb, xdraw.Over, &xdraw.Options{
		DstMask:  mask,
		DstMaskP: dst.Bounds().Min,
	})
}

func integerTranslation(m geometry.Affine) (int, int, bool) {
	if m.A != 1 || m.B != 0 || m.C != 0 || m.D != 1 {
		return 0, 0, false
	}
	if m.E != math.Trunc(m.E) || m.F != math.Trunc(m.F) {
		return 0, 0, false
	}
	return int(m.E), int(m.F), true
}

func uniformAlpha(a float64) color.Alpha {
	return color.Alpha{A: alpha8(a)}
}
