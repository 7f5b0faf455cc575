package raster

import (
	"image"
	"image/color"
	"math"

	"github.com/fogleman/gg"

	"github.com/ayusman/heroswap/internal/geometry"
)

// PolygonMask rasterises the closed polygon through points into a w×h alpha
// mask. Fewer than three points produce an empty mask.
func PolygonMask(w, h int, points []geometry.Point2D) *image.Alpha {
	dc := gg.NewContext(w, h)
	if len(points) >= 3 {
		dc.MoveTo(points[0].X, points[0].Y)
		for _, p := range points[1:] {
			dc.LineTo(p.X, p.Y)
		}
		dc.ClosePath()
		dc.SetColor(color.Black)
		dc.Fill()
	}
	return dc.AsMask()
}

// Stop is one color stop of a radial falloff.
type Stop struct {
	Offset float64 // 0 at the centre, 1 at the outer radius
	Alpha  float64
}

// RadialMask paints a radial alpha falloff centred on c with the given outer
// radius. Pixels beyond the radius take the last stop's alpha.
func RadialMask(w, h int, c geometry.Point2D, radius float64, stops ...Stop) *image.Alpha {
	dc := gg.NewContext(w, h)
	grad := gg.NewRadialGradient(c.X, c.Y, 0, c.X, c.Y, radius)
	for _, s := range stops {
		grad.AddColorStop(s.Offset, color.NRGBA{A: alpha8(s.Alpha)})
	}
	dc.SetFillStyle(grad)
	dc.DrawRectangle(0, 0, float64(w), float64(h))
	dc.Fill()
	return dc.AsMask()
}

// Multiply returns the per-pixel product of masks. Nil masks are skipped; if
// every mask is nil the result is nil, meaning "no mask".
func Multiply(masks ...*image.Alpha) *image.Alpha {
	var out *image.Alpha
	for _, m := range masks {
		if m == nil {
			continue
		}
		if out == nil {
			out = image.NewAlpha(m.Bounds())
			copy(out.Pix, m.Pix)
			continue
		}
		r := out.Bounds().Intersect(m.Bounds())
		for y := out.Rect.Min.Y; y < out.Rect.Max.Y; y++ {
			for x := out.Rect.Min.X; x < out.Rect.Max.X; x++ {
				i := out.PixOffset(x, y)
				if !image.Pt(x, y).In(r) {
					out.Pix[i] = 0
					continue
				}
				out.Pix[i] = uint8((uint32(out.Pix[i])*uint32(m.Pix[m.PixOffset(x, y)]) + 127) / 255)
			}
		}
	}
	return out
}

// ScaleMask returns m with every value multiplied by a (0..1).
func ScaleMask(m *image.Alpha, a float64) *image.Alpha {
	out := image.NewAlpha(m.Bounds())
	k := uint32(alpha8(a))
	for i, v := range m.Pix {
		out.Pix[i] = uint8((uint32(v)*k + 127) / 255)
	}
	return out
}

func alpha8(a float64) uint8 {
	return uint8(math.Round(math.Max(0, math.Min(1, a)) * 255))
}
