package raster

import (
	"bytes"
	"image"
	"image/color"
	"testing"

	"github.com/ayusman/heroswap/internal/geometry"
)

func solid(w, h int, c color.Color) *image.RGBA {
	img := NewSurface(w, h)
	Fill(img, c)
	return img
}

func TestPolygonMask(t *testing.T) {
	square := []geometry.Point2D{{X: 10, Y: 10}, {X: 30, Y: 10}, {X: 30, Y: 30}, {X: 10, Y: 30}}
	m := PolygonMask(40, 40, square)

	if got := m.AlphaAt(20, 20).A; got != 255 {
		t.Errorf("expected inside alpha 255, got %d", got)
	}
	if got := m.AlphaAt(2, 2).A; got != 0 {
		t.Errorf("expected outside alpha 0, got %d", got)
	}

	t.Run("degenerate polygon is empty", func(t *testing.T) {
		m := PolygonMask(10, 10, square[:2])
		for _, v := range m.Pix {
			if v != 0 {
				t.Fatal("expected empty mask")
			}
		}
	})
}

func TestRadialMask(t *testing.T) {
	c := geometry.Pt(50, 50)
	m := RadialMask(100, 100, c, 44, Stop{0, 1}, Stop{0.7 / 1.1, 1}, Stop{1, 0})

	if got := m.AlphaAt(50, 50).A; got < 250 {
		t.Errorf("expected opaque centre, got %d", got)
	}
	if got := m.AlphaAt(50+20, 50).A; got < 250 {
		t.Errorf("expected opaque inside inner radius, got %d", got)
	}
	if got := m.AlphaAt(99, 99).A; got != 0 {
		t.Errorf("expected transparent corner, got %d", got)
	}
	mid := m.AlphaAt(50+36, 50).A
	if mid == 0 || mid == 255 {
		t.Errorf("expected partial alpha in the falloff band, got %d", mid)
	}
}

func TestMultiply(t *testing.T) {
	a := image.NewAlpha(image.Rect(0, 0, 2, 1))
	b := image.NewAlpha(image.Rect(0, 0, 2, 1))
	a.Pix = []uint8{255, 128}
	b.Pix = []uint8{255, 255}

	out := Multiply(a, nil, b)
	if out.Pix[0] != 255 || out.Pix[1] != 128 {
		t.Errorf("unexpected product %v", out.Pix)
	}
	if Multiply(nil, nil) != nil {
		t.Error("expected nil when every mask is nil")
	}
}

func TestRenderErase(t *testing.T) {
	dst := solid(20, 20, color.RGBA{200, 100, 50, 255})
	Render(dst, Erase([]geometry.Point2D{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 20}, {X: 0, Y: 20}}))

	if got := dst.RGBAAt(5, 10); got.A != 0 {
		t.Errorf("expected erased pixel, got %v", got)
	}
	if got := dst.RGBAAt(15, 10); got != (color.RGBA{200, 100, 50, 255}) {
		t.Errorf("expected untouched pixel, got %v", got)
	}
}

func TestRenderOver(t *testing.T) {
	red := color.RGBA{255, 0, 0, 255}

	t.Run("integer translation", func(t *testing.T) {
		dst := NewSurface(10, 10)
		Render(dst, Paint(solid(2, 2, red), geometry.Translation(3, 4)))
		if dst.RGBAAt(3, 4) != red || dst.RGBAAt(4, 5) != red {
			t.Error("expected source at offset")
		}
		if dst.RGBAAt(5, 4).A != 0 {
			t.Error("expected nothing beyond source")
		}
	})

	t.Run("scaled draw covers destination rect", func(t *testing.T) {
		dst := NewSurface(20, 20)
		Render(dst, PaintAt(solid(2, 2, red), 4, 4, 8, 8))
		if got := dst.RGBAAt(8, 8); got.R < 250 || got.A < 250 {
			t.Errorf("expected red inside scaled rect, got %v", got)
		}
		if got := dst.RGBAAt(15, 15); got.A != 0 {
			t.Errorf("expected transparent outside, got %v", got)
		}
	})

	t.Run("clip limits the draw", func(t *testing.T) {
		dst := NewSurface(10, 10)
		op := Paint(solid(10, 10, red), geometry.Identity())
		op.Clip = PolygonMask(10, 10, []geometry.Point2D{{X: 0, Y: 0}, {X: 5, Y: 0}, {X: 5, Y: 10}, {X: 0, Y: 10}})
		Render(dst, op)
		if dst.RGBAAt(2, 5) != red {
			t.Errorf("expected red in clip, got %v", dst.RGBAAt(2, 5))
		}
		if dst.RGBAAt(8, 5).A != 0 {
			t.Errorf("expected clipped pixel to stay transparent, got %v", dst.RGBAAt(8, 5))
		}
	})

	t.Run("alpha blends", func(t *testing.T) {
		dst := NewSurface(4, 4)
		op := Paint(solid(4, 4, red), geometry.Identity())
		op.Alpha = 0.5
		Render(dst, op)
		if a := dst.RGBAAt(1, 1).A; a < 120 || a > 135 {
			t.Errorf("expected half alpha, got %d", a)
		}
	})

	t.Run("zero alpha draws nothing", func(t *testing.T) {
		dst := NewSurface(4, 4)
		op := Paint(solid(4, 4, red), geometry.Identity())
		op.Alpha = 0
		Render(dst, op)
		if dst.RGBAAt(1, 1).A != 0 {
			t.Error("expected no paint")
		}
	})

	t.Run("singular transform draws nothing", func(t *testing.T) {
		dst := NewSurface(4, 4)
		Render(dst, Paint(solid(4, 4, red), geometry.Affine{}))
		if dst.RGBAAt(1, 1).A != 0 {
			t.Error("expected no paint")
		}
	})
}

func TestCodec(t *testing.T) {
	src := solid(6, 4, color.RGBA{10, 20, 30, 255})

	var buf bytes.Buffer
	if err := EncodePNG(&buf, src); err != nil {
		t.Fatalf("encode: %v", err)
	}
	img, err := Decode(&buf)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if w, h := Size(img); w != 6 || h != 4 {
		t.Errorf("expected 6x4, got %dx%d", w, h)
	}

	if _, err := Decode(bytes.NewReader([]byte("not an image"))); err == nil {
		t.Error("expected decode error for garbage input")
	}
}

func TestClone(t *testing.T) {
	src := solid(3, 3, color.RGBA{1, 2, 3, 255})
	c := Clone(src)
	c.SetRGBA(0, 0, color.RGBA{})
	if src.RGBAAt(0, 0).A != 255 {
		t.Error("expected clone to be independent of source")
	}

	sub := Crop(src, image.Rect(1, 1, 3, 3))
	if sub.Bounds() != image.Rect(0, 0, 2, 2) {
		t.Errorf("expected crop rebased to origin, got %v", sub.Bounds())
	}
}
