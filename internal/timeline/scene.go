package timeline

import (
	"image"
	"math"
	"time"

	"github.com/ayusman/heroswap/internal/geometry"
	"github.com/ayusman/heroswap/internal/raster"
)

// Scene draws a frame as a pure function of elapsed time.
type Scene interface {
	Size() (int, int)
	Duration() time.Duration
	DrawFrame(dst *image.RGBA, elapsed time.Duration)
}

// placed is an image pre-scaled for a fixed destination box.
type placed struct {
	img image.Image
	box Box
}

func place(img image.Image, box Box) *placed {
	if img == nil {
		return nil
	}
	w, h := int(math.Round(box.Width)), int(math.Round(box.Height))
	if w <= 0 || h <= 0 {
		return nil
	}
	if iw, ih := raster.Size(img); iw != w || ih != h {
		img = raster.Resize(img, w, h)
	}
	return &placed{img: img, box: box}
}

func placeContain(img image.Image, box Box) *placed {
	if img == nil {
		return nil
	}
	iw, ih := raster.Size(img)
	fit, ok := Contain(iw, ih, box)
	if !ok {
		return nil
	}
	return place(img, fit)
}

func (p *placed) draw(dst *image.RGBA, x, y, alpha float64) {
	if p == nil {
		return
	}
	op := raster.Paint(p.img, geometry.Translation(x, y))
	op.Alpha = alpha
	raster.Render(dst, op)
}

// HeroAssets are the images a hero scene is built from.
type HeroAssets struct {
	Background image.Image
	Hero1      image.Image // composite; nil draws the background only
	Hero2      image.Image
	Villain    image.Image
	Prop       image.Image
}

// HeroScene is the scripted sequence: the composite hero fades out while a
// villain slides in with a prop, then the second hero appears.
type HeroScene struct {
	width, height int
	timeline      HeroTimeline
	layout        HeroLayout

	background *placed
	hero1      *placed
	hero2      *placed
	villain    *placed
	prop       *placed
}

// NewHeroScene prepares a scene for a width×height canvas.
func NewHeroScene(width, height int, assets HeroAssets, layout HeroLayout, tl HeroTimeline) *HeroScene {
	s := &HeroScene{
		width:    width,
		height:   height,
		timeline: tl,
		layout:   layout,
	}
	s.background = place(assets.Background, Box{Width: float64(width), Height: float64(height)})
	s.hero1 = placeContain(assets.Hero1, layout.Hero1)
	s.hero2 = placeContain(assets.Hero2, layout.Hero2)
	s.villain = place(assets.Villain, Box{Width: layout.Villain.Width, Height: layout.Villain.Height})
	s.prop = place(assets.Prop, Box{Width: layout.Prop.Width, Height: layout.Prop.Height})
	return s
}

// Size returns the canvas size.
func (s *HeroScene) Size() (int, int) { return s.width, s.height }

// Duration returns the sequence length.
func (s *HeroScene) Duration() time.Duration { return s.timeline.Total }

// Layout returns the layout the scene was built with.
func (s *HeroScene) Layout() HeroLayout { return s.layout }

// DrawFrame clears dst and draws the background, hero1, villain, prop and
// hero2 in that order for the given elapsed time.
func (s *HeroScene) DrawFrame(dst *image.RGBA, elapsed time.Duration) {
	elapsed = clampElapsed(elapsed, s.timeline.Total)
	raster.Clear(dst)
	if s.background != nil {
		s.background.draw(dst, 0, 0, 1)
	}
	if s.hero1 == nil {
		return
	}
	tl := s.timeline

	if tl.HeroFade.Visible(elapsed) {
		s.hero1.draw(dst, s.hero1.box.X, s.hero1.box.Y, 1-tl.HeroFade.Progress(elapsed))
	}

	if tl.Villain.Visible(elapsed) && s.villain != nil {
		x := s.layout.Villain.X(tl.Villain.Progress(elapsed))
		s.villain.draw(dst, x, s.layout.Villain.Y, 1)
	}

	if tl.Prop.Visible(elapsed) && s.prop != nil {
		x := s.layout.Prop.X(tl.Prop.Progress(elapsed))
		s.prop.draw(dst, x-s.layout.Prop.Width/2, s.layout.Prop.Y, 1)
	}

	if tl.HeroSwap.Visible(elapsed) && s.hero2 != nil {
		s.hero2.draw(dst, s.hero2.box.X, s.hero2.box.Y, 1)
	}
}

// clampElapsed limits elapsed to [0, total]; frames outside that range show
// the first or last state.
func clampElapsed(elapsed, total time.Duration) time.Duration {
	return max(0, min(elapsed, total))
}

// Paste scene timings.
const (
	PasteFadeStart    = 300 * time.Millisecond
	PasteFadeDuration = 900 * time.Millisecond
	PasteTotal        = 1500 * time.Millisecond
)

// PasteScene cross-fades a target photo into its composite.
type PasteScene struct {
	width, height int
	target        *placed
	composite     *placed
	fade          Segment
}

// NewPasteScene builds a paste scene sized to the target.
func NewPasteScene(target, composite image.Image) *PasteScene {
	w, h := raster.Size(target)
	full := Box{Width: float64(w), Height: float64(h)}
	return &PasteScene{
		width:     w,
		height:    h,
		target:    place(target, full),
		composite: place(composite, full),
		fade:      Segment{Name: "composite", Start: PasteFadeStart, Duration: PasteFadeDuration, Ease: EaseOutCubic, From: PasteFadeStart},
	}
}

// Size returns the canvas size.
func (s *PasteScene) Size() (int, int) { return s.width, s.height }

// Duration returns the scene length.
func (s *PasteScene) Duration() time.Duration { return PasteTotal }

// DrawFrame draws the target and the composite faded in by elapsed.
func (s *PasteScene) DrawFrame(dst *image.RGBA, elapsed time.Duration) {
	elapsed = clampElapsed(elapsed, PasteTotal)
	raster.Clear(dst)
	s.target.draw(dst, 0, 0, 1)
	if s.fade.Visible(elapsed) {
		s.composite.draw(dst, 0, 0, s.fade.Progress(elapsed))
	}
}

// Still is a single image shown for no time. It is what the canvas holds when
// nothing is animating.
type Still struct {
	img *placed
	w   int
	h   int
}

// NewStill wraps img as a zero-length scene of the given canvas size.
func NewStill(img image.Image, width, height int) *Still {
	return &Still{img: place(img, Box{Width: float64(width), Height: float64(height)}), w: width, h: height}
}

// Size returns the canvas size.
func (s *Still) Size() (int, int) { return s.w, s.h }

// Duration is always zero.
func (s *Still) Duration() time.Duration { return 0 }

// DrawFrame draws the image.
func (s *Still) DrawFrame(dst *image.RGBA, _ time.Duration) {
	raster.Clear(dst)
	s.img.draw(dst, 0, 0, 1)
}
