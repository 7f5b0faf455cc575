package timeline

import "image"

// Box is a placement rectangle in canvas pixels.
type Box struct {
	X, Y, Width, Height float64
}

// Sprite is a moving element's geometry. X moves from StartX to TargetX.
type Sprite struct {
	Width, Height   float64
	StartX, TargetX float64
	Y               float64
}

// X returns the sprite's x position at eased progress t.
func (s Sprite) X(t float64) float64 {
	return lerp(s.StartX, s.TargetX, t)
}

// HeroLayout positions every element of the hero scene.
type HeroLayout struct {
	Hero1   Box
	Hero2   Box
	Villain Sprite
	Prop    Sprite
}

// ComputeLayout derives the layout from the canvas size and the sprites'
// aspect ratios. Nil or empty sprites are treated as square.
func ComputeLayout(width, height int, villain, prop image.Image) HeroLayout {
	w, h := float64(width), float64(height)
	center := Box{X: w * 0.33, Y: h * 0.18, Width: w * 0.34, Height: h * 0.68}

	vw := w * 0.18
	vh := vw * aspect(villain)
	pw := w * 0.12
	ph := pw * aspect(prop)

	return HeroLayout{
		Hero1: center,
		Hero2: center,
		Villain: Sprite{
			Width:   vw,
			Height:  vh,
			StartX:  w + vw*0.1,
			TargetX: center.X + center.Width + w*0.05,
			Y:       center.Y + center.Height - vh,
		},
		Prop: Sprite{
			Width:   pw,
			Height:  ph,
			StartX:  w + pw*0.1,
			TargetX: center.X + center.Width*0.5,
			Y:       center.Y + center.Height*0.3,
		},
	}
}

// aspect returns height/width, or 1 when unknown.
func aspect(img image.Image) float64 {
	if img == nil {
		return 1
	}
	b := img.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 {
		return 1
	}
	return float64(b.Dy()) / float64(b.Dx())
}

// Contain fits an iw×ih image inside box, preserving aspect ratio and
// centring it. The bool is false for empty images.
func Contain(iw, ih int, box Box) (Box, bool) {
	if iw <= 0 || ih <= 0 {
		return Box{}, false
	}
	ratio := min(box.Width/float64(iw), box.Height/float64(ih))
	dw := float64(iw) * ratio
	dh := float64(ih) * ratio
	return Box{
		X:      box.X + (box.Width-dw)/2,
		Y:      box.Y + (box.Height-dh)/2,
		Width:  dw,
		Height: dh,
	}, true
}
