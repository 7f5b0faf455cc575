package timeline

import "time"

// Segment is one animated element's timing. Progress runs from Start over
// Duration; the element is drawn while elapsed is in [From, Until).
// A zero Until means the element stays visible.
type Segment struct {
	Name     string
	Start    time.Duration
	Duration time.Duration
	Ease     Easing
	From     time.Duration
	Until    time.Duration
}

// Progress returns eased progress at elapsed.
func (s Segment) Progress(elapsed time.Duration) float64 {
	var t float64
	switch {
	case s.Duration <= 0:
		if elapsed >= s.Start {
			t = 1
		}
	default:
		t = clamp(float64(elapsed-s.Start)/float64(s.Duration), 0, 1)
	}
	if s.Ease == nil {
		return t
	}
	return s.Ease(t)
}

// Visible reports whether the element is drawn at elapsed.
func (s Segment) Visible(elapsed time.Duration) bool {
	return elapsed >= s.From && (s.Until == 0 || elapsed < s.Until)
}

// HeroTimeline is the fixed schedule of the hero sequence.
type HeroTimeline struct {
	HeroFade Segment
	Villain  Segment
	Prop     Segment
	HeroSwap Segment
	Total    time.Duration
}

// Hero sequence timings.
const (
	VillainStart    = 600 * time.Millisecond
	VillainDuration = 1400 * time.Millisecond
	PropStart       = 1800 * time.Millisecond
	PropDuration    = 800 * time.Millisecond
	HeroFadeStart   = 2600 * time.Millisecond
	HeroFadeOut     = 400 * time.Millisecond
	HeroSwapAt      = 3000 * time.Millisecond
	HeroTotal       = 3500 * time.Millisecond
)

// DefaultHeroTimeline returns the stock schedule.
func DefaultHeroTimeline() HeroTimeline {
	return HeroTimeline{
		HeroFade: Segment{Name: "hero1", Start: HeroFadeStart, Duration: HeroFadeOut, Ease: Linear, From: 0, Until: HeroSwapAt},
		Villain:  Segment{Name: "villain", Start: VillainStart, Duration: VillainDuration, Ease: EaseOutCubic, From: VillainStart, Until: HeroSwapAt},
		Prop:     Segment{Name: "prop", Start: PropStart, Duration: PropDuration, Ease: EaseInOutQuad, From: PropStart, Until: HeroSwapAt},
		HeroSwap: Segment{Name: "hero2", Start: HeroSwapAt, Ease: Linear, From: HeroSwapAt},
		Total:    HeroTotal,
	}
}
