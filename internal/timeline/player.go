package timeline

import (
	"image"
	"sync"
	"time"

	"github.com/ayusman/heroswap/internal/raster"
)

// FrameScheduler requests a callback for the next display frame. The returned
// func cancels the request if it has not fired.
type FrameScheduler interface {
	Request(fn func()) (cancel func())
}

// TickerScheduler fires frames at a fixed interval on timer goroutines.
type TickerScheduler struct {
	Interval time.Duration
}

// NewTickerScheduler returns a scheduler running at fps frames per second.
func NewTickerScheduler(fps int) TickerScheduler {
	if fps <= 0 {
		fps = 30
	}
	return TickerScheduler{Interval: time.Second / time.Duration(fps)}
}

// Request schedules fn after one interval.
func (s TickerScheduler) Request(fn func()) func() {
	t := time.AfterFunc(s.Interval, fn)
	return func() { t.Stop() }
}

// ManualScheduler queues frame requests until Advance runs them. The player
// can be stepped with it where no display clock exists.
type ManualScheduler struct {
	mu      sync.Mutex
	pending []*manualRequest
}

type manualRequest struct {
	fn        func()
	cancelled bool
}

// Request queues fn.
func (m *ManualScheduler) Request(fn func()) func() {
	m.mu.Lock()
	defer m.mu.Unlock()
	r := &manualRequest{fn: fn}
	m.pending = append(m.pending, r)
	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		r.cancelled = true
	}
}

// Advance runs every queued request that was not cancelled and returns how
// many ran. Requests made while advancing wait for the next call.
func (m *ManualScheduler) Advance() int {
	m.mu.Lock()
	queue := m.pending
	m.pending = nil
	m.mu.Unlock()

	n := 0
	for _, r := range queue {
		m.mu.Lock()
		cancelled := r.cancelled
		m.mu.Unlock()
		if cancelled {
			continue
		}
		r.fn()
		n++
	}
	return n
}

// Pending returns the number of live queued requests.
func (m *ManualScheduler) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, r := range m.pending {
		if !r.cancelled {
			n++
		}
	}
	return n
}

// FrameFunc receives a copy of every drawn frame. It runs on the drawing
// goroutine with the player locked and must not call back into the Player.
type FrameFunc func(frame *image.RGBA, elapsed time.Duration)

// Player drives a Scene onto a canvas it owns. Starting a scene cancels any
// sequence in flight; callbacks from a cancelled sequence never draw.
type Player struct {
	mu        sync.Mutex
	scheduler FrameScheduler
	now       func() time.Time
	canvas    *image.RGBA
	scene     Scene
	start     time.Time
	gen       uint64
	cancel    func()
	playing   bool
	observers map[int]FrameFunc
	nextID    int
}

// NewPlayer creates a player. A nil now uses time.Now.
func NewPlayer(scheduler FrameScheduler, now func() time.Time) *Player {
	if now == nil {
		now = time.Now
	}
	return &Player{
		scheduler: scheduler,
		now:       now,
		canvas:    raster.NewSurface(1, 1),
		observers: make(map[int]FrameFunc),
	}
}

// Start plays scene from the beginning. Frame 0 is drawn before Start returns.
func (p *Player) Start(scene Scene) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.stopLocked()
	p.gen++
	p.setSceneLocked(scene)
	p.start = p.now()
	p.drawLocked(0)
	if scene.Duration() <= 0 {
		return
	}
	p.playing = true
	p.requestLocked(p.gen)
}

// Show draws frame 0 of scene and stops any running sequence.
func (p *Player) Show(scene Scene) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.stopLocked()
	p.gen++
	p.setSceneLocked(scene)
	p.drawLocked(0)
}

// Replay restarts the current scene, if any.
func (p *Player) Replay() bool {
	p.mu.Lock()
	scene := p.scene
	p.mu.Unlock()
	if scene == nil {
		return false
	}
	p.Start(scene)
	return true
}

// Stop cancels the running sequence and leaves the last frame on the canvas.
func (p *Player) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stopLocked()
	p.gen++
}

// Playing reports whether a sequence is in flight.
func (p *Player) Playing() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.playing
}

// Snapshot returns a copy of the canvas.
func (p *Player) Snapshot() *image.RGBA {
	p.mu.Lock()
	defer p.mu.Unlock()
	return raster.Clone(p.canvas)
}

// Scene returns the scene last started or shown.
func (p *Player) Scene() Scene {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.scene
}

// Observe registers fn for every drawn frame and returns a func removing it.
func (p *Player) Observe(fn FrameFunc) func() {
	p.mu.Lock()
	defer p.mu.Unlock()
	id := p.nextID
	p.nextID++
	p.observers[id] = fn
	return func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		delete(p.observers, id)
	}
}

func (p *Player) tick(gen uint64) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if gen != p.gen || !p.playing {
		return
	}
	elapsed := p.now().Sub(p.start)
	total := p.scene.Duration()
	if elapsed < total {
		p.drawLocked(elapsed)
		p.requestLocked(gen)
		return
	}
	p.drawLocked(total)
	p.playing = false
	p.cancel = nil
}

func (p *Player) requestLocked(gen uint64) {
	p.cancel = p.scheduler.Request(func() { p.tick(gen) })
}

func (p *Player) stopLocked() {
	if p.cancel != nil {
		p.cancel()
		p.cancel = nil
	}
	p.playing = false
}

func (p *Player) setSceneLocked(scene Scene) {
	p.scene = scene
	w, h := scene.Size()
	if b := p.canvas.Bounds(); b.Dx() != w || b.Dy() != h {
		p.canvas = raster.NewSurface(w, h)
	}
}

func (p *Player) drawLocked(elapsed time.Duration) {
	p.scene.DrawFrame(p.canvas, elapsed)
	if len(p.observers) == 0 {
		return
	}
	frame := raster.Clone(p.canvas)
	for _, fn := range p.observers {
		fn(frame, elapsed)
	}
}
