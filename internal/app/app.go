// Package app ties detection, compositing and the animation player together
// into the hero scene the server and CLI drive.
package app

import (
	"context"
	"image"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"

	"github.com/ayusman/heroswap/internal/assets"
	"github.com/ayusman/heroswap/internal/audio"
	"github.com/ayusman/heroswap/internal/detector"
	"github.com/ayusman/heroswap/internal/errors"
	"github.com/ayusman/heroswap/internal/raster"
	"github.com/ayusman/heroswap/internal/swapper"
	"github.com/ayusman/heroswap/internal/timeline"
	"github.com/ayusman/heroswap/internal/tuning"
)

// User-facing messages.
const (
	MsgTemplateFaces = "Could not find every face in the hero images. Results may look goofy."
	MsgNotReady      = "Scene is still loading."
	MsgBusy          = "Still working on the last photo."
	MsgNoFace        = "No face detected in that photo."
	MsgBadPhoto      = "Could not read that photo."
)

// AssetNames are the file names of the scene images inside the asset source.
type AssetNames struct {
	Background string
	Hero1      string
	Hero2      string
	Villain    string
	Prop       string
}

// DefaultAssetNames returns the stock scene file names.
func DefaultAssetNames() AssetNames {
	return AssetNames{
		Background: "bg.jpg",
		Hero1:      "hero1.png",
		Hero2:      "hero2.png",
		Villain:    "villian.png",
		Prop:       "med.png",
	}
}

// Config holds the application's collaborators.
type Config struct {
	Assets    assets.Source
	Names     AssetNames
	Detector  *detector.Loader
	Resolver  *tuning.Resolver        // nil uses the builtin profiles
	Extract   swapper.ExtractOptions  // zero value uses the defaults
	Scheduler timeline.FrameScheduler // nil ticks at 30 fps
	Now       func() time.Time        // nil uses time.Now
	Audio     *audio.Player           // nil disables sound
	AudioFile string
	Logger    *log.Logger
}

// scene is everything Bootstrap loads. It is replaced wholesale, never
// modified.
type scene struct {
	width, height int
	background    image.Image
	hero1, hero2  image.Image
	villain, prop image.Image
	hero1Face     *detector.Face
	hero2Face     *detector.Face
	layout        timeline.HeroLayout
}

// Status is a snapshot of the application state.
type Status struct {
	Ready     bool     `json:"ready"`
	Playing   bool     `json:"playing"`
	Width     int      `json:"width,omitempty"`
	Height    int      `json:"height,omitempty"`
	Error     string   `json:"error,omitempty"`
	ErrorCode string   `json:"code,omitempty"`
	Warnings  []string `json:"warnings,omitempty"`
}

// App is the hero-swap application.
type App struct {
	config     Config
	logger     *log.Logger
	extractor  *swapper.Extractor
	compositor *swapper.Compositor
	resolver   *tuning.Resolver
	player     *timeline.Player

	mu       sync.RWMutex
	scene    *scene
	initErr  error
	warnings []errors.Warning

	busy atomic.Bool
}

// New creates an App. Call Bootstrap before Upload.
func New(config Config) *App {
	logger := config.Logger
	if logger == nil {
		logger = log.Default()
	}
	if config.Names == (AssetNames{}) {
		config.Names = DefaultAssetNames()
	}
	if config.Extract == (swapper.ExtractOptions{}) {
		config.Extract = swapper.DefaultExtractOptions()
	}
	sched := config.Scheduler
	if sched == nil {
		sched = timeline.NewTickerScheduler(30)
	}
	resolver := config.Resolver
	if resolver == nil {
		resolver = tuning.NewResolver(nil, nil)
	}

	return &App{
		config:     config,
		logger:     logger,
		extractor:  swapper.NewExtractor(config.Extract, logger),
		compositor: swapper.NewCompositor(logger),
		resolver:   resolver,
		player:     timeline.NewPlayer(sched, config.Now),
	}
}

// Bootstrap waits for the detector, loads the scene assets, finds the template
// faces and draws the background. If session already holds a face it is
// reapplied and the sequence starts. A detector or asset failure is kept and
// reported by Status until the next successful Bootstrap.
func (a *App) Bootstrap(ctx context.Context, session *Session) ([]errors.Warning, error) {
	sc, warnings, err := a.load(ctx)

	a.mu.Lock()
	a.initErr = err
	a.warnings = warnings
	if err == nil {
		a.scene = sc
	}
	a.mu.Unlock()

	if err != nil {
		a.logger.Error("bootstrap failed", "err", err)
		return nil, err
	}
	for _, w := range warnings {
		a.logger.Warn(w.Message)
	}

	a.showBackground(sc)
	a.logger.Info("scene ready", "width", sc.width, "height", sc.height)

	if session != nil {
		if crop := session.Crop(); crop != nil {
			if _, err := a.play(sc, crop); err != nil {
				a.showBackground(sc)
				return warnings, err
			}
		}
	}
	return warnings, nil
}

func (a *App) load(ctx context.Context) (*scene, []errors.Warning, error) {
	det, err := a.config.Detector.Wait(ctx)
	if err != nil {
		return nil, nil, err
	}

	n := a.config.Names
	imgs, err := assets.Load(ctx, a.config.Assets, n.Background, n.Hero1, n.Hero2, n.Villain, n.Prop)
	if err != nil {
		return nil, nil, err
	}

	sc := &scene{
		background: imgs[n.Background],
		hero1:      imgs[n.Hero1],
		hero2:      imgs[n.Hero2],
		villain:    imgs[n.Villain],
		prop:       imgs[n.Prop],
	}
	sc.width, sc.height = raster.Size(sc.background)
	sc.layout = timeline.ComputeLayout(sc.width, sc.height, sc.villain, sc.prop)

	var warnings []errors.Warning
	sc.hero1Face = a.templateFace(ctx, det, tuning.Hero1, sc.hero1)
	sc.hero2Face = a.templateFace(ctx, det, tuning.Hero2, sc.hero2)
	if sc.hero1Face == nil || sc.hero2Face == nil {
		warnings = append(warnings, errors.Warning{Message: MsgTemplateFaces})
	}
	return sc, warnings, nil
}

func (a *App) templateFace(ctx context.Context, det detector.Detector, id tuning.TemplateID, img image.Image) *detector.Face {
	res, err := det.Detect(ctx, img)
	if err != nil {
		a.logger.Warn("template detection failed", "template", id, "err", err)
		return nil
	}
	face := res.First()
	if face == nil {
		a.logger.Warn("no face in template", "template", id)
	}
	return face
}

func (a *App) current() (*scene, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.scene == nil {
		return nil, errors.Wrap(errors.ErrCodeNotReady, a.initErr, MsgNotReady)
	}
	return a.scene, nil
}

func (a *App) showBackground(sc *scene) {
	a.player.Show(timeline.NewStill(sc.background, sc.width, sc.height))
}

// Replay restarts the current sequence from the beginning.
func (a *App) Replay() error {
	if !a.player.Replay() {
		return errors.New(errors.ErrCodeNotReady, MsgNotReady)
	}
	return nil
}

// Snapshot returns a copy of the canvas as last drawn.
func (a *App) Snapshot() *image.RGBA {
	return a.player.Snapshot()
}

// Frame renders the current scene at elapsed into a new image without
// touching the canvas.
func (a *App) Frame(elapsed time.Duration) (*image.RGBA, error) {
	s := a.player.Scene()
	if s == nil {
		return nil, errors.New(errors.ErrCodeNotReady, MsgNotReady)
	}
	w, h := s.Size()
	dst := raster.NewSurface(w, h)
	s.DrawFrame(dst, elapsed)
	return dst, nil
}

// Duration returns the length of the current scene.
func (a *App) Duration() time.Duration {
	if s := a.player.Scene(); s != nil {
		return s.Duration()
	}
	return 0
}

// Export writes the canvas as PNG.
func (a *App) Export(w io.Writer) error {
	if a.player.Scene() == nil {
		return errors.New(errors.ErrCodeNotReady, MsgNotReady)
	}
	return raster.EncodePNG(w, a.player.Snapshot())
}

// Subscribe registers fn for every drawn frame and returns a func removing it.
func (a *App) Subscribe(fn timeline.FrameFunc) func() {
	return a.player.Observe(fn)
}

// Status reports readiness, playback and any init error or warnings.
func (a *App) Status() Status {
	a.mu.RLock()
	st := Status{Ready: a.scene != nil}
	if a.scene != nil {
		st.Width, st.Height = a.scene.width, a.scene.height
	}
	if a.initErr != nil {
		st.Error = errors.UserMessage(a.initErr)
		st.ErrorCode = string(errors.GetCode(a.initErr))
	}
	for _, w := range a.warnings {
		st.Warnings = append(st.Warnings, w.Message)
	}
	a.mu.RUnlock()

	st.Playing = a.player.Playing()
	return st
}

// Resolver returns the tuning resolver in use.
func (a *App) Resolver() *tuning.Resolver {
	return a.resolver
}

// Close stops playback and releases the detector if it loaded.
func (a *App) Close() error {
	a.player.Stop()
	if !a.config.Detector.Settled() {
		return nil
	}
	det, err := a.config.Detector.Wait(context.Background())
	if err != nil || det == nil {
		return nil
	}
	return det.Close()
}
