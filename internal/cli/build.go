package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/ayusman/heroswap/internal/app"
	"github.com/ayusman/heroswap/internal/assets"
	"github.com/ayusman/heroswap/internal/audio"
	"github.com/ayusman/heroswap/internal/detector"
	"github.com/ayusman/heroswap/internal/detector/mediapipe"
	"github.com/ayusman/heroswap/internal/store"
	"github.com/ayusman/heroswap/internal/swapper"
	"github.com/ayusman/heroswap/internal/timeline"
	"github.com/ayusman/heroswap/internal/tuning"
)

// openStore opens the tuning database, creating its directory.
func openStore(opts *options) (*store.Store, error) {
	path := opts.cfg.Store.Path
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create data directory: %w", err)
		}
	}
	return store.New(path)
}

func newResolver(opts *options, s *store.Store) *tuning.Resolver {
	var src tuning.Source
	if s != nil {
		src = s.Tuning()
	}
	return tuning.NewResolver(opts.cfg.Tuning, src)
}

// loadDetector starts the detector in the background.
func loadDetector(ctx context.Context, opts *options, logger *log.Logger) *detector.Loader {
	d := opts.cfg.Detector
	open := opts.openDetector
	if open == nil {
		open = mediapipe.Open(mediapipe.Options{
			Detector: detector.Config{
				MaxFaces:      d.MaxFaces,
				MinConfidence: d.MinConfidence,
			},
			Python:      d.Python,
			Script:      d.Script,
			IdleTimeout: d.IdleTimeout.Duration,
			Logger:      logger.WithPrefix("detector"),
		})
	}
	return detector.Load(ctx, d.ReadyTimeout.Duration, open)
}

// newApp wires an App from the loaded config. A nil scheduler ticks in real
// time at the configured rate.
func newApp(ctx context.Context, opts *options, s *store.Store, sched timeline.FrameScheduler) *app.App {
	logger := loggerFromContext(ctx)
	cfg := opts.cfg
	if sched == nil {
		sched = timeline.NewTickerScheduler(cfg.Animation.FPS)
	}

	var player *audio.Player
	if cfg.Audio.File != "" {
		player = audio.NewPlayer(cfg.Audio.Player, cfg.Audio.Args, cfg.Audio.Timeout.Duration, logger.WithPrefix("audio"))
	}

	return app.New(app.Config{
		Assets: assets.DirSource(cfg.Assets.Dir),
		Names: app.AssetNames{
			Background: cfg.Assets.Background,
			Hero1:      cfg.Assets.Hero1,
			Hero2:      cfg.Assets.Hero2,
			Villain:    cfg.Assets.Villain,
			Prop:       cfg.Assets.Prop,
		},
		Detector: loadDetector(ctx, opts, logger),
		Resolver: newResolver(opts, s),
		Extract: swapper.ExtractOptions{
			PaddingFraction: cfg.Extract.PaddingFraction,
			MinPadding:      cfg.Extract.MinPadding,
			ClipScale:       cfg.Extract.ClipScale,
			SoftEdge:        cfg.Extract.SoftEdge,
		},
		Scheduler: sched,
		Audio:     player,
		AudioFile: cfg.Audio.File,
		Logger:    logger,
	})
}
