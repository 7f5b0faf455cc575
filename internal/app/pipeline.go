package app

import (
	"context"
	"image"
	"io"

	"github.com/ayusman/heroswap/internal/detector"
	"github.com/ayusman/heroswap/internal/errors"
	"github.com/ayusman/heroswap/internal/raster"
	"github.com/ayusman/heroswap/internal/swapper"
	"github.com/ayusman/heroswap/internal/timeline"
	"github.com/ayusman/heroswap/internal/tuning"
)

// Result describes a composite that started playing.
type Result struct {
	SessionID string `json:"sessionId,omitempty"`
	Aligned   bool   `json:"aligned"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
}

// Upload runs the hero pipeline on a photo:
//
//  1. decode the photo
//  2. detect the face
//  3. extract the face crop and store it in the session
//  4. composite the crop onto hero1
//  5. start the hero sequence and the audio
//
// Only one upload runs at a time; a concurrent call fails with BUSY. Any
// failure redraws the plain background and leaves the scene ready for
// another try.
func (a *App) Upload(ctx context.Context, session *Session, r io.Reader) (*Result, error) {
	if !a.busy.CompareAndSwap(false, true) {
		return nil, errors.New(errors.ErrCodeBusy, MsgBusy)
	}
	defer a.busy.Store(false)

	sc, err := a.current()
	if err != nil {
		return nil, err
	}

	res, err := a.upload(ctx, sc, session, r)
	if err != nil {
		a.logger.Warn("upload failed", "session", session.ID, "err", err)
		a.showBackground(sc)
		return nil, err
	}
	return res, nil
}

func (a *App) upload(ctx context.Context, sc *scene, session *Session, r io.Reader) (*Result, error) {
	img, err := decodePhoto(r)
	if err != nil {
		return nil, err
	}

	face, err := a.detect(ctx, img, MsgNoFace)
	if err != nil {
		return nil, err
	}

	crop, err := a.extractor.Extract(img, face)
	if err != nil {
		return nil, err
	}
	session.SetCrop(crop)

	res, err := a.play(sc, crop)
	if err != nil {
		return nil, err
	}
	res.SessionID = session.ID.String()
	return res, nil
}

// play composites crop onto hero1 and starts the hero sequence. hero2 is
// always shown as the plain template.
func (a *App) play(sc *scene, crop *swapper.Crop) (*Result, error) {
	profile, err := a.resolver.Resolve(tuning.Hero1)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "Could not load template settings.")
	}

	comp := a.compositor.Compose(sc.hero1, sc.hero1Face, crop, profile)
	a.logger.Debug("composited hero1", "aligned", comp.Aligned, "profile", profile)

	hero := timeline.NewHeroScene(sc.width, sc.height, timeline.HeroAssets{
		Background: sc.background,
		Hero1:      comp.Image,
		Hero2:      sc.hero2,
		Villain:    sc.villain,
		Prop:       sc.prop,
	}, sc.layout, timeline.DefaultHeroTimeline())

	a.player.Start(hero)
	a.config.Audio.Play(a.config.AudioFile)

	return &Result{Aligned: comp.Aligned, Width: sc.width, Height: sc.height}, nil
}

// Paste puts the face from source onto the face in target with soft edges and
// the default profile, then cross-fades target into the result. It needs the
// detector but not the hero scene. An empty audioFile falls back to the
// configured one.
func (a *App) Paste(ctx context.Context, source, target io.Reader, audioFile string) (*Result, error) {
	if !a.busy.CompareAndSwap(false, true) {
		return nil, errors.New(errors.ErrCodeBusy, MsgBusy)
	}
	defer a.busy.Store(false)

	src, err := decodePhoto(source)
	if err != nil {
		return nil, err
	}
	dst, err := decodePhoto(target)
	if err != nil {
		return nil, err
	}

	srcFace, err := a.detect(ctx, src, "No face detected in the source photo.")
	if err != nil {
		return nil, err
	}
	dstFace, err := a.detect(ctx, dst, "No face detected in the target photo.")
	if err != nil {
		return nil, err
	}

	crop, err := a.extractor.WithSoftEdge(true).Extract(src, srcFace)
	if err != nil {
		return nil, err
	}
	comp := a.compositor.Compose(dst, dstFace, crop, tuning.Default())

	a.player.Start(timeline.NewPasteScene(dst, comp.Image))
	if audioFile == "" {
		audioFile = a.config.AudioFile
	}
	a.config.Audio.Play(audioFile)

	w, h := raster.Size(dst)
	return &Result{Aligned: comp.Aligned, Width: w, Height: h}, nil
}

func (a *App) detect(ctx context.Context, img image.Image, noFace string) (*detector.Face, error) {
	det, err := a.config.Detector.Wait(ctx)
	if err != nil {
		return nil, err
	}
	res, err := det.Detect(ctx, img)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeDetectorUnavailable, err, "Face detection failed.")
	}
	face := res.First()
	if face == nil {
		return nil, errors.New(errors.ErrCodeNoFace, "%s", noFace)
	}
	return face, nil
}

func decodePhoto(r io.Reader) (image.Image, error) {
	img, err := raster.Decode(r)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeAssetLoad, err, MsgBadPhoto)
	}
	return img, nil
}
