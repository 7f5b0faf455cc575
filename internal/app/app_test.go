package app

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"sync"
	"testing"
	"testing/fstest"
	"time"

	"github.com/ayusman/heroswap/internal/assets"
	"github.com/ayusman/heroswap/internal/detector"
	"github.com/ayusman/heroswap/internal/errors"
	"github.com/ayusman/heroswap/internal/raster"
	"github.com/ayusman/heroswap/internal/testutil"
	"github.com/ayusman/heroswap/internal/timeline"
)

type harness struct {
	app   *App
	det   *detector.MockDetector
	sched *timeline.ManualScheduler
	fs    fstest.MapFS
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		det:   testutil.FaceDetector(),
		sched: &timeline.ManualScheduler{},
		fs:    testutil.SceneFS(),
	}
	h.app = New(Config{
		Assets:    assets.FSSource{FS: h.fs},
		Detector:  detector.Ready(h.det),
		Scheduler: h.sched,
	})
	t.Cleanup(func() { h.app.Close() })
	return h
}

func (h *harness) bootstrap(t *testing.T) {
	t.Helper()
	if _, err := h.app.Bootstrap(context.Background(), nil); err != nil {
		t.Fatalf("bootstrap failed: %v", err)
	}
}

func sameColor(c color.Color, want color.RGBA) bool {
	r, g, b, a := c.RGBA()
	return uint8(r>>8) == want.R && uint8(g>>8) == want.G && uint8(b>>8) == want.B && uint8(a>>8) == want.A
}

func TestBootstrap(t *testing.T) {
	t.Run("draws the background", func(t *testing.T) {
		h := newHarness(t)
		warnings, err := h.app.Bootstrap(context.Background(), nil)
		if err != nil {
			t.Fatalf("bootstrap failed: %v", err)
		}
		if len(warnings) != 0 {
			t.Errorf("expected no warnings, got %v", warnings)
		}

		st := h.app.Status()
		if !st.Ready || st.Width != testutil.SceneWidth || st.Height != testutil.SceneHeight {
			t.Errorf("unexpected status %+v", st)
		}
		if st.Playing {
			t.Error("expected nothing playing after bootstrap")
		}
		snap := h.app.Snapshot()
		if snap.Bounds().Dx() != testutil.SceneWidth {
			t.Errorf("expected canvas width %d, got %d", testutil.SceneWidth, snap.Bounds().Dx())
		}
		if !sameColor(snap.At(100, 75), testutil.Red) {
			t.Errorf("expected background color, got %v", snap.At(100, 75))
		}
	})

	t.Run("missing template face is a warning", func(t *testing.T) {
		h := newHarness(t)
		h.fs["hero2.png"] = &fstest.MapFile{Data: testutil.PNG(testutil.MinFaceWidth-1, 60, testutil.Blue)}

		warnings, err := h.app.Bootstrap(context.Background(), nil)
		if err != nil {
			t.Fatalf("expected bootstrap to succeed, got %v", err)
		}
		if len(warnings) != 1 || warnings[0].Message != MsgTemplateFaces {
			t.Errorf("expected template face warning, got %v", warnings)
		}
		if st := h.app.Status(); !st.Ready || len(st.Warnings) != 1 {
			t.Errorf("expected ready status with warning, got %+v", st)
		}
	})

	t.Run("missing asset is fatal", func(t *testing.T) {
		h := newHarness(t)
		delete(h.fs, "villian.png")

		_, err := h.app.Bootstrap(context.Background(), nil)
		if !errors.Is(err, errors.ErrCodeAssetLoad) {
			t.Fatalf("expected asset load failure, got %v", err)
		}
		st := h.app.Status()
		if st.Ready || st.ErrorCode != string(errors.ErrCodeAssetLoad) {
			t.Errorf("expected persistent init error, got %+v", st)
		}

		_, err = h.app.Upload(context.Background(), NewSession(), bytes.NewReader(testutil.Photo(200, 200)))
		if !errors.Is(err, errors.ErrCodeNotReady) {
			t.Errorf("expected NOT_READY after failed bootstrap, got %v", err)
		}
	})

	t.Run("detector failure is fatal", func(t *testing.T) {
		h := newHarness(t)
		h.app.config.Detector = detector.Load(context.Background(), time.Second, func(ctx context.Context) (detector.Detector, error) {
			return nil, fmt.Errorf("mediapipe not installed")
		})

		_, err := h.app.Bootstrap(context.Background(), nil)
		if !errors.Is(err, errors.ErrCodeDetectorUnavailable) {
			t.Errorf("expected detector unavailable, got %v", err)
		}
	})

	t.Run("reapplies the session face", func(t *testing.T) {
		h := newHarness(t)
		h.bootstrap(t)
		session := NewSession()
		if _, err := h.app.Upload(context.Background(), session, bytes.NewReader(testutil.Photo(200, 200))); err != nil {
			t.Fatal(err)
		}
		h.app.player.Stop()

		if _, err := h.app.Bootstrap(context.Background(), session); err != nil {
			t.Fatalf("second bootstrap failed: %v", err)
		}
		if !h.app.Status().Playing {
			t.Error("expected the stored face to start the sequence")
		}
	})
}

func TestUpload(t *testing.T) {
	t.Run("before bootstrap", func(t *testing.T) {
		h := newHarness(t)
		_, err := h.app.Upload(context.Background(), NewSession(), bytes.NewReader(testutil.Photo(200, 200)))
		if !errors.Is(err, errors.ErrCodeNotReady) {
			t.Errorf("expected NOT_READY, got %v", err)
		}
		if msg := errors.UserMessage(err); msg != MsgNotReady {
			t.Errorf("expected %q, got %q", MsgNotReady, msg)
		}
	})

	t.Run("starts the hero sequence", func(t *testing.T) {
		h := newHarness(t)
		h.bootstrap(t)
		session := NewSession()

		res, err := h.app.Upload(context.Background(), session, bytes.NewReader(testutil.Photo(200, 200)))
		if err != nil {
			t.Fatalf("upload failed: %v", err)
		}
		if !res.Aligned {
			t.Error("expected the face to be aligned to hero1")
		}
		if res.SessionID != session.ID.String() {
			t.Errorf("expected session id %s, got %s", session.ID, res.SessionID)
		}
		if session.Crop() == nil {
			t.Error("expected the crop to be stored in the session")
		}
		if !h.app.Status().Playing {
			t.Error("expected playback to start")
		}
		if h.app.Duration() != timeline.HeroTotal {
			t.Errorf("expected hero duration, got %v", h.app.Duration())
		}
		if sameColor(h.app.Snapshot().At(100, 75), testutil.Red) {
			t.Error("expected hero1 drawn over the background at frame zero")
		}
		if h.sched.Pending() != 1 {
			t.Errorf("expected one frame requested, got %d", h.sched.Pending())
		}
	})

	t.Run("no face redraws the background", func(t *testing.T) {
		h := newHarness(t)
		h.bootstrap(t)
		session := NewSession()
		if _, err := h.app.Upload(context.Background(), session, bytes.NewReader(testutil.Photo(200, 200))); err != nil {
			t.Fatal(err)
		}
		before := session.Crop()

		_, err := h.app.Upload(context.Background(), session, bytes.NewReader(testutil.Photo(20, 20)))
		if !errors.Is(err, errors.ErrCodeNoFace) {
			t.Fatalf("expected NO_FACE_DETECTED, got %v", err)
		}
		if errors.UserMessage(err) != MsgNoFace {
			t.Errorf("expected %q, got %q", MsgNoFace, errors.UserMessage(err))
		}
		if h.app.Status().Playing {
			t.Error("expected playback stopped")
		}
		if !sameColor(h.app.Snapshot().At(100, 75), testutil.Red) {
			t.Error("expected plain background after failure")
		}
		if session.Crop() != before {
			t.Error("expected the previous face to be kept")
		}
	})

	t.Run("undecodable photo", func(t *testing.T) {
		h := newHarness(t)
		h.bootstrap(t)
		_, err := h.app.Upload(context.Background(), NewSession(), bytes.NewReader([]byte("GIF89a?")))
		if !errors.Is(err, errors.ErrCodeAssetLoad) {
			t.Errorf("expected ASSET_LOAD_FAILURE, got %v", err)
		}
	})

	t.Run("concurrent upload is busy", func(t *testing.T) {
		h := newHarness(t)
		h.bootstrap(t)

		entered := make(chan struct{})
		release := make(chan struct{})
		var once sync.Once
		h.det.SetFunc(func(img image.Image) ([]detector.Face, error) {
			once.Do(func() { close(entered) })
			<-release
			return testutil.FaceFunc(img)
		})

		done := make(chan error, 1)
		go func() {
			_, err := h.app.Upload(context.Background(), NewSession(), bytes.NewReader(testutil.Photo(200, 200)))
			done <- err
		}()
		<-entered

		_, err := h.app.Upload(context.Background(), NewSession(), bytes.NewReader(testutil.Photo(200, 200)))
		if !errors.Is(err, errors.ErrCodeBusy) {
			t.Errorf("expected BUSY, got %v", err)
		}

		close(release)
		if err := <-done; err != nil {
			t.Errorf("first upload failed: %v", err)
		}
		if _, err := h.app.Upload(context.Background(), NewSession(), bytes.NewReader(testutil.Photo(200, 200))); err != nil {
			t.Errorf("expected upload to work again, got %v", err)
		}
	})
}

func TestPlayback(t *testing.T) {
	t.Run("replay before anything", func(t *testing.T) {
		h := newHarness(t)
		if err := h.app.Replay(); !errors.Is(err, errors.ErrCodeNotReady) {
			t.Errorf("expected NOT_READY, got %v", err)
		}
		if err := h.app.Export(&bytes.Buffer{}); !errors.Is(err, errors.ErrCodeNotReady) {
			t.Errorf("expected NOT_READY from export, got %v", err)
		}
	})

	t.Run("replay restarts the sequence", func(t *testing.T) {
		h := newHarness(t)
		h.bootstrap(t)
		if _, err := h.app.Upload(context.Background(), NewSession(), bytes.NewReader(testutil.Photo(200, 200))); err != nil {
			t.Fatal(err)
		}
		h.app.player.Stop()
		if err := h.app.Replay(); err != nil {
			t.Fatalf("replay failed: %v", err)
		}
		if !h.app.Status().Playing {
			t.Error("expected playback after replay")
		}
	})

	t.Run("export writes a png of the canvas", func(t *testing.T) {
		h := newHarness(t)
		h.bootstrap(t)
		var buf bytes.Buffer
		if err := h.app.Export(&buf); err != nil {
			t.Fatalf("export failed: %v", err)
		}
		img, err := raster.Decode(&buf)
		if err != nil {
			t.Fatalf("export is not an image: %v", err)
		}
		if img.Bounds().Dx() != testutil.SceneWidth || img.Bounds().Dy() != testutil.SceneHeight {
			t.Errorf("unexpected export size %v", img.Bounds())
		}
	})

	t.Run("frame renders without touching the canvas", func(t *testing.T) {
		h := newHarness(t)
		h.bootstrap(t)
		if _, err := h.app.Upload(context.Background(), NewSession(), bytes.NewReader(testutil.Photo(200, 200))); err != nil {
			t.Fatal(err)
		}
		before := h.app.Snapshot()
		final, err := h.app.Frame(timeline.HeroTotal)
		if err != nil {
			t.Fatal(err)
		}
		if bytes.Equal(final.Pix, before.Pix) {
			t.Error("expected the final frame to differ from frame zero")
		}
		if !bytes.Equal(h.app.Snapshot().Pix, before.Pix) {
			t.Error("expected canvas unchanged by Frame")
		}
	})

	t.Run("subscribers receive frames", func(t *testing.T) {
		h := newHarness(t)
		var mu sync.Mutex
		var frames int
		unsubscribe := h.app.Subscribe(func(frame *image.RGBA, _ time.Duration) {
			mu.Lock()
			frames++
			mu.Unlock()
		})
		h.bootstrap(t)
		unsubscribe()
		h.app.Replay()

		mu.Lock()
		defer mu.Unlock()
		if frames != 1 {
			t.Errorf("expected exactly the bootstrap frame, got %d", frames)
		}
	})
}

func TestPaste(t *testing.T) {
	t.Run("composites source onto target", func(t *testing.T) {
		h := newHarness(t)
		res, err := h.app.Paste(context.Background(),
			bytes.NewReader(testutil.Photo(200, 200)),
			bytes.NewReader(testutil.PNG(160, 120, testutil.Green)), "")
		if err != nil {
			t.Fatalf("paste failed: %v", err)
		}
		if !res.Aligned || res.Width != 160 || res.Height != 120 {
			t.Errorf("unexpected result %+v", res)
		}
		if h.app.Duration() != timeline.PasteTotal {
			t.Errorf("expected paste duration, got %v", h.app.Duration())
		}
	})

	t.Run("source without a face", func(t *testing.T) {
		h := newHarness(t)
		_, err := h.app.Paste(context.Background(),
			bytes.NewReader(testutil.Photo(20, 20)),
			bytes.NewReader(testutil.Photo(200, 200)), "")
		if !errors.Is(err, errors.ErrCodeNoFace) {
			t.Fatalf("expected NO_FACE_DETECTED, got %v", err)
		}
		if errors.UserMessage(err) != "No face detected in the source photo." {
			t.Errorf("unexpected message %q", errors.UserMessage(err))
		}
	})

	t.Run("target without a face", func(t *testing.T) {
		h := newHarness(t)
		_, err := h.app.Paste(context.Background(),
			bytes.NewReader(testutil.Photo(200, 200)),
			bytes.NewReader(testutil.Photo(20, 20)), "")
		if errors.UserMessage(err) != "No face detected in the target photo." {
			t.Errorf("unexpected error %v", err)
		}
	})
}

func TestSession(t *testing.T) {
	a, b := NewSession(), NewSession()
	if a.ID == b.ID {
		t.Error("expected distinct session ids")
	}
	if a.Crop() != nil {
		t.Error("expected new session to be empty")
	}
}
