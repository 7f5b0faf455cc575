package cli

import (
	"bytes"
	"context"
	"testing"

	"github.com/ayusman/heroswap/internal/app"
	"github.com/ayusman/heroswap/internal/config"
	"github.com/ayusman/heroswap/internal/detector"
	"github.com/ayusman/heroswap/internal/testutil"
	"github.com/ayusman/heroswap/internal/timeline"
)

func TestBootstrapScene(t *testing.T) {
	env := newTestEnv(t)
	cfg, err := config.Load(env.config)
	if err != nil {
		t.Fatal(err)
	}
	opts := &options{
		cfg: cfg,
		openDetector: func(ctx context.Context) (detector.Detector, error) {
			return testutil.FaceDetector(), nil
		},
	}
	ctx := withLogger(context.Background(), newLogger(&bytes.Buffer{}, false))

	newSceneApp := func() *app.App {
		a := newApp(ctx, opts, nil, &timeline.ManualScheduler{})
		t.Cleanup(func() { a.Close() })
		return a
	}

	session := app.NewSession()

	t.Run("empty session shows the background", func(t *testing.T) {
		a := newSceneApp()
		bootstrapScene(ctx, a, session, nil)
		st := a.Status()
		if !st.Ready || st.Playing {
			t.Errorf("expected ready and idle, got %+v", st)
		}
	})

	t.Run("session face is reapplied", func(t *testing.T) {
		first := newSceneApp()
		bootstrapScene(ctx, first, session, nil)
		if _, err := first.Upload(ctx, session, bytes.NewReader(testutil.Photo(200, 200))); err != nil {
			t.Fatalf("upload failed: %v", err)
		}
		if session.Crop() == nil {
			t.Fatal("expected upload to store the face in the session")
		}

		second := newSceneApp()
		bootstrapScene(ctx, second, session, nil)
		if st := second.Status(); !st.Ready || !st.Playing {
			t.Errorf("expected the reapplied face to start playing, got %+v", st)
		}
	})

	t.Run("asset failure leaves status reporting it", func(t *testing.T) {
		broken := opts.cfg
		broken.Assets.Dir = t.TempDir()
		bad := &options{cfg: broken, openDetector: opts.openDetector}
		a := newApp(ctx, bad, nil, &timeline.ManualScheduler{})
		defer a.Close()

		bootstrapScene(ctx, a, session, nil)
		if st := a.Status(); st.Ready || st.ErrorCode == "" {
			t.Errorf("expected a not-ready status with an error code, got %+v", st)
		}
	})
}
