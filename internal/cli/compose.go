package cli

import (
	"context"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/ayusman/heroswap/internal/app"
	"github.com/ayusman/heroswap/internal/raster"
	"github.com/ayusman/heroswap/internal/timeline"
)

func newComposeCmd(opts *options) *cobra.Command {
	var (
		photo     string
		output    string
		framesDir string
		assetsDir string
	)

	cmd := &cobra.Command{
		Use:   "compose",
		Short: "Put a face on the hero scene and write the final frame",
		Long: `Compose runs the hero sequence offline: the face in --photo is pasted onto
the first hero and the last frame of the scene is written to --output.
With --frames every frame at the configured rate is written as well.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if assetsDir != "" {
				opts.cfg.Assets.Dir = assetsDir
			}
			return runCompose(cmd, opts, photo, output, framesDir)
		},
	}

	cmd.Flags().StringVarP(&photo, "photo", "p", "", "photo with a face (required)")
	cmd.Flags().StringVarP(&output, "output", "o", "heroswap.png", "output PNG")
	cmd.Flags().StringVar(&framesDir, "frames", "", "directory to write every frame to")
	cmd.Flags().StringVar(&assetsDir, "assets", "", "scene asset directory")
	cmd.MarkFlagRequired("photo")

	return cmd
}

func runCompose(cmd *cobra.Command, opts *options, photo, output, framesDir string) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)

	st, err := openStore(opts)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	a := newApp(ctx, opts, st, &timeline.ManualScheduler{})
	defer a.Close()

	p := startTimer(logger)
	warnings, err := a.Bootstrap(ctx, nil)
	if err != nil {
		return err
	}
	for _, w := range warnings {
		printWarning(cmd.ErrOrStderr(), "%s", w.Message)
	}
	p.done("Scene loaded", "warnings", len(warnings))

	f, err := os.Open(photo)
	if err != nil {
		return err
	}
	defer f.Close()

	p = startTimer(logger)
	res, err := a.Upload(ctx, app.NewSession(), f)
	if err != nil {
		return err
	}
	if !res.Aligned {
		printWarning(cmd.ErrOrStderr(), "The hero template has no face to align to; it was left unchanged.")
	}
	p.done("Face composited", "aligned", res.Aligned)

	out := cmd.OutOrStdout()
	if framesDir != "" {
		n, err := writeFrames(ctx, a, framesDir, opts.cfg.Animation.FPS)
		if err != nil {
			return err
		}
		printSuccess(out, "Wrote %d frames", n)
		printFile(out, framesDir)
	}

	final, err := a.Frame(a.Duration())
	if err != nil {
		return err
	}
	if err := writePNG(output, final); err != nil {
		return err
	}
	printSuccess(out, "Composed %dx%d scene", res.Width, res.Height)
	printFile(out, output)
	return nil
}

// writeFrames renders the current scene from 0 to its end at fps and writes
// frame_0000.png onward into dir. The last frame is always the end.
func writeFrames(ctx context.Context, a *app.App, dir string, fps int) (int, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return 0, err
	}
	step := time.Second / time.Duration(fps)
	total := a.Duration()

	n := 0
	write := func(elapsed time.Duration) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		frame, err := a.Frame(elapsed)
		if err != nil {
			return err
		}
		name := filepath.Join(dir, fmt.Sprintf("frame_%04d.png", n))
		n++
		return writePNG(name, frame)
	}

	for t := time.Duration(0); t < total; t += step {
		if err := write(t); err != nil {
			return n, err
		}
	}
	if err := write(total); err != nil {
		return n, err
	}
	return n, nil
}

func writePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := raster.EncodePNG(f, img); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
