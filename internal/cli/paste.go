package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ayusman/heroswap/internal/timeline"
)

func newPasteCmd(opts *options) *cobra.Command {
	var (
		source string
		target string
		output string
	)

	cmd := &cobra.Command{
		Use:   "paste",
		Short: "Put the face from one photo onto the face in another",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPaste(cmd, opts, source, target, output)
		},
	}

	cmd.Flags().StringVarP(&source, "source", "s", "", "photo to take the face from (required)")
	cmd.Flags().StringVarP(&target, "target", "t", "", "photo to put the face on (required)")
	cmd.Flags().StringVarP(&output, "output", "o", "pasted.png", "output PNG")
	cmd.MarkFlagRequired("source")
	cmd.MarkFlagRequired("target")

	return cmd
}

func runPaste(cmd *cobra.Command, opts *options, source, target, output string) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)

	src, err := os.Open(source)
	if err != nil {
		return err
	}
	defer src.Close()
	dst, err := os.Open(target)
	if err != nil {
		return err
	}
	defer dst.Close()

	// Paste uses the default profile only, so no store is opened.
	a := newApp(ctx, opts, nil, &timeline.ManualScheduler{})
	defer a.Close()

	p := startTimer(logger)
	res, err := a.Paste(ctx, src, dst, "")
	if err != nil {
		return err
	}
	p.done("Face pasted", "aligned", res.Aligned)

	final, err := a.Frame(a.Duration())
	if err != nil {
		return err
	}
	if err := writePNG(output, final); err != nil {
		return fmt.Errorf("write %s: %w", output, err)
	}

	out := cmd.OutOrStdout()
	printSuccess(out, "Pasted face onto %dx%d photo", res.Width, res.Height)
	printFile(out, output)
	return nil
}
