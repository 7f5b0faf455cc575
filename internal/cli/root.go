package cli

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/ayusman/heroswap/internal/config"
	"github.com/ayusman/heroswap/internal/detector"
)

// DefaultConfigPath is read when --config is not given. A missing file means
// the built-in defaults.
const DefaultConfigPath = "heroswap.toml"

// options is shared by every command.
type options struct {
	verbose    bool
	configPath string
	cfg        config.Config

	// openDetector replaces the MediaPipe detector when set.
	openDetector detector.OpenFunc
}

// Execute runs the heroswap CLI and returns an error if any command fails.
func Execute(ctx context.Context) error {
	return newRootCmd(&options{}).ExecuteContext(ctx)
}

func newRootCmd(opts *options) *cobra.Command {
	root := &cobra.Command{
		Use:           "heroswap",
		Short:         "heroswap puts your face on a hero",
		Long:          `heroswap detects the face in a photo, pastes it onto a hero template and plays a short animated scene.`,
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			ctx := withLogger(cmd.Context(), newLogger(os.Stderr, opts.verbose))
			cmd.SetContext(ctx)

			cfg, err := config.Load(opts.configPath)
			if err != nil {
				return err
			}
			opts.cfg = cfg
			loggerFromContext(ctx).Debug("config loaded", "path", opts.configPath)
			return nil
		},
	}

	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "enable verbose logging")
	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c", DefaultConfigPath, "path to the TOML config file")

	root.AddCommand(newServeCmd(opts))
	root.AddCommand(newComposeCmd(opts))
	root.AddCommand(newPasteCmd(opts))
	root.AddCommand(newTemplatesCmd(opts))

	return root
}
