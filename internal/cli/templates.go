package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ayusman/heroswap/internal/store"
	"github.com/ayusman/heroswap/internal/tuning"
)

func newTemplatesCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "templates",
		Short: "Inspect and tune the hero templates",
	}
	cmd.AddCommand(newTemplatesListCmd(opts))
	cmd.AddCommand(newTemplatesSetCmd(opts))
	cmd.AddCommand(newTemplatesResetCmd(opts))
	return cmd
}

func newTemplatesListCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Show the effective compositing settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := openStore(opts)
			if err != nil {
				return err
			}
			defer st.Close()

			rows, err := tuningRows(opts, st)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, StyleTitle.Render("Templates"))
			fmt.Fprintln(out, renderTuningTable(rows))
			fmt.Fprintln(out, StyleDim.Render("* stored override"))
			return nil
		},
	}
}

func tuningRows(opts *options, st *store.Store) ([]tuningRow, error) {
	resolver := newResolver(opts, st)
	rows := make([]tuningRow, 0, len(tuning.Templates))
	for _, id := range tuning.Templates {
		p, err := resolver.Resolve(id)
		if err != nil {
			return nil, err
		}
		row := tuningRow{ID: id, Profile: p}
		rec, err := st.Tuning().Get(id)
		switch {
		case err == nil:
			row.Stored = &rec.Override
		case !errors.Is(err, store.ErrNotFound):
			return nil, err
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func newTemplatesSetCmd(opts *options) *cobra.Command {
	var (
		mask, clip, scale, offsetX, offsetY float64
		remove                              bool
	)

	cmd := &cobra.Command{
		Use:   "set <template>",
		Short: "Store compositing settings for a template",
		Long: `Set stores the given settings for a template. Settings not named on the
command line keep their stored value.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := tuning.ParseTemplateID(args[0])
			if err != nil {
				return err
			}

			var o tuning.Override
			flags := cmd.Flags()
			for name, dst := range map[string]**float64{
				"mask":     &o.MaskScale,
				"clip":     &o.ClipScale,
				"scale":    &o.UniformScale,
				"offset-x": &o.OffsetX,
				"offset-y": &o.OffsetY,
			} {
				if !flags.Changed(name) {
					continue
				}
				v, _ := flags.GetFloat64(name)
				*dst = tuning.Float(v)
			}
			if flags.Changed("remove") {
				o.RemoveOriginal = tuning.Bool(remove)
			}
			if o.Empty() {
				return fmt.Errorf("nothing to set; pass at least one of --mask, --clip, --scale, --offset-x, --offset-y, --remove")
			}
			for _, v := range []*float64{o.MaskScale, o.ClipScale, o.UniformScale} {
				if v != nil && *v <= 0 {
					return fmt.Errorf("scales must be positive, got %g", *v)
				}
			}

			st, err := openStore(opts)
			if err != nil {
				return err
			}
			defer st.Close()

			if _, err := st.Tuning().Upsert(id, o); err != nil {
				return err
			}
			loggerFromContext(cmd.Context()).Debug("tuning stored", "template", id)
			printSuccess(cmd.OutOrStdout(), "Updated %s", id)
			return nil
		},
	}

	cmd.Flags().Float64Var(&mask, "mask", 0, "oval expansion for erasing the original face")
	cmd.Flags().Float64Var(&clip, "clip", 0, "oval expansion for clipping the pasted face")
	cmd.Flags().Float64Var(&scale, "scale", 0, "uniform scale about the nose")
	cmd.Flags().Float64Var(&offsetX, "offset-x", 0, "horizontal offset in crop pixels")
	cmd.Flags().Float64Var(&offsetY, "offset-y", 0, "vertical offset in crop pixels")
	cmd.Flags().BoolVar(&remove, "remove", true, "erase the template's own face first")

	return cmd
}

func newTemplatesResetCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "reset <template>",
		Short: "Drop stored settings for a template",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := tuning.ParseTemplateID(args[0])
			if err != nil {
				return err
			}

			st, err := openStore(opts)
			if err != nil {
				return err
			}
			defer st.Close()

			err = st.Tuning().Delete(id)
			if errors.Is(err, store.ErrNotFound) {
				printWarning(cmd.OutOrStdout(), "%s has no stored settings", id)
				return nil
			}
			if err != nil {
				return err
			}
			printSuccess(cmd.OutOrStdout(), "Reset %s", id)
			return nil
		},
	}
}
