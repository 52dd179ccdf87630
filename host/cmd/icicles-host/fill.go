package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/led-icicles/icicles-serial/host/scene"
	"github.com/led-icicles/icicles-serial/protocol"
)

func fillCmd(a *app) *cobra.Command {
	var (
		duration   time.Duration
		panels     []uint
		panelColor string
	)

	cmd := &cobra.Command{
		Use:   "fill <color>",
		Short: "Fill the strip with a single color",
		Long: `Fill every pixel with a "#rrggbb" color and hold it.
Radio panels listed with --panels get --panel-color (default: the fill color).`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.cfg.Pixels == 0 {
				return fmt.Errorf("--pixels must be set")
			}

			fill, err := scene.ParseColor(args[0])
			if err != nil {
				return err
			}
			pc := fill
			if panelColor != "" {
				if pc, err = scene.ParseColor(panelColor); err != nil {
					return err
				}
			}

			frame := protocol.DisplayFrame{Strip: protocol.Solid(a.cfg.Pixels, fill)}
			for _, idx := range panels {
				if idx > 255 {
					return fmt.Errorf("panel index %d out of range", idx)
				}
				frame.Panels = append(frame.Panels, protocol.RadioPanel{Index: uint8(idx), Color: pc})
			}

			ctx, cancel := signalContext(cmd.Context())
			defer cancel()

			session, cleanup, err := a.openSession(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			if err := session.Start(a.cfg.StartOptions()); err != nil {
				return finish(session, err)
			}
			if err := session.Display(frame); err != nil {
				return finish(session, fmt.Errorf("failed to display frame: %w", err))
			}

			hold(ctx, duration)
			return finish(session, nil)
		},
	}

	cmd.Flags().DurationVar(&duration, "duration", 0, "How long to hold the color (0 = until interrupted)")
	cmd.Flags().UintSliceVar(&panels, "panels", nil, "Radio panel indexes to light")
	cmd.Flags().StringVar(&panelColor, "panel-color", "", "Radio panel color")

	return cmd
}
