package main

import (
	"time"

	"github.com/spf13/cobra"
)

func pingCmd(a *app) *cobra.Command {
	var duration time.Duration

	cmd := &cobra.Command{
		Use:   "ping",
		Short: "Hold the controller in host mode",
		Long: `Open a session and keep it alive with pings, without sending frames.
The session ends on interrupt or after --duration.`,
		RunE: func(cmd *cobra.Command, args []string) error {
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

			hold(ctx, duration)
			return finish(session, nil)
		},
	}

	cmd.Flags().DurationVar(&duration, "duration", 0, "How long to hold the session (0 = until interrupted)")

	return cmd
}
