package main

import (
	"github.com/spf13/cobra"

	"github.com/led-icicles/icicles-serial/host/scene"
)

func playCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "play <scene.yaml>",
		Short: "Play a scene file",
		Long: `Play the frames of a YAML scene file. Looping scenes play until
interrupted; the controller resumes its built-in animations afterwards.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := scene.Load(args[0])
			if err != nil {
				return err
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

			a.logger.Info("playing scene", "file", args[0], "frames", len(s.Frames), "loop", s.Loop)
			err = scene.NewPlayer(nil, a.logger).Play(ctx, session, s)
			return finish(session, err)
		},
	}
}
