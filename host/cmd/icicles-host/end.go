package main

import (
	"github.com/spf13/cobra"
)

func endCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "end",
		Short: "Return the controller to its built-in animations",
		RunE: func(cmd *cobra.Command, args []string) error {
			session, cleanup, err := a.openSession(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			return session.Stop()
		},
	}
}
