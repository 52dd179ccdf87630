package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	a := newApp()

	rootCmd := &cobra.Command{
		Use:   "icicles-host",
		Short: "Drive an LED icicles display over a serial port",
		Long: `icicles-host talks to an icicles controller over its serial port.

While a session is open the controller shows frames sent by the host and
stops its built-in animations. The host pings the controller when idle so it
does not fall back to them; ending the session resumes them.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.load()
		},
	}

	a.bindFlags(rootCmd)

	rootCmd.AddCommand(
		pingCmd(a),
		fillCmd(a),
		playCmd(a),
		endCmd(a),
		versionCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}
