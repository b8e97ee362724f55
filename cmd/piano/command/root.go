package command

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/pongsant/Assignment-4-Collaboration/config"
)

var logLevel string

var rootCmd = &cobra.Command{
	Use:   "piano",
	Short: "piano - play a shared keyboard with one partner",
	Long: `piano connects to a relay and turns key presses into notes. Every note you
play is heard locally and sent to your partner; their notes come back the
same way.

Type keys and press enter. Each character is one key press:
  a w s e d f t g y h u j  ->  C C# D D# E F F# G G# A A# B`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: config.ParseLevel(logLevel),
		})))
	},
}

// Execute adds all child commands to the root command and runs it.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level (debug, info, warn, error)")
}
