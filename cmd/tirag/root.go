package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/rwx-research/tirag/internal/versions"
)

var (
	Debug      bool
	ConfigPath string

	rootCmd = &cobra.Command{
		Use:           "tirag",
		Short:         "Boot the Tirag Disk Operating System shell",
		Args:          cobra.NoArgs,
		SilenceErrors: true,
		SilenceUsage:  true,
		Version:       versions.Current().String(),
		RunE: func(_ *cobra.Command, _ []string) error {
			return boot(newLogger())
		},
	}
)

func init() {
	rootCmd.Flags().StringVarP(&ConfigPath, "config", "c", "", "a YAML file describing the volumes to mount")

	rootCmd.PersistentFlags().BoolVar(&Debug, "debug", false, "enable debug output")
	_ = rootCmd.PersistentFlags().MarkHidden("debug")
}

func newLogger() *slog.Logger {
	if !Debug {
		return slog.New(slog.DiscardHandler)
	}

	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
}
