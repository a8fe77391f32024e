package main

import (
	"io"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

func NewRootCmd(version string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "settingsd",
		Short:         "Settings section service",
		Long:          `Serves lazily loaded settings screens and records store update time.`,
		Version:       version,
		SilenceErrors: true,
		SilenceUsage:  true,
		Run: func(cmd *cobra.Command, _ []string) {
			_ = cmd.Help()
		},
	}

	rootCmd.AddCommand(
		NewServeCmd(),
		NewStampCmd(),
		NewRoutesCmd(),
	)

	return rootCmd
}

// Level is applied globally so it can be changed on config reload.
func newLogger(out io.Writer, level string) (zerolog.Logger, error) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return zerolog.Nop(), err
	}
	zerolog.SetGlobalLevel(lvl)

	return zerolog.New(zerolog.ConsoleWriter{
		Out:        out,
		TimeFormat: time.RFC3339,
	}).
		With().
		Timestamp().
		Str("scope", "settingsd").
		Logger(), nil
}
