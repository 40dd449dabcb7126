package cli

import (
	"github.com/spf13/cobra"

	"per-app-volume/internal/app"
	"per-app-volume/internal/platform/config"
	"per-app-volume/internal/version"
)

type Dependencies struct {
	App    *app.App
	Config *config.Config
}

func NewRootCmd(deps *Dependencies) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "appvolumed",
		Short: "Per-application volume mixer for PulseAudio and PipeWire",
		Long: "appvolumed lists the audio streams of running applications, remembers each " +
			"application's volume across restarts and serves a small HTTP API for a mixer UI.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.Version = version.Version
	rootCmd.SetVersionTemplate(version.Full() + "\n")

	rootCmd.AddCommand(NewServeCmd(deps))
	rootCmd.AddCommand(NewStreamsCmd(deps))
	rootCmd.AddCommand(NewDoctorCmd(deps))

	return rootCmd
}
