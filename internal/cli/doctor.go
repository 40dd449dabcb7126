package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"per-app-volume/internal/output"
	"per-app-volume/internal/platform/config"
)

func NewDoctorCmd(deps *Dependencies) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check prerequisites",
		RunE: func(cmd *cobra.Command, args []string) error {
			f := output.NewFormatter(os.Stdout)
			ok := runChecks(cmd.Context(), deps, f)

			if ok {
				f.Success("\nAll prerequisites met.")
			} else {
				f.Warning("\nSome prerequisites are missing.")
			}
			return nil
		},
	}
}

func runChecks(ctx context.Context, deps *Dependencies, f *output.Formatter) bool {
	a := deps.App
	ok := true

	if path, err := a.Runner.LookPath(); err != nil {
		f.SetupCheck("pactl", false, "not found. Install pulseaudio-utils or set PACTL_BIN")
		ok = false
	} else {
		f.SetupCheck("pactl", true, path)

		if info, err := a.Client.Info(ctx); err != nil {
			f.SetupCheck("Audio server", false, "not reachable")
			ok = false
		} else {
			f.SetupCheck("Audio server", true, info["Server Name"])
		}
	}

	if err := a.Index.Rebuild(); err != nil {
		f.SetupCheck("Desktop entries", false, err.Error())
	} else {
		f.SetupCheck("Desktop entries", true, fmt.Sprintf("%d applications indexed", a.Index.Len()))
	}

	if st, err := os.Stat(deps.Config.IconAssetDir); err == nil && st.IsDir() {
		f.SetupCheck("Icon assets", true, deps.Config.IconAssetDir)
	} else {
		f.SetupCheck("Icon assets", true, "none bundled ("+deps.Config.IconAssetDir+")")
	}

	if path := config.FilePath(); path != "" {
		if _, err := os.Stat(path); err == nil {
			f.SetupCheck("Config file", true, path)
		} else {
			f.SetupCheck("Config file", true, "defaults in use ("+path+" not found)")
		}
	}

	f.SetupCheck("Control API", true, deps.Config.ListenAddr)
	return ok
}
