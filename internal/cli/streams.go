package cli

import (
	"encoding/json"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"per-app-volume/internal/output"
)

func NewStreamsCmd(deps *Dependencies) *cobra.Command {
	var asJSON, showMemory bool

	cmd := &cobra.Command{
		Use:   "streams",
		Short: "Print the current streams once",
		RunE: func(cmd *cobra.Command, args []string) error {
			a := deps.App
			if err := a.Index.Rebuild(); err != nil {
				a.Log.Debug("icon index unavailable", slog.String("error", err.Error()))
			}
			snap := a.Service.Refresh(cmd.Context())

			if asJSON {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(snap)
			}

			formatter := output.NewFormatter(os.Stdout)
			formatter.Snapshot(snap)
			if showMemory {
				entries := a.Service.Memory()
				formatter.MemoryHeader(len(entries))
				for _, e := range entries {
					formatter.MemoryEntry(e)
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the render as JSON")
	cmd.Flags().BoolVar(&showMemory, "memory", false, "also print remembered volumes")
	return cmd
}
