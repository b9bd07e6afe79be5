package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"mediacopier/internal/media"
)

func newScanCommand(ctx *commandContext) *cobra.Command {
	var probe bool
	var noCache bool
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Scan source folders into the media catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			cat, err := buildCatalog(cmd.Context(), cfg, logger, probe, noCache)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				encoder := json.NewEncoder(out)
				encoder.SetIndent("", "  ")
				return encoder.Encode(cat)
			}

			var totalBytes int64
			counts := map[media.Type]int{}
			for _, entry := range cat.Entries {
				counts[entry.MediaType]++
				totalBytes += entry.SizeBytes
			}

			fmt.Fprintf(out, "Scanned %d sources at %s\n", len(cat.Sources), cat.Timestamp.Format("2006-01-02 15:04:05"))
			fmt.Fprintln(out, renderTable(
				[]string{"Type", "Files"},
				[][]string{
					{"audio", fmt.Sprintf("%d", counts[media.TypeAudio])},
					{"video", fmt.Sprintf("%d", counts[media.TypeVideo])},
					{"other", fmt.Sprintf("%d", counts[media.TypeOther])},
				},
				[]columnAlignment{alignLeft, alignRight},
			))
			fmt.Fprintf(out, "Total: %d files, %s\n", len(cat.Entries), formatBytes(totalBytes))
			return nil
		},
	}

	cmd.Flags().BoolVar(&probe, "probe", false, "Extract metadata with ffprobe (slower)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "Ignore the cached catalog and rescan")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the full catalog as JSON")
	return cmd
}
