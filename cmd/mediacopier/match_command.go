package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func newMatchCommand(ctx *commandContext) *cobra.Command {
	var probe bool
	var noCache bool
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "match <wishlist>",
		Short: "Match a wish list against the catalog",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			_, matches, err := matchWishList(cmd.Context(), cfg, logger, args[0], probe, noCache)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				encoder := json.NewEncoder(out)
				encoder.SetIndent("", "  ")
				return encoder.Encode(matches)
			}

			rows := make([][]string, 0, len(matches))
			found := 0
			for _, match := range matches {
				row := []string{string(match.Request.Kind), match.Request.Text, "-", "-", "-"}
				if best := match.BestMatch(); best != nil {
					found++
					row[2] = best.Entry.BaseName
					row[3] = fmt.Sprintf("%.1f", best.Score)
					row[4] = yesNo(best.IsExact)
				}
				rows = append(rows, row)
			}

			fmt.Fprintln(out, renderTable(
				[]string{"Kind", "Request", "Best Match", "Score", "Exact"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignLeft},
			))
			fmt.Fprintf(out, "Matched %d of %d requests\n", found, len(matches))
			return nil
		},
	}

	cmd.Flags().BoolVar(&probe, "probe", false, "Extract metadata with ffprobe (slower)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "Ignore the cached catalog and rescan")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print full match results as JSON")
	return cmd
}
