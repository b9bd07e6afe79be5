package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"mediacopier/internal/planner"
)

func newPlanCommand(ctx *commandContext) *cobra.Command {
	var probe bool
	var noCache bool
	var asJSON bool
	var outputPath string

	cmd := &cobra.Command{
		Use:   "plan <wishlist>",
		Short: "Build a copy plan for a wish list without copying anything",
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

			opts, err := plannerOptions(cfg, logger)
			if err != nil {
				return err
			}
			plan, err := planner.BuildPlan(matches, opts)
			if err != nil {
				return err
			}

			if outputPath != "" {
				data, err := json.MarshalIndent(plan, "", "  ")
				if err != nil {
					return err
				}
				if err := os.WriteFile(outputPath, data, 0o644); err != nil {
					return fmt.Errorf("write plan: %w", err)
				}
			}

			out := cmd.OutOrStdout()
			if asJSON {
				encoder := json.NewEncoder(out)
				encoder.SetIndent("", "  ")
				return encoder.Encode(plan)
			}

			rows := make([][]string, 0, len(plan.Items))
			for _, item := range plan.Items {
				rows = append(rows, []string{
					item.Source,
					item.Destination,
					string(item.Action),
					formatBytes(item.SizeBytes),
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Source", "Destination", "Action", "Size"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight},
			))
			fmt.Fprintf(out, "To copy: %d files (%s), to skip: %d\n",
				plan.FilesToCopy, formatBytes(plan.TotalBytes), plan.FilesToSkip)
			return nil
		},
	}

	cmd.Flags().BoolVar(&probe, "probe", false, "Extract metadata with ffprobe (slower)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "Ignore the cached catalog and rescan")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the plan as JSON")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Also write the plan JSON to a file")
	return cmd
}
