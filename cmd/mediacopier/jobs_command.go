package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"mediacopier/internal/jobstore"
)

func newJobsCommand(ctx *commandContext) *cobra.Command {
	jobsCmd := &cobra.Command{
		Use:   "jobs",
		Short: "Inspect and manage persisted copy jobs",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runJobsList(cmd, ctx)
		},
	}

	jobsCmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List all jobs, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runJobsList(cmd, ctx)
		},
	})

	jobsCmd.AddCommand(&cobra.Command{
		Use:   "stats",
		Short: "Show job counts by status",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			stats, err := store.Stats(cmd.Context())
			if err != nil {
				return err
			}

			order := []jobstore.Status{
				jobstore.StatusPending, jobstore.StatusRunning, jobstore.StatusPaused,
				jobstore.StatusStopped, jobstore.StatusDone, jobstore.StatusFailed,
			}
			rows := make([][]string, 0, len(order))
			for _, status := range order {
				rows = append(rows, []string{string(status), fmt.Sprintf("%d", stats[status])})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Status", "Jobs"},
				rows,
				[]columnAlignment{alignLeft, alignRight},
			))
			return nil
		},
	})

	jobsCmd.AddCommand(&cobra.Command{
		Use:   "delete <job-id>",
		Short: "Delete a job and its stored plan and report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			if err := store.DeleteJob(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted job %s\n", args[0])
			return nil
		},
	})

	jobsCmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Remove all completed and failed jobs",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			removed, err := store.ClearCompleted(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %d jobs\n", removed)
			return nil
		},
	})

	return jobsCmd
}

func runJobsList(cmd *cobra.Command, ctx *commandContext) error {
	store, err := ctx.openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	jobs, err := store.ListJobs(cmd.Context())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(jobs) == 0 {
		fmt.Fprintln(out, "No jobs recorded")
		return nil
	}

	rows := make([][]string, 0, len(jobs))
	for _, job := range jobs {
		files := "-"
		if job.Plan != nil {
			files = fmt.Sprintf("%d/%d", job.CheckpointIdx, len(job.Plan.Items))
		}
		rows = append(rows, []string{
			job.ID,
			job.Name,
			string(job.Status),
			files,
			yesNo(job.DryRun),
			job.CreatedAt.Local().Format("2006-01-02 15:04"),
		})
	}
	fmt.Fprintln(out, renderTable(
		[]string{"ID", "Name", "Status", "Progress", "Dry Run", "Created"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignLeft, alignLeft},
	))
	return nil
}
