package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"mediacopier/internal/jobstore"
	"mediacopier/internal/services"
)

func newResumeCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "resume <job-id>",
		Short: "Resume a stopped or failed job from its checkpoint",
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

			store, err := ctx.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			job, err := store.GetJob(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			switch job.Status {
			case jobstore.StatusStopped, jobstore.StatusFailed, jobstore.StatusRunning:
				// StatusRunning is resumable too: a crashed process leaves
				// the row in running with the last saved checkpoint.
			case jobstore.StatusDone:
				return services.Wrap(services.ErrValidation, "resume", "check_status",
					fmt.Sprintf("job %s already completed", job.ID), nil)
			default:
				return services.Wrap(services.ErrValidation, "resume", "check_status",
					fmt.Sprintf("job %s is %s and cannot be resumed", job.ID, job.Status), nil)
			}
			if job.Plan == nil || len(job.Plan.Items) == 0 {
				return services.Wrap(services.ErrValidation, "resume", "check_plan",
					fmt.Sprintf("job %s has no stored plan", job.ID), nil)
			}
			if job.CheckpointIdx >= len(job.Plan.Items) {
				fmt.Fprintf(cmd.OutOrStdout(), "Job %s has no remaining files\n", job.ID)
				return store.UpdateStatus(cmd.Context(), job.ID, jobstore.StatusDone, "")
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Resuming job %s (%s) at file %d of %d\n",
				job.ID, job.Name, job.CheckpointIdx+1, len(job.Plan.Items))

			// Matches are not persisted, so the resumed report covers file
			// operations only.
			return executeJob(cmd, cfg, logger, store, job, job.CheckpointIdx, nil)
		},
	}
	return cmd
}
