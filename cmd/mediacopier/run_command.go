package main

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"mediacopier/internal/config"
	"mediacopier/internal/jobstore"
	"mediacopier/internal/logging"
	"mediacopier/internal/matcher"
	"mediacopier/internal/planner"
	"mediacopier/internal/report"
	"mediacopier/internal/runner"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	var probe bool
	var noCache bool
	var dryRun bool
	var name string

	cmd := &cobra.Command{
		Use:   "run <wishlist>",
		Short: "Match, plan, and copy a wish list as a resumable job",
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
			if len(plan.Items) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "Nothing to do: no request matched a catalog entry")
				return nil
			}

			store, err := ctx.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			jobName := name
			if jobName == "" {
				jobName = filepath.Base(args[0])
			}
			job := &jobstore.Job{
				Name:              jobName,
				Sources:           cfg.Paths.Sources,
				Destination:       cfg.Paths.Destination,
				OrganizationMode:  cfg.Rules.OrganizationMode,
				CollisionStrategy: cfg.Rules.CollisionStrategy,
				DryRun:            dryRun || cfg.Rules.DryRun,
				Plan:              plan,
			}
			if err := store.SaveJob(cmd.Context(), job); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Job %s (%s): %d files, %s\n",
				job.ID, job.Name, plan.FilesToCopy, formatBytes(plan.TotalBytes))

			return executeJob(cmd, cfg, logger, store, job, 0, matches)
		},
	}

	cmd.Flags().BoolVar(&probe, "probe", false, "Extract metadata with ffprobe (slower)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "Ignore the cached catalog and rescan")
	cmd.Flags().BoolVarP(&dryRun, "dry-run", "n", false, "Simulate the copy without writing files")
	cmd.Flags().StringVar(&name, "name", "", "Job name (defaults to the wish list file name)")
	return cmd
}

// executeJob runs (or resumes) a stored job and persists checkpoint, status,
// and report. Ctrl-C requests a cooperative stop; the checkpoint survives
// for a later resume.
func executeJob(cmd *cobra.Command, cfg *config.Config, logger *slog.Logger, store *jobstore.Store, job *jobstore.Job, checkpoint int, matches []matcher.MatchResult) error {
	out := cmd.OutOrStdout()
	startTime := time.Now()

	run := runner.New(logging.WithJob(logger, job.ID, job.Name))
	defer run.Close()

	if err := store.UpdateStatus(cmd.Context(), job.ID, jobstore.StatusRunning, ""); err != nil {
		return err
	}

	var err error
	if checkpoint > 0 {
		err = run.ResumeFromCheckpoint(job.ID, job.Plan, checkpoint, job.DryRun)
	} else {
		err = run.Start(job.ID, job.Plan, job.DryRun)
	}
	if err != nil {
		return err
	}

	interval := time.Duration(cfg.Workflow.ProgressIntervalMS) * time.Millisecond
	if interval <= 0 {
		interval = 500 * time.Millisecond
	}
	var lastPrint time.Time
	ctxDone := cmd.Context().Done()

	for running := true; running; {
		select {
		case ev := <-run.Events():
			switch ev.Type {
			case runner.EventProgress:
				if time.Since(lastPrint) >= interval {
					p := run.Progress()
					fmt.Fprintf(out, "%5.1f%% (%d/%d) %s\n",
						p.ProgressPercent, p.CurrentIndex, p.TotalFiles, filepath.Base(p.CurrentFile))
					lastPrint = time.Now()
				}
			case runner.EventFileFailed:
				fmt.Fprintf(out, "failed: %v: %v\n", ev.Data["source"], ev.Data["error"])
			case runner.EventJobCompleted, runner.EventJobFailed:
				running = false
			}
		case <-ctxDone:
			fmt.Fprintln(out, "stop requested, finishing current file...")
			_ = run.Stop()
			ctxDone = nil
		}
	}
	run.Wait(0)

	exec := run.Report()
	checkpointIdx := run.Checkpoint()
	stopped := checkpointIdx < len(job.Plan.Items)

	// Persistence after the run must not lose the checkpoint, so use a
	// fresh context even when the command context was cancelled.
	saveCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := store.SaveCheckpoint(saveCtx, job.ID, checkpointIdx); err != nil {
		return err
	}

	status := jobstore.StatusDone
	if run.State() == runner.StateFailed {
		status = jobstore.StatusFailed
	} else if stopped {
		status = jobstore.StatusStopped
	}
	if err := store.UpdateStatus(saveCtx, job.ID, status, ""); err != nil {
		return err
	}

	processed := *job.Plan
	processed.Items = job.Plan.Items[:checkpointIdx]
	jobReport := report.FromPlanAndReport(report.BuildParams{
		JobID:            job.ID,
		JobName:          job.Name,
		Sources:          job.Sources,
		Destination:      job.Destination,
		OrganizationMode: job.OrganizationMode,
		DryRun:           job.DryRun,
		StartTime:        startTime,
		EndTime:          time.Now(),
	}, &processed, exec, matches)

	if err := store.SaveReport(saveCtx, job.ID, jobReport); err != nil {
		return err
	}
	if cfg.Paths.ReportDir != "" {
		reportPath := filepath.Join(cfg.Paths.ReportDir, "job-"+job.ID+".json")
		if err := jobReport.WriteFile(reportPath); err != nil {
			return err
		}
		fmt.Fprintf(out, "Report written to %s\n", reportPath)
	}

	fmt.Fprintln(out, jobReport.SummaryText())
	if stopped {
		fmt.Fprintf(out, "\nJob stopped at file %d of %d; resume with `mediacopier resume %s`\n",
			checkpointIdx, len(job.Plan.Items), job.ID)
	}
	return nil
}
