package planner

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"

	"mediacopier/internal/fileutil"
	"mediacopier/internal/logging"
)

// ProgressFunc receives progress before each item and once after the last.
// index is 1-based; the final call passes index == total and an empty source.
type ProgressFunc func(index, total int, source string, bytesCopied, totalBytes int64)

// ExecOptions controls a plan execution pass.
type ExecOptions struct {
	DryRun     bool
	OnProgress ProgressFunc
	Logger     *slog.Logger
}

// ApplyItem performs one plan item. Skip actions and dry runs touch nothing;
// copy actions create parent directories and copy with verification and
// timestamp preservation.
func ApplyItem(item PlanItem, dryRun bool) error {
	if !item.Action.IsCopy() || dryRun {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(item.Destination), 0o755); err != nil {
		return err
	}
	return fileutil.CopyFilePreserve(item.Source, item.Destination)
}

// ExecutePlan walks the plan in order and returns a Report. A failed item is
// recorded and execution continues; only context cancellation aborts the
// pass. Dry runs produce the same counters as a real run without any I/O.
func ExecutePlan(ctx context.Context, plan *Plan, opts ExecOptions) (*Report, error) {
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	logger = logging.NewComponentLogger(logger, "planner")

	report := &Report{Errors: []ExecError{}}
	total := len(plan.Items)
	var bytesDone int64

	for i, item := range plan.Items {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		if opts.OnProgress != nil {
			opts.OnProgress(i+1, total, item.Source, bytesDone, plan.TotalBytes)
		}

		if !item.Action.IsCopy() {
			report.Skipped++
			logger.Debug("skipped",
				logging.String("source", item.Source),
				logging.String("reason", item.Reason))
			continue
		}

		if err := ApplyItem(item, opts.DryRun); err != nil {
			report.Failed++
			report.Errors = append(report.Errors, ExecError{Source: item.Source, Error: err.Error()})
			logger.Error("copy failed",
				logging.String("source", item.Source),
				logging.String("destination", item.Destination),
				logging.Error(err))
			continue
		}

		report.Copied++
		report.BytesCopied += item.SizeBytes
		bytesDone += item.SizeBytes
		logger.Debug("copied",
			logging.String("source", item.Source),
			logging.String("destination", item.Destination),
			logging.Bool("dry_run", opts.DryRun))
	}

	if opts.OnProgress != nil {
		opts.OnProgress(total, total, "", bytesDone, plan.TotalBytes)
	}

	logger.Info("plan executed",
		logging.Int("copied", report.Copied),
		logging.Int("skipped", report.Skipped),
		logging.Int("failed", report.Failed),
		logging.Int64("bytes_copied", report.BytesCopied),
		logging.Bool("dry_run", opts.DryRun))
	return report, nil
}
