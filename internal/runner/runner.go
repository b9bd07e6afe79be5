package runner

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"mediacopier/internal/logging"
	"mediacopier/internal/planner"
)

// State of the runner's single job slot.
type State string

const (
	StatePending       State = "pending"
	StateRunning       State = "running"
	StatePaused        State = "paused"
	StateStopRequested State = "stop_requested"
	StateDone          State = "done"
	StateFailed        State = "failed"
)

var (
	ErrAlreadyRunning = errors.New("runner: a job is already running")
	ErrNotRunning     = errors.New("runner: no running job")
	ErrNotPaused      = errors.New("runner: job is not paused")
)

// Progress is a point-in-time snapshot of a job's advancement.
type Progress struct {
	JobID           string    `json:"job_id"`
	CurrentIndex    int       `json:"current_index"`
	TotalFiles      int       `json:"total_files"`
	CurrentFile     string    `json:"current_file"`
	BytesCopied     int64     `json:"bytes_copied"`
	TotalBytes      int64     `json:"total_bytes"`
	FilesCopied     int       `json:"files_copied"`
	FilesSkipped    int       `json:"files_skipped"`
	FilesFailed     int       `json:"files_failed"`
	StartTime       time.Time `json:"start_time"`
	ElapsedSeconds  float64   `json:"elapsed_seconds"`
	ETASeconds      float64   `json:"eta_seconds"`
	ProgressPercent float64   `json:"progress_percent"`
	State           State     `json:"state"`
}

// Runner executes exactly one plan at a time in a background goroutine.
// Pause and stop are cooperative and take effect at file boundaries; the
// worker goroutine is never killed. The checkpoint always holds the index
// of the next unprocessed item, so a stopped job can be resumed later with
// ResumeFromCheckpoint.
type Runner struct {
	mu            sync.Mutex
	cond          *sync.Cond
	state         State
	paused        bool
	stopRequested bool
	jobID         string
	checkpoint    int
	progress      Progress
	report        *planner.Report
	done          chan struct{}

	events *eventQueue
	logger *slog.Logger

	hookBeforeItem func(index int)
}

// New returns an idle Runner. Close releases the event pump when done.
func New(logger *slog.Logger) *Runner {
	if logger == nil {
		logger = logging.NewNop()
	}
	r := &Runner{
		state:  StatePending,
		events: newEventQueue(),
		logger: logging.NewComponentLogger(logger, "runner"),
	}
	r.cond = sync.NewCond(&r.mu)
	return r
}

// Events returns the notification channel. The worker never blocks pushing
// to it; unread events are buffered internally.
func (r *Runner) Events() <-chan Event {
	return r.events.out
}

// Close shuts down the event pump. The runner must be idle.
func (r *Runner) Close() {
	r.events.close()
}

// Start begins executing a plan from the first item.
func (r *Runner) Start(jobID string, plan *planner.Plan, dryRun bool) error {
	return r.launch(jobID, plan, 0, dryRun)
}

// ResumeFromCheckpoint continues a previously stopped job. Counters for
// plan[:checkpoint] are rebuilt from the recorded action kinds; the files
// themselves are not re-verified on disk.
func (r *Runner) ResumeFromCheckpoint(jobID string, plan *planner.Plan, checkpoint int, dryRun bool) error {
	if checkpoint < 0 {
		checkpoint = 0
	}
	if checkpoint > len(plan.Items) {
		checkpoint = len(plan.Items)
	}
	return r.launch(jobID, plan, checkpoint, dryRun)
}

func (r *Runner) launch(jobID string, plan *planner.Plan, checkpoint int, dryRun bool) error {
	r.mu.Lock()
	if r.state == StateRunning || r.state == StatePaused || r.state == StateStopRequested {
		r.mu.Unlock()
		return ErrAlreadyRunning
	}

	r.jobID = jobID
	r.checkpoint = checkpoint
	r.stopRequested = false
	r.paused = false
	r.report = nil
	r.done = make(chan struct{})
	done := r.done

	var copied, skipped int
	var bytesCopied int64
	for _, item := range plan.Items[:checkpoint] {
		if item.Action.IsCopy() {
			copied++
			bytesCopied += item.SizeBytes
		} else {
			skipped++
		}
	}

	r.progress = Progress{
		JobID:        jobID,
		CurrentIndex: checkpoint,
		TotalFiles:   len(plan.Items),
		BytesCopied:  bytesCopied,
		TotalBytes:   plan.TotalBytes,
		FilesCopied:  copied,
		FilesSkipped: skipped,
		StartTime:    time.Now(),
		State:        StateRunning,
	}
	r.setStateLocked(StateRunning)
	r.mu.Unlock()

	r.logger.Info("job started",
		logging.String(logging.FieldJobID, jobID),
		logging.Int("items", len(plan.Items)),
		logging.Int("checkpoint", checkpoint),
		logging.Bool("dry_run", dryRun))

	go r.run(jobID, plan, dryRun, done)
	return nil
}

// Pause closes the gate; the worker halts before the next file.
func (r *Runner) Pause() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state != StateRunning {
		return ErrNotRunning
	}
	r.paused = true
	r.setStateLocked(StatePaused)
	return nil
}

// Resume reopens the gate for a paused job.
func (r *Runner) Resume() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state != StatePaused {
		return ErrNotPaused
	}
	r.paused = false
	r.setStateLocked(StateRunning)
	r.cond.Broadcast()
	return nil
}

// Stop requests a cooperative stop. The worker exits at the next file
// boundary, leaving the checkpoint at the first unprocessed item.
func (r *Runner) Stop() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state != StateRunning && r.state != StatePaused {
		return ErrNotRunning
	}
	r.stopRequested = true
	r.paused = false
	r.setStateLocked(StateStopRequested)
	r.cond.Broadcast()
	return nil
}

// Wait blocks until the current job finishes. A non-positive timeout waits
// forever. Returns false on timeout.
func (r *Runner) Wait(timeout time.Duration) bool {
	r.mu.Lock()
	done := r.done
	r.mu.Unlock()
	if done == nil {
		return true
	}
	if timeout <= 0 {
		<-done
		return true
	}
	select {
	case <-done:
		return true
	case <-time.After(timeout):
		return false
	}
}

// State returns the current state.
func (r *Runner) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// IsRunning reports whether a job occupies the runner.
func (r *Runner) IsRunning() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state == StateRunning || r.state == StatePaused || r.state == StateStopRequested
}

// Progress returns the latest progress snapshot.
func (r *Runner) Progress() Progress {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.progress
}

// Report returns the report of the last finished run, or nil while running.
func (r *Runner) Report() *planner.Report {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.report
}

// Checkpoint returns the index of the next unprocessed plan item.
func (r *Runner) Checkpoint() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.checkpoint
}

// setStateLocked requires r.mu held.
func (r *Runner) setStateLocked(next State) {
	prev := r.state
	r.state = next
	if prev != next {
		r.events.push(Event{Type: EventStateChanged, JobID: r.jobID, Data: map[string]any{
			"old_state": string(prev),
			"new_state": string(next),
		}})
	}
}

// gate blocks while paused and reports whether a stop was requested.
// The checkpoint is pinned to the current index whenever the worker waits
// or exits here.
func (r *Runner) gate(index int) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.stopRequested {
		r.checkpoint = index
		return true
	}
	for r.paused && !r.stopRequested {
		r.checkpoint = index
		r.cond.Wait()
	}
	if r.stopRequested {
		r.checkpoint = index
		return true
	}
	return false
}

func (r *Runner) run(jobID string, plan *planner.Plan, dryRun bool, done chan struct{}) {
	defer close(done)

	report := &planner.Report{Errors: []planner.ExecError{}}

	defer func() {
		if rec := recover(); rec != nil {
			r.mu.Lock()
			r.report = report
			r.setStateLocked(StateFailed)
			r.mu.Unlock()
			r.events.push(Event{Type: EventJobFailed, JobID: jobID, Data: map[string]any{
				"error": fmt.Sprint(rec),
			}})
			r.logger.Error("job failed",
				logging.String(logging.FieldJobID, jobID),
				logging.String("panic", fmt.Sprint(rec)))
		}
	}()

	total := len(plan.Items)

	r.mu.Lock()
	start := r.checkpoint
	bytesCopied := r.progress.BytesCopied
	copied := r.progress.FilesCopied
	skipped := r.progress.FilesSkipped
	failed := r.progress.FilesFailed
	r.mu.Unlock()

	for i := start; i < total; i++ {
		if r.gate(i) {
			break
		}
		if r.hookBeforeItem != nil {
			r.hookBeforeItem(i)
		}

		item := plan.Items[i]
		r.events.push(Event{Type: EventFileStarted, JobID: jobID, Data: map[string]any{
			"index": i, "source": item.Source, "destination": item.Destination,
		}})
		r.updateProgress(i, item.Source, bytesCopied, copied, skipped, failed)

		if !item.Action.IsCopy() {
			report.Skipped++
			skipped++
			r.events.push(Event{Type: EventFileSkipped, JobID: jobID, Data: map[string]any{
				"index": i, "source": item.Source, "reason": item.Reason,
			}})
			r.setCheckpoint(i + 1)
			continue
		}

		if err := planner.ApplyItem(item, dryRun); err != nil {
			report.Failed++
			report.Errors = append(report.Errors, planner.ExecError{Source: item.Source, Error: err.Error()})
			failed++
			r.events.push(Event{Type: EventFileFailed, JobID: jobID, Data: map[string]any{
				"index": i, "source": item.Source, "error": err.Error(),
			}})
		} else {
			report.Copied++
			report.BytesCopied += item.SizeBytes
			bytesCopied += item.SizeBytes
			copied++
			r.events.push(Event{Type: EventFileCompleted, JobID: jobID, Data: map[string]any{
				"index": i, "source": item.Source, "destination": item.Destination, "dry_run": dryRun,
			}})
		}
		r.setCheckpoint(i + 1)
	}

	r.mu.Lock()
	finalIndex := r.checkpoint
	stopped := r.stopRequested
	r.mu.Unlock()

	r.updateProgress(finalIndex, "", bytesCopied, copied, skipped, failed)

	r.mu.Lock()
	r.report = report
	r.setStateLocked(StateDone)
	r.mu.Unlock()

	r.events.push(Event{Type: EventJobCompleted, JobID: jobID, Data: map[string]any{
		"stopped":      stopped,
		"copied":       report.Copied,
		"skipped":      report.Skipped,
		"failed":       report.Failed,
		"bytes_copied": report.BytesCopied,
	}})
	r.logger.Info("job finished",
		logging.String(logging.FieldJobID, jobID),
		logging.Bool("stopped", stopped),
		logging.Int("copied", report.Copied),
		logging.Int("skipped", report.Skipped),
		logging.Int("failed", report.Failed))
}

func (r *Runner) setCheckpoint(index int) {
	r.mu.Lock()
	r.checkpoint = index
	r.mu.Unlock()
}

// updateProgress recomputes percent and ETA and emits a Progress event.
// Percent prefers bytes over item counts; ETA is derived from the byte
// throughput since the job started.
func (r *Runner) updateProgress(index int, currentFile string, bytesCopied int64, copied, skipped, failed int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	elapsed := time.Since(r.progress.StartTime).Seconds()

	var percent float64
	switch {
	case r.progress.TotalBytes > 0:
		percent = float64(bytesCopied) / float64(r.progress.TotalBytes) * 100
	case r.progress.TotalFiles > 0:
		percent = float64(index) / float64(r.progress.TotalFiles) * 100
	}

	var eta float64
	if bytesCopied > 0 && elapsed > 0 {
		rate := float64(bytesCopied) / elapsed
		if rate > 0 {
			eta = float64(r.progress.TotalBytes-bytesCopied) / rate
		}
	}

	r.progress.CurrentIndex = index
	r.progress.CurrentFile = currentFile
	r.progress.BytesCopied = bytesCopied
	r.progress.FilesCopied = copied
	r.progress.FilesSkipped = skipped
	r.progress.FilesFailed = failed
	r.progress.ElapsedSeconds = elapsed
	r.progress.ETASeconds = eta
	r.progress.ProgressPercent = percent
	r.progress.State = r.state

	snapshot := r.progress
	r.events.push(Event{Type: EventProgress, JobID: r.jobID, Data: map[string]any{
		"progress": snapshot,
	}})
}
