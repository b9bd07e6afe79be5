package jobstore

import (
	"time"

	"mediacopier/internal/planner"
	"mediacopier/internal/report"
)

// Status of a persisted job.
type Status string

const (
	StatusPending Status = "pending"
	StatusRunning Status = "running"
	StatusPaused  Status = "paused"
	StatusStopped Status = "stopped"
	StatusDone    Status = "done"
	StatusFailed  Status = "failed"
)

// completed statuses are eligible for ClearCompleted.
func (s Status) completed() bool {
	return s == StatusDone || s == StatusFailed
}

// Job is one persisted copy job: its configuration, serialized plan,
// checkpoint, and final report. Plan and Report are nil until recorded.
type Job struct {
	ID                string
	Name              string
	Sources           []string
	Destination       string
	OrganizationMode  string
	CollisionStrategy string
	DryRun            bool
	Status            Status
	CheckpointIdx     int
	Plan              *planner.Plan
	Report            *report.JobReport
	ErrorMessage      string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}
