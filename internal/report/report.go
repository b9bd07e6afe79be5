package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"mediacopier/internal/matcher"
	"mediacopier/internal/planner"
)

// Status classifies a file operation in the report.
type Status string

const (
	StatusCopied   Status = "COPIED"
	StatusSkipped  Status = "SKIPPED"
	StatusFiltered Status = "FILTERED"
	StatusFailed   Status = "FAILED"
)

// FileOperation records what happened to one file.
type FileOperation struct {
	SourcePath string `json:"source_path"`
	SourceName string `json:"source_name"`
	DestPath   string `json:"dest_path,omitempty"`
	DestName   string `json:"dest_name,omitempty"`
	Status     Status `json:"status"`
	Reason     string `json:"reason,omitempty"`
	SizeBytes  int64  `json:"size_bytes"`
}

// MatchInfo records the outcome of one wish-list request.
type MatchInfo struct {
	RequestedText string  `json:"requested_text"`
	RequestedKind string  `json:"requested_type"`
	MatchedFile   string  `json:"matched_file,omitempty"`
	MatchedName   string  `json:"matched_name,omitempty"`
	MatchScore    float64 `json:"match_score"`
	MatchFound    bool    `json:"match_found"`
}

// CategorySummary counts operations per status. Total always equals the
// number of recorded operations; AddOperation keeps it that way.
type CategorySummary struct {
	Copied   int `json:"copied"`
	Skipped  int `json:"skipped"`
	Filtered int `json:"filtered"`
	Failed   int `json:"failed"`
	Total    int `json:"total"`
}

// ErrorDetail is one failed file with its reason.
type ErrorDetail struct {
	SourcePath string `json:"source_path"`
	SourceName string `json:"source_name"`
	Reason     string `json:"reason"`
}

// JobReport is the complete audit record of one copy job.
type JobReport struct {
	JobID            string          `json:"job_id"`
	JobName          string          `json:"job_name"`
	StartTime        time.Time       `json:"start_time"`
	EndTime          time.Time       `json:"end_time"`
	Sources          []string        `json:"sources"`
	Destination      string          `json:"destination"`
	OrganizationMode string          `json:"organization_mode"`
	DryRun           bool            `json:"dry_run"`
	Matches          []MatchInfo     `json:"matches"`
	Operations       []FileOperation `json:"operations"`
	Summary          CategorySummary `json:"summary"`
	TotalBytesCopied int64           `json:"total_bytes_copied"`
	Errors           []ErrorDetail   `json:"errors"`
}

// New returns an empty report for the given job.
func New(jobID, jobName string) *JobReport {
	return &JobReport{
		JobID:      jobID,
		JobName:    jobName,
		Sources:    []string{},
		Matches:    []MatchInfo{},
		Operations: []FileOperation{},
		Errors:     []ErrorDetail{},
	}
}

// AddMatch records the best candidate (or absence) of a match result.
func (r *JobReport) AddMatch(result matcher.MatchResult) {
	info := MatchInfo{
		RequestedText: result.Request.Text,
		RequestedKind: string(result.Request.Kind),
		MatchFound:    result.MatchFound,
	}
	if best := result.BestMatch(); best != nil {
		info.MatchedFile = best.Entry.Path
		info.MatchedName = best.Entry.BaseName
		info.MatchScore = best.Score
	}
	r.Matches = append(r.Matches, info)
}

// AddOperation appends a file operation and updates the category summary
// in the same call, so Summary.Total always equals len(Operations).
func (r *JobReport) AddOperation(sourcePath, destPath string, status Status, reason string, sizeBytes int64) {
	op := FileOperation{
		SourcePath: sourcePath,
		SourceName: filepath.Base(sourcePath),
		DestPath:   destPath,
		Status:     status,
		Reason:     reason,
		SizeBytes:  sizeBytes,
	}
	if destPath != "" {
		op.DestName = filepath.Base(destPath)
	}
	r.Operations = append(r.Operations, op)

	switch status {
	case StatusCopied:
		r.Summary.Copied++
		r.TotalBytesCopied += sizeBytes
	case StatusSkipped:
		r.Summary.Skipped++
	case StatusFiltered:
		r.Summary.Filtered++
	case StatusFailed:
		r.Summary.Failed++
	}
	r.Summary.Total++
}

// AddFiltered records a file excluded by rules before plan building.
func (r *JobReport) AddFiltered(sourcePath, reason string, sizeBytes int64) {
	r.AddOperation(sourcePath, "", StatusFiltered, reason, sizeBytes)
}

// AddError records a failed file.
func (r *JobReport) AddError(sourcePath, reason string) {
	r.Errors = append(r.Errors, ErrorDetail{
		SourcePath: sourcePath,
		SourceName: filepath.Base(sourcePath),
		Reason:     reason,
	})
}

// BuildParams carries job context for FromPlanAndReport.
type BuildParams struct {
	JobID            string
	JobName          string
	Sources          []string
	Destination      string
	OrganizationMode string
	DryRun           bool
	StartTime        time.Time
	EndTime          time.Time
}

// FromPlanAndReport assembles a complete JobReport from an executed plan.
// Items whose source appears in the execution errors are recorded as
// failed; otherwise the plan action decides the category.
func FromPlanAndReport(params BuildParams, plan *planner.Plan, exec *planner.Report, matches []matcher.MatchResult) *JobReport {
	r := New(params.JobID, params.JobName)
	r.StartTime = params.StartTime
	r.EndTime = params.EndTime
	if r.EndTime.IsZero() {
		r.EndTime = time.Now()
	}
	if len(params.Sources) > 0 {
		r.Sources = append(r.Sources, params.Sources...)
	}
	r.Destination = params.Destination
	r.OrganizationMode = params.OrganizationMode
	r.DryRun = params.DryRun

	for _, match := range matches {
		r.AddMatch(match)
	}

	failures := make(map[string]string, len(exec.Errors))
	for _, e := range exec.Errors {
		failures[e.Source] = e.Error
	}

	for _, item := range plan.Items {
		var status Status
		reason := item.Reason
		switch {
		case failures[item.Source] != "":
			status = StatusFailed
			reason = failures[item.Source]
		case item.Action.IsCopy():
			status = StatusCopied
			if reason == "" && item.Action == planner.ActionRenameCopy {
				reason = "renamed due to collision"
			}
		default:
			status = StatusSkipped
			if reason == "" {
				reason = "destination already exists"
			}
		}

		size := int64(0)
		if status == StatusCopied {
			size = item.SizeBytes
		}
		r.AddOperation(item.Source, item.Destination, status, reason, size)
	}

	for _, e := range exec.Errors {
		r.AddError(e.Source, e.Error)
	}
	return r
}

// SummaryText renders a human-readable summary for CLI display.
func (r *JobReport) SummaryText() string {
	p := message.NewPrinter(language.English)
	var b strings.Builder

	fmt.Fprintf(&b, "Job Report: %s (ID: %s)\n", r.JobName, r.JobID)
	fmt.Fprintf(&b, "Start: %s\n", r.StartTime.Format(time.RFC3339))
	fmt.Fprintf(&b, "End: %s\n", r.EndTime.Format(time.RFC3339))
	fmt.Fprintf(&b, "Dry Run: %t\n\n", r.DryRun)

	b.WriteString("Summary by Category:\n")
	fmt.Fprintf(&b, "  COPIED:   %d\n", r.Summary.Copied)
	fmt.Fprintf(&b, "  SKIPPED:  %d\n", r.Summary.Skipped)
	fmt.Fprintf(&b, "  FILTERED: %d\n", r.Summary.Filtered)
	fmt.Fprintf(&b, "  FAILED:   %d\n", r.Summary.Failed)
	fmt.Fprintf(&b, "  TOTAL:    %d\n\n", r.Summary.Total)

	fmt.Fprintf(&b, "Total bytes copied: %s", p.Sprintf("%d", r.TotalBytesCopied))

	if len(r.Errors) > 0 {
		b.WriteString("\n\nErrors:\n")
		for _, e := range r.Errors {
			fmt.Fprintf(&b, "  - %s: %s\n", e.SourceName, e.Reason)
		}
	}
	return b.String()
}

// WriteFile exports the report as indented JSON, creating parent
// directories as needed.
func (r *JobReport) WriteFile(path string) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// LoadFile reads a report previously written with WriteFile.
func LoadFile(path string) (*JobReport, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var r JobReport
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("parse report %s: %w", path, err)
	}
	return &r, nil
}
