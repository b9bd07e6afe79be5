package logging

import "log/slog"

// Attribute keys shared across components so log lines stay greppable.
const (
	FieldComponent = "component"
	FieldJobID     = "job_id"
	FieldJobName   = "job_name"
)

// WithJob attaches job identity fields to a logger.
func WithJob(logger *slog.Logger, jobID, jobName string) *slog.Logger {
	if logger == nil {
		return NewNop()
	}
	attrs := []any{String(FieldJobID, jobID)}
	if jobName != "" {
		attrs = append(attrs, String(FieldJobName, jobName))
	}
	return logger.With(attrs...)
}
