// Package jobstore persists copy jobs in SQLite so stopped jobs survive
// process restarts. Each row carries the job's configuration, its
// serialized plan, the resume checkpoint, and the final report. A flock
// file beside the database serializes access across processes.
package jobstore
