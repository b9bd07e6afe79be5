// Package report aggregates a finished copy job into an auditable record:
// per-request match outcomes, per-file operations classified as copied,
// skipped, filtered, or failed, a category summary, and error details.
// Reports export to JSON and reload losslessly.
package report
