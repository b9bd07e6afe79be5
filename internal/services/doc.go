// Package services defines the shared error taxonomy for pipeline stages.
//
// Stage code wraps failures with a sentinel marker (configuration,
// validation, io, not-found, transient) so callers can classify errors with
// errors.Is without parsing message text.
package services
