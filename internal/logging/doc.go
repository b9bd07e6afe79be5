// Package logging builds the process-wide slog logger.
//
// Two output formats are supported: a console handler that renders compact
// single-line records with the component name inlined, and a JSON handler for
// file output. Helpers in this package keep attribute construction and
// component scoping consistent across the codebase.
package logging
