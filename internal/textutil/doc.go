// Package textutil provides text processing utilities for similarity
// scoring and filename/folder sanitization.
//
// The primary use cases are:
//   - Scoring string similarity with edit-distance and token-based ratios
//   - Sanitizing filenames and folder names for safe filesystem use
//   - Extracting trailing year suffixes from titles
package textutil
