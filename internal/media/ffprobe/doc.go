// Package ffprobe provides a typed wrapper around ffprobe JSON output and
// a media.Extractor implementation built on it.
//
// Key types:
//   - Result: parsed ffprobe output containing streams and format metadata
//   - Extractor: maps ffprobe output onto media.AudioMeta / media.VideoMeta
//
// Primary entry point:
//   - Inspect: executes ffprobe and returns parsed Result
package ffprobe
