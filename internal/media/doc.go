// Package media defines media classification and metadata types.
//
// Key types:
//   - Type: audio/video/other classification by extension
//   - AudioMeta, VideoMeta: tag and stream metadata
//   - Extractor: collaborator interface for metadata readers
//
// A filename-parsing FilenameExtractor ships here as the zero-dependency
// fallback; the ffprobe subpackage provides a stream-inspecting one.
package media
