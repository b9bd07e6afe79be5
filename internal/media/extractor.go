package media

import (
	"context"
	"path/filepath"
	"regexp"
	"strings"
)

// Extractor reads tag/stream metadata from media files. Implementations
// return (nil, nil) when a file carries no usable metadata.
type Extractor interface {
	ExtractAudio(ctx context.Context, path string) (*AudioMeta, error)
	ExtractVideo(ctx context.Context, path string) (*VideoMeta, error)
}

// artistTitlePattern matches the common "Artist - Title" filename layout,
// accepting hyphen, en dash, and em dash separators.
var artistTitlePattern = regexp.MustCompile(`^(.+?)\s*[-–—]\s*(.+)$`)

// FilenameExtractor derives audio metadata from the file name alone. It is
// the fallback when no tag-reading extractor is wired in.
type FilenameExtractor struct{}

func (FilenameExtractor) ExtractAudio(_ context.Context, path string) (*AudioMeta, error) {
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	match := artistTitlePattern.FindStringSubmatch(base)
	if match == nil {
		return nil, nil
	}
	artist := strings.TrimSpace(match[1])
	title := strings.TrimSpace(match[2])
	if artist == "" || title == "" {
		return nil, nil
	}
	return &AudioMeta{Artist: artist, Title: title}, nil
}

func (FilenameExtractor) ExtractVideo(context.Context, string) (*VideoMeta, error) {
	return nil, nil
}
