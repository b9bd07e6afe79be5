package ffprobe

import (
	"context"
	"strconv"

	"mediacopier/internal/media"
)

// Extractor implements media.Extractor by shelling out to ffprobe.
type Extractor struct {
	Binary string
}

func (e Extractor) ExtractAudio(ctx context.Context, path string) (*media.AudioMeta, error) {
	result, err := Inspect(ctx, e.Binary, path)
	if err != nil {
		return nil, err
	}

	meta := media.AudioMeta{
		Artist:      result.Tag("artist", "album_artist"),
		Title:       result.Tag("title"),
		Album:       result.Tag("album"),
		Genre:       result.Tag("genre"),
		Year:        parseYear(result.Tag("date", "year")),
		DurationSec: result.DurationSeconds(),
	}
	if rate := result.BitRate(); rate > 0 {
		meta.BitrateKbps = int(rate / 1000)
	}
	if stream := result.FirstStream("audio"); stream != nil {
		meta.Codec = stream.CodecName
	}

	if meta == (media.AudioMeta{}) {
		return nil, nil
	}
	return &meta, nil
}

func (e Extractor) ExtractVideo(ctx context.Context, path string) (*media.VideoMeta, error) {
	result, err := Inspect(ctx, e.Binary, path)
	if err != nil {
		return nil, err
	}

	meta := media.VideoMeta{DurationSec: result.DurationSeconds()}
	if stream := result.FirstStream("video"); stream != nil {
		meta.Width = stream.Width
		meta.Height = stream.Height
		meta.Codec = stream.CodecName
	}

	if meta == (media.VideoMeta{}) {
		return nil, nil
	}
	return &meta, nil
}

// parseYear accepts "2004" or date-like values such as "2004-06-01".
func parseYear(value string) int {
	if len(value) >= 4 {
		if year, err := strconv.Atoi(value[:4]); err == nil && year > 0 {
			return year
		}
	}
	return 0
}
