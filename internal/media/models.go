package media

import "strings"

// Type classifies a file by its container family.
type Type string

const (
	TypeAudio Type = "audio"
	TypeVideo Type = "video"
	TypeOther Type = "other"
)

// AudioMeta carries tag metadata for an audio file. Fields are zero-valued
// when the extractor could not determine them.
type AudioMeta struct {
	Artist      string  `json:"artist,omitempty"`
	Title       string  `json:"title,omitempty"`
	Album       string  `json:"album,omitempty"`
	Genre       string  `json:"genre,omitempty"`
	Year        int     `json:"year,omitempty"`
	DurationSec float64 `json:"duration_sec,omitempty"`
	BitrateKbps int     `json:"bitrate_kbps,omitempty"`
	Codec       string  `json:"codec,omitempty"`
}

// VideoMeta carries stream metadata for a video file.
type VideoMeta struct {
	DurationSec float64 `json:"duration_sec,omitempty"`
	Width       int     `json:"width,omitempty"`
	Height      int     `json:"height,omitempty"`
	Codec       string  `json:"codec,omitempty"`
}

var audioExtensions = map[string]struct{}{
	".mp3": {}, ".flac": {}, ".wav": {}, ".aac": {}, ".ogg": {},
	".wma": {}, ".m4a": {}, ".opus": {}, ".aiff": {}, ".alac": {},
}

var videoExtensions = map[string]struct{}{
	".mp4": {}, ".mkv": {}, ".avi": {}, ".mov": {}, ".wmv": {}, ".flv": {},
	".webm": {}, ".m4v": {}, ".mpeg": {}, ".mpg": {}, ".3gp": {},
}

// Classify maps a file extension (with or without the leading dot) to a
// media type. Unknown extensions classify as TypeOther.
func Classify(ext string) Type {
	normalized := strings.ToLower(strings.TrimSpace(ext))
	if normalized != "" && !strings.HasPrefix(normalized, ".") {
		normalized = "." + normalized
	}
	if _, ok := audioExtensions[normalized]; ok {
		return TypeAudio
	}
	if _, ok := videoExtensions[normalized]; ok {
		return TypeVideo
	}
	return TypeOther
}
