package catalog

import (
	"time"

	"mediacopier/internal/media"
)

// MediaEntry describes one file discovered during a scan.
type MediaEntry struct {
	Path      string           `json:"path"`
	BaseName  string           `json:"base_name"`
	Extension string           `json:"extension"`
	SizeBytes int64            `json:"size_bytes"`
	MediaType media.Type       `json:"media_type"`
	AudioMeta *media.AudioMeta `json:"audio_meta,omitempty"`
	VideoMeta *media.VideoMeta `json:"video_meta,omitempty"`
}

// Catalog is the result of scanning one or more source roots.
type Catalog struct {
	Entries     []MediaEntry `json:"entries"`
	Sources     []string     `json:"sources"`
	Timestamp   time.Time    `json:"timestamp"`
	SourcesHash string       `json:"sources_hash"`
}

// EntriesOfType returns the entries matching the given media type.
func (c *Catalog) EntriesOfType(t media.Type) []MediaEntry {
	var out []MediaEntry
	for _, entry := range c.Entries {
		if entry.MediaType == t {
			out = append(out, entry)
		}
	}
	return out
}
