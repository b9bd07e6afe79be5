package matcher

import (
	"regexp"
	"strings"

	"mediacopier/internal/catalog"
	"mediacopier/internal/media"
)

// defaultJunkWords exclude obviously unwanted releases before scoring.
var defaultJunkWords = []string{
	"sample", "trailer", "camrip", "telesync", "screener",
	"workprint", "lowres", "corrupt",
}

// entryFilter applies exclusion words, extension lists, and size/duration
// minimums. Filtered entries never become candidates.
type entryFilter struct {
	singleWords  map[string]*regexp.Regexp
	phrases      []string
	allowedAudio map[string]struct{}
	allowedVideo map[string]struct{}
	blocked      map[string]struct{}
	minSizeBytes int64
	minDuration  float64
}

func newEntryFilter(opts Options) *entryFilter {
	f := &entryFilter{
		singleWords:  make(map[string]*regexp.Regexp),
		allowedAudio: extensionSet(opts.AllowedAudioExtensions),
		allowedVideo: extensionSet(opts.AllowedVideoExtensions),
		blocked:      extensionSet(opts.BlockedExtensions),
		minSizeBytes: opts.MinSizeBytes,
		minDuration:  opts.MinDurationSec,
	}

	words := append(append([]string(nil), defaultJunkWords...), opts.ExclusionWords...)
	for _, word := range words {
		normalized := strings.ToLower(strings.TrimSpace(word))
		if normalized == "" {
			continue
		}
		if strings.ContainsAny(normalized, " \t") {
			f.phrases = append(f.phrases, normalized)
			continue
		}
		if _, ok := f.singleWords[normalized]; !ok {
			f.singleWords[normalized] = regexp.MustCompile(`\b` + regexp.QuoteMeta(normalized) + `\b`)
		}
	}
	return f
}

func (f *entryFilter) admit(entry catalog.MediaEntry) bool {
	lowered := strings.ToLower(entry.BaseName)
	for _, pattern := range f.singleWords {
		if pattern.MatchString(lowered) {
			return false
		}
	}
	for _, phrase := range f.phrases {
		if strings.Contains(lowered, phrase) {
			return false
		}
	}

	if _, ok := f.blocked[entry.Extension]; ok {
		return false
	}
	switch entry.MediaType {
	case media.TypeAudio:
		if len(f.allowedAudio) > 0 {
			if _, ok := f.allowedAudio[entry.Extension]; !ok {
				return false
			}
		}
	case media.TypeVideo:
		if len(f.allowedVideo) > 0 {
			if _, ok := f.allowedVideo[entry.Extension]; !ok {
				return false
			}
		}
	}

	if f.minSizeBytes > 0 && entry.SizeBytes < f.minSizeBytes {
		return false
	}
	if f.minDuration > 0 {
		if duration := entryDuration(entry); duration > 0 && duration < f.minDuration {
			return false
		}
	}
	return true
}

func entryDuration(entry catalog.MediaEntry) float64 {
	if entry.AudioMeta != nil {
		return entry.AudioMeta.DurationSec
	}
	if entry.VideoMeta != nil {
		return entry.VideoMeta.DurationSec
	}
	return 0
}

func extensionSet(extensions []string) map[string]struct{} {
	set := make(map[string]struct{}, len(extensions))
	for _, ext := range extensions {
		normalized := strings.ToLower(strings.TrimSpace(ext))
		if normalized == "" {
			continue
		}
		if !strings.HasPrefix(normalized, ".") {
			normalized = "." + normalized
		}
		set[normalized] = struct{}{}
	}
	return set
}
