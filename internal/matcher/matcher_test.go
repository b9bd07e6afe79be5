package matcher

import (
	"context"
	"path/filepath"
	"reflect"
	"testing"

	"mediacopier/internal/catalog"
	"mediacopier/internal/media"
	"mediacopier/internal/request"
)

func audioEntry(baseName string) catalog.MediaEntry {
	return catalog.MediaEntry{
		Path:      filepath.Join("/music", baseName+".mp3"),
		BaseName:  baseName,
		Extension: ".mp3",
		SizeBytes: 5 << 20,
		MediaType: media.TypeAudio,
	}
}

func videoEntry(baseName string, meta *media.VideoMeta) catalog.MediaEntry {
	return catalog.MediaEntry{
		Path:      filepath.Join("/videos", baseName+".mkv"),
		BaseName:  baseName,
		Extension: ".mkv",
		SizeBytes: 700 << 20,
		MediaType: media.TypeVideo,
		VideoMeta: meta,
	}
}

func newCatalog(entries ...catalog.MediaEntry) *catalog.Catalog {
	return &catalog.Catalog{Entries: entries}
}

func matchOne(t *testing.T, req request.Request, cat *catalog.Catalog, opts Options) MatchResult {
	t.Helper()
	results, err := Match(context.Background(), []request.Request{req}, cat, opts)
	if err != nil {
		t.Fatalf("Match: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("results = %d, want 1", len(results))
	}
	return results[0]
}

func TestExactMatchWithQualityBonus(t *testing.T) {
	cat := newCatalog(
		audioEntry("Song Name (Official)"),
		audioEntry("Song Name - Remastered"),
	)
	result := matchOne(t, request.Request{Kind: request.KindSong, Text: "Song Name"}, cat, DefaultOptions())

	if !result.MatchFound {
		t.Fatal("expected a match")
	}
	best := result.BestMatch()
	if best == nil || !best.IsExact {
		t.Fatalf("best match should be exact: %+v", best)
	}
	if best.Score < 95 {
		t.Errorf("score = %.1f, want >= 95", best.Score)
	}
	hasQualityBonus := false
	for _, candidate := range result.Candidates {
		for _, bonus := range candidate.Bonuses {
			if bonus == "official" || bonus == "remastered" {
				hasQualityBonus = true
			}
		}
	}
	if !hasQualityBonus {
		t.Error("expected official or remastered in bonuses")
	}
}

func TestPenaltyOrdering(t *testing.T) {
	cat := newCatalog(
		audioEntry("Song Name (Live)"),
		audioEntry("Song Name (Official)"),
	)
	result := matchOne(t, request.Request{Kind: request.KindSong, Text: "Song Name"}, cat, DefaultOptions())

	if len(result.Candidates) < 2 {
		t.Fatalf("candidates = %d, want 2", len(result.Candidates))
	}
	if result.Candidates[0].Entry.BaseName != "Song Name (Official)" {
		t.Errorf("official should rank first, got %q", result.Candidates[0].Entry.BaseName)
	}
	if len(result.Candidates[1].Penalties) == 0 || result.Candidates[1].Penalties[0] != "live" {
		t.Errorf("live entry penalties = %v", result.Candidates[1].Penalties)
	}
}

func TestPenaltyIsWholeWord(t *testing.T) {
	cat := newCatalog(audioEntry("Special Delivery"))
	result := matchOne(t, request.Request{Kind: request.KindSong, Text: "Special Delivery"}, cat, DefaultOptions())

	best := result.BestMatch()
	if best == nil {
		t.Fatal("expected a match")
	}
	if len(best.Penalties) != 0 {
		t.Errorf("penalties = %v, 'live' must not match inside 'Delivery'", best.Penalties)
	}
}

func TestNoMatchIsNormalOutcome(t *testing.T) {
	cat := newCatalog(audioEntry("Completely Different Track"))
	result := matchOne(t, request.Request{Kind: request.KindSong, Text: "Song Name"}, cat, DefaultOptions())

	if result.MatchFound {
		t.Errorf("expected no match, got %+v", result.Candidates)
	}
	if result.BestMatch() != nil {
		t.Error("BestMatch should be nil without candidates")
	}
}

func TestExclusionWordsFilter(t *testing.T) {
	cat := newCatalog(
		audioEntry("Song Name sample"),
		audioEntry("Song Name trailer cut"),
		audioEntry("Song Name"),
	)
	opts := DefaultOptions()
	result := matchOne(t, request.Request{Kind: request.KindSong, Text: "Song Name"}, cat, opts)

	if len(result.Candidates) != 1 {
		t.Fatalf("candidates = %d, want only the clean entry", len(result.Candidates))
	}
	if result.Candidates[0].Entry.BaseName != "Song Name" {
		t.Errorf("surviving entry = %q", result.Candidates[0].Entry.BaseName)
	}
}

func TestConfiguredExclusionPhrase(t *testing.T) {
	cat := newCatalog(audioEntry("Song Name bad rip edition"))
	opts := DefaultOptions()
	opts.ExclusionWords = []string{"bad rip"}
	result := matchOne(t, request.Request{Kind: request.KindSong, Text: "Song Name"}, cat, opts)

	if result.MatchFound {
		t.Error("phrase exclusion should remove the entry")
	}
}

func TestExtensionFilters(t *testing.T) {
	wma := audioEntry("Song Name")
	wma.Path = "/music/Song Name.wma"
	wma.Extension = ".wma"
	mp3 := audioEntry("Song Name")

	opts := DefaultOptions()
	opts.AllowedAudioExtensions = []string{".mp3"}
	result := matchOne(t, request.Request{Kind: request.KindSong, Text: "Song Name"}, newCatalog(wma, mp3), opts)

	if len(result.Candidates) != 1 || result.Candidates[0].Entry.Extension != ".mp3" {
		t.Fatalf("candidates = %+v", result.Candidates)
	}

	opts = DefaultOptions()
	opts.BlockedExtensions = []string{".mp3"}
	result = matchOne(t, request.Request{Kind: request.KindSong, Text: "Song Name"}, newCatalog(mp3), opts)
	if result.MatchFound {
		t.Error("blocked extension should remove the entry")
	}
}

func TestSizeAndDurationFilters(t *testing.T) {
	small := audioEntry("Song Name")
	small.SizeBytes = 100

	short := audioEntry("Song Name (Radio)")
	short.AudioMeta = &media.AudioMeta{DurationSec: 12}

	opts := DefaultOptions()
	opts.MinSizeBytes = 1 << 20
	opts.MinDurationSec = 30
	result := matchOne(t, request.Request{Kind: request.KindSong, Text: "Song Name"}, newCatalog(small, short), opts)

	if result.MatchFound {
		t.Errorf("filtered entries should not match: %+v", result.Candidates)
	}
}

func TestSoloBestMatch(t *testing.T) {
	cat := newCatalog(
		audioEntry("Song Name"),
		audioEntry("Song Name (Official)"),
	)
	opts := DefaultOptions()
	opts.SoloBestMatch = true
	result := matchOne(t, request.Request{Kind: request.KindSong, Text: "Song Name"}, cat, opts)

	if len(result.Candidates) != 1 {
		t.Errorf("candidates = %d, want 1 with solo best match", len(result.Candidates))
	}
}

func TestMovieResolutionBonusOrdering(t *testing.T) {
	cat := newCatalog(
		videoEntry("Inception 1440p", nil),
		videoEntry("Inception 2160p", nil),
	)
	result := matchOne(t, request.Request{Kind: request.KindMovie, Text: "Inception"}, cat, DefaultOptions())

	if len(result.Candidates) != 2 {
		t.Fatalf("candidates = %d, want 2", len(result.Candidates))
	}
	if result.Candidates[0].Entry.BaseName != "Inception 2160p" {
		t.Errorf("2160p should outrank 1440p, got %q first", result.Candidates[0].Entry.BaseName)
	}
}

func TestMovieResolutionFallbackToHeight(t *testing.T) {
	hd := videoEntry("Inception", &media.VideoMeta{Height: 2160})
	if got := resolutionBonus(hd); got != 10 {
		t.Errorf("resolutionBonus = %.1f, want 10 for 2160 height", got)
	}
	sd := videoEntry("Inception", &media.VideoMeta{Height: 480})
	if got := resolutionBonus(sd); got != 2 {
		t.Errorf("resolutionBonus = %.1f, want 2 for 480 height", got)
	}
}

func TestCodecBonusRanks(t *testing.T) {
	entry := videoEntry("Inception h264", nil)
	bonus, codec := codecBonus(entry, []string{"av1", "hevc", "h264"})
	if codec != "h264" || bonus != 4 {
		t.Errorf("codecBonus = (%.1f, %q), want (4, h264)", bonus, codec)
	}

	first := videoEntry("Inception av1", nil)
	bonus, _ = codecBonus(first, []string{"av1", "hevc"})
	if bonus != 5 {
		t.Errorf("first-rank codec bonus = %.1f, want 5", bonus)
	}
}

func TestSongPenaltyOnlyForSongs(t *testing.T) {
	cat := newCatalog(videoEntry("Concert Live 1080p", nil))
	result := matchOne(t, request.Request{Kind: request.KindMovie, Text: "Concert Live"}, cat, DefaultOptions())

	best := result.BestMatch()
	if best == nil {
		t.Fatal("expected a match")
	}
	if len(best.Penalties) != 0 {
		t.Errorf("movie requests must not take song penalties: %v", best.Penalties)
	}
}

func TestMatchDeterminism(t *testing.T) {
	cat := newCatalog(
		audioEntry("Song Name (Official)"),
		audioEntry("Song Name (Live)"),
		audioEntry("Song Name - Remastered"),
		audioEntry("Song Name"),
	)
	req := []request.Request{{Kind: request.KindSong, Text: "Song Name"}}

	first, err := Match(context.Background(), req, cat, DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	second, err := Match(context.Background(), req, cat, DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Error("identical inputs produced different rankings")
	}
}

func TestMaxCandidatesTruncation(t *testing.T) {
	entries := []catalog.MediaEntry{
		audioEntry("Song Name 1"),
		audioEntry("Song Name 2"),
		audioEntry("Song Name 3"),
	}
	opts := DefaultOptions()
	opts.MaxCandidates = 2
	result := matchOne(t, request.Request{Kind: request.KindSong, Text: "Song Name"}, newCatalog(entries...), opts)

	if len(result.Candidates) > 2 {
		t.Errorf("candidates = %d, want at most 2", len(result.Candidates))
	}
}
