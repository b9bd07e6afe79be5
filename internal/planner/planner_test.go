package planner

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"mediacopier/internal/catalog"
	"mediacopier/internal/matcher"
	"mediacopier/internal/media"
	"mediacopier/internal/request"
)

func matchFor(req request.Request, entry catalog.MediaEntry) matcher.MatchResult {
	return matcher.MatchResult{
		Request:    req,
		MatchFound: true,
		Candidates: []matcher.MatchCandidate{{Entry: entry, Score: 100}},
	}
}

func songRequest(text string) request.Request {
	return request.Request{Kind: request.KindSong, Text: text}
}

func writeSourceFile(t *testing.T, dir, name, content string) catalog.MediaEntry {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return catalog.MediaEntry{
		Path:      path,
		BaseName:  name[:len(name)-len(filepath.Ext(name))],
		Extension: filepath.Ext(name),
		SizeBytes: int64(len(content)),
		MediaType: media.TypeAudio,
	}
}

func TestBuildPlanSingleFolder(t *testing.T) {
	src := t.TempDir()
	dst := t.TempDir()
	entry := writeSourceFile(t, src, "song.mp3", "audio data")

	plan, err := BuildPlan([]matcher.MatchResult{matchFor(songRequest("song"), entry)}, Options{
		DestRoot: dst,
		Mode:     ModeSingleFolder,
		Strategy: StrategyRename,
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(plan.Items) != 1 {
		t.Fatalf("items = %d, want 1", len(plan.Items))
	}
	item := plan.Items[0]
	if item.Action != ActionCopy {
		t.Errorf("action = %s, want copy", item.Action)
	}
	if item.Destination != filepath.Join(dst, "song.mp3") {
		t.Errorf("destination = %s", item.Destination)
	}
	if plan.FilesToCopy != 1 || plan.FilesToSkip != 0 || plan.TotalBytes != entry.SizeBytes {
		t.Errorf("counters = %+v", plan)
	}
}

func TestBuildPlanSkipsUnmatchedRequests(t *testing.T) {
	plan, err := BuildPlan([]matcher.MatchResult{
		{Request: songRequest("never found")},
	}, Options{DestRoot: t.TempDir(), Mode: ModeSingleFolder, Strategy: StrategyRename})
	if err != nil {
		t.Fatal(err)
	}
	if len(plan.Items) != 0 {
		t.Errorf("items = %d, want 0 for unmatched request", len(plan.Items))
	}
}

func TestBuildPlanRequiresDestRoot(t *testing.T) {
	if _, err := BuildPlan(nil, Options{}); err == nil {
		t.Error("expected error for empty destination root")
	}
}

func TestScatterByArtistFallsBackToUnknown(t *testing.T) {
	src := t.TempDir()
	dst := t.TempDir()

	tagged := writeSourceFile(t, src, "a.mp3", "a")
	tagged.AudioMeta = &media.AudioMeta{Artist: "Queen"}
	untagged := writeSourceFile(t, src, "b.mp3", "b")

	plan, err := BuildPlan([]matcher.MatchResult{
		matchFor(songRequest("a"), tagged),
		matchFor(songRequest("b"), untagged),
	}, Options{DestRoot: dst, Mode: ModeScatterByArtist, Strategy: StrategyRename})
	if err != nil {
		t.Fatal(err)
	}
	if got := plan.Items[0].Destination; got != filepath.Join(dst, "Queen", "a.mp3") {
		t.Errorf("tagged destination = %s", got)
	}
	if got := plan.Items[1].Destination; got != filepath.Join(dst, "Unknown Artist", "b.mp3") {
		t.Errorf("untagged destination = %s", got)
	}
}

func TestScatterByGenreNestsArtist(t *testing.T) {
	src := t.TempDir()
	dst := t.TempDir()
	entry := writeSourceFile(t, src, "a.mp3", "a")
	entry.AudioMeta = &media.AudioMeta{Artist: "Queen", Genre: "Rock"}

	plan, err := BuildPlan([]matcher.MatchResult{matchFor(songRequest("a"), entry)},
		Options{DestRoot: dst, Mode: ModeScatterByGenre, Strategy: StrategyRename})
	if err != nil {
		t.Fatal(err)
	}
	want := filepath.Join(dst, "Rock", "Queen", "a.mp3")
	if plan.Items[0].Destination != want {
		t.Errorf("destination = %s, want %s", plan.Items[0].Destination, want)
	}
}

func TestFolderPerRequestMovieYearNesting(t *testing.T) {
	src := t.TempDir()
	dst := t.TempDir()
	entry := writeSourceFile(t, src, "inception.mkv", "video")

	req := request.Request{Kind: request.KindMovie, Text: "Inception [2010]"}
	plan, err := BuildPlan([]matcher.MatchResult{matchFor(req, entry)},
		Options{DestRoot: dst, Mode: ModeFolderPerRequest, Strategy: StrategyRename})
	if err != nil {
		t.Fatal(err)
	}
	want := filepath.Join(dst, "Movies", "Inception (2010)", "inception.mkv")
	if plan.Items[0].Destination != want {
		t.Errorf("destination = %s, want %s", plan.Items[0].Destination, want)
	}
}

func TestFolderPerRequestSanitizesReservedName(t *testing.T) {
	src := t.TempDir()
	dst := t.TempDir()
	entry := writeSourceFile(t, src, "a.mp3", "a")

	plan, err := BuildPlan([]matcher.MatchResult{matchFor(songRequest("con"), entry)},
		Options{DestRoot: dst, Mode: ModeFolderPerRequest, Strategy: StrategyRename})
	if err != nil {
		t.Fatal(err)
	}
	want := filepath.Join(dst, "con_folder", "a.mp3")
	if plan.Items[0].Destination != want {
		t.Errorf("destination = %s, want %s", plan.Items[0].Destination, want)
	}
}

func TestKeepRelativePreservesTreeAndFallsBackFlat(t *testing.T) {
	src := t.TempDir()
	dst := t.TempDir()
	if err := os.MkdirAll(filepath.Join(src, "albums", "best"), 0o755); err != nil {
		t.Fatal(err)
	}
	inside := writeSourceFile(t, filepath.Join(src, "albums", "best"), "a.mp3", "a")

	outsideDir := t.TempDir()
	outside := writeSourceFile(t, outsideDir, "b.mp3", "b")

	plan, err := BuildPlan([]matcher.MatchResult{
		matchFor(songRequest("a"), inside),
		matchFor(songRequest("b"), outside),
	}, Options{DestRoot: dst, Mode: ModeKeepRelative, Strategy: StrategyRename, SourceRoots: []string{src}})
	if err != nil {
		t.Fatal(err)
	}
	if want := filepath.Join(dst, "albums", "best", "a.mp3"); plan.Items[0].Destination != want {
		t.Errorf("relative destination = %s, want %s", plan.Items[0].Destination, want)
	}
	if want := filepath.Join(dst, "b.mp3"); plan.Items[1].Destination != want {
		t.Errorf("fallback destination = %s, want %s", plan.Items[1].Destination, want)
	}
}

func TestIntraPlanCollisionRenames(t *testing.T) {
	srcA := t.TempDir()
	srcB := t.TempDir()
	dst := t.TempDir()
	first := writeSourceFile(t, srcA, "song.mp3", "take one")
	second := writeSourceFile(t, srcB, "song.mp3", "take two")

	plan, err := BuildPlan([]matcher.MatchResult{
		matchFor(songRequest("one"), first),
		matchFor(songRequest("two"), second),
	}, Options{DestRoot: dst, Mode: ModeSingleFolder, Strategy: StrategySkip})
	if err != nil {
		t.Fatal(err)
	}
	if plan.Items[0].Action != ActionCopy {
		t.Errorf("first action = %s", plan.Items[0].Action)
	}
	if plan.Items[1].Action != ActionRenameCopy {
		t.Errorf("second action = %s, want rename_copy", plan.Items[1].Action)
	}
	if want := filepath.Join(dst, "song_1.mp3"); plan.Items[1].Destination != want {
		t.Errorf("renamed destination = %s, want %s", plan.Items[1].Destination, want)
	}
	if plan.Items[0].Destination == plan.Items[1].Destination {
		t.Error("plan claims the same destination twice")
	}
}

func TestCollisionStrategies(t *testing.T) {
	src := t.TempDir()
	dst := t.TempDir()
	entry := writeSourceFile(t, src, "song.mp3", "same content")

	if err := os.WriteFile(filepath.Join(dst, "song.mp3"), []byte("same content"), 0o644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		strategy   Strategy
		wantAction Action
	}{
		{StrategySkip, ActionSkipExists},
		{StrategyCompareSize, ActionSkipSameSize},
		{StrategyCompareHash, ActionSkipSameHash},
		{StrategyRename, ActionRenameCopy},
	}
	for _, tt := range tests {
		t.Run(string(tt.strategy), func(t *testing.T) {
			plan, err := BuildPlan([]matcher.MatchResult{matchFor(songRequest("song"), entry)},
				Options{DestRoot: dst, Mode: ModeSingleFolder, Strategy: tt.strategy})
			if err != nil {
				t.Fatal(err)
			}
			item := plan.Items[0]
			if item.Action != tt.wantAction {
				t.Errorf("action = %s, want %s", item.Action, tt.wantAction)
			}
			if item.Action.IsCopy() && item.Destination == filepath.Join(dst, "song.mp3") {
				t.Error("copy action targets an existing file")
			}
		})
	}
}

func TestCompareSizeRenamesOnDifferentSize(t *testing.T) {
	src := t.TempDir()
	dst := t.TempDir()
	entry := writeSourceFile(t, src, "song.mp3", "longer different content")

	if err := os.WriteFile(filepath.Join(dst, "song.mp3"), []byte("short"), 0o644); err != nil {
		t.Fatal(err)
	}

	plan, err := BuildPlan([]matcher.MatchResult{matchFor(songRequest("song"), entry)},
		Options{DestRoot: dst, Mode: ModeSingleFolder, Strategy: StrategyCompareSize})
	if err != nil {
		t.Fatal(err)
	}
	item := plan.Items[0]
	if item.Action != ActionRenameCopy {
		t.Errorf("action = %s, want rename_copy", item.Action)
	}
	if want := filepath.Join(dst, "song_1.mp3"); item.Destination != want {
		t.Errorf("destination = %s, want %s", item.Destination, want)
	}
}

func TestGenerateUniquePathIdempotent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "song.mp3")

	if got := GenerateUniquePath(path, nil); got != path {
		t.Errorf("free path changed: %s", got)
	}

	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	first := GenerateUniquePath(path, nil)
	second := GenerateUniquePath(path, nil)
	if first != second {
		t.Errorf("not idempotent: %s vs %s", first, second)
	}
	if want := filepath.Join(dir, "song_1.mp3"); first != want {
		t.Errorf("unique path = %s, want %s", first, want)
	}

	if err := os.WriteFile(first, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if want := filepath.Join(dir, "song_2.mp3"); GenerateUniquePath(path, nil) != want {
		t.Errorf("counter should advance to _2")
	}
}

func TestGenerateUniquePathRespectsClaims(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "song.mp3")
	claimed := map[string]struct{}{
		path:                             {},
		filepath.Join(dir, "song_1.mp3"): {},
	}
	if want := filepath.Join(dir, "song_2.mp3"); GenerateUniquePath(path, claimed) != want {
		t.Errorf("claimed paths must be avoided")
	}
}

func TestExecutePlanCopiesAndSkips(t *testing.T) {
	src := t.TempDir()
	dst := t.TempDir()
	entry := writeSourceFile(t, src, "song.mp3", "audio data")

	plan := &Plan{
		Items: []PlanItem{
			{Source: entry.Path, Destination: filepath.Join(dst, "sub", "song.mp3"), Action: ActionCopy, SizeBytes: entry.SizeBytes},
			{Source: entry.Path, Destination: filepath.Join(dst, "song.mp3"), Action: ActionSkipExists, SizeBytes: entry.SizeBytes},
		},
		TotalBytes:  entry.SizeBytes,
		FilesToCopy: 1,
		FilesToSkip: 1,
	}

	report, err := ExecutePlan(context.Background(), plan, ExecOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if report.Copied != 1 || report.Skipped != 1 || report.Failed != 0 {
		t.Errorf("report = %+v", report)
	}
	if report.BytesCopied != entry.SizeBytes {
		t.Errorf("bytes copied = %d", report.BytesCopied)
	}
	data, err := os.ReadFile(filepath.Join(dst, "sub", "song.mp3"))
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "audio data" {
		t.Errorf("copied content = %q", data)
	}
}

func TestExecutePlanDryRunEquivalence(t *testing.T) {
	src := t.TempDir()
	dst := t.TempDir()
	entry := writeSourceFile(t, src, "song.mp3", "audio data")

	plan := &Plan{
		Items: []PlanItem{
			{Source: entry.Path, Destination: filepath.Join(dst, "song.mp3"), Action: ActionCopy, SizeBytes: entry.SizeBytes},
			{Source: entry.Path, Destination: filepath.Join(dst, "other.mp3"), Action: ActionSkipSameHash, SizeBytes: entry.SizeBytes},
		},
		TotalBytes: entry.SizeBytes,
	}

	dry, err := ExecutePlan(context.Background(), plan, ExecOptions{DryRun: true})
	if err != nil {
		t.Fatal(err)
	}
	if _, statErr := os.Lstat(filepath.Join(dst, "song.mp3")); statErr == nil {
		t.Error("dry run wrote a file")
	}

	actual, err := ExecutePlan(context.Background(), plan, ExecOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if dry.Copied != actual.Copied || dry.Skipped != actual.Skipped || dry.Failed != actual.Failed || dry.BytesCopied != actual.BytesCopied {
		t.Errorf("dry run counters %+v differ from real run %+v", dry, actual)
	}
}

func TestExecutePlanRecordsFailureAndContinues(t *testing.T) {
	src := t.TempDir()
	dst := t.TempDir()
	entry := writeSourceFile(t, src, "song.mp3", "audio data")

	plan := &Plan{
		Items: []PlanItem{
			{Source: filepath.Join(src, "missing.mp3"), Destination: filepath.Join(dst, "missing.mp3"), Action: ActionCopy, SizeBytes: 10},
			{Source: entry.Path, Destination: filepath.Join(dst, "song.mp3"), Action: ActionCopy, SizeBytes: entry.SizeBytes},
		},
	}

	report, err := ExecutePlan(context.Background(), plan, ExecOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if report.Failed != 1 || report.Copied != 1 {
		t.Errorf("report = %+v", report)
	}
	if len(report.Errors) != 1 || report.Errors[0].Source != filepath.Join(src, "missing.mp3") {
		t.Errorf("errors = %+v", report.Errors)
	}
}

func TestExecutePlanProgressCallbacks(t *testing.T) {
	src := t.TempDir()
	dst := t.TempDir()
	entry := writeSourceFile(t, src, "song.mp3", "audio data")

	plan := &Plan{
		Items: []PlanItem{
			{Source: entry.Path, Destination: filepath.Join(dst, "song.mp3"), Action: ActionCopy, SizeBytes: entry.SizeBytes},
		},
		TotalBytes: entry.SizeBytes,
	}

	var calls []int
	var lastBytes int64
	_, err := ExecutePlan(context.Background(), plan, ExecOptions{
		DryRun: true,
		OnProgress: func(index, total int, source string, bytesCopied, totalBytes int64) {
			calls = append(calls, index)
			lastBytes = bytesCopied
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(calls) != 2 || calls[0] != 1 || calls[1] != 1 {
		t.Errorf("progress calls = %v", calls)
	}
	if lastBytes != entry.SizeBytes {
		t.Errorf("final bytes = %d, want %d", lastBytes, entry.SizeBytes)
	}
}

func TestExecutePlanHonorsContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	plan := &Plan{Items: []PlanItem{{Source: "/nope", Destination: "/nope2", Action: ActionCopy}}}
	report, err := ExecutePlan(ctx, plan, ExecOptions{DryRun: true})
	if err == nil {
		t.Error("expected context error")
	}
	if report.Copied != 0 {
		t.Errorf("no item should run after cancellation: %+v", report)
	}
}

func TestPlanJSONRoundTrip(t *testing.T) {
	plan := &Plan{
		Items: []PlanItem{
			{Source: "/a", Destination: "/b", Action: ActionRenameCopy, SizeBytes: 42, Reason: "renamed to avoid existing file"},
		},
		TotalBytes:  42,
		FilesToCopy: 1,
	}
	data, err := json.Marshal(plan)
	if err != nil {
		t.Fatal(err)
	}
	for _, field := range []string{`"items"`, `"total_bytes"`, `"files_to_copy"`, `"files_to_skip"`, `"size_bytes"`, `"rename_copy"`} {
		if !strings.Contains(string(data), field) {
			t.Errorf("plan JSON missing %s: %s", field, data)
		}
	}

	var decoded Plan
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatal(err)
	}
	if decoded.Items[0] != plan.Items[0] || decoded.TotalBytes != plan.TotalBytes {
		t.Errorf("round trip changed plan: %+v", decoded)
	}
}
