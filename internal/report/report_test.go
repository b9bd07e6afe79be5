package report

import (
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"mediacopier/internal/catalog"
	"mediacopier/internal/matcher"
	"mediacopier/internal/planner"
	"mediacopier/internal/request"
)

func TestAddOperationKeepsSummaryConsistent(t *testing.T) {
	r := New("job-1", "test job")

	r.AddOperation("/src/a.mp3", "/dst/a.mp3", StatusCopied, "", 100)
	r.AddOperation("/src/b.mp3", "/dst/b.mp3", StatusSkipped, "destination already exists", 0)
	r.AddFiltered("/src/c.mp3", "extension not allowed", 50)
	r.AddOperation("/src/d.mp3", "/dst/d.mp3", StatusFailed, "permission denied", 0)

	if r.Summary.Total != len(r.Operations) {
		t.Errorf("summary total = %d, operations = %d", r.Summary.Total, len(r.Operations))
	}
	if r.Summary.Copied != 1 || r.Summary.Skipped != 1 || r.Summary.Filtered != 1 || r.Summary.Failed != 1 {
		t.Errorf("summary = %+v", r.Summary)
	}
	if r.TotalBytesCopied != 100 {
		t.Errorf("bytes copied = %d, only copied operations count", r.TotalBytesCopied)
	}
	if r.Operations[0].SourceName != "a.mp3" || r.Operations[0].DestName != "a.mp3" {
		t.Errorf("names = %q / %q", r.Operations[0].SourceName, r.Operations[0].DestName)
	}
	if r.Operations[2].DestName != "" {
		t.Errorf("filtered operation must have no destination name: %q", r.Operations[2].DestName)
	}
}

func TestFromPlanAndReport(t *testing.T) {
	plan := &planner.Plan{
		Items: []planner.PlanItem{
			{Source: "/src/a.mp3", Destination: "/dst/a.mp3", Action: planner.ActionCopy, SizeBytes: 100},
			{Source: "/src/b.mp3", Destination: "/dst/b_1.mp3", Action: planner.ActionRenameCopy, SizeBytes: 200},
			{Source: "/src/c.mp3", Destination: "/dst/c.mp3", Action: planner.ActionSkipSameHash, SizeBytes: 300, Reason: "destination exists with identical content"},
			{Source: "/src/d.mp3", Destination: "/dst/d.mp3", Action: planner.ActionCopy, SizeBytes: 400},
		},
	}
	exec := &planner.Report{
		Copied: 2, Skipped: 1, Failed: 1, BytesCopied: 300,
		Errors: []planner.ExecError{{Source: "/src/d.mp3", Error: "permission denied"}},
	}
	matches := []matcher.MatchResult{
		{
			Request:    request.Request{Kind: request.KindSong, Text: "a"},
			MatchFound: true,
			Candidates: []matcher.MatchCandidate{{Entry: catalog.MediaEntry{Path: "/src/a.mp3", BaseName: "a"}, Score: 97.5}},
		},
		{Request: request.Request{Kind: request.KindSong, Text: "missing"}},
	}

	r := FromPlanAndReport(BuildParams{
		JobID:            "job-1",
		JobName:          "test",
		Sources:          []string{"/src"},
		Destination:      "/dst",
		OrganizationMode: "single_folder",
		StartTime:        time.Now().Add(-time.Minute),
	}, plan, exec, matches)

	if r.Summary.Copied != 2 || r.Summary.Skipped != 1 || r.Summary.Failed != 1 {
		t.Errorf("summary = %+v", r.Summary)
	}
	if r.Summary.Total != len(plan.Items) {
		t.Errorf("total = %d, want %d", r.Summary.Total, len(plan.Items))
	}
	if r.TotalBytesCopied != 300 {
		t.Errorf("bytes copied = %d, want 300", r.TotalBytesCopied)
	}
	if r.EndTime.IsZero() {
		t.Error("end time must default to now")
	}

	if len(r.Matches) != 2 || !r.Matches[0].MatchFound || r.Matches[0].MatchScore != 97.5 {
		t.Errorf("matches = %+v", r.Matches)
	}
	if r.Matches[1].MatchFound || r.Matches[1].MatchedFile != "" {
		t.Errorf("unmatched request recorded wrong: %+v", r.Matches[1])
	}

	failedOp := r.Operations[3]
	if failedOp.Status != StatusFailed || failedOp.Reason != "permission denied" {
		t.Errorf("failed op = %+v", failedOp)
	}
	if r.Operations[1].Status != StatusCopied || r.Operations[1].Reason != "renamed due to collision" {
		t.Errorf("rename op = %+v", r.Operations[1])
	}
	if r.Operations[2].Status != StatusSkipped {
		t.Errorf("skip op = %+v", r.Operations[2])
	}
	if len(r.Errors) != 1 || r.Errors[0].SourceName != "d.mp3" {
		t.Errorf("errors = %+v", r.Errors)
	}
}

func TestSummaryText(t *testing.T) {
	r := New("job-1", "music sync")
	r.StartTime = time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	r.EndTime = r.StartTime.Add(time.Minute)
	r.AddOperation("/src/a.mp3", "/dst/a.mp3", StatusCopied, "", 1234567)
	r.AddError("/src/b.mp3", "disk full")

	text := r.SummaryText()
	for _, want := range []string{
		"Job Report: music sync (ID: job-1)",
		"COPIED:   1",
		"TOTAL:    1",
		"1,234,567",
		"b.mp3: disk full",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("summary missing %q:\n%s", want, text)
		}
	}
}

func TestJSONRoundTrip(t *testing.T) {
	r := New("job-1", "test")
	r.StartTime = time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	r.EndTime = r.StartTime.Add(time.Hour)
	r.Sources = []string{"/src"}
	r.Destination = "/dst"
	r.OrganizationMode = "scatter_by_artist"
	r.AddMatch(matcher.MatchResult{
		Request:    request.Request{Kind: request.KindMovie, Text: "Inception (2010)"},
		MatchFound: true,
		Candidates: []matcher.MatchCandidate{{Entry: catalog.MediaEntry{Path: "/src/i.mkv", BaseName: "i"}, Score: 88}},
	})
	r.AddOperation("/src/i.mkv", "/dst/i.mkv", StatusCopied, "", 500)
	r.AddError("/src/x.mkv", "read error")

	path := filepath.Join(t.TempDir(), "reports", "job-1.json")
	if err := r.WriteFile(path); err != nil {
		t.Fatal(err)
	}

	loaded, err := LoadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(r, loaded) {
		t.Errorf("round trip changed report:\n%+v\n%+v", r, loaded)
	}
}

func TestLoadFileMissing(t *testing.T) {
	if _, err := LoadFile(filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Error("expected error for missing file")
	}
}
