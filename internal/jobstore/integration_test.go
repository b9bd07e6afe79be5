package jobstore_test

import (
	"context"
	"os"
	"testing"
	"time"

	"mediacopier/internal/catalog"
	"mediacopier/internal/jobstore"
	"mediacopier/internal/matcher"
	"mediacopier/internal/planner"
	"mediacopier/internal/request"
	"mediacopier/internal/testsupport"
)

// Exercises the whole pipeline against a persisted job: scan entries,
// match, plan, execute, and verify the stored checkpoint and plan survive
// a reload.
func TestPipelinePersistsThroughStore(t *testing.T) {
	cfg := testsupport.NewConfig(t,
		testsupport.WithOrganizationMode("scatter_by_artist"),
		testsupport.WithCollisionStrategy("rename"),
	)
	sourceDir := cfg.Paths.Sources[0]

	cat := &catalog.Catalog{
		Entries: []catalog.MediaEntry{
			testsupport.WriteMediaFile(t, sourceDir, "Queen - Bohemian Rhapsody.mp3", 2048),
			testsupport.WriteMediaFile(t, sourceDir, "Queen - Somebody To Love.mp3", 1024),
		},
		Sources:   cfg.Paths.Sources,
		Timestamp: time.Now().UTC(),
	}

	requests := []request.Request{
		{Kind: request.KindSong, Text: "Bohemian Rhapsody"},
		{Kind: request.KindSong, Text: "Somebody To Love"},
	}
	matches, err := matcher.Match(context.Background(), requests, cat, matcher.DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}

	plan, err := planner.BuildPlan(matches, planner.Options{
		DestRoot: cfg.Paths.Destination,
		Mode:     planner.ModeScatterByArtist,
		Strategy: planner.StrategyRename,
	})
	if err != nil {
		t.Fatal(err)
	}
	if plan.FilesToCopy != 2 {
		t.Fatalf("files to copy = %d, want 2", plan.FilesToCopy)
	}

	store := testsupport.MustOpenStore(t, cfg)
	job := testsupport.NewJob(t, store, "queen sync", cfg)
	job.Plan = plan
	if err := store.SaveJob(context.Background(), job); err != nil {
		t.Fatal(err)
	}

	execReport, err := planner.ExecutePlan(context.Background(), plan, planner.ExecOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if execReport.Copied != 2 || execReport.Failed != 0 {
		t.Fatalf("exec report = %+v", execReport)
	}
	if err := store.SaveCheckpoint(context.Background(), job.ID, len(plan.Items)); err != nil {
		t.Fatal(err)
	}
	if err := store.UpdateStatus(context.Background(), job.ID, jobstore.StatusDone, ""); err != nil {
		t.Fatal(err)
	}

	loaded, err := store.GetJob(context.Background(), job.ID)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Status != jobstore.StatusDone || loaded.CheckpointIdx != len(plan.Items) {
		t.Fatalf("loaded = %+v", loaded)
	}
	for _, item := range loaded.Plan.Items {
		if _, err := os.Stat(item.Destination); err != nil {
			t.Errorf("destination missing: %v", err)
		}
	}
}
