package testsupport

import (
	"context"
	"testing"

	"mediacopier/internal/config"
	"mediacopier/internal/jobstore"
)

// MustOpenStore opens a jobstore.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *jobstore.Store {
	t.Helper()

	store, err := jobstore.Open(cfg.Paths.JobDB)
	if err != nil {
		t.Fatalf("jobstore.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// NewJob persists a pending job for tests using the provided store.
func NewJob(t testing.TB, store *jobstore.Store, name string, cfg *config.Config) *jobstore.Job {
	t.Helper()

	job := &jobstore.Job{
		Name:              name,
		Sources:           cfg.Paths.Sources,
		Destination:       cfg.Paths.Destination,
		OrganizationMode:  cfg.Rules.OrganizationMode,
		CollisionStrategy: cfg.Rules.CollisionStrategy,
		DryRun:            cfg.Rules.DryRun,
	}
	if err := store.SaveJob(context.Background(), job); err != nil {
		t.Fatalf("store.SaveJob: %v", err)
	}
	return job
}
