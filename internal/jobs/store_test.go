package jobs

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"gavel/internal/hearing"
)

func storesUnderTest(t *testing.T) map[string]Store {
	t.Helper()
	sqliteStore, err := OpenSQLite(filepath.Join(t.TempDir(), "jobs.db"))
	if err != nil {
		t.Fatalf("open sqlite store: %v", err)
	}
	t.Cleanup(func() { _ = sqliteStore.Close() })
	return map[string]Store{
		"memory": NewMemoryStore(),
		"sqlite": sqliteStore,
	}
}

func TestStoreLifecycle(t *testing.T) {
	for name, store := range storesUnderTest(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			job, err := store.Create(ctx)
			if err != nil {
				t.Fatal(err)
			}
			if job.ID == "" || job.Status != StatusQueued {
				t.Fatalf("unexpected new job %+v", job)
			}

			if err := store.SetStatus(ctx, job.ID, StatusProcessing); err != nil {
				t.Fatal(err)
			}
			if err := store.SetProgress(ctx, job.ID, "2/3"); err != nil {
				t.Fatal(err)
			}
			got, err := store.Get(ctx, job.ID)
			if err != nil {
				t.Fatal(err)
			}
			if got.Status != StatusProcessing || got.Progress != "2/3" {
				t.Fatalf("unexpected state %+v", got)
			}

			result := &Result{
				Metadata:   hearing.Metadata{HearingID: "h1", FolderPath: "2024/finance/hb-101/day-one"},
				FolderPath: "2024/finance/hb-101/day-one",
			}
			if err := store.Complete(ctx, job.ID, result, []string{"chunk 1 failed"}); err != nil {
				t.Fatal(err)
			}
			got, err = store.Get(ctx, job.ID)
			if err != nil {
				t.Fatal(err)
			}
			if got.Status != StatusCompleted {
				t.Fatalf("expected completed, got %s", got.Status)
			}
			if got.Result == nil || got.Result.FolderPath != "2024/finance/hb-101/day-one" {
				t.Fatalf("missing result: %+v", got.Result)
			}
			if len(got.Warnings) != 1 || got.Warnings[0] != "chunk 1 failed" {
				t.Fatalf("unexpected warnings %v", got.Warnings)
			}
			if got.Progress != "" {
				t.Fatalf("progress must clear on completion, got %q", got.Progress)
			}
		})
	}
}

func TestStoreRejectsBackwardTransitions(t *testing.T) {
	for name, store := range storesUnderTest(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			job, err := store.Create(ctx)
			if err != nil {
				t.Fatal(err)
			}
			if err := store.SetStatus(ctx, job.ID, StatusProcessing); err != nil {
				t.Fatal(err)
			}
			if err := store.SetStatus(ctx, job.ID, StatusQueued); err == nil {
				t.Fatal("processing -> queued must be rejected")
			}
			if err := store.Fail(ctx, job.ID, "yt-dlp exited 1"); err != nil {
				t.Fatal(err)
			}
			if err := store.SetStatus(ctx, job.ID, StatusProcessing); err == nil {
				t.Fatal("terminal jobs must not transition")
			}
			if err := store.Complete(ctx, job.ID, nil, nil); err == nil {
				t.Fatal("failed -> completed must be rejected")
			}
			got, err := store.Get(ctx, job.ID)
			if err != nil {
				t.Fatal(err)
			}
			if got.Status != StatusFailed || got.Error != "yt-dlp exited 1" {
				t.Fatalf("unexpected terminal state %+v", got)
			}
		})
	}
}

func TestStoreUnknownJob(t *testing.T) {
	for name, store := range storesUnderTest(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			if _, err := store.Get(ctx, "nope"); !errors.Is(err, ErrNotFound) {
				t.Fatalf("Get: expected ErrNotFound, got %v", err)
			}
			if err := store.SetStatus(ctx, "nope", StatusProcessing); !errors.Is(err, ErrNotFound) {
				t.Fatalf("SetStatus: expected ErrNotFound, got %v", err)
			}
			if err := store.SetProgress(ctx, "nope", "1/2"); !errors.Is(err, ErrNotFound) {
				t.Fatalf("SetProgress: expected ErrNotFound, got %v", err)
			}
			if err := store.Fail(ctx, "nope", "x"); !errors.Is(err, ErrNotFound) {
				t.Fatalf("Fail: expected ErrNotFound, got %v", err)
			}
		})
	}
}
