//go:build integration

package db

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"
)

func getTestDB(t *testing.T) *DB {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set, skipping integration test")
	}

	ctx := context.Background()
	db, err := Connect(ctx, dsn)
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}
	if err := db.Migrate(ctx); err != nil {
		t.Fatalf("Migrate failed: %v", err)
	}

	_, _ = db.pool.Exec(ctx, "DELETE FROM saved_jobs WHERE url LIKE 'https://test.example.com/%'")
	return db
}

func TestIntegration_SavedJob_CRUD(t *testing.T) {
	db := getTestDB(t)
	defer db.Close()
	ctx := context.Background()

	runID, err := db.CreateRun(ctx, 1)
	if err != nil {
		t.Fatalf("CreateRun failed: %v", err)
	}

	url := "https://test.example.com/jobs/" + uuid.New().String()
	score := 77
	input := &SavedJobInput{
		RunID:       &runID,
		URL:         url,
		Platform:    "LinkedIn",
		Company:     "Test Corp",
		Position:    "Backend Engineer",
		Score:       &score,
		PageURL:     "https://www.notion.so/page",
		Description: "Build things",
	}

	t.Run("save", func(t *testing.T) {
		job, err := db.SaveJob(ctx, input)
		if err != nil {
			t.Fatalf("SaveJob failed: %v", err)
		}
		if job.ID == uuid.Nil {
			t.Error("ID should be set")
		}
		if job.ContentHash != HashJobContent("Build things") {
			t.Errorf("ContentHash = %q", job.ContentHash)
		}
	})

	t.Run("upsert by url", func(t *testing.T) {
		input.Position = "Senior Backend Engineer"
		if _, err := db.SaveJob(ctx, input); err != nil {
			t.Fatalf("SaveJob failed: %v", err)
		}
		job, err := db.GetSavedJobByURL(ctx, url)
		if err != nil {
			t.Fatalf("GetSavedJobByURL failed: %v", err)
		}
		if job == nil || job.Position != "Senior Backend Engineer" {
			t.Errorf("Position not updated: %+v", job)
		}
	})

	t.Run("list filtered", func(t *testing.T) {
		jobs, err := db.ListSavedJobs(ctx, SavedJobFilters{RunID: runID, MinScore: 70})
		if err != nil {
			t.Fatalf("ListSavedJobs failed: %v", err)
		}
		if len(jobs) != 1 {
			t.Fatalf("got %d jobs, want 1", len(jobs))
		}
	})

	t.Run("missing url returns nil", func(t *testing.T) {
		job, err := db.GetSavedJobByURL(ctx, "https://test.example.com/none")
		if err != nil || job != nil {
			t.Errorf("got %v, %v; want nil, nil", job, err)
		}
	})

	t.Run("complete run", func(t *testing.T) {
		if err := db.CompleteRun(ctx, runID, RunStatusCompleted); err != nil {
			t.Fatalf("CompleteRun failed: %v", err)
		}
		run, err := db.GetRun(ctx, runID)
		if err != nil {
			t.Fatalf("GetRun failed: %v", err)
		}
		if run.Status != RunStatusCompleted || run.CompletedAt == nil {
			t.Errorf("run not completed: %+v", run)
		}
	})

	job, _ := db.GetSavedJobByURL(ctx, url)
	if job != nil {
		if err := db.DeleteSavedJob(ctx, job.ID); err != nil {
			t.Errorf("DeleteSavedJob failed: %v", err)
		}
	}
}
