package storage_test

import (
	"testing"

	"keysnip/storage"
)

func openTestDB(t *testing.T) *storage.DB {
	t.Helper()
	db, err := storage.OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestSaveRunAssignsID(t *testing.T) {
	db := openTestDB(t)

	r := &storage.Run{
		SnippetName:      "greeting",
		CharCount:        12,
		CorrectionBursts: 2,
		BackspacesSent:   3,
		DurationMs:       640,
		Success:          true,
	}
	if err := db.SaveRun(r); err != nil {
		t.Fatalf("SaveRun: %v", err)
	}
	if r.ID == 0 {
		t.Fatal("SaveRun did not assign an ID")
	}
}

func TestGetRunsNewestFirst(t *testing.T) {
	db := openTestDB(t)

	for _, name := range []string{"a", "b", "c"} {
		if err := db.SaveRun(&storage.Run{SnippetName: name, Success: true}); err != nil {
			t.Fatalf("SaveRun(%s): %v", name, err)
		}
	}

	runs, err := db.GetRuns(10, 0)
	if err != nil {
		t.Fatalf("GetRuns: %v", err)
	}
	if len(runs) != 3 {
		t.Fatalf("expected 3 runs, got %d", len(runs))
	}
	if runs[0].SnippetName != "c" || runs[2].SnippetName != "a" {
		t.Fatalf("wrong order: %s ... %s", runs[0].SnippetName, runs[2].SnippetName)
	}

	count, err := db.GetRunCount()
	if err != nil {
		t.Fatalf("GetRunCount: %v", err)
	}
	if count != 3 {
		t.Fatalf("count = %d, want 3", count)
	}
}

func TestFailedRunKeepsErrorMessage(t *testing.T) {
	db := openTestDB(t)

	if err := db.SaveRun(&storage.Run{SnippetName: "x", Success: false, ErrorMessage: "SendInput failed"}); err != nil {
		t.Fatalf("SaveRun: %v", err)
	}

	runs, err := db.GetRuns(1, 0)
	if err != nil {
		t.Fatalf("GetRuns: %v", err)
	}
	if runs[0].Success {
		t.Fatal("run should be marked failed")
	}
	if runs[0].ErrorMessage != "SendInput failed" {
		t.Fatalf("error message = %q", runs[0].ErrorMessage)
	}
}

func TestOverallStats(t *testing.T) {
	db := openTestDB(t)

	db.SaveRun(&storage.Run{SnippetName: "a", CharCount: 10, CorrectionBursts: 1, BackspacesSent: 2, DurationMs: 100, Success: true})
	db.SaveRun(&storage.Run{SnippetName: "a", CharCount: 20, CorrectionBursts: 3, BackspacesSent: 5, DurationMs: 300, Success: true})
	db.SaveRun(&storage.Run{SnippetName: "b", CharCount: 5, DurationMs: 50, Success: false, ErrorMessage: "boom"})

	stats, err := db.GetOverallStats(7)
	if err != nil {
		t.Fatalf("GetOverallStats: %v", err)
	}
	if stats.TotalRuns != 3 || stats.TotalChars != 35 {
		t.Fatalf("totals wrong: runs=%d chars=%d", stats.TotalRuns, stats.TotalChars)
	}
	if stats.TotalBursts != 4 || stats.TotalBackspaces != 7 {
		t.Fatalf("burst totals wrong: %d/%d", stats.TotalBursts, stats.TotalBackspaces)
	}
	if stats.SuccessCount != 2 || stats.FailureCount != 1 {
		t.Fatalf("success counts wrong: %d/%d", stats.SuccessCount, stats.FailureCount)
	}
}

func TestOverallStatsEmptyDB(t *testing.T) {
	db := openTestDB(t)

	stats, err := db.GetOverallStats(7)
	if err != nil {
		t.Fatalf("GetOverallStats on empty db: %v", err)
	}
	if stats.TotalRuns != 0 {
		t.Fatalf("expected zero runs, got %d", stats.TotalRuns)
	}
}

func TestSnippetStatsGrouping(t *testing.T) {
	db := openTestDB(t)

	db.SaveRun(&storage.Run{SnippetName: "often", CharCount: 10, Success: true})
	db.SaveRun(&storage.Run{SnippetName: "often", CharCount: 10, Success: true})
	db.SaveRun(&storage.Run{SnippetName: "rare", CharCount: 4, Success: true})

	stats, err := db.GetSnippetStats(7)
	if err != nil {
		t.Fatalf("GetSnippetStats: %v", err)
	}
	if len(stats) != 2 {
		t.Fatalf("expected 2 groups, got %d", len(stats))
	}
	if stats[0].SnippetName != "often" || stats[0].TotalRuns != 2 {
		t.Fatalf("top group wrong: %+v", stats[0])
	}
}
