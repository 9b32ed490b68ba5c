package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/vovakirdan/tui-mania/internal/judge"
)

func testRun(hash string, score int64) RunRecord {
	rec := RunRecord{
		ChartHash: hash,
		Title:     "test chart",
		Rate:      1.0,
		Score:     score,
		Accuracy:  97.5,
		MaxCombo:  42,
		GhostTaps: 1,
	}
	rec.TierCounts[judge.Marvelous] = 30
	rec.TierCounts[judge.Great] = 10
	rec.TierCounts[judge.Miss] = 2
	return rec
}

func TestStoreOpenClose(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	store, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer store.Close()

	// Check that the file was created
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("Database file was not created")
	}
}

func TestStoreSaveAndRetrieve(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	store, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer store.Close()

	for _, score := range []int64{100, 50, 200} {
		if _, err := store.SaveRun(testRun("hashA", score)); err != nil {
			t.Fatalf("SaveRun() failed: %v", err)
		}
	}
	// Different chart
	if _, err := store.SaveRun(testRun("hashB", 500)); err != nil {
		t.Fatalf("SaveRun() failed: %v", err)
	}

	runs, err := store.TopRuns("hashA", 10)
	if err != nil {
		t.Fatalf("TopRuns() failed: %v", err)
	}

	if len(runs) != 3 {
		t.Fatalf("Expected 3 runs, got %d", len(runs))
	}

	// Should be sorted descending
	if runs[0].Score != 200 || runs[1].Score != 100 || runs[2].Score != 50 {
		t.Errorf("Runs not in expected order: %d, %d, %d",
			runs[0].Score, runs[1].Score, runs[2].Score)
	}

	// Tier counts survive the round trip
	if runs[0].TierCounts[judge.Marvelous] != 30 || runs[0].TierCounts[judge.Miss] != 2 {
		t.Errorf("Tier counts = %v", runs[0].TierCounts)
	}
	if runs[0].Accuracy != 97.5 || runs[0].GhostTaps != 1 {
		t.Errorf("Run fields lost: %+v", runs[0])
	}

	otherRuns, err := store.TopRuns("hashB", 10)
	if err != nil {
		t.Fatalf("TopRuns() failed: %v", err)
	}
	if len(otherRuns) != 1 {
		t.Errorf("Expected 1 run for hashB, got %d", len(otherRuns))
	}
}

func TestStoreTopRunsLimit(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	store, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer store.Close()

	for i := 0; i < 5; i++ {
		store.SaveRun(testRun("hash", int64((i+1)*100)))
	}

	runs, err := store.TopRuns("hash", 3)
	if err != nil {
		t.Fatalf("TopRuns() failed: %v", err)
	}

	if len(runs) != 3 {
		t.Errorf("Expected 3 runs with limit, got %d", len(runs))
	}

	if runs[0].Score != 500 || runs[1].Score != 400 || runs[2].Score != 300 {
		t.Errorf("Runs not in expected order: %v", runs)
	}
}

func TestStoreBestScore(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	store, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer store.Close()

	// No runs yet
	best, err := store.BestScore("hash")
	if err != nil {
		t.Fatalf("BestScore() failed: %v", err)
	}
	if best != 0 {
		t.Errorf("Expected best score of 0 for unplayed chart, got %d", best)
	}

	store.SaveRun(testRun("hash", 100))
	store.SaveRun(testRun("hash", 300))
	store.SaveRun(testRun("hash", 200))

	best, err = store.BestScore("hash")
	if err != nil {
		t.Fatalf("BestScore() failed: %v", err)
	}
	if best != 300 {
		t.Errorf("Expected best score of 300, got %d", best)
	}
}

func TestStoreReplayPayload(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	store, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer store.Close()

	rec := testRun("hash", 100)
	rec.Replay = []byte(`{"version":1}`)
	id, err := store.SaveRun(rec)
	if err != nil {
		t.Fatalf("SaveRun() failed: %v", err)
	}

	payload, err := store.ReplayPayload(id)
	if err != nil {
		t.Fatalf("ReplayPayload() failed: %v", err)
	}
	if string(payload) != `{"version":1}` {
		t.Errorf("payload = %q", payload)
	}

	// Run without a replay
	bare, err := store.SaveRun(testRun("hash", 50))
	if err != nil {
		t.Fatalf("SaveRun() failed: %v", err)
	}
	payload, err = store.ReplayPayload(bare)
	if err != nil {
		t.Fatalf("ReplayPayload() on bare run failed: %v", err)
	}
	if payload != nil {
		t.Errorf("expected nil payload, got %q", payload)
	}

	// Missing run
	if _, err := store.ReplayPayload(9999); err == nil {
		t.Error("ReplayPayload() on missing run should fail")
	}
}

func TestStoreClearRuns(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	store, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer store.Close()

	store.SaveRun(testRun("hashA", 100))
	store.SaveRun(testRun("hashA", 200))
	store.SaveRun(testRun("hashB", 300))

	if err := store.ClearRuns("hashA"); err != nil {
		t.Fatalf("ClearRuns() failed: %v", err)
	}

	runsA, _ := store.TopRuns("hashA", 10)
	if len(runsA) != 0 {
		t.Errorf("Expected 0 runs after clear, got %d", len(runsA))
	}

	runsB, _ := store.TopRuns("hashB", 10)
	if len(runsB) != 1 {
		t.Errorf("hashB runs should not be affected by clearing hashA")
	}
}

func TestStoreChartStats(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	store, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer store.Close()

	rec := testRun("hash", 100)
	rec.Accuracy = 90
	store.SaveRun(rec)
	rec = testRun("hash", 300)
	rec.Accuracy = 98.2
	store.SaveRun(rec)

	stats, err := store.GetChartStats("hash")
	if err != nil {
		t.Fatalf("GetChartStats() failed: %v", err)
	}
	if stats.RunCount != 2 || stats.BestScore != 300 || stats.BestAccuracy != 98.2 {
		t.Errorf("stats = %+v", stats)
	}
}

func TestStoreListCharts(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	store, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer store.Close()

	store.SaveRun(testRun("hashA", 100))
	store.SaveRun(testRun("hashA", 200))
	recB := testRun("hashB", 50)
	recB.Title = "other chart"
	store.SaveRun(recB)

	entries, err := store.ListCharts()
	if err != nil {
		t.Fatalf("ListCharts() failed: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("ListCharts() returned %d entries, expected 2", len(entries))
	}

	counts := map[string]int{}
	titles := map[string]string{}
	for _, e := range entries {
		counts[e.ChartHash] = e.RunCount
		titles[e.ChartHash] = e.Title
	}
	if counts["hashA"] != 2 || counts["hashB"] != 1 {
		t.Errorf("run counts = %v", counts)
	}
	if titles["hashB"] != "other chart" {
		t.Errorf("hashB title = %q", titles["hashB"])
	}
}

func TestStoreNestedPath(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "subdir", "deep", "test.db")

	store, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open() with nested path failed: %v", err)
	}
	defer store.Close()

	// Verify nested directories were created
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("Database file was not created in nested directory")
	}
}
