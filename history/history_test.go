package history

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/scipunch/freegames/promo"
	"github.com/scipunch/freegames/report"
)

func newStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(filepath.Join(t.TempDir(), "nested", "history.db"))
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func sample(ts string) report.Report {
	return report.Report{
		Timestamp:         ts,
		CurrentFreeGames:  []promo.Promotion{{Title: "Alan Wake 2", OriginalPrice: "$59.99"}},
		UpcomingFreeGames: []promo.Promotion{},
	}
}

func TestNewStore(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "history.db")

	store, err := NewStore(dbPath)
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}
	defer store.Close()

	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("History database file was not created")
	}
}

func TestLatest_Empty(t *testing.T) {
	store := newStore(t)

	_, found, err := store.Latest()
	if err != nil {
		t.Fatalf("Latest failed: %v", err)
	}
	if found {
		t.Error("Expected no report in empty history")
	}
}

func TestSaveAndLatest(t *testing.T) {
	store := newStore(t)

	for _, ts := range []string{"2024-01-01T00:00:00.000000Z", "2024-01-02T00:00:00.000000Z"} {
		if err := store.Save(sample(ts)); err != nil {
			t.Fatalf("Save failed: %v", err)
		}
	}

	body, found, err := store.Latest()
	if err != nil {
		t.Fatalf("Latest failed: %v", err)
	}
	if !found {
		t.Fatal("Expected a stored report")
	}

	var rep report.Report
	if err := json.Unmarshal(body, &rep); err != nil {
		t.Fatalf("stored body is not a report: %v", err)
	}
	if rep.Timestamp != "2024-01-02T00:00:00.000000Z" {
		t.Errorf("expected newest report, got %s", rep.Timestamp)
	}
	if len(rep.CurrentFreeGames) != 1 || rep.CurrentFreeGames[0].Title != "Alan Wake 2" {
		t.Errorf("unexpected report content: %+v", rep)
	}
}

func TestPrune(t *testing.T) {
	store := newStore(t)

	for i := 0; i < 5; i++ {
		if err := store.Save(sample("ts")); err != nil {
			t.Fatalf("Save failed: %v", err)
		}
	}

	removed, err := store.Prune(2)
	if err != nil {
		t.Fatalf("Prune failed: %v", err)
	}
	if removed != 3 {
		t.Errorf("expected 3 removed, got %d", removed)
	}

	stats, err := store.Stats()
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	if stats.Reports != 2 {
		t.Errorf("expected 2 reports, got %d", stats.Reports)
	}

	if removed, err := store.Prune(0); err != nil || removed != 0 {
		t.Errorf("Prune(0) = %d, %v", removed, err)
	}
}

func TestClearAndStats(t *testing.T) {
	store := newStore(t)

	if err := store.Save(sample("ts")); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	stats, err := store.Stats()
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	if stats.Reports != 1 || stats.OldestReport.IsZero() {
		t.Errorf("unexpected stats: %+v", stats)
	}

	if err := store.Clear(); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	stats, err = store.Stats()
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	if stats.Reports != 0 || !stats.OldestReport.IsZero() {
		t.Errorf("expected empty stats after clear, got %+v", stats)
	}
}
