package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/scipunch/freegames/promo"
	"github.com/scipunch/freegames/report"
)

func TestWriteTextfile_Report(t *testing.T) {
	path := filepath.Join(t.TempDir(), "freegames.prom")
	started := time.Unix(1700000000, 0)
	finished := started.Add(2 * time.Second)

	run := NewRun()
	run.ObserveReport(report.Report{
		CurrentFreeGames:  []promo.Promotion{{Title: "A"}, {Title: "B"}},
		UpcomingFreeGames: []promo.Promotion{{Title: "C"}},
	}, started, finished)

	if err := run.WriteTextfile(path); err != nil {
		t.Fatalf("WriteTextfile failed: %v", err)
	}
	dat, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read metrics: %v", err)
	}
	out := string(dat)

	for _, want := range []string{
		`freegames_promotions{state="current"} 2`,
		`freegames_promotions{state="upcoming"} 1`,
		"freegames_fetch_success 1",
		"freegames_last_run_timestamp_seconds 1.700000002e+09",
		"freegames_fetch_duration_seconds 2",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("metrics missing %q:\n%s", want, out)
		}
	}
}

func TestWriteTextfile_Failure(t *testing.T) {
	path := filepath.Join(t.TempDir(), "freegames.prom")
	now := time.Now()

	run := NewRun()
	run.ObserveFailure(now, now)
	if err := run.WriteTextfile(path); err != nil {
		t.Fatalf("WriteTextfile failed: %v", err)
	}
	dat, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read metrics: %v", err)
	}
	if !strings.Contains(string(dat), "freegames_fetch_success 0") {
		t.Errorf("expected failed fetch gauge:\n%s", dat)
	}
	if strings.Contains(string(dat), "freegames_promotions{") {
		t.Errorf("no promotion counts expected after failure:\n%s", dat)
	}
}
