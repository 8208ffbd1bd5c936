package report_test

import (
	"encoding/json"
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/cpmech/gosl/chk"
	"github.com/hemelb-go/corelb/orchestrator"
	"github.com/hemelb-go/corelb/report"
)

// Test_summary01 checks NewSummary falls back to zeroed macroscopic
// fields when no PropertyCache is supplied, and that Write round-trips
// the resulting JSON document (spec.md S7's final snapshot/timings
// report).
func Test_summary01(t *testing.T) {
	chk.PrintTitle("summary01")

	sum := report.NewSummary(0, orchestrator.MaxStepsReached, 1000, 5*time.Second, 3, nil)
	if sum.Status != "MAX_STEPS_REACHED" {
		t.Fatalf("expected status MAX_STEPS_REACHED, got %q", sum.Status)
	}
	if len(sum.Sites) != 3 {
		t.Fatalf("expected 3 site snapshots, got %d", len(sum.Sites))
	}
	for _, s := range sum.Sites {
		if s.Rho != 0 || s.Velocity.X != 0 || s.Velocity.Y != 0 || s.Velocity.Z != 0 {
			t.Fatalf("expected zeroed macroscopic fields without a PropertyCache, got %+v", s)
		}
	}

	dir, err := ioutil.TempDir("", "report_test")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, "summary.json")
	if err := report.Write(path, sum); err != nil {
		t.Fatalf("unexpected error writing summary: %v", err)
	}
	b, err := ioutil.ReadFile(path)
	if err != nil {
		t.Fatalf("summary file was not written: %v", err)
	}
	var got report.Summary
	if err := json.Unmarshal(b, &got); err != nil {
		t.Fatalf("summary file is not valid JSON: %v", err)
	}
	if got.FinalStep != 1000 {
		t.Fatalf("expected finalStep 1000, got %d", got.FinalStep)
	}
}

// Test_failure01 checks WriteFailure produces a readable rank-tagged
// failure record.
func Test_failure01(t *testing.T) {
	chk.PrintTitle("failure01")

	dir, err := ioutil.TempDir("", "report_test")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, "failure.json")
	if err := report.WriteFailure(path, 2, 501, "repeated instability"); err != nil {
		t.Fatalf("unexpected error writing failure record: %v", err)
	}
	b, err := ioutil.ReadFile(path)
	if err != nil {
		t.Fatalf("failure file was not written: %v", err)
	}
	var got report.FailureRecord
	if err := json.Unmarshal(b, &got); err != nil {
		t.Fatalf("failure file is not valid JSON: %v", err)
	}
	if got.Rank != 2 || got.Step != 501 || got.Reason != "repeated instability" {
		t.Fatalf("unexpected failure record: %+v", got)
	}
}
