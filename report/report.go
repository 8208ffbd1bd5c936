// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package report implements the user-visible termination reporting of
// spec.md S7: a final property-snapshot-and-timings report on normal
// termination, and a rank-tagged failure record on abort. Grounded on
// fem.FEM/fem.Summary's own save-on-exit pattern (fem/fem.go's
// `if o.Summary != nil { o.Summary.Save(...) }` at the end of a run) and
// on gosl/io's WriteFile-family helpers the teacher's own tools
// (tools/GenVtu.go) use to serialise results to disk.
package report

import (
	"encoding/json"
	"path/filepath"
	"time"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"
	"github.com/hemelb-go/corelb/lattice"
	"github.com/hemelb-go/corelb/orchestrator"
	"github.com/hemelb-go/corelb/propertycache"
)

// SiteSnapshot is one local site's final macroscopic state (spec.md S4.10
// PropertyCache fields). Rho and Velocity are always copied from the run's
// PropertyCache; the wall-shear, von Mises and shear-rate fields are filled
// only when the cache had them requested at the last step, and are left
// out of the JSON when zero.
type SiteSnapshot struct {
	Site            int            `json:"site"`
	Rho             float64        `json:"rho"`
	Velocity        lattice.Vec3   `json:"velocity"`
	WallShearStress float64        `json:"wallShearStress,omitempty"`
	VonMisesStress  float64        `json:"vonMisesStress,omitempty"`
	ShearRate       float64        `json:"shearRate,omitempty"`
}

// Timings is the per-run timing breakdown named in spec.md S7's
// "user-visible behaviour".
type Timings struct {
	Steps       int           `json:"steps"`
	Elapsed     time.Duration `json:"elapsedNs"`
	StepsPerSec float64       `json:"stepsPerSec"`
}

// Summary is the final report written on normal termination
// (spec.md S4.9 Termination): the orchestrator's terminal status, the
// timing breakdown, and a macroscopic snapshot of every local site.
type Summary struct {
	Rank      int            `json:"rank"`
	Status    string         `json:"status"`
	FinalStep int            `json:"finalStep"`
	Timings   Timings        `json:"timings"`
	Sites     []SiteSnapshot `json:"sites"`
}

// NewSummary assembles a Summary for rank from the orchestrator's terminal
// status/step and a PropertyCache (nil gives all-zero site snapshots).
// Rho and Velocity are read for every site; the wall-shear, von Mises and
// shear-rate fields only when the cache has them requested.
func NewSummary(rank int, status orchestrator.Status, finalStep int, elapsed time.Duration, nLocal int, props *propertycache.Cache) Summary {
	sites := make([]SiteSnapshot, nLocal)
	for s := 0; s < nLocal; s++ {
		snap := SiteSnapshot{Site: s}
		if props != nil {
			snap.Rho = props.Rho(s)
			snap.Velocity = props.Velocity(s)
			if props.Wants(propertycache.WallShearStress) {
				snap.WallShearStress = props.WallShearStressAt(s)
			}
			if props.Wants(propertycache.VonMisesStress) {
				snap.VonMisesStress = props.VonMisesStressAt(s)
			}
			if props.Wants(propertycache.ShearRate) {
				snap.ShearRate = props.ShearRateAt(s)
			}
		}
		sites[s] = snap
	}
	steps := finalStep
	var perSec float64
	if elapsed > 0 {
		perSec = float64(steps) / elapsed.Seconds()
	}
	return Summary{
		Rank:      rank,
		Status:    status.String(),
		FinalStep: finalStep,
		Timings:   Timings{Steps: steps, Elapsed: elapsed, StepsPerSec: perSec},
		Sites:     sites,
	}
}

// Write serialises summary as indented JSON to path (spec.md S7's final
// property-snapshot-and-timings report), via gosl/io.WriteFileSD — the
// same dir/filename/content-string call `inp/t_read_test.go` uses to save
// a rendered document — plus encoding/json for the rendering itself.
func Write(path string, summary Summary) error {
	b, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return chk.Err("report: cannot marshal summary: %v", err)
	}
	io.WriteFileSD(filepath.Dir(path), filepath.Base(path), string(b))
	return nil
}

// FailureRecord is the rank-tagged failure report written on abort
// (spec.md S7 "Setup error"/"Communication failure"/repeated-instability
// fatal paths): which rank failed, at which step, and why.
type FailureRecord struct {
	Rank   int    `json:"rank"`
	Step   int    `json:"step"`
	Reason string `json:"reason"`
}

// WriteFailure serialises a FailureRecord to path.
func WriteFailure(path string, rank, step int, reason string) error {
	rec := FailureRecord{Rank: rank, Step: step, Reason: reason}
	b, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return chk.Err("report: cannot marshal failure record: %v", err)
	}
	io.WriteFileSD(filepath.Dir(path), filepath.Base(path), string(b))
	return nil
}
