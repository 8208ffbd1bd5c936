// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package config implements the EXTERNAL INTERFACES configuration knobs of
// spec.md S6: a JSON document naming the lattice/kernel/boundary choices
// and the iolet list, loaded and validated before the domain/kernel/
// streamer/orchestrator are wired together. Grounded on inp.ReadSim's own
// "set defaults, then json.Unmarshal over them" idiom (inp/sim.go), using
// the same gosl/io.ReadFile + encoding/json + gosl/chk error-reporting
// stack.
package config

import (
	"encoding/json"
	"sort"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/fun"
	"github.com/cpmech/gosl/io"
)

// IoletSourceConfig names one iolet's value-source (spec.md S6 "a value-
// source (analytic cosine with mean/amplitude/phase/period, or filename
// for time series)").
type IoletSourceConfig struct {
	Kind   string             `json:"kind"` // "cosine", "timeseries", "coupled"
	Params map[string]float64 `json:"params"`
	File   string             `json:"file"`
}

// IoletConfig is one densely-indexed iolet's position/normal/type/source
// (spec.md S6 "Iolet configuration").
type IoletConfig struct {
	Position [3]float64        `json:"position"`
	Normal   [3]float64        `json:"normal"`
	Type     string            `json:"type"` // "pressure" or "velocity"
	Source   IoletSourceConfig `json:"source"`
}

// Config is the decoded configuration document of spec.md S6's knob table.
type Config struct {
	Q int `json:"q"`
	B int `json:"b"`

	Kernel       string             `json:"kernel"`
	KernelParams map[string]float64 `json:"kernelParams"`

	WallBoundary      string `json:"wallBoundary"`
	IoletBoundary     string `json:"ioletBoundary"`
	WallIoletBoundary string `json:"wallIoletBoundary"`

	Tau                float64 `json:"tau"`
	CheckConvergence   bool    `json:"checkConvergence"`
	ConvergenceTol     float64 `json:"convergenceTol"`
	ResetOnInstability bool    `json:"resetOnInstability"`
	MaxSteps           int     `json:"maxSteps"`

	Iolets []IoletConfig `json:"iolets"`
}

var validKernels = map[string]bool{
	"LBGK": true, "MRT": true, "TRT": true,
	"EntropicAnsumali": true, "EntropicChik": true,
	"LBGKNN_CarreauYasuda": true, "LBGKNN_Casson": true, "LBGKNN_TruncatedPowerLaw": true,
	"GuoForcingLBGK": true,
}

var validWallBoundaries = map[string]bool{
	"SimpleBounceBack": true, "BFL": true, "GuoZhengShi": true, "JunkYang": true,
}

var validIoletBoundaries = map[string]bool{
	"NashZerothOrderPressure": true, "Ladd": true, "Outflow": true, "OutflowBounceBack": true,
}

// SetDefaults installs the values used when a knob is absent from the JSON
// document, matching inp.SolverData.SetDefault's role in the teacher.
func (c *Config) SetDefaults() {
	c.Q = 15
	c.B = 8
	c.Kernel = "LBGK"
	c.WallBoundary = "SimpleBounceBack"
	c.IoletBoundary = "NashZerothOrderPressure"
	c.ConvergenceTol = 1e-5
	c.MaxSteps = 1000
}

// Load reads and decodes a configuration file, applying defaults first
// (spec.md S6), then validates it (spec.md S7 "Setup error": tau<=0.5,
// unknown kernel/boundary name, malformed iolet type).
func Load(path string) (*Config, error) {
	b, err := io.ReadFile(path)
	if err != nil {
		return nil, chk.Err("config: cannot read %q: %v", path, err)
	}
	var c Config
	c.SetDefaults()
	if err := json.Unmarshal(b, &c); err != nil {
		return nil, chk.Err("config: cannot parse %q: %v", path, err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate checks every cross-field invariant spec.md S7 assigns to Setup
// errors that this package, rather than the domain/site packages, owns.
func (c *Config) Validate() error {
	if c.Tau <= 0.5 {
		return chk.Err("config: tau must be > 0.5, got %v", c.Tau)
	}
	if !validKernels[c.Kernel] {
		return chk.Err("config: unknown kernel %q", c.Kernel)
	}
	if c.WallBoundary != "" && !validWallBoundaries[c.WallBoundary] {
		return chk.Err("config: unknown wallBoundary %q", c.WallBoundary)
	}
	if c.IoletBoundary != "" && !validIoletBoundaries[c.IoletBoundary] {
		return chk.Err("config: unknown ioletBoundary %q", c.IoletBoundary)
	}
	for i, iolet := range c.Iolets {
		if iolet.Type != "pressure" && iolet.Type != "velocity" {
			return chk.Err("config: iolet %d: type must be \"pressure\" or \"velocity\", got %q", i, iolet.Type)
		}
		switch iolet.Source.Kind {
		case "cosine", "timeseries", "coupled":
		default:
			return chk.Err("config: iolet %d: unknown source kind %q", i, iolet.Source.Kind)
		}
		if iolet.Source.Kind == "timeseries" && iolet.Source.File == "" {
			return chk.Err("config: iolet %d: timeseries source needs a file path", i)
		}
	}
	// Iolets is a slice indexed 0..len-1 by construction, so the "densely
	// indexed" requirement of spec.md S6 holds automatically; nothing
	// further to check here.
	return nil
}

// KernelPrms converts the JSON-decoded scalar parameter map into fun.Prms
// (sorted by name for deterministic iteration), the binding format every
// kernel.Kernel.Init expects via fun.Prms.Connect.
func (c *Config) KernelPrms() fun.Prms {
	var keys []string
	for k := range c.KernelParams {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	prms := make(fun.Prms, 0, len(keys))
	for _, k := range keys {
		prms = append(prms, &fun.Prm{N: k, V: c.KernelParams[k]})
	}
	return prms
}
