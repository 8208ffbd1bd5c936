// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package iolet implements IoletValues (spec.md S4.7): a per-iolet value
// function v_i(t) evaluated once per step by a designated controller rank
// and propagated to every subscriber rank via the net package's
// Communicator, grounded on mdl/diffusion.M1's fun.Prms-driven parameter
// binding for the analytic source and on ele/factory.go's name-keyed
// registry for pluggable sources.
package iolet

import (
	"math"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/fun"
	"github.com/cpmech/gosl/io"
)

// ValueSource evaluates one iolet's value at time t (spec.md S4.7: "a
// value function v_i(t) producing a density (pressure) or velocity
// profile").
type ValueSource interface {
	Value(t float64) float64
}

// CosineSource is the analytic waveform v(t) = offset + amplitude*cos(2*pi*t/period + phase).
type CosineSource struct {
	Offset, Amplitude, Period, Phase float64
}

// NewCosineSource binds a cosine source's parameters from the named-
// parameter database (gosl/fun.Prms.Connect, matching mdl/diffusion.M1's
// own parameter-binding idiom).
func NewCosineSource(prms fun.Prms) *CosineSource {
	s := &CosineSource{Period: 1}
	prms.Connect(&s.Offset, "offset", "cosine iolet offset")
	prms.Connect(&s.Amplitude, "amplitude", "cosine iolet amplitude")
	prms.Connect(&s.Period, "period", "cosine iolet period")
	prms.Connect(&s.Phase, "phase", "cosine iolet phase")
	return s
}

func (s *CosineSource) Value(t float64) float64 {
	return s.Offset + s.Amplitude*math.Cos(2*math.Pi*t/s.Period+s.Phase)
}

// TimeSeriesSource interpolates linearly between (time, value) samples
// read from a time-series file (spec.md S4.7 "read from a time-series
// file").
type TimeSeriesSource struct {
	Times  []float64
	Values []float64
}

// NewTimeSeriesSource validates that times is strictly increasing and
// matches values in length.
func NewTimeSeriesSource(times, values []float64) (*TimeSeriesSource, error) {
	if len(times) != len(values) || len(times) < 2 {
		return nil, chk.Err("time-series iolet source needs >=2 matching (time,value) samples, got %d/%d", len(times), len(values))
	}
	for i := 1; i < len(times); i++ {
		if times[i] <= times[i-1] {
			return nil, chk.Err("time-series iolet source: times must be strictly increasing at index %d", i)
		}
	}
	return &TimeSeriesSource{Times: times, Values: values}, nil
}

func (s *TimeSeriesSource) Value(t float64) float64 {
	n := len(s.Times)
	if t <= s.Times[0] {
		return s.Values[0]
	}
	if t >= s.Times[n-1] {
		return s.Values[n-1]
	}
	lo := 0
	for lo+1 < n && s.Times[lo+1] < t {
		lo++
	}
	t0, t1 := s.Times[lo], s.Times[lo+1]
	v0, v1 := s.Values[lo], s.Values[lo+1]
	frac := (t - t0) / (t1 - t0)
	return v0 + frac*(v1-v0)
}

// CoupledSource relays a value set by an external code (spec.md S4.7
// "coupled to an external code (multiscale)"); SetExternal is called by
// the coupling layer, Value just reads the last value set.
type CoupledSource struct {
	current float64
}

func (s *CoupledSource) SetExternal(v float64) { s.current = v }
func (s *CoupledSource) Value(t float64) float64 { return s.current }

// LoadTimeSeriesFile reads a whitespace-delimited table with "t" and "v"
// columns (spec.md S6 "filename for time series"), the same
// gosl/io.ReadTable format the teacher's own plotting tools read
// comparison data from (examples/up_indentation2d_unsat/plotlrm.go).
func LoadTimeSeriesFile(path string) (*TimeSeriesSource, error) {
	_, data, err := io.ReadTable(path)
	if err != nil {
		return nil, chk.Err("iolet: cannot read time-series file %q: %v", path, err)
	}
	times, ok := data["t"]
	if !ok {
		return nil, chk.Err("iolet: time-series file %q has no %q column", path, "t")
	}
	values, ok := data["v"]
	if !ok {
		return nil, chk.Err("iolet: time-series file %q has no %q column", path, "v")
	}
	return NewTimeSeriesSource(times, values)
}

// NewSourceFromParams builds a ValueSource from a decoded config.Config
// iolet source entry. kind is "cosine" or "coupled"; "timeseries" is built
// via LoadTimeSeriesFile instead, since it needs a file path rather than a
// parameter map.
func NewSourceFromParams(kind string, params map[string]float64) (ValueSource, error) {
	switch kind {
	case "cosine":
		var prms fun.Prms
		for name, v := range params {
			prms = append(prms, &fun.Prm{N: name, V: v})
		}
		return NewCosineSource(prms), nil
	case "coupled":
		return &CoupledSource{}, nil
	default:
		return nil, chk.Err("iolet: NewSourceFromParams: unsupported kind %q", kind)
	}
}
