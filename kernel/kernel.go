// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package kernel implements the collision operator of spec.md S4.5: the
// LBGK/MRT/TRT/entropic/non-Newtonian/forcing variants, registered in a
// name-keyed factory grounded on mdl/solid's Model registry (New/allocators
// map/init-time registration).
package kernel

import (
	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/fun"
	"github.com/hemelb-go/corelb/lattice"
)

// HydroVars is the hydrodynamic-variables bundle H of spec.md S4.5:
// density, momentum, and the equilibrium distribution calcPreCollision
// fills in before collide runs.
type HydroVars struct {
	Rho float64
	J   lattice.Vec3
	Feq []float64 // length Q, filled by CalcPreCollision
}

// NewHydroVars allocates a HydroVars bundle sized for lattice lat.
func NewHydroVars(lat *lattice.Lattice) *HydroVars {
	return &HydroVars{Feq: make([]float64, lat.Q)}
}

// LbmParameters is the single per-run relaxation-time record of spec.md
// S4.5, grounded on fem/dyncoefs.go's style of precomputing derived
// time-integration coefficients once from a single physical input.
type LbmParameters struct {
	Tau   float64
	Omega float64 // 1/Tau, precomputed
}

// NewLbmParameters builds the derived Omega from tau. tau must be > 0.5
// (spec.md S4.5 numerical contract); violating it is a Setup error.
func NewLbmParameters(tau float64) (LbmParameters, error) {
	if tau <= 0.5 {
		return LbmParameters{}, chk.Err("lbm parameters: tau must be > 0.5, got %v", tau)
	}
	return LbmParameters{Tau: tau, Omega: 1 / tau}, nil
}

// Kernel is the pluggable collision operator interface of spec.md S4.5.
type Kernel interface {
	// Init binds the kernel to its lattice and reads its own parameters
	// from the named-parameter database (gosl/fun.Prms), mirroring
	// mdl/solid.Model.Init.
	Init(lat *lattice.Lattice, prms fun.Prms) error
	// GetPrms returns the parameters the kernel was configured with.
	GetPrms() fun.Prms
	// CalcPreCollision fills hv with density, momentum and equilibrium
	// distributions from fOld. If hasRhoOverride, rhoOverride replaces the
	// computed density before the equilibrium is evaluated (spec.md S4.5
	// "kernels that impose a boundary density").
	CalcPreCollision(hv *HydroVars, fOld []float64, rhoOverride float64, hasRhoOverride bool)
	// Collide writes the post-collision distribution fStar (length Q) from
	// fOld and the precomputed hv.
	Collide(params LbmParameters, hv *HydroVars, fOld, fStar []float64)
}

var allocators = map[string]func() Kernel{}

// SetAllocator registers a kernel constructor under name. Called from each
// variant's init(), mirroring mdl/solid's registration pattern.
func SetAllocator(name string, fcn func() Kernel) {
	if _, ok := allocators[name]; ok {
		chk.Panic("kernel: allocator for %q already registered", name)
	}
	allocators[name] = fcn
}

// New constructs a registered kernel by name and initialises it.
func New(name string, lat *lattice.Lattice, prms fun.Prms) (Kernel, error) {
	fcn, ok := allocators[name]
	if !ok {
		return nil, chk.Err("kernel: %q is not available in the kernel database", name)
	}
	k := fcn()
	if err := k.Init(lat, prms); err != nil {
		return nil, chk.Err("kernel %q: %v", name, err)
	}
	return k, nil
}

// calcGenericPreCollision is the shared formula of spec.md S4.1/S4.5 used
// by LBGK, TRT, MRT and the non-Newtonian kernels. The entropic kernels use
// a different equilibrium family and GuoForcingLBGK shifts the momentum fed
// to the equilibrium, so both fill hv themselves.
func calcGenericPreCollision(lat *lattice.Lattice, hv *HydroVars, fOld []float64, rhoOverride float64, hasRhoOverride bool) {
	rho, j := lat.DensityMomentum(fOld)
	if hasRhoOverride {
		rho = rhoOverride
	}
	hv.Rho = rho
	hv.J = j
	lat.Equilibrium(rho, j, hv.Feq)
}
