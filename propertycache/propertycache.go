// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package propertycache implements PropertyCache (spec.md S4.10): a
// write-through cache of macroscopic quantities indexed by local site id,
// refreshed from the already-computed hydrodynamic-variables bundle during
// the collision pass so extraction/visualisation consumers never need a
// redundant pass over fOld. Grounded on fem's own per-node solution-array
// pattern (Domain.Sol holding Y/Dy/Dy2 indexed by equation number) re-
// expressed as per-site slices indexed by local site id.
package propertycache

import (
	"math"

	"github.com/hemelb-go/corelb/lattice"
)

// Field names one cached quantity (spec.md S4.10).
type Field int

const (
	Density Field = iota
	Velocity
	WallShearStress
	VonMisesStress
	ShearRate
	Stress
	Traction
)

// Cache holds one slice per quantity, each of length n (the domain's local
// site count), plus the set of fields any consumer has registered interest
// in for the current iteration.
type Cache struct {
	n int

	rho       []float64
	u         []lattice.Vec3
	wallShear []float64
	vonMises  []float64
	shearRate []float64
	stress    [][6]float64 // xx,yy,zz,xy,xz,yz
	traction  []lattice.Vec3

	wanted map[Field]bool
}

// New allocates a cache for n local sites; all slices start zeroed and no
// field is wanted until Request is called.
func New(n int) *Cache {
	return &Cache{
		n:         n,
		rho:       make([]float64, n),
		u:         make([]lattice.Vec3, n),
		wallShear: make([]float64, n),
		vonMises:  make([]float64, n),
		shearRate: make([]float64, n),
		stress:    make([][6]float64, n),
		traction:  make([]lattice.Vec3, n),
		wanted:    make(map[Field]bool),
	}
}

// Request registers interest in f for the current iteration (spec.md S4.10
// "consumers register interest per-iteration"). Safe to call more than once
// per field per iteration.
func (c *Cache) Request(f Field) { c.wanted[f] = true }

// Wants reports whether f has been requested this iteration.
func (c *Cache) Wants(f Field) bool { return c.wanted[f] }

// EndIteration clears every field's refresh flag (spec.md S4.10 "Refresh
// flags are cleared at end of iteration; consumers must re-register each
// step").
func (c *Cache) EndIteration() {
	for f := range c.wanted {
		delete(c.wanted, f)
	}
}

// Update writes every requested field for local site s from the already-
// computed hydrodynamic bundle (rho, j) and the raw pre-collision
// distribution fOld, avoiding any recomputation of quantities the caller
// hasn't asked for. tau is the kernel's relaxation time, needed by the
// stress-derived fields; wallNormal/hasNormal supply the wall-shear/
// traction projection direction where the site has one.
func (c *Cache) Update(lat *lattice.Lattice, s int, rho float64, j lattice.Vec3, fOld []float64, tau float64, wallNormal lattice.Vec3, hasNormal bool) {
	if c.Wants(Density) {
		c.rho[s] = rho
	}
	if c.Wants(Velocity) {
		c.u[s] = lattice.Vec3{X: j.X / rho, Y: j.Y / rho, Z: j.Z / rho}
	}

	needsFneq := c.Wants(VonMisesStress) || c.Wants(ShearRate) || c.Wants(Stress) || c.Wants(Traction) || (c.Wants(WallShearStress) && hasNormal)
	if !needsFneq {
		return
	}
	fneq := make([]float64, lat.Q)
	lat.NonEquilibrium(fOld, rho, j, fneq)

	if c.Wants(VonMisesStress) {
		c.vonMises[s] = lat.VonMisesStress(fneq, tau)
	}
	if c.Wants(ShearRate) {
		c.shearRate[s] = shearRateFromFneq(lat, fneq, rho, tau)
	}
	if c.Wants(Stress) {
		xx, yy, zz, xy, xz, yz := lat.StressTensor(fneq, tau)
		c.stress[s] = [6]float64{xx, yy, zz, xy, xz, yz}
	}
	if hasNormal {
		if c.Wants(Traction) {
			c.traction[s] = lat.Traction(fneq, wallNormal, tau)
		}
		if c.Wants(WallShearStress) {
			c.wallShear[s] = lat.ShearStress(rho, fneq, wallNormal, tau)
		}
	}
}

// shearRateFromFneq estimates the local strain-rate magnitude from the
// non-equilibrium second moment, the same Boyd/Buick/Green estimator the
// non-Newtonian kernels use internally (kernel.LBGKNN's localShearRate),
// exposed here so PropertyCache consumers can read it without running a
// non-Newtonian kernel.
func shearRateFromFneq(lat *lattice.Lattice, fneq []float64, rho, tau float64) float64 {
	var pxx, pyy, pzz, pxy, pxz, pyz float64
	for d := 0; d < lat.Q; d++ {
		c := lat.C[d]
		pxx += c.X * c.X * fneq[d]
		pyy += c.Y * c.Y * fneq[d]
		pzz += c.Z * c.Z * fneq[d]
		pxy += c.X * c.Y * fneq[d]
		pxz += c.X * c.Z * fneq[d]
		pyz += c.Y * c.Z * fneq[d]
	}
	sumSq := pxx*pxx + pyy*pyy + pzz*pzz + 2*(pxy*pxy+pxz*pxz+pyz*pyz)
	cs2 := lat.Cs2()
	if sumSq <= 0 {
		return 0
	}
	return math.Sqrt(2*sumSq) / (2 * rho * cs2 * tau)
}

// Rho returns the cached density at local site s.
func (c *Cache) Rho(s int) float64 { return c.rho[s] }

// Velocity returns the cached velocity at local site s.
func (c *Cache) Velocity(s int) lattice.Vec3 { return c.u[s] }

// WallShearStressAt returns the cached wall shear-stress magnitude at local site s.
func (c *Cache) WallShearStressAt(s int) float64 { return c.wallShear[s] }

// VonMisesStressAt returns the cached von Mises stress at local site s.
func (c *Cache) VonMisesStressAt(s int) float64 { return c.vonMises[s] }

// ShearRateAt returns the cached shear-rate magnitude at local site s.
func (c *Cache) ShearRateAt(s int) float64 { return c.shearRate[s] }

// StressTensorAt returns the cached (xx,yy,zz,xy,xz,yz) deviatoric stress at local site s.
func (c *Cache) StressTensorAt(s int) [6]float64 { return c.stress[s] }

// TractionAt returns the cached traction vector at local site s.
func (c *Cache) TractionAt(s int) lattice.Vec3 { return c.traction[s] }
