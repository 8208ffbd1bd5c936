// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package kernel

import (
	"github.com/cpmech/gosl/fun"
	"github.com/hemelb-go/corelb/lattice"
)

// GuoForcingLBGK is the body-forced LBGK operator of spec.md S4.5: a
// constant force per unit mass F is folded into the equilibrium velocity
// (u -> u + F/(2*rho)) and into an explicit per-direction forcing term
// added after relaxation, following Guo, Zheng & Shi (2002).
type GuoForcingLBGK struct {
	lat  *lattice.Lattice
	prms fun.Prms
	f    lattice.Vec3
}

func init() {
	SetAllocator("GuoForcingLBGK", func() Kernel { return new(GuoForcingLBGK) })
}

func (k *GuoForcingLBGK) Init(lat *lattice.Lattice, prms fun.Prms) error {
	k.lat = lat
	k.prms = prms
	prms.Connect(&k.f.X, "fx", "Guo forcing body force, x component")
	prms.Connect(&k.f.Y, "fy", "Guo forcing body force, y component")
	prms.Connect(&k.f.Z, "fz", "Guo forcing body force, z component")
	return nil
}

func (k *GuoForcingLBGK) GetPrms() fun.Prms { return k.prms }

func (k *GuoForcingLBGK) CalcPreCollision(hv *HydroVars, fOld []float64, rhoOverride float64, hasRhoOverride bool) {
	rho, j := k.lat.DensityMomentum(fOld)
	if hasRhoOverride {
		rho = rhoOverride
	}
	hv.Rho = rho
	// shift the momentum used for the equilibrium by F/2 (spec.md S4.5:
	// "adjusting velocity u -> u + F/(2*rho)" expressed in momentum terms
	// as j -> j + F/2, since j = rho*u).
	hv.J = j.Add(k.f.Scale(0.5))
	k.lat.Equilibrium(hv.Rho, hv.J, hv.Feq)
	hv.J = j // restore the true (unshifted) momentum for downstream consumers
}

func (k *GuoForcingLBGK) Collide(params LbmParameters, hv *HydroVars, fOld, fStar []float64) {
	cs2 := k.lat.Cs2()
	cs4 := cs2 * cs2
	u := lattice.Vec3{X: hv.J.X / hv.Rho, Y: hv.J.Y / hv.Rho, Z: hv.J.Z / hv.Rho}
	coeff := 1 - 0.5*params.Omega

	for d := 0; d < k.lat.Q; d++ {
		c := k.lat.C[d]
		cu := c.Dot(u)
		term := c.Add(u.Scale(-1)).Scale(1 / cs2).Add(c.Scale(cu / cs4))
		forceTerm := coeff * k.lat.W[d] * term.Dot(k.f)
		fStar[d] = fOld[d] + params.Omega*(hv.Feq[d]-fOld[d]) + forceTerm
	}
}
