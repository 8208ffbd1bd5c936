// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package kernel

import (
	"github.com/cpmech/gosl/fun"
	"github.com/hemelb-go/corelb/lattice"
)

// LBGK is the single-relaxation-time collision operator of spec.md S4.5:
// f*[d] = f[d] + omega*(feq[d]-f[d]), omega = 1/tau set once when
// LbmParameters is built (tau and omega live in LbmParameters, common to
// every kernel in a run; LBGK
// carries no parameters of its own beyond the lattice it was built for).
type LBGK struct {
	lat *lattice.Lattice
}

func init() {
	SetAllocator("LBGK", func() Kernel { return new(LBGK) })
}

func (k *LBGK) Init(lat *lattice.Lattice, prms fun.Prms) error {
	k.lat = lat
	return nil
}

func (k *LBGK) GetPrms() fun.Prms { return fun.Prms{} }

func (k *LBGK) CalcPreCollision(hv *HydroVars, fOld []float64, rhoOverride float64, hasRhoOverride bool) {
	calcGenericPreCollision(k.lat, hv, fOld, rhoOverride, hasRhoOverride)
}

func (k *LBGK) Collide(params LbmParameters, hv *HydroVars, fOld, fStar []float64) {
	for d := 0; d < k.lat.Q; d++ {
		fStar[d] = fOld[d] + params.Omega*(hv.Feq[d]-fOld[d])
	}
}
