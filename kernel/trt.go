// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package kernel

import (
	"github.com/cpmech/gosl/fun"
	"github.com/hemelb-go/corelb/lattice"
)

// TRT is the two-relaxation-time operator of spec.md S4.5: the symmetric
// (even) part of f relaxes at omega+ = 1/tau as LBGK does; the antisymmetric
// (odd) part relaxes at an independently tuned omega-, linked to omega+ by
// the "magic parameter" Lambda = (1/omega+ - 1/2)(1/omega- - 1/2), which
// controls the scheme's bounce-back wall-location accuracy.
type TRT struct {
	lat    *lattice.Lattice
	lambda float64
	prms   fun.Prms
}

func init() {
	SetAllocator("TRT", func() Kernel { return new(TRT) })
}

func (k *TRT) Init(lat *lattice.Lattice, prms fun.Prms) error {
	k.lat = lat
	k.prms = prms
	k.lambda = 0.25 // common "magic" value, stable bounce-back wall location
	prms.Connect(&k.lambda, "lambda", "TRT magic parameter")
	return nil
}

func (k *TRT) GetPrms() fun.Prms { return k.prms }

func (k *TRT) CalcPreCollision(hv *HydroVars, fOld []float64, rhoOverride float64, hasRhoOverride bool) {
	calcGenericPreCollision(k.lat, hv, fOld, rhoOverride, hasRhoOverride)
}

func (k *TRT) Collide(params LbmParameters, hv *HydroVars, fOld, fStar []float64) {
	omegaPlus := params.Omega
	tauMinus := 0.5 + k.lambda/(params.Tau-0.5)
	omegaMinus := 1 / tauMinus

	inv := k.lat.Inv
	for d := 0; d < k.lat.Q; d++ {
		di := inv[d]
		fPlus := 0.5 * (fOld[d] + fOld[di])
		fMinus := 0.5 * (fOld[d] - fOld[di])
		feqPlus := 0.5 * (hv.Feq[d] + hv.Feq[di])
		feqMinus := 0.5 * (hv.Feq[d] - hv.Feq[di])
		fStar[d] = fOld[d] - omegaPlus*(fPlus-feqPlus) - omegaMinus*(fMinus-feqMinus)
	}
}
