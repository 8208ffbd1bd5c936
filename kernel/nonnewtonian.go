// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package kernel

import (
	"math"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/fun"
	"github.com/hemelb-go/corelb/lattice"
)

// rheologyModel maps a local shear rate to an apparent kinematic viscosity.
type rheologyModel func(gammaDot float64) float64

// LBGKNN is the non-Newtonian LBGK operator of spec.md S4.5: tau is
// re-evaluated every site every step from the local strain rate via a
// pluggable rheology model (Carreau-Yasuda, Casson, truncated power law),
// rather than being a fixed per-run constant as in LBGK. The apparent tau
// replaces LbmParameters.Tau/Omega for this site's collision only; the
// caller's LbmParameters still supplies the Newtonian tau used as the
// fixed-point iteration's starting guess.
type LBGKNN struct {
	lat                *lattice.Lattice
	prms               fun.Prms
	rheo               rheologyModel
	pendingRheoFactory rheoFactory
	fpIters            int // fixed-point iterations resolving tau<->shear-rate coupling
}

func init() {
	SetAllocator("LBGKNN_CarreauYasuda", func() Kernel { return newLBGKNN(carreauYasuda) })
	SetAllocator("LBGKNN_Casson", func() Kernel { return newLBGKNN(casson) })
	SetAllocator("LBGKNN_TruncatedPowerLaw", func() Kernel { return newLBGKNN(truncatedPowerLaw) })
}

func newLBGKNN(makeRheo func(fun.Prms) rheologyModel) *LBGKNN {
	k := &LBGKNN{fpIters: 3}
	k.rheo = nil // bound in Init once prms is known
	k.pendingRheoFactory = makeRheo
	return k
}

// pendingRheoFactory defers rheology-parameter binding until Init supplies
// the configuration database; kept unexported, set only by newLBGKNN.
type rheoFactory = func(fun.Prms) rheologyModel

func (k *LBGKNN) Init(lat *lattice.Lattice, prms fun.Prms) error {
	k.lat = lat
	k.prms = prms
	if k.pendingRheoFactory == nil {
		return chk.Err("LBGKNN: no rheology factory bound")
	}
	k.rheo = k.pendingRheoFactory(prms)
	return nil
}

func (k *LBGKNN) GetPrms() fun.Prms { return k.prms }

func (k *LBGKNN) CalcPreCollision(hv *HydroVars, fOld []float64, rhoOverride float64, hasRhoOverride bool) {
	calcGenericPreCollision(k.lat, hv, fOld, rhoOverride, hasRhoOverride)
}

// localShearRate estimates the scalar shear rate from the non-equilibrium
// second moment (Boyd/Buick/Green's standard LBM non-Newtonian closure):
// gammaDot = |Pi_neq| / (2*rho*cs2*tau), with Pi_neq the deviatoric second
// moment of fneq.
func (k *LBGKNN) localShearRate(fneq []float64, rho, tau float64) float64 {
	var pxx, pyy, pzz, pxy, pxz, pyz float64
	for d := 0; d < k.lat.Q; d++ {
		c := k.lat.C[d]
		pxx += fneq[d] * c.X * c.X
		pyy += fneq[d] * c.Y * c.Y
		pzz += fneq[d] * c.Z * c.Z
		pxy += fneq[d] * c.X * c.Y
		pxz += fneq[d] * c.X * c.Z
		pyz += fneq[d] * c.Y * c.Z
	}
	mag := math.Sqrt(2 * (pxx*pxx + pyy*pyy + pzz*pzz + 2*(pxy*pxy+pxz*pxz+pyz*pyz)))
	cs2 := k.lat.Cs2()
	denom := 2 * rho * cs2 * tau
	if denom == 0 {
		return 0
	}
	return mag / denom
}

func (k *LBGKNN) Collide(params LbmParameters, hv *HydroVars, fOld, fStar []float64) {
	q := k.lat.Q
	fneq := make([]float64, q)
	for d := 0; d < q; d++ {
		fneq[d] = fOld[d] - hv.Feq[d]
	}

	tau := params.Tau
	for it := 0; it < k.fpIters; it++ {
		gammaDot := k.localShearRate(fneq, hv.Rho, tau)
		nu := k.rheo(gammaDot)
		tau = nu/k.lat.Cs2() + 0.5
		if tau <= 0.5 {
			tau = 0.500001
		}
	}
	omega := 1 / tau

	for d := 0; d < q; d++ {
		fStar[d] = fOld[d] + omega*(hv.Feq[d]-fOld[d])
	}
}

// Carreau-Yasuda: nu(gammaDot) = nuInf + (nu0-nuInf)*(1+(lambda*gammaDot)^a)^((n-1)/a).
func carreauYasuda(prms fun.Prms) rheologyModel {
	nu0, nuInf, lambda, a, n := 0.16, 0.0035, 8.2, 0.64, 0.2128
	prms.Connect(&nu0, "nu0", "Carreau-Yasuda zero-shear viscosity")
	prms.Connect(&nuInf, "nuInf", "Carreau-Yasuda infinite-shear viscosity")
	prms.Connect(&lambda, "lambda_cy", "Carreau-Yasuda time constant")
	prms.Connect(&a, "a_cy", "Carreau-Yasuda transition exponent")
	prms.Connect(&n, "n_cy", "Carreau-Yasuda power index")
	return func(gammaDot float64) float64 {
		return nuInf + (nu0-nuInf)*math.Pow(1+math.Pow(lambda*gammaDot, a), (n-1)/a)
	}
}

// Casson: sqrt(tau_s) = sqrt(tauY) + sqrt(muC*gammaDot), tau_s = mu*gammaDot.
func casson(prms fun.Prms) rheologyModel {
	tauY, muC := 0.0175, 0.0035
	prms.Connect(&tauY, "tauY", "Casson yield stress")
	prms.Connect(&muC, "muC", "Casson plastic viscosity")
	return func(gammaDot float64) float64 {
		if gammaDot < 1e-9 {
			gammaDot = 1e-9
		}
		root := math.Sqrt(tauY) + math.Sqrt(muC*gammaDot)
		return root * root / gammaDot
	}
}

// Truncated power law: mu = mu0*gammaDot^(n-1), clamped to [muMin, muMax] so
// the model does not diverge at vanishing or very high shear rates.
func truncatedPowerLaw(prms fun.Prms) rheologyModel {
	mu0, n, muMin, muMax := 0.035, 0.6, 0.0035, 0.056
	prms.Connect(&mu0, "mu0", "truncated power law consistency index")
	prms.Connect(&n, "n_tpl", "truncated power law exponent")
	prms.Connect(&muMin, "muMin", "truncated power law lower viscosity bound")
	prms.Connect(&muMax, "muMax", "truncated power law upper viscosity bound")
	return func(gammaDot float64) float64 {
		if gammaDot < 1e-9 {
			gammaDot = 1e-9
		}
		mu := mu0 * math.Pow(gammaDot, n-1)
		if mu < muMin {
			return muMin
		}
		if mu > muMax {
			return muMax
		}
		return mu
	}
}
