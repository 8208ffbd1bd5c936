// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package lattice implements the discrete-velocity lattice abstraction:
// direction sets, equilibrium weights, and the pure moment functions
// (density/momentum, equilibrium, von Mises and shear stress) shared by
// every kernel and streamer. All functions here are stateless and act on
// plain distribution slices of length Q.
//
// The momentum convention follows the original HemeLB code: the "velocity"
// quantity threaded through collision and boundary code is actually
// momentum j = rho*u (the compressible-model convention flagged as an open
// question in the upstream source). Equilibrium and DensityMomentum both
// use this convention consistently, so callers must divide by rho wherever
// an actual velocity is needed.
package lattice

import "math"

// Vec3 is a lattice-space direction or physical vector.
type Vec3 struct {
	X, Y, Z float64
}

func (v Vec3) Dot(w Vec3) float64 { return v.X*w.X + v.Y*w.Y + v.Z*w.Z }

func (v Vec3) Scale(s float64) Vec3 { return Vec3{v.X * s, v.Y * s, v.Z * s} }

func (v Vec3) Add(w Vec3) Vec3 { return Vec3{v.X + w.X, v.Y + w.Y, v.Z + w.Z} }

// Lattice is the triple (Q, c, w) of spec.md S3, plus the inverse-direction
// table. It is immutable after construction.
type Lattice struct {
	Name string
	Q    int
	C    []Vec3    // direction vectors, C[0] = {0,0,0}
	Ci   [][3]int  // integer direction vectors, matching C
	W    []float64 // equilibrium weights, sum(W) == 1
	Inv  []int     // Inv[d] such that C[Inv[d]] == -C[d]
}

// cs2 is the lattice speed of sound squared for every lattice in this family (1/3).
const cs2 = 1.0 / 3.0

// Cs2 returns the lattice speed-of-sound squared, 1/3 for all lattices here.
func (l *Lattice) Cs2() float64 { return cs2 }

// D3Q15 is HemeLB's default lattice. Directions and the inverse table are
// taken verbatim from the reference D3Q15 implementation; weights are the
// standard D3Q15 equilibrium weights (2/9, 1/9 x6, 1/72 x8) consistent with
// the reference's unrolled CalculateFeq.
var D3Q15 = mustBuild("D3Q15",
	[][3]int{
		{0, 0, 0},
		{1, 0, 0}, {-1, 0, 0},
		{0, 1, 0}, {0, -1, 0},
		{0, 0, 1}, {0, 0, -1},
		{1, 1, 1}, {-1, -1, -1},
		{1, 1, -1}, {-1, -1, 1},
		{1, -1, 1}, {-1, 1, -1},
		{1, -1, -1}, {-1, 1, 1},
	},
	[]float64{
		2.0 / 9.0,
		1.0 / 9.0, 1.0 / 9.0, 1.0 / 9.0, 1.0 / 9.0, 1.0 / 9.0, 1.0 / 9.0,
		1.0 / 72.0, 1.0 / 72.0, 1.0 / 72.0, 1.0 / 72.0, 1.0 / 72.0, 1.0 / 72.0, 1.0 / 72.0, 1.0 / 72.0,
	},
	[]int{0, 2, 1, 4, 3, 6, 5, 8, 7, 10, 9, 12, 11, 14, 13},
)

// D3Q19 and D3Q27 are the standard alternate lattices named in spec.md S3,
// generated from the usual squared-norm cutoff + weight families rather
// than hand-transcribed, since the reference tree carries only the
// declarations (lb/lattices/D3Q27.h) and not the defining .cc.
var D3Q19 = generate("D3Q19", 2, map[int]float64{
	0: 1.0 / 3.0,
	1: 1.0 / 18.0,
	2: 1.0 / 36.0,
})

var D3Q27 = generate("D3Q27", 3, map[int]float64{
	0: 8.0 / 27.0,
	1: 2.0 / 27.0,
	2: 1.0 / 54.0,
	3: 1.0 / 216.0,
})

func mustBuild(name string, ci [][3]int, w []float64, inv []int) *Lattice {
	l := &Lattice{Name: name, Q: len(ci), Ci: ci, W: w, Inv: inv}
	l.C = make([]Vec3, l.Q)
	for d, c := range ci {
		l.C[d] = Vec3{float64(c[0]), float64(c[1]), float64(c[2])}
	}
	l.validate()
	return l
}

// generate builds a lattice from every integer direction whose squared norm
// is <= maxNormSq, weighted by family (family keyed by squared norm).
// Directions are enumerated in a fixed deterministic order: the zero vector
// first, then increasing squared norm, then lexicographic within a shell.
func generate(name string, maxNormSq int, weightByShell map[int]float64) *Lattice {
	var ci [][3]int
	for n2 := 0; n2 <= maxNormSq; n2++ {
		var shell [][3]int
		for x := -3; x <= 3; x++ {
			for y := -3; y <= 3; y++ {
				for z := -3; z <= 3; z++ {
					if x*x+y*y+z*z == n2 {
						shell = append(shell, [3]int{x, y, z})
					}
				}
			}
		}
		ci = append(ci, shell...)
	}
	w := make([]float64, len(ci))
	for i, c := range ci {
		n2 := c[0]*c[0] + c[1]*c[1] + c[2]*c[2]
		w[i] = weightByShell[n2]
	}
	inv := make([]int, len(ci))
	for i, c := range ci {
		neg := [3]int{-c[0], -c[1], -c[2]}
		for j, c2 := range ci {
			if c2 == neg {
				inv[i] = j
				break
			}
		}
	}
	return mustBuild(name, ci, w, inv)
}

func (l *Lattice) validate() {
	if l.C[0] != (Vec3{}) {
		panic("lattice: direction 0 must be the zero vector")
	}
	sum := 0.0
	for _, w := range l.W {
		sum += w
	}
	if math.Abs(sum-1) > 1e-12 {
		panic("lattice: weights do not sum to 1")
	}
	for d := 0; d < l.Q; d++ {
		inv := l.Inv[d]
		if l.Inv[inv] != d {
			panic("lattice: inverse table is not an involution")
		}
		if l.C[inv].Add(l.C[d]) != (Vec3{}) {
			panic("lattice: inverse direction does not negate C[d]")
		}
	}
}

// DensityMomentum computes (rho, j) from a distribution vector f of length Q.
// rho = sum(f), j = sum(c[d]*f[d]).
func (l *Lattice) DensityMomentum(f []float64) (rho float64, j Vec3) {
	for d := 0; d < l.Q; d++ {
		rho += f[d]
		j.X += l.C[d].X * f[d]
		j.Y += l.C[d].Y * f[d]
		j.Z += l.C[d].Z * f[d]
	}
	return
}

// Equilibrium computes the truncated Maxwell-Boltzmann equilibrium for the
// given (rho, j), writing into feq (length Q, caller-allocated).
func (l *Lattice) Equilibrium(rho float64, j Vec3, feq []float64) {
	u := Vec3{j.X / rho, j.Y / rho, j.Z / rho}
	uu := u.Dot(u)
	for d := 0; d < l.Q; d++ {
		cu := l.C[d].Dot(u)
		feq[d] = l.W[d] * rho * (1 + 3*cu + 4.5*cu*cu - 1.5*uu)
	}
}

// EntropicEquilibrium computes the product-form (Ansumali/Chikatamarla)
// equilibrium, valid for lattices whose direction components all lie in
// {-1,0,1}. Used by the entropic kernel to build the target distribution
// its Newton iteration relaxes towards.
func (l *Lattice) EntropicEquilibrium(rho float64, j Vec3, feq []float64) {
	u := Vec3{j.X / rho, j.Y / rho, j.Z / rho}
	comps := [3]float64{u.X, u.Y, u.Z}
	var b [3]float64
	for a := 0; a < 3; a++ {
		b[a] = math.Sqrt(1 + 3*comps[a]*comps[a])
	}
	for d := 0; d < l.Q; d++ {
		ci := l.Ci[d]
		val := l.W[d] * rho
		comp := [3]int{ci[0], ci[1], ci[2]}
		for a := 0; a < 3; a++ {
			val *= (2 - b[a])
			if comp[a] != 0 {
				ratio := (2*comps[a] + b[a]) / (1 - comps[a])
				if comp[a] < 0 {
					val /= ratio
				} else {
					val *= ratio
				}
			}
		}
		feq[d] = val
	}
}

// NonEquilibrium fills fneq = f - feq given f and (rho, j) already known.
func (l *Lattice) NonEquilibrium(f []float64, rho float64, j Vec3, fneq []float64) {
	feq := make([]float64, l.Q)
	l.Equilibrium(rho, j, feq)
	for d := 0; d < l.Q; d++ {
		fneq[d] = f[d] - feq[d]
	}
}

// VonMisesStress computes the deviatoric-stress von Mises scalar from the
// non-equilibrium distribution, per spec.md S4.1: builds
// Sum_d c[d] (x) c[d] * fneq[d], scales by (1 - 1/(2*tau))/sqrt(2), reduces
// via the von Mises norm.
func (l *Lattice) VonMisesStress(fneq []float64, tau float64) float64 {
	var sxx, syy, szz, sxy, sxz, syz float64
	for d := 0; d < l.Q; d++ {
		c := l.C[d]
		sxx += c.X * c.X * fneq[d]
		syy += c.Y * c.Y * fneq[d]
		szz += c.Z * c.Z * fneq[d]
		sxy += c.X * c.Y * fneq[d]
		sxz += c.X * c.Z * fneq[d]
		syz += c.Y * c.Z * fneq[d]
	}
	prefactor := (1 - 1/(2*tau)) / math.Sqrt2
	sxx, syy, szz, sxy, sxz, syz = sxx*prefactor, syy*prefactor, szz*prefactor, sxy*prefactor, sxz*prefactor, syz*prefactor

	a := (sxx-syy)*(sxx-syy) + (syy-szz)*(syy-szz) + (sxx-szz)*(sxx-szz)
	b := sxy*sxy + sxz*sxz + syz*syz
	return math.Sqrt((a + 6*b) / 6)
}

// StressTensor computes the symmetric deviatoric stress tensor from the
// non-equilibrium distribution, returned as (xx, yy, zz, xy, xz, yz)
// (spec.md S4.10 "stress tensor" cache field).
func (l *Lattice) StressTensor(fneq []float64, tau float64) (xx, yy, zz, xy, xz, yz float64) {
	prefactor := -math.Sqrt2 * (1 - 1/(2*tau))
	cs := [3]func(Vec3) float64{
		func(v Vec3) float64 { return v.X },
		func(v Vec3) float64 { return v.Y },
		func(v Vec3) float64 { return v.Z },
	}
	var sigma [3][3]float64
	for i := 0; i < 3; i++ {
		for j := 0; j <= i; j++ {
			var s float64
			for d := 0; d < l.Q; d++ {
				s += fneq[d] * cs[i](l.C[d]) * cs[j](l.C[d])
			}
			s *= prefactor
			sigma[i][j] = s
			sigma[j][i] = s
		}
	}
	return sigma[0][0], sigma[1][1], sigma[2][2], sigma[0][1], sigma[0][2], sigma[1][2]
}

// Traction computes the surface traction vector sigma.n at a wall-normal n
// from the deviatoric stress tensor (spec.md S4.10 "traction" cache field).
func (l *Lattice) Traction(fneq []float64, n Vec3, tau float64) Vec3 {
	xx, yy, zz, xy, xz, yz := l.StressTensor(fneq, tau)
	sigma := [3][3]float64{
		{xx, xy, xz},
		{xy, yy, yz},
		{xz, yz, zz},
	}
	nArr := [3]float64{n.X, n.Y, n.Z}
	var t [3]float64
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			t[i] += sigma[i][j] * nArr[j]
		}
	}
	return Vec3{X: t[0], Y: t[1], Z: t[2]}
}

// ShearStress computes the magnitude of the wall-tangential traction from
// the non-equilibrium distribution and the wall-normal unit vector n.
func (l *Lattice) ShearStress(rho float64, fneq []float64, n Vec3, tau float64) float64 {
	traction := l.Traction(fneq, n, tau)
	nArr := [3]float64{n.X, n.Y, n.Z}
	tArr := [3]float64{traction.X, traction.Y, traction.Z}
	var normalMag float64
	for i := 0; i < 3; i++ {
		normalMag += tArr[i] * nArr[i]
	}
	var sqTraction float64
	for i := 0; i < 3; i++ {
		sqTraction += tArr[i] * tArr[i]
	}
	tangentialSq := sqTraction - normalMag*normalMag
	if tangentialSq < 0 {
		tangentialSq = 0
	}
	return math.Sqrt(tangentialSq)
}
