package lattice

import (
	"math"
	"math/rand"
	"testing"

	"github.com/cpmech/gosl/chk"
)

// Test_inv01 checks the inverse-direction involution (spec.md S8 property 2)
// for every lattice this package exports.
func Test_inv01(tst *testing.T) {

	chk.PrintTitle("inv01. inverse-direction involution")

	for _, l := range []*Lattice{D3Q15, D3Q19, D3Q27} {
		for d := 0; d < l.Q; d++ {
			inv := l.Inv[d]
			if l.Inv[inv] != d {
				tst.Errorf("%s: inv(inv(%d)) != %d", l.Name, d, d)
			}
			c := l.C[d]
			ci := l.C[inv]
			if math.Abs(c.X+ci.X) > 1e-15 || math.Abs(c.Y+ci.Y) > 1e-15 || math.Abs(c.Z+ci.Z) > 1e-15 {
				tst.Errorf("%s: C[inv(%d)] != -C[%d]", l.Name, d, d)
			}
		}
	}
}

// Test_eq01 is the equilibrium roundtrip property, spec.md S8 property 1.
func Test_eq01(tst *testing.T) {

	chk.PrintTitle("eq01. equilibrium roundtrip")

	rng := rand.New(rand.NewSource(42))
	for _, l := range []*Lattice{D3Q15, D3Q19, D3Q27} {
		feq := make([]float64, l.Q)
		for trial := 0; trial < 200; trial++ {
			rho := 0.5 + rng.Float64()*2
			// keep |u| well inside 1/sqrt(3) so the LBM truncation is valid
			u := Vec3{
				(rng.Float64() - 0.5) * 0.5,
				(rng.Float64() - 0.5) * 0.5,
				(rng.Float64() - 0.5) * 0.5,
			}
			j := u.Scale(rho)
			l.Equilibrium(rho, j, feq)
			rho2, j2 := l.DensityMomentum(feq)
			chk.Scalar(tst, l.Name+": rho", 1e-10*rho, rho2, rho)
			chk.Scalar(tst, l.Name+": jx", 1e-10*(1+math.Abs(j.X)), j2.X, j.X)
			chk.Scalar(tst, l.Name+": jy", 1e-10*(1+math.Abs(j.Y)), j2.Y, j.Y)
			chk.Scalar(tst, l.Name+": jz", 1e-10*(1+math.Abs(j.Z)), j2.Z, j.Z)
		}
	}
}

// Test_weights01 checks each lattice's weights sum to one and are all positive.
func Test_weights01(tst *testing.T) {

	chk.PrintTitle("weights01. weight normalisation")

	for _, l := range []*Lattice{D3Q15, D3Q19, D3Q27} {
		sum := 0.0
		for d := 0; d < l.Q; d++ {
			if l.W[d] <= 0 {
				tst.Errorf("%s: weight %d not positive: %v", l.Name, d, l.W[d])
			}
			sum += l.W[d]
		}
		chk.Scalar(tst, l.Name+": sum(W)", 1e-14, sum, 1.0)
	}
}

// Test_rest01 checks the at-rest equilibrium: rho=1, u=0 reproduces the
// bare weights (scenario 1 of spec.md S8).
func Test_rest01(tst *testing.T) {

	chk.PrintTitle("rest01. equilibrium at rest equals weights")

	feq := make([]float64, D3Q15.Q)
	D3Q15.Equilibrium(1, Vec3{}, feq)
	for d := 0; d < D3Q15.Q; d++ {
		chk.Scalar(tst, "feq[d]", 1e-15, feq[d], D3Q15.W[d])
	}
}
