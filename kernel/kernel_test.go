package kernel_test

import (
	"math/rand"
	"testing"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/fun"
	"github.com/hemelb-go/corelb/kernel"
	"github.com/hemelb-go/corelb/lattice"
)

// randomPositiveF builds a random, strictly positive distribution close to
// equilibrium at rho=1, u=0, suitable for conservation checks.
func randomPositiveF(lat *lattice.Lattice, rng *rand.Rand) []float64 {
	f := make([]float64, lat.Q)
	for d := range f {
		f[d] = lat.W[d] * (1 + 0.05*(rng.Float64()-0.5))
	}
	return f
}

// Test_conservation01 checks spec.md S8 property 3: every collision
// operator preserves density and momentum exactly (within rounding) on a
// bulk site.
func Test_conservation01(t *testing.T) {
	chk.PrintTitle("conservation01")

	rng := rand.New(rand.NewSource(7))
	lat := lattice.D3Q15
	params, err := kernel.NewLbmParameters(0.8)
	if err != nil {
		t.Fatal(err)
	}

	names := []string{"LBGK", "TRT", "MRT"}
	for _, name := range names {
		k, err := kernel.New(name, lat, fun.Prms{})
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		fOld := randomPositiveF(lat, rng)
		hv := kernel.NewHydroVars(lat)
		k.CalcPreCollision(hv, fOld, 0, false)

		fStar := make([]float64, lat.Q)
		k.Collide(params, hv, fOld, fStar)

		rho0, j0 := lat.DensityMomentum(fOld)
		rho1, j1 := lat.DensityMomentum(fStar)

		chk.Scalar(t, name+": rho", 1e-10, rho1, rho0)
		chk.Scalar(t, name+": jx", 1e-9, j1.X, j0.X)
		chk.Scalar(t, name+": jy", 1e-9, j1.Y, j0.Y)
		chk.Scalar(t, name+": jz", 1e-9, j1.Z, j0.Z)
	}
}

// Test_lbgk01 checks that LBGK at equilibrium is a no-op (rest state stays
// at rest, spec.md S8 scenario 1).
func Test_lbgk01(t *testing.T) {
	chk.PrintTitle("lbgk01")

	lat := lattice.D3Q15
	k, err := kernel.New("LBGK", lat, fun.Prms{})
	if err != nil {
		t.Fatal(err)
	}
	fOld := make([]float64, lat.Q)
	copy(fOld, lat.W)

	params, _ := kernel.NewLbmParameters(1.0)
	hv := kernel.NewHydroVars(lat)
	k.CalcPreCollision(hv, fOld, 0, false)
	fStar := make([]float64, lat.Q)
	k.Collide(params, hv, fOld, fStar)

	for d := 0; d < lat.Q; d++ {
		chk.Scalar(t, "f*", 1e-12, fStar[d], lat.W[d])
	}
}
