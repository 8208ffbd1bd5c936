package propertycache_test

import (
	"testing"

	"github.com/cpmech/gosl/chk"
	"github.com/hemelb-go/corelb/lattice"
	"github.com/hemelb-go/corelb/propertycache"
)

// Test_refreshflags01 checks spec.md S4.10: a field only gets written when
// requested, and the request must be renewed every iteration.
func Test_refreshflags01(t *testing.T) {
	chk.PrintTitle("refreshflags01")

	lat := lattice.D3Q15
	c := propertycache.New(1)

	fOld := make([]float64, lat.Q)
	copy(fOld, lat.W)
	rho, j := lat.DensityMomentum(fOld)

	// no field requested: density must stay at its zero value.
	c.Update(lat, 0, rho, j, fOld, 1.0, lattice.Vec3{}, false)
	if c.Rho(0) != 0 {
		t.Fatalf("expected density to stay unwritten without a request, got %v", c.Rho(0))
	}

	c.Request(propertycache.Density)
	c.Update(lat, 0, rho, j, fOld, 1.0, lattice.Vec3{}, false)
	chk.Scalar(t, "density", 1e-12, c.Rho(0), rho)

	c.EndIteration()
	if c.Wants(propertycache.Density) {
		t.Fatal("expected Density's refresh flag to be cleared after EndIteration")
	}
}

// Test_fneqfields01 checks that von Mises stress and shear rate come back
// zero for a rest-equilibrium distribution (fneq == 0 everywhere).
func Test_fneqfields01(t *testing.T) {
	chk.PrintTitle("fneqfields01")

	lat := lattice.D3Q15
	c := propertycache.New(1)
	c.Request(propertycache.VonMisesStress)
	c.Request(propertycache.ShearRate)

	fOld := make([]float64, lat.Q)
	copy(fOld, lat.W)
	rho, j := lat.DensityMomentum(fOld)
	c.Update(lat, 0, rho, j, fOld, 1.0, lattice.Vec3{}, false)

	chk.Scalar(t, "von Mises at rest", 1e-12, c.VonMisesStressAt(0), 0)
	chk.Scalar(t, "shear rate at rest", 1e-12, c.ShearRateAt(0), 0)
}
