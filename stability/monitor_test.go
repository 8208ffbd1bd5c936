package stability_test

import (
	"math"
	"sync"
	"testing"

	"github.com/cpmech/gosl/chk"
	"github.com/hemelb-go/corelb/net"
	"github.com/hemelb-go/corelb/stability"
)

// Test_reduce01 checks UNSTABLE < STABLE < STABLE_AND_CONVERGED ordering
// under MIN reduction: one rank out of three reports UNSTABLE, so every
// rank's global verdict must come back UNSTABLE (spec.md S4.8).
func Test_reduce01(t *testing.T) {
	chk.PrintTitle("reduce01")

	const size = 3
	fabric := net.NewLocalFabric(size, []int{net.TagStability})

	local := []stability.Status{stability.StableAndConverged, stability.Unstable, stability.Stable}
	got := make([]stability.Status, size)

	var wg sync.WaitGroup
	for rank := 0; rank < size; rank++ {
		rank := rank
		wg.Add(1)
		go func() {
			defer wg.Done()
			comm := fabric.Rank(rank)
			mon := stability.NewMonitor(comm, 0)
			n := net.NewNet()
			mon.RequestComms(n, local[rank])
			n.Receive()
			n.Send()
			if err := n.Wait(); err != nil {
				t.Errorf("rank %d: %v", rank, err)
				return
			}
			got[rank] = mon.PostReceive()
		}()
	}
	wg.Wait()

	for rank, s := range got {
		if s != stability.Unstable {
			t.Fatalf("rank %d: expected global UNSTABLE, got %v", rank, s)
		}
	}
}

// Test_scanlocal01 checks the local positivity scan catches a non-positive
// (or NaN) distribution entry (spec.md S4.8, the basis of scenario 5's
// instability injection).
func Test_scanlocal01(t *testing.T) {
	chk.PrintTitle("scanlocal01")

	mon := stability.NewMonitor(nil, 0)
	good := []float64{0.1, 0.2, 0.3}
	if s := mon.ScanLocal(good, nil, nil); s != stability.Stable {
		t.Fatalf("expected STABLE for all-positive distributions, got %v", s)
	}
	bad := []float64{0.1, -1, 0.3}
	if s := mon.ScanLocal(bad, nil, nil); s != stability.Unstable {
		t.Fatalf("expected UNSTABLE for a negative distribution, got %v", s)
	}
	nan := []float64{0.1, math.NaN(), 0.3}
	if s := mon.ScanLocal(nan, nil, nil); s != stability.Unstable {
		t.Fatalf("expected UNSTABLE for a NaN distribution, got %v", s)
	}
}
