package domain_test

import (
	"math"
	"sync"
	"testing"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/fun"
	"github.com/hemelb-go/corelb/domain"
	"github.com/hemelb-go/corelb/kernel"
	"github.com/hemelb-go/corelb/lattice"
	"github.com/hemelb-go/corelb/net"
	"github.com/hemelb-go/corelb/orchestrator"
	"github.com/hemelb-go/corelb/stability"
	"github.com/hemelb-go/corelb/streamer"
)

// runScenario02 drives a single-rank (or, via the fabric/rank/size
// arguments, one partition of a multi-rank) periodic-box run seeded with
// a uniform drift velocity for the given number of steps, and returns a
// map from global (x,y,z) coordinate to final density/velocity.
func runScenario02(dom *domain.Domain, candidates []domain.RemoteCandidate, comm net.Communicator, steps int) map[[3]int][4]float64 {
	lat := dom.Lat
	u := lattice.Vec3{X: 0.01}
	feq := make([]float64, lat.Q)
	lat.Equilibrium(1, u, feq)
	for s := 0; s < dom.NLocal; s++ {
		copy(dom.FOld[s*lat.Q:s*lat.Q+lat.Q], feq)
		copy(dom.FNew[s*lat.Q:s*lat.Q+lat.Q], feq)
	}

	k, err := kernel.New("LBGK", lat, fun.Prms{})
	if err != nil {
		panic(err)
	}
	params, err := kernel.NewLbmParameters(0.8)
	if err != nil {
		panic(err)
	}

	st := streamer.New(dom, k, nil, nil)
	mon := stability.NewMonitor(comm, 0)
	monitorActor := orchestrator.NewMonitorActor(mon, dom)
	streamerActor := orchestrator.NewStreamerActor(st, dom, params, nil)

	actors := []orchestrator.Actor{streamerActor, monitorActor}
	if len(candidates) > 0 {
		ex := net.NewExchange(dom, comm, candidates)
		actors = append([]orchestrator.Actor{orchestrator.NewExchangeActor(ex, dom)}, actors...)
	}

	o := orchestrator.New(dom, actors, monitorActor, nil, steps, false, 1)
	status, err := o.Run()
	if err != nil {
		panic(err)
	}
	if status != orchestrator.MaxStepsReached {
		panic("expected MaxStepsReached")
	}

	out := make(map[[3]int][4]float64, dom.NLocal)
	for s := 0; s < dom.NLocal; s++ {
		rho, j := lat.DensityMomentum(dom.FOld[s*lat.Q : s*lat.Q+lat.Q])
		out[dom.Coords[s]] = [4]float64{rho, j.X / rho, j.Y / rho, j.Z / rho}
	}
	return out
}

// Test_scenario06 checks a two-rank x-axis decomposition of scenario 2
// reproduces the single-rank result to 10^-10 at every global site
// (spec.md S8 scenario 6).
func Test_scenario06(t *testing.T) {
	chk.PrintTitle("scenario06")

	lat := lattice.D3Q15
	const nx, ny, nz = 4, 4, 4
	const steps = 1000

	single := domain.NewPeriodicBox(lat, 4, nx, ny, nz)
	singleComm := net.NewLocalFabric(1, []int{net.TagStability}).Rank(0)
	want := runScenario02(single, nil, singleComm, steps)

	fabric := net.NewLocalFabric(2, []int{net.TagHalo, net.TagStability})
	got := make([]map[[3]int][4]float64, 2)
	var wg sync.WaitGroup
	for rank := 0; rank < 2; rank++ {
		rank := rank
		wg.Add(1)
		go func() {
			defer wg.Done()
			dom, candidates := domain.NewPartitionedSlab(lat, 4, nx, ny, nz, rank, 2)
			comm := fabric.Rank(rank)
			got[rank] = runScenario02(dom, candidates, comm, steps)
		}()
	}
	wg.Wait()

	merged := make(map[[3]int][4]float64, nx*ny*nz)
	for _, m := range got {
		for coord, v := range m {
			if _, dup := merged[coord]; dup {
				t.Fatalf("coordinate %v reported by more than one rank", coord)
			}
			merged[coord] = v
		}
	}
	if len(merged) != len(want) {
		t.Fatalf("expected %d global sites, partitioned run reported %d", len(want), len(merged))
	}
	for coord, w := range want {
		g, ok := merged[coord]
		if !ok {
			t.Fatalf("coordinate %v missing from partitioned run", coord)
		}
		for i := range w {
			if math.Abs(w[i]-g[i]) > 1e-10 {
				t.Fatalf("coordinate %v component %d: single-rank=%v two-rank=%v", coord, i, w[i], g[i])
			}
		}
	}
}
