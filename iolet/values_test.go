package iolet_test

import (
	"sync"
	"testing"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/fun"
	"github.com/hemelb-go/corelb/iolet"
	"github.com/hemelb-go/corelb/net"
)

// Test_broadcast01 checks spec.md S4.7's controller/subscriber protocol: a
// single iolet controlled by rank 0 must deliver the same v_i(t) to a
// subscriber rank 1 that never constructed a ValueSource of its own.
func Test_broadcast01(t *testing.T) {
	chk.PrintTitle("broadcast01")

	const size = 2
	fabric := net.NewLocalFabric(size, []int{net.TagIolet})

	controllerOf := map[int]int{0: 0}
	touchedBy := map[int][]int{0: {0, 1}}

	prms := fun.Prms{
		&fun.Prm{N: "offset", V: 1.0},
		&fun.Prm{N: "amplitude", V: 0.0},
	}
	src := iolet.NewCosineSource(prms)

	got := make([]float64, size)
	var wg sync.WaitGroup
	for rank := 0; rank < size; rank++ {
		rank := rank
		wg.Add(1)
		go func() {
			defer wg.Done()
			comm := fabric.Rank(rank)
			sources := map[int]iolet.ValueSource{}
			if rank == 0 {
				sources[0] = src
			}
			iv, err := iolet.NewIoletValues(comm, controllerOf, sources, touchedBy)
			if err != nil {
				t.Errorf("rank %d: %v", rank, err)
				return
			}
			iv.EvaluateLocal(0)
			n := net.NewNet()
			iv.RequestComms(n)
			n.Receive()
			n.Send()
			if err := n.Wait(); err != nil {
				t.Errorf("rank %d: %v", rank, err)
				return
			}
			iv.PostReceive()
			got[rank] = iv.Value(0)
		}()
	}
	wg.Wait()

	chk.Scalar(t, "controller value", 1e-12, got[0], 1.0)
	chk.Scalar(t, "subscriber value", 1e-12, got[1], 1.0)
}
