package streamer_test

import (
	"testing"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/fun"
	"github.com/hemelb-go/corelb/domain"
	"github.com/hemelb-go/corelb/kernel"
	"github.com/hemelb-go/corelb/lattice"
	"github.com/hemelb-go/corelb/site"
	"github.com/hemelb-go/corelb/streamer"
)

// Test_bounceback01 checks the SimpleBounceBack write behind spec.md S8
// property 4 on a single WALL site. The site's fOld is set to the rest
// equilibrium W, so LBGK at tau=1 leaves it unchanged; after one
// StreamAndCollide, every wall-linked direction d must have written
// exactly W[d] into the same site's inverse slot s*Q+inv(d).
func Test_bounceback01(t *testing.T) {
	chk.PrintTitle("bounceback01")

	lat := lattice.D3Q15
	dom := domain.NewPoiseuilleSlab(lat, 4, 4, 4, 4)

	k, err := kernel.New("LBGK", lat, fun.Prms{})
	if err != nil {
		t.Fatal(err)
	}
	st := streamer.New(dom, k, streamer.SimpleBounceBack, nil)

	// find a WALL site (y=0 plane) and set its fOld to an equilibrium rest
	// state (so collision is a no-op at tau=1) to isolate the bounce-back
	// write itself.
	wallSite := -1
	for s, sd := range dom.Sites {
		if sd.SiteType == site.Wall {
			wallSite = s
			break
		}
	}
	if wallSite < 0 {
		t.Fatal("expected at least one WALL site in the Poiseuille slab fixture")
	}
	copy(dom.SiteOld(wallSite), lat.W)

	params, _ := kernel.NewLbmParameters(1.0)
	for _, rng := range dom.Ranges() {
		if wallSite >= rng.Start && wallSite < rng.End {
			st.StreamAndCollide(params, rng, nil)
		}
	}

	sd := dom.Sites[wallSite]
	for d := 1; d < lat.Q; d++ {
		if sd.Link(d).Kind != site.LinkWall {
			continue
		}
		inv := lat.Inv[d]
		got := dom.FNew[wallSite*lat.Q+inv]
		chk.Scalar(t, "bounce-back value", 1e-12, got, lat.W[d])
	}
}
