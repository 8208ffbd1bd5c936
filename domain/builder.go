// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package domain

import (
	"github.com/hemelb-go/corelb/lattice"
	"github.com/hemelb-go/corelb/site"
)

// Builder assembles a Domain site-by-site from global coordinates. It is
// the in-repo substitute for the external geometry loader + decomposer
// named in spec.md S6 ("The core does not parse this format; it accepts a
// fully populated LatticeDomain") — used here to construct the scenario
// and unit-test fixtures of spec.md S8, grounded on fem's
// AllocSetAndInit-style programmatic domain setup used throughout gofem's
// own tests.
type Builder struct {
	lat            *lattice.Lattice
	blockSide      int
	nx, ny, nz     int
	periodic       [3]bool
	classify       func(x, y, z int) (site.Type, int, bool) // returns (type, ioletIndex, isFluid)
	wallLinkMaker  func(x, y, z, dx, dy, dz int) (site.Link, bool)
	ioletLinkMaker func(x, y, z, dx, dy, dz int) (site.Link, bool)
	wallNormal     func(x, y, z int) (lattice.Vec3, bool)
	remote         func(x, y, z, dx, dy, dz int) (peerRank int, ok bool)
}

// RemoteCandidate names one outgoing link that crosses a partition
// boundary: LocalSite's direction Dir lands on a fluid site owned by
// PeerRank. This is the raw material net.Exchange consumes to build the
// shared-region layout and recvLookup of spec.md S4.4.
type RemoteCandidate struct {
	LocalSite int
	Dir       int
	PeerRank  int
}

// NewBuilder creates a Builder over an nx*ny*nz box of global coordinates.
func NewBuilder(lat *lattice.Lattice, blockSide, nx, ny, nz int, periodic [3]bool) *Builder {
	return &Builder{lat: lat, blockSide: blockSide, nx: nx, ny: ny, nz: nz, periodic: periodic}
}

// Classify installs the per-coordinate site-type classifier.
func (b *Builder) Classify(f func(x, y, z int) (site.Type, int, bool)) *Builder {
	b.classify = f
	return b
}

// WallLinks installs a callback deciding, for a fluid site at (x,y,z) and
// an outgoing integer direction (dx,dy,dz), whether that link is a WALL
// link and its {distance}.
func (b *Builder) WallLinks(f func(x, y, z, dx, dy, dz int) (site.Link, bool)) *Builder {
	b.wallLinkMaker = f
	return b
}

// IoletLinks installs a callback deciding whether a link at (x,y,z) in
// direction (dx,dy,dz) crosses an iolet plane, and its {distance, iolet}.
func (b *Builder) IoletLinks(f func(x, y, z, dx, dy, dz int) (site.Link, bool)) *Builder {
	b.ioletLinkMaker = f
	return b
}

// WallNormals installs the wall-normal callback used by streamers that
// need it (GZS, shear-stress extraction).
func (b *Builder) WallNormals(f func(x, y, z int) (lattice.Vec3, bool)) *Builder {
	b.wallNormal = f
	return b
}

// Remote installs the callback identifying cross-partition neighbours: for
// a fluid site at (x,y,z) and outgoing direction (dx,dy,dz), it reports
// which rank owns the target coordinate, if not this one.
func (b *Builder) Remote(f func(x, y, z, dx, dy, dz int) (int, bool)) *Builder {
	b.remote = f
	return b
}

func (b *Builder) inBounds(x, y, z int) (int, int, int, bool) {
	if b.periodic[0] {
		x = mod(x, b.nx)
	} else if x < 0 || x >= b.nx {
		return 0, 0, 0, false
	}
	if b.periodic[1] {
		y = mod(y, b.ny)
	} else if y < 0 || y >= b.ny {
		return 0, 0, 0, false
	}
	if b.periodic[2] {
		z = mod(z, b.nz)
	} else if z < 0 || z >= b.nz {
		return 0, 0, 0, false
	}
	return x, y, z, true
}

// Build assembles a Domain: every link either targets a local fluid site
// (bulk), crosses into another rank's partition (if Remote is set), is a
// wall/iolet boundary link to the sentinel slot, or (if the target
// coordinate has no fluid site and no callback claims it) is treated as
// solid and defaults to a WALL link of distance 0.5, the conventional
// mid-link bounce-back placement. Sites are returned reordered so that
// inner sites (no cross-partition link) precede edge sites, each half
// grouped contiguously by site type (spec.md S4.3 "Iteration contract").
// Every local site's FOld and FNew slots start at the rho=1, u=0 rest
// equilibrium.
func (b *Builder) Build() (*Domain, []RemoteCandidate) {
	q := b.lat.Q

	type coord struct{ x, y, z int }
	var coords []coord
	idOf := make(map[coord]int)
	var types []site.Type
	var iolets []int

	for x := 0; x < b.nx; x++ {
		for y := 0; y < b.ny; y++ {
			for z := 0; z < b.nz; z++ {
				t, iolet, isFluid := b.classify(x, y, z)
				if !isFluid {
					continue
				}
				c := coord{x, y, z}
				idOf[c] = len(coords)
				coords = append(coords, c)
				types = append(types, t)
				iolets = append(iolets, iolet)
			}
		}
	}

	n := len(coords)
	sites := make([]*site.Data, n)
	gcoords := make([][3]int, n)
	for i, c := range coords {
		s := site.New(q, types[i])
		if types[i].HasIolet() {
			s.IoletIndex = iolets[i]
		}
		sites[i] = s
		gcoords[i] = [3]int{c.x, c.y, c.z}
		if b.wallNormal != nil {
			if wn, ok := b.wallNormal(c.x, c.y, c.z); ok {
				s.SetWallNormal(wn)
			}
		}
	}

	// candidates, keyed by the (still unpermuted) local site id
	type pendingRemote struct {
		dir  int
		peer int
	}
	remoteByID := make(map[int][]pendingRemote)

	for i, c := range coords {
		s := sites[i]
		for d := 1; d < q; d++ {
			ci := b.lat.Ci[d]
			tx, ty, tz := c.x+ci[0], c.y+ci[1], c.z+ci[2]

			if b.ioletLinkMaker != nil {
				if l, ok := b.ioletLinkMaker(c.x, c.y, c.z, ci[0], ci[1], ci[2]); ok {
					s.SetLink(d, l)
					s.SetStreamIndex(d, n*q) // sentinel
					continue
				}
			}
			if b.wallLinkMaker != nil {
				if l, ok := b.wallLinkMaker(c.x, c.y, c.z, ci[0], ci[1], ci[2]); ok {
					s.SetLink(d, l)
					s.SetStreamIndex(d, n*q) // sentinel
					continue
				}
			}
			if b.remote != nil {
				if peer, ok := b.remote(c.x, c.y, c.z, ci[0], ci[1], ci[2]); ok {
					s.SetIsEdge(true)
					remoteByID[i] = append(remoteByID[i], pendingRemote{dir: d, peer: peer})
					continue // stream index assigned later by net.Exchange
				}
			}

			wx, wy, wz, inB := b.inBounds(tx, ty, tz)
			if inB {
				if tid, ok := idOf[coord{wx, wy, wz}]; ok {
					s.SetStreamIndex(d, tid*q+d)
					continue
				}
			}
			// target has no fluid site and no callback claimed it:
			// treat as solid wall at the conventional half-link distance.
			s.SetLink(d, site.Link{Kind: site.LinkWall, Distance: 0.5})
			s.SetStreamIndex(d, n*q)
			if s.SiteType == site.BulkFluid {
				sites[i].SiteType = site.Wall
			}
		}
	}

	// reorder: inner sites (grouped by type) then edge sites (grouped by type)
	order := make([]int, 0, n)
	for _, edgeWanted := range []bool{false, true} {
		for t := site.BulkFluid; t <= site.OutletWall; t++ {
			for i := 0; i < n; i++ {
				if sites[i].IsEdge() == edgeWanted && sites[i].SiteType == t {
					order = append(order, i)
				}
			}
		}
	}
	oldToNew := make([]int, n)
	for newID, oldID := range order {
		oldToNew[oldID] = newID
	}

	newSites := make([]*site.Data, n)
	newCoords := make([][3]int, n)
	edgeStart := n
	for newID, oldID := range order {
		newSites[newID] = sites[oldID]
		newCoords[newID] = gcoords[oldID]
		if newSites[newID].IsEdge() && edgeStart == n {
			edgeStart = newID
		}
	}
	// remap bulk stream indices that referenced old local ids
	for _, s := range newSites {
		for d := 1; d < q; d++ {
			idx := s.StreamIndex(d)
			if idx >= 0 && idx < n*q {
				oldTarget := idx / q
				dir := idx % q
				s.SetStreamIndex(d, oldToNew[oldTarget]*q+dir)
			}
		}
	}
	var candidates []RemoteCandidate
	for oldID, prs := range remoteByID {
		for _, pr := range prs {
			candidates = append(candidates, RemoteCandidate{LocalSite: oldToNew[oldID], Dir: pr.dir, PeerRank: pr.peer})
		}
	}

	dom := &Domain{Lat: b.lat, B: b.blockSide, Sites: newSites, Coords: newCoords, NLocal: n, NShared: 0, edgeStart: edgeStart}
	dom.alloc()
	feq := make([]float64, q)
	b.lat.Equilibrium(1, lattice.Vec3{}, feq)
	for s := 0; s < n; s++ {
		copy(dom.FOld[s*q:s*q+q], feq)
		copy(dom.FNew[s*q:s*q+q], feq)
	}
	dom.finalizeRanges()
	return dom, candidates
}

// NewPeriodicBox builds a fully periodic, wall-free nx*ny*nz cube of
// BULK_FLUID sites (scenarios 1 and 2 of spec.md S8).
func NewPeriodicBox(lat *lattice.Lattice, blockSide, nx, ny, nz int) *Domain {
	dom, _ := NewBuilder(lat, blockSide, nx, ny, nz, [3]bool{true, true, true}).
		Classify(func(x, y, z int) (site.Type, int, bool) { return site.BulkFluid, 0, true }).
		Build()
	return dom
}

// NewPoiseuilleSlab builds a slab periodic in x and z, bounded by two
// walls in y (scenario 3 of spec.md S8), using simple mid-link bounce-back
// placement (wall at y=-0.5 and y=ny-0.5, distance 0.5 on every link that
// would otherwise cross it).
func NewPoiseuilleSlab(lat *lattice.Lattice, blockSide, nx, ny, nz int) *Domain {
	dom, _ := NewBuilder(lat, blockSide, nx, ny, nz, [3]bool{true, false, true}).
		Classify(func(x, y, z int) (site.Type, int, bool) {
			if y == 0 || y == ny-1 {
				return site.Wall, 0, true
			}
			return site.BulkFluid, 0, true
		}).
		WallLinks(func(x, y, z, dx, dy, dz int) (site.Link, bool) {
			ty := y + dy
			if ty < 0 || ty >= ny {
				return site.Link{Kind: site.LinkWall, Distance: 0.5}, true
			}
			return site.Link{}, false
		}).
		WallNormals(func(x, y, z int) (lattice.Vec3, bool) {
			if y == 0 {
				return lattice.Vec3{Y: 1}, true
			}
			if y == ny-1 {
				return lattice.Vec3{Y: -1}, true
			}
			return lattice.Vec3{}, false
		}).
		Build()
	return dom
}

// NewPipe builds a straight square-cross-section pipe along x: walls in y
// and z, an inlet plane at x=0 and an outlet plane at x=nx-1 (scenario 4 of
// spec.md S8). inletIolet/outletIolet are the iolet indices attached to
// the respective end.
func NewPipe(lat *lattice.Lattice, blockSide, nx, ny, nz, inletIolet, outletIolet int) *Domain {
	dom, _ := NewBuilder(lat, blockSide, nx, ny, nz, [3]bool{false, false, false}).
		Classify(func(x, y, z int) (site.Type, int, bool) {
			onWall := y == 0 || y == ny-1 || z == 0 || z == nz-1
			switch {
			case x == 0 && onWall:
				return site.InletWall, inletIolet, true
			case x == nx-1 && onWall:
				return site.OutletWall, outletIolet, true
			case x == 0:
				return site.Inlet, inletIolet, true
			case x == nx-1:
				return site.Outlet, outletIolet, true
			case onWall:
				return site.Wall, 0, true
			default:
				return site.BulkFluid, 0, true
			}
		}).
		IoletLinks(func(x, y, z, dx, dy, dz int) (site.Link, bool) {
			tx := x + dx
			if tx < 0 {
				return site.Link{Kind: site.LinkInlet, Distance: 0.5, IoletIndex: inletIolet}, true
			}
			if tx >= nx {
				return site.Link{Kind: site.LinkOutlet, Distance: 0.5, IoletIndex: outletIolet}, true
			}
			return site.Link{}, false
		}).
		WallLinks(func(x, y, z, dx, dy, dz int) (site.Link, bool) {
			ty, tz := y+dy, z+dz
			if ty < 0 || ty >= ny || tz < 0 || tz >= nz {
				return site.Link{Kind: site.LinkWall, Distance: 0.5}, true
			}
			return site.Link{}, false
		}).
		WallNormals(func(x, y, z int) (lattice.Vec3, bool) {
			var n lattice.Vec3
			found := false
			if y == 0 {
				n.Y += 1
				found = true
			}
			if y == ny-1 {
				n.Y -= 1
				found = true
			}
			if z == 0 {
				n.Z += 1
				found = true
			}
			if z == nz-1 {
				n.Z -= 1
				found = true
			}
			return n, found
		}).
		Build()
	return dom
}

// NewPartitionedSlab builds `rank`'s local share of an nx*ny*nz periodic
// box decomposed into `size` contiguous slabs along x (scenario 6 of
// spec.md S8). Each rank owns x in [rank*nx/size, (rank+1)*nx/size); links
// crossing a slab boundary are reported as RemoteCandidate values for
// net.Exchange to wire up.
func NewPartitionedSlab(lat *lattice.Lattice, blockSide, nx, ny, nz, rank, size int) (*Domain, []RemoteCandidate) {
	ownerOf := func(gx int) int {
		gx = mod(gx, nx)
		for r := 0; r < size; r++ {
			rlo, rhi := r*nx/size, (r+1)*nx/size
			if gx >= rlo && gx < rhi {
				return r
			}
		}
		return size - 1
	}
	lo := rank * nx / size
	hi := (rank + 1) * nx / size

	b := NewBuilder(lat, blockSide, nx, ny, nz, [3]bool{true, true, true}).
		Classify(func(x, y, z int) (site.Type, int, bool) {
			if x < lo || x >= hi {
				return site.BulkFluid, 0, false
			}
			return site.BulkFluid, 0, true
		}).
		Remote(func(x, y, z, dx, dy, dz int) (int, bool) {
			tx := mod(x+dx, nx)
			if tx >= lo && tx < hi {
				return 0, false
			}
			return ownerOf(tx), true
		})
	return b.Build()
}
