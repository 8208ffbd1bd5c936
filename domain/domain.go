// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package domain implements the LatticeDomain of spec.md S4.3: blocks,
// site metadata, the neighbour index table, and the two distribution
// arrays, plus the inner/edge x site-type range partition that the
// collision/streaming loop dispatches over.
package domain

import (
	"github.com/cpmech/gosl/chk"
	"github.com/hemelb-go/corelb/lattice"
	"github.com/hemelb-go/corelb/site"
)

// Range is a contiguous, type-homogeneous slice of local site indices
// [Start, End), as produced by Ranges (spec.md S4.3 "Iteration contract").
type Range struct {
	Type  site.Type
	Start int
	End   int
}

// Domain holds everything the core touches every iteration. It is built
// once (by an external geometry loader + decomposer, or by the builders in
// this package for tests) and is immutable in structure thereafter; only
// FOld/FNew and the iolet-driven boundary values mutate per step.
type Domain struct {
	Lat *lattice.Lattice
	B   int // block side

	Sites  []*site.Data // length NLocal, local fluid sites
	Coords [][3]int     // length NLocal, global (i,j,k) per local site

	NLocal int // count of locally-owned fluid sites
	NShared int // count of shared-region slots (outbound == inbound count)

	FOld []float64 // length Q*NLocal + 1 + NShared
	FNew []float64 // same layout

	edgeStart int // [0,edgeStart) inner sites; [edgeStart,NLocal) edge sites
	ranges    []Range

	blocks *blockGrid
}

// SentinelIndex is the absolute index of the "no-propagation" slot
// (spec.md S3: the trailing "+1" after Q*NLocal).
func (d *Domain) SentinelIndex() int { return d.Lat.Q * d.NLocal }

// SharedBase is the first index of the shared-distribution region.
func (d *Domain) SharedBase() int { return d.SentinelIndex() + 1 }

// Len is the total length each of FOld/FNew must have.
func (d *Domain) Len() int { return d.SharedBase() + d.NShared }

// alloc allocates FOld/FNew at their required length and builds the block
// grid from Coords. Called once after Sites/Coords/NShared are finalised.
func (d *Domain) alloc() {
	n := d.Len()
	d.FOld = make([]float64, n)
	d.FNew = make([]float64, n)
	if d.B > 0 {
		d.blocks = buildBlockGrid(d.B, d.Coords)
	}
}

// GrowShared extends the shared-distribution region to hold nShared slots,
// preserving existing FOld/FNew content. Called by net.Exchange once it has
// determined the per-peer shared-region layout (spec.md S4.4 step 2); must
// run before any site's remote StreamIndex is set, since those indices
// reference the grown region.
func (d *Domain) GrowShared(nShared int) {
	d.NShared = nShared
	n := d.Len()
	fo := make([]float64, n)
	fn := make([]float64, n)
	copy(fo, d.FOld)
	copy(fn, d.FNew)
	d.FOld = fo
	d.FNew = fn
}

// Blocks returns the block grid built from site global coordinates
// (spec.md S3 "Block structure"), keyed by block coordinate. Only blocks
// holding at least one local fluid site have an entry; a block coordinate
// with no local site is absent from the map.
func (d *Domain) Blocks() map[[3]int]*Block {
	if d.blocks == nil {
		return nil
	}
	return d.blocks.blocks
}

// Swap exchanges FOld and FNew in O(1), per spec.md S4.3.
func (d *Domain) Swap() {
	d.FOld, d.FNew = d.FNew, d.FOld
}

// FindByCoord looks up the local site id owning global coordinate c, via
// the block grid built at construction time. Used by streamers (BFL, GZS)
// that need a second fluid site one step further from the wall.
func (d *Domain) FindByCoord(c [3]int) (int, bool) {
	if d.blocks == nil {
		return 0, false
	}
	side := d.blocks.side
	bc := [3]int{floorDiv(c[0], side), floorDiv(c[1], side), floorDiv(c[2], side)}
	blk, ok := d.blocks.blocks[bc]
	if !ok {
		return 0, false
	}
	li, lj, lk := mod(c[0], side), mod(c[1], side), mod(c[2], side)
	id := blk.LocalSite[blk.Index(li, lj, lk)]
	if id < 0 {
		return 0, false
	}
	return id, true
}

// SiteOld returns the slice of Q old distributions for local site s.
func (d *Domain) SiteOld(s int) []float64 {
	q := d.Lat.Q
	return d.FOld[s*q : s*q+q]
}

// SiteNew returns the slice of Q new distributions for local site s.
func (d *Domain) SiteNew(s int) []float64 {
	q := d.Lat.Q
	return d.FNew[s*q : s*q+q]
}

// Ranges returns the contiguous, site-type-homogeneous ranges built at
// construction time, inner sites first then edge sites (spec.md S4.3).
func (d *Domain) Ranges() []Range { return d.ranges }

// EdgeStart is the index at which edge sites begin ([0,EdgeStart) is inner).
func (d *Domain) EdgeStart() int { return d.edgeStart }

// finalizeRanges groups Sites[0:edgeStart) and Sites[edgeStart:NLocal) each
// by SiteType into contiguous Range records. Sites must already be ordered
// inner-then-edge and, within each half, grouped by type (the builders in
// this package and the external decomposer are responsible for that order).
func (d *Domain) finalizeRanges() {
	d.ranges = nil
	appendHalf := func(lo, hi int) {
		start := lo
		for i := lo; i < hi; i++ {
			if i+1 == hi || d.Sites[i+1].SiteType != d.Sites[start].SiteType {
				d.ranges = append(d.ranges, Range{Type: d.Sites[start].SiteType, Start: start, End: i + 1})
				start = i + 1
			}
		}
	}
	appendHalf(0, d.edgeStart)
	appendHalf(d.edgeStart, d.NLocal)
}

// Validate checks every site's link invariants (spec.md S3) and that the
// inner/edge ordering agrees with each site's IsEdge marker. A violation is
// a Setup error (spec.md S7), fatal before the time loop starts.
func (d *Domain) Validate() error {
	q := d.Lat.Q
	for i, s := range d.Sites {
		if err := s.Validate(q); err != nil {
			return chk.Err("site %d: %v", i, err)
		}
		if i < d.edgeStart && s.IsEdge() {
			return chk.Err("site %d marked edge but placed in the inner range", i)
		}
		if i >= d.edgeStart && !s.IsEdge() {
			return chk.Err("site %d marked inner but placed in the edge range", i)
		}
	}
	return nil
}
