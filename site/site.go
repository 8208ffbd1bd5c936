// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package site implements the per-site classification and per-link
// boundary metadata of spec.md S3/S4.2: SiteType, LinkKind, Link, and the
// read-only SiteData view exposed to kernels and streamers. Nothing here
// mutates after construction; the domain builders and net.NewExchange
// (which installs cross-partition stream indices) are the only writers.
package site

import (
	"github.com/cpmech/gosl/chk"
	"github.com/hemelb-go/corelb/lattice"
)

// Type is the site classification of spec.md S3.
type Type int

const (
	BulkFluid Type = iota
	Wall
	Inlet
	Outlet
	InletWall
	OutletWall
)

func (t Type) String() string {
	switch t {
	case BulkFluid:
		return "BULK_FLUID"
	case Wall:
		return "WALL"
	case Inlet:
		return "INLET"
	case Outlet:
		return "OUTLET"
	case InletWall:
		return "INLET_WALL"
	case OutletWall:
		return "OUTLET_WALL"
	default:
		return "UNKNOWN"
	}
}

// HasIolet reports whether sites of this type carry an iolet index.
func (t Type) HasIolet() bool {
	return t == Inlet || t == Outlet || t == InletWall || t == OutletWall
}

// LinkKind classifies a single outgoing link, spec.md S3.
type LinkKind int

const (
	NoBoundary LinkKind = iota
	LinkWall
	LinkInlet
	LinkOutlet
)

// NoStream is a "no-propagation" neighbour-index value. The domain
// builders do not use it: links whose kind != NoBoundary point at the
// domain's sentinel slot (Domain.SentinelIndex, Q*NLocal), not a fluid site.
const NoStream = -1

// Link is the per-direction boundary record of spec.md S4.2.
type Link struct {
	Kind       LinkKind
	Distance   float64 // in (0,1], meaningful iff Kind != NoBoundary
	IoletIndex int      // meaningful iff Kind in {LinkInlet, LinkOutlet}
}

// Data is the immutable per-site record: classification, optional iolet
// index, Q-1 link records (index 1..Q-1, direction 0 has no link), and an
// optional wall-normal. StreamIndex is resolved by the domain at
// construction time (S4.3/S4.4) and stored alongside.
type Data struct {
	SiteType    Type
	IoletIndex  int // valid iff SiteType.HasIolet()
	links       []Link // length Q; links[0] is unused
	streamIndex []int  // length Q; streamIndex[0] is unused (self/rest)
	wallNormal  lattice.Vec3
	hasNormal   bool
	isEdge      bool
}

// New allocates a Data record for a lattice with q directions.
func New(q int, t Type) *Data {
	return &Data{
		SiteType:    t,
		links:       make([]Link, q),
		streamIndex: make([]int, q),
	}
}

// Link returns the boundary record for direction d (d in 1..Q-1).
func (s *Data) Link(d int) Link { return s.links[d] }

// SetLink installs the boundary record for direction d. Called only during
// domain initialisation.
func (s *Data) SetLink(d int, l Link) { s.links[d] = l }

// StreamIndex returns the absolute distribution-array index that
// direction d of this site streams into (spec.md S4.3/S4.4).
func (s *Data) StreamIndex(d int) int { return s.streamIndex[d] }

// SetStreamIndex installs the resolved neighbour-index entry for direction d.
func (s *Data) SetStreamIndex(d, idx int) { s.streamIndex[d] = idx }

// WallNormal returns the site's wall-normal unit vector and whether one was
// set; absent for sites whose chosen streamer does not need it.
func (s *Data) WallNormal() (lattice.Vec3, bool) { return s.wallNormal, s.hasNormal }

// SetWallNormal installs the wall-normal unit vector.
func (s *Data) SetWallNormal(n lattice.Vec3) {
	s.wallNormal = n
	s.hasNormal = true
}

// IsEdge reports whether this site has at least one link whose stream
// index targets a remote rank's shared-distribution region. The domain
// determines this at construction time (a site is an "edge site" per
// spec.md S3) and records it here for O(1) lookup during range partition.
func (s *Data) IsEdge() bool { return s.isEdge }

// SetIsEdge marks whether this site has at least one cross-partition link.
func (s *Data) SetIsEdge(v bool) { s.isEdge = v }

// Validate checks the spec.md S3 cross-field invariants for a fully
// populated site: WALL sites must have at least one WALL link; inlet/outlet
// sites must carry a consistent iolet index; link distances must be in
// (0,1] wherever a boundary kind is set. Called for every site by
// domain.Domain.Validate; a violation is a Setup error (spec.md S7).
func (s *Data) Validate(q int) error {
	hasWallLink := false
	for d := 1; d < q; d++ {
		l := s.links[d]
		switch l.Kind {
		case LinkWall:
			hasWallLink = true
		case LinkInlet, LinkOutlet:
			if !s.SiteType.HasIolet() {
				return chk.Err("site with iolet link (dir=%d) must have an inlet/outlet site type, got %v", d, s.SiteType)
			}
			if l.IoletIndex != s.IoletIndex {
				return chk.Err("link iolet index %d does not match site iolet index %d (dir=%d)", l.IoletIndex, s.IoletIndex, d)
			}
		}
		if l.Kind != NoBoundary && (l.Distance <= 0 || l.Distance > 1) {
			return chk.Err("link distance out of (0,1] range: dir=%d distance=%v", d, l.Distance)
		}
	}
	if s.SiteType == Wall && !hasWallLink {
		return chk.Err("site type WALL requires at least one WALL link")
	}
	return nil
}
