// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package streamer

import "github.com/hemelb-go/corelb/lattice"

func init() {
	RegisterWallPolicy("SimpleBounceBack", SimpleBounceBack)
	RegisterWallPolicy("BFL", BFL)
	RegisterWallPolicy("GuoZhengShi", GuoZhengShi)
	RegisterWallPolicy("JunkYang", JunkYang)
}

// SimpleBounceBack bounces the post-collision population straight back
// into the same site at the opposite direction (spec.md S4.6).
func SimpleBounceBack(ctx LinkCtx) {
	inv := ctx.Lat.Inv[ctx.Dir]
	ctx.Dom.FNew[ctx.Site*ctx.Lat.Q+inv] = ctx.FStarSelf[ctx.Dir]
}

// nextSiteAlong finds the local id of the fluid site one lattice step from
// s away from the wall, along the wall link's line (i.e. at coord(s) -
// C[d]), used by BFL and GZS's two-point variants.
func nextSiteAlong(ctx LinkCtx) (int, bool) {
	c := ctx.Lat.Ci[ctx.Dir]
	base := ctx.Dom.Coords[ctx.Site]
	next := [3]int{base[0] - c[0], base[1] - c[1], base[2] - c[2]}
	return ctx.Dom.FindByCoord(next)
}

// BFL implements the Bouzidi-Firdaous-Lallemand interpolated bounce-back of
// spec.md S4.6: with qTilde = 2*q, if qTilde < 1 interpolate between the
// self post-collision value and the further neighbour's; otherwise
// extrapolate from the self post-collision value and the self pre-
// collision inverse-direction value.
func BFL(ctx LinkCtx) {
	inv := ctx.Lat.Inv[ctx.Dir]
	qTilde := 2 * ctx.Link.Distance

	var result float64
	if qTilde < 1 {
		nextID, ok := nextSiteAlong(ctx)
		fNextSelfDir := ctx.FStarSelf[ctx.Dir] // fallback if no further site exists
		if ok {
			_, fStarNext, _, _, ok2 := ctx.Recollide(nextID)
			if ok2 {
				fNextSelfDir = fStarNext[ctx.Dir]
			}
		}
		result = (1-qTilde)*fNextSelfDir + qTilde*ctx.FStarSelf[ctx.Dir]
	} else {
		result = (1/qTilde)*ctx.FStarSelf[ctx.Dir] + (1-1/qTilde)*ctx.FOldSelf[inv]
	}
	ctx.Dom.FNew[ctx.Site*ctx.Lat.Q+inv] = result
}

// GuoZhengShi reconstructs the missing wall-incident population of spec.md
// S4.6: extrapolate a fictitious wall velocity from one or two interior
// sites along the link, compute the equilibrium there, and add a
// non-equilibrium correction scaled by (1+omega). The two-point variant is
// used when the link distance is < 0.75 and a second site exists.
func GuoZhengShi(ctx LinkCtx) {
	inv := ctx.Lat.Inv[ctx.Dir]
	q := ctx.Link.Distance

	_, fStarSelf, rhoSelf, jSelf, _ := ctx.Recollide(ctx.Site)

	var uWall lattice.Vec3
	var rhoWall float64
	uSelf := lattice.Vec3{X: jSelf.X / rhoSelf, Y: jSelf.Y / rhoSelf, Z: jSelf.Z / rhoSelf}

	if q < 0.75 {
		if nextID, ok := nextSiteAlong(ctx); ok {
			_, _, rhoNext, jNext, _ := ctx.Recollide(nextID)
			uNext := lattice.Vec3{X: jNext.X / rhoNext, Y: jNext.Y / rhoNext, Z: jNext.Z / rhoNext}
			w1 := (1 + q) / q
			w2 := -(1 / q)
			uWall = uSelf.Scale(w1).Add(uNext.Scale(w2))
			rhoWall = rhoSelf
		} else {
			uWall = uSelf.Scale(1 / q)
			rhoWall = rhoSelf
		}
	} else {
		uWall = uSelf.Scale(1 / q)
		rhoWall = rhoSelf
	}

	feqWall := make([]float64, ctx.Lat.Q)
	ctx.Lat.Equilibrium(rhoWall, lattice.Vec3{X: rhoWall * uWall.X, Y: rhoWall * uWall.Y, Z: rhoWall * uWall.Z}, feqWall)

	fneqSelf := fStarSelf[ctx.Dir] - feqWall[ctx.Dir]
	result := feqWall[inv] + (1+ctx.Omega)*fneqSelf
	ctx.Dom.FNew[ctx.Site*ctx.Lat.Q+inv] = result
}

// JunkYang applies a link-normal-dependent one-step reconstruction:
// bounce-back corrected by the wall-normal component of the self velocity,
// approximating the original reference's normal-dependent scheme without a
// second fluid site.
func JunkYang(ctx LinkCtx) {
	inv := ctx.Lat.Inv[ctx.Dir]
	n, ok := ctx.Dom.Sites[ctx.Site].WallNormal()
	if !ok {
		SimpleBounceBack(ctx)
		return
	}
	_, fStarSelf, rhoSelf, jSelf, _ := ctx.Recollide(ctx.Site)
	u := lattice.Vec3{X: jSelf.X / rhoSelf, Y: jSelf.Y / rhoSelf, Z: jSelf.Z / rhoSelf}
	correction := 2 * rhoSelf * ctx.Lat.W[ctx.Dir] * u.Dot(n) / ctx.Lat.Cs2()
	ctx.Dom.FNew[ctx.Site*ctx.Lat.Q+inv] = fStarSelf[ctx.Dir] - correction
}
