// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package streamer

import (
	"math"

	"github.com/hemelb-go/corelb/lattice"
)

func init() {
	RegisterIoletPolicy("NashZerothOrderPressure", NashZerothOrderPressure)
	RegisterIoletPolicy("Ladd", Ladd)
	RegisterIoletPolicy("Outflow", Outflow)
	RegisterIoletPolicy("OutflowBounceBack", OutflowBounceBack)
}

// NashZerothOrderPressure imposes the iolet density on a ghost site beyond
// the iolet plane (spec.md S4.6): the ghost velocity is the local
// velocity's component normal to the iolet, and the equilibrium of that
// ghost state is written into the unstreamed slot inv(d).
func NashZerothOrderPressure(ctx LinkCtx, ioletDensity float64) {
	inv := ctx.Lat.Inv[ctx.Dir]
	_, _, rhoSelf, jSelf, _ := ctx.Recollide(ctx.Site)
	uSelf := lattice.Vec3{X: jSelf.X / rhoSelf, Y: jSelf.Y / rhoSelf, Z: jSelf.Z / rhoSelf}

	c := ctx.Lat.C[ctx.Dir]
	normal := c.Scale(1 / vecNorm(c))
	uNormalMag := uSelf.Dot(normal)
	uGhost := normal.Scale(uNormalMag)
	jGhost := uGhost.Scale(ioletDensity)

	feqGhost := make([]float64, ctx.Lat.Q)
	ctx.Lat.Equilibrium(ioletDensity, jGhost, feqGhost)
	ctx.Dom.FNew[ctx.Site*ctx.Lat.Q+inv] = feqGhost[inv]
}

// Ladd is the velocity-imposing modified bounce-back of spec.md S4.6: the
// boundary moves with a prescribed velocity u_w (approximated here as the
// wall-normal direction scaled by ioletVelocity, the configured iolet
// value read as a velocity magnitude rather than a density), adding a
// correction term 2*w[d]*rho*(c[d].u_w)/cs2 to the simple-bounce-back
// value.
func Ladd(ctx LinkCtx, ioletVelocity float64) {
	inv := ctx.Lat.Inv[ctx.Dir]
	_, fStarSelf, rhoSelf, _, _ := ctx.Recollide(ctx.Site)

	n, ok := ctx.Dom.Sites[ctx.Site].WallNormal()
	if !ok {
		n = ctx.Lat.C[ctx.Dir].Scale(-1 / vecNorm(ctx.Lat.C[ctx.Dir]))
	}
	uWall := n.Scale(ioletVelocity)
	c := ctx.Lat.C[ctx.Dir]
	correction := 2 * ctx.Lat.W[ctx.Dir] * rhoSelf * c.Dot(uWall) / ctx.Lat.Cs2()
	ctx.Dom.FNew[ctx.Site*ctx.Lat.Q+inv] = fStarSelf[ctx.Dir] + correction
}

// Outflow copies the self post-collision value straight across the iolet
// plane (zero-gradient free-outflow approximation), per spec.md S4.6: the
// ghost site beyond the plane is taken to equal this site, so the
// population entering along inv(d) is this site's own f*[inv(d)].
func Outflow(ctx LinkCtx, ioletValue float64) {
	inv := ctx.Lat.Inv[ctx.Dir]
	ctx.Dom.FNew[ctx.Site*ctx.Lat.Q+inv] = ctx.FStarSelf[inv]
}

// OutflowBounceBack is the bounce-back variant of free outflow: bounce the
// post-collision population straight back, as SimpleBounceBack does for
// walls, used where a stiffer outflow boundary is preferred.
func OutflowBounceBack(ctx LinkCtx, ioletValue float64) {
	SimpleBounceBack(ctx)
}

func vecNorm(v lattice.Vec3) float64 {
	return math.Sqrt(v.Dot(v))
}
