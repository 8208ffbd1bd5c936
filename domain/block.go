// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package domain

// Block is a cubic group of B*B*B lattice sites, row-major over (i,j,k)
// within the block, per spec.md S3. A Block whose LocalSite entries are
// all -1 is "empty": pure solid, or wholly owned by another rank.
type Block struct {
	Side      int
	LocalSite []int // length Side^3; -1 where no local fluid site exists
}

// NewBlock allocates an empty block of the given side.
func NewBlock(side int) *Block {
	b := &Block{Side: side, LocalSite: make([]int, side*side*side)}
	for i := range b.LocalSite {
		b.LocalSite[i] = -1
	}
	return b
}

// Index returns the row-major offset of (i,j,k) within the block.
func (b *Block) Index(i, j, k int) int {
	return (i*b.Side+j)*b.Side + k
}

// IsEmpty reports whether the block has no locally-owned fluid site.
func (b *Block) IsEmpty() bool {
	for _, s := range b.LocalSite {
		if s >= 0 {
			return false
		}
	}
	return true
}

// blockGrid groups a domain's local sites into blocks of the given side,
// keyed by block coordinate, from each site's global coordinate. This is
// a structural record consumed by diagnostics and by the (external)
// geometry loader's consumers; the hot collision/streaming loop iterates
// the flat, type-grouped ranges built by Ranges instead (spec.md S4.3
// "Iteration contract").
type blockGrid struct {
	side           int
	nbx, nby, nbz  int
	originI        int
	originJ        int
	originK        int
	blocks         map[[3]int]*Block
}

func buildBlockGrid(side int, coords [][3]int) *blockGrid {
	g := &blockGrid{side: side, blocks: make(map[[3]int]*Block)}
	for localID, c := range coords {
		bc := [3]int{floorDiv(c[0], side), floorDiv(c[1], side), floorDiv(c[2], side)}
		blk, ok := g.blocks[bc]
		if !ok {
			blk = NewBlock(side)
			g.blocks[bc] = blk
		}
		li, lj, lk := mod(c[0], side), mod(c[1], side), mod(c[2], side)
		blk.LocalSite[blk.Index(li, lj, lk)] = localID
	}
	return g
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

func mod(a, b int) int {
	m := a % b
	if m < 0 {
		m += b
	}
	return m
}
